package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/research-nest/researchnest-api/internal/models"
	appErrors "github.com/research-nest/researchnest-api/pkg/errors"
)

type studentAccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
}

type facultyAccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Faculty, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, faculty *models.Faculty) error
}

// Formatted principal ids: students are YYYY#### and faculty YYYY###.
var (
	studentIDPattern = regexp.MustCompile(`^\d{8}$`)
	facultyIDPattern = regexp.MustCompile(`^\d{7}$`)
)

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthService provides registration, login and token validation.
type AuthService struct {
	students  studentAccountRepository
	faculty   facultyAccountRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(students studentAccountRepository, faculty facultyAccountRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{students: students, faculty: faculty, validator: validate, logger: logger, config: config}
}

// Register creates a student or faculty account with a bcrypt credential.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be student or faculty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	switch req.Role {
	case models.RoleStudent:
		if !studentIDPattern.MatchString(req.ID) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student id must be 8 digits (YYYY####)")
		}
		exists, err := s.students.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		student := &models.Student{
			StudentID:    req.ID,
			Name:         req.Name,
			Email:        req.Email,
			Program:      req.Program,
			PasswordHash: string(hash),
		}
		if err := s.students.Create(ctx, student); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register student")
		}
		return &models.UserInfo{ID: student.StudentID, Name: student.Name, Email: student.Email, Role: models.RoleStudent}, nil

	default:
		if !facultyIDPattern.MatchString(req.ID) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "faculty id must be 7 digits (YYYY###)")
		}
		if req.Department == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "department is required for faculty")
		}
		exists, err := s.faculty.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		faculty := &models.Faculty{
			FacultyID:    req.ID,
			Name:         req.Name,
			Email:        req.Email,
			Department:   req.Department,
			PasswordHash: string(hash),
		}
		if err := s.faculty.Create(ctx, faculty); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register faculty")
		}
		return &models.UserInfo{ID: faculty.FacultyID, Name: faculty.Name, Email: faculty.Email, Role: models.RoleFaculty}, nil
	}
}

// Login verifies credentials for the requested role and issues a token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be student or faculty")
	}

	var (
		info       models.UserInfo
		department string
		hash       string
	)
	switch req.Role {
	case models.RoleStudent:
		student, err := s.students.FindByEmail(ctx, req.Email)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
		}
		info = models.UserInfo{ID: student.StudentID, Name: student.Name, Email: student.Email, Role: models.RoleStudent}
		hash = student.PasswordHash
	default:
		faculty, err := s.faculty.FindByEmail(ctx, req.Email)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch faculty")
		}
		info = models.UserInfo{ID: faculty.FacultyID, Name: faculty.Name, Email: faculty.Email, Role: models.RoleFaculty}
		department = faculty.Department
		hash = faculty.PasswordHash
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.config.Expiration)
	claims := &models.JWTClaims{
		UserID:     info.ID,
		Role:       info.Role,
		Email:      info.Email,
		Department: department,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   info.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	return &models.LoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.config.Expiration.Seconds()),
		User:        info,
		IssuedAt:    now,
	}, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(raw string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	if !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown principal role")
	}
	return claims, nil
}
