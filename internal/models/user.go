package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Student represents a graduate student tracked by the system.
type Student struct {
	StudentID    string    `db:"student_id" json:"student_id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Program      string    `db:"program" json:"program,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Faculty represents a faculty member supervising students in a department.
type Faculty struct {
	FacultyID    string    `db:"faculty_id" json:"faculty_id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Department   string    `db:"department" json:"department,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RegisterRequest holds the payload for registering either principal kind.
type RegisterRequest struct {
	Role       Role   `json:"role" validate:"required"`
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Program    string `json:"program"`
	Department string `json:"department"`
	Password   string `json:"password" validate:"required,min=6"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Role     Role   `json:"role" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID     string `json:"user_id"`
	Role       Role   `json:"role"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts claims into the principal handed to services.
func (c *JWTClaims) Principal() Principal {
	return Principal{ID: c.UserID, Role: c.Role, Department: c.Department}
}
