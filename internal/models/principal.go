package models

// Role distinguishes the two kinds of authenticated principals.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleFaculty
}

// Principal is the resolved identity attached to every inbound operation.
// Department is populated for faculty only.
type Principal struct {
	ID         string `json:"id"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
}

// IsStudent reports whether the principal is a student.
func (p Principal) IsStudent() bool {
	return p.Role == RoleStudent
}

// IsFaculty reports whether the principal is a faculty member.
func (p Principal) IsFaculty() bool {
	return p.Role == RoleFaculty
}

// OwnsStudent reports whether the principal is the student with the given id.
func (p Principal) OwnsStudent(studentID string) bool {
	return p.Role == RoleStudent && p.ID == studentID
}

// InDepartment reports whether the principal is faculty in the given department.
func (p Principal) InDepartment(department string) bool {
	return p.Role == RoleFaculty && p.Department == department
}
