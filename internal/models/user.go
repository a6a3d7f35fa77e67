package models

import (
	"time"

	"github.com/lib/pq"
)

// UserRole represents the closed set of portal roles.
type UserRole string

const (
	RoleAdmin           UserRole = "admin"
	RoleDepartmentAdmin UserRole = "department_admin"
	RoleTeacher         UserRole = "teacher"
	RoleStudent         UserRole = "student"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleDepartmentAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// User represents a portal account. Role-dependent fields are nil or empty
// when they do not apply: Semester and EnrolledSubjects belong to students,
// TeachingSubjects to teachers, AssociatedSemesters to teachers and
// department admins.
type User struct {
	ID                  string         `db:"id" json:"id"`
	Name                string         `db:"name" json:"name"`
	Email               string         `db:"email" json:"email"`
	PasswordHash        string         `db:"password_hash" json:"-"`
	Role                UserRole       `db:"role" json:"role"`
	Department          Department     `db:"department" json:"department"`
	Avatar              *string        `db:"avatar" json:"avatar,omitempty"`
	Semester            *Semester      `db:"semester" json:"semester,omitempty"`
	EnrolledSubjects    pq.StringArray `db:"enrolled_subjects" json:"enrolledSubjects,omitempty"`
	TeachingSubjects    pq.StringArray `db:"teaching_subjects" json:"teachingSubjects,omitempty"`
	AssociatedSemesters pq.StringArray `db:"associated_semesters" json:"associatedSemesters,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"createdAt"`
}

// AssociatedSemesterValues converts the stored term labels into Semesters.
func (u User) AssociatedSemesterValues() []Semester {
	if len(u.AssociatedSemesters) == 0 {
		return nil
	}
	out := make([]Semester, 0, len(u.AssociatedSemesters))
	for _, raw := range u.AssociatedSemesters {
		out = append(out, Semester(raw))
	}
	return out
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role       *UserRole
	Department *Department
	Search     string
}
