package models

import (
	"time"

	"github.com/lib/pq"
)

// Assignment belongs to exactly one department and one semester. DueDate is
// a zero-padded ISO date string so lexicographic comparison orders it.
type Assignment struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	DueDate     string         `db:"due_date" json:"dueDate"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	Department  Department     `db:"department" json:"department"`
	Subject     string         `db:"subject" json:"subject"`
	AuthorID    string         `db:"author_id" json:"-"`
	Author      User           `db:"author" json:"author"`
	Attachments pq.StringArray `db:"attachments" json:"attachments,omitempty"`
	Semester    Semester       `db:"semester" json:"semester"`
}

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	Department *Department
	Semester   *Semester
}
