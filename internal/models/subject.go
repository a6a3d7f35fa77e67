package models

import "github.com/lib/pq"

// Subject is a catalog entry taught within one department and semester.
type Subject struct {
	ID            string         `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Code          string         `db:"code" json:"code"`
	Department    Department     `db:"department" json:"department"`
	ProfessorID   string         `db:"professor_id" json:"-"`
	Professor     User           `db:"professor" json:"professor"`
	Description   string         `db:"description" json:"description"`
	Semester      Semester       `db:"semester" json:"semester"`
	Credits       *int           `db:"credits" json:"credits,omitempty"`
	Prerequisites pq.StringArray `db:"prerequisites" json:"prerequisites,omitempty"`
}

// SubjectFilter narrows subject listings.
type SubjectFilter struct {
	Department *Department
	Semester   *Semester
}
