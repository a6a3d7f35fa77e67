package models

import "github.com/lib/pq"

// Lecture is a scheduled class session. Date is an ISO date string and
// StartTime/EndTime are zero-padded HH:MM, so string ordering is
// chronological.
type Lecture struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Date        string         `db:"date" json:"date"`
	StartTime   string         `db:"start_time" json:"startTime"`
	EndTime     string         `db:"end_time" json:"endTime"`
	Location    string         `db:"location" json:"location"`
	Department  Department     `db:"department" json:"department"`
	Subject     string         `db:"subject" json:"subject"`
	ProfessorID string         `db:"professor_id" json:"-"`
	Professor   User           `db:"professor" json:"professor"`
	Materials   pq.StringArray `db:"materials" json:"materials,omitempty"`
	Semester    Semester       `db:"semester" json:"semester"`
}

// LectureFilter narrows lecture listings.
type LectureFilter struct {
	Department *Department
	Semester   *Semester
	Date       string
}
