package models

import "time"

// Announcement is a portal-wide or department-scoped notice. A nil
// Department means the announcement is visible to every department;
// scoping only affects ordering and highlight state, never hides it.
type Announcement struct {
	ID         string      `db:"id" json:"id"`
	Title      string      `db:"title" json:"title"`
	Content    string      `db:"content" json:"content"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
	AuthorID   string      `db:"author_id" json:"-"`
	Author     User        `db:"author" json:"author"`
	Department *Department `db:"department" json:"department,omitempty"`
	Important  bool        `db:"important" json:"important,omitempty"`
	Semester   *Semester   `db:"semester" json:"semester,omitempty"`
}

// AnnouncementFilter narrows announcement listings. A department filter
// keeps both department-specific and department-less records.
type AnnouncementFilter struct {
	Department *Department
}
