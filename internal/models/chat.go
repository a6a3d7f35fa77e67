package models

import "time"

// ChatGroup is a subject-scoped discussion room created by a teacher.
// Students participate when they are enrolled in the group's subject.
type ChatGroup struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	SubjectID string    `db:"subject_id" json:"subjectId"`
	TeacherID string    `db:"teacher_id" json:"teacherId"`
	Semester  Semester  `db:"semester" json:"semester"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	Teacher   User      `db:"teacher" json:"teacher"`
}

// Message is a single chat entry. Listings are ordered ascending by
// CreatedAt so clients can render them without re-sorting.
type Message struct {
	ID          string    `db:"id" json:"id"`
	Content     string    `db:"content" json:"content"`
	SenderID    string    `db:"sender_id" json:"-"`
	Sender      User      `db:"sender" json:"sender"`
	ChatGroupID string    `db:"chat_group_id" json:"chatGroupId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// ChatGroupFilter narrows chat group listings to one participant.
type ChatGroupFilter struct {
	TeacherID string
	StudentID string
}
