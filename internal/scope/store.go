package scope

import "github.com/campuslink/portal-api/internal/models"

// Store is a read-only snapshot of the canonical entity collections. It is
// supplied externally and never mutated here; every scoping call is a fresh
// projection over the snapshot, so no locking is required.
type Store struct {
	Users         []models.User
	Subjects      []models.Subject
	Announcements []models.Announcement
	Assignments   []models.Assignment
	Lectures      []models.Lecture
	ChatGroups    []models.ChatGroup
	Messages      []models.Message
}

// UserByID resolves a user from the snapshot. The second return value is
// false when the user does not exist.
func (s *Store) UserByID(id string) (models.User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// EnrolledSubjectsFor returns the subjects a student is enrolled in,
// preserving the subject collection's own order. It returns an empty list
// when the user does not exist, is not a student, or has no enrollments.
func (s *Store) EnrolledSubjectsFor(userID string) []models.Subject {
	user, ok := s.UserByID(userID)
	if !ok || user.Role != models.RoleStudent || len(user.EnrolledSubjects) == 0 {
		return []models.Subject{}
	}

	enrolled := make(map[string]struct{}, len(user.EnrolledSubjects))
	for _, id := range user.EnrolledSubjects {
		enrolled[id] = struct{}{}
	}

	result := make([]models.Subject, 0, len(enrolled))
	for _, subject := range s.Subjects {
		if _, ok := enrolled[subject.ID]; ok {
			result = append(result, subject)
		}
	}
	return result
}
