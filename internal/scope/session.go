package scope

import (
	appErrors "github.com/campuslink/portal-api/pkg/errors"

	"github.com/campuslink/portal-api/internal/models"
)

// Session carries the acting user and their currently selected semester.
// It is an explicit value handed to scoping calls rather than process-wide
// state, so concurrent sessions never interfere.
type Session struct {
	User     models.User
	selected models.Semester
}

// NewSession builds a session defaulting to the user's first available
// semester, when any.
func NewSession(user models.User) *Session {
	s := &Session{User: user}
	if available := AvailableSemestersFor(user); len(available) > 0 {
		s.selected = available[0]
	}
	return s
}

// Selected returns the currently selected semester.
func (s *Session) Selected() models.Semester {
	return s.selected
}

// SelectSemester switches the session's semester. A student may only select
// their own enrolled semester; other roles may select any semester in their
// available set. A rejected selection is a policy violation, leaves the
// current selection unchanged, and performs no network call.
func (s *Session) SelectSemester(semester models.Semester) error {
	if s.User.Role == models.RoleStudent {
		if s.User.Semester == nil || *s.User.Semester != semester {
			return appErrors.Clone(appErrors.ErrPolicyViolation, "students cannot switch away from their enrolled semester")
		}
		s.selected = semester
		return nil
	}

	for _, available := range AvailableSemestersFor(s.User) {
		if available == semester {
			s.selected = semester
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrPolicyViolation, "semester is outside the user's associated terms")
}
