// Package scope computes the visible subset and ordering of each portal
// collection for a given user, department and semester. All functions are
// pure projections: they never mutate their inputs and return fresh slices,
// so calling them twice over an unchanged snapshot yields identical output.
package scope

import (
	"sort"

	"github.com/campuslink/portal-api/internal/models"
)

// AnnouncementsFor returns the announcements visible to a department:
// department-less announcements plus those targeting the department.
// Ordering is department-specific first, then important, then newest;
// the sort is stable so equal keys keep their original insertion order.
func AnnouncementsFor(announcements []models.Announcement, department models.Department) []models.Announcement {
	result := make([]models.Announcement, 0, len(announcements))
	for _, a := range announcements {
		if a.Department == nil || *a.Department == department {
			result = append(result, a)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		iScoped := result[i].Department != nil && *result[i].Department == department
		jScoped := result[j].Department != nil && *result[j].Department == department
		if iScoped != jScoped {
			return iScoped
		}
		if result[i].Important != result[j].Important {
			return result[i].Important
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// AssignmentsFor returns the department's assignments, optionally narrowed
// to one semester, ordered by ascending due date.
func AssignmentsFor(assignments []models.Assignment, department models.Department, semester *models.Semester) []models.Assignment {
	result := make([]models.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.Department != department {
			continue
		}
		if semester != nil && a.Semester != *semester {
			continue
		}
		result = append(result, a)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DueDate < result[j].DueDate
	})
	return result
}

// TodayLecturesFor returns the department's lectures on the given day,
// optionally narrowed to one semester, ordered by ascending start time.
// The day is caller-supplied as a zero-padded ISO date string.
func TodayLecturesFor(lectures []models.Lecture, department models.Department, today string, semester *models.Semester) []models.Lecture {
	result := make([]models.Lecture, 0, len(lectures))
	for _, l := range lectures {
		if l.Department != department || l.Date != today {
			continue
		}
		if semester != nil && l.Semester != *semester {
			continue
		}
		result = append(result, l)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartTime < result[j].StartTime
	})
	return result
}

// SubjectsFor returns the department's subjects, optionally narrowed to one
// semester, ordered by ascending name.
func SubjectsFor(subjects []models.Subject, department models.Department, semester *models.Semester) []models.Subject {
	result := make([]models.Subject, 0, len(subjects))
	for _, s := range subjects {
		if s.Department != department {
			continue
		}
		if semester != nil && s.Semester != *semester {
			continue
		}
		result = append(result, s)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// AvailableSemestersFor returns the semesters a user may act within.
// Students get exactly their enrolled semester (empty when unset), teachers
// and department admins get their associated terms falling back to the full
// enumeration, and everyone else gets the full enumeration.
func AvailableSemestersFor(user models.User) []models.Semester {
	switch user.Role {
	case models.RoleStudent:
		if user.Semester == nil {
			return []models.Semester{}
		}
		return []models.Semester{*user.Semester}
	case models.RoleTeacher, models.RoleDepartmentAdmin:
		if associated := user.AssociatedSemesterValues(); len(associated) > 0 {
			return associated
		}
		return models.AllSemesters()
	default:
		return models.AllSemesters()
	}
}
