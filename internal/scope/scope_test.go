package scope

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/portal-api/internal/models"
)

func deptPtr(d models.Department) *models.Department { return &d }

func semPtr(s models.Semester) *models.Semester { return &s }

func announcementFixtures() []models.Announcement {
	base := time.Date(2023, 11, 1, 9, 0, 0, 0, time.UTC)
	return []models.Announcement{
		{ID: "a1", Title: "Library hours", CreatedAt: base},
		{ID: "a2", Title: "CS lab closed", Department: deptPtr(models.DeptComputerScience), CreatedAt: base.Add(time.Hour)},
		{ID: "a3", Title: "Exam schedule", Important: true, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "a4", Title: "Physics colloquium", Department: deptPtr(models.DeptPhysics), CreatedAt: base.Add(3 * time.Hour)},
		{ID: "a5", Title: "CS curriculum update", Department: deptPtr(models.DeptComputerScience), Important: true, CreatedAt: base.Add(4 * time.Hour)},
	}
}

func TestAnnouncementsForFiltersForeignDepartments(t *testing.T) {
	visible := AnnouncementsFor(announcementFixtures(), models.DeptComputerScience)

	ids := make([]string, 0, len(visible))
	for _, a := range visible {
		ids = append(ids, a.ID)
	}
	// a4 targets Physics and is hidden; department-less announcements stay.
	assert.NotContains(t, ids, "a4")
	assert.Contains(t, ids, "a1")
	assert.Contains(t, ids, "a3")
}

func TestAnnouncementsForOrdersDepartmentFirst(t *testing.T) {
	visible := AnnouncementsFor(announcementFixtures(), models.DeptComputerScience)
	require.Len(t, visible, 4)

	// Department-scoped before global, important before plain, newest first.
	assert.Equal(t, "a5", visible[0].ID)
	assert.Equal(t, "a2", visible[1].ID)
	assert.Equal(t, "a3", visible[2].ID)
	assert.Equal(t, "a1", visible[3].ID)

	for _, global := range visible[2:] {
		assert.Nil(t, global.Department)
	}
}

func TestAnnouncementsForStableOnEqualKeys(t *testing.T) {
	createdAt := time.Date(2023, 11, 1, 9, 0, 0, 0, time.UTC)
	announcements := []models.Announcement{
		{ID: "first", CreatedAt: createdAt},
		{ID: "second", CreatedAt: createdAt},
		{ID: "third", CreatedAt: createdAt},
	}

	visible := AnnouncementsFor(announcements, models.DeptBiology)
	require.Len(t, visible, 3)
	assert.Equal(t, "first", visible[0].ID)
	assert.Equal(t, "second", visible[1].ID)
	assert.Equal(t, "third", visible[2].ID)
}

func TestAnnouncementsForEmptyInput(t *testing.T) {
	assert.Empty(t, AnnouncementsFor(nil, models.DeptBiology))
}

func TestAssignmentsForFiltersAndSorts(t *testing.T) {
	assignments := []models.Assignment{
		{ID: "late", Department: models.DeptComputerScience, Semester: models.SemesterSpring2024, DueDate: "2024-04-30"},
		{ID: "other-dept", Department: models.DeptBiology, Semester: models.SemesterSpring2024, DueDate: "2024-01-01"},
		{ID: "early", Department: models.DeptComputerScience, Semester: models.SemesterSpring2024, DueDate: "2024-02-01"},
		{ID: "other-sem", Department: models.DeptComputerScience, Semester: models.SemesterFall2023, DueDate: "2023-10-01"},
	}

	result := AssignmentsFor(assignments, models.DeptComputerScience, semPtr(models.SemesterSpring2024))
	require.Len(t, result, 2)
	assert.Equal(t, "early", result[0].ID)
	assert.Equal(t, "late", result[1].ID)

	for _, a := range result {
		assert.Equal(t, models.DeptComputerScience, a.Department)
		assert.Equal(t, models.SemesterSpring2024, a.Semester)
	}
}

func TestAssignmentsForWithoutSemesterKeepsAllTerms(t *testing.T) {
	assignments := []models.Assignment{
		{ID: "fall", Department: models.DeptComputerScience, Semester: models.SemesterFall2023, DueDate: "2023-10-01"},
		{ID: "spring", Department: models.DeptComputerScience, Semester: models.SemesterSpring2024, DueDate: "2024-02-01"},
	}

	result := AssignmentsFor(assignments, models.DeptComputerScience, nil)
	require.Len(t, result, 2)
	assert.Equal(t, "fall", result[0].ID)
}

func TestTodayLecturesForSampleDay(t *testing.T) {
	lectures := []models.Lecture{
		{ID: "cs-late", Department: models.DeptComputerScience, Date: "2023-11-16", StartTime: "13:00", Semester: models.SemesterFall2023},
		{ID: "bio", Department: models.DeptBiology, Date: "2023-11-16", StartTime: "09:00", Semester: models.SemesterFall2023},
		{ID: "cs-early", Department: models.DeptComputerScience, Date: "2023-11-16", StartTime: "10:00", Semester: models.SemesterFall2023},
		{ID: "cs-tomorrow", Department: models.DeptComputerScience, Date: "2023-11-17", StartTime: "08:00", Semester: models.SemesterFall2023},
	}

	result := TodayLecturesFor(lectures, models.DeptComputerScience, "2023-11-16", nil)
	require.Len(t, result, 2)
	assert.Equal(t, "cs-early", result[0].ID)
	assert.Equal(t, "cs-late", result[1].ID)
}

func TestSubjectsForSortsByName(t *testing.T) {
	subjects := []models.Subject{
		{ID: "s1", Name: "Operating Systems", Department: models.DeptComputerScience, Semester: models.SemesterFall2023},
		{ID: "s2", Name: "Algorithms", Department: models.DeptComputerScience, Semester: models.SemesterFall2023},
		{ID: "s3", Name: "Genetics", Department: models.DeptBiology, Semester: models.SemesterFall2023},
	}

	result := SubjectsFor(subjects, models.DeptComputerScience, nil)
	require.Len(t, result, 2)
	assert.Equal(t, "Algorithms", result[0].Name)
	assert.Equal(t, "Operating Systems", result[1].Name)
}

func TestUnknownDepartmentYieldsEmptyNotError(t *testing.T) {
	assignments := []models.Assignment{
		{ID: "a", Department: models.DeptComputerScience, Semester: models.SemesterFall2023, DueDate: "2023-10-01"},
	}

	assert.Empty(t, AssignmentsFor(assignments, models.Department("Alchemy"), nil))
	assert.Empty(t, TodayLecturesFor(nil, models.Department("Alchemy"), "2023-11-16", nil))
}

func TestAvailableSemestersForStudent(t *testing.T) {
	sem := models.SemesterSpring2024
	student := models.User{ID: "u1", Role: models.RoleStudent, Semester: &sem}

	result := AvailableSemestersFor(student)
	require.Len(t, result, 1)
	assert.Equal(t, models.SemesterSpring2024, result[0])

	// Student without an enrolled semester sees nothing.
	assert.Empty(t, AvailableSemestersFor(models.User{ID: "u2", Role: models.RoleStudent}))
}

func TestAvailableSemestersForStudentNeverExceedsOne(t *testing.T) {
	sem := models.SemesterFall2024
	student := models.User{
		Role:                models.RoleStudent,
		Semester:            &sem,
		AssociatedSemesters: []string{string(models.SemesterFall2023), string(models.SemesterSpring2024)},
	}
	assert.LessOrEqual(t, len(AvailableSemestersFor(student)), 1)
}

func TestAvailableSemestersForTeacher(t *testing.T) {
	teacher := models.User{
		Role:                models.RoleTeacher,
		AssociatedSemesters: []string{string(models.SemesterFall2023), string(models.SemesterSpring2024)},
	}

	result := AvailableSemestersFor(teacher)
	require.Len(t, result, 2)
	assert.Equal(t, models.SemesterFall2023, result[0])

	// Without associated terms, the full enumeration applies.
	assert.Equal(t, models.AllSemesters(), AvailableSemestersFor(models.User{Role: models.RoleTeacher}))
}

func TestAvailableSemestersForAdminAlwaysFull(t *testing.T) {
	sem := models.SemesterFall2023
	admin := models.User{
		Role:                models.RoleAdmin,
		Semester:            &sem,
		AssociatedSemesters: []string{string(models.SemesterSpring2024)},
	}
	assert.Equal(t, models.AllSemesters(), AvailableSemestersFor(admin))

	// Unknown roles fall back to the full enumeration as well.
	assert.Equal(t, models.AllSemesters(), AvailableSemestersFor(models.User{Role: models.UserRole("registrar")}))
}

func TestScopingFunctionsAreIdempotent(t *testing.T) {
	announcements := announcementFixtures()

	first := AnnouncementsFor(announcements, models.DeptComputerScience)
	second := AnnouncementsFor(announcements, models.DeptComputerScience)
	assert.Equal(t, first, second)

	// The input slice must be left untouched.
	assert.Equal(t, "a1", announcements[0].ID)
	assert.Equal(t, "a5", announcements[4].ID)
}

func TestEnrolledSubjectsFor(t *testing.T) {
	store := &Store{
		Users: []models.User{
			{ID: "stu-1", Role: models.RoleStudent, EnrolledSubjects: []string{"sub-2", "sub-3"}},
			{ID: "teach-1", Role: models.RoleTeacher, TeachingSubjects: []string{"sub-1"}},
		},
		Subjects: []models.Subject{
			{ID: "sub-1", Name: "Databases"},
			{ID: "sub-2", Name: "Networks"},
			{ID: "sub-3", Name: "Compilers"},
		},
	}

	result := store.EnrolledSubjectsFor("stu-1")
	require.Len(t, result, 2)
	// Collection order is preserved, no extra sort.
	assert.Equal(t, "sub-2", result[0].ID)
	assert.Equal(t, "sub-3", result[1].ID)

	assert.Empty(t, store.EnrolledSubjectsFor("missing"))
	assert.Empty(t, store.EnrolledSubjectsFor("teach-1"))
}
