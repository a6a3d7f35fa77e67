// Seed loads a small demo dataset so a fresh database has accounts to log
// in with. Safe to re-run against an empty database only.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuslink/portal-api/internal/models"
	"github.com/campuslink/portal-api/internal/repository"
	"github.com/campuslink/portal-api/pkg/config"
	"github.com/campuslink/portal-api/pkg/database"
)

func main() {
	var (
		password string
		timeout  time.Duration
	)
	flag.StringVar(&password, "password", "changeme123", "Password assigned to every seeded account")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall seed timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	users := repository.NewUserRepository(db)
	subjects := repository.NewSubjectRepository(db)
	announcements := repository.NewAnnouncementRepository(db)
	chats := repository.NewChatRepository(db)

	now := time.Now().UTC()
	fall := models.SemesterFall2023

	admin := &models.User{
		ID: uuid.NewString(), Name: "Priya Raman", Email: "priya.raman@campus.edu",
		PasswordHash: string(hash), Role: models.RoleAdmin,
		Department: models.DeptComputerScience, CreatedAt: now,
	}
	deptAdmin := &models.User{
		ID: uuid.NewString(), Name: "Marcus Webb", Email: "marcus.webb@campus.edu",
		PasswordHash: string(hash), Role: models.RoleDepartmentAdmin,
		Department: models.DeptComputerScience,
		AssociatedSemesters: []string{string(fall)}, CreatedAt: now,
	}
	teacher := &models.User{
		ID: uuid.NewString(), Name: "Elena Sousa", Email: "elena.sousa@campus.edu",
		PasswordHash: string(hash), Role: models.RoleTeacher,
		Department: models.DeptComputerScience,
		AssociatedSemesters: []string{string(fall)}, CreatedAt: now,
	}

	algorithms := &models.Subject{
		ID: uuid.NewString(), Name: "Algorithms", Code: "CS301",
		Department: models.DeptComputerScience, ProfessorID: teacher.ID,
		Description: "Design and analysis of algorithms.", Semester: fall,
	}
	databases := &models.Subject{
		ID: uuid.NewString(), Name: "Database Systems", Code: "CS305",
		Department: models.DeptComputerScience, ProfessorID: teacher.ID,
		Description: "Relational modelling, SQL and transactions.", Semester: fall,
	}
	teacher.TeachingSubjects = []string{algorithms.ID, databases.ID}

	student := &models.User{
		ID: uuid.NewString(), Name: "Tomas Lindqvist", Email: "tomas.lindqvist@campus.edu",
		PasswordHash: string(hash), Role: models.RoleStudent,
		Department: models.DeptComputerScience, Semester: &fall,
		EnrolledSubjects: []string{algorithms.ID}, CreatedAt: now,
	}

	for _, u := range []*models.User{admin, deptAdmin, teacher, student} {
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("failed to seed user %s: %v", u.Email, err)
		}
	}
	for _, s := range []*models.Subject{algorithms, databases} {
		if err := subjects.Create(ctx, s); err != nil {
			log.Fatalf("failed to seed subject %s: %v", s.Code, err)
		}
	}

	csDept := models.DeptComputerScience
	seededAnnouncements := []*models.Announcement{
		{
			ID: uuid.NewString(), Title: "Welcome back",
			Content:  "The fall term starts Monday. Check your timetable before the first lecture.",
			AuthorID: admin.ID, Important: true, CreatedAt: now,
		},
		{
			ID: uuid.NewString(), Title: "Lab access hours",
			Content:    "The CS lab is open weekdays 08:00 to 20:00 during term.",
			AuthorID:   deptAdmin.ID, Department: &csDept, Semester: &fall,
			CreatedAt: now.Add(time.Minute),
		},
	}
	for _, a := range seededAnnouncements {
		if err := announcements.Create(ctx, a); err != nil {
			log.Fatalf("failed to seed announcement %q: %v", a.Title, err)
		}
	}

	group := &models.ChatGroup{
		ID: uuid.NewString(), Name: "Algorithms Q&A",
		SubjectID: algorithms.ID, TeacherID: teacher.ID,
		Semester: fall, CreatedAt: now,
	}
	if err := chats.CreateGroup(ctx, group); err != nil {
		log.Fatalf("failed to seed chat group: %v", err)
	}
	if err := chats.CreateMessage(ctx, &models.Message{
		ID: uuid.NewString(), Content: "Welcome to the Q&A group. Post problem set questions here.",
		SenderID: teacher.ID, ChatGroupID: group.ID, CreatedAt: now,
	}); err != nil {
		log.Fatalf("failed to seed message: %v", err)
	}

	fmt.Printf("Seeded 4 users, 2 subjects, %d announcements, 1 chat group\n", len(seededAnnouncements))
	fmt.Printf("Log in with any seeded email and the chosen password (default changeme123)\n")
}
