// internal/services/testhelper_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/config"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/render"
)

// testEnv wires the full service graph against an in-memory database.
type testEnv struct {
	db            *gorm.DB
	cfg           *config.Config
	documents     *DocumentService
	progress      *ProgressService
	notifications *NotificationService
	enrollments   *EnrollmentService
	withdrawals   *WithdrawalService
	completions   *CompletionService
	certificates  *CertificateService
	internships   *InternshipService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A single connection keeps the whole test on one in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Internship{},
		&models.InternshipTask{},
		&models.Enrollment{},
		&models.TaskCompletion{},
		&models.CompletionReview{},
		&models.WithdrawalRequest{},
		&models.Certificate{},
		&models.GeneratedDocument{},
		&models.AuditLog{},
	))

	cfg := &config.Config{
		Environment: "test",
		Certificate: config.CertificateConfig{
			CodePrefix:     "CERT",
			DefaultTag:     "CSL",
			AllocRetries:   5,
			VerifyBaseURL:  "https://codesprintlabs.com/verify",
			IssuerName:     "CodeSprint Labs",
			IssuerLocation: "Ahmedabad, India",
		},
	}

	storage, err := NewStorageService(cfg)
	require.NoError(t, err)

	documents := NewDocumentService(db, render.NewHTMLRenderer(), storage)
	progress := NewProgressService(db)
	notifications := NewNotificationService(cfg)
	certificates := NewCertificateService(db, cfg)
	enrollments := NewEnrollmentService(db, cfg, documents, progress, notifications)
	withdrawals := NewWithdrawalService(db, progress, enrollments, notifications)
	completions := NewCompletionService(db, certificates, enrollments, notifications)
	internships := NewInternshipService(db)

	t.Cleanup(func() { sqlDB.Close() })

	return &testEnv{
		db:            db,
		cfg:           cfg,
		documents:     documents,
		progress:      progress,
		notifications: notifications,
		enrollments:   enrollments,
		withdrawals:   withdrawals,
		completions:   completions,
		certificates:  certificates,
		internships:   internships,
	}
}

func (env *testEnv) createStudent(t *testing.T, name, email string) *models.User {
	t.Helper()

	student := &models.User{
		FullName: name,
		Email:    email,
		UserType: models.UserTypeStudent,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, student.SetPassword("Student123!"))
	require.NoError(t, env.db.Create(student).Error)
	return student
}

func (env *testEnv) createAdmin(t *testing.T) *models.User {
	t.Helper()

	admin := &models.User{
		FullName: "Program Admin",
		Email:    "admin@example.com",
		UserType: models.UserTypeAdmin,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, admin.SetPassword("Admin123!@#"))
	require.NoError(t, env.db.Create(admin).Error)
	return admin
}

func (env *testEnv) createInternship(t *testing.T, taskCount int) *models.Internship {
	t.Helper()

	internship, err := env.internships.Create(&CreateInternshipRequest{
		Title:            "Backend Engineering Internship",
		Domain:           "Backend",
		Description:      "Build and ship production Go services.",
		DurationWeeks:    8,
		ProgramTag:       "BE",
		Responsibilities: []string{"REST API development", "database design"},
		Skills:           []string{"Go", "PostgreSQL"},
	})
	require.NoError(t, err)

	for i := 0; i < taskCount; i++ {
		_, err := env.internships.AddTask(internship.ID, &CreateTaskRequest{
			Title:      "Task " + string(rune('A'+i)),
			OrderIndex: i,
		})
		require.NoError(t, err)
	}

	return internship
}
