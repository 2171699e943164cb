// internal/router/router.go
package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/config"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/handlers"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/middleware"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/render"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/services"
)

func Setup(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	renderer := render.NewHTMLRenderer()
	documentService := services.NewDocumentService(db, renderer, storageService)
	progressService := services.NewProgressService(db)
	notificationService := services.NewNotificationService(cfg)
	authService := services.NewAuthService(db, cfg)
	internshipService := services.NewInternshipService(db)
	certificateService := services.NewCertificateService(db, cfg)
	enrollmentService := services.NewEnrollmentService(db, cfg, documentService, progressService, notificationService)
	withdrawalService := services.NewWithdrawalService(db, progressService, enrollmentService, notificationService)
	completionService := services.NewCompletionService(db, certificateService, enrollmentService, notificationService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	internshipHandler := handlers.NewInternshipHandler(internshipService)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService, progressService)
	certificateHandler := handlers.NewCertificateHandler(certificateService)
	adminHandler := handlers.NewAdminHandler(enrollmentService, withdrawalService, completionService, certificateService)

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.RateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// Public
	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimit())
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}

	v1.GET("/internships", internshipHandler.List)
	v1.GET("/internships/:id", internshipHandler.Get)
	v1.GET("/certificates/verify/:code", certificateHandler.Verify)

	// Authenticated
	authed := v1.Group("")
	authed.Use(middleware.AuthRequired())
	{
		authed.GET("/profile", authHandler.GetProfile)
	}

	// Student
	student := v1.Group("")
	student.Use(middleware.AuthRequired(), middleware.StudentRequired())
	{
		student.POST("/enrollments", enrollmentHandler.Request)
		student.GET("/enrollments", enrollmentHandler.ListMine)
		student.GET("/enrollments/:id", enrollmentHandler.Get)
		student.GET("/enrollments/:id/progress", enrollmentHandler.GetProgress)
		student.POST("/enrollments/:id/activate", enrollmentHandler.Activate)
		student.POST("/enrollments/:id/tasks/:taskId/complete", enrollmentHandler.CompleteTask)
		student.POST("/enrollments/:id/request-completion", enrollmentHandler.RequestCompletion)
		student.POST("/enrollments/:id/request-withdrawal", enrollmentHandler.RequestWithdrawal)
		student.GET("/certificates", certificateHandler.ListMine)

		documents := student.Group("/enrollments/:id/documents")
		documents.Use(middleware.DocumentRateLimit())
		{
			documents.GET("", enrollmentHandler.ListDocuments)
			documents.GET("/:type/preview", enrollmentHandler.PreviewDocument)
			documents.GET("/:type/download", enrollmentHandler.DownloadDocument)
		}
	}

	// Admin
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditTrail(db))
	{
		admin.POST("/internships", internshipHandler.Create)
		admin.PUT("/internships/:id", internshipHandler.Update)
		admin.GET("/internships/:id/tasks", internshipHandler.ListTasks)
		admin.POST("/internships/:id/tasks", internshipHandler.AddTask)
		admin.DELETE("/internships/:id/tasks/:taskId", internshipHandler.RemoveTask)

		admin.GET("/enrollments", adminHandler.ListEnrollments)
		admin.POST("/enrollments/:id/approve", adminHandler.ApproveEnrollment)
		admin.POST("/enrollments/:id/reject", adminHandler.RejectEnrollment)
		admin.POST("/enrollments/:id/request-completion", adminHandler.RequestCompletionOverride)
		admin.POST("/enrollments/:id/review", adminHandler.ReviewCompletion)
		admin.POST("/enrollments/:id/issue-certificate", adminHandler.IssueCertificate)
		admin.POST("/enrollments/:id/complete", adminHandler.CompleteForStudent)
		admin.POST("/enrollments/:id/documents/:type/regenerate", adminHandler.RegenerateDocument)

		admin.GET("/withdrawals", adminHandler.ListPendingWithdrawals)
		admin.POST("/withdrawals/:id/approve", adminHandler.ApproveWithdrawal)
		admin.POST("/withdrawals/:id/reject", adminHandler.RejectWithdrawal)

		admin.GET("/reviews", adminHandler.ListPendingReviews)

		admin.POST("/certificates/bulk-issue", adminHandler.BulkIssueCertificates)
		admin.POST("/certificates/:id/revoke", adminHandler.RevokeCertificate)
	}

	return r, nil
}
