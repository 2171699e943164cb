// internal/handlers/enrollment_handler.go
package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/services"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/utils"
)

// EnrollmentHandler serves the student-facing lifecycle endpoints. Every
// endpoint verifies the enrollment belongs to the caller.
type EnrollmentHandler struct {
	enrollmentService *services.EnrollmentService
	progressService   *services.ProgressService
}

func NewEnrollmentHandler(enrollmentService *services.EnrollmentService, progressService *services.ProgressService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
		progressService:   progressService,
	}
}

func (h *EnrollmentHandler) Request(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req struct {
		InternshipID string `json:"internship_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "internship_id is required", nil)
		return
	}

	internshipID, err := uuid.Parse(req.InternshipID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid internship ID", nil)
		return
	}

	enrollment, err := h.enrollmentService.RequestEnrollment(userID, internshipID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, enrollment)
}

func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	enrollments, err := h.enrollmentService.ListForStudent(userID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, enrollments)
}

func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, ok := h.ownedEnrollment(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, enrollment)
}

func (h *EnrollmentHandler) GetProgress(c *gin.Context) {
	enrollment, ok := h.ownedEnrollment(c)
	if !ok {
		return
	}

	progress, err := h.progressService.GetProgress(enrollment.ID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"tasks_completed":  progress.TasksCompleted,
		"total_tasks":      progress.TotalTasks,
		"progress_percent": progress.Percent(),
		"complete":         progress.Complete(),
	})
}

func (h *EnrollmentHandler) CompleteTask(c *gin.Context) {
	enrollment, ok := h.ownedEnrollment(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid task ID", nil)
		return
	}

	completion, err := h.progressService.CompleteTask(enrollment.ID, taskID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, completion)
}

func (h *EnrollmentHandler) Activate(c *gin.Context) {
	enrollment, ok := h.ownedEnrollment(c)
	if !ok {
		return
	}

	updated, err := h.enrollmentService.Activate(enrollment.ID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, updated)
}

func (h *EnrollmentHandler) RequestCompletion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	enrollment, ok := h.ownedEnrollment(c)
	if !ok {
		return
	}

	updated, err := h.enrollmentService.RequestCompletion(enrollment.ID, userID, false, "")
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, updated)
}

func (h *EnrollmentHandler) RequestWithdrawal(c *gin.Context) {
	enrollment, ok := h.ownedEnrollment(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "reason is required", nil)
		return
	}

	request, err := h.enrollmentService.RequestWithdrawal(enrollment.ID, req.Reason)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, request)
}

func (h *EnrollmentHandler) ListDocuments(c *gin.Context) {
	enrollment, ok := h.ownedEnrollment(c)
	if !ok {
		return
	}

	documents, err := h.enrollmentService.ListDocuments(enrollment.ID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, documents)
}

// PreviewDocument renders inline; generation happens on demand.
func (h *EnrollmentHandler) PreviewDocument(c *gin.Context) {
	enrollment, ok := h.ownedEnrollment(c)
	if !ok {
		return
	}

	documentType, ok := parseDocumentType(c)
	if !ok {
		return
	}

	document, err := h.enrollmentService.PreviewDocument(enrollment.ID, documentType)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	c.Data(200, document.ContentType, document.Content)
}

// DownloadDocument serves only an already generated artifact as an
// attachment.
func (h *EnrollmentHandler) DownloadDocument(c *gin.Context) {
	enrollment, ok := h.ownedEnrollment(c)
	if !ok {
		return
	}

	documentType, ok := parseDocumentType(c)
	if !ok {
		return
	}

	document, err := h.enrollmentService.DownloadDocument(enrollment.ID, documentType)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.html", documentType, document.ContentRef[:12])
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, document.ContentType, document.Content)
}

// ownedEnrollment loads the enrollment in the path and verifies ownership.
// A response has already been written when ok is false.
func (h *EnrollmentHandler) ownedEnrollment(c *gin.Context) (*models.Enrollment, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return nil, false
	}

	enrollmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid enrollment ID", nil)
		return nil, false
	}

	enrollment, err := h.enrollmentService.GetEnrollment(enrollmentID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return nil, false
	}

	if enrollment.StudentID != userID {
		utils.ForbiddenResponse(c, "")
		return nil, false
	}

	return enrollment, true
}

func parseDocumentType(c *gin.Context) (models.DocumentType, bool) {
	documentType := models.DocumentType(c.Param("type"))
	if !documentType.Valid() {
		utils.BadRequestResponse(c, "Unknown document type", nil)
		return "", false
	}
	return documentType, true
}
