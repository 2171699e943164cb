// internal/handlers/admin_handler.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/apperrors"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/services"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/utils"
)

// AdminHandler serves every admin decision endpoint: enrollment approval,
// withdrawal review, completion review, certificate issuance and revocation.
type AdminHandler struct {
	enrollmentService  *services.EnrollmentService
	withdrawalService  *services.WithdrawalService
	completionService  *services.CompletionService
	certificateService *services.CertificateService
}

func NewAdminHandler(
	enrollmentService *services.EnrollmentService,
	withdrawalService *services.WithdrawalService,
	completionService *services.CompletionService,
	certificateService *services.CertificateService,
) *AdminHandler {
	return &AdminHandler{
		enrollmentService:  enrollmentService,
		withdrawalService:  withdrawalService,
		completionService:  completionService,
		certificateService: certificateService,
	}
}

func (h *AdminHandler) ListEnrollments(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	status := models.EnrollmentStatus(c.Query("status"))

	enrollments, total, err := h.enrollmentService.ListByStatus(status, params.Limit, (params.Page-1)*params.Limit)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(enrollments, total, params))
}

func (h *AdminHandler) ApproveEnrollment(c *gin.Context) {
	adminID, enrollmentID, ok := adminAndPathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		StartDate *time.Time `json:"start_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	enrollment, err := h.enrollmentService.Approve(enrollmentID, adminID, req.StartDate)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, enrollment)
}

func (h *AdminHandler) RejectEnrollment(c *gin.Context) {
	adminID, enrollmentID, ok := adminAndPathID(c, "id")
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

	enrollment, err := h.enrollmentService.Reject(enrollmentID, adminID, req.Reason)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, enrollment)
}

// RequestCompletionOverride opens the completion review on the student's
// behalf, bypassing the task gate with a recorded reason.
func (h *AdminHandler) RequestCompletionOverride(c *gin.Context) {
	adminID, enrollmentID, ok := adminAndPathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		OverrideReason string `json:"override_reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "override_reason is required", nil)
		return
	}

	enrollment, err := h.enrollmentService.RequestCompletion(enrollmentID, adminID, true, req.OverrideReason)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, enrollment)
}

func (h *AdminHandler) ListPendingWithdrawals(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	requests, total, err := h.withdrawalService.ListPending(params.Limit, (params.Page-1)*params.Limit)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(requests, total, params))
}

func (h *AdminHandler) ApproveWithdrawal(c *gin.Context) {
	adminID, requestID, ok := adminAndPathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	c.ShouldBindJSON(&req)

	request, err := h.withdrawalService.Approve(requestID, adminID, req.Note)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	adminID, requestID, ok := adminAndPathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	c.ShouldBindJSON(&req)

	request, err := h.withdrawalService.Reject(requestID, adminID, req.Note)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

func (h *AdminHandler) ListPendingReviews(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	reviews, total, err := h.completionService.ListPending(params.Limit, (params.Page-1)*params.Limit)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(reviews, total, params))
}

func (h *AdminHandler) ReviewCompletion(c *gin.Context) {
	adminID, enrollmentID, ok := adminAndPathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Marks    *int   `json:"marks" binding:"required"`
		Feedback string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "marks is required", nil)
		return
	}

	review, err := h.completionService.Review(enrollmentID, adminID, *req.Marks, req.Feedback)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, review)
}

func (h *AdminHandler) IssueCertificate(c *gin.Context) {
	adminID, enrollmentID, ok := adminAndPathID(c, "id")
	if !ok {
		return
	}

	certificate, err := h.completionService.IssueCertificate(enrollmentID, adminID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, certificate)
}

// CompleteForStudent walks an active enrollment through review and, unless
// issue_certificate is false, certificate issuance in a single admin action.
func (h *AdminHandler) CompleteForStudent(c *gin.Context) {
	adminID, enrollmentID, ok := adminAndPathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Marks            *int   `json:"marks" binding:"required"`
		Feedback         string `json:"feedback"`
		OverrideReason   string `json:"override_reason" binding:"required"`
		IssueCertificate *bool  `json:"issue_certificate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "marks and override_reason are required", nil)
		return
	}

	issue := req.IssueCertificate == nil || *req.IssueCertificate
	review, certificate, err := h.completionService.CompleteInternshipForStudent(
		enrollmentID, adminID, *req.Marks, req.Feedback, req.OverrideReason, issue)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"review":      review,
		"certificate": certificate,
	})
}

func (h *AdminHandler) RevokeCertificate(c *gin.Context) {
	adminID, certificateID, ok := adminAndPathID(c, "id")
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

	certificate, err := h.certificateService.Revoke(certificateID, adminID, req.Reason)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, certificate)
}

// BulkIssueCertificates issues one certificate per student and reports
// per-student outcomes; a failure for one student never aborts the batch.
func (h *AdminHandler) BulkIssueCertificates(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req struct {
		ProgramID   string   `json:"program_id" binding:"required"`
		ProgramType string   `json:"program_type" binding:"required"`
		ProgramTag  string   `json:"program_tag"`
		StudentIDs  []string `json:"student_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "program_id, program_type and student_ids are required", nil)
		return
	}

	programID, err := uuid.Parse(req.ProgramID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid program ID", nil)
		return
	}

	studentIDs := make([]uuid.UUID, 0, len(req.StudentIDs))
	for _, raw := range req.StudentIDs {
		studentID, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid student ID: "+raw, nil)
			return
		}
		studentIDs = append(studentIDs, studentID)
	}

	results, err := h.certificateService.BulkIssue(
		programID, models.ProgramType(req.ProgramType), req.ProgramTag, studentIDs, adminID)
	if err != nil && !apperrors.IsPartialBatch(err) {
		utils.ServiceErrorResponse(c, err)
		return
	}

	succeeded := 0
	for _, r := range results {
		if r.Error == "" {
			succeeded++
		}
	}

	utils.SuccessResponseWithMeta(c, results, gin.H{
		"requested": len(results),
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
		"partial":   err != nil,
	})
}

// RegenerateDocument is the explicit render retry for any enrollment.
func (h *AdminHandler) RegenerateDocument(c *gin.Context) {
	_, enrollmentID, ok := adminAndPathID(c, "id")
	if !ok {
		return
	}

	documentType, ok := parseDocumentType(c)
	if !ok {
		return
	}

	document, err := h.enrollmentService.RegenerateDocument(enrollmentID, documentType)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, document)
}

func adminAndPathID(c *gin.Context, param string) (uuid.UUID, uuid.UUID, bool) {
	adminID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ID in path", nil)
		return uuid.Nil, uuid.Nil, false
	}

	return adminID, pathID, true
}
