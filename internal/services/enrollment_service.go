// internal/services/enrollment_service.go
package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/apperrors"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/config"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/database"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/render"
)

const documentDateLayout = "2 January 2006"

// EnrollmentService is the lifecycle engine. Every status transition on an
// enrollment goes through here, runs under the per-enrollment lock, and is
// guarded against the current status. Documents are generated after the
// transition commits; a render failure never rolls a transition back.
type EnrollmentService struct {
	db            *gorm.DB
	cfg           *config.Config
	documents     *DocumentService
	progress      *ProgressService
	notifications *NotificationService
}

func NewEnrollmentService(db *gorm.DB, cfg *config.Config, documents *DocumentService, progress *ProgressService, notifications *NotificationService) *EnrollmentService {
	return &EnrollmentService{
		db:            db,
		cfg:           cfg,
		documents:     documents,
		progress:      progress,
		notifications: notifications,
	}
}

// RequestEnrollment opens a new enrollment in status "requested". A student
// may hold at most one non-terminal enrollment per internship; a rejected or
// withdrawn enrollment stays as history and a re-request creates a fresh row.
func (s *EnrollmentService) RequestEnrollment(studentID, internshipID uuid.UUID) (*models.Enrollment, error) {
	var internship models.Internship
	if err := s.db.First(&internship, internshipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("internship", internshipID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !internship.IsActive {
		return nil, apperrors.NewValidation("internship is not open for enrollment")
	}

	var existing []models.Enrollment
	if err := s.db.Where("student_id = ? AND internship_id = ?", studentID, internshipID).
		Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	for _, e := range existing {
		if !e.Status.IsTerminal() {
			return nil, apperrors.NewConflict("an enrollment for this internship is already in progress")
		}
	}

	enrollment := &models.Enrollment{
		StudentID:    studentID,
		InternshipID: internshipID,
		Status:       models.EnrollmentStatusRequested,
		RequestedAt:  time.Now(),
	}

	if err := s.db.Create(enrollment).Error; err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	return enrollment, nil
}

func (s *EnrollmentService) GetEnrollment(enrollmentID uuid.UUID) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := s.db.Preload("Student").Preload("Internship").Preload("Review").
		Preload("WithdrawalRequests").First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("enrollment", enrollmentID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &enrollment, nil
}

func (s *EnrollmentService) ListForStudent(studentID uuid.UUID) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := s.db.Preload("Internship").Where("student_id = ?", studentID).
		Order("requested_at desc").Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch enrollments: %w", err)
	}
	return enrollments, nil
}

// ListByStatus is the admin review queue view.
func (s *EnrollmentService) ListByStatus(status models.EnrollmentStatus, limit, offset int) ([]models.Enrollment, int64, error) {
	query := s.db.Model(&models.Enrollment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	var enrollments []models.Enrollment
	if err := query.Preload("Student").Preload("Internship").
		Order("requested_at asc").Limit(limit).Offset(offset).
		Find(&enrollments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch enrollments: %w", err)
	}

	return enrollments, total, nil
}

// Approve moves requested -> approved, schedules the internship window and
// generates the MOU and offer letter. Approving an already approved
// enrollment is a no-op returning the current state, so a double-submitted
// admin action cannot corrupt anything.
func (s *EnrollmentService) Approve(enrollmentID, adminID uuid.UUID, startDate *time.Time) (*models.Enrollment, error) {
	unlock := lockEnrollment(enrollmentID)
	defer unlock()

	enrollment, err := s.GetEnrollment(enrollmentID)
	if err != nil {
		return nil, err
	}

	if enrollment.Status == models.EnrollmentStatusApproved {
		return enrollment, nil
	}
	if enrollment.Status != models.EnrollmentStatusRequested {
		return nil, apperrors.NewInvalidTransition("enrollment", string(enrollment.Status), "approve")
	}

	now := time.Now()
	start := now
	if startDate != nil {
		start = *startDate
		// Day granularity: approving with today's date is fine, any
		// earlier day is not.
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if start.Before(today) {
			return nil, apperrors.NewValidation("start date must not be in the past")
		}
	}
	end := start.AddDate(0, 0, enrollment.Internship.DurationWeeks*7)

	enrollment.Status = models.EnrollmentStatusApproved
	enrollment.ApprovedAt = &now
	enrollment.StartDate = &start
	enrollment.EndDate = &end
	enrollment.DecidedBy = &adminID

	if err := s.db.Save(enrollment).Error; err != nil {
		return nil, fmt.Errorf("failed to approve enrollment: %w", err)
	}

	createAuditLog(s.db, adminID, "enrollment.approve", "enrollment", &enrollment.ID,
		models.JSONB{"status": string(models.EnrollmentStatusRequested)},
		models.JSONB{"status": string(models.EnrollmentStatusApproved)})

	// The approval is committed; onboarding documents are generated best
	// effort and can be regenerated from the document endpoints.
	s.generateAfterTransition(enrollment, models.DocumentTypeMOU, models.DocumentTypeOfferLetter)

	s.notifications.NotifyEnrollmentApproved(&enrollment.Student, &enrollment.Internship)

	return enrollment, nil
}

// Reject is terminal. The student may submit a fresh enrollment request for
// the same internship afterwards.
func (s *EnrollmentService) Reject(enrollmentID, adminID uuid.UUID, reason string) (*models.Enrollment, error) {
	unlock := lockEnrollment(enrollmentID)
	defer unlock()

	enrollment, err := s.GetEnrollment(enrollmentID)
	if err != nil {
		return nil, err
	}

	if enrollment.Status != models.EnrollmentStatusRequested {
		return nil, apperrors.NewInvalidTransition("enrollment", string(enrollment.Status), "reject")
	}

	now := time.Now()
	enrollment.Status = models.EnrollmentStatusRejected
	enrollment.RejectedAt = &now
	enrollment.RejectionReason = reason
	enrollment.DecidedBy = &adminID

	if err := s.db.Save(enrollment).Error; err != nil {
		return nil, fmt.Errorf("failed to reject enrollment: %w", err)
	}

	createAuditLog(s.db, adminID, "enrollment.reject", "enrollment", &enrollment.ID,
		models.JSONB{"status": string(models.EnrollmentStatusRequested)},
		models.JSONB{"status": string(models.EnrollmentStatusRejected), "reason": reason})

	s.notifications.NotifyEnrollmentRejected(&enrollment.Student, &enrollment.Internship, reason)

	return enrollment, nil
}

// Activate moves approved -> active once the start date has arrived. The
// same transition also happens lazily on the first task interaction, so
// calling this endpoint is optional.
func (s *EnrollmentService) Activate(enrollmentID uuid.UUID) (*models.Enrollment, error) {
	unlock := lockEnrollment(enrollmentID)
	defer unlock()

	enrollment, err := s.GetEnrollment(enrollmentID)
	if err != nil {
		return nil, err
	}

	if enrollment.Status == models.EnrollmentStatusActive {
		return enrollment, nil
	}
	if enrollment.Status != models.EnrollmentStatusApproved {
		return nil, apperrors.NewInvalidTransition("enrollment", string(enrollment.Status), "activate")
	}
	if enrollment.StartDate == nil || enrollment.StartDate.After(time.Now()) {
		return nil, apperrors.NewInvalidTransition("enrollment", string(enrollment.Status), "activate before start date")
	}

	now := time.Now()
	enrollment.Status = models.EnrollmentStatusActive
	enrollment.ActivatedAt = &now

	if err := s.db.Save(enrollment).Error; err != nil {
		return nil, fmt.Errorf("failed to activate enrollment: %w", err)
	}

	return enrollment, nil
}

// RequestCompletion moves active -> completion_requested and opens a pending
// review. The student path requires every task done; an admin may override
// the gate with a recorded reason.
func (s *EnrollmentService) RequestCompletion(enrollmentID, actorID uuid.UUID, adminOverride bool, overrideReason string) (*models.Enrollment, error) {
	unlock := lockEnrollment(enrollmentID)
	defer unlock()

	enrollment, err := s.GetEnrollment(enrollmentID)
	if err != nil {
		return nil, err
	}

	if enrollment.Status != models.EnrollmentStatusActive {
		return nil, apperrors.NewInvalidTransition("enrollment", string(enrollment.Status), "request_completion")
	}

	if adminOverride {
		if strings.TrimSpace(overrideReason) == "" {
			return nil, apperrors.NewValidation("override reason is required when bypassing the task gate")
		}
	} else {
		progress, err := s.progress.GetProgress(enrollmentID)
		if err != nil {
			return nil, err
		}
		if !progress.Complete() {
			return nil, apperrors.NewInvalidTransition("enrollment",
				fmt.Sprintf("active with %d/%d tasks", progress.TasksCompleted, progress.TotalTasks),
				"request_completion")
		}
	}

	now := time.Now()
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		enrollment.Status = models.EnrollmentStatusCompletionRequested
		enrollment.CompletionRequestedAt = &now
		if err := tx.Save(enrollment).Error; err != nil {
			return fmt.Errorf("failed to update enrollment: %w", err)
		}

		review := &models.CompletionReview{
			EnrollmentID:   enrollment.ID,
			Status:         models.ReviewStatusPending,
			AdminInitiated: adminOverride,
			OverrideReason: overrideReason,
		}
		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to open completion review: %w", err)
		}

		enrollment.Review = review
		return nil
	})
	if err != nil {
		return nil, err
	}

	if adminOverride {
		createAuditLog(s.db, actorID, "enrollment.request_completion_override", "enrollment", &enrollment.ID,
			nil, models.JSONB{"override_reason": overrideReason})
	}

	s.notifications.NotifyCompletionRequested(&enrollment.Student, &enrollment.Internship)

	return enrollment, nil
}

// RequestWithdrawal opens a pending withdrawal request and parks the
// enrollment in withdrawal_requested, remembering the sub-state to restore
// if the request is rejected. Only active and completion_requested
// enrollments may withdraw, and at most one pending request may exist.
func (s *EnrollmentService) RequestWithdrawal(enrollmentID uuid.UUID, reason string) (*models.WithdrawalRequest, error) {
	unlock := lockEnrollment(enrollmentID)
	defer unlock()

	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidation("withdrawal reason is required")
	}

	enrollment, err := s.GetEnrollment(enrollmentID)
	if err != nil {
		return nil, err
	}

	switch enrollment.Status {
	case models.EnrollmentStatusActive, models.EnrollmentStatusCompletionRequested:
		// withdrawable sub-states
	case models.EnrollmentStatusWithdrawalRequested:
		return nil, apperrors.NewConflict("a withdrawal request is already pending for this enrollment")
	default:
		return nil, apperrors.NewInvalidTransition("enrollment", string(enrollment.Status), "request_withdrawal")
	}

	var pendingCount int64
	if err := s.db.Model(&models.WithdrawalRequest{}).
		Where("enrollment_id = ? AND status = ?", enrollmentID, models.WithdrawalStatusPending).
		Count(&pendingCount).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if pendingCount > 0 {
		return nil, apperrors.NewConflict("a withdrawal request is already pending for this enrollment")
	}

	now := time.Now()
	prior := enrollment.Status
	request := &models.WithdrawalRequest{
		EnrollmentID: enrollment.ID,
		Status:       models.WithdrawalStatusPending,
		Reason:       reason,
		ResumeStatus: prior,
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("failed to create withdrawal request: %w", err)
		}

		enrollment.PriorStatus = &prior
		enrollment.Status = models.EnrollmentStatusWithdrawalRequested
		enrollment.WithdrawalRequestedAt = &now
		if err := tx.Save(enrollment).Error; err != nil {
			return fmt.Errorf("failed to update enrollment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// PreviewDocument returns the document for an enrollment, generating it if
// missing or stale. Repeated previews with unchanged source data return the
// identical cached artifact.
func (s *EnrollmentService) PreviewDocument(enrollmentID uuid.UUID, documentType models.DocumentType) (*models.GeneratedDocument, error) {
	enrollment, err := s.GetEnrollment(enrollmentID)
	if err != nil {
		return nil, err
	}

	return s.documents.GetOrGenerate(enrollmentID, documentType, s.fieldsFor(enrollment, documentType))
}

// DownloadDocument returns only an already generated document; it never
// mints a new artifact as a side effect of a download.
func (s *EnrollmentService) DownloadDocument(enrollmentID uuid.UUID, documentType models.DocumentType) (*models.GeneratedDocument, error) {
	if _, err := s.GetEnrollment(enrollmentID); err != nil {
		return nil, err
	}
	return s.documents.Get(enrollmentID, documentType)
}

// RegenerateDocument is the explicit retry path after a render failure or a
// source-data correction.
func (s *EnrollmentService) RegenerateDocument(enrollmentID uuid.UUID, documentType models.DocumentType) (*models.GeneratedDocument, error) {
	return s.PreviewDocument(enrollmentID, documentType)
}

func (s *EnrollmentService) ListDocuments(enrollmentID uuid.UUID) ([]models.GeneratedDocument, error) {
	if _, err := s.GetEnrollment(enrollmentID); err != nil {
		return nil, err
	}
	return s.documents.List(enrollmentID)
}

// generateAfterTransition renders documents once the transition has
// committed. Failures are logged; the documents remain generatable through
// the regenerate endpoint.
func (s *EnrollmentService) generateAfterTransition(enrollment *models.Enrollment, types ...models.DocumentType) {
	for _, documentType := range types {
		if _, err := s.documents.GetOrGenerate(enrollment.ID, documentType, s.fieldsFor(enrollment, documentType)); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"enrollment_id": enrollment.ID,
				"document_type": documentType,
			}).Error("Failed to generate document after transition")
		}
	}
}

// fieldsFor returns the deferred field assembly for one document type. Each
// assembler also enforces availability: a document whose lifecycle stage has
// not been reached reports an invalid transition, not an empty letter.
func (s *EnrollmentService) fieldsFor(enrollment *models.Enrollment, documentType models.DocumentType) FieldsFn {
	return func() (render.Fields, error) {
		switch documentType {
		case models.DocumentTypeMOU:
			return s.onboardingFields(enrollment, "Memorandum of Understanding")
		case models.DocumentTypeOfferLetter:
			return s.onboardingFields(enrollment, "Internship Offer Letter")
		case models.DocumentTypePartialCompletionLetter:
			return s.withdrawalFields(enrollment, "Partial Completion Letter")
		case models.DocumentTypeRelievingLetter:
			return s.withdrawalFields(enrollment, "Relieving Letter")
		case models.DocumentTypeCompletionLetter:
			return s.completionFields(enrollment, "Internship Completion Letter")
		case models.DocumentTypeCertificate:
			return s.certificateFields(enrollment)
		default:
			return nil, apperrors.NewValidation(fmt.Sprintf("unknown document type %q", documentType))
		}
	}
}

func (s *EnrollmentService) baseFields(enrollment *models.Enrollment, title string) render.Fields {
	return render.Fields{
		"document_title":    title,
		"issuer_name":       s.cfg.Certificate.IssuerName,
		"issuer_location":   s.cfg.Certificate.IssuerLocation,
		"student_name":      enrollment.Student.FullName,
		"student_email":     enrollment.Student.Email,
		"internship_title":  enrollment.Internship.Title,
		"internship_domain": enrollment.Internship.Domain,
	}
}

func (s *EnrollmentService) onboardingFields(enrollment *models.Enrollment, title string) (render.Fields, error) {
	if enrollment.ApprovedAt == nil || enrollment.StartDate == nil || enrollment.EndDate == nil {
		return nil, apperrors.NewInvalidTransition("enrollment", string(enrollment.Status), "generate onboarding documents")
	}

	fields := s.baseFields(enrollment, title)
	fields["start_date"] = enrollment.StartDate.Format(documentDateLayout)
	fields["end_date"] = enrollment.EndDate.Format(documentDateLayout)
	fields["duration_weeks"] = strconv.Itoa(enrollment.Internship.DurationWeeks)
	return fields, nil
}

// withdrawalFields reads exclusively from the approved withdrawal request's
// frozen snapshot. Task completions recorded after the withdrawal never
// change these letters.
func (s *EnrollmentService) withdrawalFields(enrollment *models.Enrollment, title string) (render.Fields, error) {
	if enrollment.Status != models.EnrollmentStatusWithdrawn || enrollment.WithdrawnAt == nil {
		return nil, apperrors.NewInvalidTransition("enrollment", string(enrollment.Status), "generate withdrawal documents")
	}

	var request models.WithdrawalRequest
	if err := s.db.Where("enrollment_id = ? AND status = ?", enrollment.ID, models.WithdrawalStatusApproved).
		Order("reviewed_at desc").First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("approved withdrawal request", enrollment.ID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	fields := s.baseFields(enrollment, title)
	fields["withdrawn_on"] = enrollment.WithdrawnAt.Format(documentDateLayout)
	fields["tasks_completed"] = jsonbNumber(request.ProgressSnapshot, "tasks_completed")
	fields["total_tasks"] = jsonbNumber(request.ProgressSnapshot, "total_tasks")
	fields["progress_percent"] = jsonbNumber(request.ProgressSnapshot, "progress_percent")
	return fields, nil
}

func (s *EnrollmentService) completionFields(enrollment *models.Enrollment, title string) (render.Fields, error) {
	if enrollment.Status != models.EnrollmentStatusCompleted || enrollment.CompletedAt == nil {
		return nil, apperrors.NewInvalidTransition("enrollment", string(enrollment.Status), "generate completion documents")
	}

	review, err := s.loadReview(enrollment.ID)
	if err != nil {
		return nil, err
	}

	fields := s.baseFields(enrollment, title)
	fields["completed_on"] = enrollment.CompletedAt.Format(documentDateLayout)
	fields["marks"] = strconv.Itoa(derefInt(review.Marks))
	fields["grade"] = review.Grade
	fields["responsibilities"] = jsonbList(enrollment.Internship.Responsibilities)
	fields["skills"] = jsonbList(enrollment.Internship.Skills)
	return fields, nil
}

func (s *EnrollmentService) certificateFields(enrollment *models.Enrollment) (render.Fields, error) {
	if enrollment.Status != models.EnrollmentStatusCompleted {
		return nil, apperrors.NewInvalidTransition("enrollment", string(enrollment.Status), "generate certificate document")
	}

	review, err := s.loadReview(enrollment.ID)
	if err != nil {
		return nil, err
	}
	if review.CertificateID == nil {
		return nil, apperrors.NewNotFound("certificate", enrollment.ID.String())
	}

	var certificate models.Certificate
	if err := s.db.First(&certificate, *review.CertificateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("certificate", review.CertificateID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	fields := s.baseFields(enrollment, "Certificate of Completion")
	fields["marks"] = strconv.Itoa(derefInt(certificate.Marks))
	fields["grade"] = certificate.Grade
	fields["certificate_code"] = certificate.Code
	fields["issued_on"] = certificate.IssuedAt.Format(documentDateLayout)
	fields["verify_url"] = fmt.Sprintf("%s/%s", s.cfg.Certificate.VerifyBaseURL, certificate.Code)
	return fields, nil
}

func (s *EnrollmentService) loadReview(enrollmentID uuid.UUID) (*models.CompletionReview, error) {
	var review models.CompletionReview
	if err := s.db.Where("enrollment_id = ?", enrollmentID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("completion review", enrollmentID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &review, nil
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// jsonbNumber formats a numeric snapshot value. JSONB round-trips numbers as
// float64, so integers come back as 3.0 and must not render as "3.000000".
func jsonbNumber(j models.JSONB, key string) string {
	switch v := j[key].(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case nil:
		return "0"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// jsonbList joins the "items" list of a JSONB column for letter prose.
func jsonbList(j models.JSONB) string {
	items, ok := j["items"].([]interface{})
	if !ok {
		return ""
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
