// internal/services/completion_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/apperrors"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/database"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
)

const (
	MinMarks = 0
	MaxMarks = 50
)

// CompletionService runs the review-and-certify workflow that sits between a
// completion request and the completed terminal state.
type CompletionService struct {
	db            *gorm.DB
	certificates  *CertificateService
	enrollments   *EnrollmentService
	notifications *NotificationService
}

func NewCompletionService(db *gorm.DB, certificates *CertificateService, enrollments *EnrollmentService, notifications *NotificationService) *CompletionService {
	return &CompletionService{
		db:            db,
		certificates:  certificates,
		enrollments:   enrollments,
		notifications: notifications,
	}
}

// ComputeGrade maps marks out of 50 onto the grade band.
func ComputeGrade(marks int) string {
	switch {
	case marks >= 45:
		return "A+"
	case marks >= 40:
		return "A"
	case marks >= 35:
		return "B+"
	case marks >= 30:
		return "B"
	default:
		return "C"
	}
}

func (s *CompletionService) GetReview(enrollmentID uuid.UUID) (*models.CompletionReview, error) {
	var review models.CompletionReview
	if err := s.db.Where("enrollment_id = ?", enrollmentID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("completion review", enrollmentID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &review, nil
}

// ListPending is the admin review queue.
func (s *CompletionService) ListPending(limit, offset int) ([]models.CompletionReview, int64, error) {
	query := s.db.Model(&models.CompletionReview{}).
		Where("status = ?", models.ReviewStatusPending)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	var reviews []models.CompletionReview
	if err := query.Preload("Enrollment").Preload("Enrollment.Student").Preload("Enrollment.Internship").
		Order("created_at asc").Limit(limit).Offset(offset).
		Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return reviews, total, nil
}

// Review records marks and feedback against the pending review. Marks are
// bounded 0..50 and the grade is derived, never supplied. A review is
// recorded exactly once; re-reviewing a decided review fails.
func (s *CompletionService) Review(enrollmentID, adminID uuid.UUID, marks int, feedback string) (*models.CompletionReview, error) {
	if marks < MinMarks || marks > MaxMarks {
		return nil, apperrors.NewValidation(fmt.Sprintf("marks must be between %d and %d", MinMarks, MaxMarks))
	}

	unlock := lockEnrollment(enrollmentID)
	defer unlock()

	review, err := s.GetReview(enrollmentID)
	if err != nil {
		return nil, err
	}

	if review.Status != models.ReviewStatusPending {
		return nil, apperrors.NewInvalidTransition("completion review", string(review.Status), "review")
	}

	now := time.Now()
	review.Status = models.ReviewStatusReviewed
	review.Marks = &marks
	review.Grade = ComputeGrade(marks)
	review.Feedback = feedback
	review.ReviewedAt = &now
	review.ReviewedBy = &adminID

	if err := s.db.Save(review).Error; err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	createAuditLog(s.db, adminID, "completion.review", "completion_review", &review.ID, nil, models.JSONB{
		"marks": marks,
		"grade": review.Grade,
	})

	return review, nil
}

// IssueCertificate finalizes a reviewed enrollment: the certificate is
// allocated, the review moves to certificate_issued and the enrollment to
// completed, all in one transaction. Issuing again after success returns
// the already issued certificate unchanged.
func (s *CompletionService) IssueCertificate(enrollmentID, adminID uuid.UUID) (*models.Certificate, error) {
	unlock := lockEnrollment(enrollmentID)
	defer unlock()

	review, err := s.GetReview(enrollmentID)
	if err != nil {
		return nil, err
	}

	if review.Status == models.ReviewStatusCertificateIssued {
		if review.CertificateID == nil {
			return nil, apperrors.NewNotFound("certificate", enrollmentID.String())
		}
		return s.certificates.GetByID(*review.CertificateID)
	}
	if review.Status != models.ReviewStatusReviewed {
		return nil, apperrors.NewInvalidTransition("completion review", string(review.Status), "issue_certificate")
	}

	enrollment, err := s.enrollments.GetEnrollment(enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != models.EnrollmentStatusCompletionRequested {
		return nil, apperrors.NewInvalidTransition("enrollment", string(enrollment.Status), "issue_certificate")
	}

	now := time.Now()
	var certificate *models.Certificate
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var issueErr error
		certificate, issueErr = s.certificates.Issue(tx, IssueCertificateParams{
			StudentID:   enrollment.StudentID,
			ProgramID:   enrollment.InternshipID,
			ProgramType: models.ProgramTypeInternship,
			ProgramTag:  enrollment.Internship.ProgramTag,
			Marks:       review.Marks,
			Grade:       review.Grade,
			IssuedBy:    &adminID,
		})
		if issueErr != nil {
			return issueErr
		}

		review.Status = models.ReviewStatusCertificateIssued
		review.CertificateID = &certificate.ID
		review.CertificateIssuedAt = &now
		if err := tx.Save(review).Error; err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}

		enrollment.Status = models.EnrollmentStatusCompleted
		enrollment.CompletedAt = &now
		if err := tx.Save(enrollment).Error; err != nil {
			return fmt.Errorf("failed to update enrollment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	createAuditLog(s.db, adminID, "completion.issue_certificate", "certificate", &certificate.ID, nil, models.JSONB{
		"code":          certificate.Code,
		"enrollment_id": enrollmentID.String(),
	})

	s.enrollments.generateAfterTransition(enrollment,
		models.DocumentTypeCompletionLetter, models.DocumentTypeCertificate)

	s.notifications.NotifyCertificateIssued(&enrollment.Student, &enrollment.Internship, certificate)

	return certificate, nil
}

// CompleteInternshipForStudent is the admin shortcut that walks an active
// enrollment through review in one call: it opens the review with an
// override if needed, records the marks and, unless issuance is deferred,
// issues the certificate. Each step applies the same guards as the
// individual endpoints; with issueCertificate false the enrollment stays in
// completion_requested until IssueCertificate is called.
func (s *CompletionService) CompleteInternshipForStudent(enrollmentID, adminID uuid.UUID, marks int, feedback, overrideReason string, issueCertificate bool) (*models.CompletionReview, *models.Certificate, error) {
	enrollment, err := s.enrollments.GetEnrollment(enrollmentID)
	if err != nil {
		return nil, nil, err
	}

	if enrollment.Status == models.EnrollmentStatusActive {
		if _, err := s.enrollments.RequestCompletion(enrollmentID, adminID, true, overrideReason); err != nil {
			return nil, nil, err
		}
	}

	review, err := s.Review(enrollmentID, adminID, marks, feedback)
	if err != nil {
		return nil, nil, err
	}

	if !issueCertificate {
		return review, nil, nil
	}

	certificate, err := s.IssueCertificate(enrollmentID, adminID)
	if err != nil {
		return nil, nil, err
	}

	return review, certificate, nil
}
