// internal/services/withdrawal_service.go
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

// WithdrawalService decides pending withdrawal requests. Approval freezes
// the progress snapshot, moves the enrollment to withdrawn and generates the
// exit letters; rejection restores the sub-state the enrollment held before
// the request.
type WithdrawalService struct {
	db            *gorm.DB
	progress      *ProgressService
	enrollments   *EnrollmentService
	notifications *NotificationService
}

func NewWithdrawalService(db *gorm.DB, progress *ProgressService, enrollments *EnrollmentService, notifications *NotificationService) *WithdrawalService {
	return &WithdrawalService{
		db:            db,
		progress:      progress,
		enrollments:   enrollments,
		notifications: notifications,
	}
}

func (s *WithdrawalService) GetRequest(requestID uuid.UUID) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest
	if err := s.db.Preload("Enrollment").First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("withdrawal request", requestID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &request, nil
}

// ListPending is the admin review queue.
func (s *WithdrawalService) ListPending(limit, offset int) ([]models.WithdrawalRequest, int64, error) {
	query := s.db.Model(&models.WithdrawalRequest{}).
		Where("status = ?", models.WithdrawalStatusPending)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	var requests []models.WithdrawalRequest
	if err := query.Preload("Enrollment").Preload("Enrollment.Student").Preload("Enrollment.Internship").
		Order("created_at asc").Limit(limit).Offset(offset).
		Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch withdrawal requests: %w", err)
	}

	return requests, total, nil
}

// Approve moves the request to approved and the enrollment to withdrawn in
// one transaction, freezing the progress snapshot the exit letters render
// from. The letters themselves are generated after the commit.
func (s *WithdrawalService) Approve(requestID, adminID uuid.UUID, note string) (*models.WithdrawalRequest, error) {
	request, err := s.GetRequest(requestID)
	if err != nil {
		return nil, err
	}

	unlock := lockEnrollment(request.EnrollmentID)
	defer unlock()

	// Re-read under the lock; a concurrent decision may have landed.
	request, err = s.GetRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.WithdrawalStatusPending {
		return nil, apperrors.NewInvalidTransition("withdrawal request", string(request.Status), "approve")
	}

	enrollment, err := s.enrollments.GetEnrollment(request.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != models.EnrollmentStatusWithdrawalRequested {
		return nil, apperrors.NewInvalidTransition("enrollment", string(enrollment.Status), "approve_withdrawal")
	}

	snapshot, err := s.progress.SnapshotProgress(enrollment.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		request.Status = models.WithdrawalStatusApproved
		request.ReviewerNote = note
		request.ReviewedAt = &now
		request.ReviewedBy = &adminID
		request.ProgressSnapshot = snapshot
		if err := tx.Save(request).Error; err != nil {
			return fmt.Errorf("failed to update withdrawal request: %w", err)
		}

		enrollment.Status = models.EnrollmentStatusWithdrawn
		enrollment.WithdrawnAt = &now
		if err := tx.Save(enrollment).Error; err != nil {
			return fmt.Errorf("failed to update enrollment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	createAuditLog(s.db, adminID, "withdrawal.approve", "withdrawal_request", &request.ID,
		models.JSONB{"status": string(models.WithdrawalStatusPending)},
		models.JSONB{"status": string(models.WithdrawalStatusApproved), "snapshot": map[string]interface{}(snapshot)})

	s.enrollments.generateAfterTransition(enrollment,
		models.DocumentTypePartialCompletionLetter, models.DocumentTypeRelievingLetter)

	s.notifications.NotifyWithdrawalDecision(&enrollment.Student, &enrollment.Internship, true, note)

	return request, nil
}

// Reject restores the enrollment to the sub-state it held before the
// request. The rejected request stays as history and does not block a later
// withdrawal request.
func (s *WithdrawalService) Reject(requestID, adminID uuid.UUID, note string) (*models.WithdrawalRequest, error) {
	request, err := s.GetRequest(requestID)
	if err != nil {
		return nil, err
	}

	unlock := lockEnrollment(request.EnrollmentID)
	defer unlock()

	request, err = s.GetRequest(requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.WithdrawalStatusPending {
		return nil, apperrors.NewInvalidTransition("withdrawal request", string(request.Status), "reject")
	}

	enrollment, err := s.enrollments.GetEnrollment(request.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != models.EnrollmentStatusWithdrawalRequested {
		return nil, apperrors.NewInvalidTransition("enrollment", string(enrollment.Status), "reject_withdrawal")
	}

	now := time.Now()
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		request.Status = models.WithdrawalStatusRejected
		request.ReviewerNote = note
		request.ReviewedAt = &now
		request.ReviewedBy = &adminID
		if err := tx.Save(request).Error; err != nil {
			return fmt.Errorf("failed to update withdrawal request: %w", err)
		}

		enrollment.Status = request.ResumeStatus
		enrollment.PriorStatus = nil
		if err := tx.Save(enrollment).Error; err != nil {
			return fmt.Errorf("failed to update enrollment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	createAuditLog(s.db, adminID, "withdrawal.reject", "withdrawal_request", &request.ID,
		models.JSONB{"status": string(models.WithdrawalStatusPending)},
		models.JSONB{"status": string(models.WithdrawalStatusRejected), "resumed": string(request.ResumeStatus)})

	s.notifications.NotifyWithdrawalDecision(&enrollment.Student, &enrollment.Internship, false, note)

	return request, nil
}
