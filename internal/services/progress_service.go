// internal/services/progress_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/apperrors"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
)

// ProgressService is the task collaborator: it records task completions and
// derives the tasksCompleted/totalTasks view the lifecycle engine reads.
// Progress is never stored on the enrollment row.
type ProgressService struct {
	db *gorm.DB
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{db: db}
}

func (s *ProgressService) GetProgress(enrollmentID uuid.UUID) (models.Progress, error) {
	var enrollment models.Enrollment
	if err := s.db.First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Progress{}, apperrors.NewNotFound("enrollment", enrollmentID.String())
		}
		return models.Progress{}, fmt.Errorf("database error: %w", err)
	}

	var totalTasks int64
	if err := s.db.Model(&models.InternshipTask{}).
		Where("internship_id = ?", enrollment.InternshipID).
		Count(&totalTasks).Error; err != nil {
		return models.Progress{}, fmt.Errorf("failed to count tasks: %w", err)
	}

	var completed int64
	if err := s.db.Model(&models.TaskCompletion{}).
		Where("enrollment_id = ?", enrollmentID).
		Count(&completed).Error; err != nil {
		return models.Progress{}, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	return models.Progress{
		TasksCompleted: int(completed),
		TotalTasks:     int(totalTasks),
	}, nil
}

// CompleteTask records one task done for an enrollment. An approved
// enrollment whose start date has arrived is activated lazily here; this is
// the "first task interaction" activation path.
func (s *ProgressService) CompleteTask(enrollmentID, taskID uuid.UUID) (*models.TaskCompletion, error) {
	unlock := lockEnrollment(enrollmentID)
	defer unlock()

	var enrollment models.Enrollment
	if err := s.db.First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("enrollment", enrollmentID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if enrollment.Status == models.EnrollmentStatusApproved &&
		enrollment.StartDate != nil && !enrollment.StartDate.After(time.Now()) {
		now := time.Now()
		enrollment.Status = models.EnrollmentStatusActive
		enrollment.ActivatedAt = &now
		if err := s.db.Save(&enrollment).Error; err != nil {
			return nil, fmt.Errorf("failed to activate enrollment: %w", err)
		}
	}

	if enrollment.Status != models.EnrollmentStatusActive {
		return nil, apperrors.NewInvalidTransition("enrollment", string(enrollment.Status), "complete_task")
	}

	var task models.InternshipTask
	if err := s.db.Where("id = ? AND internship_id = ?", taskID, enrollment.InternshipID).
		First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("task", taskID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Completing a task twice is a no-op returning the existing record.
	var existing models.TaskCompletion
	if err := s.db.Where("enrollment_id = ? AND task_id = ?", enrollmentID, taskID).
		First(&existing).Error; err == nil {
		return &existing, nil
	}

	completion := &models.TaskCompletion{
		EnrollmentID: enrollmentID,
		TaskID:       taskID,
		CompletedAt:  time.Now(),
	}

	if err := s.db.Create(completion).Error; err != nil {
		return nil, fmt.Errorf("failed to record task completion: %w", err)
	}

	return completion, nil
}

// SnapshotProgress freezes the progress view into a field bag suitable for
// storing on an approved withdrawal request. Later task completions do not
// change documents rendered from this snapshot.
func (s *ProgressService) SnapshotProgress(enrollmentID uuid.UUID) (models.JSONB, error) {
	progress, err := s.GetProgress(enrollmentID)
	if err != nil {
		return nil, err
	}

	return models.JSONB{
		"tasks_completed":  progress.TasksCompleted,
		"total_tasks":      progress.TotalTasks,
		"progress_percent": progress.Percent(),
	}, nil
}
