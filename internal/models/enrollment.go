// internal/models/enrollment.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Enrollment struct {
	BaseModel
	StudentID    uuid.UUID        `json:"student_id" gorm:"type:uuid;not null;index"`
	InternshipID uuid.UUID        `json:"internship_id" gorm:"type:uuid;not null;index"`
	Status       EnrollmentStatus `json:"status" gorm:"type:varchar(30);default:'requested';index"`

	// Sub-state held before a withdrawal request, restored on rejection.
	PriorStatus *EnrollmentStatus `json:"prior_status,omitempty" gorm:"type:varchar(30)"`

	// Lifecycle timestamps, each set exactly once.
	RequestedAt           time.Time  `json:"requested_at" gorm:"not null"`
	ApprovedAt            *time.Time `json:"approved_at"`
	RejectedAt            *time.Time `json:"rejected_at"`
	StartDate             *time.Time `json:"start_date"`
	EndDate               *time.Time `json:"end_date"`
	ActivatedAt           *time.Time `json:"activated_at"`
	CompletionRequestedAt *time.Time `json:"completion_requested_at"`
	CompletedAt           *time.Time `json:"completed_at"`
	WithdrawalRequestedAt *time.Time `json:"withdrawal_requested_at"`
	WithdrawnAt           *time.Time `json:"withdrawn_at"`

	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:text"`
	DecidedBy       *uuid.UUID `json:"decided_by" gorm:"type:uuid"`

	// Relationships
	Student            User                `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Internship         Internship          `json:"internship,omitempty" gorm:"foreignKey:InternshipID"`
	Review             *CompletionReview   `json:"review,omitempty" gorm:"foreignKey:EnrollmentID"`
	WithdrawalRequests []WithdrawalRequest `json:"withdrawal_requests,omitempty" gorm:"foreignKey:EnrollmentID"`
	Documents          []GeneratedDocument `json:"documents,omitempty" gorm:"foreignKey:EnrollmentID"`
	TaskCompletions    []TaskCompletion    `json:"task_completions,omitempty" gorm:"foreignKey:EnrollmentID"`
}

// Progress is the derived tasks-completed view of one enrollment. It is
// recomputed from task completions, never stored on the enrollment row.
type Progress struct {
	TasksCompleted int `json:"tasks_completed"`
	TotalTasks     int `json:"total_tasks"`
}

func (p Progress) Percent() float64 {
	if p.TotalTasks == 0 {
		return 0
	}
	return float64(p.TasksCompleted) * 100 / float64(p.TotalTasks)
}

func (p Progress) Complete() bool {
	return p.TotalTasks > 0 && p.TasksCompleted >= p.TotalTasks
}
