// internal/models/withdrawal.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// WithdrawalRequest is a student-initiated early exit, subject to admin
// review. At most one pending request may exist per enrollment; rejected
// requests stay as history and do not block a later request.
type WithdrawalRequest struct {
	BaseModel
	EnrollmentID uuid.UUID        `json:"enrollment_id" gorm:"type:uuid;not null;index"`
	Status       WithdrawalStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	Reason       string           `json:"reason" gorm:"type:text;not null"`

	// Enrollment sub-state to restore if this request is rejected.
	ResumeStatus EnrollmentStatus `json:"resume_status" gorm:"type:varchar(30);not null"`

	ReviewerNote string     `json:"reviewer_note,omitempty" gorm:"type:text"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
	ReviewedBy   *uuid.UUID `json:"reviewed_by" gorm:"type:uuid"`

	// Task progress frozen at approval time. The partial-completion and
	// relieving letters render from this snapshot, never from live progress.
	ProgressSnapshot JSONB `json:"progress_snapshot" gorm:"type:jsonb"`

	// Relationships
	Enrollment Enrollment `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID"`
}
