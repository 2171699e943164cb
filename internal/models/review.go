// internal/models/review.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// CompletionReview is the admin evaluation step between a completion request
// and certificate issuance. One row per enrollment, never deleted.
type CompletionReview struct {
	BaseModel
	EnrollmentID uuid.UUID    `json:"enrollment_id" gorm:"type:uuid;not null;uniqueIndex"`
	Status       ReviewStatus `json:"status" gorm:"type:varchar(30);default:'pending';index"`

	Marks    *int   `json:"marks"`
	Grade    string `json:"grade,omitempty" gorm:"size:5"`
	Feedback string `json:"feedback,omitempty" gorm:"type:text"`

	// Set when an admin opened the review on the student's behalf,
	// bypassing the task-completion gate.
	AdminInitiated bool   `json:"admin_initiated" gorm:"default:false"`
	OverrideReason string `json:"override_reason,omitempty" gorm:"type:text"`

	ReviewedAt          *time.Time `json:"reviewed_at"`
	ReviewedBy          *uuid.UUID `json:"reviewed_by" gorm:"type:uuid"`
	CertificateID       *uuid.UUID `json:"certificate_id" gorm:"type:uuid"`
	CertificateIssuedAt *time.Time `json:"certificate_issued_at"`

	// Relationships
	Enrollment  Enrollment   `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID"`
	Certificate *Certificate `json:"certificate,omitempty" gorm:"foreignKey:CertificateID"`
}
