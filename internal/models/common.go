// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	}

	return nil
}

// Enums
type UserType string

const (
	UserTypeStudent UserType = "student"
	UserTypeAdmin   UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type EnrollmentStatus string

const (
	EnrollmentStatusRequested           EnrollmentStatus = "requested"
	EnrollmentStatusApproved            EnrollmentStatus = "approved"
	EnrollmentStatusRejected            EnrollmentStatus = "rejected"
	EnrollmentStatusActive              EnrollmentStatus = "active"
	EnrollmentStatusCompletionRequested EnrollmentStatus = "completion_requested"
	EnrollmentStatusCompleted           EnrollmentStatus = "completed"
	EnrollmentStatusWithdrawalRequested EnrollmentStatus = "withdrawal_requested"
	EnrollmentStatusWithdrawn           EnrollmentStatus = "withdrawn"
)

// IsTerminal reports whether no further transitions are permitted from s.
func (s EnrollmentStatus) IsTerminal() bool {
	return s == EnrollmentStatusRejected ||
		s == EnrollmentStatusCompleted ||
		s == EnrollmentStatusWithdrawn
}

type ReviewStatus string

const (
	ReviewStatusPending           ReviewStatus = "pending"
	ReviewStatusReviewed          ReviewStatus = "reviewed"
	ReviewStatusCertificateIssued ReviewStatus = "certificate_issued"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
)

type CertificateStatus string

const (
	CertificateStatusActive  CertificateStatus = "active"
	CertificateStatusRevoked CertificateStatus = "revoked"
)

type ProgramType string

const (
	ProgramTypeInternship ProgramType = "internship"
	ProgramTypeCourse     ProgramType = "course"
)

type DocumentType string

const (
	DocumentTypeMOU                     DocumentType = "mou"
	DocumentTypeOfferLetter             DocumentType = "offer_letter"
	DocumentTypePartialCompletionLetter DocumentType = "partial_completion_letter"
	DocumentTypeRelievingLetter         DocumentType = "relieving_letter"
	DocumentTypeCompletionLetter        DocumentType = "completion_letter"
	DocumentTypeCertificate             DocumentType = "certificate"
)

// AllDocumentTypes lists every document the generation pipeline can produce.
var AllDocumentTypes = []DocumentType{
	DocumentTypeMOU,
	DocumentTypeOfferLetter,
	DocumentTypePartialCompletionLetter,
	DocumentTypeRelievingLetter,
	DocumentTypeCompletionLetter,
	DocumentTypeCertificate,
}

func (d DocumentType) Valid() bool {
	for _, t := range AllDocumentTypes {
		if d == t {
			return true
		}
	}
	return false
}
