// internal/models/certificate.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Certificate is immutable once issued except for the one-way revocation
// flag. Revoked certificates are kept forever as an audit fact.
type Certificate struct {
	BaseModel
	Code        string            `json:"code" gorm:"size:40;uniqueIndex;not null"`
	StudentID   uuid.UUID         `json:"student_id" gorm:"type:uuid;not null;index"`
	ProgramID   uuid.UUID         `json:"program_id" gorm:"type:uuid;not null;index"`
	ProgramType ProgramType       `json:"program_type" gorm:"type:varchar(20);not null"`
	Status      CertificateStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`

	Marks *int   `json:"marks,omitempty"`
	Grade string `json:"grade,omitempty" gorm:"size:5"`

	IssuedAt         time.Time  `json:"issued_at" gorm:"not null"`
	IssuedBy         *uuid.UUID `json:"issued_by" gorm:"type:uuid"`
	RevokedAt        *time.Time `json:"revoked_at"`
	RevokedBy        *uuid.UUID `json:"revoked_by" gorm:"type:uuid"`
	RevocationReason string     `json:"revocation_reason,omitempty" gorm:"type:text"`

	// Relationships
	Student User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}
