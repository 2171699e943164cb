// internal/models/document.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// GeneratedDocument binds one (enrollment, document type) pair to rendered
// bytes. ContentRef is the SHA-256 of the rendered content, so preview and
// download are byte-for-byte the same artifact. SourceFieldsHash detects
// staleness without re-rendering: if a fresh field bag hashes to the same
// value, the cached content is returned untouched.
type GeneratedDocument struct {
	BaseModel
	EnrollmentID uuid.UUID    `json:"enrollment_id" gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_document"`
	DocumentType DocumentType `json:"document_type" gorm:"type:varchar(40);not null;uniqueIndex:idx_enrollment_document"`

	SourceFieldsHash string    `json:"source_fields_hash" gorm:"size:64;not null"`
	ContentRef       string    `json:"content_ref" gorm:"size:64;not null"`
	ContentType      string    `json:"content_type" gorm:"size:50;default:'text/html'"`
	Content          []byte    `json:"-" gorm:"type:bytea"`
	StorageURL       string    `json:"storage_url,omitempty" gorm:"type:text"`
	GeneratedAt      time.Time `json:"generated_at" gorm:"not null"`

	// Relationships
	Enrollment Enrollment `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID"`
}
