// internal/models/internship.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Internship struct {
	BaseModel
	Title            string `json:"title" gorm:"size:255;not null"`
	Domain           string `json:"domain" gorm:"size:100;not null;index"`
	Description      string `json:"description" gorm:"type:text"`
	DurationWeeks    int    `json:"duration_weeks" gorm:"not null;default:8"`
	ProgramTag       string `json:"program_tag" gorm:"size:10;not null"`
	Responsibilities JSONB  `json:"responsibilities" gorm:"type:jsonb"`
	Skills           JSONB  `json:"skills" gorm:"type:jsonb"`
	IsActive         bool   `json:"is_active" gorm:"default:true;index"`

	// Relationships
	Tasks       []InternshipTask `json:"tasks,omitempty" gorm:"foreignKey:InternshipID"`
	Enrollments []Enrollment     `json:"enrollments,omitempty" gorm:"foreignKey:InternshipID"`
}

type InternshipTask struct {
	BaseModel
	InternshipID uuid.UUID `json:"internship_id" gorm:"type:uuid;not null;index"`
	Title        string    `json:"title" gorm:"size:255;not null"`
	Description  string    `json:"description" gorm:"type:text"`
	OrderIndex   int       `json:"order_index" gorm:"not null;default:0"`

	// Relationships
	Internship Internship `json:"internship,omitempty" gorm:"foreignKey:InternshipID"`
}

// TaskCompletion marks one task done for one enrollment. The pair is unique;
// completing a task twice is a no-op at the persistence layer.
type TaskCompletion struct {
	BaseModel
	EnrollmentID uuid.UUID `json:"enrollment_id" gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_task"`
	TaskID       uuid.UUID `json:"task_id" gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_task"`
	CompletedAt  time.Time `json:"completed_at" gorm:"not null"`

	// Relationships
	Enrollment Enrollment     `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID"`
	Task       InternshipTask `json:"task,omitempty" gorm:"foreignKey:TaskID"`
}
