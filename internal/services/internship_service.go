// internal/services/internship_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/apperrors"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/utils"
)

// InternshipService manages the program catalog and its task lists.
type InternshipService struct {
	db *gorm.DB
}

type CreateInternshipRequest struct {
	Title            string   `json:"title" validate:"required,min=3,max=255"`
	Domain           string   `json:"domain" validate:"required,max=100"`
	Description      string   `json:"description"`
	DurationWeeks    int      `json:"duration_weeks" validate:"required,gte=1,lte=52"`
	ProgramTag       string   `json:"program_tag" validate:"required,min=2,max=10"`
	Responsibilities []string `json:"responsibilities"`
	Skills           []string `json:"skills"`
}

type UpdateInternshipRequest struct {
	Title            *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Domain           *string  `json:"domain" validate:"omitempty,max=100"`
	Description      *string  `json:"description"`
	DurationWeeks    *int     `json:"duration_weeks" validate:"omitempty,gte=1,lte=52"`
	Responsibilities []string `json:"responsibilities"`
	Skills           []string `json:"skills"`
	IsActive         *bool    `json:"is_active"`
}

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" validate:"gte=0"`
}

func NewInternshipService(db *gorm.DB) *InternshipService {
	return &InternshipService{db: db}
}

func (s *InternshipService) Create(req *CreateInternshipRequest) (*models.Internship, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	internship := &models.Internship{
		Title:            strings.TrimSpace(req.Title),
		Domain:           req.Domain,
		Description:      req.Description,
		DurationWeeks:    req.DurationWeeks,
		ProgramTag:       strings.ToUpper(strings.TrimSpace(req.ProgramTag)),
		Responsibilities: stringListJSONB(req.Responsibilities),
		Skills:           stringListJSONB(req.Skills),
		IsActive:         true,
	}

	if err := s.db.Create(internship).Error; err != nil {
		return nil, fmt.Errorf("failed to create internship: %w", err)
	}

	return internship, nil
}

func (s *InternshipService) Update(internshipID uuid.UUID, req *UpdateInternshipRequest) (*models.Internship, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	internship, err := s.GetByID(internshipID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		internship.Title = strings.TrimSpace(*req.Title)
	}
	if req.Domain != nil {
		internship.Domain = *req.Domain
	}
	if req.Description != nil {
		internship.Description = *req.Description
	}
	if req.DurationWeeks != nil {
		internship.DurationWeeks = *req.DurationWeeks
	}
	if req.Responsibilities != nil {
		internship.Responsibilities = stringListJSONB(req.Responsibilities)
	}
	if req.Skills != nil {
		internship.Skills = stringListJSONB(req.Skills)
	}
	if req.IsActive != nil {
		internship.IsActive = *req.IsActive
	}

	if err := s.db.Save(internship).Error; err != nil {
		return nil, fmt.Errorf("failed to update internship: %w", err)
	}

	return internship, nil
}

func (s *InternshipService) GetByID(internshipID uuid.UUID) (*models.Internship, error) {
	var internship models.Internship
	if err := s.db.Preload("Tasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index asc")
	}).First(&internship, internshipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("internship", internshipID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &internship, nil
}

func (s *InternshipService) List(activeOnly bool, domain string, limit, offset int) ([]models.Internship, int64, error) {
	query := s.db.Model(&models.Internship{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if domain != "" {
		query = query.Where("domain = ?", domain)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	var internships []models.Internship
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).
		Find(&internships).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch internships: %w", err)
	}

	return internships, total, nil
}

func (s *InternshipService) AddTask(internshipID uuid.UUID, req *CreateTaskRequest) (*models.InternshipTask, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	if _, err := s.GetByID(internshipID); err != nil {
		return nil, err
	}

	task := &models.InternshipTask{
		InternshipID: internshipID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		OrderIndex:   req.OrderIndex,
	}

	if err := s.db.Create(task).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

func (s *InternshipService) ListTasks(internshipID uuid.UUID) ([]models.InternshipTask, error) {
	if _, err := s.GetByID(internshipID); err != nil {
		return nil, err
	}

	var tasks []models.InternshipTask
	if err := s.db.Where("internship_id = ?", internshipID).
		Order("order_index asc").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	return tasks, nil
}

func (s *InternshipService) RemoveTask(internshipID, taskID uuid.UUID) error {
	result := s.db.Where("id = ? AND internship_id = ?", taskID, internshipID).
		Delete(&models.InternshipTask{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("task", taskID.String())
	}
	return nil
}

func stringListJSONB(items []string) models.JSONB {
	list := make([]interface{}, 0, len(items))
	for _, item := range items {
		list = append(list, item)
	}
	return models.JSONB{"items": list}
}
