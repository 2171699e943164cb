// internal/handlers/internship_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/services"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/utils"
)

type InternshipHandler struct {
	internshipService *services.InternshipService
}

func NewInternshipHandler(internshipService *services.InternshipService) *InternshipHandler {
	return &InternshipHandler{internshipService: internshipService}
}

// List is public and shows only active internships; admins pass ?all=true
// to include deactivated ones.
func (h *InternshipHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	activeOnly := c.Query("all") != "true"
	domain := c.Query("domain")

	internships, total, err := h.internshipService.List(activeOnly, domain, params.Limit, (params.Page-1)*params.Limit)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(internships, total, params))
}

func (h *InternshipHandler) Get(c *gin.Context) {
	internshipID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid internship ID", nil)
		return
	}

	internship, err := h.internshipService.GetByID(internshipID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, internship)
}

func (h *InternshipHandler) Create(c *gin.Context) {
	var req services.CreateInternshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	internship, err := h.internshipService.Create(&req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, internship)
}

func (h *InternshipHandler) Update(c *gin.Context) {
	internshipID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid internship ID", nil)
		return
	}

	var req services.UpdateInternshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	internship, err := h.internshipService.Update(internshipID, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, internship)
}

func (h *InternshipHandler) AddTask(c *gin.Context) {
	internshipID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid internship ID", nil)
		return
	}

	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", nil)
		return
	}

	task, err := h.internshipService.AddTask(internshipID, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, task)
}

func (h *InternshipHandler) ListTasks(c *gin.Context) {
	internshipID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid internship ID", nil)
		return
	}

	tasks, err := h.internshipService.ListTasks(internshipID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, tasks)
}

func (h *InternshipHandler) RemoveTask(c *gin.Context) {
	internshipID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid internship ID", nil)
		return
	}

	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid task ID", nil)
		return
	}

	if err := h.internshipService.RemoveTask(internshipID, taskID); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}
