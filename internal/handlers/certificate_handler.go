// internal/handlers/certificate_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/services"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/utils"
)

type CertificateHandler struct {
	certificateService *services.CertificateService
}

func NewCertificateHandler(certificateService *services.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService}
}

// Verify is the public certificate lookup. It never 404s for a revoked
// certificate; the result carries the reason instead.
func (h *CertificateHandler) Verify(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		utils.BadRequestResponse(c, "certificate code is required", nil)
		return
	}

	result, err := h.certificateService.Verify(code)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// ListMine returns the authenticated student's certificates.
func (h *CertificateHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	certificates, err := h.certificateService.ListForStudent(userID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, certificates)
}
