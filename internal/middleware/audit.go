// internal/middleware/audit.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/utils"
)

// AuditTrail records every successful mutating request with the acting
// principal, client address and route. Services add richer rows for the
// decisions themselves; this middleware guarantees a baseline trail even for
// endpoints that forget to.
func AuditTrail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if c.Writer.Status() >= 400 {
			return
		}

		entry := &models.AuditLog{
			Action:       c.Request.Method + " " + c.FullPath(),
			ResourceType: "http_request",
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
		}

		if raw, ok := utils.GetUserIDFromContext(c); ok {
			if userID, err := uuid.Parse(raw); err == nil {
				entry.UserID = &userID
			}
		}

		if err := db.Create(entry).Error; err != nil {
			logrus.WithError(err).WithField("action", entry.Action).
				Error("Failed to write request audit entry")
		}
	}
}
