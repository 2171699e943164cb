// internal/services/audit.go
package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
)

// createAuditLog records an admin action. Audit failures are logged and
// swallowed; an audit row must never fail the action it describes.
func createAuditLog(db *gorm.DB, userID uuid.UUID, action, resourceType string, resourceID *uuid.UUID, oldValues, newValues models.JSONB) {
	entry := &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
	}

	if err := db.Create(entry).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":        action,
			"resource_type": resourceType,
		}).Error("Failed to write audit log entry")
	}
}
