// internal/services/certificate_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/apperrors"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/config"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/utils"
)

// CertificateService allocates verifiable certificate codes and records
// issuance and revocation. It never touches enrollments or reviews; the
// workflows that trigger issuance orchestrate those.
type CertificateService struct {
	db  *gorm.DB
	cfg *config.Config
}

type IssueCertificateParams struct {
	StudentID   uuid.UUID
	ProgramID   uuid.UUID
	ProgramType models.ProgramType
	ProgramTag  string
	Marks       *int
	Grade       string
	IssuedBy    *uuid.UUID
}

type VerificationResult struct {
	Valid       bool                `json:"valid"`
	Reason      string              `json:"reason,omitempty"`
	Certificate *models.Certificate `json:"certificate,omitempty"`
}

type BulkIssueResult struct {
	StudentID   uuid.UUID           `json:"student_id"`
	Certificate *models.Certificate `json:"certificate,omitempty"`
	Error       string              `json:"error,omitempty"`
}

const (
	verifyReasonNotFound = "not_found"
	verifyReasonRevoked  = "revoked"

	disambiguatorLength = 8
)

func NewCertificateService(db *gorm.DB, cfg *config.Config) *CertificateService {
	return &CertificateService{db: db, cfg: cfg}
}

// Issue allocates a unique code and persists a new active certificate.
// tx may be an open transaction so issuance commits atomically with the
// caller's state transition; pass nil to use the service's own connection.
func (s *CertificateService) Issue(tx *gorm.DB, params IssueCertificateParams) (*models.Certificate, error) {
	db := tx
	if db == nil {
		db = s.db
	}

	// One active certificate per student per program.
	var existingCount int64
	if err := db.Model(&models.Certificate{}).
		Where("student_id = ? AND program_id = ? AND program_type = ? AND status = ?",
			params.StudentID, params.ProgramID, params.ProgramType, models.CertificateStatusActive).
		Count(&existingCount).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing certificates: %w", err)
	}

	if existingCount > 0 {
		return nil, apperrors.NewConflict("student already holds an active certificate for this program")
	}

	retries := s.cfg.Certificate.AllocRetries
	for attempt := 0; attempt < retries; attempt++ {
		code, err := s.generateCode(params.ProgramTag)
		if err != nil {
			return nil, fmt.Errorf("failed to generate certificate code: %w", err)
		}

		// The code column is uniquely indexed; a concurrent allocation
		// of the same code makes this insert fail and we retry with a
		// fresh code.
		var collisions int64
		if err := db.Model(&models.Certificate{}).Where("code = ?", code).Count(&collisions).Error; err != nil {
			return nil, fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if collisions > 0 {
			continue
		}

		certificate := &models.Certificate{
			Code:        code,
			StudentID:   params.StudentID,
			ProgramID:   params.ProgramID,
			ProgramType: params.ProgramType,
			Status:      models.CertificateStatusActive,
			Marks:       params.Marks,
			Grade:       params.Grade,
			IssuedAt:    time.Now(),
			IssuedBy:    params.IssuedBy,
		}

		if err := db.Create(certificate).Error; err != nil {
			// Only a lost race on the code index is worth retrying; any
			// other failure is a real database problem.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				logrus.WithField("code", code).Warn("Certificate code collision, retrying")
				continue
			}
			return nil, fmt.Errorf("failed to create certificate: %w", err)
		}

		return certificate, nil
	}

	return nil, &apperrors.AllocationError{Attempts: retries}
}

// Revoke is a one-way transition. Revoked certificates stay on record and
// keep answering verification lookups.
func (s *CertificateService) Revoke(certificateID uuid.UUID, adminID uuid.UUID, reason string) (*models.Certificate, error) {
	var certificate models.Certificate
	if err := s.db.First(&certificate, certificateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("certificate", certificateID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if certificate.Status != models.CertificateStatusActive {
		return nil, apperrors.NewInvalidTransition("certificate", string(certificate.Status), "revoke")
	}

	now := time.Now()
	certificate.Status = models.CertificateStatusRevoked
	certificate.RevokedAt = &now
	certificate.RevokedBy = &adminID
	certificate.RevocationReason = reason

	if err := s.db.Save(&certificate).Error; err != nil {
		return nil, fmt.Errorf("failed to revoke certificate: %w", err)
	}

	createAuditLog(s.db, adminID, "certificate.revoke", "certificate", &certificate.ID, nil, models.JSONB{
		"reason": reason,
	})

	return &certificate, nil
}

// Verify is a pure read. Unknown and revoked codes are both invalid but
// carry distinct reasons so the public verification page can say which.
func (s *CertificateService) Verify(code string) (*VerificationResult, error) {
	var certificate models.Certificate
	if err := s.db.Preload("Student").Where("code = ?", strings.TrimSpace(code)).
		First(&certificate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &VerificationResult{Valid: false, Reason: verifyReasonNotFound}, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if certificate.Status == models.CertificateStatusRevoked {
		return &VerificationResult{
			Valid:       false,
			Reason:      verifyReasonRevoked,
			Certificate: &certificate,
		}, nil
	}

	return &VerificationResult{
		Valid:       true,
		Certificate: &certificate,
	}, nil
}

// BulkIssue issues one certificate per student. Failures are independent:
// one student already holding a certificate does not abort the rest. When
// some items fail the per-student results are returned together with a
// PartialBatchError so callers can tell a clean batch from a mixed one.
func (s *CertificateService) BulkIssue(programID uuid.UUID, programType models.ProgramType, programTag string, studentIDs []uuid.UUID, adminID uuid.UUID) ([]BulkIssueResult, error) {
	results := make([]BulkIssueResult, 0, len(studentIDs))
	failed := 0

	for _, studentID := range studentIDs {
		certificate, err := s.Issue(nil, IssueCertificateParams{
			StudentID:   studentID,
			ProgramID:   programID,
			ProgramType: programType,
			ProgramTag:  programTag,
			IssuedBy:    &adminID,
		})

		if err != nil {
			failed++
			results = append(results, BulkIssueResult{
				StudentID: studentID,
				Error:     err.Error(),
			})
			continue
		}

		results = append(results, BulkIssueResult{
			StudentID:   studentID,
			Certificate: certificate,
		})
	}

	createAuditLog(s.db, adminID, "certificate.bulk_issue", "program", &programID, nil, models.JSONB{
		"requested": len(studentIDs),
		"failed":    failed,
	})

	if failed > 0 {
		return results, &apperrors.PartialBatchError{Failed: failed, Total: len(studentIDs)}
	}
	return results, nil
}

func (s *CertificateService) GetByID(certificateID uuid.UUID) (*models.Certificate, error) {
	var certificate models.Certificate
	if err := s.db.Preload("Student").First(&certificate, certificateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("certificate", certificateID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &certificate, nil
}

func (s *CertificateService) ListForStudent(studentID uuid.UUID) ([]models.Certificate, error) {
	var certificates []models.Certificate
	if err := s.db.Where("student_id = ?", studentID).
		Order("issued_at desc").Find(&certificates).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch certificates: %w", err)
	}
	return certificates, nil
}

// generateCode builds CERT-<year>-<program-tag>-<disambiguator>.
func (s *CertificateService) generateCode(programTag string) (string, error) {
	tag := sanitizeProgramTag(programTag)
	if tag == "" {
		tag = sanitizeProgramTag(s.cfg.Certificate.DefaultTag)
	}

	disambiguator, err := utils.GenerateRandomString(disambiguatorLength)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%d-%s-%s",
		s.cfg.Certificate.CodePrefix, time.Now().Year(), tag, disambiguator), nil
}

func sanitizeProgramTag(tag string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(tag) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
		if sb.Len() == 8 {
			break
		}
	}
	return sb.String()
}
