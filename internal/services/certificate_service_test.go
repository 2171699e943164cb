// internal/services/certificate_service_test.go
package services

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/apperrors"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
)

type CertificateTestSuite struct {
	suite.Suite
	env     *testEnv
	admin   *models.User
	student *models.User
}

func TestCertificateTestSuite(t *testing.T) {
	suite.Run(t, new(CertificateTestSuite))
}

func (s *CertificateTestSuite) SetupTest() {
	s.env = newTestEnv(s.T())
	s.admin = s.env.createAdmin(s.T())
	s.student = s.env.createStudent(s.T(), "Kiran Shah", "kiran@example.com")
}

func (s *CertificateTestSuite) issueFor(studentID uuid.UUID, tag string) *models.Certificate {
	marks := 42
	certificate, err := s.env.certificates.Issue(nil, IssueCertificateParams{
		StudentID:   studentID,
		ProgramID:   uuid.New(),
		ProgramType: models.ProgramTypeInternship,
		ProgramTag:  tag,
		Marks:       &marks,
		Grade:       "A",
		IssuedBy:    &s.admin.ID,
	})
	s.Require().NoError(err)
	return certificate
}

func (s *CertificateTestSuite) TestCodeFormat() {
	certificate := s.issueFor(s.student.ID, "ML")
	s.Regexp(regexp.MustCompile(`^CERT-\d{4}-ML-[A-HJ-NP-Z2-9]{8}$`), certificate.Code)
}

func (s *CertificateTestSuite) TestEmptyTagFallsBackToDefault() {
	certificate := s.issueFor(s.student.ID, "")
	s.Regexp(regexp.MustCompile(`^CERT-\d{4}-CSL-`), certificate.Code)
}

func (s *CertificateTestSuite) TestTagIsSanitized() {
	certificate := s.issueFor(s.student.ID, "be-2026!")
	s.Contains(certificate.Code, "-BE2026-")
}

func (s *CertificateTestSuite) TestDuplicateActiveCertificateConflicts() {
	programID := uuid.New()
	marks := 40

	_, err := s.env.certificates.Issue(nil, IssueCertificateParams{
		StudentID:   s.student.ID,
		ProgramID:   programID,
		ProgramType: models.ProgramTypeInternship,
		ProgramTag:  "BE",
		Marks:       &marks,
		Grade:       "A",
	})
	s.Require().NoError(err)

	_, err = s.env.certificates.Issue(nil, IssueCertificateParams{
		StudentID:   s.student.ID,
		ProgramID:   programID,
		ProgramType: models.ProgramTypeInternship,
		ProgramTag:  "BE",
		Marks:       &marks,
		Grade:       "A",
	})
	s.True(apperrors.IsConflict(err))
}

func (s *CertificateTestSuite) TestVerifyReasons() {
	certificate := s.issueFor(s.student.ID, "BE")

	valid, err := s.env.certificates.Verify(certificate.Code)
	s.Require().NoError(err)
	s.True(valid.Valid)
	s.Empty(valid.Reason)
	s.Require().NotNil(valid.Certificate)
	s.Equal(s.student.ID, valid.Certificate.StudentID)

	// Unknown code.
	missing, err := s.env.certificates.Verify("CERT-2026-XX-NOPE1234")
	s.Require().NoError(err)
	s.False(missing.Valid)
	s.Equal("not_found", missing.Reason)
	s.Nil(missing.Certificate)

	// Revoked is a distinct reason, not not_found.
	_, err = s.env.certificates.Revoke(certificate.ID, s.admin.ID, "academic misconduct")
	s.Require().NoError(err)

	revoked, err := s.env.certificates.Verify(certificate.Code)
	s.Require().NoError(err)
	s.False(revoked.Valid)
	s.Equal("revoked", revoked.Reason)
	s.Require().NotNil(revoked.Certificate)
}

func (s *CertificateTestSuite) TestRevokeIsOneWay() {
	certificate := s.issueFor(s.student.ID, "BE")

	revoked, err := s.env.certificates.Revoke(certificate.ID, s.admin.ID, "issued in error")
	s.Require().NoError(err)
	s.Equal(models.CertificateStatusRevoked, revoked.Status)
	s.NotNil(revoked.RevokedAt)
	s.Equal("issued in error", revoked.RevocationReason)

	_, err = s.env.certificates.Revoke(certificate.ID, s.admin.ID, "again")
	s.True(apperrors.IsInvalidTransition(err))

	_, err = s.env.certificates.Revoke(uuid.New(), s.admin.ID, "missing")
	s.True(apperrors.IsNotFound(err))
}

func (s *CertificateTestSuite) TestInsertFailureIsNotRetriedAsCollision() {
	// Block inserts at the storage layer. Only a lost race on the code
	// index may be retried; a real database failure must surface as-is
	// instead of burning retries into an allocation error.
	s.Require().NoError(s.env.db.Exec(
		`CREATE TRIGGER certificates_block_insert BEFORE INSERT ON certificates
		 BEGIN SELECT RAISE(ABORT, 'storage offline'); END`).Error)

	marks := 42
	_, err := s.env.certificates.Issue(nil, IssueCertificateParams{
		StudentID:   s.student.ID,
		ProgramID:   uuid.New(),
		ProgramType: models.ProgramTypeInternship,
		ProgramTag:  "BE",
		Marks:       &marks,
		Grade:       "A",
	})
	s.Require().Error(err)
	s.False(apperrors.IsAllocation(err))
	s.Contains(err.Error(), "failed to create certificate")
}

func (s *CertificateTestSuite) TestBulkIssuePartialFailure() {
	programID := uuid.New()

	students := make([]uuid.UUID, 0, 5)
	for i := 0; i < 4; i++ {
		student := s.env.createStudent(s.T(), fmt.Sprintf("Student %d", i), fmt.Sprintf("student%d@example.com", i))
		students = append(students, student.ID)
	}

	// The fifth already holds a certificate for the program.
	blocked := s.env.createStudent(s.T(), "Blocked Student", "blocked@example.com")
	marks := 44
	_, err := s.env.certificates.Issue(nil, IssueCertificateParams{
		StudentID:   blocked.ID,
		ProgramID:   programID,
		ProgramType: models.ProgramTypeCourse,
		ProgramTag:  "GO",
		Marks:       &marks,
		Grade:       "A",
	})
	s.Require().NoError(err)
	students = append(students, blocked.ID)

	results, err := s.env.certificates.BulkIssue(programID, models.ProgramTypeCourse, "GO", students, s.admin.ID)
	s.True(apperrors.IsPartialBatch(err))
	s.Require().Len(results, 5)

	succeeded, failed := 0, 0
	for _, result := range results {
		if result.Error == "" {
			s.NotNil(result.Certificate)
			succeeded++
		} else {
			s.Equal(blocked.ID, result.StudentID)
			failed++
		}
	}
	s.Equal(4, succeeded)
	s.Equal(1, failed)
}
