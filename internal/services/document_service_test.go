// internal/services/document_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/apperrors"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/render"
)

type DocumentStoreTestSuite struct {
	suite.Suite
	env          *testEnv
	enrollmentID uuid.UUID
}

func TestDocumentStoreTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentStoreTestSuite))
}

func (s *DocumentStoreTestSuite) SetupTest() {
	s.env = newTestEnv(s.T())

	student := s.env.createStudent(s.T(), "Meera Iyer", "meera@example.com")
	internship := s.env.createInternship(s.T(), 2)
	enrollment, err := s.env.enrollments.RequestEnrollment(student.ID, internship.ID)
	s.Require().NoError(err)
	s.enrollmentID = enrollment.ID
}

func staticFields(fields render.Fields) FieldsFn {
	return func() (render.Fields, error) { return fields, nil }
}

func (s *DocumentStoreTestSuite) mouFields(studentName string) render.Fields {
	return render.Fields{
		"document_title":    "Memorandum of Understanding",
		"issuer_name":       "CodeSprint Labs",
		"issuer_location":   "Ahmedabad, India",
		"student_name":      studentName,
		"student_email":     "meera@example.com",
		"internship_title":  "Backend Engineering Internship",
		"internship_domain": "Backend",
		"start_date":        "1 September 2026",
		"end_date":          "27 October 2026",
		"duration_weeks":    "8",
	}
}

func (s *DocumentStoreTestSuite) TestGenerateThenCacheHit() {
	fields := s.mouFields("Meera Iyer")

	first, err := s.env.documents.GetOrGenerate(s.enrollmentID, models.DocumentTypeMOU, staticFields(fields))
	s.Require().NoError(err)
	s.NotEmpty(first.Content)
	s.Equal(fields.Hash(), first.SourceFieldsHash)
	s.Len(first.ContentRef, 64)

	// Identical fields: same row, same bytes, no regeneration.
	second, err := s.env.documents.GetOrGenerate(s.enrollmentID, models.DocumentTypeMOU, staticFields(fields))
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal(first.ContentRef, second.ContentRef)
	s.Equal(first.GeneratedAt.Unix(), second.GeneratedAt.Unix())
}

func (s *DocumentStoreTestSuite) TestStaleDetectionRegeneratesInPlace() {
	first, err := s.env.documents.GetOrGenerate(s.enrollmentID, models.DocumentTypeMOU, staticFields(s.mouFields("Meera Iyer")))
	s.Require().NoError(err)

	// The student's name was corrected; the stored copy is stale.
	corrected := s.mouFields("Meera R. Iyer")
	second, err := s.env.documents.GetOrGenerate(s.enrollmentID, models.DocumentTypeMOU, staticFields(corrected))
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.NotEqual(first.SourceFieldsHash, second.SourceFieldsHash)
	s.NotEqual(first.ContentRef, second.ContentRef)
	s.Contains(string(second.Content), "Meera R. Iyer")

	// Still one row per (enrollment, type).
	var count int64
	s.Require().NoError(s.env.db.Model(&models.GeneratedDocument{}).
		Where("enrollment_id = ?", s.enrollmentID).Count(&count).Error)
	s.EqualValues(1, count)
}

func (s *DocumentStoreTestSuite) TestGetNeverGenerates() {
	_, err := s.env.documents.Get(s.enrollmentID, models.DocumentTypeMOU)
	s.True(apperrors.IsNotFound(err))

	docs, err := s.env.documents.List(s.enrollmentID)
	s.Require().NoError(err)
	s.Empty(docs)
}

func (s *DocumentStoreTestSuite) TestUnknownDocumentType() {
	_, err := s.env.documents.GetOrGenerate(s.enrollmentID, models.DocumentType("transcript"), staticFields(render.Fields{}))
	s.True(apperrors.IsValidation(err))
}

func (s *DocumentStoreTestSuite) TestFieldAssemblyErrorPropagates() {
	wantErr := apperrors.NewNotFound("completion review", s.enrollmentID.String())
	_, err := s.env.documents.GetOrGenerate(s.enrollmentID, models.DocumentTypeMOU, func() (render.Fields, error) {
		return nil, wantErr
	})
	s.True(errors.Is(err, wantErr) || apperrors.IsNotFound(err))
}

func (s *DocumentStoreTestSuite) TestDocumentAvailabilityGuards() {
	// Onboarding documents are unavailable before approval.
	_, err := s.env.enrollments.PreviewDocument(s.enrollmentID, models.DocumentTypeMOU)
	s.True(apperrors.IsInvalidTransition(err))

	_, err = s.env.enrollments.PreviewDocument(s.enrollmentID, models.DocumentTypeCertificate)
	s.True(apperrors.IsInvalidTransition(err))

	// Download never generates.
	_, err = s.env.enrollments.DownloadDocument(s.enrollmentID, models.DocumentTypeMOU)
	s.True(apperrors.IsNotFound(err))
}
