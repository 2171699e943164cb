// internal/services/lifecycle_test.go
package services

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/apperrors"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
)

type LifecycleTestSuite struct {
	suite.Suite
	env        *testEnv
	student    *models.User
	admin      *models.User
	internship *models.Internship
}

func TestLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(LifecycleTestSuite))
}

func (s *LifecycleTestSuite) SetupTest() {
	s.env = newTestEnv(s.T())
	s.student = s.env.createStudent(s.T(), "Asha Patel", "asha@example.com")
	s.admin = s.env.createAdmin(s.T())
	s.internship = s.env.createInternship(s.T(), 3)
}

func (s *LifecycleTestSuite) completeAllTasks(enrollmentID uuid.UUID) {
	tasks, err := s.env.internships.ListTasks(s.internship.ID)
	s.Require().NoError(err)

	for _, task := range tasks {
		_, err := s.env.progress.CompleteTask(enrollmentID, task.ID)
		s.Require().NoError(err)
	}
}

func (s *LifecycleTestSuite) TestFullHappyPath() {
	// Request
	enrollment, err := s.env.enrollments.RequestEnrollment(s.student.ID, s.internship.ID)
	s.Require().NoError(err)
	s.Equal(models.EnrollmentStatusRequested, enrollment.Status)

	// A second request while the first is in flight conflicts.
	_, err = s.env.enrollments.RequestEnrollment(s.student.ID, s.internship.ID)
	s.True(apperrors.IsConflict(err))

	// Approve generates the onboarding documents.
	approved, err := s.env.enrollments.Approve(enrollment.ID, s.admin.ID, nil)
	s.Require().NoError(err)
	s.Equal(models.EnrollmentStatusApproved, approved.Status)
	s.NotNil(approved.StartDate)
	s.NotNil(approved.EndDate)

	docs, err := s.env.documents.List(enrollment.ID)
	s.Require().NoError(err)
	s.Len(docs, 2)

	// Approving again is a no-op, not an error, and the onboarding
	// documents are not regenerated.
	again, err := s.env.enrollments.Approve(enrollment.ID, s.admin.ID, nil)
	s.Require().NoError(err)
	s.Equal(approved.ApprovedAt.Unix(), again.ApprovedAt.Unix())

	docsAfter, err := s.env.documents.List(enrollment.ID)
	s.Require().NoError(err)
	s.Require().Len(docsAfter, 2)
	for i := range docs {
		s.Equal(docs[i].ContentRef, docsAfter[i].ContentRef)
		s.Equal(docs[i].GeneratedAt.Unix(), docsAfter[i].GeneratedAt.Unix())
	}

	// First task interaction activates the enrollment.
	s.completeAllTasks(enrollment.ID)

	var reloaded models.Enrollment
	s.Require().NoError(s.env.db.First(&reloaded, enrollment.ID).Error)
	s.Equal(models.EnrollmentStatusActive, reloaded.Status)
	s.NotNil(reloaded.ActivatedAt)

	progress, err := s.env.progress.GetProgress(enrollment.ID)
	s.Require().NoError(err)
	s.True(progress.Complete())
	s.Equal(3, progress.TasksCompleted)

	// Completion request opens a pending review.
	_, err = s.env.enrollments.RequestCompletion(enrollment.ID, s.student.ID, false, "")
	s.Require().NoError(err)

	review, err := s.env.completions.GetReview(enrollment.ID)
	s.Require().NoError(err)
	s.Equal(models.ReviewStatusPending, review.Status)
	s.False(review.AdminInitiated)

	// Review with 46 marks lands in the top grade band.
	review, err = s.env.completions.Review(enrollment.ID, s.admin.ID, 46, "Excellent work")
	s.Require().NoError(err)
	s.Equal(models.ReviewStatusReviewed, review.Status)
	s.Equal("A+", review.Grade)

	// Issue the certificate.
	certificate, err := s.env.completions.IssueCertificate(enrollment.ID, s.admin.ID)
	s.Require().NoError(err)
	s.Regexp(regexp.MustCompile(`^CERT-\d{4}-BE-[A-Z2-9]{8}$`), certificate.Code)
	s.Equal("A+", certificate.Grade)

	// Issuing again returns the same certificate.
	same, err := s.env.completions.IssueCertificate(enrollment.ID, s.admin.ID)
	s.Require().NoError(err)
	s.Equal(certificate.Code, same.Code)

	// Terminal state plus the completion documents.
	s.Require().NoError(s.env.db.First(&reloaded, enrollment.ID).Error)
	s.Equal(models.EnrollmentStatusCompleted, reloaded.Status)
	s.NotNil(reloaded.CompletedAt)

	docs, err = s.env.documents.List(enrollment.ID)
	s.Require().NoError(err)
	s.Len(docs, 4)

	// Public verification sees the certificate.
	result, err := s.env.certificates.Verify(certificate.Code)
	s.Require().NoError(err)
	s.True(result.Valid)
	s.Empty(result.Reason)
}

func (s *LifecycleTestSuite) TestCompletionRequestRequiresAllTasks() {
	enrollment, err := s.env.enrollments.RequestEnrollment(s.student.ID, s.internship.ID)
	s.Require().NoError(err)
	_, err = s.env.enrollments.Approve(enrollment.ID, s.admin.ID, nil)
	s.Require().NoError(err)

	tasks, err := s.env.internships.ListTasks(s.internship.ID)
	s.Require().NoError(err)
	_, err = s.env.progress.CompleteTask(enrollment.ID, tasks[0].ID)
	s.Require().NoError(err)

	_, err = s.env.enrollments.RequestCompletion(enrollment.ID, s.student.ID, false, "")
	s.True(apperrors.IsInvalidTransition(err))
}

func (s *LifecycleTestSuite) TestAdminOverrideNeedsReason() {
	enrollment, err := s.env.enrollments.RequestEnrollment(s.student.ID, s.internship.ID)
	s.Require().NoError(err)
	_, err = s.env.enrollments.Approve(enrollment.ID, s.admin.ID, nil)
	s.Require().NoError(err)

	tasks, err := s.env.internships.ListTasks(s.internship.ID)
	s.Require().NoError(err)
	_, err = s.env.progress.CompleteTask(enrollment.ID, tasks[0].ID)
	s.Require().NoError(err)

	_, err = s.env.enrollments.RequestCompletion(enrollment.ID, s.admin.ID, true, "  ")
	s.True(apperrors.IsValidation(err))

	updated, err := s.env.enrollments.RequestCompletion(enrollment.ID, s.admin.ID, true, "company request")
	s.Require().NoError(err)
	s.Equal(models.EnrollmentStatusCompletionRequested, updated.Status)

	review, err := s.env.completions.GetReview(enrollment.ID)
	s.Require().NoError(err)
	s.True(review.AdminInitiated)
	s.Equal("company request", review.OverrideReason)
}

func (s *LifecycleTestSuite) TestAdminCompleteShortcut() {
	enrollment, err := s.env.enrollments.RequestEnrollment(s.student.ID, s.internship.ID)
	s.Require().NoError(err)
	_, err = s.env.enrollments.Approve(enrollment.ID, s.admin.ID, nil)
	s.Require().NoError(err)

	tasks, err := s.env.internships.ListTasks(s.internship.ID)
	s.Require().NoError(err)
	_, err = s.env.progress.CompleteTask(enrollment.ID, tasks[0].ID)
	s.Require().NoError(err)

	review, certificate, err := s.env.completions.CompleteInternshipForStudent(
		enrollment.ID, s.admin.ID, 38, "Solid effort", "placement deadline", true)
	s.Require().NoError(err)
	s.Equal(models.ReviewStatusCertificateIssued, review.Status)
	s.Require().NotNil(certificate)
	s.Equal("B+", certificate.Grade)

	var reloaded models.Enrollment
	s.Require().NoError(s.env.db.First(&reloaded, enrollment.ID).Error)
	s.Equal(models.EnrollmentStatusCompleted, reloaded.Status)
}

func (s *LifecycleTestSuite) TestAdminCompleteShortcutCanDeferIssuance() {
	enrollment, err := s.env.enrollments.RequestEnrollment(s.student.ID, s.internship.ID)
	s.Require().NoError(err)
	_, err = s.env.enrollments.Approve(enrollment.ID, s.admin.ID, nil)
	s.Require().NoError(err)

	tasks, err := s.env.internships.ListTasks(s.internship.ID)
	s.Require().NoError(err)
	_, err = s.env.progress.CompleteTask(enrollment.ID, tasks[0].ID)
	s.Require().NoError(err)

	review, certificate, err := s.env.completions.CompleteInternshipForStudent(
		enrollment.ID, s.admin.ID, 42, "", "placement deadline", false)
	s.Require().NoError(err)
	s.Nil(certificate)
	s.Equal(models.ReviewStatusReviewed, review.Status)

	// The enrollment waits in completion_requested until issuance.
	var reloaded models.Enrollment
	s.Require().NoError(s.env.db.First(&reloaded, enrollment.ID).Error)
	s.Equal(models.EnrollmentStatusCompletionRequested, reloaded.Status)

	issued, err := s.env.completions.IssueCertificate(enrollment.ID, s.admin.ID)
	s.Require().NoError(err)
	s.Equal("A", issued.Grade)
}

func (s *LifecycleTestSuite) TestApproveRejectsPastStartDate() {
	enrollment, err := s.env.enrollments.RequestEnrollment(s.student.ID, s.internship.ID)
	s.Require().NoError(err)

	past := time.Now().AddDate(-1, 0, 0)
	_, err = s.env.enrollments.Approve(enrollment.ID, s.admin.ID, &past)
	s.True(apperrors.IsValidation(err))

	// The failed approval leaves the enrollment untouched.
	var reloaded models.Enrollment
	s.Require().NoError(s.env.db.First(&reloaded, enrollment.ID).Error)
	s.Equal(models.EnrollmentStatusRequested, reloaded.Status)

	future := time.Now().AddDate(0, 0, 7)
	approved, err := s.env.enrollments.Approve(enrollment.ID, s.admin.ID, &future)
	s.Require().NoError(err)
	s.Equal(models.EnrollmentStatusApproved, approved.Status)
	s.Equal(future.AddDate(0, 0, s.internship.DurationWeeks*7).Unix(), approved.EndDate.Unix())
}

func (s *LifecycleTestSuite) TestReviewRecordsMarksExactlyOnce() {
	enrollment, err := s.env.enrollments.RequestEnrollment(s.student.ID, s.internship.ID)
	s.Require().NoError(err)
	_, err = s.env.enrollments.Approve(enrollment.ID, s.admin.ID, nil)
	s.Require().NoError(err)
	s.completeAllTasks(enrollment.ID)
	_, err = s.env.enrollments.RequestCompletion(enrollment.ID, s.student.ID, false, "")
	s.Require().NoError(err)

	_, err = s.env.completions.Review(enrollment.ID, s.admin.ID, 40, "first pass")
	s.Require().NoError(err)

	// The review is decided; a second pass is not a correction window.
	_, err = s.env.completions.Review(enrollment.ID, s.admin.ID, 48, "second pass")
	s.True(apperrors.IsInvalidTransition(err))

	review, err := s.env.completions.GetReview(enrollment.ID)
	s.Require().NoError(err)
	s.Equal(40, *review.Marks)
	s.Equal("A", review.Grade)
	s.Equal("first pass", review.Feedback)
}

func (s *LifecycleTestSuite) TestRejectIsTerminalButRerequestable() {
	enrollment, err := s.env.enrollments.RequestEnrollment(s.student.ID, s.internship.ID)
	s.Require().NoError(err)

	rejected, err := s.env.enrollments.Reject(enrollment.ID, s.admin.ID, "incomplete profile")
	s.Require().NoError(err)
	s.Equal(models.EnrollmentStatusRejected, rejected.Status)
	s.Equal("incomplete profile", rejected.RejectionReason)

	// No transitions out of rejected.
	_, err = s.env.enrollments.Approve(enrollment.ID, s.admin.ID, nil)
	s.True(apperrors.IsInvalidTransition(err))

	// A fresh enrollment row can be requested.
	fresh, err := s.env.enrollments.RequestEnrollment(s.student.ID, s.internship.ID)
	s.Require().NoError(err)
	s.NotEqual(enrollment.ID, fresh.ID)
	s.Equal(models.EnrollmentStatusRequested, fresh.Status)
}

func (s *LifecycleTestSuite) TestMarksBounds() {
	enrollment, err := s.env.enrollments.RequestEnrollment(s.student.ID, s.internship.ID)
	s.Require().NoError(err)
	_, err = s.env.enrollments.Approve(enrollment.ID, s.admin.ID, nil)
	s.Require().NoError(err)
	s.completeAllTasks(enrollment.ID)
	_, err = s.env.enrollments.RequestCompletion(enrollment.ID, s.student.ID, false, "")
	s.Require().NoError(err)

	_, err = s.env.completions.Review(enrollment.ID, s.admin.ID, 51, "")
	s.True(apperrors.IsValidation(err))

	_, err = s.env.completions.Review(enrollment.ID, s.admin.ID, -1, "")
	s.True(apperrors.IsValidation(err))

	review, err := s.env.completions.Review(enrollment.ID, s.admin.ID, 0, "did not meet the bar")
	s.Require().NoError(err)
	s.Equal("C", review.Grade)
}

func TestComputeGrade(t *testing.T) {
	cases := []struct {
		marks int
		grade string
	}{
		{50, "A+"},
		{45, "A+"},
		{44, "A"},
		{40, "A"},
		{39, "B+"},
		{35, "B+"},
		{34, "B"},
		{30, "B"},
		{29, "C"},
		{0, "C"},
	}

	for _, tc := range cases {
		if got := ComputeGrade(tc.marks); got != tc.grade {
			t.Errorf("ComputeGrade(%d) = %q, want %q", tc.marks, got, tc.grade)
		}
	}
}
