// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/config"
	"github.com/MeetDave-25/CodeSprintLabs-sub002/internal/models"
)

// NotificationService sends lifecycle emails. When SMTP credentials are not
// configured (local development, tests) sends become logged no-ops so the
// workflows never block on mail delivery.
type NotificationService struct {
	config *config.Config
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{config: config}
}

var emailTemplate = template.Must(template.New("email").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<h2 style="color: #1a3c6e;">{{.Subject}}</h2>
	<p>Hi {{.Name}},</p>
	<p>{{.Body}}</p>
	{{if .ActionURL}}<p><a href="{{.ActionURL}}" style="color: #1a3c6e;">{{.ActionLabel}}</a></p>{{end}}
	<p>Regards,<br>{{.FromName}}</p>
</body>
</html>
`))

type emailData struct {
	Subject     string
	Name        string
	Body        string
	ActionURL   string
	ActionLabel string
	FromName    string
}

func (s *NotificationService) enabled() bool {
	return s.config.Email.SMTPUsername != "" && s.config.Email.SMTPPassword != ""
}

func (s *NotificationService) send(to, subject string, data emailData) error {
	data.Subject = subject
	data.FromName = s.config.Email.FromName

	var body bytes.Buffer
	if err := emailTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	if !s.enabled() {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured, skipping email")
		return nil
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.Email.FromName, s.config.Email.FromEmail, to, subject, body.String())

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)
	addr := s.config.Email.SMTPHost + ":" + s.config.Email.SMTPPort

	if err := smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// sendAsync is the fire-and-forget path used by lifecycle transitions.
func (s *NotificationService) sendAsync(to, subject string, data emailData) {
	go func() {
		if err := s.send(to, subject, data); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"to":      to,
				"subject": subject,
			}).Error("Failed to send notification email")
		}
	}()
}

func (s *NotificationService) NotifyEnrollmentApproved(student *models.User, internship *models.Internship) {
	s.sendAsync(student.Email, "Your enrollment has been approved", emailData{
		Name:        student.FullName,
		Body:        fmt.Sprintf("Your enrollment in %s has been approved. Your offer letter and MOU are ready in your dashboard.", internship.Title),
		ActionURL:   s.config.Frontend.BaseURL + "/dashboard",
		ActionLabel: "Open dashboard",
	})
}

func (s *NotificationService) NotifyEnrollmentRejected(student *models.User, internship *models.Internship, reason string) {
	body := fmt.Sprintf("Your enrollment request for %s was not approved.", internship.Title)
	if reason != "" {
		body += " Reason: " + reason
	}
	s.sendAsync(student.Email, "Update on your enrollment request", emailData{
		Name: student.FullName,
		Body: body,
	})
}

func (s *NotificationService) NotifyCompletionRequested(student *models.User, internship *models.Internship) {
	s.sendAsync(student.Email, "Completion request received", emailData{
		Name: student.FullName,
		Body: fmt.Sprintf("Your completion request for %s is under review. You will be notified once it has been evaluated.", internship.Title),
	})
}

func (s *NotificationService) NotifyCertificateIssued(student *models.User, internship *models.Internship, certificate *models.Certificate) {
	s.sendAsync(student.Email, "Your certificate is ready", emailData{
		Name:        student.FullName,
		Body:        fmt.Sprintf("Congratulations on completing %s! Your certificate %s has been issued.", internship.Title, certificate.Code),
		ActionURL:   fmt.Sprintf("%s/%s", s.config.Certificate.VerifyBaseURL, certificate.Code),
		ActionLabel: "View certificate",
	})
}

func (s *NotificationService) NotifyWithdrawalDecision(student *models.User, internship *models.Internship, approved bool, note string) {
	if approved {
		s.sendAsync(student.Email, "Withdrawal request approved", emailData{
			Name:        student.FullName,
			Body:        fmt.Sprintf("Your withdrawal from %s has been processed. Your partial completion and relieving letters are available in your dashboard.", internship.Title),
			ActionURL:   s.config.Frontend.BaseURL + "/dashboard",
			ActionLabel: "Open dashboard",
		})
		return
	}

	body := fmt.Sprintf("Your withdrawal request for %s was declined and your enrollment continues.", internship.Title)
	if note != "" {
		body += " Note: " + note
	}
	s.sendAsync(student.Email, "Withdrawal request declined", emailData{
		Name: student.FullName,
		Body: body,
	})
}
