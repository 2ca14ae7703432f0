package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"cloudpilot-backend/internal/logger"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
	enabled   bool
}

// NewEmailService returns a SendGrid-backed EmailService. When disabled
// it logs instead of sending, which keeps local development quiet.
func NewEmailService(apiKey, fromEmail, fromName string, enabled bool) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   enabled,
	}
}

func (s *emailService) SendApprovalRequestNotice(ctx context.Context, email, name, requester string, packageCount int) error {
	subject := "New package request awaiting your approval"
	body := fmt.Sprintf("Hello %s,\n\n%s submitted a request for %d package(s) that is waiting in your approval queue.\n\nBest regards,\nCloud Pilot", name, requester, packageCount)
	return s.send(email, name, subject, body)
}

func (s *emailService) SendDecisionNotice(ctx context.Context, email, name, decision, reason string) error {
	subject := "Your package request has been " + decision
	body := fmt.Sprintf("Hello %s,\n\nYour package request decision: %s.", name, decision)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nBest regards,\nCloud Pilot"
	return s.send(email, name, subject, body)
}

func (s *emailService) SendPasswordResetNotice(ctx context.Context, email, employeeID string) error {
	subject := "Password reset request received"
	body := fmt.Sprintf("A password reset was requested for employee ID %s. Contact the IT service desk to complete the reset.", employeeID)
	return s.send(email, "", subject, body)
}

func (s *emailService) send(to, toName, subject, plainText string) error {
	if !s.enabled {
		logger.Debug("Email sending disabled, skipping", "to", to, "subject", subject)
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	logger.ExternalServiceCall("sendgrid", "send", "to", to)
	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	logger.ExternalServiceResult("sendgrid", "send", err, "to", to)

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
