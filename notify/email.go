// Package notify delivers customer emails over SMTP.
package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/warp/insurance-engine/config"
	"github.com/warp/insurance-engine/insurance"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendContract emails the contract signing link.
func (s *Sender) SendContract(ctx context.Context, msg insurance.ContractEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := BuildContractEmail(s.cfg.SenderEmail, msg)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send contract email to %s: %v", msg.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", msg.To, e.Subject)
	return nil
}

// BuildContractEmail renders the contract invitation.
func BuildContractEmail(from string, msg insurance.ContractEmail) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{msg.To}
	e.Subject = fmt.Sprintf("Insurance contract %s", msg.OrderName)

	name := msg.CustomerName
	if name == "" {
		name = "customer"
	}
	body := fmt.Sprintf("Dear %s,\n\n", name)
	body += fmt.Sprintf(
		"Your insurance contract %s is ready for review and signature.\n"+
			"Amount due: $ %s\n"+
			"Payment plan: %s\n\n"+
			"Open the contract here:\n%s\n",
		msg.OrderName, msg.Total.StringFixed(2), msg.Summary, msg.URL,
	)
	body += "\nBest regards,\nInsurance Team"
	e.Text = []byte(body)
	return e
}

var _ insurance.ContractMailer = (*Sender)(nil)
