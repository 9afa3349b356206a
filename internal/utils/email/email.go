package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/storefront-labs/shop-wallet/internal/config"
	"github.com/storefront-labs/shop-wallet/internal/models"
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

// SendStatusNotification tells an account that a transaction was settled
// or rejected
func (s *Sender) SendStatusNotification(to, name string, tx *models.Transaction, balance float64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}

	kind := "Deposit"
	if tx.Kind == models.KindPurchase {
		kind = "Purchase"
	}
	switch tx.Status {
	case models.StatusCompleted:
		e.Subject = fmt.Sprintf("%s Approved", kind)
	case models.StatusRejected:
		e.Subject = fmt.Sprintf("%s Rejected", kind)
	default:
		e.Subject = fmt.Sprintf("%s Update", kind)
	}

	body := fmt.Sprintf("Dear %s,\n\n", name)
	switch tx.Status {
	case models.StatusCompleted:
		body += fmt.Sprintf(
			"Your %s of %.2f (reference %s) has been approved.\n"+
				"Current balance: %.2f\n",
			kind, tx.Amount, tx.Reference, balance,
		)
	case models.StatusRejected:
		body += fmt.Sprintf(
			"Your %s of %.2f (reference %s) has been rejected.\n"+
				"Please contact support if you believe this is a mistake.\n"+
				"Current balance: %.2f\n",
			kind, tx.Amount, tx.Reference, balance,
		)
	}
	body += "\nBest regards,\nShop Wallet"
	e.Text = []byte(body)

	return s.send(e)
}

// SendOverdrawAlert warns the admin address that an account balance went
// negative
func (s *Sender) SendOverdrawAlert(to string, accountID int64, balance float64) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Ledger Audit Alert: Negative Balance"

	body := fmt.Sprintf(
		"The nightly ledger audit found a negative balance.\n\n"+
			"Account ID: %d\n"+
			"Balance: %.2f\n"+
			"Detected at: %s\n\n"+
			"Review the account's completed transactions for a settlement error.\n",
		accountID, balance, time.Now().Format("2006-01-02 15:04:05"),
	)
	e.Text = []byte(body)

	return s.send(e)
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}
