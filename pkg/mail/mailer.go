// Package mail sends transactional email over SMTP.
package mail

import (
	"fmt"

	"makao/pkg/config"

	"gopkg.in/gomail.v2"
)

// Mailer SMTP sender.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer builds a mailer from configuration.
func NewMailer() *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(
			config.GetString("mail.host"),
			config.GetInt("mail.port"),
			config.GetString("mail.username"),
			config.GetString("mail.password"),
		),
		from: config.GetString("mail.from"),
	}
}

// Send delivers one plain text message.
func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

// ReceiptBody renders the payment confirmation email.
func ReceiptBody(name, kind, amount, receiptCode string) (subject, body string) {
	subject = "Payment received"
	body = fmt.Sprintf(
		"Hello %s,\n\nWe have received your %s payment of KES %s.\nReceipt number: %s.\n\nThank you,\n%s",
		name, kind, amount, receiptCode, config.GetString("app.name"),
	)
	return subject, body
}

// ReminderBody renders the upcoming rent due email.
func ReminderBody(name, unitNumber, amount, dueDate string) (subject, body string) {
	subject = "Rent due reminder"
	body = fmt.Sprintf(
		"Hello %s,\n\nRent of KES %s for unit %s falls due on %s.\nPlease pay before the due date to avoid penalties.\n\nThank you,\n%s",
		name, amount, unitNumber, dueDate, config.GetString("app.name"),
	)
	return subject, body
}
