package queue

import (
	"context"
	"time"

	"makao/app/models/payment"
	"makao/app/models/unit"
	"makao/pkg/logger"
	"makao/pkg/mail"

	"github.com/google/uuid"
)

// Notifier enqueues customer notifications instead of sending inline,
// so a slow SMTP server never blocks a webhook response.
type Notifier struct {
	queue *QueueService
}

// NewNotifier creates a queue-backed notifier.
func NewNotifier(queue *QueueService) *Notifier {
	return &Notifier{queue: queue}
}

// PaymentCompleted queues the payment receipt email.
func (n *Notifier) PaymentCompleted(ctx context.Context, p *payment.Payment) {
	if p.Email == "" {
		return
	}

	subject, body := mail.ReceiptBody(p.Email, p.Kind, p.Amount.StringFixed(2), p.ReceiptCode)
	n.push(ctx, &NotificationTask{
		ID:        uuid.NewString(),
		Kind:      KindReceipt,
		To:        p.Email,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	})
}

// RentDue queues the upcoming rent reminder email.
func (n *Notifier) RentDue(ctx context.Context, u *unit.Unit) {
	if u.TenantEmail == "" {
		return
	}

	dueDate := ""
	if u.RentDueDate != nil {
		dueDate = u.RentDueDate.Format("2006-01-02")
	}

	subject, body := mail.ReminderBody(u.TenantName, u.UnitNumber, u.RentRemaining.StringFixed(2), dueDate)
	n.push(ctx, &NotificationTask{
		ID:        uuid.NewString(),
		Kind:      KindReminder,
		To:        u.TenantEmail,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	})
}

func (n *Notifier) push(ctx context.Context, task *NotificationTask) {
	if err := n.queue.PushTask(ctx, task); err != nil {
		logger.ErrorString("Notifier", "Push", err.Error())
	}
}
