package reconcile

import (
	"context"
	"fmt"
	"time"

	"makao/app/models/unit"
	"makao/pkg/logger"
)

// DueUnitLister lists occupied units with rent falling due.
type DueUnitLister interface {
	ListDueUnits(ctx context.Context, within time.Duration) ([]unit.Unit, error)
}

// ReminderSender delivers one rent due reminder.
type ReminderSender interface {
	RentDue(ctx context.Context, u *unit.Unit)
}

// Reminder nudges tenants whose rent falls due soon.
type Reminder struct {
	units  DueUnitLister
	sender ReminderSender
	window time.Duration
}

// NewReminder creates the reminder job.
func NewReminder(units DueUnitLister, sender ReminderSender, window time.Duration) *Reminder {
	if window <= 0 {
		window = 3 * 24 * time.Hour
	}
	return &Reminder{units: units, sender: sender, window: window}
}

// Run sends reminders for every unit due within the window. Designed
// for a periodic scheduler slot.
func (r *Reminder) Run(ctx context.Context) {
	units, err := r.units.ListDueUnits(ctx, r.window)
	if err != nil {
		logger.ErrorString("Reminder", "List", err.Error())
		return
	}
	if len(units) == 0 {
		return
	}

	logger.InfoString("Reminder", "Run", fmt.Sprintf("%d units due within %s", len(units), r.window))

	for i := range units {
		r.sender.RentDue(ctx, &units[i])
	}
}
