package bootstrap

import (
	"time"

	"makao/pkg/config"
	"makao/pkg/logger"
	"makao/pkg/reconcile"
	"makao/pkg/schedule"
)

// SetupScheduler starts the background jobs: the stale payment
// sweeper and the rent due reminder.
func SetupScheduler(stack *PaymentStack, notifications *NotificationStack) *schedule.Scheduler {
	scheduler := schedule.NewScheduler()

	sweeper := reconcile.NewSweeper(
		stack.Engine,
		time.Duration(config.GetInt("payment.stale_after_minutes"))*time.Minute,
		time.Duration(config.GetInt("payment.sweep_grace_minutes"))*time.Minute,
	)
	scheduler.Every(
		time.Duration(config.GetInt("payment.sweep_interval"))*time.Minute,
		"stale-payment-sweeper",
		sweeper.Sweep,
	)

	if notifications != nil {
		reminder := reconcile.NewReminder(
			stack.Units,
			notifications.Notifier,
			time.Duration(config.GetInt("payment.reminder_window_days"))*24*time.Hour,
		)
		scheduler.Every(
			time.Duration(config.GetInt("payment.reminder_interval_hours"))*time.Hour,
			"rent-due-reminder",
			reminder.Run,
		)
	}

	scheduler.Start()

	logger.InfoString("Schedule", "Setup", "background jobs started")
	return scheduler
}
