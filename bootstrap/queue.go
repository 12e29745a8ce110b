package bootstrap

import (
	"time"

	"makao/pkg/config"
	"makao/pkg/logger"
	"makao/pkg/mail"
	"makao/pkg/queue"
	"makao/pkg/redis"
)

// NotificationStack the queue service, its notifier and the workers.
type NotificationStack struct {
	Queue    *queue.QueueService
	Notifier *queue.Notifier
	Worker   *queue.Worker
}

// SetupQueue starts the notification queue and its workers.
func SetupQueue() *NotificationStack {
	if redis.Manager == nil {
		logger.ErrorString("Queue", "Setup", "Redis manager not initialized")
		return nil
	}

	queueService := queue.NewQueueService()
	mailer := mail.NewMailer()

	worker := queue.NewWorker(queueService, mailer, queue.WorkerConfig{
		WorkerCount:     config.GetInt("queue.worker_count", 4),
		MaxRetries:      config.GetInt("queue.retry_times", 3),
		RetryInterval:   time.Duration(config.GetInt("queue.retry_delay", 5)) * time.Second,
		ShutdownTimeout: 30 * time.Second,
	})

	worker.Start()

	logger.InfoString("Queue", "Setup", "notification queue started")

	return &NotificationStack{
		Queue:    queueService,
		Notifier: queue.NewNotifier(queueService),
		Worker:   worker,
	}
}
