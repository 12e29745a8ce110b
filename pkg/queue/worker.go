package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"makao/pkg/logger"
	"makao/pkg/mail"
)

// Worker delivers queued notifications over SMTP.
type Worker struct {
	queueService *QueueService
	mailer       *mail.Mailer
	stopChan     chan struct{}
	workerCount  int
	metrics      *QueueMetrics
	wg           sync.WaitGroup
	config       WorkerConfig
}

// WorkerConfig worker group settings.
type WorkerConfig struct {
	WorkerCount     int
	MaxRetries      int
	RetryInterval   time.Duration
	ShutdownTimeout time.Duration
}

// NewWorker creates a worker group.
func NewWorker(qs *QueueService, mailer *mail.Mailer, config WorkerConfig) *Worker {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 4
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = 5 * time.Second
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 30 * time.Second
	}

	return &Worker{
		queueService: qs,
		mailer:       mailer,
		stopChan:     make(chan struct{}),
		workerCount:  config.WorkerCount,
		metrics:      NewQueueMetrics(),
		config:       config,
	}
}

// Start launches the worker goroutines.
func (w *Worker) Start() {
	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.startWorker(i)
	}
}

func (w *Worker) startWorker(id int) {
	defer w.wg.Done()

	logger.InfoString("Worker", "Start", fmt.Sprintf("Notification worker %d started", id))

	for {
		select {
		case <-w.stopChan:
			logger.InfoString("Worker", "Stop", fmt.Sprintf("Notification worker %d stopping", id))
			return
		default:
			if err := w.processNextTask(); err != nil {
				logger.ErrorString("Worker", "Process", fmt.Sprintf("worker %d: %v", id, err))
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) processNextTask() error {
	start := time.Now()
	defer func() {
		w.metrics.RecordProcessingTime(time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	task, err := w.queueService.PopTask(ctx)
	if err != nil {
		return fmt.Errorf("pop task error: %w", err)
	}
	if task == nil {
		// empty poll, avoid busy looping
		time.Sleep(100 * time.Millisecond)
		return nil
	}

	return w.handleTask(task)
}

// handleTask delivers one notification with bounded retries.
func (w *Worker) handleTask(task *NotificationTask) error {
	var lastErr error
	for attempt := 0; attempt < w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(w.config.RetryInterval)
		}

		if err := w.mailer.Send(task.To, task.Subject, task.Body); err != nil {
			lastErr = err
			continue
		}

		w.metrics.RecordSuccess(OpProcess)
		logger.InfoString("Worker", "Delivered",
			fmt.Sprintf("%s notification %s to %s", task.Kind, task.ID, task.To))
		return nil
	}

	w.metrics.RecordError(OpProcess)
	return fmt.Errorf("deliver notification %s: %w", task.ID, lastErr)
}

// Stop shuts the worker group down gracefully.
func (w *Worker) Stop() {
	close(w.stopChan)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoString("Worker", "Stop", "All notification workers stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		logger.WarnString("Worker", "Stop", "Notification worker shutdown timed out")
	}
}
