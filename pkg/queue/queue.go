// Package queue runs the redis-backed notification queue.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"makao/pkg/config"
	"makao/pkg/redis"
)

// notification kinds
const (
	KindReceipt  = "receipt"
	KindReminder = "reminder"
)

// NotificationTask one email to deliver.
type NotificationTask struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// QueueService redis queue for notification tasks.
type QueueService struct {
	client      *redis.RedisClient
	prefix      string
	rateLimiter *rate.Limiter
	metrics     *QueueMetrics
}

// NewQueueService creates the queue service on the queue redis instance.
func NewQueueService() *QueueService {
	rateLimit := config.GetInt("queue.rate_limit", 1000)
	burst := config.GetInt("queue.rate_burst", rateLimit)

	return &QueueService{
		client:      redis.GetRedis(redis.QueueDB),
		prefix:      config.GetString("redis.queue_prefix", "makao:notify"),
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), burst),
		metrics:     NewQueueMetrics(),
	}
}

func (q *QueueService) tasksKey() string {
	return fmt.Sprintf("%s:tasks", q.prefix)
}

// PushTask enqueues a notification, bounded by the rate limiter.
func (q *QueueService) PushTask(ctx context.Context, task *NotificationTask) error {
	if err := q.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	start := time.Now()
	defer func() {
		q.metrics.RecordPushLatency(time.Since(start))
	}()

	taskJSON, err := json.Marshal(task)
	if err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := q.client.Client.LPush(ctx, q.tasksKey(), taskJSON).Err(); err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to push task: %w", err)
	}

	q.metrics.RecordSuccess(OpPush)
	return nil
}

// PopTask blocks until a task is available or the context expires.
// Returns nil, nil on an empty poll.
func (q *QueueService) PopTask(ctx context.Context) (*NotificationTask, error) {
	result, err := q.client.Client.BRPop(ctx, 5*time.Second, q.tasksKey()).Result()
	if err != nil {
		if err == goredis.Nil || err == context.DeadlineExceeded || err == context.Canceled {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop task from queue: %w", err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("invalid result from queue")
	}

	var task NotificationTask
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}

	return &task, nil
}

// Length current queue depth.
func (q *QueueService) Length(ctx context.Context) (int64, error) {
	return q.client.Client.LLen(ctx, q.tasksKey()).Result()
}

// Ping checks queue health.
func (q *QueueService) Ping(ctx context.Context) error {
	return q.client.Ping()
}
