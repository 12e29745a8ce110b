package queue

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricOperation names a measured queue operation.
type MetricOperation string

const (
	OpPush    MetricOperation = "push"
	OpPop     MetricOperation = "pop"
	OpProcess MetricOperation = "process"
)

// LatencyStats latency aggregate for one operation.
type LatencyStats struct {
	count int64
	total time.Duration
	min   time.Duration
	max   time.Duration
}

// QueueMetrics delivery metrics collector.
type QueueMetrics struct {
	totalTasks      atomic.Int64
	successfulTasks atomic.Int64
	failedTasks     atomic.Int64

	processingTimes *sync.Map

	pushLatency    *LatencyStats
	processLatency *LatencyStats
}

// NewQueueMetrics creates a metrics collector.
func NewQueueMetrics() *QueueMetrics {
	return &QueueMetrics{
		processingTimes: &sync.Map{},
		pushLatency:     &LatencyStats{},
		processLatency:  &LatencyStats{},
	}
}

// RecordSuccess counts a successful operation.
func (m *QueueMetrics) RecordSuccess(op MetricOperation) {
	m.successfulTasks.Add(1)
	m.totalTasks.Add(1)
}

// RecordError counts a failed operation.
func (m *QueueMetrics) RecordError(op MetricOperation) {
	m.failedTasks.Add(1)
	m.totalTasks.Add(1)
}

// RecordProcessingTime stores one task's processing duration.
func (m *QueueMetrics) RecordProcessingTime(duration time.Duration) {
	m.processingTimes.Store(time.Now().Unix(), duration.Milliseconds())
}

// RecordPushLatency records enqueue latency.
func (m *QueueMetrics) RecordPushLatency(d time.Duration) {
	m.pushLatency.record(d)
}

// RecordProcessLatency records delivery latency.
func (m *QueueMetrics) RecordProcessLatency(d time.Duration) {
	m.processLatency.record(d)
}

func (s *LatencyStats) record(d time.Duration) {
	atomic.AddInt64(&s.count, 1)

	s.total += d

	if s.min == 0 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
}
