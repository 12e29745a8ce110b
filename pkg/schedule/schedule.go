// Package schedule runs periodic background jobs.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"makao/pkg/logger"
)

// Job a periodic task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

// Scheduler runs registered jobs on their intervals.
type Scheduler struct {
	jobs     []Job
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{stopChan: make(chan struct{})}
}

// Every registers a job.
func (s *Scheduler) Every(interval time.Duration, name string, run func(ctx context.Context)) {
	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Run: run})
}

// Start launches one goroutine per job. Each job runs once at start,
// then on every tick.
func (s *Scheduler) Start() {
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}
}

func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	logger.InfoString("Schedule", "Start",
		fmt.Sprintf("job %s scheduled every %s", job.Name, job.Interval))

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.invoke(job)

	for {
		select {
		case <-s.stopChan:
			logger.InfoString("Schedule", "Stop", "job "+job.Name+" stopping")
			return
		case <-ticker.C:
			s.invoke(job)
		}
	}
}

func (s *Scheduler) invoke(job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorString("Schedule", job.Name, fmt.Sprintf("job panicked: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), job.Interval)
	defer cancel()

	job.Run(ctx)
}

// Stop signals all jobs and waits for them to finish.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
