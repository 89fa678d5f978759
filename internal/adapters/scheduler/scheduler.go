package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"car-finder/internal/contextkeys"
	"car-finder/internal/core/port"

	"github.com/google/uuid"
)

// Job - периодическая задача. Interval <= 0 отключает задачу.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler запускает задачи по тикеру внутри процесса.
// Один прогон задачи не пересекается со следующим: тик во время прогона пропускается.
type Scheduler struct {
	jobs   []Job
	logger port.LoggerPort

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

func NewScheduler(logger port.LoggerPort, jobs ...Job) (*Scheduler, error) {
	for _, j := range jobs {
		if j.Name == "" || j.Run == nil {
			return nil, fmt.Errorf("scheduler: job name and run func are required")
		}
	}
	return &Scheduler{
		jobs:   jobs,
		logger: logger.WithFields(port.Fields{"component": "Scheduler"}),
	}, nil
}

// Start блокируется до отмены ctx или вызова Close
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	enabled := 0
	for _, job := range s.jobs {
		if job.Interval <= 0 {
			s.logger.Info("Job disabled", port.Fields{"job": job.Name})
			continue
		}
		enabled++
		s.wg.Add(1)
		go s.loop(runCtx, job)
	}
	s.mu.Unlock()

	s.logger.Info("Scheduler started", port.Fields{"jobs_enabled": enabled})

	<-runCtx.Done()
	return nil
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx, job)
		case <-ctx.Done():
			return
		}
	}
}

// runOnce выполняет задачу со своим trace_id и логгером в контексте
func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	traceID := uuid.NewString()
	jobLogger := s.logger.WithFields(port.Fields{"job": job.Name, "trace_id": traceID})

	jobCtx := contextkeys.ContextWithLogger(ctx, jobLogger)
	jobCtx = contextkeys.ContextWithTraceID(jobCtx, traceID)

	start := time.Now()
	jobLogger.Info("Job started", nil)

	defer func() {
		if r := recover(); r != nil {
			jobLogger.Error("Job panicked", fmt.Errorf("panic: %v", r), nil)
		}
	}()

	if err := job.Run(jobCtx); err != nil {
		jobLogger.Error("Job failed", err, port.Fields{"duration_ms": time.Since(start).Milliseconds()})
		return
	}
	jobLogger.Info("Job finished", port.Fields{"duration_ms": time.Since(start).Milliseconds()})
}

// Close останавливает тикеры и ждет завершения текущих прогонов
func (s *Scheduler) Close() error {
	s.mu.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("Scheduler stopped", nil)
	return nil
}
