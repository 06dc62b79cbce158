package workerpool

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Job func(ctx context.Context)

// WorkerPool runs submitted jobs on a fixed set of goroutines. Used to bound
// the parallelism of sync batch replay and event fan-out.
type WorkerPool struct {
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

func NewWorkerPool(ctx context.Context, workerCount int, queueSize int, logger *slog.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	pool := &WorkerPool{
		queue:  make(chan Job, queueSize),
		logger: logger,
	}

	for range workerCount {
		go pool.worker(ctx)
	}

	return pool
}

func (p *WorkerPool) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			job(ctx)
			p.wg.Done()
		}
	}
}

// Submit blocks until the job is queued or ctx is canceled. Jobs are counted
// at submit time so Shutdown waits for queued work, not just running work.
func (p *WorkerPool) Submit(ctx context.Context, job Job) error {
	p.wg.Add(1)
	select {
	case p.queue <- job:
		return nil
	case <-ctx.Done():
		p.wg.Done()
		return ctx.Err()
	}
}

// RunAll submits every job and waits for all of them to finish.
func (p *WorkerPool) RunAll(ctx context.Context, jobs []Job) error {
	var wg sync.WaitGroup
	for _, job := range jobs {
		job := job
		wg.Add(1)
		err := p.Submit(ctx, func(ctx context.Context) {
			defer wg.Done()
			job(ctx)
		})
		if err != nil {
			wg.Done()
			return err
		}
	}
	wg.Wait()
	return nil
}

// Shutdown stops accepting work and waits until every submitted job has run,
// or until ctx expires. Submit must not be called after Shutdown.
func (p *WorkerPool) Shutdown(ctx context.Context) {
	close(p.queue)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		p.logger.Warn("Worker pool shutdown timed out")
	case <-done:
		p.logger.Info("Worker pool shutdown complete")
	}
}

// WithRetry wraps a job so it is retried with a fixed delay before giving up.
func WithRetry(retries int, delay time.Duration, logger *slog.Logger, job func() error) Job {
	return func(ctx context.Context) {
		for i := range retries {
			if ctx.Err() != nil {
				return
			}
			err := job()
			if err == nil {
				return
			}
			logger.Warn("Job failed", "attempt", i+1, "max_attempts", retries, "error", err)
			time.Sleep(delay)
		}
		logger.Error("Job failed after max retries", "max_attempts", retries)
	}
}
