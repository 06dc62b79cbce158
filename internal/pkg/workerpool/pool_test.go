package workerpool

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorkerPool_RunAll(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 3, 8, testLogger())

	var ran atomic.Int32
	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = func(ctx context.Context) { ran.Add(1) }
	}

	require.NoError(t, pool.RunAll(context.Background(), jobs))
	assert.Equal(t, int32(10), ran.Load())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool.Shutdown(ctx)
}

func TestWorkerPool_ShutdownDrainsQueuedJobs(t *testing.T) {
	// One slow worker and a deep queue, so most jobs are still queued when
	// Shutdown is called. Every submitted job must finish before it returns.
	pool := NewWorkerPool(context.Background(), 1, 16, testLogger())

	var ran atomic.Int32
	for range 8 {
		err := pool.Submit(context.Background(), func(ctx context.Context) {
			time.Sleep(5 * time.Millisecond)
			ran.Add(1)
		})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool.Shutdown(ctx)

	assert.Equal(t, int32(8), ran.Load())
}

func TestWorkerPool_SubmitCanceledContext(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1, 0, testLogger())

	// Occupy the only worker so the unbuffered queue cannot accept more work.
	release := make(chan struct{})
	require.NoError(t, pool.Submit(context.Background(), func(ctx context.Context) {
		<-release
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pool.Submit(ctx, func(ctx context.Context) {
		t.Error("job must not run after a canceled submit")
	})
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	pool.Shutdown(shutdownCtx)
}

func TestWithRetry(t *testing.T) {
	t.Run("retries until success", func(t *testing.T) {
		var attempts atomic.Int32
		job := WithRetry(3, time.Millisecond, testLogger(), func() error {
			if attempts.Add(1) < 3 {
				return errors.New("broker unavailable")
			}
			return nil
		})

		job(context.Background())
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		var attempts atomic.Int32
		job := WithRetry(2, time.Millisecond, testLogger(), func() error {
			attempts.Add(1)
			return errors.New("broker unavailable")
		})

		job(context.Background())
		assert.Equal(t, int32(2), attempts.Load())
	})
}
