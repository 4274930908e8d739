package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Runner owns the detached background tasks spawned by request handlers.
// Handlers submit work and return immediately; the runner reports
// completion into the persisted record (via the task itself) and lets
// shutdown wait for in-flight runs instead of killing them mid-render.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a Runner whose tasks are cancelled on Shutdown.
func NewRunner() *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{ctx: ctx, cancel: cancel}
}

// Submit starts fn on a background goroutine. The task receives the
// runner's context, which is cancelled when Shutdown gives up waiting.
func (r *Runner) Submit(name string, fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		start := time.Now()
		log.Debug().Str("task", name).Msg("Background task started")
		fn(r.ctx)
		log.Debug().Str("task", name).Dur("duration", time.Since(start)).Msg("Background task finished")
	}()
}

// Shutdown waits up to timeout for in-flight tasks, then cancels the
// shared context so stragglers stop at their next suspension point.
func (r *Runner) Shutdown(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Background tasks drained")
	case <-time.After(timeout):
		log.Warn().Msg("Shutdown timeout reached, cancelling background tasks")
		r.cancel()
		<-done
	}
	r.cancel()
}
