package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultSideEffectTimeout bounds one dispatched job, all steps included.
const DefaultSideEffectTimeout = 30 * time.Second

// Step is one best-effort side effect.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher runs side effects after the primary mutation has committed.
// Steps of one job run in order on a single goroutine; a failing or
// panicking step is logged and the next step still runs.
type Dispatcher struct {
	wg      sync.WaitGroup
	timeout time.Duration
	log     *zap.SugaredLogger
}

func NewDispatcher(log *zap.SugaredLogger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultSideEffectTimeout
	}
	return &Dispatcher{timeout: timeout, log: log}
}

// Dispatch schedules steps and returns immediately.
func (d *Dispatcher) Dispatch(job string, steps ...Step) {
	if len(steps) == 0 {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		for _, step := range steps {
			d.run(ctx, job, step)
		}
	}()
}

func (d *Dispatcher) run(ctx context.Context, job string, step Step) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorw("side effect panicked", "job", job, "step", step.Name, "panic", fmt.Sprint(r))
		}
	}()

	if err := step.Run(ctx); err != nil {
		d.log.Warnw("side effect failed", "job", job, "step", step.Name, "error", err)
	}
}

// Wait blocks until every dispatched job has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown waits for in-flight jobs or gives up when ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
