// Package supervisor keeps long-running loops alive: a loop that panics or
// returns an error is restarted after an exponential backoff.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Task is a loop that runs until ctx is done. Returning nil while ctx is
// still live is treated as a failure and restarts the task.
type Task func(ctx context.Context) error

// Options tunes the restart policy.
type Options struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Logger          *slog.Logger
}

// DefaultOptions restarts quickly at first and settles at one attempt per
// 30 seconds.
func DefaultOptions() Options {
	return Options{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     30 * time.Second,
		Logger:          slog.Default(),
	}
}

// Run executes task until ctx is done, restarting it on failure. It only
// returns once ctx is done.
func Run(ctx context.Context, name string, task Task, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("task", name)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.InitialInterval
	b.MaxInterval = opts.MaxInterval
	b.MaxElapsedTime = 0 // never give up

	op := func() error {
		started := time.Now()
		err := runOnce(ctx, task)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			err = fmt.Errorf("%s exited unexpectedly", name)
		}
		// a task that ran for a while earns a fresh backoff
		if time.Since(started) > opts.MaxInterval {
			b.Reset()
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Error("task_failed", "error", err, "restart_in", wait)
	}

	backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify)
	logger.Debug("task_stopped")
}

// runOnce converts a panic into an error.
func runOnce(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return task(ctx)
}
