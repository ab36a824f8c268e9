// Package watch drives repeated monitoring runs on a fixed interval.
package watch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhinayb/pubwatch/internal/monitor"
)

// Runner performs one monitoring run.
type Runner interface {
	Run(ctx context.Context) monitor.Report
}

// Watcher invokes a Runner on an interval, one run at a time, and retains
// the most recent report for the status endpoint.
type Watcher struct {
	runner       Runner
	interval     time.Duration
	exitWhenDone bool
	logger       *zap.Logger

	mu   sync.RWMutex
	last *monitor.Report
}

// New creates a Watcher. When exitWhenDone is set the loop returns as soon
// as a run reports the terminal notified state.
func New(runner Runner, interval time.Duration, exitWhenDone bool, logger *zap.Logger) *Watcher {
	return &Watcher{
		runner:       runner,
		interval:     interval,
		exitWhenDone: exitWhenDone,
		logger:       logger,
	}
}

// LastReport returns the most recent run report, if any run has completed.
func (w *Watcher) LastReport() (monitor.Report, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.last == nil {
		return monitor.Report{}, false
	}
	return *w.last, true
}

func (w *Watcher) setLast(report monitor.Report) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = &report
}

// Run executes one run immediately and then once per interval until the
// context is cancelled. Runs never overlap.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("watch loop started", zap.Duration("interval", w.interval))

	for {
		report := w.runner.Run(ctx)
		w.setLast(report)

		if w.exitWhenDone && isTerminal(report.Outcome) {
			w.logger.Info("notified state reached, stopping watch loop",
				zap.String("outcome", string(report.Outcome)))
			return nil
		}

		select {
		case <-ctx.Done():
			w.logger.Info("watch loop stopping", zap.Error(ctx.Err()))
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func isTerminal(o monitor.Outcome) bool {
	switch o {
	case monitor.AlreadyNotified, monitor.NotifiedSuccessfully, monitor.NotifiedButSendFailed:
		return true
	default:
		return false
	}
}
