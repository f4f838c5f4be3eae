package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/robfig/cron/v3"
)

// Refresher reloads the dataset on a cron schedule whenever the source file
// has changed since the last successful load.
type Refresher struct {
	cron      *cron.Cron
	analytics *Analytics
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewRefresher parses schedule (standard five-field cron or a descriptor
// such as "@every 5m"). It returns nil, nil when schedule is empty.
func NewRefresher(analytics *Analytics, schedule string, logger *slog.Logger) (*Refresher, error) {
	if schedule == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Refresher{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		analytics: analytics,
		logger:    logger,
	}
	if _, err := r.cron.AddFunc(schedule, func() { r.Check(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", schedule, err)
	}
	return r, nil
}

func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.cron.Start()
	r.logger.Info("dataset refresher started", "source", r.analytics.Source())
}

// Stop halts the schedule and waits for a running reload to finish or for
// ctx to expire.
func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	r.mu.Unlock()

	select {
	case <-r.cron.Stop().Done():
		r.logger.Info("dataset refresher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Check reloads when the source file is newer than the loaded snapshot.
// It reports whether a reload happened.
func (r *Refresher) Check(ctx context.Context) bool {
	info, err := os.Stat(r.analytics.Source())
	if err != nil {
		r.logger.Warn("cannot stat dataset source", "source", r.analytics.Source(), "error", err)
		return false
	}
	if r.analytics.Ready() && !info.ModTime().After(r.analytics.SourceModTime()) {
		return false
	}

	if err := r.analytics.Load(ctx); err != nil {
		r.logger.Error("scheduled reload failed", "error", err)
		return false
	}
	return true
}
