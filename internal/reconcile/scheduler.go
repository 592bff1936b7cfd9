package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the reconciler on a cron schedule. Runs never overlap.
type Scheduler struct {
	cron       *cron.Cron
	reconciler *Reconciler
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewScheduler accepts standard five field specs and descriptors such as
// "@every 10m".
func NewScheduler(ctx context.Context, reconciler *Reconciler, spec string) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &Scheduler{
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		reconciler: reconciler,
		ctx:        ctx,
		cancel:     cancel,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("reconcile scheduler started")
}

// Stop cancels a running pass and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	slog.Info("reconcile scheduler stopped")
}

func (s *Scheduler) run() {
	if _, err := s.reconciler.Run(s.ctx); err != nil {
		slog.ErrorContext(s.ctx, "scheduled reconciliation failed", "error", err)
	}
}
