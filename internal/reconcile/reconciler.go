// Package reconcile rewrites cached task statuses that drifted from their
// resolved value.
package reconcile

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/kazz187/taskboard/internal/metrics"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/panicerr"
)

const DefaultConcurrency = 8

type Report struct {
	Scanned  int           `json:"scanned"`
	Repaired int           `json:"repaired"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

type Reconciler struct {
	store       *task.Store
	concurrency int
	metrics     metrics.Collector
}

func NewReconciler(store *task.Store, concurrency int, m metrics.Collector) *Reconciler {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Reconciler{store: store, concurrency: concurrency, metrics: m}
}

// Run repairs every task once. A task that fails is counted and skipped; only
// failing to list tasks or a canceled context aborts the pass.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	ids, err := r.store.Tasks().ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	var scanned, repaired, failed atomic.Int64
	p := pool.New().WithContext(ctx).WithMaxGoroutines(r.concurrency)
	for _, id := range ids {
		repair := panicerr.SafeContext(func(ctx context.Context) error {
			ok, err := r.store.Repair(ctx, id)
			if ok {
				repaired.Add(1)
			}
			return err
		})
		p.Go(func(ctx context.Context) error {
			switch err := repair(ctx); {
			case cerr.IsCode(err, cerr.NotFound):
				// deleted since listing
			case err != nil:
				failed.Add(1)
				slog.WarnContext(ctx, "failed to reconcile task", "task_id", id, "error", err)
			default:
				scanned.Add(1)
			}
			return nil
		})
	}
	_ = p.Wait()

	rep := &Report{
		Scanned:  int(scanned.Load()),
		Repaired: int(repaired.Load()),
		Failed:   int(failed.Load()),
		Duration: time.Since(start),
	}
	r.metrics.RecordReconcile(rep.Scanned, rep.Repaired, rep.Failed, rep.Duration)
	slog.InfoContext(ctx, "reconciliation finished", "scanned", rep.Scanned, "repaired", rep.Repaired, "failed", rep.Failed, "duration", rep.Duration)
	if err := ctx.Err(); err != nil {
		return rep, err
	}
	return rep, nil
}
