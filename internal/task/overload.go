package task

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/kazz187/taskboard/internal/metrics"
)

// DefaultOverloadThreshold is the number of open high priority tasks at
// which a user stops receiving direct assignments.
const DefaultOverloadThreshold = 2

const partitionConcurrency = 8

type Classifier struct {
	repo      Repository
	threshold int
	metrics   metrics.Collector
}

func NewClassifier(repo Repository, threshold int, m metrics.Collector) *Classifier {
	if threshold < 1 {
		threshold = DefaultOverloadThreshold
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Classifier{repo: repo, threshold: threshold, metrics: m}
}

func (c *Classifier) Threshold() int {
	return c.threshold
}

// IsOverloaded reports whether userID holds at least threshold tasks that are
// High priority and not Completed, along with that count.
func (c *Classifier) IsOverloaded(ctx context.Context, userID string) (bool, int, error) {
	n, err := c.repo.CountActiveHighPriority(ctx, userID)
	if err != nil {
		return false, 0, err
	}
	overloaded := n >= c.threshold
	c.metrics.RecordOverloadCheck(overloaded)
	return overloaded, n, nil
}

type Partition struct {
	Direct     []string
	Overloaded []string
	// Counts holds the active high priority count of every candidate.
	Counts map[string]int
}

// Partition splits candidates, keeping their relative order in both halves.
func (c *Classifier) Partition(ctx context.Context, candidates []string) (*Partition, error) {
	overloaded := make([]bool, len(candidates))
	counts := make([]int, len(candidates))
	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(partitionConcurrency)
	for i, uid := range candidates {
		p.Go(func(ctx context.Context) error {
			o, n, err := c.IsOverloaded(ctx, uid)
			if err != nil {
				return err
			}
			overloaded[i], counts[i] = o, n
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	out := &Partition{Counts: make(map[string]int, len(candidates))}
	for i, uid := range candidates {
		out.Counts[uid] = counts[i]
		if overloaded[i] {
			out.Overloaded = append(out.Overloaded, uid)
		} else {
			out.Direct = append(out.Direct, uid)
		}
	}
	return out, nil
}
