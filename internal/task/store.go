package task

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/kazz187/taskboard/internal/assignment"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/metrics"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// Repair sources reported to metrics.
const (
	RepairSourceRead      = "read"
	RepairSourceReconcile = "reconcile"
)

// Snapshot is a task together with the requests its status was resolved
// against.
type Snapshot struct {
	Task       *Task
	Requests   []*assignment.Request
	Resolution Resolution
	// Repaired is set when loading rewrote a drifted cached status.
	Repaired bool
}

// Store keeps the cached task status consistent with the assignment
// requests. Every read-modify-write of a task goes through its lock.
type Store struct {
	tasks    Repository
	requests assignment.Repository
	locker   *Locker
	bus      *eventbus.Bus
	metrics  metrics.Collector
	now      func() time.Time
}

func NewStore(tasks Repository, requests assignment.Repository, locker *Locker, bus *eventbus.Bus, m metrics.Collector) *Store {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Store{
		tasks:    tasks,
		requests: requests,
		locker:   locker,
		bus:      bus,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *Store) Tasks() Repository {
	return s.tasks
}

func (s *Store) Requests() assignment.Repository {
	return s.requests
}

func (s *Store) Lock(taskID string) func() {
	return s.locker.Lock(taskID)
}

func (s *Store) Now() time.Time {
	return s.now()
}

// LoadLocked reads the task and its requests and rewrites the cached status
// when it drifted from Resolve. The caller holds the task lock.
func (s *Store) LoadLocked(ctx context.Context, taskID, source string) (*Snapshot, error) {
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	reqs, err := s.requests.List(ctx, assignment.Filter{TaskID: taskID})
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Task: t, Requests: reqs, Resolution: Resolve(t, reqs)}
	if res := snap.Resolution; res.Status != t.Status {
		prev := t.Status
		t.Status = res.Status
		if err := s.tasks.Update(ctx, t); err != nil {
			return nil, err
		}
		s.metrics.RecordStatusRepair(source)
		slog.InfoContext(ctx, "repaired task status", "task_id", t.ID, "from", prev, "to", t.Status, "source", source)
		s.publishStatusChange(t.ID, prev, t.Status)
		snap.Repaired = true
	}
	return snap, nil
}

func (s *Store) Load(ctx context.Context, taskID string) (*Snapshot, error) {
	unlock := s.Lock(taskID)
	defer unlock()
	return s.LoadLocked(ctx, taskID, RepairSourceRead)
}

// Repair reports whether the cached status had to be rewritten.
func (s *Store) Repair(ctx context.Context, taskID string) (bool, error) {
	unlock := s.Lock(taskID)
	defer unlock()
	snap, err := s.LoadLocked(ctx, taskID, RepairSourceReconcile)
	if err != nil {
		return false, err
	}
	return snap.Repaired, nil
}

// LoadMany resolves tasks that were read without their locks. Tasks whose
// cached status drifted are reloaded and repaired under their lock; tasks
// deleted in the meantime are dropped.
func (s *Store) LoadMany(ctx context.Context, tasks []*Task) ([]*Snapshot, error) {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	grouped, err := s.requests.ListByTasks(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*Snapshot, 0, len(tasks))
	for _, t := range tasks {
		reqs := grouped[t.ID]
		res := Resolve(t, reqs)
		if res.Status == t.Status {
			out = append(out, &Snapshot{Task: t, Requests: reqs, Resolution: res})
			continue
		}
		snap, err := s.Load(ctx, t.ID)
		if err != nil {
			if cerr.IsCode(err, cerr.NotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// Save persists t with the status it carries. The caller holds the lock.
func (s *Store) Save(ctx context.Context, t *Task, prev Status) error {
	t.UpdatedAt = s.now()
	if err := s.tasks.Update(ctx, t); err != nil {
		return err
	}
	if prev != t.Status {
		s.publishStatusChange(t.ID, prev, t.Status)
	}
	return nil
}

// SaveResolved applies Resolve to t before saving it. The caller holds the
// lock.
func (s *Store) SaveResolved(ctx context.Context, t *Task, reqs []*assignment.Request, prev Status) (*Snapshot, error) {
	res := Resolve(t, reqs)
	t.Status = res.Status
	if err := s.Save(ctx, t, prev); err != nil {
		return nil, err
	}
	return &Snapshot{Task: t, Requests: reqs, Resolution: res}, nil
}

func (s *Store) publishStatusChange(taskID string, from, to Status) {
	s.bus.PublishNew(eventbus.TypeTaskStatusChanged, taskID, map[string]string{
		"from": string(from),
		"to":   string(to),
	})
}

// ReplaceRequest returns reqs with the element sharing r's id swapped for r,
// or r appended when absent.
func ReplaceRequest(reqs []*assignment.Request, r *assignment.Request) []*assignment.Request {
	out := slices.Clone(reqs)
	for i, existing := range out {
		if existing.ID == r.ID {
			out[i] = r
			return out
		}
	}
	return append(out, r)
}
