package repositoryimpl

import (
	"context"

	"github.com/kazz187/taskboard/internal/docstore"
	"github.com/kazz187/taskboard/internal/pagination"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/storage"
)

const tasksPrefix = "tasks"

type YAMLRepository struct {
	docs *docstore.Collection[task.Task]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{docs: docstore.NewCollection[task.Task](s, tasksPrefix, "task")}
}

func (r *YAMLRepository) Create(ctx context.Context, t *task.Task) error {
	return r.docs.Create(ctx, t.ID, t)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	return r.docs.Get(ctx, id)
}

func (r *YAMLRepository) matching(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	all, err := r.docs.All(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, t := range all {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *YAMLRepository) List(ctx context.Context, f task.Filter, s task.Sort, limit, offset int) ([]*task.Task, int, error) {
	matches, err := r.matching(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	task.SortTasks(matches, s)
	return pagination.Page(matches, limit, offset), len(matches), nil
}

func (r *YAMLRepository) ListIDs(ctx context.Context) ([]string, error) {
	all, err := r.docs.All(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(all))
	for i, t := range all {
		ids[i] = t.ID
	}
	return ids, nil
}

func (r *YAMLRepository) Update(ctx context.Context, t *task.Task) error {
	return r.docs.Update(ctx, t.ID, t)
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	return r.docs.Delete(ctx, id)
}

func (r *YAMLRepository) Count(ctx context.Context, f task.Filter) (int, error) {
	matches, err := r.matching(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

func (r *YAMLRepository) CountByStatus(ctx context.Context, f task.Filter) (map[task.Status]int, error) {
	matches, err := r.matching(ctx, f)
	if err != nil {
		return nil, err
	}
	counts := make(map[task.Status]int)
	for _, t := range matches {
		counts[t.Status]++
	}
	return counts, nil
}

func (r *YAMLRepository) CountActiveHighPriority(ctx context.Context, userID string) (int, error) {
	matches, err := r.matching(ctx, task.Filter{AssigneeID: userID, Priority: task.PriorityHigh})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range matches {
		if t.Status != task.StatusCompleted {
			n++
		}
	}
	return n, nil
}
