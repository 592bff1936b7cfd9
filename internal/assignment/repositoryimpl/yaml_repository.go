package repositoryimpl

import (
	"context"

	"github.com/kazz187/taskboard/internal/assignment"
	"github.com/kazz187/taskboard/internal/docstore"
	"github.com/kazz187/taskboard/pkg/storage"
)

const requestsPrefix = "assignment_requests"

type YAMLRepository struct {
	docs *docstore.Collection[assignment.Request]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{docs: docstore.NewCollection[assignment.Request](s, requestsPrefix, "assignment request")}
}

func (r *YAMLRepository) Create(ctx context.Context, req *assignment.Request) error {
	return r.docs.Create(ctx, req.ID, req)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*assignment.Request, error) {
	return r.docs.Get(ctx, id)
}

func (r *YAMLRepository) Update(ctx context.Context, req *assignment.Request) error {
	return r.docs.Update(ctx, req.ID, req)
}

// List relies on ULID ids: path order is creation order.
func (r *YAMLRepository) List(ctx context.Context, f assignment.Filter) ([]*assignment.Request, error) {
	all, err := r.docs.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []*assignment.Request
	for _, req := range all {
		if f.Match(req) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *YAMLRepository) ListByTasks(ctx context.Context, taskIDs []string) (map[string][]*assignment.Request, error) {
	wanted := make(map[string]struct{}, len(taskIDs))
	for _, id := range taskIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[string][]*assignment.Request, len(taskIDs))
	if len(wanted) == 0 {
		return out, nil
	}
	all, err := r.docs.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, req := range all {
		if _, ok := wanted[req.TaskID]; ok {
			out[req.TaskID] = append(out[req.TaskID], req)
		}
	}
	return out, nil
}
