package assignment

import "context"

// Filter narrows List. Zero fields match everything.
type Filter struct {
	TaskID string
	UserID string
	Status Status
}

func (f Filter) Match(r *Request) bool {
	if f.TaskID != "" && r.TaskID != f.TaskID {
		return false
	}
	if f.UserID != "" && r.AssignedToUserID != f.UserID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// Repository stores requests. Requests are never deleted. Listings are in
// creation order.
type Repository interface {
	// Create fails with AlreadyExists when id is taken or, on stores that
	// enforce it, when a Pending request for the same task and user exists.
	Create(ctx context.Context, r *Request) error
	Get(ctx context.Context, id string) (*Request, error)
	Update(ctx context.Context, r *Request) error
	List(ctx context.Context, f Filter) ([]*Request, error)
	// ListByTasks groups the requests of every task in taskIDs by task id.
	ListByTasks(ctx context.Context, taskIDs []string) (map[string][]*Request, error)
}
