package task

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"
)

// Filter narrows List and the count queries. Zero fields match everything.
type Filter struct {
	Status   Status
	Priority Priority
	// AssigneeID matches tasks whose roster contains the user.
	AssigneeID string
	CreatedBy  string
	// Query is a case-insensitive substring of the title.
	Query     string
	DueBefore *time.Time
	// Visible, when set, restricts results to tasks the user can see.
	Visible *Visibility
}

// Visibility admits tasks whose roster contains UserID or whose id is in
// TaskIDs (tasks the user holds a request for).
type Visibility struct {
	UserID  string
	TaskIDs []string
}

type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
	SortDueDate   SortField = "due_date"
	SortPriority  SortField = "priority"
	SortTitle     SortField = "title"
)

type Sort struct {
	Field SortField
	Desc  bool
}

type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	// List returns a page of matches and the total match count. A
	// non-positive limit returns every match from offset on.
	List(ctx context.Context, f Filter, s Sort, limit, offset int) ([]*Task, int, error)
	ListIDs(ctx context.Context) ([]string, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, f Filter) (int, error)
	// CountByStatus groups matches by cached status.
	CountByStatus(ctx context.Context, f Filter) (map[Status]int, error)
	// CountActiveHighPriority counts tasks whose roster contains userID,
	// with High priority and a status other than Completed.
	CountActiveHighPriority(ctx context.Context, userID string) (int, error)
}

// Match evaluates f in memory, for stores that cannot push filters down.
func (f Filter) Match(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.AssigneeID != "" && !t.HasAssignee(f.AssigneeID) {
		return false
	}
	if f.CreatedBy != "" && t.CreatedBy != f.CreatedBy {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Query)) {
		return false
	}
	if f.DueBefore != nil && (t.DueDate == nil || !t.DueDate.Before(*f.DueBefore)) {
		return false
	}
	if f.Visible != nil && !t.HasAssignee(f.Visible.UserID) && !slices.Contains(f.Visible.TaskIDs, t.ID) {
		return false
	}
	return true
}

// SortTasks orders tasks in place. Ties fall back to id. Tasks without a due
// date sort after dated ones in ascending due date order.
func SortTasks(tasks []*Task, s Sort) {
	slices.SortStableFunc(tasks, func(a, b *Task) int {
		c := compareBy(a, b, s.Field)
		if s.Desc {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		return c
	})
}

func compareBy(a, b *Task, field SortField) int {
	switch field {
	case SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortDueDate:
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
		return a.DueDate.Compare(*b.DueDate)
	case SortPriority:
		return cmp.Compare(a.Priority.rank(), b.Priority.rank())
	case SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
