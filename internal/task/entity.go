package task

import (
	"slices"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// rank orders priorities for sorting, High first.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

type Status string

const (
	StatusPending         Status = "Pending"
	StatusInProgress      Status = "In Progress"
	StatusCompleted       Status = "Completed"
	StatusRejected        Status = "Rejected"
	StatusPendingApproval Status = "Pending Approval"
)

var AllStatuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusCompleted,
	StatusRejected,
	StatusPendingApproval,
}

// Source records how an assignee joined the roster.
type Source string

const (
	SourceDirect  Source = "direct"
	SourceRequest Source = "request"
)

type Assignee struct {
	UserID string `yaml:"user_id" json:"user_id"`
	Source Source `yaml:"source" json:"source"`
	// RequestID is set when Source is SourceRequest.
	RequestID string `yaml:"request_id,omitempty" json:"request_id,omitempty"`
}

func Direct(userID string) Assignee {
	return Assignee{UserID: userID, Source: SourceDirect}
}

func ViaRequest(userID, requestID string) Assignee {
	return Assignee{UserID: userID, Source: SourceRequest, RequestID: requestID}
}

type ChecklistItem struct {
	Text      string `yaml:"text" json:"text"`
	Completed bool   `yaml:"completed" json:"completed"`
}

type Task struct {
	ID          string          `yaml:"id"`
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Priority    Priority        `yaml:"priority"`
	DueDate     *time.Time      `yaml:"due_date,omitempty"`
	AssignedTo  []Assignee      `yaml:"assigned_to"`
	Checklist   []ChecklistItem `yaml:"checklist"`
	Progress    int             `yaml:"progress"`
	// Status caches the resolver output; see Resolve.
	Status    Status    `yaml:"status"`
	CreatedBy string    `yaml:"created_by"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

func (t *Task) HasAssignee(userID string) bool {
	return slices.ContainsFunc(t.AssignedTo, func(a Assignee) bool {
		return a.UserID == userID
	})
}

func (t *Task) HasDirectAssignee(userID string) bool {
	return slices.ContainsFunc(t.AssignedTo, func(a Assignee) bool {
		return a.UserID == userID && a.Source == SourceDirect
	})
}

// AssigneeIDs returns the distinct roster user ids in roster order.
func (t *Task) AssigneeIDs() []string {
	ids := make([]string, 0, len(t.AssignedTo))
	for _, a := range t.AssignedTo {
		if !slices.Contains(ids, a.UserID) {
			ids = append(ids, a.UserID)
		}
	}
	return ids
}

// AddAssignee appends a unless its user is already on the roster.
func (t *Task) AddAssignee(a Assignee) bool {
	if t.HasAssignee(a.UserID) {
		return false
	}
	t.AssignedTo = append(t.AssignedTo, a)
	return true
}

// RemoveRequestAssignee drops the roster entry that joined through requestID.
func (t *Task) RemoveRequestAssignee(requestID string) bool {
	n := len(t.AssignedTo)
	t.AssignedTo = slices.DeleteFunc(t.AssignedTo, func(a Assignee) bool {
		return a.Source == SourceRequest && a.RequestID == requestID
	})
	return len(t.AssignedTo) != n
}

func (t *Task) DirectCount() int {
	n := 0
	for _, a := range t.AssignedTo {
		if a.Source == SourceDirect {
			n++
		}
	}
	return n
}

func (t *Task) Clone() *Task {
	c := *t
	c.AssignedTo = slices.Clone(t.AssignedTo)
	c.Checklist = slices.Clone(t.Checklist)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}
