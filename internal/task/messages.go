package task

import (
	"time"

	"github.com/kazz187/taskboard/internal/assignment"
	"github.com/kazz187/taskboard/internal/pagination"
	"github.com/kazz187/taskboard/internal/user"
)

type AssigneeInfo struct {
	UserID          string `json:"user_id"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	Source          Source `json:"source"`
	RequestID       string `json:"request_id,omitempty"`
	InRoster        bool   `json:"in_roster"`
	Pending         bool   `json:"pending"`
	Rejected        bool   `json:"rejected"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

type TaskView struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Priority    Priority        `json:"priority"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Status      Status          `json:"status"`
	Progress    int             `json:"progress"`
	Checklist   []ChecklistItem `json:"checklist"`
	Assignees   []AssigneeInfo  `json:"assignees"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// toView renders a snapshot, attaching display attributes from users.
func toView(snap *Snapshot, users map[string]*user.User) *TaskView {
	t := snap.Task
	v := &TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Status:      snap.Resolution.Status,
		Progress:    t.Progress,
		Checklist:   t.Checklist,
		Assignees:   make([]AssigneeInfo, 0, len(snap.Resolution.Assignees)),
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if v.Checklist == nil {
		v.Checklist = []ChecklistItem{}
	}
	for _, a := range snap.Resolution.Assignees {
		info := AssigneeInfo{
			UserID:          a.UserID,
			Source:          a.Source,
			RequestID:       a.RequestID,
			InRoster:        a.InRoster,
			Pending:         a.Pending,
			Rejected:        a.Rejected,
			RejectionReason: a.RejectionReason,
		}
		if u, ok := users[a.UserID]; ok {
			info.Name = u.Name
			info.Email = u.Email
			info.ProfileImageURL = u.ProfileImageURL
		}
		v.Assignees = append(v.Assignees, info)
	}
	return v
}

type ChecklistItemInput struct {
	Text      string `json:"text" validate:"required,max=500"`
	Completed bool   `json:"completed"`
}

func checklistFromInput(in []ChecklistItemInput) []ChecklistItem {
	items := make([]ChecklistItem, len(in))
	for i, it := range in {
		items[i] = ChecklistItem(it)
	}
	return items
}

type CreateTaskRequest struct {
	Title       string               `json:"title" validate:"required,max=200"`
	Description string               `json:"description,omitempty" validate:"max=10000"`
	Priority    Priority             `json:"priority" validate:"required,oneof=Low Medium High"`
	DueDate     *time.Time           `json:"due_date,omitempty"`
	AssignedTo  []string             `json:"assigned_to,omitempty" validate:"unique,dive,required"`
	Checklist   []ChecklistItemInput `json:"checklist,omitempty" validate:"max=200,dive"`
}

type CreateTaskResponse struct {
	Task *TaskView `json:"task"`
	// Requests lists the approval requests opened for overloaded candidates.
	Requests []*assignment.View `json:"requests"`
}

type GetTaskRequest struct {
	ID string `json:"id" validate:"required"`
}

type GetTaskResponse struct {
	Task *TaskView `json:"task"`
}

type ListTasksFilter struct {
	Status     Status     `json:"status,omitempty" validate:"omitempty,oneof=Pending 'In Progress' Completed Rejected 'Pending Approval'"`
	Priority   Priority   `json:"priority,omitempty" validate:"omitempty,oneof=Low Medium High"`
	AssigneeID string     `json:"assignee_id,omitempty"`
	CreatedBy  string     `json:"created_by,omitempty"`
	Query      string     `json:"query,omitempty" validate:"max=200"`
	DueBefore  *time.Time `json:"due_before,omitempty"`
}

type ListTasksSort struct {
	Field SortField `json:"field,omitempty" validate:"omitempty,oneof=created_at updated_at due_date priority title"`
	Desc  bool      `json:"desc,omitempty"`
}

type ListTasksRequest struct {
	Filter     *ListTasksFilter    `json:"filter,omitempty"`
	Sort       *ListTasksSort      `json:"sort,omitempty"`
	Pagination *pagination.Request `json:"pagination,omitempty"`
}

type ListTasksResponse struct {
	Tasks      []*TaskView          `json:"tasks"`
	Pagination *pagination.Response `json:"pagination"`
	// StatusCounts counts every visible task matching the filter (status
	// aside) by status.
	StatusCounts map[Status]int `json:"status_counts"`
}

type UpdateTaskRequest struct {
	ID          string     `json:"id" validate:"required"`
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=10000"`
	Priority    *Priority  `json:"priority,omitempty" validate:"omitempty,oneof=Low Medium High"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	ClearDue    bool       `json:"clear_due_date,omitempty"`
	// AssignedTo replaces the roster when present. Users already on the
	// roster keep their provenance; new users are assigned directly.
	AssignedTo *[]string `json:"assigned_to,omitempty" validate:"omitempty,unique,dive,required"`
}

type UpdateTaskResponse struct {
	Task *TaskView `json:"task"`
}

type DeleteTaskRequest struct {
	ID string `json:"id" validate:"required"`
}

type DeleteTaskResponse struct{}

type UpdateTaskStatusRequest struct {
	ID     string `json:"id" validate:"required"`
	Status Status `json:"status" validate:"required"`
}

type UpdateTaskStatusResponse struct {
	Task *TaskView `json:"task"`
}

type UpdateTaskChecklistRequest struct {
	ID        string               `json:"id" validate:"required"`
	Checklist []ChecklistItemInput `json:"checklist" validate:"max=200,dive"`
}

type UpdateTaskChecklistResponse struct {
	Task *TaskView `json:"task"`
}

type GetTaskSummaryRequest struct{}

type GetTaskSummaryResponse struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
}
