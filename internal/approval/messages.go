package approval

import (
	"github.com/kazz187/taskboard/internal/assignment"
	"github.com/kazz187/taskboard/internal/pagination"
	"github.com/kazz187/taskboard/internal/task"
)

type CreateAssignmentRequestRequest struct {
	TaskID string `json:"task_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
}

type CreateAssignmentRequestResponse struct {
	Request *assignment.View `json:"request"`
	Task    *task.TaskView   `json:"task"`
}

type RespondToAssignmentRequestRequest struct {
	ID string `json:"id" validate:"required"`
	// Action is checked after the request is found and the responder
	// authorized, so an unknown request reports NotFound first.
	Action Action `json:"action"`
	Reason string `json:"reason,omitempty" validate:"max=2000"`
}

type RespondToAssignmentRequestResponse struct {
	Request *assignment.View `json:"request"`
	Task    *task.TaskView   `json:"task"`
}

type CheckOverloadRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,max=500,unique,dive,required"`
}

type OverloadedUser struct {
	UserID          string `json:"user_id"`
	Name            string `json:"name,omitempty"`
	Email           string `json:"email,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	// ActiveHighPriority counts the user's High priority tasks that are not
	// Completed.
	ActiveHighPriority int `json:"active_high_priority"`
}

type CheckOverloadResponse struct {
	Threshold  int               `json:"threshold"`
	Overloaded []*OverloadedUser `json:"overloaded"`
}

type ListPendingRequestsRequest struct {
	// UserID narrows an admin's listing to one candidate. Members always see
	// their own requests.
	UserID     string              `json:"user_id,omitempty"`
	Pagination *pagination.Request `json:"pagination,omitempty"`
}

type ListPendingRequestsResponse struct {
	Requests   []*assignment.View   `json:"requests"`
	Pagination *pagination.Response `json:"pagination"`
}
