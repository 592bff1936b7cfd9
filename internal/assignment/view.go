package assignment

import "time"

type View struct {
	ID                string     `json:"id"`
	TaskID            string     `json:"task_id"`
	TaskTitle         string     `json:"task_title,omitempty"`
	AssignedByAdminID string     `json:"assigned_by_admin_id"`
	AssignedToUserID  string     `json:"assigned_to_user_id"`
	AssignedToName    string     `json:"assigned_to_name,omitempty"`
	Status            Status     `json:"status"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	RespondedAt       *time.Time `json:"responded_at,omitempty"`
}

func ToView(r *Request) *View {
	if r == nil {
		return nil
	}
	return &View{
		ID:                r.ID,
		TaskID:            r.TaskID,
		AssignedByAdminID: r.AssignedByAdminID,
		AssignedToUserID:  r.AssignedToUserID,
		Status:            r.Status,
		RejectionReason:   r.RejectionReason,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		RespondedAt:       r.RespondedAt,
	}
}
