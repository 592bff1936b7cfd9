// Package assignment holds assignment requests: an admin's proposal that an
// overloaded user take on a task, pending that user's approval.
package assignment

import "time"

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

type Request struct {
	ID                string     `yaml:"id" gorm:"primaryKey"`
	TaskID            string     `yaml:"task_id" gorm:"index;not null"`
	AssignedByAdminID string     `yaml:"assigned_by_admin_id"`
	AssignedToUserID  string     `yaml:"assigned_to_user_id" gorm:"index;not null"`
	Status            Status     `yaml:"status" gorm:"index;not null"`
	RejectionReason   string     `yaml:"rejection_reason,omitempty"`
	CreatedAt         time.Time  `yaml:"created_at"`
	UpdatedAt         time.Time  `yaml:"updated_at"`
	RespondedAt       *time.Time `yaml:"responded_at,omitempty"`
}

func (Request) TableName() string {
	return "assignment_requests"
}

// Approve moves the request to Approved and clears any earlier rejection
// reason.
func (r *Request) Approve(now time.Time) {
	r.Status = StatusApproved
	r.RejectionReason = ""
	r.UpdatedAt = now
	r.RespondedAt = &now
}

func (r *Request) Reject(reason string, now time.Time) {
	r.Status = StatusRejected
	r.RejectionReason = reason
	r.UpdatedAt = now
	r.RespondedAt = &now
}
