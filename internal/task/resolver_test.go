package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/assignment"
)

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func request(id, userID string, status assignment.Status, minute int) *assignment.Request {
	at := base.Add(time.Duration(minute) * time.Minute)
	return &assignment.Request{
		ID:               id,
		TaskID:           "T1",
		AssignedToUserID: userID,
		Status:           status,
		CreatedAt:        at,
		UpdatedAt:        at,
	}
}

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name      string
		stored    Status
		roster    []Assignee
		checklist []ChecklistItem
		requests  []*assignment.Request
		want      Status
	}{
		{
			name:   "no requests keeps stored status",
			stored: StatusInProgress,
			roster: []Assignee{Direct("alice")},
			want:   StatusInProgress,
		},
		{
			name:      "single rejected candidate ignores checklist",
			stored:    StatusCompleted,
			checklist: items(true, true),
			requests:  []*assignment.Request{request("R1", "bob", assignment.StatusRejected, 0)},
			want:      StatusRejected,
		},
		{
			name: "all rejected without direct assignees",
			requests: []*assignment.Request{
				request("R1", "bob", assignment.StatusRejected, 0),
				request("R2", "carol", assignment.StatusRejected, 1),
			},
			want: StatusRejected,
		},
		{
			name:      "rejected re-request keeps approved roster entry",
			stored:    StatusRejected,
			roster:    []Assignee{ViaRequest("bob", "R1")},
			checklist: items(true, false),
			requests: []*assignment.Request{
				request("R1", "bob", assignment.StatusApproved, 0),
				request("R2", "bob", assignment.StatusRejected, 1),
			},
			want: StatusInProgress,
		},
		{
			name:      "direct assignee prevents rejection",
			stored:    StatusInProgress,
			roster:    []Assignee{Direct("alice")},
			checklist: items(true, false),
			requests: []*assignment.Request{
				request("R1", "bob", assignment.StatusRejected, 0),
				request("R2", "carol", assignment.StatusRejected, 1),
			},
			want: StatusInProgress,
		},
		{
			name:      "stale rejected cache with direct assignee falls back to checklist",
			stored:    StatusRejected,
			roster:    []Assignee{Direct("alice")},
			checklist: items(true, false),
			requests:  []*assignment.Request{request("R1", "bob", assignment.StatusRejected, 0)},
			want:      StatusInProgress,
		},
		{
			name:   "pending request wins",
			stored: StatusInProgress,
			roster: []Assignee{Direct("alice")},
			requests: []*assignment.Request{
				request("R1", "bob", assignment.StatusPending, 0),
			},
			want: StatusPendingApproval,
		},
		{
			name:      "approved with half the checklist",
			roster:    []Assignee{ViaRequest("bob", "R1")},
			checklist: items(true, false),
			requests:  []*assignment.Request{request("R1", "bob", assignment.StatusApproved, 0)},
			want:      StatusInProgress,
		},
		{
			name:      "approved with the whole checklist",
			roster:    []Assignee{ViaRequest("bob", "R1")},
			checklist: items(true, true),
			requests:  []*assignment.Request{request("R1", "bob", assignment.StatusApproved, 0)},
			want:      StatusCompleted,
		},
		{
			name:      "approved with nothing done",
			stored:    StatusInProgress,
			roster:    []Assignee{ViaRequest("bob", "R1")},
			checklist: items(false),
			requests:  []*assignment.Request{request("R1", "bob", assignment.StatusApproved, 0)},
			want:      StatusPending,
		},
		{
			name:     "approved with empty checklist",
			stored:   StatusCompleted,
			roster:   []Assignee{ViaRequest("bob", "R1")},
			requests: []*assignment.Request{request("R1", "bob", assignment.StatusApproved, 0)},
			want:     StatusPending,
		},
		{
			name: "one approved one rejected",
			roster: []Assignee{
				ViaRequest("bob", "R1"),
			},
			checklist: items(true, false),
			requests: []*assignment.Request{
				request("R1", "bob", assignment.StatusApproved, 0),
				request("R2", "carol", assignment.StatusRejected, 1),
			},
			want: StatusInProgress,
		},
		{
			name: "re-requested candidate is pending again",
			requests: []*assignment.Request{
				request("R1", "bob", assignment.StatusRejected, 0),
				request("R2", "bob", assignment.StatusPending, 1),
			},
			want: StatusPendingApproval,
		},
		{
			name:   "requests of other tasks are ignored",
			stored: StatusPending,
			roster: []Assignee{Direct("alice")},
			requests: []*assignment.Request{
				{ID: "X", TaskID: "T2", AssignedToUserID: "alice", Status: assignment.StatusRejected},
			},
			want: StatusPending,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := &Task{ID: "T1", Status: tt.stored, AssignedTo: tt.roster, Checklist: tt.checklist}
			assert.Equal(t, tt.want, Resolve(tk, tt.requests).Status)
		})
	}
}

func TestCurrentRequests(t *testing.T) {
	older := request("R1", "bob", assignment.StatusRejected, 0)
	pending := request("R2", "bob", assignment.StatusPending, 1)
	newer := request("R3", "bob", assignment.StatusApproved, 2)

	cur := CurrentRequests(&Task{ID: "T1"}, []*assignment.Request{older, pending, newer})
	assert.Equal(t, "R2", cur["bob"].ID, "pending wins over newer responses")

	pending.Status = assignment.StatusRejected
	cur = CurrentRequests(&Task{ID: "T1"}, []*assignment.Request{older, pending, newer})
	assert.Equal(t, "R3", cur["bob"].ID, "most recently updated wins otherwise")
}

func TestResolveAssigneeViews(t *testing.T) {
	rejected := request("R2", "carol", assignment.StatusRejected, 1)
	rejected.RejectionReason = "on leave"
	tk := &Task{
		ID:         "T1",
		AssignedTo: []Assignee{Direct("alice"), ViaRequest("bob", "R1")},
	}
	res := Resolve(tk, []*assignment.Request{
		request("R1", "bob", assignment.StatusApproved, 0),
		rejected,
		request("R3", "dave", assignment.StatusPending, 2),
	})

	require.Len(t, res.Assignees, 4)
	assert.Equal(t, AssigneeView{UserID: "alice", Source: SourceDirect, InRoster: true}, res.Assignees[0])
	assert.Equal(t, AssigneeView{UserID: "bob", Source: SourceRequest, RequestID: "R1", InRoster: true}, res.Assignees[1])
	assert.Equal(t, AssigneeView{UserID: "carol", Source: SourceRequest, RequestID: "R2", Rejected: true, RejectionReason: "on leave"}, res.Assignees[2])
	assert.Equal(t, AssigneeView{UserID: "dave", Source: SourceRequest, RequestID: "R3", Pending: true}, res.Assignees[3])
	assert.Equal(t, StatusPendingApproval, res.Status)
}

func TestAfterRejectStatus(t *testing.T) {
	tests := []struct {
		name     string
		roster   []Assignee
		requests []*assignment.Request
		want     Status
	}{
		{
			name:     "only request rejected",
			requests: []*assignment.Request{request("R1", "bob", assignment.StatusRejected, 0)},
			want:     StatusRejected,
		},
		{
			name:     "rejected with direct assignee",
			roster:   []Assignee{Direct("alice")},
			requests: []*assignment.Request{request("R1", "bob", assignment.StatusRejected, 0)},
			want:     StatusPending,
		},
		{
			name: "another request still pending",
			requests: []*assignment.Request{
				request("R1", "bob", assignment.StatusRejected, 0),
				request("R2", "carol", assignment.StatusPending, 1),
			},
			want: StatusPendingApproval,
		},
		{
			name:   "rejected re-request of an approved candidate",
			roster: []Assignee{ViaRequest("bob", "R1")},
			requests: []*assignment.Request{
				request("R1", "bob", assignment.StatusApproved, 0),
				request("R2", "bob", assignment.StatusRejected, 1),
			},
			want: StatusPending,
		},
		{
			name:   "another request approved",
			roster: []Assignee{ViaRequest("carol", "R2")},
			requests: []*assignment.Request{
				request("R1", "bob", assignment.StatusRejected, 0),
				request("R2", "carol", assignment.StatusApproved, 1),
			},
			want: StatusPending,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := &Task{ID: "T1", AssignedTo: tt.roster, Checklist: items(true, true)}
			assert.Equal(t, tt.want, AfterRejectStatus(tk, tt.requests))
		})
	}
}
