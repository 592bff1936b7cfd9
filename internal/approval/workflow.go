// Package approval runs the assignment request state machine and keeps the
// task roster and cached status in step with it.
package approval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/assignment"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/metrics"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Metric actions.
const (
	metricCreated  = "created"
	metricApproved = "approved"
	metricRejected = "rejected"
)

var _ task.RequestCreator = (*Workflow)(nil)

type Workflow struct {
	store    *task.Store
	users    user.Repository
	eventBus *eventbus.Bus
	metrics  metrics.Collector
}

func NewWorkflow(store *task.Store, users user.Repository, eventBus *eventbus.Bus, m metrics.Collector) *Workflow {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Workflow{
		store:    store,
		users:    users,
		eventBus: eventBus,
		metrics:  m,
	}
}

// CreateRequest opens a Pending request for candidateID on taskID. The
// candidate joins the roster only once they approve. Direct assignees cannot
// be asked.
func (w *Workflow) CreateRequest(ctx context.Context, taskID, candidateID, adminID string) (*assignment.Request, error) {
	unlock := w.store.Lock(taskID)
	defer unlock()

	t, err := w.store.Tasks().Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := w.users.Get(ctx, candidateID); err != nil {
		return nil, err
	}
	// A direct assignee never has a request.
	if t.HasDirectAssignee(candidateID) {
		return nil, cerr.NewError(cerr.AlreadyExists,
			fmt.Sprintf("user %q is already assigned to task %q", candidateID, taskID), nil)
	}
	pending, err := w.store.Requests().List(ctx, assignment.Filter{
		TaskID: taskID,
		UserID: candidateID,
		Status: assignment.StatusPending,
	})
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		return nil, cerr.NewError(cerr.AlreadyExists,
			fmt.Sprintf("user %q already has a pending request for task %q", candidateID, taskID), nil)
	}

	now := w.store.Now()
	r := &assignment.Request{
		ID:                ulid.Make().String(),
		TaskID:            taskID,
		AssignedByAdminID: adminID,
		AssignedToUserID:  candidateID,
		Status:            assignment.StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := w.store.Requests().Create(ctx, r); err != nil {
		return nil, err
	}
	w.metrics.RecordAssignmentRequest(metricCreated)
	slog.InfoContext(ctx, "assignment request created", "request_id", r.ID, "task_id", taskID, "user_id", candidateID)

	w.eventBus.PublishNew(eventbus.TypeAssignmentRequested, r.ID, map[string]string{
		"task_id": taskID,
		"user_id": candidateID,
	})
	return r, nil
}

// Outcome is the state right after a response was written.
type Outcome struct {
	Request  *assignment.Request
	Snapshot *task.Snapshot
}

// Respond applies the candidate's answer to a request. Approving an already
// approved request changes nothing.
func (w *Workflow) Respond(ctx context.Context, requestID, responderID string, action Action, reason string) (*Outcome, error) {
	r, err := w.store.Requests().Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r.AssignedToUserID != responderID {
		return nil, cerr.NewError(cerr.PermissionDenied, "only the requested user can respond", nil)
	}
	if action != ActionApprove && action != ActionReject {
		return nil, cerr.NewError(cerr.InvalidArgument, "invalid action", nil).
			AddViolation("action", "action.in", fmt.Sprintf("must be one of [%s %s]", ActionApprove, ActionReject))
	}
	clog.AddAttributes(ctx, map[string]any{"request_id": r.ID, "task_id": r.TaskID})

	unlock := w.store.Lock(r.TaskID)
	defer unlock()

	snap, err := w.store.LoadLocked(ctx, r.TaskID, task.RepairSourceRead)
	if err != nil {
		return nil, err
	}
	// The request may have changed while waiting for the lock.
	if r, err = w.store.Requests().Get(ctx, requestID); err != nil {
		return nil, err
	}

	var out *Outcome
	if action == ActionApprove {
		out, err = w.approve(ctx, snap, r)
	} else {
		out, err = w.reject(ctx, snap, r, reason)
	}
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "assignment request answered", "action", action, "task_status", out.Snapshot.Task.Status)

	w.eventBus.PublishNew(eventbus.TypeAssignmentResponded, r.ID, map[string]string{
		"task_id": r.TaskID,
		"user_id": r.AssignedToUserID,
		"status":  string(r.Status),
	})
	return out, nil
}

func (w *Workflow) approve(ctx context.Context, snap *task.Snapshot, r *assignment.Request) (*Outcome, error) {
	t := snap.Task
	if r.Status == assignment.StatusApproved && t.HasAssignee(r.AssignedToUserID) {
		return &Outcome{Request: r, Snapshot: snap}, nil
	}
	prev := t.Status
	if r.Status != assignment.StatusApproved {
		r.Approve(w.store.Now())
		if err := w.store.Requests().Update(ctx, r); err != nil {
			return nil, err
		}
		w.metrics.RecordAssignmentRequest(metricApproved)
	}
	t.AddAssignee(task.ViaRequest(r.AssignedToUserID, r.ID))
	next, err := w.store.SaveResolved(ctx, t, task.ReplaceRequest(snap.Requests, r), prev)
	if err != nil {
		return nil, err
	}
	return &Outcome{Request: r, Snapshot: next}, nil
}

func (w *Workflow) reject(ctx context.Context, snap *task.Snapshot, r *assignment.Request, reason string) (*Outcome, error) {
	t := snap.Task
	prev := t.Status
	r.Reject(reason, w.store.Now())
	if err := w.store.Requests().Update(ctx, r); err != nil {
		return nil, err
	}
	w.metrics.RecordAssignmentRequest(metricRejected)

	t.RemoveRequestAssignee(r.ID)
	reqs := task.ReplaceRequest(snap.Requests, r)
	t.Status = task.AfterRejectStatus(t, reqs)
	if err := w.store.Save(ctx, t, prev); err != nil {
		return nil, err
	}
	res := task.Resolve(t, reqs)
	// The reject rule decides the status of this write; reads re-resolve.
	res.Status = t.Status
	return &Outcome{Request: r, Snapshot: &task.Snapshot{Task: t, Requests: reqs, Resolution: res}}, nil
}
