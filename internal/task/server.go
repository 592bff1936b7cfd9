package task

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"connectrpc.com/connect"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/assignment"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/pagination"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
)

var _ TaskServiceHandler = (*Server)(nil)

// RequestCreator opens approval requests for overloaded candidates.
type RequestCreator interface {
	CreateRequest(ctx context.Context, taskID, candidateID, adminID string) (*assignment.Request, error)
}

type Server struct {
	store      *Store
	classifier *Classifier
	users      user.Repository
	requests   RequestCreator
	eventBus   *eventbus.Bus
}

func NewServer(store *Store, classifier *Classifier, users user.Repository, requests RequestCreator, eventBus *eventbus.Bus) *Server {
	return &Server{
		store:      store,
		classifier: classifier,
		users:      users,
		requests:   requests,
		eventBus:   eventBus,
	}
}

func (s *Server) CreateTask(ctx context.Context, req *connect.Request[CreateTaskRequest]) (*connect.Response[CreateTaskResponse], error) {
	admin, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.requireUsers(ctx, req.Msg.AssignedTo, "assigned_to"); err != nil {
		return nil, err
	}
	split, err := s.classifier.Partition(ctx, req.Msg.AssignedTo)
	if err != nil {
		return nil, err
	}

	now := s.store.Now()
	t := &Task{
		ID:          ulid.Make().String(),
		Title:       req.Msg.Title,
		Description: req.Msg.Description,
		Priority:    req.Msg.Priority,
		DueDate:     req.Msg.DueDate,
		Checklist:   checklistFromInput(req.Msg.Checklist),
		CreatedBy:   admin.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, uid := range split.Direct {
		t.AddAssignee(Direct(uid))
	}
	t.Progress = Progress(t.Checklist)
	t.Status = StatusForProgress(t.Progress)
	if len(split.Overloaded) > 0 {
		t.Status = StatusPendingApproval
	}
	clog.AddAttribute(ctx, "task_id", t.ID)
	if err := s.store.Tasks().Create(ctx, t); err != nil {
		return nil, err
	}

	created := make([]*assignment.View, 0, len(split.Overloaded))
	for _, uid := range split.Overloaded {
		r, err := s.requests.CreateRequest(ctx, t.ID, uid, admin.UserID)
		if err != nil {
			// The task exists already; a later read resolves whatever was
			// created before the failure.
			return nil, err
		}
		created = append(created, assignment.ToView(r))
	}
	slog.InfoContext(ctx, "task created", "task_id", t.ID, "direct", len(split.Direct), "overloaded", len(split.Overloaded))

	s.eventBus.PublishNew(eventbus.TypeTaskCreated, t.ID, map[string]string{"created_by": t.CreatedBy})

	snap, err := s.store.Load(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, snap)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&CreateTaskResponse{Task: views[0], Requests: created}), nil
}

func (s *Server) GetTask(ctx context.Context, req *connect.Request[GetTaskRequest]) (*connect.Response[GetTaskResponse], error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := s.store.Load(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, snap) {
		return nil, cerr.NewError(cerr.PermissionDenied, "task is not visible to this user", nil)
	}
	views, err := s.views(ctx, snap)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GetTaskResponse{Task: views[0]}), nil
}

func (s *Server) ListTasks(ctx context.Context, req *connect.Request[ListTasksRequest]) (*connect.Response[ListTasksResponse], error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	filter, err := s.visibleFilter(ctx, actor)
	if err != nil {
		return nil, err
	}
	if f := req.Msg.Filter; f != nil {
		filter.Priority = f.Priority
		filter.AssigneeID = f.AssigneeID
		filter.CreatedBy = f.CreatedBy
		filter.Query = f.Query
		filter.DueBefore = f.DueBefore
	}
	// Counts cover every status; the status filter only narrows the page.
	counts, err := s.store.Tasks().CountByStatus(ctx, filter)
	if err != nil {
		return nil, err
	}
	if f := req.Msg.Filter; f != nil {
		filter.Status = f.Status
	}
	var sort Sort
	if req.Msg.Sort != nil {
		sort = Sort{Field: req.Msg.Sort.Field, Desc: req.Msg.Sort.Desc}
	}
	limit, offset := pagination.Normalize(req.Msg.Pagination)
	tasks, total, err := s.store.Tasks().List(ctx, filter, sort, limit, offset)
	if err != nil {
		return nil, err
	}
	snaps, err := s.store.LoadMany(ctx, tasks)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, snaps...)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&ListTasksResponse{
		Tasks:        views,
		Pagination:   &pagination.Response{Total: total, Limit: limit, Offset: offset},
		StatusCounts: fillStatuses(counts),
	}), nil
}

func (s *Server) UpdateTask(ctx context.Context, req *connect.Request[UpdateTaskRequest]) (*connect.Response[UpdateTaskResponse], error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	clog.AddAttribute(ctx, "task_id", req.Msg.ID)
	if req.Msg.AssignedTo != nil {
		if err := s.requireUsers(ctx, *req.Msg.AssignedTo, "assigned_to"); err != nil {
			return nil, err
		}
	}

	unlock := s.store.Lock(req.Msg.ID)
	defer unlock()
	snap, err := s.store.LoadLocked(ctx, req.Msg.ID, RepairSourceRead)
	if err != nil {
		return nil, err
	}
	t := snap.Task
	prev := t.Status
	if req.Msg.Title != nil {
		t.Title = *req.Msg.Title
	}
	if req.Msg.Description != nil {
		t.Description = *req.Msg.Description
	}
	if req.Msg.Priority != nil {
		t.Priority = *req.Msg.Priority
	}
	if req.Msg.ClearDue {
		t.DueDate = nil
	} else if req.Msg.DueDate != nil {
		t.DueDate = req.Msg.DueDate
	}
	if req.Msg.AssignedTo != nil && replaceRoster(t, *req.Msg.AssignedTo) {
		t.Status = rosterChangedStatus(t, snap.Requests)
	}
	snap, err = s.store.SaveResolved(ctx, t, snap.Requests, prev)
	if err != nil {
		return nil, err
	}

	s.eventBus.PublishNew(eventbus.TypeTaskUpdated, t.ID, nil)

	views, err := s.views(ctx, snap)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&UpdateTaskResponse{Task: views[0]}), nil
}

// replaceRoster sets the roster to ids. Existing entries keep their
// provenance; newcomers are direct.
func replaceRoster(t *Task, ids []string) bool {
	next := make([]Assignee, 0, len(ids))
	for _, uid := range ids {
		i := slices.IndexFunc(t.AssignedTo, func(a Assignee) bool { return a.UserID == uid })
		if i >= 0 {
			next = append(next, t.AssignedTo[i])
		} else {
			next = append(next, Direct(uid))
		}
	}
	changed := !slices.Equal(next, t.AssignedTo)
	t.AssignedTo = next
	return changed
}

// rosterChangedStatus re-derives the status after an admin edits the
// roster: request outcomes first, then the checklist when nothing is
// pending.
func rosterChangedStatus(t *Task, reqs []*assignment.Request) Status {
	if len(reqs) == 0 {
		return StatusForProgress(t.Progress)
	}
	st := AfterRejectStatus(t, reqs)
	if st == StatusPending {
		return StatusForProgress(t.Progress)
	}
	return st
}

func (s *Server) DeleteTask(ctx context.Context, req *connect.Request[DeleteTaskRequest]) (*connect.Response[DeleteTaskResponse], error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	unlock := s.store.Lock(req.Msg.ID)
	defer unlock()
	if err := s.store.Tasks().Delete(ctx, req.Msg.ID); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "task deleted", "task_id", req.Msg.ID)

	s.eventBus.PublishNew(eventbus.TypeTaskDeleted, req.Msg.ID, nil)

	return connect.NewResponse(&DeleteTaskResponse{}), nil
}

func (s *Server) UpdateTaskStatus(ctx context.Context, req *connect.Request[UpdateTaskStatusRequest]) (*connect.Response[UpdateTaskStatusResponse], error) {
	snap, err := s.editProgress(ctx, req.Msg.ID, func(t *Task) error {
		return t.SetStatus(req.Msg.Status)
	})
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, snap)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&UpdateTaskStatusResponse{Task: views[0]}), nil
}

func (s *Server) UpdateTaskChecklist(ctx context.Context, req *connect.Request[UpdateTaskChecklistRequest]) (*connect.Response[UpdateTaskChecklistResponse], error) {
	snap, err := s.editProgress(ctx, req.Msg.ID, func(t *Task) error {
		return t.ReplaceChecklist(checklistFromInput(req.Msg.Checklist))
	})
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, snap)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&UpdateTaskChecklistResponse{Task: views[0]}), nil
}

// editProgress runs edit on the locked task when the caller is an admin or
// on the roster, then saves the resolved result.
func (s *Server) editProgress(ctx context.Context, taskID string, edit func(*Task) error) (*Snapshot, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	clog.AddAttribute(ctx, "task_id", taskID)
	unlock := s.store.Lock(taskID)
	defer unlock()
	snap, err := s.store.LoadLocked(ctx, taskID, RepairSourceRead)
	if err != nil {
		return nil, err
	}
	t := snap.Task
	if !actor.Admin && !t.HasAssignee(actor.UserID) {
		return nil, cerr.NewError(cerr.PermissionDenied, "only admins and assignees can update task progress", nil)
	}
	prev := t.Status
	if err := edit(t); err != nil {
		return nil, err
	}
	snap, err = s.store.SaveResolved(ctx, t, snap.Requests, prev)
	if err != nil {
		return nil, err
	}
	s.eventBus.PublishNew(eventbus.TypeTaskUpdated, t.ID, map[string]string{"progress": strconv.Itoa(t.Progress)})
	return snap, nil
}

func (s *Server) GetTaskSummary(ctx context.Context, _ *connect.Request[GetTaskSummaryRequest]) (*connect.Response[GetTaskSummaryResponse], error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	filter, err := s.visibleFilter(ctx, actor)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.Tasks().CountByStatus(ctx, filter)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return connect.NewResponse(&GetTaskSummaryResponse{Total: total, ByStatus: fillStatuses(counts)}), nil
}

// visibleFilter limits members to tasks they are assigned to or hold a
// request for. Admins see everything.
func (s *Server) visibleFilter(ctx context.Context, actor *auth.Actor) (Filter, error) {
	if actor.Admin {
		return Filter{}, nil
	}
	reqs, err := s.store.Requests().List(ctx, assignment.Filter{UserID: actor.UserID})
	if err != nil {
		return Filter{}, err
	}
	v := &Visibility{UserID: actor.UserID}
	for _, r := range reqs {
		if !slices.Contains(v.TaskIDs, r.TaskID) {
			v.TaskIDs = append(v.TaskIDs, r.TaskID)
		}
	}
	return Filter{Visible: v}, nil
}

func canView(actor *auth.Actor, snap *Snapshot) bool {
	if actor.Admin || snap.Task.HasAssignee(actor.UserID) {
		return true
	}
	return slices.ContainsFunc(snap.Requests, func(r *assignment.Request) bool {
		return r.AssignedToUserID == actor.UserID
	})
}

// requireUsers fails with NotFound naming the first unknown id.
func (s *Server) requireUsers(ctx context.Context, ids []string, field string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.users.GetMany(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return cerr.NewError(cerr.NotFound, fmt.Sprintf("user %q in %s not found", id, field), nil)
		}
	}
	return nil
}

func (s *Server) views(ctx context.Context, snaps ...*Snapshot) ([]*TaskView, error) {
	return Views(ctx, s.users, snaps...)
}

// Views renders snapshots with the display attributes of every listed
// assignee.
func Views(ctx context.Context, users user.Repository, snaps ...*Snapshot) ([]*TaskView, error) {
	var ids []string
	for _, snap := range snaps {
		for _, a := range snap.Resolution.Assignees {
			ids = append(ids, a.UserID)
		}
	}
	found, err := users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]*TaskView, len(snaps))
	for i, snap := range snaps {
		views[i] = toView(snap, found)
	}
	return views, nil
}

func fillStatuses(counts map[Status]int) map[Status]int {
	out := make(map[Status]int, len(AllStatuses))
	for _, st := range AllStatuses {
		out[st] = counts[st]
	}
	return out
}
