package approval

import (
	"context"

	"connectrpc.com/connect"

	"github.com/kazz187/taskboard/internal/assignment"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/pagination"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
)

var _ AssignmentServiceHandler = (*Server)(nil)

type Server struct {
	workflow   *Workflow
	store      *task.Store
	classifier *task.Classifier
	users      user.Repository
}

func NewServer(workflow *Workflow, store *task.Store, classifier *task.Classifier, users user.Repository) *Server {
	return &Server{
		workflow:   workflow,
		store:      store,
		classifier: classifier,
		users:      users,
	}
}

func (s *Server) CreateAssignmentRequest(ctx context.Context, req *connect.Request[CreateAssignmentRequestRequest]) (*connect.Response[CreateAssignmentRequestResponse], error) {
	admin, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	clog.AddAttribute(ctx, "task_id", req.Msg.TaskID)
	r, err := s.workflow.CreateRequest(ctx, req.Msg.TaskID, req.Msg.UserID, admin.UserID)
	if err != nil {
		return nil, err
	}
	// The new Pending request moves the task to Pending Approval.
	snap, err := s.store.Load(ctx, r.TaskID)
	if err != nil {
		return nil, err
	}
	views, err := task.Views(ctx, s.users, snap)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&CreateAssignmentRequestResponse{
		Request: s.requestView(ctx, r, snap.Task),
		Task:    views[0],
	}), nil
}

func (s *Server) RespondToAssignmentRequest(ctx context.Context, req *connect.Request[RespondToAssignmentRequestRequest]) (*connect.Response[RespondToAssignmentRequestResponse], error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.workflow.Respond(ctx, req.Msg.ID, actor.UserID, req.Msg.Action, req.Msg.Reason)
	if err != nil {
		return nil, err
	}
	views, err := task.Views(ctx, s.users, out.Snapshot)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&RespondToAssignmentRequestResponse{
		Request: s.requestView(ctx, out.Request, out.Snapshot.Task),
		Task:    views[0],
	}), nil
}

func (s *Server) CheckOverload(ctx context.Context, req *connect.Request[CheckOverloadRequest]) (*connect.Response[CheckOverloadResponse], error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	found, err := s.users.GetMany(ctx, req.Msg.UserIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range req.Msg.UserIDs {
		if _, ok := found[id]; !ok {
			return nil, cerr.NewError(cerr.NotFound, "user "+id+" not found", nil)
		}
	}
	split, err := s.classifier.Partition(ctx, req.Msg.UserIDs)
	if err != nil {
		return nil, err
	}
	res := &CheckOverloadResponse{
		Threshold:  s.classifier.Threshold(),
		Overloaded: make([]*OverloadedUser, 0, len(split.Overloaded)),
	}
	for _, id := range split.Overloaded {
		u := found[id]
		res.Overloaded = append(res.Overloaded, &OverloadedUser{
			UserID:             id,
			Name:               u.Name,
			Email:              u.Email,
			ProfileImageURL:    u.ProfileImageURL,
			ActiveHighPriority: split.Counts[id],
		})
	}
	return connect.NewResponse(res), nil
}

func (s *Server) ListPendingRequests(ctx context.Context, req *connect.Request[ListPendingRequestsRequest]) (*connect.Response[ListPendingRequestsResponse], error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	filter := assignment.Filter{Status: assignment.StatusPending, UserID: req.Msg.UserID}
	if !actor.Admin {
		if req.Msg.UserID != "" && req.Msg.UserID != actor.UserID {
			return nil, cerr.NewError(cerr.PermissionDenied, "members can only list their own requests", nil)
		}
		filter.UserID = actor.UserID
	}
	reqs, err := s.store.Requests().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	limit, offset := pagination.Normalize(req.Msg.Pagination)
	page := pagination.Page(reqs, limit, offset)

	titles := make(map[string]*task.Task)
	views := make([]*assignment.View, 0, len(page))
	for _, r := range page {
		t, ok := titles[r.TaskID]
		if !ok {
			t, err = s.store.Tasks().Get(ctx, r.TaskID)
			if err != nil && !cerr.IsCode(err, cerr.NotFound) {
				return nil, err
			}
			titles[r.TaskID] = t
		}
		views = append(views, s.requestView(ctx, r, t))
	}
	return connect.NewResponse(&ListPendingRequestsResponse{
		Requests:   views,
		Pagination: &pagination.Response{Total: len(reqs), Limit: limit, Offset: offset},
	}), nil
}

// requestView attaches the task title and candidate name. Lookup failures
// leave them empty.
func (s *Server) requestView(ctx context.Context, r *assignment.Request, t *task.Task) *assignment.View {
	v := assignment.ToView(r)
	if t != nil {
		v.TaskTitle = t.Title
	}
	if u, err := s.users.Get(ctx, r.AssignedToUserID); err == nil {
		v.AssignedToName = u.Name
	}
	return v
}
