package internal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/approval"
	assignmentrepo "github.com/kazz187/taskboard/internal/assignment/repositoryimpl"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/event"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/metrics"
	"github.com/kazz187/taskboard/internal/reconcile"
	"github.com/kazz187/taskboard/internal/task"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/internal/user"
	userrepo "github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/storage"
)

type testServer struct {
	url    string
	issuer *auth.Issuer
	tasks  task.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	users := userrepo.NewYAMLRepository(s)
	tasks := taskrepo.NewYAMLRepository(s)
	requests := assignmentrepo.NewYAMLRepository(s)

	for id, role := range map[string]user.Role{"admin": user.RoleAdmin, "busy": user.RoleMember, "light": user.RoleMember} {
		require.NoError(t, users.Create(ctx, &user.User{ID: id, Name: strings.ToUpper(id), Role: role, CreatedAt: time.Now()}))
	}

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewPrometheus(reg, "")
	require.NoError(t, err)
	bus := eventbus.New(collector)
	store := task.NewStore(tasks, requests, task.NewLocker(), bus, collector)
	classifier := task.NewClassifier(tasks, task.DefaultOverloadThreshold, collector)
	workflow := approval.NewWorkflow(store, users, bus, collector)
	issuer := auth.NewIssuer("test-secret", time.Hour)

	srv := NewServer(
		&config.Env{},
		auth.NewMiddleware(issuer, user.NewActorLoader(users), ExemptPaths()...),
		users,
		reconcile.NewReconciler(store, 2, collector),
		reg,
		task.NewServer(store, classifier, users, workflow, bus),
		approval.NewServer(workflow, store, classifier, users),
		user.NewServer(users),
		event.NewServer(bus),
	)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)
	return &testServer{url: hs.URL, issuer: issuer, tasks: tasks}
}

type bearer struct {
	token string
}

func (b *bearer) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("Authorization", "Bearer "+b.token)
	return http.DefaultTransport.RoundTrip(r)
}

func (ts *testServer) httpClient(t *testing.T, userID string) *http.Client {
	t.Helper()
	tok, err := ts.issuer.Issue(userID, "")
	require.NoError(t, err)
	return &http.Client{Transport: &bearer{token: tok}}
}

func TestEndToEndApprovalFlow(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)
	for _, id := range []string{"h1", "h2"} {
		require.NoError(t, ts.tasks.Create(ctx, &task.Task{
			ID:         id,
			Title:      id,
			Priority:   task.PriorityHigh,
			Status:     task.StatusInProgress,
			AssignedTo: []task.Assignee{task.Direct("busy")},
			CreatedAt:  time.Now(),
		}))
	}

	adminTasks := task.NewTaskServiceClient(ts.httpClient(t, "admin"), ts.url)
	created, err := adminTasks.CreateTask(ctx, connect.NewRequest(&task.CreateTaskRequest{
		Title:      "quarterly report",
		Priority:   task.PriorityHigh,
		AssignedTo: []string{"busy", "light"},
		Checklist:  []task.ChecklistItemInput{{Text: "draft", Completed: true}, {Text: "review"}},
	}))
	require.NoError(t, err)
	tv := created.Msg.Task
	assert.Equal(t, task.StatusPendingApproval, tv.Status)
	assert.Equal(t, 50, tv.Progress)
	require.Len(t, created.Msg.Requests, 1)
	reqID := created.Msg.Requests[0].ID

	busyAssignments := approval.NewAssignmentServiceClient(ts.httpClient(t, "busy"), ts.url)
	pending, err := busyAssignments.ListPendingRequests(ctx, connect.NewRequest(&approval.ListPendingRequestsRequest{}))
	require.NoError(t, err)
	require.Len(t, pending.Msg.Requests, 1)
	assert.Equal(t, "quarterly report", pending.Msg.Requests[0].TaskTitle)

	lightAssignments := approval.NewAssignmentServiceClient(ts.httpClient(t, "light"), ts.url)
	_, err = lightAssignments.RespondToAssignmentRequest(ctx, connect.NewRequest(&approval.RespondToAssignmentRequestRequest{ID: reqID, Action: approval.ActionApprove}))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	resp, err := busyAssignments.RespondToAssignmentRequest(ctx, connect.NewRequest(&approval.RespondToAssignmentRequestRequest{ID: reqID, Action: approval.ActionApprove}))
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, resp.Msg.Task.Status)

	busyTasks := task.NewTaskServiceClient(ts.httpClient(t, "busy"), ts.url)
	got, err := busyTasks.GetTask(ctx, connect.NewRequest(&task.GetTaskRequest{ID: tv.ID}))
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, got.Msg.Task.Status)
	require.Len(t, got.Msg.Task.Assignees, 2)
	assert.Equal(t, "LIGHT", got.Msg.Task.Assignees[0].Name)
	assert.Equal(t, task.SourceRequest, got.Msg.Task.Assignees[1].Source)

	done, err := busyTasks.UpdateTaskStatus(ctx, connect.NewRequest(&task.UpdateTaskStatusRequest{ID: tv.ID, Status: task.StatusCompleted}))
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, done.Msg.Task.Status)
	assert.Equal(t, 100, done.Msg.Task.Progress)
}

func TestEndToEndErrors(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t)

	anon := task.NewTaskServiceClient(http.DefaultClient, ts.url)
	_, err := anon.ListTasks(ctx, connect.NewRequest(&task.ListTasksRequest{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	admin := task.NewTaskServiceClient(ts.httpClient(t, "admin"), ts.url)
	_, err = admin.CreateTask(ctx, connect.NewRequest(&task.CreateTaskRequest{Title: "x", Priority: "Urgent"}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = admin.CreateTask(ctx, connect.NewRequest(&task.CreateTaskRequest{Title: "x", Priority: task.PriorityLow, AssignedTo: []string{"ghost"}}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	member := task.NewTaskServiceClient(ts.httpClient(t, "light"), ts.url)
	_, err = member.CreateTask(ctx, connect.NewRequest(&task.CreateTaskRequest{Title: "x", Priority: task.PriorityLow}))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
}

func TestEndToEndRESTAndHealth(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Get(ts.url + "/health")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = ts.httpClient(t, "light").Get(ts.url + "/api/me")
	require.NoError(t, err)
	var me user.UserView
	require.NoError(t, json.NewDecoder(res.Body).Decode(&me))
	res.Body.Close()
	assert.Equal(t, "light", me.ID)
	assert.Equal(t, user.RoleMember, me.Role)

	res, err = ts.httpClient(t, "light").Post(ts.url+"/api/admin/reconcile", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, err = ts.httpClient(t, "admin").Post(ts.url+"/api/admin/reconcile", "application/json", nil)
	require.NoError(t, err)
	var rep reconcile.Report
	require.NoError(t, json.NewDecoder(res.Body).Decode(&rep))
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Zero(t, rep.Repaired)

	res, err = http.Get(ts.url + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "taskboard_reconcile_runs_total 1")
}

func TestEndToEndEventStream(t *testing.T) {
	ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := event.NewEventServiceClient(ts.httpClient(t, "light"), ts.url)
	stream, err := events.SubscribeEvents(ctx, connect.NewRequest(&event.SubscribeEventsRequest{
		Types: []eventbus.Type{eventbus.TypeTaskCreated},
	}))
	require.NoError(t, err)
	defer stream.Close()

	admin := task.NewTaskServiceClient(ts.httpClient(t, "admin"), ts.url)
	// The subscription is registered once the handler runs; retry until the
	// event arrives.
	received := make(chan *eventbus.Event, 1)
	go func() {
		if stream.Receive() {
			received <- stream.Msg()
		}
	}()
	for {
		_, err := admin.CreateTask(ctx, connect.NewRequest(&task.CreateTaskRequest{Title: "watched", Priority: task.PriorityLow}))
		require.NoError(t, err)
		select {
		case ev := <-received:
			assert.Equal(t, eventbus.TypeTaskCreated, ev.Type)
			return
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
			t.Fatal("no event received")
		}
	}
}
