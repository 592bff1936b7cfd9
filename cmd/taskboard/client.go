package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/kazz187/taskboard/internal/approval"
	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/event"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/pagination"
	"github.com/kazz187/taskboard/internal/reconcile"
	"github.com/kazz187/taskboard/internal/task"
)

// bearerTransport adds the token to every outgoing request.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.token != "" {
		r = r.Clone(r.Context())
		r.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.base.RoundTrip(r)
}

type client struct {
	baseURL     string
	httpClient  *http.Client
	tasks       task.TaskServiceClient
	assignments approval.AssignmentServiceClient
	events      event.EventServiceClient
}

func newClient(baseURL, token string) *client {
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := &http.Client{Transport: &bearerTransport{token: token, base: http.DefaultTransport}}
	return &client{
		baseURL:     baseURL,
		httpClient:  httpClient,
		tasks:       task.NewTaskServiceClient(httpClient, baseURL),
		assignments: approval.NewAssignmentServiceClient(httpClient, baseURL),
		events:      event.NewEventServiceClient(httpClient, baseURL),
	}
}

func runToken() error {
	tok, err := auth.NewIssuer(*tokenSecret, *tokenTTL).Issue(*tokenUser, *tokenRole)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

// parseItems reads checklist arguments; a "[x] " prefix marks an item done.
func parseItems(args []string) []task.ChecklistItemInput {
	items := make([]task.ChecklistItemInput, 0, len(args))
	for _, a := range args {
		if text, ok := strings.CutPrefix(a, "[x] "); ok {
			items = append(items, task.ChecklistItemInput{Text: text, Completed: true})
			continue
		}
		items = append(items, task.ChecklistItemInput{Text: strings.TrimPrefix(a, "[ ] ")})
	}
	return items
}

func (c *client) createTask(ctx context.Context) error {
	req := &task.CreateTaskRequest{
		Title:       *taskCreateTitle,
		Description: *taskCreateDescription,
		Priority:    task.Priority(*taskCreatePriority),
		AssignedTo:  *taskCreateAssign,
		Checklist:   parseItems(*taskCreateItems),
	}
	if *taskCreateDue != "" {
		due, err := time.ParseInLocation(time.DateOnly, *taskCreateDue, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --due: %w", err)
		}
		req.DueDate = &due
	}
	res, err := c.tasks.CreateTask(ctx, connect.NewRequest(req))
	if err != nil {
		return err
	}
	printTask(res.Msg.Task)
	for _, r := range res.Msg.Requests {
		fmt.Printf("  approval requested from %s (%s)\n", r.AssignedToUserID, r.ID)
	}
	return nil
}

func (c *client) listTasks(ctx context.Context) error {
	res, err := c.tasks.ListTasks(ctx, connect.NewRequest(&task.ListTasksRequest{
		Filter: &task.ListTasksFilter{
			Status:     task.Status(*taskListStatus),
			Priority:   task.Priority(*taskListPriority),
			AssigneeID: *taskListAssignee,
			Query:      *taskListQuery,
		},
		Sort:       &task.ListTasksSort{Field: task.SortField(*taskListSort), Desc: *taskListDesc},
		Pagination: &pagination.Request{Limit: *taskListLimit, Offset: *taskListOffset},
	}))
	if err != nil {
		return err
	}
	if len(res.Msg.Tasks) == 0 {
		fmt.Println("No tasks found")
	}
	for _, t := range res.Msg.Tasks {
		printTaskLine(t)
	}
	p := res.Msg.Pagination
	fmt.Printf("\n%d-%d of %d", min(p.Offset+1, p.Total), p.Offset+len(res.Msg.Tasks), p.Total)
	for _, st := range task.AllStatuses {
		fmt.Printf("  %s: %d", st, res.Msg.StatusCounts[st])
	}
	fmt.Println()
	return nil
}

func (c *client) showTask(ctx context.Context) error {
	res, err := c.tasks.GetTask(ctx, connect.NewRequest(&task.GetTaskRequest{ID: *taskShowID}))
	if err != nil {
		return err
	}
	printTask(res.Msg.Task)
	return nil
}

func (c *client) updateChecklist(ctx context.Context) error {
	res, err := c.tasks.UpdateTaskChecklist(ctx, connect.NewRequest(&task.UpdateTaskChecklistRequest{
		ID:        *taskChecklistID,
		Checklist: parseItems(*taskChecklistItems),
	}))
	if err != nil {
		return err
	}
	printTask(res.Msg.Task)
	return nil
}

func (c *client) updateStatus(ctx context.Context) error {
	res, err := c.tasks.UpdateTaskStatus(ctx, connect.NewRequest(&task.UpdateTaskStatusRequest{
		ID:     *taskStatusID,
		Status: task.Status(*taskStatusTarget),
	}))
	if err != nil {
		return err
	}
	printTask(res.Msg.Task)
	return nil
}

func (c *client) listRequests(ctx context.Context) error {
	res, err := c.assignments.ListPendingRequests(ctx, connect.NewRequest(&approval.ListPendingRequestsRequest{UserID: *requestListUser}))
	if err != nil {
		return err
	}
	if len(res.Msg.Requests) == 0 {
		fmt.Println("No pending requests")
	}
	for _, r := range res.Msg.Requests {
		printRequest(r)
	}
	return nil
}

func (c *client) createRequest(ctx context.Context) error {
	res, err := c.assignments.CreateAssignmentRequest(ctx, connect.NewRequest(&approval.CreateAssignmentRequestRequest{
		TaskID: *requestCreateTask,
		UserID: *requestCreateUser,
	}))
	if err != nil {
		return err
	}
	printRequest(res.Msg.Request)
	return nil
}

func (c *client) respond(ctx context.Context, id, action, reason string) error {
	res, err := c.assignments.RespondToAssignmentRequest(ctx, connect.NewRequest(&approval.RespondToAssignmentRequestRequest{
		ID:     id,
		Action: approval.Action(action),
		Reason: reason,
	}))
	if err != nil {
		return err
	}
	printRequest(res.Msg.Request)
	printTask(res.Msg.Task)
	return nil
}

func (c *client) checkOverload(ctx context.Context) error {
	res, err := c.assignments.CheckOverload(ctx, connect.NewRequest(&approval.CheckOverloadRequest{UserIDs: *overloadUsers}))
	if err != nil {
		return err
	}
	if len(res.Msg.Overloaded) == 0 {
		fmt.Printf("Nobody is overloaded (threshold %d)\n", res.Msg.Threshold)
		return nil
	}
	for _, u := range res.Msg.Overloaded {
		fmt.Printf("%s %s  %d active high priority tasks (threshold %d)\n",
			warnColor.Sprint("overloaded"), displayName(u.UserID, u.Name), u.ActiveHighPriority, res.Msg.Threshold)
	}
	return nil
}

func (c *client) reconcile(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/admin/reconcile", nil)
	if err != nil {
		return err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		var body struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil || body.Message == "" {
			return fmt.Errorf("reconcile failed: %s", res.Status)
		}
		return fmt.Errorf("reconcile failed: %s: %s", body.Code, body.Message)
	}
	var rep reconcile.Report
	if err := json.NewDecoder(res.Body).Decode(&rep); err != nil {
		return fmt.Errorf("failed to decode reconcile report: %w", err)
	}
	fmt.Printf("scanned %d, repaired %d, failed %d in %s\n", rep.Scanned, rep.Repaired, rep.Failed, rep.Duration)
	return nil
}

func (c *client) watch(ctx context.Context) error {
	types := make([]eventbus.Type, len(*watchTypes))
	for i, t := range *watchTypes {
		types[i] = eventbus.Type(t)
	}
	stream, err := c.events.SubscribeEvents(ctx, connect.NewRequest(&event.SubscribeEventsRequest{
		Types:      types,
		ResourceID: *watchResource,
	}))
	if err != nil {
		return err
	}
	defer stream.Close()
	for stream.Receive() {
		printEvent(stream.Msg())
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
