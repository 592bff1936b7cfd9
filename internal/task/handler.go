package task

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/kazz187/taskboard/pkg/rpccodec"
)

const TaskServiceName = "taskboard.v1.TaskService"

const (
	TaskServiceCreateTaskProcedure          = "/taskboard.v1.TaskService/CreateTask"
	TaskServiceGetTaskProcedure             = "/taskboard.v1.TaskService/GetTask"
	TaskServiceListTasksProcedure           = "/taskboard.v1.TaskService/ListTasks"
	TaskServiceUpdateTaskProcedure          = "/taskboard.v1.TaskService/UpdateTask"
	TaskServiceDeleteTaskProcedure          = "/taskboard.v1.TaskService/DeleteTask"
	TaskServiceUpdateTaskStatusProcedure    = "/taskboard.v1.TaskService/UpdateTaskStatus"
	TaskServiceUpdateTaskChecklistProcedure = "/taskboard.v1.TaskService/UpdateTaskChecklist"
	TaskServiceGetTaskSummaryProcedure      = "/taskboard.v1.TaskService/GetTaskSummary"
)

type TaskServiceHandler interface {
	CreateTask(context.Context, *connect.Request[CreateTaskRequest]) (*connect.Response[CreateTaskResponse], error)
	GetTask(context.Context, *connect.Request[GetTaskRequest]) (*connect.Response[GetTaskResponse], error)
	ListTasks(context.Context, *connect.Request[ListTasksRequest]) (*connect.Response[ListTasksResponse], error)
	UpdateTask(context.Context, *connect.Request[UpdateTaskRequest]) (*connect.Response[UpdateTaskResponse], error)
	DeleteTask(context.Context, *connect.Request[DeleteTaskRequest]) (*connect.Response[DeleteTaskResponse], error)
	UpdateTaskStatus(context.Context, *connect.Request[UpdateTaskStatusRequest]) (*connect.Response[UpdateTaskStatusResponse], error)
	UpdateTaskChecklist(context.Context, *connect.Request[UpdateTaskChecklistRequest]) (*connect.Response[UpdateTaskChecklistResponse], error)
	GetTaskSummary(context.Context, *connect.Request[GetTaskSummaryRequest]) (*connect.Response[GetTaskSummaryResponse], error)
}

func NewTaskServiceHandler(svc TaskServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{rpccodec.WithJSON()}, opts...)
	routes := map[string]http.Handler{
		TaskServiceCreateTaskProcedure:          connect.NewUnaryHandler(TaskServiceCreateTaskProcedure, svc.CreateTask, opts...),
		TaskServiceGetTaskProcedure:             connect.NewUnaryHandler(TaskServiceGetTaskProcedure, svc.GetTask, opts...),
		TaskServiceListTasksProcedure:           connect.NewUnaryHandler(TaskServiceListTasksProcedure, svc.ListTasks, opts...),
		TaskServiceUpdateTaskProcedure:          connect.NewUnaryHandler(TaskServiceUpdateTaskProcedure, svc.UpdateTask, opts...),
		TaskServiceDeleteTaskProcedure:          connect.NewUnaryHandler(TaskServiceDeleteTaskProcedure, svc.DeleteTask, opts...),
		TaskServiceUpdateTaskStatusProcedure:    connect.NewUnaryHandler(TaskServiceUpdateTaskStatusProcedure, svc.UpdateTaskStatus, opts...),
		TaskServiceUpdateTaskChecklistProcedure: connect.NewUnaryHandler(TaskServiceUpdateTaskChecklistProcedure, svc.UpdateTaskChecklist, opts...),
		TaskServiceGetTaskSummaryProcedure:      connect.NewUnaryHandler(TaskServiceGetTaskSummaryProcedure, svc.GetTaskSummary, opts...),
	}
	return "/" + TaskServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

type TaskServiceClient interface {
	TaskServiceHandler
}

type taskServiceClient struct {
	createTask          *connect.Client[CreateTaskRequest, CreateTaskResponse]
	getTask             *connect.Client[GetTaskRequest, GetTaskResponse]
	listTasks           *connect.Client[ListTasksRequest, ListTasksResponse]
	updateTask          *connect.Client[UpdateTaskRequest, UpdateTaskResponse]
	deleteTask          *connect.Client[DeleteTaskRequest, DeleteTaskResponse]
	updateTaskStatus    *connect.Client[UpdateTaskStatusRequest, UpdateTaskStatusResponse]
	updateTaskChecklist *connect.Client[UpdateTaskChecklistRequest, UpdateTaskChecklistResponse]
	getTaskSummary      *connect.Client[GetTaskSummaryRequest, GetTaskSummaryResponse]
}

func NewTaskServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) TaskServiceClient {
	opts = append([]connect.ClientOption{rpccodec.WithJSON()}, opts...)
	return &taskServiceClient{
		createTask:          connect.NewClient[CreateTaskRequest, CreateTaskResponse](httpClient, baseURL+TaskServiceCreateTaskProcedure, opts...),
		getTask:             connect.NewClient[GetTaskRequest, GetTaskResponse](httpClient, baseURL+TaskServiceGetTaskProcedure, opts...),
		listTasks:           connect.NewClient[ListTasksRequest, ListTasksResponse](httpClient, baseURL+TaskServiceListTasksProcedure, opts...),
		updateTask:          connect.NewClient[UpdateTaskRequest, UpdateTaskResponse](httpClient, baseURL+TaskServiceUpdateTaskProcedure, opts...),
		deleteTask:          connect.NewClient[DeleteTaskRequest, DeleteTaskResponse](httpClient, baseURL+TaskServiceDeleteTaskProcedure, opts...),
		updateTaskStatus:    connect.NewClient[UpdateTaskStatusRequest, UpdateTaskStatusResponse](httpClient, baseURL+TaskServiceUpdateTaskStatusProcedure, opts...),
		updateTaskChecklist: connect.NewClient[UpdateTaskChecklistRequest, UpdateTaskChecklistResponse](httpClient, baseURL+TaskServiceUpdateTaskChecklistProcedure, opts...),
		getTaskSummary:      connect.NewClient[GetTaskSummaryRequest, GetTaskSummaryResponse](httpClient, baseURL+TaskServiceGetTaskSummaryProcedure, opts...),
	}
}

func (c *taskServiceClient) CreateTask(ctx context.Context, req *connect.Request[CreateTaskRequest]) (*connect.Response[CreateTaskResponse], error) {
	return c.createTask.CallUnary(ctx, req)
}

func (c *taskServiceClient) GetTask(ctx context.Context, req *connect.Request[GetTaskRequest]) (*connect.Response[GetTaskResponse], error) {
	return c.getTask.CallUnary(ctx, req)
}

func (c *taskServiceClient) ListTasks(ctx context.Context, req *connect.Request[ListTasksRequest]) (*connect.Response[ListTasksResponse], error) {
	return c.listTasks.CallUnary(ctx, req)
}

func (c *taskServiceClient) UpdateTask(ctx context.Context, req *connect.Request[UpdateTaskRequest]) (*connect.Response[UpdateTaskResponse], error) {
	return c.updateTask.CallUnary(ctx, req)
}

func (c *taskServiceClient) DeleteTask(ctx context.Context, req *connect.Request[DeleteTaskRequest]) (*connect.Response[DeleteTaskResponse], error) {
	return c.deleteTask.CallUnary(ctx, req)
}

func (c *taskServiceClient) UpdateTaskStatus(ctx context.Context, req *connect.Request[UpdateTaskStatusRequest]) (*connect.Response[UpdateTaskStatusResponse], error) {
	return c.updateTaskStatus.CallUnary(ctx, req)
}

func (c *taskServiceClient) UpdateTaskChecklist(ctx context.Context, req *connect.Request[UpdateTaskChecklistRequest]) (*connect.Response[UpdateTaskChecklistResponse], error) {
	return c.updateTaskChecklist.CallUnary(ctx, req)
}

func (c *taskServiceClient) GetTaskSummary(ctx context.Context, req *connect.Request[GetTaskSummaryRequest]) (*connect.Response[GetTaskSummaryResponse], error) {
	return c.getTaskSummary.CallUnary(ctx, req)
}
