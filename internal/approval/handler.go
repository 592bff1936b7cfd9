package approval

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/kazz187/taskboard/pkg/rpccodec"
)

const AssignmentServiceName = "taskboard.v1.AssignmentService"

const (
	AssignmentServiceCreateAssignmentRequestProcedure    = "/taskboard.v1.AssignmentService/CreateAssignmentRequest"
	AssignmentServiceRespondToAssignmentRequestProcedure = "/taskboard.v1.AssignmentService/RespondToAssignmentRequest"
	AssignmentServiceCheckOverloadProcedure              = "/taskboard.v1.AssignmentService/CheckOverload"
	AssignmentServiceListPendingRequestsProcedure        = "/taskboard.v1.AssignmentService/ListPendingRequests"
)

type AssignmentServiceHandler interface {
	CreateAssignmentRequest(context.Context, *connect.Request[CreateAssignmentRequestRequest]) (*connect.Response[CreateAssignmentRequestResponse], error)
	RespondToAssignmentRequest(context.Context, *connect.Request[RespondToAssignmentRequestRequest]) (*connect.Response[RespondToAssignmentRequestResponse], error)
	CheckOverload(context.Context, *connect.Request[CheckOverloadRequest]) (*connect.Response[CheckOverloadResponse], error)
	ListPendingRequests(context.Context, *connect.Request[ListPendingRequestsRequest]) (*connect.Response[ListPendingRequestsResponse], error)
}

func NewAssignmentServiceHandler(svc AssignmentServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{rpccodec.WithJSON()}, opts...)
	createHandler := connect.NewUnaryHandler(AssignmentServiceCreateAssignmentRequestProcedure, svc.CreateAssignmentRequest, opts...)
	respondHandler := connect.NewUnaryHandler(AssignmentServiceRespondToAssignmentRequestProcedure, svc.RespondToAssignmentRequest, opts...)
	checkOverloadHandler := connect.NewUnaryHandler(AssignmentServiceCheckOverloadProcedure, svc.CheckOverload, opts...)
	listPendingHandler := connect.NewUnaryHandler(AssignmentServiceListPendingRequestsProcedure, svc.ListPendingRequests, opts...)
	return "/" + AssignmentServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AssignmentServiceCreateAssignmentRequestProcedure:
			createHandler.ServeHTTP(w, r)
		case AssignmentServiceRespondToAssignmentRequestProcedure:
			respondHandler.ServeHTTP(w, r)
		case AssignmentServiceCheckOverloadProcedure:
			checkOverloadHandler.ServeHTTP(w, r)
		case AssignmentServiceListPendingRequestsProcedure:
			listPendingHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

type AssignmentServiceClient interface {
	AssignmentServiceHandler
}

type assignmentServiceClient struct {
	createAssignmentRequest    *connect.Client[CreateAssignmentRequestRequest, CreateAssignmentRequestResponse]
	respondToAssignmentRequest *connect.Client[RespondToAssignmentRequestRequest, RespondToAssignmentRequestResponse]
	checkOverload              *connect.Client[CheckOverloadRequest, CheckOverloadResponse]
	listPendingRequests        *connect.Client[ListPendingRequestsRequest, ListPendingRequestsResponse]
}

func NewAssignmentServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AssignmentServiceClient {
	opts = append([]connect.ClientOption{rpccodec.WithJSON()}, opts...)
	return &assignmentServiceClient{
		createAssignmentRequest:    connect.NewClient[CreateAssignmentRequestRequest, CreateAssignmentRequestResponse](httpClient, baseURL+AssignmentServiceCreateAssignmentRequestProcedure, opts...),
		respondToAssignmentRequest: connect.NewClient[RespondToAssignmentRequestRequest, RespondToAssignmentRequestResponse](httpClient, baseURL+AssignmentServiceRespondToAssignmentRequestProcedure, opts...),
		checkOverload:              connect.NewClient[CheckOverloadRequest, CheckOverloadResponse](httpClient, baseURL+AssignmentServiceCheckOverloadProcedure, opts...),
		listPendingRequests:        connect.NewClient[ListPendingRequestsRequest, ListPendingRequestsResponse](httpClient, baseURL+AssignmentServiceListPendingRequestsProcedure, opts...),
	}
}

func (c *assignmentServiceClient) CreateAssignmentRequest(ctx context.Context, req *connect.Request[CreateAssignmentRequestRequest]) (*connect.Response[CreateAssignmentRequestResponse], error) {
	return c.createAssignmentRequest.CallUnary(ctx, req)
}

func (c *assignmentServiceClient) RespondToAssignmentRequest(ctx context.Context, req *connect.Request[RespondToAssignmentRequestRequest]) (*connect.Response[RespondToAssignmentRequestResponse], error) {
	return c.respondToAssignmentRequest.CallUnary(ctx, req)
}

func (c *assignmentServiceClient) CheckOverload(ctx context.Context, req *connect.Request[CheckOverloadRequest]) (*connect.Response[CheckOverloadResponse], error) {
	return c.checkOverload.CallUnary(ctx, req)
}

func (c *assignmentServiceClient) ListPendingRequests(ctx context.Context, req *connect.Request[ListPendingRequestsRequest]) (*connect.Response[ListPendingRequestsResponse], error) {
	return c.listPendingRequests.CallUnary(ctx, req)
}
