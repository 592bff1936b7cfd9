package user

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/kazz187/taskboard/pkg/rpccodec"
)

const UserServiceName = "taskboard.v1.UserService"

const (
	UserServiceCreateUserProcedure = "/taskboard.v1.UserService/CreateUser"
	UserServiceGetUserProcedure    = "/taskboard.v1.UserService/GetUser"
	UserServiceListUsersProcedure  = "/taskboard.v1.UserService/ListUsers"
)

type UserServiceHandler interface {
	CreateUser(context.Context, *connect.Request[CreateUserRequest]) (*connect.Response[CreateUserResponse], error)
	GetUser(context.Context, *connect.Request[GetUserRequest]) (*connect.Response[GetUserResponse], error)
	ListUsers(context.Context, *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error)
}

func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{rpccodec.WithJSON()}, opts...)
	createUser := connect.NewUnaryHandler(UserServiceCreateUserProcedure, svc.CreateUser, opts...)
	getUser := connect.NewUnaryHandler(UserServiceGetUserProcedure, svc.GetUser, opts...)
	listUsers := connect.NewUnaryHandler(UserServiceListUsersProcedure, svc.ListUsers, opts...)
	return "/" + UserServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case UserServiceCreateUserProcedure:
			createUser.ServeHTTP(w, r)
		case UserServiceGetUserProcedure:
			getUser.ServeHTTP(w, r)
		case UserServiceListUsersProcedure:
			listUsers.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

type UserServiceClient interface {
	CreateUser(context.Context, *connect.Request[CreateUserRequest]) (*connect.Response[CreateUserResponse], error)
	GetUser(context.Context, *connect.Request[GetUserRequest]) (*connect.Response[GetUserResponse], error)
	ListUsers(context.Context, *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error)
}

type userServiceClient struct {
	createUser *connect.Client[CreateUserRequest, CreateUserResponse]
	getUser    *connect.Client[GetUserRequest, GetUserResponse]
	listUsers  *connect.Client[ListUsersRequest, ListUsersResponse]
}

func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) UserServiceClient {
	opts = append([]connect.ClientOption{rpccodec.WithJSON()}, opts...)
	return &userServiceClient{
		createUser: connect.NewClient[CreateUserRequest, CreateUserResponse](httpClient, baseURL+UserServiceCreateUserProcedure, opts...),
		getUser:    connect.NewClient[GetUserRequest, GetUserResponse](httpClient, baseURL+UserServiceGetUserProcedure, opts...),
		listUsers:  connect.NewClient[ListUsersRequest, ListUsersResponse](httpClient, baseURL+UserServiceListUsersProcedure, opts...),
	}
}

func (c *userServiceClient) CreateUser(ctx context.Context, req *connect.Request[CreateUserRequest]) (*connect.Response[CreateUserResponse], error) {
	return c.createUser.CallUnary(ctx, req)
}

func (c *userServiceClient) GetUser(ctx context.Context, req *connect.Request[GetUserRequest]) (*connect.Response[GetUserResponse], error) {
	return c.getUser.CallUnary(ctx, req)
}

func (c *userServiceClient) ListUsers(ctx context.Context, req *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}
