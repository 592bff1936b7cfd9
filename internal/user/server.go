package user

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/oklog/ulid/v2"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/pagination"
)

var _ UserServiceHandler = (*Server)(nil)

type Server struct {
	repo Repository
}

func NewServer(repo Repository) *Server {
	return &Server{repo: repo}
}

func (s *Server) CreateUser(ctx context.Context, req *connect.Request[CreateUserRequest]) (*connect.Response[CreateUserResponse], error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	id := req.Msg.ID
	if id == "" {
		id = ulid.Make().String()
	}
	now := time.Now()
	u := &User{
		ID:              id,
		Name:            req.Msg.Name,
		Email:           req.Msg.Email,
		ProfileImageURL: req.Msg.ProfileImageURL,
		Role:            req.Msg.Role,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return connect.NewResponse(&CreateUserResponse{User: ToView(u)}), nil
}

func (s *Server) GetUser(ctx context.Context, req *connect.Request[GetUserRequest]) (*connect.Response[GetUserResponse], error) {
	if _, err := auth.RequireActor(ctx); err != nil {
		return nil, err
	}
	u, err := s.repo.Get(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GetUserResponse{User: ToView(u)}), nil
}

func (s *Server) ListUsers(ctx context.Context, req *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error) {
	if _, err := auth.RequireActor(ctx); err != nil {
		return nil, err
	}
	limit, offset := pagination.Normalize(req.Msg.Pagination)
	users, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	views := make([]*UserView, len(users))
	for i, u := range users {
		views[i] = ToView(u)
	}
	return connect.NewResponse(&ListUsersResponse{
		Users:      views,
		Pagination: &pagination.Response{Total: total, Limit: limit, Offset: offset},
	}), nil
}
