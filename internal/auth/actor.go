package auth

import (
	"context"

	"github.com/kazz187/taskboard/pkg/cerr"
)

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID string
	Admin  bool
}

type actorKey struct{}

func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(*Actor)
	return a, ok && a != nil
}

func RequireActor(ctx context.Context) (*Actor, error) {
	a, ok := ActorFromContext(ctx)
	if !ok {
		return nil, cerr.NewError(cerr.Unauthenticated, "authentication required", nil)
	}
	return a, nil
}

func RequireAdmin(ctx context.Context) (*Actor, error) {
	a, err := RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !a.Admin {
		return nil, cerr.NewError(cerr.PermissionDenied, "admin role required", nil)
	}
	return a, nil
}
