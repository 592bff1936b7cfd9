package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/pkg/cerr"
)

var _ auth.ActorLoader = (*ActorLoader)(nil)

type ActorLoader struct {
	repo Repository
}

func NewActorLoader(repo Repository) *ActorLoader {
	return &ActorLoader{repo: repo}
}

func (l *ActorLoader) LoadActor(ctx context.Context, userID string) (*auth.Actor, error) {
	u, err := l.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &auth.Actor{UserID: u.ID, Admin: u.IsAdmin()}, nil
}

// EnsureAdmin creates the bootstrap admin when absent and promotes it when
// it exists with another role.
func EnsureAdmin(ctx context.Context, repo Repository, id, name, email string) (*User, error) {
	u, err := repo.Get(ctx, id)
	switch {
	case err == nil:
		if u.Role == RoleAdmin {
			return u, nil
		}
		u.Role = RoleAdmin
		u.UpdatedAt = time.Now()
		if err := repo.Update(ctx, u); err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "promoted bootstrap user to admin", "user_id", id)
		return u, nil
	case cerr.IsCode(err, cerr.NotFound):
		now := time.Now()
		u = &User{ID: id, Name: name, Email: email, Role: RoleAdmin, CreatedAt: now, UpdatedAt: now}
		if err := repo.Create(ctx, u); err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "created bootstrap admin", "user_id", id)
		return u, nil
	default:
		return nil, err
	}
}
