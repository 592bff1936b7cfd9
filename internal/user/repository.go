package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	// GetMany returns the users found among ids, keyed by id. Missing ids are
	// absent from the map rather than an error.
	GetMany(ctx context.Context, ids []string) (map[string]*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	Update(ctx context.Context, u *User) error
}
