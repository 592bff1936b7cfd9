package repositoryimpl

import (
	"context"
	"slices"

	"github.com/kazz187/taskboard/internal/docstore"
	"github.com/kazz187/taskboard/internal/pagination"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

const usersPrefix = "users"

type YAMLRepository struct {
	docs *docstore.Collection[user.User]
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{docs: docstore.NewCollection[user.User](s, usersPrefix, "user")}
}

func (r *YAMLRepository) Create(ctx context.Context, u *user.User) error {
	return r.docs.Create(ctx, u.ID, u)
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*user.User, error) {
	return r.docs.Get(ctx, id)
}

func (r *YAMLRepository) GetMany(ctx context.Context, ids []string) (map[string]*user.User, error) {
	out := make(map[string]*user.User, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		u, err := r.docs.Get(ctx, id)
		if err != nil {
			if cerr.IsCode(err, cerr.NotFound) {
				continue
			}
			return nil, err
		}
		out[id] = u
	}
	return out, nil
}

func (r *YAMLRepository) List(ctx context.Context, limit, offset int) ([]*user.User, int, error) {
	all, err := r.docs.All(ctx)
	if err != nil {
		return nil, 0, err
	}
	slices.SortFunc(all, func(a, b *user.User) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return pagination.Page(all, limit, offset), len(all), nil
}

func (r *YAMLRepository) Update(ctx context.Context, u *user.User) error {
	return r.docs.Update(ctx, u.ID, u)
}
