package repositoryimpl

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/database"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

func repositories(t *testing.T) map[string]user.Repository {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	sqlRepo, err := NewSQLRepository(db)
	require.NoError(t, err)
	return map[string]user.Repository{
		"yaml": NewYAMLRepository(s),
		"sql":  sqlRepo,
	}
}

func TestRepository(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			for i, id := range []string{"alice", "bob", "carol"} {
				require.NoError(t, repo.Create(ctx, &user.User{
					ID:        id,
					Name:      id,
					Role:      user.RoleMember,
					CreatedAt: base.Add(time.Duration(i) * time.Minute),
				}))
			}

			err := repo.Create(ctx, &user.User{ID: "alice", Name: "dup"})
			assert.True(t, cerr.IsCode(err, cerr.AlreadyExists), "got %v", err)

			got, err := repo.Get(ctx, "bob")
			require.NoError(t, err)
			assert.Equal(t, "bob", got.Name)

			_, err = repo.Get(ctx, "nobody")
			assert.True(t, cerr.IsCode(err, cerr.NotFound))

			many, err := repo.GetMany(ctx, []string{"alice", "nobody", "carol", "alice"})
			require.NoError(t, err)
			assert.Len(t, many, 2)
			assert.Contains(t, many, "alice")
			assert.Contains(t, many, "carol")

			page, total, err := repo.List(ctx, 2, 1)
			require.NoError(t, err)
			assert.Equal(t, 3, total)
			require.Len(t, page, 2)
			assert.Equal(t, "bob", page[0].ID)
			assert.Equal(t, "carol", page[1].ID)

			got.Role = user.RoleAdmin
			require.NoError(t, repo.Update(ctx, got))
			got, err = repo.Get(ctx, "bob")
			require.NoError(t, err)
			assert.True(t, got.IsAdmin())

			err = repo.Update(ctx, &user.User{ID: "nobody"})
			assert.True(t, cerr.IsCode(err, cerr.NotFound))
		})
	}
}
