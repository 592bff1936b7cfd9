package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/storage"
)

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := repositoryimpl.NewYAMLRepository(s)

	u, err := user.EnsureAdmin(ctx, repo, "root", "Root", "root@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	// Second call is a no-op.
	_, err = user.EnsureAdmin(ctx, repo, "root", "Other", "")
	require.NoError(t, err)
	got, err := repo.Get(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, "Root", got.Name)

	got.Role = user.RoleMember
	require.NoError(t, repo.Update(ctx, got))
	u, err = user.EnsureAdmin(ctx, repo, "root", "Root", "")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	actor, err := user.NewActorLoader(repo).LoadActor(ctx, "root")
	require.NoError(t, err)
	assert.True(t, actor.Admin)
}
