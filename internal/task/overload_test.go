package task_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/storage"
)

func newYAMLTasks(t *testing.T) *repositoryimpl.YAMLRepository {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return repositoryimpl.NewYAMLRepository(s)
}

func seed(t *testing.T, repo task.Repository, userID string, priority task.Priority, status task.Status) {
	t.Helper()
	n, err := repo.Count(context.Background(), task.Filter{})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &task.Task{
		ID:         fmt.Sprintf("T%03d", n),
		Title:      "seed",
		Priority:   priority,
		Status:     status,
		AssignedTo: []task.Assignee{task.Direct(userID)},
		CreatedAt:  time.Now(),
	}))
}

func TestClassifier(t *testing.T) {
	ctx := context.Background()
	repo := newYAMLTasks(t)

	seed(t, repo, "busy", task.PriorityHigh, task.StatusInProgress)
	seed(t, repo, "busy", task.PriorityHigh, task.StatusPending)
	seed(t, repo, "light", task.PriorityHigh, task.StatusPending)
	seed(t, repo, "light", task.PriorityHigh, task.StatusCompleted)
	seed(t, repo, "light", task.PriorityMedium, task.StatusInProgress)

	c := task.NewClassifier(repo, task.DefaultOverloadThreshold, nil)

	overloaded, n, err := c.IsOverloaded(ctx, "busy")
	require.NoError(t, err)
	assert.True(t, overloaded)
	assert.Equal(t, 2, n)

	overloaded, n, err = c.IsOverloaded(ctx, "light")
	require.NoError(t, err)
	assert.False(t, overloaded)
	assert.Equal(t, 1, n)

	p, err := c.Partition(ctx, []string{"light", "busy", "idle"})
	require.NoError(t, err)
	assert.Equal(t, []string{"light", "idle"}, p.Direct)
	assert.Equal(t, []string{"busy"}, p.Overloaded)
	assert.Equal(t, map[string]int{"light": 1, "busy": 2, "idle": 0}, p.Counts)
}

func TestClassifierThreshold(t *testing.T) {
	ctx := context.Background()
	repo := newYAMLTasks(t)
	seed(t, repo, "u", task.PriorityHigh, task.StatusPending)

	overloaded, _, err := task.NewClassifier(repo, 1, nil).IsOverloaded(ctx, "u")
	require.NoError(t, err)
	assert.True(t, overloaded)

	c := task.NewClassifier(repo, 0, nil)
	assert.Equal(t, task.DefaultOverloadThreshold, c.Threshold())
}
