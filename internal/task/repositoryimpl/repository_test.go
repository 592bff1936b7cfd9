package repositoryimpl

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/database"
	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

func repositories(t *testing.T) map[string]task.Repository {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	sqlRepo, err := NewSQLRepository(db)
	require.NoError(t, err)
	return map[string]task.Repository{
		"yaml": NewYAMLRepository(s),
		"sql":  sqlRepo,
	}
}

func fixtures() []*task.Task {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	due := base.Add(48 * time.Hour)
	return []*task.Task{
		{
			ID:         "T1",
			Title:      "Write report",
			Priority:   task.PriorityHigh,
			Status:     task.StatusInProgress,
			AssignedTo: []task.Assignee{task.Direct("alice"), task.ViaRequest("bob", "R1")},
			Checklist:  []task.ChecklistItem{{Text: "draft", Completed: true}, {Text: "review"}},
			Progress:   50,
			CreatedBy:  "admin",
			CreatedAt:  base,
			UpdatedAt:  base,
		},
		{
			ID:         "T2",
			Title:      "Fix login bug",
			Priority:   task.PriorityHigh,
			Status:     task.StatusCompleted,
			AssignedTo: []task.Assignee{task.Direct("alice")},
			CreatedBy:  "admin",
			DueDate:    &due,
			CreatedAt:  base.Add(time.Minute),
			UpdatedAt:  base.Add(time.Minute),
		},
		{
			ID:        "T3",
			Title:     "Plan offsite",
			Priority:  task.PriorityLow,
			Status:    task.StatusPendingApproval,
			CreatedBy: "root",
			CreatedAt: base.Add(2 * time.Minute),
			UpdatedAt: base.Add(2 * time.Minute),
		},
	}
}

func TestRepository(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, tk := range fixtures() {
				require.NoError(t, repo.Create(ctx, tk))
			}
			err := repo.Create(ctx, fixtures()[0])
			assert.True(t, cerr.IsCode(err, cerr.AlreadyExists), "got %v", err)

			got, err := repo.Get(ctx, "T1")
			require.NoError(t, err)
			assert.Equal(t, fixtures()[0].AssignedTo, got.AssignedTo)
			assert.Equal(t, fixtures()[0].Checklist, got.Checklist)
			assert.Equal(t, 50, got.Progress)

			_, err = repo.Get(ctx, "nope")
			assert.True(t, cerr.IsCode(err, cerr.NotFound))

			t.Run("filter", func(t *testing.T) {
				list, total, err := repo.List(ctx, task.Filter{AssigneeID: "alice"}, task.Sort{}, 0, 0)
				require.NoError(t, err)
				assert.Equal(t, 2, total)
				assert.Equal(t, []string{"T1", "T2"}, ids(list))

				list, _, err = repo.List(ctx, task.Filter{Query: "LOGIN"}, task.Sort{}, 0, 0)
				require.NoError(t, err)
				assert.Equal(t, []string{"T2"}, ids(list))

				list, _, err = repo.List(ctx, task.Filter{Visible: &task.Visibility{UserID: "bob", TaskIDs: []string{"T3"}}}, task.Sort{}, 0, 0)
				require.NoError(t, err)
				assert.Equal(t, []string{"T1", "T3"}, ids(list))

				cutoff := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
				list, _, err = repo.List(ctx, task.Filter{DueBefore: &cutoff}, task.Sort{}, 0, 0)
				require.NoError(t, err)
				assert.Equal(t, []string{"T2"}, ids(list))
			})

			t.Run("sort and page", func(t *testing.T) {
				list, total, err := repo.List(ctx, task.Filter{}, task.Sort{Field: task.SortPriority}, 0, 0)
				require.NoError(t, err)
				assert.Equal(t, 3, total)
				assert.Equal(t, []string{"T1", "T2", "T3"}, ids(list))

				list, _, err = repo.List(ctx, task.Filter{}, task.Sort{Field: task.SortTitle}, 0, 0)
				require.NoError(t, err)
				assert.Equal(t, []string{"T2", "T3", "T1"}, ids(list))

				list, _, err = repo.List(ctx, task.Filter{}, task.Sort{Field: task.SortDueDate}, 0, 0)
				require.NoError(t, err)
				assert.Equal(t, []string{"T2", "T1", "T3"}, ids(list))

				list, total, err = repo.List(ctx, task.Filter{}, task.Sort{Field: task.SortCreatedAt, Desc: true}, 1, 1)
				require.NoError(t, err)
				assert.Equal(t, 3, total)
				assert.Equal(t, []string{"T2"}, ids(list))
			})

			t.Run("counts", func(t *testing.T) {
				n, err := repo.Count(ctx, task.Filter{Priority: task.PriorityHigh})
				require.NoError(t, err)
				assert.Equal(t, 2, n)

				counts, err := repo.CountByStatus(ctx, task.Filter{})
				require.NoError(t, err)
				assert.Equal(t, map[task.Status]int{
					task.StatusInProgress:      1,
					task.StatusCompleted:       1,
					task.StatusPendingApproval: 1,
				}, counts)

				active, err := repo.CountActiveHighPriority(ctx, "alice")
				require.NoError(t, err)
				assert.Equal(t, 1, active)
			})

			t.Run("update and delete", func(t *testing.T) {
				got, err := repo.Get(ctx, "T1")
				require.NoError(t, err)
				got.RemoveRequestAssignee("R1")
				got.Status = task.StatusPending
				require.NoError(t, repo.Update(ctx, got))

				got, err = repo.Get(ctx, "T1")
				require.NoError(t, err)
				assert.Equal(t, []task.Assignee{task.Direct("alice")}, got.AssignedTo)
				assert.Equal(t, task.StatusPending, got.Status)

				err = repo.Update(ctx, &task.Task{ID: "nope"})
				assert.True(t, cerr.IsCode(err, cerr.NotFound))

				require.NoError(t, repo.Delete(ctx, "T3"))
				err = repo.Delete(ctx, "T3")
				assert.True(t, cerr.IsCode(err, cerr.NotFound))

				all, err := repo.ListIDs(ctx)
				require.NoError(t, err)
				assert.ElementsMatch(t, []string{"T1", "T2"}, all)
			})
		})
	}
}

func ids(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
