package client

import (
	"context"
	"testing"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/task"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusOf(t Task) task.Status {
	if t.Status == nil {
		return ""
	}
	return *t.Status
}

func TestNextStatus(t *testing.T) {
	todo, inProgress, done := task.StatusTodo, task.StatusInProgress, task.StatusDone

	assert.Equal(t, task.StatusInProgress, NextStatus(nil))
	assert.Equal(t, task.StatusInProgress, NextStatus(&todo))
	assert.Equal(t, task.StatusDone, NextStatus(&inProgress))
	assert.Equal(t, task.StatusTodo, NextStatus(&done))
}

func TestBeginStatusToggle_AppliesToAllCopies(t *testing.T) {
	f, s := newTestStore(t)
	seeded := f.seed("a", "b")
	ctx := context.Background()
	target := seeded[1]

	_, err := s.ListTasks(ctx, ListParams{PerPage: 10})
	require.NoError(t, err)
	_, err = s.ListTasks(ctx, ListParams{PerPage: 5, SortBy: "title", SortOrder: "asc"})
	require.NoError(t, err)
	_, err = s.GetTask(ctx, target.ID)
	require.NoError(t, err)

	next, err := s.BeginStatusToggle(target.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, next)

	for _, key := range s.Cache().ListKeys() {
		p, _ := s.Cache().Page(key)
		i := indexOf(p.Tasks, target.ID)
		require.GreaterOrEqual(t, i, 0)
		assert.Equal(t, task.StatusInProgress, statusOf(p.Tasks[i]), key)
	}
	rec, _ := s.Cache().Record(TaskKey(target.ID))
	assert.Equal(t, task.StatusInProgress, statusOf(*rec))

	_, err = s.BeginStatusToggle(target.ID)
	assert.ErrorIs(t, err, ErrTogglePending)
}

func TestBeginStatusToggle_NotCached(t *testing.T) {
	_, s := newTestStore(t)
	_, err := s.BeginStatusToggle(uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotCached)
}

func TestRevert_RestoresOnlyToggledTask(t *testing.T) {
	f, s := newTestStore(t)
	seeded := f.seed("a", "b")
	ctx := context.Background()
	target, neighbour := seeded[1], seeded[0]

	_, err := s.ListTasks(ctx, ListParams{})
	require.NoError(t, err)

	_, err = s.BeginStatusToggle(target.ID)
	require.NoError(t, err)

	// A neighbour changes while the toggle is in flight.
	title := "b2"
	_, err = s.UpdateTask(ctx, neighbour.ID, task.UpdateTaskRequest{Title: &title})
	require.NoError(t, err)

	s.Revert(target.ID)

	p, _ := s.Cache().Page(ListKey(ListParams{}))
	assert.Equal(t, []string{"b2", "a"}, pageTitles(p))
	assert.Nil(t, p.Tasks[1].Status)

	_, ok := s.Cache().Record(TaskKey(target.ID))
	assert.False(t, ok, "no record was cached before the toggle")

	_, err = s.BeginStatusToggle(target.ID)
	assert.NoError(t, err, "revert clears the pending toggle")
}

func TestToggleStatus_ConfirmsServerRecord(t *testing.T) {
	f, s := newTestStore(t)
	seeded := f.seed("a")
	ctx := context.Background()

	_, err := s.ListTasks(ctx, ListParams{})
	require.NoError(t, err)

	updated, err := s.ToggleStatus(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, statusOf(*updated))

	p, _ := s.Cache().Page(ListKey(ListParams{}))
	assert.Equal(t, updated.UpdatedAt, p.Tasks[0].UpdatedAt)
	rec, ok := s.Cache().Record(TaskKey(seeded[0].ID))
	require.True(t, ok)
	assert.Equal(t, task.StatusInProgress, statusOf(*rec))

	updated, err = s.ToggleStatus(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, statusOf(*updated))
}

func TestToggleStatus_RevertsOnFailure(t *testing.T) {
	f, s := newTestStore(t)
	seeded := f.seed("a")
	ctx := context.Background()

	_, err := s.ListTasks(ctx, ListParams{})
	require.NoError(t, err)
	_, err = s.GetTask(ctx, seeded[0].ID)
	require.NoError(t, err)

	f.mu.Lock()
	f.failNext = common.ErrInternalServer
	f.mu.Unlock()

	_, err = s.ToggleStatus(ctx, seeded[0].ID)
	require.Error(t, err)

	p, _ := s.Cache().Page(ListKey(ListParams{}))
	assert.Nil(t, p.Tasks[0].Status)
	rec, ok := s.Cache().Record(TaskKey(seeded[0].ID))
	require.True(t, ok)
	assert.Nil(t, rec.Status)
}
