package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-tms/internal/models"
	"github.com/adanyl0v/go-tms/internal/storage"
	"github.com/adanyl0v/go-tms/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(*testing.T) storage.Store { return New() })
}

func TestStoredCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := New()

	task := &models.Task{ID: "t1", UserID: "u", Subtasks: []models.Subtask{{ID: "s", Title: "one"}}}
	require.NoError(t, s.CreateTask(ctx, task))
	task.Subtasks[0].Title = "mutated"

	got, err := s.GetTask(ctx, "u", "t1")
	require.NoError(t, err)
	assert.Equal(t, "one", got.Subtasks[0].Title)

	got.Title = "mutated"
	again, err := s.GetTask(ctx, "u", "t1")
	require.NoError(t, err)
	assert.Empty(t, again.Title)

	list, err := s.ListTasks(ctx, "u", false)
	require.NoError(t, err)
	list[0].Subtasks[0].Title = "mutated"
	again, err = s.GetTask(ctx, "u", "t1")
	require.NoError(t, err)
	assert.Equal(t, "one", again.Subtasks[0].Title)
}

func TestPingHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, New().Ping(ctx), context.Canceled)
}
