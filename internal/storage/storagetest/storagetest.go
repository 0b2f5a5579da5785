// Package storagetest runs one behavioural suite against every
// storage.Store implementation.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-tms/internal/models"
	"github.com/adanyl0v/go-tms/internal/storage"
)

// Run executes the suite. newStore must return an empty, migrated store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("tasks", func(t *testing.T) { testTasks(t, newStore(t)) })
	t.Run("ownership", func(t *testing.T) { testOwnership(t, newStore(t)) })
	t.Run("ordering", func(t *testing.T) { testOrdering(t, newStore(t)) })
}

var base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newID(t *testing.T) string {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id.String()
}

func newUser(t *testing.T, s storage.Store, email string) *models.User {
	t.Helper()
	u := &models.User{
		ID:        newID(t),
		Name:      "user",
		Email:     email,
		Password:  "hash",
		CreatedAt: base,
		UpdatedAt: base,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func newTask(t *testing.T, s storage.Store, userID string, createdAt time.Time) *models.Task {
	t.Helper()
	task := &models.Task{
		ID:        newID(t),
		UserID:    userID,
		Title:     fmt.Sprintf("task %s", createdAt.Format(time.TimeOnly)),
		Priority:  models.PriorityMedium,
		Status:    models.StatusTodo,
		Subtasks:  []models.Subtask{},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, s.CreateTask(context.Background(), task))
	return task
}

func testUsers(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := newUser(t, s, "ann@example.com")

	err := s.CreateUser(ctx, &models.User{ID: newID(t), Email: "ann@example.com", CreatedAt: base, UpdatedAt: base})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := s.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.Password)

	got, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = s.GetUserByID(ctx, newID(t))
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func testTasks(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := newUser(t, s, "ann@example.com")
	task := newTask(t, s, u.ID, base)

	due := base.Add(48 * time.Hour)
	task.Description = "details"
	task.DueDate = &due
	task.Status = models.StatusInProgress
	task.Subtasks = []models.Subtask{{ID: newID(t), Title: "step", IsCompleted: true}}
	task.UpdatedAt = base.Add(time.Minute)
	require.NoError(t, s.ReplaceTask(ctx, task))

	got, err := s.GetTask(ctx, u.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "details", got.Description)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, task.Subtasks, got.Subtasks)
	assert.False(t, got.IsArchived)
	assert.Nil(t, got.ArchivedAt)

	at := base.Add(time.Hour)
	archived, err := s.ArchiveTask(ctx, u.ID, task.ID, at)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	require.NotNil(t, archived.ArchivedAt)
	assert.True(t, at.Equal(*archived.ArchivedAt))
	assert.Equal(t, "details", archived.Description)

	require.NoError(t, s.DeleteTask(ctx, u.ID, task.ID))
	_, err = s.GetTask(ctx, u.ID, task.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.ErrorIs(t, s.DeleteTask(ctx, u.ID, task.ID), storage.ErrNotFound)
	require.ErrorIs(t, s.ReplaceTask(ctx, task), storage.ErrNotFound)
	_, err = s.ArchiveTask(ctx, u.ID, task.ID, at)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func testOwnership(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owner := newUser(t, s, "owner@example.com")
	other := newUser(t, s, "other@example.com")
	task := newTask(t, s, owner.ID, base)

	_, err := s.GetTask(ctx, other.ID, task.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.ArchiveTask(ctx, other.ID, task.ID, base)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.ErrorIs(t, s.DeleteTask(ctx, other.ID, task.ID), storage.ErrNotFound)

	stolen := *task
	stolen.UserID = other.ID
	stolen.Title = "stolen"
	require.ErrorIs(t, s.ReplaceTask(ctx, &stolen), storage.ErrNotFound)

	got, err := s.GetTask(ctx, owner.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, got.Title)
	assert.False(t, got.IsArchived)

	list, err := s.ListTasks(ctx, other.ID, false)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func testOrdering(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := newUser(t, s, "ann@example.com")
	t1 := newTask(t, s, u.ID, base)
	t2 := newTask(t, s, u.ID, base.Add(time.Minute))
	t3 := newTask(t, s, u.ID, base.Add(2*time.Minute))

	active, err := s.ListTasks(ctx, u.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{t3.ID, t2.ID, t1.ID}, ids(active))

	_, err = s.ArchiveTask(ctx, u.ID, t3.ID, base.Add(time.Hour))
	require.NoError(t, err)
	_, err = s.ArchiveTask(ctx, u.ID, t1.ID, base.Add(2*time.Hour))
	require.NoError(t, err)

	active, err = s.ListTasks(ctx, u.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{t2.ID}, ids(active))

	archived, err := s.ListTasks(ctx, u.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []string{t1.ID, t3.ID}, ids(archived))
}

func ids(tasks []*models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
