package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-tms/internal/models"
	"github.com/adanyl0v/go-tms/internal/storage/memory"
)

func newTaskService(t *testing.T) *TaskServiceImpl {
	t.Helper()
	return NewTaskService(zerolog.Nop(), memory.New())
}

func TestCreateTaskDefaults(t *testing.T) {
	svc := newTaskService(t)

	task, err := svc.Create(context.Background(), CreateTaskParams{UserID: "u1", Title: "  Write report "})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.NotNil(t, task.Subtasks)
	assert.Empty(t, task.Subtasks)
	assert.False(t, task.IsArchived)
	assert.Nil(t, task.ArchivedAt)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
}

func TestCreateTaskValidation(t *testing.T) {
	svc := newTaskService(t)
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name   string
		params CreateTaskParams
		field  string
	}{
		{"empty title", CreateTaskParams{Title: "   "}, "title"},
		{"long title", CreateTaskParams{Title: string(long)}, "title"},
		{"bad priority", CreateTaskParams{Title: "x", Priority: "urgent"}, "priority"},
		{"bad status", CreateTaskParams{Title: "x", Status: "done"}, "status"},
		{"untitled subtask", CreateTaskParams{Title: "x", Subtasks: []models.Subtask{{Title: " "}}}, "subtasks"},
		{"duplicate subtask ids", CreateTaskParams{Title: "x", Subtasks: []models.Subtask{{ID: "a", Title: "1"}, {ID: "a", Title: "2"}}}, "subtasks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.UserID = "u1"
			_, err := svc.Create(context.Background(), tt.params)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestCreateTaskAssignsSubtaskIDs(t *testing.T) {
	svc := newTaskService(t)

	task, err := svc.Create(context.Background(), CreateTaskParams{
		UserID:   "u1",
		Title:    "Trip",
		Subtasks: []models.Subtask{{Title: "book"}, {ID: "keep", Title: "pack", IsCompleted: true}},
	})
	require.NoError(t, err)
	require.Len(t, task.Subtasks, 2)
	assert.NotEmpty(t, task.Subtasks[0].ID)
	assert.Equal(t, "keep", task.Subtasks[1].ID)
	assert.True(t, task.Subtasks[1].IsCompleted)
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t)
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	task, err := svc.Create(ctx, CreateTaskParams{
		UserID:      "u1",
		Title:       "Draft",
		Description: "first",
		DueDate:     &due,
		Subtasks:    []models.Subtask{{Title: "a"}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "u1", task.ID, models.TaskPatch{
		Status:      models.Some(models.StatusCompleted),
		Description: models.Some(""),
		DueDate:     models.Some[*time.Time](nil),
	})
	require.NoError(t, err)
	assert.Equal(t, "Draft", updated.Title)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Empty(t, updated.Description)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, task.Subtasks, updated.Subtasks)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(task.UpdatedAt))

	replaced, err := svc.Update(ctx, "u1", task.ID, models.TaskPatch{
		Subtasks: models.Some([]models.Subtask{{Title: "fresh"}}),
	})
	require.NoError(t, err)
	require.Len(t, replaced.Subtasks, 1)
	assert.Equal(t, "fresh", replaced.Subtasks[0].Title)
	assert.NotEqual(t, task.Subtasks[0].ID, replaced.Subtasks[0].ID)

	_, err = svc.Update(ctx, "u1", task.ID, models.TaskPatch{Title: models.Some("")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	stored, err := svc.Get(ctx, "u1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Draft", stored.Title)
}

func TestUpdateTaskEmptyPatch(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t)

	task, err := svc.Create(ctx, CreateTaskParams{UserID: "u1", Title: "Draft"})
	require.NoError(t, err)

	svc.now = func() time.Time { return task.UpdatedAt.Add(time.Hour) }
	same, err := svc.Update(ctx, "u1", task.ID, models.TaskPatch{})
	require.NoError(t, err)
	assert.Equal(t, task.UpdatedAt, same.UpdatedAt)

	stored, err := svc.Get(ctx, "u1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.UpdatedAt, stored.UpdatedAt)

	_, err = svc.Update(ctx, "u1", "missing", models.TaskPatch{})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpdateTaskKeepsExistingSubtasks(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t)

	task, err := svc.Create(ctx, CreateTaskParams{UserID: "u1", Title: "Trip"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "u1", task.ID, models.TaskPatch{
		Subtasks: models.Some([]models.Subtask{
			{ID: "x", Title: "  pack  "},
			{Title: "  book  "},
		}),
	})
	require.NoError(t, err)
	require.Len(t, updated.Subtasks, 2)
	assert.Equal(t, models.Subtask{ID: "x", Title: "  pack  "}, updated.Subtasks[0])
	assert.Equal(t, "book", updated.Subtasks[1].Title)

	_, err = svc.Update(ctx, "u1", task.ID, models.TaskPatch{
		Subtasks: models.Some([]models.Subtask{{ID: "x", Title: "   "}}),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "subtasks")
}

func TestTaskTimestampsAreMillisecondUTC(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t)

	task, err := svc.Create(ctx, CreateTaskParams{UserID: "u1", Title: "Draft"})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, task.CreatedAt.Location())
	assert.Equal(t, task.CreatedAt.Truncate(time.Millisecond), task.CreatedAt)

	archived, err := svc.Archive(ctx, "u1", task.ID)
	require.NoError(t, err)
	require.NotNil(t, archived.ArchivedAt)
	assert.Equal(t, archived.ArchivedAt.Truncate(time.Millisecond), *archived.ArchivedAt)
}

func TestTasksAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t)

	task, err := svc.Create(ctx, CreateTaskParams{UserID: "owner", Title: "Mine"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "intruder", task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = svc.Update(ctx, "intruder", task.ID, models.TaskPatch{Title: models.Some("Theirs")})
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = svc.Archive(ctx, "intruder", task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "intruder", task.ID), ErrTaskNotFound)

	list, err := svc.List(ctx, "intruder", false)
	require.NoError(t, err)
	assert.Empty(t, list)

	stored, err := svc.Get(ctx, "owner", task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", stored.Title)
}

func TestArchiveAndList(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := svc.Create(ctx, CreateTaskParams{UserID: "u1", Title: "first"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateTaskParams{UserID: "u1", Title: "second"})
	require.NoError(t, err)
	third, err := svc.Create(ctx, CreateTaskParams{UserID: "u1", Title: "third"})
	require.NoError(t, err)

	active, err := svc.List(ctx, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, taskIDs(active))

	archived, err := svc.Archive(ctx, "u1", first.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	require.NotNil(t, archived.ArchivedAt)

	_, err = svc.Archive(ctx, "u1", third.ID)
	require.NoError(t, err)

	active, err = svc.List(ctx, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, taskIDs(active))

	archivedList, err := svc.List(ctx, "u1", true)
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, first.ID}, taskIDs(archivedList))

	again, err := svc.Archive(ctx, "u1", first.ID)
	require.NoError(t, err)
	assert.True(t, again.ArchivedAt.After(*archived.ArchivedAt))
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	svc := newTaskService(t)

	task, err := svc.Create(ctx, CreateTaskParams{UserID: "u1", Title: "gone"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "u1", task.ID))

	_, err = svc.Get(ctx, "u1", task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u1", task.ID), ErrTaskNotFound)
}

func taskIDs(tasks []*models.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
