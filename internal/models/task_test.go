package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPatchApply(t *testing.T) {
	due := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	task := &Task{
		Title:       "Write report",
		Description: "draft",
		DueDate:     &due,
		Priority:    PriorityHigh,
		Status:      StatusTodo,
		Subtasks:    []Subtask{{ID: "a", Title: "outline"}},
	}

	patch := TaskPatch{
		Status:   Some(StatusCompleted),
		DueDate:  Some[*time.Time](nil),
		Subtasks: Some([]Subtask{{ID: "b", Title: "review", IsCompleted: true}}),
	}
	require.False(t, patch.Empty())
	patch.Apply(task)

	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, "draft", task.Description)
	assert.Nil(t, task.DueDate)
	assert.Equal(t, PriorityHigh, task.Priority)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.Equal(t, []Subtask{{ID: "b", Title: "review", IsCompleted: true}}, task.Subtasks)
}

func TestTaskPatchEmpty(t *testing.T) {
	assert.True(t, TaskPatch{}.Empty())
	assert.False(t, TaskPatch{Description: Some("")}.Empty())
}

func TestTaskClone(t *testing.T) {
	now := time.Now()
	orig := &Task{
		ID:         "t1",
		ArchivedAt: &now,
		Subtasks:   []Subtask{{ID: "s1", Title: "one"}},
	}
	c := orig.Clone()
	c.Subtasks[0].Title = "changed"
	*c.ArchivedAt = now.Add(time.Hour)

	assert.Equal(t, "one", orig.Subtasks[0].Title)
	assert.True(t, orig.ArchivedAt.Equal(now))
	assert.Nil(t, (*Task)(nil).Clone())
}

func TestEnums(t *testing.T) {
	assert.True(t, StatusInProgress.Valid())
	assert.False(t, Status("in_progress").Valid())
	assert.True(t, PriorityLow.Valid())
	assert.False(t, Priority("urgent").Valid())
}

func TestOptionalJSON(t *testing.T) {
	var body struct {
		Title       Optional[string]   `json:"title"`
		Description Optional[string]   `json:"description"`
		Count       Optional[int]      `json:"count"`
		Tags        Optional[[]string] `json:"tags"`
	}
	err := json.Unmarshal([]byte(`{"title":"x","description":null}`), &body)
	require.NoError(t, err)

	assert.Equal(t, Some("x"), body.Title)
	assert.True(t, body.Description.Set)
	assert.Equal(t, "", body.Description.Value)
	assert.False(t, body.Count.Set)
	assert.False(t, body.Tags.Set)

	out, err := json.Marshal(body.Title)
	require.NoError(t, err)
	assert.JSONEq(t, `"x"`, string(out))

	out, err = json.Marshal(body.Count)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}
