package models

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Subtask struct {
	ID          string
	Title       string
	IsCompleted bool
}

type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	DueDate     *time.Time
	Priority    Priority
	Status      Status
	Subtasks    []Subtask
	IsArchived  bool
	ArchivedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy, so the subtask slice and the time
// pointers are never shared with the receiver.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.DueDate = cloneTime(t.DueDate)
	c.ArchivedAt = cloneTime(t.ArchivedAt)
	c.Subtasks = make([]Subtask, len(t.Subtasks))
	copy(c.Subtasks, t.Subtasks)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// TaskPatch is a partial task update. Only fields marked as set are
// applied; owner, archival state and timestamps are not patchable.
type TaskPatch struct {
	Title       Optional[string]
	Description Optional[string]
	DueDate     Optional[*time.Time]
	Priority    Optional[Priority]
	Status      Optional[Status]
	Subtasks    Optional[[]Subtask]
}

func (p TaskPatch) Empty() bool {
	return !p.Title.Set &&
		!p.Description.Set &&
		!p.DueDate.Set &&
		!p.Priority.Set &&
		!p.Status.Set &&
		!p.Subtasks.Set
}

// Apply overwrites the set fields of t. Subtasks are replaced
// wholesale, never merged.
func (p TaskPatch) Apply(t *Task) {
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.DueDate.Set {
		t.DueDate = cloneTime(p.DueDate.Value)
	}
	if p.Priority.Set {
		t.Priority = p.Priority.Value
	}
	if p.Status.Set {
		t.Status = p.Status.Value
	}
	if p.Subtasks.Set {
		t.Subtasks = make([]Subtask, len(p.Subtasks.Value))
		copy(t.Subtasks, p.Subtasks.Value)
	}
}
