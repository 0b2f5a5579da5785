package client

import (
	"time"

	"github.com/adanyl0v/go-tms/internal/models"
)

// Identity is the signed-in user as returned by register and login.
type Identity struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Subtask struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

type Task struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	Priority    models.Priority `json:"priority"`
	Status      models.Status   `json:"status"`
	User        string          `json:"user"`
	Subtasks    []Subtask       `json:"subtasks"`
	IsArchived  bool            `json:"isArchived"`
	ArchivedAt  *time.Time      `json:"archivedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (t Task) clone() Task {
	c := t
	c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.ArchivedAt != nil {
		a := *t.ArchivedAt
		c.ArchivedAt = &a
	}
	return c
}

// TaskInput is the body of a create request. Empty priority and
// status fall back to the server defaults.
type TaskInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	Priority    models.Priority `json:"priority,omitempty"`
	Status      models.Status   `json:"status,omitempty"`
	Subtasks    []Subtask       `json:"subtasks,omitempty"`
}

// TaskUpdate is a partial update: unset fields are left out of the
// request, and a set nil DueDate clears the due date.
type TaskUpdate struct {
	Title       models.Optional[string]          `json:"title,omitzero"`
	Description models.Optional[string]          `json:"description,omitzero"`
	DueDate     models.Optional[*time.Time]      `json:"dueDate,omitzero"`
	Priority    models.Optional[models.Priority] `json:"priority,omitzero"`
	Status      models.Optional[models.Status]   `json:"status,omitzero"`
	Subtasks    models.Optional[[]Subtask]       `json:"subtasks,omitzero"`
}
