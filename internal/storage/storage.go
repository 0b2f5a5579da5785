// Package storage declares the persistence contracts shared by the
// mongo, postgres and memory backends.
//
// Every task lookup is scoped by owner: a task id that exists but belongs
// to another user is reported exactly like a missing one.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/adanyl0v/go-tms/internal/models"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

type UserRepository interface {
	// CreateUser returns ErrDuplicateKey if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, userID, taskID string) (*models.Task, error)

	// ListTasks returns the owner's tasks with the given archived flag,
	// newest first: by creation time for active tasks and by archival
	// time for archived ones. It never returns nil.
	ListTasks(ctx context.Context, userID string, archived bool) ([]*models.Task, error)

	// ReplaceTask overwrites the stored document matching both
	// task.ID and task.UserID.
	ReplaceTask(ctx context.Context, task *models.Task) error

	// ArchiveTask flags the task as archived in a single document
	// update and returns the stored result.
	ArchiveTask(ctx context.Context, userID, taskID string, at time.Time) (*models.Task, error)

	DeleteTask(ctx context.Context, userID, taskID string) error
}

type Store interface {
	UserRepository
	TaskRepository

	// Migrate creates the tables, collections or indexes the backend needs.
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
