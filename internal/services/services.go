package services

import (
	"context"
	"errors"
	"time"

	"github.com/adanyl0v/go-tms/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTaskNotFound       = errors.New("task not found")
)

type AuthService interface {
	// Register creates a user with the given name, email and password.
	//
	// It normalizes the input, hashes the password, generates a unique ID
	// and issues a fresh token. A welcome e-mail is sent afterwards; its
	// failure never fails the registration.
	//
	// It returns a *ValidationError if the input is malformed or
	// ErrUserAlreadyExists if the email is already taken.
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)

	// Login authenticates the user by email and password.
	//
	// It returns ErrInvalidCredentials both when the email is unknown
	// and when the password does not match.
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)

	// Authenticate verifies the token and resolves its user.
	//
	// It returns ErrInvalidToken if the token is invalid or
	// its user no longer exists.
	Authenticate(ctx context.Context, token string) (*models.User, error)

	GetUser(ctx context.Context, userID string) (*models.User, error)
}

type TaskService interface {
	// List returns the user's tasks with the given archived flag, newest first.
	List(ctx context.Context, userID string, archived bool) ([]*models.Task, error)
	Get(ctx context.Context, userID, taskID string) (*models.Task, error)
	Create(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// Update applies the patch to the user's task. Subtasks, when
	// present, replace the stored list as a whole.
	Update(ctx context.Context, userID, taskID string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID string) error

	// Archive flags the task as archived. Archiving an already
	// archived task refreshes its archival time.
	Archive(ctx context.Context, userID, taskID string) (*models.Task, error)
}

// WelcomeSender delivers the greeting sent after a registration.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, user *models.User) error
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User           *models.User
	Token          string
	TokenExpiresAt time.Time
}

type CreateTaskParams struct {
	UserID      string
	Title       string
	Description string
	DueDate     *time.Time
	Priority    models.Priority
	Status      models.Status
	Subtasks    []models.Subtask
}
