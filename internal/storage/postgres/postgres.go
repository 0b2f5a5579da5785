// Package postgres stores users and tasks in PostgreSQL through a pgx
// pool. Subtasks are embedded in the task row as a jsonb array.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tms/internal/models"
	"github.com/adanyl0v/go-tms/internal/storage"
)

//go:embed schema.sql
var schema string

type Store struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

func New(logger zerolog.Logger, pgPool *pgxpool.Pool) *Store {
	return &Store{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pgPool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.logger.Debug().Msg("applied postgres schema")
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pgPool.Ping(ctx)
}

func (s *Store) Close(context.Context) error {
	s.pgPool.Close()
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	const insertUserQuery = `
INSERT INTO users (id,
                   name,
                   email,
                   password,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := s.pgPool.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Name,
		user.Email,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Msg("inserted user")
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const selectUserByIDQuery = `
SELECT id,
       name,
       email,
       password,
       created_at,
       updated_at
FROM users
WHERE id = $1
`
	return s.selectUser(ctx, selectUserByIDQuery, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const selectUserByEmailQuery = `
SELECT id,
       name,
       email,
       password,
       created_at,
       updated_at
FROM users
WHERE email = $1
`
	return s.selectUser(ctx, selectUserByEmailQuery, email)
}

func (s *Store) selectUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := s.pgPool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return &user, nil
}

// subtaskRow is the jsonb representation of a subtask.
type subtaskRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

func toSubtaskRows(subtasks []models.Subtask) []subtaskRow {
	rows := make([]subtaskRow, len(subtasks))
	for i, st := range subtasks {
		rows[i] = subtaskRow{ID: st.ID, Title: st.Title, IsCompleted: st.IsCompleted}
	}
	return rows
}

func fromSubtaskRows(rows []subtaskRow) []models.Subtask {
	subtasks := make([]models.Subtask, len(rows))
	for i, r := range rows {
		subtasks[i] = models.Subtask{ID: r.ID, Title: r.Title, IsCompleted: r.IsCompleted}
	}
	return subtasks
}

const taskColumns = `id,
       user_id,
       title,
       description,
       due_date,
       priority,
       status,
       subtasks,
       is_archived,
       archived_at,
       created_at,
       updated_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		task     models.Task
		priority string
		status   string
		subtasks []subtaskRow
	)
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&priority,
		&status,
		&subtasks,
		&task.IsArchived,
		&task.ArchivedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Priority = models.Priority(priority)
	task.Status = models.Status(status)
	task.Subtasks = fromSubtaskRows(subtasks)
	return &task, nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	const insertTaskQuery = `
INSERT INTO tasks (id,
                   user_id,
                   title,
                   description,
                   due_date,
                   priority,
                   status,
                   subtasks,
                   is_archived,
                   archived_at,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`
	_, err := s.pgPool.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.DueDate,
		string(task.Priority),
		string(task.Status),
		toSubtaskRows(task.Subtasks),
		task.IsArchived,
		task.ArchivedAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert task: %w", err)
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")
	return nil
}

func (s *Store) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	const selectTaskQuery = `
SELECT ` + taskColumns + `
FROM tasks
WHERE id = $1 AND user_id = $2
`
	task, err := scanTask(s.pgPool.QueryRow(ctx, selectTaskQuery, taskID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select task: %w", err)
	}
	return task, nil
}

func (s *Store) ListTasks(ctx context.Context, userID string, archived bool) ([]*models.Task, error) {
	const selectActiveTasksQuery = `
SELECT ` + taskColumns + `
FROM tasks
WHERE user_id = $1 AND is_archived = FALSE
ORDER BY created_at DESC, id DESC
`
	const selectArchivedTasksQuery = `
SELECT ` + taskColumns + `
FROM tasks
WHERE user_id = $1 AND is_archived = TRUE
ORDER BY archived_at DESC NULLS LAST, id DESC
`
	query := selectActiveTasksQuery
	if archived {
		query = selectArchivedTasksQuery
	}

	rows, err := s.pgPool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	s.logger.Debug().
		Str("user_id", userID).
		Bool("archived", archived).
		Int("count", len(tasks)).
		Msg("selected tasks")
	return tasks, nil
}

func (s *Store) ReplaceTask(ctx context.Context, task *models.Task) error {
	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    description = $2,
    due_date = $3,
    priority = $4,
    status = $5,
    subtasks = $6,
    is_archived = $7,
    archived_at = $8,
    updated_at = $9
WHERE id = $10 AND user_id = $11
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		task.DueDate,
		string(task.Priority),
		string(task.Status),
		toSubtaskRows(task.Subtasks),
		task.IsArchived,
		task.ArchivedAt,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("updated task")
	return nil
}

func (s *Store) ArchiveTask(ctx context.Context, userID, taskID string, at time.Time) (*models.Task, error) {
	const archiveTaskQuery = `
UPDATE tasks
SET is_archived = TRUE,
    archived_at = $1,
    updated_at = $1
WHERE id = $2 AND user_id = $3
RETURNING ` + taskColumns

	task, err := scanTask(s.pgPool.QueryRow(ctx, archiveTaskQuery, at, taskID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to archive task: %w", err)
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("archived task")
	return task, nil
}

func (s *Store) DeleteTask(ctx context.Context, userID, taskID string) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		taskID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Msg("deleted task")
	return nil
}
