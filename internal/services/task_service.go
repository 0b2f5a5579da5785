package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tms/internal/models"
	"github.com/adanyl0v/go-tms/internal/storage"
)

type TaskServiceImpl struct {
	logger zerolog.Logger
	tasks  storage.TaskRepository
	now    func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	tasks storage.TaskRepository,
) *TaskServiceImpl {
	return &TaskServiceImpl{
		logger: logger,
		tasks:  tasks,
		now:    currentTime,
	}
}

// currentTime is the service clock. It is kept to UTC milliseconds, the
// coarsest precision among the storage backends, so a timestamp returned
// on write equals the one read back later.
func currentTime() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

var _ TaskService = (*TaskServiceImpl)(nil)

func (s *TaskServiceImpl) List(ctx context.Context, userID string, archived bool) ([]*models.Task, error) {
	tasks, err := s.tasks.ListTasks(ctx, userID, archived)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Bool("archived", archived).
			Msg("failed to list tasks")
		return nil, err
	}

	s.logger.Info().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Bool("archived", archived).
		Msg("tasks found")
	return tasks, nil
}

func (s *TaskServiceImpl) Get(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.tasks.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, s.notFoundOr(err, userID, taskID, "failed to get task")
	}
	return task, nil
}

func (s *TaskServiceImpl) Create(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	now := s.now()
	task := &models.Task{
		UserID:      params.UserID,
		Title:       strings.TrimSpace(params.Title),
		Description: params.Description,
		DueDate:     params.DueDate,
		Priority:    params.Priority,
		Status:      params.Status,
		Subtasks:    append([]models.Subtask(nil), params.Subtasks...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}

	err := s.prepare(task)
	if err != nil {
		return nil, err
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}
	task.ID = taskUUID.String()

	err = s.tasks.CreateTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", task.UserID).
			Msg("failed to create task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *TaskServiceImpl) Update(ctx context.Context, userID, taskID string, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.tasks.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, s.notFoundOr(err, userID, taskID, "failed to get task")
	}
	if patch.Empty() {
		s.logger.Debug().
			Str("task_id", task.ID).
			Str("user_id", userID).
			Msg("empty task patch, nothing to update")
		return task, nil
	}

	patch.Apply(task)
	task.Title = strings.TrimSpace(task.Title)
	task.UpdatedAt = s.now()

	err = s.prepare(task)
	if err != nil {
		return nil, err
	}

	err = s.tasks.ReplaceTask(ctx, task)
	if err != nil {
		return nil, s.notFoundOr(err, userID, taskID, "failed to replace task")
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("updated task")
	return task, nil
}

func (s *TaskServiceImpl) Delete(ctx context.Context, userID, taskID string) error {
	err := s.tasks.DeleteTask(ctx, userID, taskID)
	if err != nil {
		return s.notFoundOr(err, userID, taskID, "failed to delete task")
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", userID).
		Msg("deleted task")
	return nil
}

func (s *TaskServiceImpl) Archive(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.tasks.ArchiveTask(ctx, userID, taskID, s.now())
	if err != nil {
		return nil, s.notFoundOr(err, userID, taskID, "failed to archive task")
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("archived task")
	return task, nil
}

// prepare validates the task and assigns ids to new subtasks.
func (s *TaskServiceImpl) prepare(task *models.Task) error {
	v := newValidator()
	v.check(task.Title != "", "title", "must be provided")
	v.check(utf8.RuneCountInString(task.Title) <= maxTitleLength, "title", fmt.Sprintf("must be at most %d characters long", maxTitleLength))
	v.check(task.Priority.Valid(), "priority", "must be one of low, medium, high")
	v.check(task.Status.Valid(), "status", "must be one of todo, in progress, completed")

	if task.Subtasks == nil {
		task.Subtasks = []models.Subtask{}
	}
	seen := make(map[string]struct{}, len(task.Subtasks))
	for i := range task.Subtasks {
		st := &task.Subtasks[i]
		title := strings.TrimSpace(st.Title)
		v.check(title != "", "subtasks", "every subtask must have a title")
		if st.ID == "" {
			st.Title = title
			continue
		}
		_, dup := seen[st.ID]
		v.check(!dup, "subtasks", "subtask ids must be unique")
		seen[st.ID] = struct{}{}
	}
	if err := v.err(); err != nil {
		return err
	}

	for i := range task.Subtasks {
		if task.Subtasks[i].ID != "" {
			continue
		}
		subtaskUUID, err := uuid.NewV7()
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to generate subtask uuid")
			return err
		}
		task.Subtasks[i].ID = subtaskUUID.String()
	}
	return nil
}

func (s *TaskServiceImpl) notFoundOr(err error, userID, taskID, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Error().
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Error().
		Err(err).
		Str("task_id", taskID).
		Str("user_id", userID).
		Msg(msg)
	return err
}
