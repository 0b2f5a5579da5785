// Package memory is an in-process storage backend. It keeps deep copies
// of every document so callers can never mutate stored state.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/adanyl0v/go-tms/internal/models"
	"github.com/adanyl0v/go-tms/internal/storage"
)

type Store struct {
	mu      sync.RWMutex
	users   map[string]models.User
	byEmail map[string]string
	tasks   map[string]*models.Task
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
		tasks:   make(map[string]*models.Task),
	}
}

func (s *Store) Migrate(context.Context) error { return nil }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Close(context.Context) error { return nil }

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return storage.ErrDuplicateKey
	}
	if _, ok := s.users[user.ID]; ok {
		return storage.ErrDuplicateKey
	}
	s.users[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return storage.ErrDuplicateKey
	}
	s.tasks[task.ID] = task.Clone()
	return nil
}

func (s *Store) GetTask(_ context.Context, userID, taskID string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.owned(userID, taskID)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return task.Clone(), nil
}

func (s *Store) ListTasks(_ context.Context, userID string, archived bool) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*models.Task, 0)
	for _, t := range s.tasks {
		if t.UserID == userID && t.IsArchived == archived {
			tasks = append(tasks, t.Clone())
		}
	}
	sortTasks(tasks, archived)
	return tasks, nil
}

func (s *Store) ReplaceTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owned(task.UserID, task.ID); !ok {
		return storage.ErrNotFound
	}
	s.tasks[task.ID] = task.Clone()
	return nil
}

func (s *Store) ArchiveTask(_ context.Context, userID, taskID string, at time.Time) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.owned(userID, taskID)
	if !ok {
		return nil, storage.ErrNotFound
	}
	task.IsArchived = true
	task.ArchivedAt = &at
	task.UpdatedAt = at
	return task.Clone(), nil
}

func (s *Store) DeleteTask(_ context.Context, userID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owned(userID, taskID); !ok {
		return storage.ErrNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

// owned must be called with s.mu held.
func (s *Store) owned(userID, taskID string) (*models.Task, bool) {
	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, false
	}
	return task, true
}

func sortTasks(tasks []*models.Task, archived bool) {
	key := func(t *models.Task) time.Time {
		if archived && t.ArchivedAt != nil {
			return *t.ArchivedAt
		}
		return t.CreatedAt
	}
	sort.Slice(tasks, func(i, j int) bool {
		ki, kj := key(tasks[i]), key(tasks[j])
		if !ki.Equal(kj) {
			return ki.After(kj)
		}
		return tasks[i].ID > tasks[j].ID
	})
}
