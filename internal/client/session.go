package client

import (
	"context"
	"sync"
)

type Operation string

const (
	OpLogin         Operation = "login"
	OpRegister      Operation = "register"
	OpResume        Operation = "resume"
	OpFetchTasks    Operation = "fetch_tasks"
	OpFetchArchived Operation = "fetch_archived"
	OpAddTask       Operation = "add_task"
	OpUpdateTask    Operation = "update_task"
	OpDeleteTask    Operation = "delete_task"
	OpArchiveTask   Operation = "archive_task"
)

// State is a point-in-time copy of a Session.
type State struct {
	User          *Identity
	Tasks         []Task
	ArchivedTasks []Task
	Loading       map[Operation]bool
	Err           error
}

// Session holds the signed-in user and their task lists. Every mutation
// changes local state only after the server accepted it; on failure the
// previous state is kept and the error is recorded.
type Session struct {
	client *Client

	mu       sync.RWMutex
	user     *Identity
	tasks    []Task
	archived []Task
	loading  map[Operation]bool
	err      error
}

func NewSession(client *Client) *Session {
	return &Session{
		client:   client,
		tasks:    []Task{},
		archived: []Task{},
		loading:  make(map[Operation]bool),
	}
}

func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := State{
		Tasks:         cloneTasks(s.tasks),
		ArchivedTasks: cloneTasks(s.archived),
		Loading:       make(map[Operation]bool, len(s.loading)),
		Err:           s.err,
	}
	if s.user != nil {
		u := *s.user
		state.User = &u
	}
	for op, v := range s.loading {
		if v {
			state.Loading[op] = true
		}
	}
	return state
}

func (s *Session) User() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.tasks)
}

func (s *Session) ArchivedTasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.archived)
}

func (s *Session) Loading(op Operation) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[op]
}

func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// run marks op as loading while fn runs. When fn fails the error is
// recorded and apply is skipped; otherwise apply runs under the lock
// and the last error is cleared.
func (s *Session) run(op Operation, fn func() error, apply func()) error {
	s.mu.Lock()
	s.loading[op] = true
	s.mu.Unlock()

	err := fn()

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.loading, op)
	if err != nil {
		s.err = err
		return err
	}
	s.err = nil
	if apply != nil {
		apply()
	}
	return nil
}

// Login signs in and loads the active tasks. A failure to load tasks
// is recorded in Err but does not undo the sign-in.
func (s *Session) Login(ctx context.Context, email, password string) error {
	var identity *Identity
	err := s.run(OpLogin, func() (err error) {
		identity, err = s.client.Login(ctx, email, password)
		return err
	}, func() {
		s.signIn(identity)
	})
	if err != nil {
		return err
	}
	_ = s.FetchTasks(ctx)
	return nil
}

// Register creates the account, signs in and loads the active tasks.
func (s *Session) Register(ctx context.Context, name, email, password string) error {
	var identity *Identity
	err := s.run(OpRegister, func() (err error) {
		identity, err = s.client.Register(ctx, name, email, password)
		return err
	}, func() {
		s.signIn(identity)
	})
	if err != nil {
		return err
	}
	_ = s.FetchTasks(ctx)
	return nil
}

// Resume restores a session from a previously issued token.
func (s *Session) Resume(ctx context.Context, token string) error {
	var user *User
	err := s.run(OpResume, func() (err error) {
		candidate := NewClient(s.client.baseURL).WithHTTPClient(s.client.httpClient)
		candidate.SetAuthToken(token)
		user, err = candidate.Me(ctx)
		return err
	}, func() {
		s.signIn(&Identity{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Token: token,
		})
	})
	if err != nil {
		return err
	}
	_ = s.FetchTasks(ctx)
	return nil
}

// signIn must be called with s.mu held.
func (s *Session) signIn(identity *Identity) {
	s.client.SetAuthToken(identity.Token)
	s.user = identity
	s.tasks = []Task{}
	s.archived = []Task{}
}

// Logout forgets the user, the token and every cached task.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.client.SetAuthToken("")
	s.user = nil
	s.tasks = []Task{}
	s.archived = []Task{}
	s.loading = make(map[Operation]bool)
	s.err = nil
}

func (s *Session) FetchTasks(ctx context.Context) error {
	var tasks []Task
	return s.run(OpFetchTasks, func() (err error) {
		tasks, err = s.client.ListTasks(ctx)
		return err
	}, func() {
		s.tasks = tasks
	})
}

func (s *Session) FetchArchivedTasks(ctx context.Context) error {
	var tasks []Task
	return s.run(OpFetchArchived, func() (err error) {
		tasks, err = s.client.ListArchivedTasks(ctx)
		return err
	}, func() {
		s.archived = tasks
	})
}

// AddTask creates the task and appends it to the active list.
func (s *Session) AddTask(ctx context.Context, input TaskInput) (*Task, error) {
	var task *Task
	err := s.run(OpAddTask, func() (err error) {
		task, err = s.client.CreateTask(ctx, input)
		return err
	}, func() {
		s.tasks = append(s.tasks, task.clone())
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask replaces the cached copy of the task in place.
func (s *Session) UpdateTask(ctx context.Context, id string, update TaskUpdate) (*Task, error) {
	var task *Task
	err := s.run(OpUpdateTask, func() (err error) {
		task, err = s.client.UpdateTask(ctx, id, update)
		return err
	}, func() {
		replaceTask(s.tasks, *task)
		replaceTask(s.archived, *task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes the task from both lists.
func (s *Session) DeleteTask(ctx context.Context, id string) error {
	return s.run(OpDeleteTask, func() error {
		return s.client.DeleteTask(ctx, id)
	}, func() {
		s.tasks = removeTask(s.tasks, id)
		s.archived = removeTask(s.archived, id)
	})
}

// ArchiveTask moves the task from the active list to the front of the
// archived list, matching the server's newest-archived-first order.
func (s *Session) ArchiveTask(ctx context.Context, id string) (*Task, error) {
	var task *Task
	err := s.run(OpArchiveTask, func() (err error) {
		task, err = s.client.ArchiveTask(ctx, id)
		return err
	}, func() {
		s.tasks = removeTask(s.tasks, id)
		archived := removeTask(s.archived, id)
		s.archived = append([]Task{task.clone()}, archived...)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func replaceTask(tasks []Task, task Task) {
	for i := range tasks {
		if tasks[i].ID == task.ID {
			tasks[i] = task.clone()
		}
	}
}

func removeTask(tasks []Task, id string) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.clone()
	}
	return out
}
