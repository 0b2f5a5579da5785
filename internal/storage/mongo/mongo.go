// Package mongo stores users and tasks as MongoDB documents. Tasks embed
// their subtasks and reference the owner by id; list queries are served
// by a compound {user, isArchived} index.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/adanyl0v/go-tms/internal/models"
	"github.com/adanyl0v/go-tms/internal/storage"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

type Store struct {
	logger zerolog.Logger
	client *mongo.Client
	users  *mongo.Collection
	tasks  *mongo.Collection
}

var _ storage.Store = (*Store)(nil)

func New(logger zerolog.Logger, client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		logger: logger,
		client: client,
		users:  db.Collection(usersCollection),
		tasks:  db.Collection(tasksCollection),
	}
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	_, err = s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user", Value: 1},
			{Key: "isArchived", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create tasks index: %w", err)
	}
	s.logger.Debug().Msg("created mongo indexes")
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type userDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d *userDocument) model() *models.User {
	return &models.User{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Password:  d.Password,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.users.InsertOne(ctx, userDocument{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.Password,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
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
	return s.findUser(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *Store) findUser(ctx context.Context, filter bson.D) (*models.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.model(), nil
}

type subtaskDocument struct {
	ID          string `bson:"id"`
	Title       string `bson:"title"`
	IsCompleted bool   `bson:"isCompleted"`
}

type taskDocument struct {
	ID          string            `bson:"_id"`
	UserID      string            `bson:"user"`
	Title       string            `bson:"title"`
	Description string            `bson:"description,omitempty"`
	DueDate     *time.Time        `bson:"dueDate,omitempty"`
	Priority    string            `bson:"priority"`
	Status      string            `bson:"status"`
	Subtasks    []subtaskDocument `bson:"subtasks"`
	IsArchived  bool              `bson:"isArchived"`
	ArchivedAt  *time.Time        `bson:"archivedAt,omitempty"`
	CreatedAt   time.Time         `bson:"createdAt"`
	UpdatedAt   time.Time         `bson:"updatedAt"`
}

func newTaskDocument(task *models.Task) taskDocument {
	subtasks := make([]subtaskDocument, len(task.Subtasks))
	for i, st := range task.Subtasks {
		subtasks[i] = subtaskDocument{ID: st.ID, Title: st.Title, IsCompleted: st.IsCompleted}
	}
	return taskDocument{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		Subtasks:    subtasks,
		IsArchived:  task.IsArchived,
		ArchivedAt:  task.ArchivedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func (d *taskDocument) model() *models.Task {
	subtasks := make([]models.Subtask, len(d.Subtasks))
	for i, st := range d.Subtasks {
		subtasks[i] = models.Subtask{ID: st.ID, Title: st.Title, IsCompleted: st.IsCompleted}
	}
	return &models.Task{
		ID:          d.ID,
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Priority:    models.Priority(d.Priority),
		Status:      models.Status(d.Status),
		Subtasks:    subtasks,
		IsArchived:  d.IsArchived,
		ArchivedAt:  d.ArchivedAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func ownedBy(userID, taskID string) bson.D {
	return bson.D{
		{Key: "_id", Value: taskID},
		{Key: "user", Value: userID},
	}
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	_, err := s.tasks.InsertOne(ctx, newTaskDocument(task))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
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
	var doc taskDocument
	err := s.tasks.FindOne(ctx, ownedBy(userID, taskID)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return doc.model(), nil
}

func (s *Store) ListTasks(ctx context.Context, userID string, archived bool) ([]*models.Task, error) {
	sortKey := "createdAt"
	if archived {
		sortKey = "archivedAt"
	}
	opts := options.Find().SetSort(bson.D{
		{Key: sortKey, Value: -1},
		{Key: "_id", Value: -1},
	})

	cursor, err := s.tasks.Find(ctx, bson.D{
		{Key: "user", Value: userID},
		{Key: "isArchived", Value: archived},
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}

	var docs []taskDocument
	err = cursor.All(ctx, &docs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]*models.Task, len(docs))
	for i := range docs {
		tasks[i] = docs[i].model()
	}
	s.logger.Debug().
		Str("user_id", userID).
		Bool("archived", archived).
		Int("count", len(tasks)).
		Msg("found tasks")
	return tasks, nil
}

func (s *Store) ReplaceTask(ctx context.Context, task *models.Task) error {
	res, err := s.tasks.ReplaceOne(ctx, ownedBy(task.UserID, task.ID), newTaskDocument(task))
	if err != nil {
		return fmt.Errorf("failed to replace task: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("replaced task")
	return nil
}

func (s *Store) ArchiveTask(ctx context.Context, userID, taskID string, at time.Time) (*models.Task, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "isArchived", Value: true},
		{Key: "archivedAt", Value: at},
		{Key: "updatedAt", Value: at},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDocument
	err := s.tasks.FindOneAndUpdate(ctx, ownedBy(userID, taskID), update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to archive task: %w", err)
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Msg("archived task")
	return doc.model(), nil
}

func (s *Store) DeleteTask(ctx context.Context, userID, taskID string) error {
	res, err := s.tasks.DeleteOne(ctx, ownedBy(userID, taskID))
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Msg("deleted task")
	return nil
}
