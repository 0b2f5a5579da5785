package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/adanyl0v/go-tms/internal/delivery/http/v1"
	"github.com/adanyl0v/go-tms/internal/models"
	"github.com/adanyl0v/go-tms/internal/services"
	"github.com/adanyl0v/go-tms/internal/storage/memory"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	tokens := services.NewTokenIssuer("test", []byte("test-key"), time.Hour)
	h := v1.New(
		zerolog.Nop(),
		services.NewAuthService(zerolog.Nop(), store, tokens, nil),
		services.NewTaskService(zerolog.Nop(), store),
		store,
		v1.Options{},
	)
	srv := httptest.NewServer(v1.NewRouter(h, v1.RouterOptions{}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientTaskRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := newTestAPI(t)
	c := NewClient(srv.URL + "/")

	identity, err := c.Register(ctx, "Ann", "ann@example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, identity.Token)

	_, err = c.Me(ctx)
	require.True(t, IsUnauthorized(err), "got %v", err)

	c.SetAuthToken(identity.Token)
	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, identity.ID, me.ID)

	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task, err := c.CreateTask(ctx, TaskInput{
		Title:    "Plan sprint",
		DueDate:  &due,
		Priority: models.PriorityLow,
		Subtasks: []Subtask{{Title: "collect issues"}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusTodo, task.Status)
	require.NotNil(t, task.DueDate)
	assert.True(t, due.Equal(*task.DueDate))

	got, err := c.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	updated, err := c.UpdateTask(ctx, task.ID, TaskUpdate{
		Status:  models.Some(models.StatusCompleted),
		DueDate: models.Some[*time.Time](nil),
	})
	require.NoError(t, err)
	assert.Equal(t, "Plan sprint", updated.Title)
	assert.Equal(t, models.PriorityLow, updated.Priority)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Nil(t, updated.DueDate)
	assert.Len(t, updated.Subtasks, 1)

	archived, err := c.ArchiveTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)

	active, err := c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
	archivedList, err := c.ListArchivedTasks(ctx)
	require.NoError(t, err)
	require.Len(t, archivedList, 1)

	require.NoError(t, c.DeleteTask(ctx, task.ID))
	err = c.DeleteTask(ctx, task.ID)
	require.True(t, IsNotFound(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Task not found", apiErr.Message)
}

func TestClientErrorMessageFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListTasks(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, defaultErrorMessage, apiErr.Message)
}

func TestClientEscapesTaskIDs(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_id":"a/b?c"}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	c := NewClient(srv.URL)
	_, err := c.GetTask(ctx, "a/b?c")
	require.NoError(t, err)
	_, err = c.UpdateTask(ctx, "a/b?c", TaskUpdate{})
	require.NoError(t, err)
	_, err = c.ArchiveTask(ctx, "a/b?c")
	require.NoError(t, err)
	require.NoError(t, c.DeleteTask(ctx, "a/b?c"))

	assert.Equal(t, []string{
		"GET /api/tasks/a%2Fb%3Fc",
		"PUT /api/tasks/a%2Fb%3Fc",
		"PUT /api/tasks/a%2Fb%3Fc/archive",
		"DELETE /api/tasks/a%2Fb%3Fc",
	}, paths)
}
