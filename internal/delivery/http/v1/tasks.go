package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-tms/internal/models"
	"github.com/adanyl0v/go-tms/internal/services"
)

// dueDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
// Null and the empty string both mean no due date.
type dueDate struct {
	time *time.Time
}

func (d *dueDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		d.time = nil
		return nil
	}

	var s string
	err := json.Unmarshal(data, &s)
	if err != nil {
		return fmt.Errorf("dueDate must be a string: %w", err)
	}
	if s == "" {
		d.time = nil
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		t, err := time.Parse(layout, s)
		if err == nil {
			t = t.UTC()
			d.time = &t
			return nil
		}
	}
	return fmt.Errorf("dueDate %q is not a valid date", s)
}

type subtaskPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

func subtasksFromPayload(payload []subtaskPayload) []models.Subtask {
	subtasks := make([]models.Subtask, len(payload))
	for i, p := range payload {
		subtasks[i] = models.Subtask{
			ID:          p.ID,
			Title:       p.Title,
			IsCompleted: p.IsCompleted,
		}
	}
	return subtasks
}

type taskResponse struct {
	ID          string           `json:"_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	DueDate     *time.Time       `json:"dueDate,omitempty"`
	Priority    models.Priority  `json:"priority"`
	Status      models.Status    `json:"status"`
	User        string           `json:"user"`
	Subtasks    []subtaskPayload `json:"subtasks"`
	IsArchived  bool             `json:"isArchived"`
	ArchivedAt  *time.Time       `json:"archivedAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func newTaskResponse(task *models.Task) taskResponse {
	subtasks := make([]subtaskPayload, len(task.Subtasks))
	for i, st := range task.Subtasks {
		subtasks[i] = subtaskPayload{
			ID:          st.ID,
			Title:       st.Title,
			IsCompleted: st.IsCompleted,
		}
	}
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Priority:    task.Priority,
		Status:      task.Status,
		User:        task.UserID,
		Subtasks:    subtasks,
		IsArchived:  task.IsArchived,
		ArchivedAt:  task.ArchivedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func newTaskListResponse(tasks []*models.Task) []taskResponse {
	resp := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		resp[i] = newTaskResponse(task)
	}
	return resp
}

type createTaskRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	DueDate     dueDate          `json:"dueDate"`
	Priority    models.Priority  `json:"priority"`
	Status      models.Status    `json:"status"`
	Subtasks    []subtaskPayload `json:"subtasks"`
}

type updateTaskRequest struct {
	Title       models.Optional[string]           `json:"title"`
	Description models.Optional[string]           `json:"description"`
	DueDate     models.Optional[dueDate]          `json:"dueDate"`
	Priority    models.Optional[models.Priority]  `json:"priority"`
	Status      models.Optional[models.Status]    `json:"status"`
	Subtasks    models.Optional[[]subtaskPayload] `json:"subtasks"`
}

func (r updateTaskRequest) patch() models.TaskPatch {
	patch := models.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
	}
	if r.DueDate.Set {
		patch.DueDate = models.Some(r.DueDate.Value.time)
	}
	if r.Subtasks.Set {
		patch.Subtasks = models.Some(subtasksFromPayload(r.Subtasks.Value))
	}
	return patch
}

type deleteTaskResponse struct {
	ID      string `json:"_id"`
	Message string `json:"message"`
}

func (h *Handler) HandleGetTasks(c *gin.Context) {
	h.listTasks(c, false)
}

func (h *Handler) HandleGetArchivedTasks(c *gin.Context) {
	h.listTasks(c, true)
}

func (h *Handler) listTasks(c *gin.Context, archived bool) {
	tasks, err := h.tasks.List(c, userIDFromContext(c), archived)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskListResponse(tasks))
}

func (h *Handler) HandleGetTask(c *gin.Context) {
	task, err := h.tasks.Get(c, userIDFromContext(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *Handler) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return
	}

	task, err := h.tasks.Create(c, services.CreateTaskParams{
		UserID:      userIDFromContext(c),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate.time,
		Priority:    req.Priority,
		Status:      req.Status,
		Subtasks:    subtasksFromPayload(req.Subtasks),
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *Handler) HandleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(msgInvalidRequestBody))
		return
	}

	task, err := h.tasks.Update(c, userIDFromContext(c), c.Param("id"), req.patch())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *Handler) HandleDeleteTask(c *gin.Context) {
	taskID := c.Param("id")
	err := h.tasks.Delete(c, userIDFromContext(c), taskID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, deleteTaskResponse{
		ID:      taskID,
		Message: msgTaskDeleted,
	})
}

func (h *Handler) HandleArchiveTask(c *gin.Context) {
	task, err := h.tasks.Archive(c, userIDFromContext(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}
