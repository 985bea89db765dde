// Package handler implements the HTTP handlers of the mock task API.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskapp/internal/mockapi/helper"
	"taskapp/internal/mockapi/middleware"
	"taskapp/internal/mockapi/store"
	"taskapp/internal/mockapi/validation"
)

type taskCreateRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
	Completed   bool   `json:"completed"`
}

type taskUpdateRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	Completed   *bool   `json:"completed"`
}

type TaskHandler struct {
	tasks store.TaskRepository
}

func NewTaskHandler(tasks store.TaskRepository) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List handles GET /tasks. Authenticated requests see only their own
// tasks; the optional completed query narrows by completion state.
func (h *TaskHandler) List(c *gin.Context) {
	filter := store.TaskFilter{}

	if raw, ok := c.GetQuery("completed"); ok {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			helper.SendBadRequest(c, "completed must be true or false")
			return
		}
		filter.Completed = &completed
	}
	if userID, ok := middleware.CurrentUser(c); ok {
		filter.UserID = userID
	}

	tasks, err := h.tasks.List(c.Request.Context(), filter)
	if err != nil {
		helper.SendInternalError(c, "could not list tasks")
		return
	}

	c.JSON(http.StatusOK, newTaskListResponse(tasks))
}

// Get handles GET /tasks/:id.
func (h *TaskHandler) Get(c *gin.Context) {
	task, ok := h.fetchOwned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	params, err := bindJSON[taskCreateRequest](c)
	if err != nil {
		helper.SendBadRequest(c, "invalid request body")
		return
	}

	if err := validation.Validator.Struct(params); err != nil {
		helper.SendValidationErrors(c, validation.FormatValidationErrors(err))
		return
	}

	task := store.Task{
		Title:       params.Title,
		Description: params.Description,
		Completed:   params.Completed,
	}
	if userID, ok := middleware.CurrentUser(c); ok {
		task.UserID = userID
	}

	created, err := h.tasks.Create(c.Request.Context(), task)
	if err != nil {
		helper.SendInternalError(c, "could not create task")
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(created))
}

// Update handles PUT /tasks/:id. Fields absent from the body keep their
// stored values, so an empty body is a no-op that returns the task as is.
func (h *TaskHandler) Update(c *gin.Context) {
	current, ok := h.fetchOwned(c)
	if !ok {
		return
	}

	params, err := bindJSON[taskUpdateRequest](c)
	if err != nil {
		helper.SendBadRequest(c, "invalid request body")
		return
	}

	if err := validation.Validator.Struct(params); err != nil {
		helper.SendValidationErrors(c, validation.FormatValidationErrors(err))
		return
	}

	patch := store.TaskPatch{
		Title:       params.Title,
		Description: params.Description,
		Completed:   params.Completed,
	}

	updated, err := h.tasks.Update(c.Request.Context(), current.ID, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			helper.SendNotFound(c, "task not found")
			return
		}
		helper.SendInternalError(c, "could not update task")
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(updated))
}

// Delete handles DELETE /tasks/:id. Deletes are permanent; a second
// delete of the same id reports not found.
func (h *TaskHandler) Delete(c *gin.Context) {
	task, ok := h.fetchOwned(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), task.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			helper.SendNotFound(c, "task not found")
			return
		}
		helper.SendInternalError(c, "could not delete task")
		return
	}

	c.Status(http.StatusNoContent)
}

// fetchOwned resolves the :id parameter to a task the caller may touch.
// Tasks owned by other users are reported as missing, not forbidden, so
// ids cannot be probed. On failure the response has already been written.
func (h *TaskHandler) fetchOwned(c *gin.Context) (store.Task, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		helper.SendNotFound(c, "task not found")
		return store.Task{}, false
	}

	task, err := h.tasks.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			helper.SendNotFound(c, "task not found")
			return store.Task{}, false
		}
		helper.SendInternalError(c, "could not load task")
		return store.Task{}, false
	}

	if userID, ok := middleware.CurrentUser(c); ok && task.UserID != userID {
		helper.SendNotFound(c, "task not found")
		return store.Task{}, false
	}

	return task, true
}
