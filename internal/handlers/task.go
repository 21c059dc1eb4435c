package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vikram-2101/Advance-Task-Manager-App/internal/apperr"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/auth"
	dom "github.com/vikram-2101/Advance-Task-Manager-App/internal/domain"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/dto"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/repo"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/service"
)

// TaskHandler handles the task routes.
type TaskHandler struct {
	svc        *service.TaskService
	log        *logrus.Entry
	showDetail bool
}

// NewTaskHandler returns a new TaskHandler.
func NewTaskHandler(svc *service.TaskService, log *logrus.Entry, showDetail bool) *TaskHandler {
	return &TaskHandler{svc: svc, log: log, showDetail: showDetail}
}

// taskID validates the :id path parameter before any business logic runs.
func taskID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !dom.IsID(id) {
		c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: "Invalid ID format"})
		return "", false
	}
	return id, true
}

// Create godoc
// @Summary      Create task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateTaskRequest  true  "Task"
// @Success      201   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	task, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), req.Input())
	if err != nil {
		respondError(c, h.log, h.showDetail, err)
		return
	}
	respond(c, http.StatusCreated, "Task created successfully", gin.H{"task": dto.NewTaskResponse(task)})
}

// List godoc
// @Summary      List tasks owned by or shared with the caller
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        page       query  int     false  "1-based page"
// @Param        limit      query  int     false  "page size"
// @Param        status     query  string  false  "todo|in_progress|done"
// @Param        priority   query  string  false  "low|medium|high"
// @Param        sortBy     query  string  false  "createdAt|updatedAt|dueDate|title|status|priority"
// @Param        sortOrder  query  string  false  "asc|desc"
// @Param        search     query  string  false  "title/description substring"
// @Param        tags       query  []string  false  "any-of tag filter"
// @Success      200  {object}  Envelope
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	var q dto.ListTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	sortDesc := q.SortOrder != "asc" // default desc, like createdAt feeds
	tasks, page, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c), repo.TaskFilter{
		Status:   dom.Status(q.Status),
		Priority: dom.Priority(q.Priority),
		Tags:     q.Tags,
		Search:   q.Search,
		SortBy:   q.SortBy,
		SortDesc: sortDesc,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		respondError(c, h.log, h.showDetail, err)
		return
	}
	out := make([]dto.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, dto.NewTaskResponse(t))
	}
	respond(c, http.StatusOK, "Tasks retrieved successfully", dto.TaskListResponse{
		Tasks:      out,
		Pagination: page,
	})
}

// GetByID godoc
// @Summary      Get one task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "task id"
// @Success      200  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	task, err := h.svc.Get(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		respondError(c, h.log, h.showDetail, err)
		return
	}
	respond(c, http.StatusOK, "Task retrieved successfully", gin.H{"task": dto.NewTaskResponse(task)})
}

// Update godoc
// @Summary      Patch task fields
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "task id"
// @Param        body  body  dto.UpdateTaskRequest  true  "Fields to change"
// @Success      200   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	task, err := h.svc.Update(c.Request.Context(), auth.UserIDFromContext(c), id, req.Input())
	if err != nil {
		respondError(c, h.log, h.showDetail, err)
		return
	}
	respond(c, http.StatusOK, "Task updated successfully", gin.H{"task": dto.NewTaskResponse(task)})
}

// Delete godoc
// @Summary      Soft-delete a task (owner only)
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "task id"
// @Success      200  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), auth.UserIDFromContext(c), id); err != nil {
		respondError(c, h.log, h.showDetail, err)
		return
	}
	respond(c, http.StatusOK, "Task deleted successfully", nil)
}

// Share godoc
// @Summary      Share a task (owner only)
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "task id"
// @Param        body  body  dto.ShareTaskRequest  true  "Share target"
// @Success      200   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /tasks/{id}/share [post]
func (h *TaskHandler) Share(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var req dto.ShareTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !dom.IsID(req.UserID) {
		respondError(c, h.log, h.showDetail, apperr.Validation("Validation error",
			apperr.FieldError{Field: "userId", Message: "Invalid user ID"}))
		return
	}
	permission := dom.Permission(req.Permission)
	if permission == "" {
		permission = dom.PermissionView
	}
	task, err := h.svc.Share(c.Request.Context(), auth.UserIDFromContext(c), id, req.UserID, permission)
	if err != nil {
		respondError(c, h.log, h.showDetail, err)
		return
	}
	respond(c, http.StatusOK, "Task shared successfully", gin.H{"task": dto.NewTaskResponse(task)})
}

// Unshare godoc
// @Summary      Remove a share entry (owner only)
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id      path   string  true  "task id"
// @Param        userId  query  string  true  "user to unshare"
// @Success      200  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /tasks/{id}/share [delete]
func (h *TaskHandler) Unshare(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	unshareUserID := c.Query("userId")
	if !dom.IsID(unshareUserID) {
		respondError(c, h.log, h.showDetail, apperr.Validation("Validation error",
			apperr.FieldError{Field: "userId", Message: "Invalid user ID"}))
		return
	}
	task, err := h.svc.Unshare(c.Request.Context(), auth.UserIDFromContext(c), id, unshareUserID)
	if err != nil {
		respondError(c, h.log, h.showDetail, err)
		return
	}
	respond(c, http.StatusOK, "Task unshared successfully", gin.H{"task": dto.NewTaskResponse(task)})
}

// AuditLog godoc
// @Summary      Task audit history, newest first
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id     path   string  true   "task id"
// @Param        limit  query  int     false  "max entries (default 50)"
// @Success      200  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /tasks/{id}/audit [get]
func (h *TaskHandler) AuditLog(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, h.log, h.showDetail, apperr.Validation("Validation error",
				apperr.FieldError{Field: "limit", Message: "limit must be a positive integer"}))
			return
		}
		limit = n
	}
	entries, err := h.svc.AuditLog(c.Request.Context(), auth.UserIDFromContext(c), id, limit)
	if err != nil {
		respondError(c, h.log, h.showDetail, err)
		return
	}
	respond(c, http.StatusOK, "Audit log retrieved successfully", gin.H{
		"entries": dto.NewAuditEntryResponses(entries),
	})
}
