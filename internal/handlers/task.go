package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/collab-api/internal/dto"
	apierrors "github.com/yukikurage/collab-api/internal/errors"
	"github.com/yukikurage/collab-api/internal/middleware"
	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a new task in todo
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req struct {
		Title           string              `json:"title" binding:"required"`
		Description     string              `json:"description"`
		ProjectID       string              `json:"projectId" binding:"required"`
		AssignedUserIDs []string            `json:"assignedUserIds"`
		Priority        models.TaskPriority `json:"priority"`
		DueDate         *string             `json:"dueDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		apierrors.BadRequest(c, "dueDate must be YYYY-MM-DD or RFC3339")
		return
	}

	user, _ := middleware.CurrentUser(c)
	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		ProjectID:       req.ProjectID,
		AssignedUserIDs: req.AssignedUserIDs,
		Priority:        req.Priority,
		DueDate:         dueDate,
		Actor:           user,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateStatus sets a task's status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, _ := middleware.CurrentUser(c)
	task, err := h.taskService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, user)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// MyTasks returns the tasks the caller is assigned to
func (h *TaskHandler) MyTasks(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	tasks, err := h.taskService.MyTasks(c.Request.Context(), user.ID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.taskService.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// Activity returns the recent task activity of a project
func (h *TaskHandler) Activity(c *gin.Context) {
	entries, err := h.taskService.ProjectActivity(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToActivityDTOs(entries))
}

// SuggestTasks drafts tasks from free text using AI
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tasks, err := h.taskService.SuggestTasks(c.Request.Context(), req.Text)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

var dueDateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}

	var lastErr error
	for _, layout := range dueDateLayouts {
		t, err := time.Parse(layout, strings.TrimSpace(*raw))
		if err == nil {
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
