package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yukikurage/collab-api/internal/constants"
	"github.com/yukikurage/collab-api/internal/dto"
	apierrors "github.com/yukikurage/collab-api/internal/errors"
	"github.com/yukikurage/collab-api/internal/models"
	"github.com/yukikurage/collab-api/internal/notify"
	"github.com/yukikurage/collab-api/internal/realtime"
	"github.com/yukikurage/collab-api/internal/repository"
)

var (
	ErrTaskNotFound           = apierrors.New(apierrors.ErrNotFound, "Task not found")
	ErrProjectNotFound        = apierrors.New(apierrors.ErrNotFound, "Project not found")
	ErrTitleRequired          = apierrors.Validation("title is required")
	ErrProjectIDRequired      = apierrors.Validation("projectId is required")
	ErrInvalidTaskStatus      = apierrors.Validation("status must be one of todo, in_progress, completed")
	ErrInvalidTaskPriority    = apierrors.Validation("priority must be one of low, medium, high")
	ErrSuggestTextRequired    = apierrors.Validation("text is required")
	ErrAIServiceNotConfigured = apierrors.New(apierrors.ErrUnavailable, "AI service is not configured")
	ErrAINoTasksGenerated     = apierrors.New(apierrors.ErrUnavailable, "AI did not generate any tasks")
)

// TransitionPolicy decides whether a task may move from one status to another.
type TransitionPolicy interface {
	Allow(from, to models.TaskStatus) error
}

// AnyTransition lets every status follow every other, including itself.
type AnyTransition struct{}

func (AnyTransition) Allow(_, _ models.TaskStatus) error {
	return nil
}

// TaskServiceDeps groups the collaborators of TaskService. Exporter and AI
// are optional.
type TaskServiceDeps struct {
	Tasks      repository.TaskRepository
	Projects   repository.ProjectRepository
	Users      repository.UserRepository
	Activity   repository.ActivityRepository
	Mailer     notify.Sender
	Fanout     realtime.Publisher
	Exporter   realtime.Publisher
	Dispatcher *Dispatcher
	Policy     TransitionPolicy
	AI         *AIService
	Logger     *zap.SugaredLogger
}

// TaskService handles task business logic
type TaskService struct {
	tasks      repository.TaskRepository
	projects   repository.ProjectRepository
	users      repository.UserRepository
	activity   repository.ActivityRepository
	mailer     notify.Sender
	fanout     realtime.Publisher
	exporter   realtime.Publisher
	dispatcher *Dispatcher
	policy     TransitionPolicy
	ai         *AIService
	log        *zap.SugaredLogger
}

// NewTaskService creates a new TaskService
func NewTaskService(deps TaskServiceDeps) *TaskService {
	policy := deps.Policy
	if policy == nil {
		policy = AnyTransition{}
	}
	return &TaskService{
		tasks:      deps.Tasks,
		projects:   deps.Projects,
		users:      deps.Users,
		activity:   deps.Activity,
		mailer:     deps.Mailer,
		fanout:     deps.Fanout,
		exporter:   deps.Exporter,
		dispatcher: deps.Dispatcher,
		policy:     policy,
		ai:         deps.AI,
		log:        deps.Logger,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title           string
	Description     string
	ProjectID       string
	AssignedUserIDs []string
	Priority        models.TaskPriority
	DueDate         *time.Time
	Actor           *models.User
}

// CreateTask persists a new task in todo and schedules its side effects:
// activity entry, one assignment email per resolved assignee, then the
// task-created event.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.ProjectID == "" {
		return nil, ErrProjectIDRequired
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidTaskPriority
	}

	project, err := s.projects.FindByID(ctx, input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, apierrors.Storage("failed to find project", err)
	}

	assignees, err := s.resolveAssignees(ctx, input.AssignedUserIDs)
	if err != nil {
		return nil, err
	}

	assigneeIDs := make([]string, len(assignees))
	for i, u := range assignees {
		assigneeIDs[i] = u.ID
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      models.TaskStatusTodo,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		ProjectID:   project.ID,
	}
	if err := s.tasks.Create(ctx, task, assigneeIDs); err != nil {
		return nil, apierrors.Storage("failed to create task", err)
	}

	task.Project = *project
	task.Assignments = make([]models.TaskAssignment, len(assignees))
	for i, u := range assignees {
		task.Assignments[i] = models.TaskAssignment{TaskID: task.ID, UserID: u.ID, User: u}
	}

	steps := []Step{s.logStep(&models.ActivityLog{
		Action:     constants.ActionTaskCreated,
		EntityType: models.EntityTask,
		EntityID:   task.ID,
		ProjectID:  &task.ProjectID,
		UserID:     input.Actor.ID,
		Details: datatypes.JSONMap{
			"taskTitle": task.Title,
			"projectId": task.ProjectID,
		},
	})}
	for _, u := range assignees {
		steps = append(steps, s.emailStep(u.Email, func(to string) (notify.Message, error) {
			return notify.TaskAssigned(to, task.Title, project.Name)
		}))
	}
	steps = append(steps, s.publishSteps(task.ProjectID, realtime.Event{
		Name: constants.EventTaskCreated,
		Data: dto.TaskCreatedEvent{Task: dto.ToTaskDTO(*task)},
	})...)
	s.dispatcher.Dispatch("task.create "+task.ID, steps...)

	return task, nil
}

// UpdateStatus sets a task's status. The same status is accepted again.
func (s *TaskService) UpdateStatus(ctx context.Context, taskID string, status models.TaskStatus, actor *models.User) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidTaskStatus
	}

	task, err := s.findTask(ctx, taskID, "Project", "Assignments.User")
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	if err := s.policy.Allow(oldStatus, status); err != nil {
		return nil, apierrors.Validation(err.Error())
	}

	if err := s.tasks.UpdateStatus(ctx, task.ID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, apierrors.Storage("failed to update task status", err)
	}
	task.Status = status

	steps := []Step{s.logStep(&models.ActivityLog{
		Action:     constants.ActionTaskStatusUpdated,
		EntityType: models.EntityTask,
		EntityID:   task.ID,
		ProjectID:  &task.ProjectID,
		UserID:     actor.ID,
		Details: datatypes.JSONMap{
			"oldStatus": string(oldStatus),
			"newStatus": string(status),
			"taskTitle": task.Title,
		},
	})}
	for _, u := range task.AssignedUsers() {
		steps = append(steps, s.emailStep(u.Email, func(to string) (notify.Message, error) {
			return notify.StatusUpdated(to, task.Title, string(status))
		}))
	}
	steps = append(steps, s.publishSteps(task.ProjectID, realtime.Event{
		Name: constants.EventTaskUpdated,
		Data: dto.TaskUpdatedEvent{TaskID: task.ID, Status: status, UpdatedBy: actor.Name},
	})...)
	s.dispatcher.Dispatch("task.status "+task.ID, steps...)

	return task, nil
}

// GetTask returns a task with its project and assignees
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	return s.findTask(ctx, taskID, "Project", "Assignments.User")
}

// MyTasks lists the tasks the user is assigned to
func (s *TaskService) MyTasks(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.tasks.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, apierrors.Storage("failed to list tasks", err)
	}
	return tasks, nil
}

// ProjectActivity returns the newest task entries of a project, newest first.
func (s *TaskService) ProjectActivity(ctx context.Context, projectID string) ([]models.ActivityLog, error) {
	entityType := models.EntityTask
	entries, err := s.activity.ListRecent(ctx, repository.ActivityFilter{
		EntityType: &entityType,
		ProjectID:  &projectID,
		Limit:      constants.ActivityFeedLimit,
	})
	if err != nil {
		return nil, apierrors.Storage("failed to list activity", err)
	}
	return entries, nil
}

// SuggestTasks uses AI to draft tasks from free text. Nothing is persisted.
func (s *TaskService) SuggestTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrSuggestTextRequired
	}
	if s.ai == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.ai.DraftTasks(ctx, text)
	if err != nil {
		return nil, &apierrors.Error{Kind: apierrors.ErrUnavailable, Message: "failed to generate tasks", Err: err}
	}
	return filterGeneratedTasks(aiTasks, time.Now())
}

func filterGeneratedTasks(aiTasks []GeneratedTask, now time.Time) ([]GeneratedTask, error) {
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := now.Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		if strings.TrimSpace(aiTask.Title) == "" {
			continue
		}
		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}
		if !aiTask.Priority.Valid() {
			aiTask.Priority = models.TaskPriorityMedium
		}
		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	return validTasks, nil
}

func (s *TaskService) findTask(ctx context.Context, taskID string, preload ...string) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, apierrors.Storage("failed to find task", err)
	}
	return task, nil
}

// resolveAssignees deduplicates ids and drops the ones that do not resolve,
// logging a warning for each.
func (s *TaskService) resolveAssignees(ctx context.Context, ids []string) ([]models.User, error) {
	ids = uniqueStrings(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apierrors.Storage("failed to resolve assignees", err)
	}

	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	resolved := make([]models.User, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			s.log.Warnw("skipping unknown assignee", "user", id)
			continue
		}
		resolved = append(resolved, u)
	}
	return resolved, nil
}

func (s *TaskService) logStep(entry *models.ActivityLog) Step {
	return Step{
		Name: "activity",
		Run: func(ctx context.Context) error {
			return s.activity.Append(ctx, entry)
		},
	}
}

func (s *TaskService) emailStep(to string, build func(to string) (notify.Message, error)) Step {
	return Step{
		Name: "email " + to,
		Run: func(ctx context.Context) error {
			msg, err := build(to)
			if err != nil {
				return err
			}
			return s.mailer.Send(ctx, msg)
		},
	}
}

func (s *TaskService) publishSteps(projectID string, evt realtime.Event) []Step {
	channel := realtime.ProjectChannel(projectID)
	steps := []Step{{
		Name: "publish " + evt.Name,
		Run: func(ctx context.Context) error {
			return s.fanout.Publish(ctx, channel, evt)
		},
	}}
	if s.exporter != nil {
		steps = append(steps, Step{
			Name: "export " + evt.Name,
			Run: func(ctx context.Context) error {
				if err := s.exporter.Publish(ctx, channel, evt); err != nil {
					return fmt.Errorf("export to event stream: %w", err)
				}
				return nil
			},
		})
	}
	return steps
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
