package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"collabtask/internal/model"
	"collabtask/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TaskService owns tasks and their sub-resources (comments, subtasks).
type TaskService struct {
	tasks    TaskRepository
	projects ProjectRepository
	users    UserRepository
	comments CommentRepository
	subtasks SubtaskRepository
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewTaskService(
	tasks TaskRepository,
	projects ProjectRepository,
	users UserRepository,
	comments CommentRepository,
	subtasks SubtaskRepository,
	log logrus.FieldLogger,
) *TaskService {
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		users:    users,
		comments: comments,
		subtasks: subtasks,
		log:      log,
		now:      now,
	}
}

type CreateTaskInput struct {
	ProjectID   string `json:"projectID"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
	AssignedTo  string `json:"assignedTo"`
	// Status is optional; new tasks start in model.DefaultStatus.
	Status string `json:"status"`
}

func (in CreateTaskInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ProjectID, validation.Required),
		validation.Field(&in.Title, validation.Required, validation.Length(1, maxTitleLength)),
	)
}

// UpdateTaskInput replaces every editable field. The assignee is given either
// as a user ID or, as older clients do, by username.
type UpdateTaskInput struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Status           string  `json:"status"`
	DueDate          string  `json:"dueDate"`
	Priority         string  `json:"priority"`
	AssignedTo       *string `json:"assignedTo"`
	AssignedUsername *string `json:"assignedUsername"`
}

func (in UpdateTaskInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, maxTitleLength)),
		validation.Field(&in.Status, validation.Required),
		validation.Field(&in.Priority, validation.Required),
	)
}

type MoveTaskInput struct {
	Direction int `json:"direction"`
}

type AddCommentInput struct {
	TaskID  string `json:"taskID"`
	UserID  string `json:"userID"`
	Message string `json:"message"`
}

func (in AddCommentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.TaskID, validation.Required),
		validation.Field(&in.UserID, validation.Required),
		validation.Field(&in.Message, validation.Required, validation.Length(1, maxMessageLength)),
	)
}

func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*TaskView, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := checkInput(in.Validate()); err != nil {
		return nil, err
	}
	dueDate, err := parseDate("dueDate", in.DueDate)
	if err != nil {
		return nil, err
	}
	priority := model.DefaultPriority
	if in.Priority != "" {
		if priority, err = parsePriority(in.Priority); err != nil {
			return nil, err
		}
	}
	status := model.DefaultStatus
	if in.Status != "" {
		if status, err = parseStatus(in.Status); err != nil {
			return nil, err
		}
	}

	projectID, ok := parseID(in.ProjectID)
	if !ok {
		return nil, ErrProjectNotFound
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	assignee, err := s.assigneeByID(ctx, in.AssignedTo)
	if err != nil {
		return nil, err
	}

	ts := s.now()
	task := &model.Task{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		DueDate:     dueDate,
		Priority:    priority,
		Status:      status,
		AssignedTo:  assignee,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.log.WithFields(logrus.Fields{"task_id": task.ID, "project_id": projectID}).Info("task created")
	return s.view(ctx, task)
}

// UpdateTask has full-replace semantics and accepts any status in the closed
// set. Concurrent updates resolve last-write-wins.
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, in UpdateTaskInput) (*TaskView, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := checkInput(in.Validate()); err != nil {
		return nil, err
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	priority, err := parsePriority(in.Priority)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDate("dueDate", in.DueDate)
	if err != nil {
		return nil, err
	}

	var assignee *uuid.UUID
	switch {
	case in.AssignedTo != nil:
		assignee, err = s.assigneeByID(ctx, *in.AssignedTo)
	case in.AssignedUsername != nil:
		assignee, err = s.assigneeByName(ctx, *in.AssignedUsername)
	}
	if err != nil {
		return nil, err
	}

	task.Title = in.Title
	task.Description = strings.TrimSpace(in.Description)
	task.Status = status
	task.Priority = priority
	task.DueDate = dueDate
	task.AssignedTo = assignee
	task.UpdatedAt = s.now()

	if err := s.save(ctx, task); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"task_id": task.ID, "status": task.Status}).Info("task updated")
	return s.view(ctx, task)
}

// MoveTask shifts a task one Kanban column forward (+1) or back (-1).
func (s *TaskService) MoveTask(ctx context.Context, taskID string, in MoveTaskInput) (*TaskView, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if in.Direction != 1 && in.Direction != -1 {
		return nil, invalidInput("direction: must be 1 or -1.")
	}
	next, ok := task.Status.Move(in.Direction)
	if !ok {
		return nil, invalidInput(fmt.Sprintf("Task cannot move past the %q column.", task.Status))
	}

	task.Status = next
	task.UpdatedAt = s.now()
	if err := s.save(ctx, task); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"task_id": task.ID, "status": task.Status}).Info("task moved")
	return s.view(ctx, task)
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	id, ok := parseID(taskID)
	if !ok {
		return ErrTaskNotFound
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}

	s.log.WithField("task_id", id).Info("task deleted")
	return nil
}

// AddComment attaches a comment to a task. When actor is set the actor is
// the author.
func (s *TaskService) AddComment(ctx context.Context, actor string, in AddCommentInput) (*CommentView, error) {
	author, err := actingAs(actor, in.UserID)
	if err != nil {
		return nil, err
	}
	in.UserID = author
	in.Message = strings.TrimSpace(in.Message)
	if err := checkInput(in.Validate()); err != nil {
		return nil, err
	}
	task, err := s.load(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	userID, ok := parseID(in.UserID)
	if !ok {
		return nil, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	comment := &model.Comment{
		ID:        uuid.New(),
		TaskID:    task.ID,
		UserID:    userID,
		Message:   in.Message,
		CreatedAt: s.now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("create comment: %w", err)
	}

	view := commentView(comment, userDirectory{user.ID: *user})
	return &view, nil
}

func (s *TaskService) ListComments(ctx context.Context, taskID string) ([]CommentView, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	dir, err := loadUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, commentView(&comments[i], dir))
	}
	return views, nil
}

func (s *TaskService) load(ctx context.Context, taskID string) (*model.Task, error) {
	id, ok := parseID(taskID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	task, err := s.tasks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (s *TaskService) save(ctx context.Context, task *model.Task) error {
	err := s.tasks.Update(ctx, task)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, repository.ErrInvalidReference):
		return ErrInvalidAssignee
	}
	return fmt.Errorf("update task: %w", err)
}

func (s *TaskService) view(ctx context.Context, task *model.Task) (*TaskView, error) {
	views, err := taskViews(ctx, s.users, []model.Task{*task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// assigneeByID resolves an optional assignee. Empty and "Unassigned" clear it.
func (s *TaskService) assigneeByID(ctx context.Context, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, unassignedLabel) {
		return nil, nil
	}
	id, ok := parseID(raw)
	if !ok {
		return nil, ErrInvalidAssignee
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidAssignee
		}
		return nil, fmt.Errorf("get assignee: %w", err)
	}
	return &id, nil
}

func (s *TaskService) assigneeByName(ctx context.Context, name string) (*uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, unassignedLabel) {
		return nil, nil
	}
	user, err := s.users.FindByName(ctx, name)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidAssignee
	}
	if err != nil {
		return nil, fmt.Errorf("find assignee by name: %w", err)
	}
	return &user.ID, nil
}

func parseStatus(s string) (model.Status, error) {
	st, ok := model.ParseStatus(s)
	if !ok {
		return "", invalidInput(fmt.Sprintf("status: %q is not one of To Do, In Progress, Done.", s))
	}
	return st, nil
}

func parsePriority(s string) (model.Priority, error) {
	p, ok := model.ParsePriority(s)
	if !ok {
		return "", invalidInput(fmt.Sprintf("priority: %q is not one of Low, Medium, High.", s))
	}
	return p, nil
}

func commentView(c *model.Comment, dir userDirectory) CommentView {
	view := CommentView{
		CommentID: c.ID.String(),
		TaskID:    c.TaskID.String(),
		UserID:    c.UserID.String(),
		Message:   c.Message,
		Username:  unknownUserLabel,
		CreatedAt: c.CreatedAt,
	}
	if u, ok := dir[c.UserID]; ok {
		view.Username = u.Name
		view.Avatar = u.AvatarURL
	}
	return view
}
