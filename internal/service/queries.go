package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"collabtask/internal/repository"

	"github.com/google/uuid"
)

// QueryService composes reads across users, projects and tasks. It holds no
// state of its own; profile fields are joined in at read time.
type QueryService struct {
	projects ProjectRepository
	tasks    TaskRepository
	users    UserRepository
	comments CommentRepository
}

func NewQueryService(projects ProjectRepository, tasks TaskRepository, users UserRepository, comments CommentRepository) *QueryService {
	return &QueryService{projects: projects, tasks: tasks, users: users, comments: comments}
}

// GetProject returns the project with member profiles resolved.
func (s *QueryService) GetProject(ctx context.Context, projectID string) (*ProjectView, error) {
	id, ok := parseID(projectID)
	if !ok {
		return nil, ErrProjectNotFound
	}
	project, err := s.projects.GetByID(ctx, id)
	if errors.Is(err, repository.ErrProjectNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	dir, err := loadUsers(ctx, s.users, project.MemberIDs())
	if err != nil {
		return nil, err
	}
	view := projectView(project, dir)
	return &view, nil
}

// ListProjectsForUser returns the projects the user owns or belongs to,
// newest first. An unknown user simply has no projects.
func (s *QueryService) ListProjectsForUser(ctx context.Context, userID string) ([]ProjectView, error) {
	id, ok := parseID(userID)
	if !ok {
		return []ProjectView{}, nil
	}
	projects, err := s.projects.ListForUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var ids []uuid.UUID
	for _, p := range projects {
		ids = append(ids, p.MemberIDs()...)
	}
	dir, err := loadUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]ProjectView, 0, len(projects))
	for i := range projects {
		views = append(views, projectView(&projects[i], dir))
	}
	return views, nil
}

// ListTasksForProject lists a project's tasks in creation order, optionally
// narrowed to one assignee.
func (s *QueryService) ListTasksForProject(ctx context.Context, projectID, assignee string) ([]TaskView, error) {
	id, ok := parseID(projectID)
	if !ok {
		return nil, ErrProjectNotFound
	}
	if _, err := s.projects.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	var filter *uuid.UUID
	if assignee = strings.TrimSpace(assignee); assignee != "" {
		aid, ok := parseID(assignee)
		if !ok {
			return []TaskView{}, nil
		}
		filter = &aid
	}

	tasks, err := s.tasks.ListByProject(ctx, id, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return taskViews(ctx, s.users, tasks)
}

// ListTasksForAssignee lists every task assigned to the user, across
// projects, soonest due first.
func (s *QueryService) ListTasksForAssignee(ctx context.Context, userID string) ([]TaskView, error) {
	id, ok := parseID(userID)
	if !ok {
		return []TaskView{}, nil
	}
	tasks, err := s.tasks.ListByAssignee(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return taskViews(ctx, s.users, tasks)
}

func (s *QueryService) ProjectOverview(ctx context.Context, projectID string) (*ProjectOverview, error) {
	id, ok := parseID(projectID)
	if !ok {
		return nil, ErrProjectNotFound
	}
	project, err := s.projects.GetByID(ctx, id)
	if errors.Is(err, repository.ErrProjectNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	tasks, err := s.tasks.ListByProject(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	taskIDs := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
	}
	counts, err := s.comments.CountByTasks(ctx, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	view := projectView(project, nil)
	overview := &ProjectOverview{
		ProjectID:   view.ProjectID,
		Title:       view.Title,
		Description: view.Description,
		Deadline:    view.Deadline,
		Members:     view.Members,
		Tasks:       make([]TaskSummary, 0, len(tasks)),
	}
	for _, t := range tasks {
		overview.Tasks = append(overview.Tasks, TaskSummary{
			TaskID:       t.ID.String(),
			Title:        t.Title,
			DueDate:      formatDate(t.DueDate),
			Status:       string(t.Status),
			CommentCount: counts[t.ID],
		})
	}
	return overview, nil
}
