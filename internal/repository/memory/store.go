// Package memory is a process-local implementation of the repositories,
// used for local development without PostgreSQL and for tests. It mirrors
// the constraints the SQL schema enforces: unique emails, foreign keys and
// cascading task deletes.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"collabtask/internal/model"
	"collabtask/internal/repository"

	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]model.User
	projects map[uuid.UUID]model.Project
	tasks    map[uuid.UUID]model.Task
	comments map[uuid.UUID]model.Comment
	subtasks map[uuid.UUID]model.Subtask
}

func New() *Store {
	return &Store{
		users:    make(map[uuid.UUID]model.User),
		projects: make(map[uuid.UUID]model.Project),
		tasks:    make(map[uuid.UUID]model.Task),
		comments: make(map[uuid.UUID]model.Comment),
		subtasks: make(map[uuid.UUID]model.Subtask),
	}
}

func (s *Store) Users() *UserRepository { return &UserRepository{s} }
func (s *Store) Projects() *ProjectRepository { return &ProjectRepository{s} }
func (s *Store) Tasks() *TaskRepository { return &TaskRepository{s} }
func (s *Store) Comments() *CommentRepository { return &CommentRepository{s} }
func (s *Store) Subtasks() *SubtaskRepository { return &SubtaskRepository{s} }

// Users

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByIDs(_ context.Context, ids []uuid.UUID) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var users []model.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *UserRepository) FindByName(_ context.Context, name string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found *model.User
	for _, u := range r.s.users {
		if u.Name != name {
			continue
		}
		if found == nil || u.CreatedAt.Before(found.CreatedAt) ||
			(u.CreatedAt.Equal(found.CreatedAt) && u.ID.String() < found.ID.String()) {
			u := u
			found = &u
		}
	}
	if found == nil {
		return nil, repository.ErrUserNotFound
	}
	return found, nil
}

func (r *UserRepository) List(_ context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID.String() < users[j].ID.String()
	})
	return users, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Name = user.Name
	u.AvatarURL = user.AvatarURL
	r.s.users[user.ID] = u
	return nil
}

// Projects

type ProjectRepository struct{ s *Store }

func (r *ProjectRepository) Create(_ context.Context, project *model.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[project.OwnerID]; !ok {
		return repository.ErrInvalidReference
	}
	if !r.s.usersExist(project.MemberIDs()) {
		return repository.ErrInvalidReference
	}
	r.s.projects[project.ID] = cloneProject(*project)
	return nil
}

func (r *ProjectRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, repository.ErrProjectNotFound
	}
	p = cloneProject(p)
	return &p, nil
}

func (r *ProjectRepository) ListForUser(_ context.Context, userID uuid.UUID) ([]model.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var projects []model.Project
	for _, p := range r.s.projects {
		if p.OwnerID == userID || p.HasMember(userID) {
			projects = append(projects, cloneProject(p))
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		if !projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].CreatedAt.After(projects[j].CreatedAt)
		}
		return projects[i].ID.String() < projects[j].ID.String()
	})
	return projects, nil
}

func (r *ProjectRepository) Update(_ context.Context, project *model.Project, replaceMembers bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.projects[project.ID]
	if !ok {
		return repository.ErrProjectNotFound
	}
	if replaceMembers && !r.s.usersExist(project.MemberIDs()) {
		return repository.ErrInvalidReference
	}

	stored.Title = project.Title
	stored.Description = project.Description
	stored.Deadline = project.Deadline
	stored.UpdatedAt = project.UpdatedAt
	if replaceMembers {
		stored.Members = append([]model.ProjectMember(nil), project.Members...)
	}
	r.s.projects[project.ID] = cloneProject(stored)
	return nil
}

func (r *ProjectRepository) AddMember(_ context.Context, member *model.ProjectMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.projects[member.ProjectID]
	if !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := r.s.users[member.UserID]; !ok {
		return repository.ErrInvalidReference
	}
	if p.HasMember(member.UserID) {
		return nil
	}
	p = cloneProject(p)
	p.Members = append(p.Members, *member)
	r.s.projects[p.ID] = p
	return nil
}

func (r *ProjectRepository) RemoveMember(_ context.Context, projectID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.projects[projectID]
	if !ok {
		return nil
	}
	kept := make([]model.ProjectMember, 0, len(p.Members))
	for _, m := range p.Members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	p.Members = kept
	r.s.projects[projectID] = p
	return nil
}

// Tasks

type TaskRepository struct{ s *Store }

func (r *TaskRepository) Create(_ context.Context, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkTaskRefs(task); err != nil {
		return err
	}
	r.s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (r *TaskRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	t = cloneTask(t)
	return &t, nil
}

func (r *TaskRepository) ListByProject(_ context.Context, projectID uuid.UUID, assignee *uuid.UUID) ([]model.Task, error) {
	return r.s.filterTasks(func(t model.Task) bool {
		if t.ProjectID != projectID {
			return false
		}
		return assignee == nil || (t.AssignedTo != nil && *t.AssignedTo == *assignee)
	}), nil
}

func (r *TaskRepository) ListByAssignee(_ context.Context, userID uuid.UUID) ([]model.Task, error) {
	tasks := r.s.filterTasks(func(t model.Task) bool {
		return t.AssignedTo != nil && *t.AssignedTo == userID
	})
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].DueDate, tasks[j].DueDate
		switch {
		case a == nil || b == nil:
			return a != nil && b == nil
		default:
			return a.Before(*b)
		}
	})
	return tasks, nil
}

func (r *TaskRepository) Update(_ context.Context, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.tasks[task.ID]
	if !ok {
		return repository.ErrTaskNotFound
	}
	if err := r.s.checkTaskRefs(task); err != nil {
		return err
	}

	stored.Title = task.Title
	stored.Description = task.Description
	stored.DueDate = task.DueDate
	stored.Priority = task.Priority
	stored.Status = task.Status
	stored.AssignedTo = task.AssignedTo
	stored.UpdatedAt = task.UpdatedAt
	r.s.tasks[task.ID] = cloneTask(stored)
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	for cid, c := range r.s.comments {
		if c.TaskID == id {
			delete(r.s.comments, cid)
		}
	}
	for sid, st := range r.s.subtasks {
		if st.TaskID == id {
			delete(r.s.subtasks, sid)
		}
	}
	return nil
}

// Comments

type CommentRepository struct{ s *Store }

func (r *CommentRepository) Create(_ context.Context, comment *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[comment.TaskID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := r.s.users[comment.UserID]; !ok {
		return repository.ErrInvalidReference
	}
	r.s.comments[comment.ID] = *comment
	return nil
}

func (r *CommentRepository) ListByTask(_ context.Context, taskID uuid.UUID) ([]model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var comments []model.Comment
	for _, c := range r.s.comments {
		if c.TaskID == taskID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}
		return comments[i].ID.String() < comments[j].ID.String()
	})
	return comments, nil
}

func (r *CommentRepository) CountByTasks(_ context.Context, taskIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[uuid.UUID]bool, len(taskIDs))
	for _, id := range taskIDs {
		wanted[id] = true
	}
	counts := make(map[uuid.UUID]int64, len(taskIDs))
	for _, c := range r.s.comments {
		if wanted[c.TaskID] {
			counts[c.TaskID]++
		}
	}
	return counts, nil
}

// Subtasks

type SubtaskRepository struct{ s *Store }

func (r *SubtaskRepository) Create(_ context.Context, subtask *model.Subtask) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkSubtaskRefs(subtask); err != nil {
		return err
	}
	r.s.subtasks[subtask.ID] = cloneSubtask(*subtask)
	return nil
}

func (r *SubtaskRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Subtask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.subtasks[id]
	if !ok {
		return nil, repository.ErrSubtaskNotFound
	}
	st = cloneSubtask(st)
	return &st, nil
}

func (r *SubtaskRepository) ListByTask(_ context.Context, taskID uuid.UUID) ([]model.Subtask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var subtasks []model.Subtask
	for _, st := range r.s.subtasks {
		if st.TaskID == taskID {
			subtasks = append(subtasks, cloneSubtask(st))
		}
	}
	sort.Slice(subtasks, func(i, j int) bool {
		if !subtasks[i].CreatedAt.Equal(subtasks[j].CreatedAt) {
			return subtasks[i].CreatedAt.Before(subtasks[j].CreatedAt)
		}
		return subtasks[i].ID.String() < subtasks[j].ID.String()
	})
	return subtasks, nil
}

func (r *SubtaskRepository) Update(_ context.Context, subtask *model.Subtask) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.subtasks[subtask.ID]
	if !ok {
		return repository.ErrSubtaskNotFound
	}
	if subtask.AssignedTo != nil {
		if _, ok := r.s.users[*subtask.AssignedTo]; !ok {
			return repository.ErrInvalidReference
		}
	}

	stored.Title = subtask.Title
	stored.Description = subtask.Description
	stored.Status = subtask.Status
	stored.Priority = subtask.Priority
	stored.DueDate = subtask.DueDate
	stored.AssignedTo = subtask.AssignedTo
	stored.UpdatedAt = subtask.UpdatedAt
	r.s.subtasks[subtask.ID] = cloneSubtask(stored)
	return nil
}

func (r *SubtaskRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.subtasks[id]; !ok {
		return repository.ErrSubtaskNotFound
	}
	delete(r.s.subtasks, id)
	return nil
}

// helpers

// usersExist, checkTaskRefs and checkSubtaskRefs expect s.mu to be held.
func (s *Store) usersExist(ids []uuid.UUID) bool {
	for _, id := range ids {
		if _, ok := s.users[id]; !ok {
			return false
		}
	}
	return true
}

func (s *Store) checkTaskRefs(task *model.Task) error {
	if _, ok := s.projects[task.ProjectID]; !ok {
		return repository.ErrInvalidReference
	}
	if task.AssignedTo != nil {
		if _, ok := s.users[*task.AssignedTo]; !ok {
			return repository.ErrInvalidReference
		}
	}
	return nil
}

func (s *Store) checkSubtaskRefs(subtask *model.Subtask) error {
	if _, ok := s.tasks[subtask.TaskID]; !ok {
		return repository.ErrInvalidReference
	}
	if subtask.AssignedTo != nil {
		if _, ok := s.users[*subtask.AssignedTo]; !ok {
			return repository.ErrInvalidReference
		}
	}
	return nil
}

func (s *Store) filterTasks(keep func(model.Task) bool) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []model.Task
	for _, t := range s.tasks {
		if keep(t) {
			tasks = append(tasks, cloneTask(t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID.String() < tasks[j].ID.String()
	})
	return tasks
}

func cloneProject(p model.Project) model.Project {
	p.Members = append([]model.ProjectMember(nil), p.Members...)
	if p.Deadline != nil {
		d := *p.Deadline
		p.Deadline = &d
	}
	return p
}

func cloneTask(t model.Task) model.Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	if t.AssignedTo != nil {
		a := *t.AssignedTo
		t.AssignedTo = &a
	}
	return t
}

func cloneSubtask(st model.Subtask) model.Subtask {
	if st.DueDate != nil {
		d := *st.DueDate
		st.DueDate = &d
	}
	if st.AssignedTo != nil {
		a := *st.AssignedTo
		st.AssignedTo = &a
	}
	return st
}
