package service

import (
	"context"

	"collabtask/internal/model"

	"github.com/google/uuid"
)

// Storage contracts. Implemented by the gorm repositories and by the
// in-memory store. Lookups of a missing row return the repository package's
// not-found sentinels; writes naming a missing row return
// repository.ErrInvalidReference.

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByName(ctx context.Context, name string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
}

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project, replaceMembers bool) error
	AddMember(ctx context.Context, member *model.ProjectMember) error
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, assignee *uuid.UUID) ([]model.Task, error)
	ListByAssignee(ctx context.Context, userID uuid.UUID) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Comment, error)
	CountByTasks(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type SubtaskRepository interface {
	Create(ctx context.Context, subtask *model.Subtask) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Subtask, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Subtask, error)
	Update(ctx context.Context, subtask *model.Subtask) error
	Delete(ctx context.Context, id uuid.UUID) error
}
