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

// ProjectService owns project records and their member sets. The owner is
// always a member.
type ProjectService struct {
	projects ProjectRepository
	users    UserRepository
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewProjectService(projects ProjectRepository, users UserRepository, log logrus.FieldLogger) *ProjectService {
	return &ProjectService{projects: projects, users: users, log: log, now: now}
}

type CreateProjectInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	OwnerID     string   `json:"ownerID"`
	Members     []string `json:"members"`
	Deadline    string   `json:"deadline"`
}

func (in CreateProjectInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, maxTitleLength)),
		validation.Field(&in.Description, validation.Required),
	)
}

// UpdateProjectInput is a partial update; nil fields are left unchanged.
type UpdateProjectInput struct {
	ProjectID   string    `json:"projectID"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Deadline    *string   `json:"deadline"`
	Members     *[]string `json:"members"`
}

func (in UpdateProjectInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ProjectID, validation.Required),
		validation.Field(&in.Title, validation.NilOrNotEmpty, validation.Length(1, maxTitleLength)),
		validation.Field(&in.Description, validation.NilOrNotEmpty),
	)
}

// CreateProject validates every reference before writing anything. When
// actor is set the actor owns the project.
func (s *ProjectService) CreateProject(ctx context.Context, actor string, in CreateProjectInput) (*ProjectView, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	owner, err := actingAs(actor, in.OwnerID)
	if err != nil {
		return nil, err
	}
	in.OwnerID = owner
	if err := checkInput(in.Validate()); err != nil {
		return nil, err
	}
	if in.OwnerID == "" {
		return nil, ErrInvalidOwner
	}
	deadline, err := parseDate("deadline", in.Deadline)
	if err != nil {
		return nil, err
	}

	ownerID, ok := parseID(in.OwnerID)
	if !ok {
		return nil, ErrInvalidOwner
	}
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidOwner
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}

	memberIDs, err := s.resolveMembers(ctx, in.Members)
	if err != nil {
		return nil, err
	}
	memberIDs = withOwner(memberIDs, ownerID)

	ts := s.now()
	projectID := uuid.New()
	project := &model.Project{
		ID:          projectID,
		Title:       in.Title,
		Description: in.Description,
		Deadline:    deadline,
		OwnerID:     ownerID,
		CreatedAt:   ts,
		UpdatedAt:   ts,
		Members:     membersOf(projectID, memberIDs, ts),
	}

	if err := s.projects.Create(ctx, project); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, ErrInvalidMember
		}
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"project_id": project.ID,
		"owner_id":   ownerID,
		"members":    len(project.Members),
	}).Info("project created")

	return s.view(ctx, project)
}

// UpdateProject applies a partial update. A members replacement keeps the owner.
func (s *ProjectService) UpdateProject(ctx context.Context, actor string, in UpdateProjectInput) (*ProjectView, error) {
	if err := checkInput(in.Validate()); err != nil {
		return nil, err
	}
	project, err := s.load(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(project, actor); err != nil {
		return nil, err
	}

	if in.Title != nil {
		project.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		project.Description = strings.TrimSpace(*in.Description)
	}
	if in.Deadline != nil {
		if project.Deadline, err = parseDate("deadline", *in.Deadline); err != nil {
			return nil, err
		}
	}
	if project.Title == "" || project.Description == "" {
		return nil, invalidInput("title and description cannot be blank.")
	}

	ts := s.now()
	replaceMembers := in.Members != nil
	if replaceMembers {
		memberIDs, err := s.resolveMembers(ctx, *in.Members)
		if err != nil {
			return nil, err
		}
		project.Members = membersOf(project.ID, withOwner(memberIDs, project.OwnerID), ts)
	}
	project.UpdatedAt = ts

	if err := s.projects.Update(ctx, project, replaceMembers); err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectNotFound):
			return nil, ErrProjectNotFound
		case errors.Is(err, repository.ErrInvalidReference):
			return nil, ErrInvalidMember
		}
		return nil, fmt.Errorf("update project: %w", err)
	}

	s.log.WithField("project_id", project.ID).Info("project updated")
	return s.view(ctx, project)
}

// AddMember is idempotent.
func (s *ProjectService) AddMember(ctx context.Context, actor, projectID, userID string) (*ProjectView, error) {
	project, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(project, actor); err != nil {
		return nil, err
	}
	memberIDs, err := s.resolveMembers(ctx, []string{userID})
	if err != nil {
		return nil, err
	}

	member := &model.ProjectMember{ProjectID: project.ID, UserID: memberIDs[0], CreatedAt: s.now()}
	if err := s.projects.AddMember(ctx, member); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, ErrInvalidMember.withDetails([]string{userID})
		}
		return nil, fmt.Errorf("add member: %w", err)
	}

	s.log.WithFields(logrus.Fields{"project_id": project.ID, "user_id": member.UserID}).Info("project member added")
	return s.reload(ctx, project.ID)
}

// RemoveMember refuses to remove the owner. Removing a non-member is a no-op.
func (s *ProjectService) RemoveMember(ctx context.Context, actor, projectID, userID string) (*ProjectView, error) {
	project, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(project, actor); err != nil {
		return nil, err
	}
	id, ok := parseID(userID)
	if !ok {
		return nil, ErrUserNotFound
	}
	if id == project.OwnerID {
		return nil, invalidInput("The project owner cannot be removed from the project.")
	}

	if err := s.projects.RemoveMember(ctx, project.ID, id); err != nil {
		return nil, fmt.Errorf("remove member: %w", err)
	}

	s.log.WithFields(logrus.Fields{"project_id": project.ID, "user_id": id}).Info("project member removed")
	return s.reload(ctx, project.ID)
}

func (s *ProjectService) load(ctx context.Context, projectID string) (*model.Project, error) {
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
	return project, nil
}

func (s *ProjectService) reload(ctx context.Context, id uuid.UUID) (*ProjectView, error) {
	project, err := s.load(ctx, id.String())
	if err != nil {
		return nil, err
	}
	return s.view(ctx, project)
}

func (s *ProjectService) view(ctx context.Context, project *model.Project) (*ProjectView, error) {
	dir, err := loadUsers(ctx, s.users, project.MemberIDs())
	if err != nil {
		return nil, err
	}
	view := projectView(project, dir)
	return &view, nil
}

// resolveMembers parses and deduplicates member IDs, reporting every ID that
// is malformed or names no user.
func (s *ProjectService) resolveMembers(ctx context.Context, raw []string) ([]uuid.UUID, error) {
	var (
		ids     []uuid.UUID
		invalid []string
		seen    = make(map[uuid.UUID]bool, len(raw))
	)
	for _, r := range raw {
		id, ok := parseID(r)
		if !ok {
			invalid = append(invalid, r)
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	dir, err := loadUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := dir[id]; !ok {
			invalid = append(invalid, id.String())
		}
	}
	if len(invalid) > 0 {
		return nil, ErrInvalidMember.withDetails(invalid)
	}
	return ids, nil
}

// authorize lets any member mutate the project. Unauthenticated requests
// (actor == "") are only possible when authentication is optional.
func authorize(project *model.Project, actor string) error {
	if actor == "" {
		return nil
	}
	id, ok := parseID(actor)
	if !ok || (id != project.OwnerID && !project.HasMember(id)) {
		return ErrForbidden
	}
	return nil
}

// actingAs resolves the user a request acts for. A body value is only
// honoured for unauthenticated requests or when it names the actor.
func actingAs(actor, claimed string) (string, error) {
	claimed = strings.TrimSpace(claimed)
	if actor == "" {
		return claimed, nil
	}
	if claimed == "" {
		return actor, nil
	}
	id, ok := parseID(claimed)
	if !ok || id.String() != actor {
		return "", ErrForbidden
	}
	return actor, nil
}

func withOwner(ids []uuid.UUID, owner uuid.UUID) []uuid.UUID {
	for _, id := range ids {
		if id == owner {
			return ids
		}
	}
	return append([]uuid.UUID{owner}, ids...)
}

func membersOf(projectID uuid.UUID, ids []uuid.UUID, ts time.Time) []model.ProjectMember {
	members := make([]model.ProjectMember, 0, len(ids))
	for _, id := range ids {
		members = append(members, model.ProjectMember{ProjectID: projectID, UserID: id, CreatedAt: ts})
	}
	return members
}
