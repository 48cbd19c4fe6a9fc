package repository

import (
	"context"
	"errors"

	"collabtask/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func orderMembers(db *gorm.DB) *gorm.DB {
	return db.Order("created_at, user_id")
}

// Create inserts the project and its member rows in one transaction.
func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			if isForeignKeyViolation(err) {
				return ErrInvalidReference
			}
			return err
		}
		if len(project.Members) == 0 {
			return nil
		}
		if err := tx.Create(&project.Members).Error; err != nil {
			if isForeignKeyViolation(err) {
				return ErrInvalidReference
			}
			return err
		}
		return nil
	})
}

// GetByID loads a project with its members.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Preload("Members", orderMembers).
		Where("id = ?", id).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListForUser returns projects the user owns or belongs to, newest first.
func (r *ProjectRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	db := r.db.WithContext(ctx)
	memberOf := db.Model(&model.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)

	var projects []model.Project
	err := db.
		Preload("Members", orderMembers).
		Where("owner_id = ? OR id IN (?)", userID, memberOf).
		Order("created_at DESC, id").
		Find(&projects).Error
	return projects, err
}

// Update writes title, description and deadline. When replaceMembers is set
// the member rows are swapped for project.Members in the same transaction.
func (r *ProjectRepository) Update(ctx context.Context, project *model.Project, replaceMembers bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Project{}).
			Where("id = ?", project.ID).
			Updates(map[string]interface{}{
				"title":       project.Title,
				"description": project.Description,
				"deadline":    project.Deadline,
				"updated_at":  project.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProjectNotFound
		}
		if !replaceMembers {
			return nil
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&model.ProjectMember{}).Error; err != nil {
			return err
		}
		if len(project.Members) == 0 {
			return nil
		}
		if err := tx.Create(&project.Members).Error; err != nil {
			if isForeignKeyViolation(err) {
				return ErrInvalidReference
			}
			return err
		}
		return nil
	})
}

// AddMember is a no-op when the user is already a member.
func (r *ProjectRepository) AddMember(ctx context.Context, member *model.ProjectMember) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(member).Error
	if isForeignKeyViolation(err) {
		return ErrInvalidReference
	}
	return err
}

func (r *ProjectRepository) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.ProjectMember{}).Error
}
