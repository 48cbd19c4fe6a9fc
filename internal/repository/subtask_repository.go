package repository

import (
	"context"
	"errors"

	"collabtask/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubtaskRepository struct {
	db *gorm.DB
}

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

func (r *SubtaskRepository) Create(ctx context.Context, subtask *model.Subtask) error {
	err := r.db.WithContext(ctx).Create(subtask).Error
	if isForeignKeyViolation(err) {
		return ErrInvalidReference
	}
	return err
}

func (r *SubtaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Subtask, error) {
	var subtask model.Subtask
	err := r.db.WithContext(ctx).First(&subtask, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubtaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (r *SubtaskRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Subtask, error) {
	var subtasks []model.Subtask
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at, id").
		Find(&subtasks).Error
	return subtasks, err
}

// Update writes every editable field. Zero rows affected means the subtask is gone.
func (r *SubtaskRepository) Update(ctx context.Context, subtask *model.Subtask) error {
	result := r.db.WithContext(ctx).Model(&model.Subtask{}).
		Where("id = ?", subtask.ID).
		Updates(map[string]interface{}{
			"title":       subtask.Title,
			"description": subtask.Description,
			"status":      subtask.Status,
			"priority":    subtask.Priority,
			"due_date":    subtask.DueDate,
			"assigned_to": subtask.AssignedTo,
			"updated_at":  subtask.UpdatedAt,
		})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return ErrInvalidReference
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubtaskNotFound
	}
	return nil
}

func (r *SubtaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Subtask{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubtaskNotFound
	}
	return nil
}
