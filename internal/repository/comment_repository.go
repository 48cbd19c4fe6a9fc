package repository

import (
	"context"

	"collabtask/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	err := r.db.WithContext(ctx).Create(comment).Error
	if isForeignKeyViolation(err) {
		return ErrInvalidReference
	}
	return err
}

// ListByTask returns a task's comments, oldest first.
func (r *CommentRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at, id").
		Find(&comments).Error
	return comments, err
}

// CountByTasks returns the number of comments per task. Tasks without
// comments are absent from the map.
func (r *CommentRepository) CountByTasks(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(taskIDs))
	if len(taskIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TaskID uuid.UUID
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Select("task_id, COUNT(*) AS count").
		Where("task_id IN ?", taskIDs).
		Group("task_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.TaskID] = row.Count
	}
	return counts, nil
}
