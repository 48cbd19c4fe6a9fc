package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"collabtask/internal/model"
	"collabtask/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CreateSubtaskInput names the assignee by username, as the board client does.
type CreateSubtaskInput struct {
	TaskID           string `json:"taskID"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Status           string `json:"status"`
	Priority         string `json:"priority"`
	DueDate          string `json:"dueDate"`
	AssignedUsername string `json:"assignedUsername"`
}

func (in CreateSubtaskInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.TaskID, validation.Required),
		validation.Field(&in.Title, validation.Required, validation.Length(1, maxTitleLength)),
	)
}

// UpdateSubtaskInput is a partial update; nil fields are left unchanged.
type UpdateSubtaskInput struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Status           *string `json:"status"`
	Priority         *string `json:"priority"`
	DueDate          *string `json:"dueDate"`
	AssignedUsername *string `json:"assignedUsername"`
}

func (in UpdateSubtaskInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.NilOrNotEmpty, validation.Length(1, maxTitleLength)),
	)
}

func (s *TaskService) CreateSubtask(ctx context.Context, in CreateSubtaskInput) (*SubtaskView, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := checkInput(in.Validate()); err != nil {
		return nil, err
	}
	status := model.DefaultStatus
	priority := model.DefaultPriority
	var err error
	if in.Status != "" {
		if status, err = parseStatus(in.Status); err != nil {
			return nil, err
		}
	}
	if in.Priority != "" {
		if priority, err = parsePriority(in.Priority); err != nil {
			return nil, err
		}
	}
	dueDate, err := parseDate("dueDate", in.DueDate)
	if err != nil {
		return nil, err
	}

	task, err := s.load(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	assignee, err := s.assigneeByName(ctx, in.AssignedUsername)
	if err != nil {
		return nil, err
	}

	ts := s.now()
	subtask := &model.Subtask{
		ID:          uuid.New(),
		TaskID:      task.ID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		AssignedTo:  assignee,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if err := s.subtasks.Create(ctx, subtask); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("create subtask: %w", err)
	}

	s.log.WithFields(logrus.Fields{"subtask_id": subtask.ID, "task_id": task.ID}).Info("subtask created")
	return s.subtaskView(ctx, subtask)
}

func (s *TaskService) ListSubtasks(ctx context.Context, taskID string) ([]SubtaskView, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	subtasks, err := s.subtasks.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	return subtaskViews(ctx, s.users, subtasks)
}

// UpdateSubtask applies the fields present in the request. An empty
// assignedUsername or "Unassigned" clears the assignee.
func (s *TaskService) UpdateSubtask(ctx context.Context, subtaskID string, in UpdateSubtaskInput) (*SubtaskView, error) {
	subtask, err := s.loadSubtask(ctx, subtaskID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		in.Title = &trimmed
	}
	if err := checkInput(in.Validate()); err != nil {
		return nil, err
	}

	if in.Title != nil {
		subtask.Title = *in.Title
	}
	if in.Description != nil {
		subtask.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		if subtask.Status, err = parseStatus(*in.Status); err != nil {
			return nil, err
		}
	}
	if in.Priority != nil {
		if subtask.Priority, err = parsePriority(*in.Priority); err != nil {
			return nil, err
		}
	}
	if in.DueDate != nil {
		if subtask.DueDate, err = parseDate("dueDate", *in.DueDate); err != nil {
			return nil, err
		}
	}
	if in.AssignedUsername != nil {
		if subtask.AssignedTo, err = s.assigneeByName(ctx, *in.AssignedUsername); err != nil {
			return nil, err
		}
	}
	subtask.UpdatedAt = s.now()

	if err := s.subtasks.Update(ctx, subtask); err != nil {
		switch {
		case errors.Is(err, repository.ErrSubtaskNotFound):
			return nil, ErrSubtaskNotFound
		case errors.Is(err, repository.ErrInvalidReference):
			return nil, ErrInvalidAssignee
		}
		return nil, fmt.Errorf("update subtask: %w", err)
	}

	s.log.WithFields(logrus.Fields{"subtask_id": subtask.ID, "status": subtask.Status}).Info("subtask updated")
	return s.subtaskView(ctx, subtask)
}

func (s *TaskService) DeleteSubtask(ctx context.Context, subtaskID string) error {
	id, ok := parseID(subtaskID)
	if !ok {
		return ErrSubtaskNotFound
	}
	if err := s.subtasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSubtaskNotFound) {
			return ErrSubtaskNotFound
		}
		return fmt.Errorf("delete subtask: %w", err)
	}

	s.log.WithField("subtask_id", id).Info("subtask deleted")
	return nil
}

func (s *TaskService) loadSubtask(ctx context.Context, subtaskID string) (*model.Subtask, error) {
	id, ok := parseID(subtaskID)
	if !ok {
		return nil, ErrSubtaskNotFound
	}
	subtask, err := s.subtasks.GetByID(ctx, id)
	if errors.Is(err, repository.ErrSubtaskNotFound) {
		return nil, ErrSubtaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subtask: %w", err)
	}
	return subtask, nil
}

func (s *TaskService) subtaskView(ctx context.Context, subtask *model.Subtask) (*SubtaskView, error) {
	views, err := subtaskViews(ctx, s.users, []model.Subtask{*subtask})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
