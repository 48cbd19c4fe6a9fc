package model

import (
	"time"

	"github.com/google/uuid"
)

// Subtask is a smaller unit of work under a task. It has its own status,
// priority and assignee.
type Subtask struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TaskID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title       string     `gorm:"not null"`
	Description string
	Status      Status     `gorm:"type:text;not null"`
	Priority    Priority   `gorm:"type:text;not null"`
	DueDate     *time.Time
	AssignedTo  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
