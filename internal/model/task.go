package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"not null"`
	Description string
	Status      TaskStatus                   `gorm:"type:text;not null"`
	Priority    TaskPriority                 `gorm:"type:text;not null"`
	Subtasks    datatypes.JSONSlice[Subtask] `gorm:"type:jsonb;not null"`
	BoardID     uuid.UUID                    `gorm:"type:uuid;not null;index"`
	CreatedBy   uuid.UUID                    `gorm:"type:uuid;not null"`
	AssignedTo  *uuid.UUID                   `gorm:"type:uuid"`
	Deadline    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Creator  User  `gorm:"foreignKey:CreatedBy"`
	Assignee *User `gorm:"foreignKey:AssignedTo"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Subtasks == nil {
		t.Subtasks = datatypes.JSONSlice[Subtask]{}
	}
	return nil
}

// Subtask is an ordered checklist entry stored inline with its task.
type Subtask struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type TaskStatus string

const (
	TaskNotStarted TaskStatus = "NOT STARTED"
	TaskInProgress TaskStatus = "IN PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
