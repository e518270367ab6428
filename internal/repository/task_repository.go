package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"workflo/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit("Creator", "Assignee").Create(task).Error
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Assignee").
		First(&task, "id = ?", id)
	if result.Error != nil {
		return nil, translate(result.Error, ErrTaskNotFound, nil)
	}
	return &task, nil
}

// ListByBoard retrieves the tasks of a board, most recently updated first,
// optionally filtered by a substring of the title or description
func (r *TaskRepository) ListByBoard(ctx context.Context, boardID uuid.UUID, query string) ([]model.Task, error) {
	var tasks []model.Task
	q := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Assignee").
		Where("board_id = ?", boardID)

	if query != "" {
		pattern := likePattern(query)
		q = q.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	if err := q.Order("updated_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Model(task).
		Select("*").
		Omit("id", "created_at", "board_id", "created_by", "Creator", "Assignee").
		Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
