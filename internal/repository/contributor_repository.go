package repository

import (
	"context"

	"workflo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContributorFilter narrows ListByBoard. Query matches the joined user's
// username or email, case-insensitively.
type ContributorFilter struct {
	Role  model.Role
	Query string
}

type ContributorRepository struct {
	db *gorm.DB
}

func NewContributorRepository(db *gorm.DB) *ContributorRepository {
	return &ContributorRepository{db: db}
}

// Create вставляет запись; дубликат (board, user) отсекается уникальным индексом
func (r *ContributorRepository) Create(ctx context.Context, contributor *model.Contributor) error {
	err := r.db.WithContext(ctx).Omit("User").Create(contributor).Error
	return translate(err, nil, ErrDuplicateContributor)
}

// GetByID возвращает запись вместе с публичным профилем пользователя
func (r *ContributorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Contributor, error) {
	var contributor model.Contributor
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&contributor).Error
	if err != nil {
		return nil, translate(err, ErrContributorNotFound, nil)
	}
	return &contributor, nil
}

// FindByUserAndBoard возвращает единственную запись для пары (пользователь, доска)
func (r *ContributorRepository) FindByUserAndBoard(ctx context.Context, userID, boardID uuid.UUID) (*model.Contributor, error) {
	var contributor model.Contributor
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&contributor).Error
	if err != nil {
		return nil, translate(err, ErrContributorNotFound, nil)
	}
	return &contributor, nil
}

// ListByBoard возвращает участников доски, новые первыми
func (r *ContributorRepository) ListByBoard(ctx context.Context, boardID uuid.UUID, filter ContributorFilter) ([]model.Contributor, error) {
	var contributors []model.Contributor

	q := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = contributors.user_id").
		Where("contributors.board_id = ?", boardID)

	if filter.Role != "" {
		q = q.Where("contributors.role = ?", filter.Role)
	}
	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		q = q.Where("users.username ILIKE ? OR users.email ILIKE ?", pattern, pattern)
	}

	err := q.Order("contributors.created_at DESC").Find(&contributors).Error
	return contributors, err
}

// SearchForMember ищет участников по имени или email среди всех досок,
// где userID принят участником
func (r *ContributorRepository) SearchForMember(ctx context.Context, userID uuid.UUID, query string) ([]model.Contributor, error) {
	var contributors []model.Contributor
	pattern := likePattern(query)

	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = contributors.user_id").
		Where("contributors.board_id IN (SELECT mine.board_id FROM contributors AS mine WHERE mine.user_id = ? AND mine.status = ?)",
			userID, model.StatusAccepted).
		Where("users.username ILIKE ? OR users.email ILIKE ?", pattern, pattern).
		Order("contributors.created_at DESC").
		Find(&contributors).Error
	return contributors, err
}

func (r *ContributorRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	return r.updateColumn(ctx, id, "role", role)
}

func (r *ContributorRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ContributorStatus) error {
	return r.updateColumn(ctx, id, "status", status)
}

func (r *ContributorRepository) updateColumn(ctx context.Context, id uuid.UUID, column string, value interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.Contributor{}).
		Where("id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrContributorNotFound
	}
	return nil
}

func (r *ContributorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Contributor{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrContributorNotFound
	}
	return nil
}

// CountAdmins считает принятых администраторов доски
func (r *ContributorRepository) CountAdmins(ctx context.Context, boardID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Contributor{}).
		Where("board_id = ? AND role = ? AND status = ?", boardID, model.RoleAdmin, model.StatusAccepted).
		Count(&count).Error
	return count, err
}
