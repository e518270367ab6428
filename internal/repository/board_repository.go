package repository

import (
	"context"
	"errors"

	"workflo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BoardFilter narrows ListForMember. A nil Trashed returns both states.
type BoardFilter struct {
	Trashed *bool
	Query   string
}

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// CreateWithOwner inserts the board and its owner's contributor record in one transaction.
func (r *BoardRepository) CreateWithOwner(ctx context.Context, board *model.Board, owner *model.Contributor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return err
		}
		owner.BoardID = board.ID
		return translate(tx.Omit("User").Create(owner).Error, nil, ErrDuplicateContributor)
	})
}

func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		return nil, translate(err, ErrBoardNotFound, nil)
	}
	return &board, nil
}

// ListForMember returns boards on which userID holds an accepted contributor record.
func (r *BoardRepository) ListForMember(ctx context.Context, userID uuid.UUID, filter BoardFilter) ([]model.Board, error) {
	var boards []model.Board

	q := r.db.WithContext(ctx).
		Joins("JOIN contributors ON contributors.board_id = boards.id").
		Where("contributors.user_id = ? AND contributors.status = ?", userID, model.StatusAccepted)

	if filter.Trashed != nil {
		q = q.Where("boards.trashed = ?", *filter.Trashed)
	}
	if filter.Query != "" {
		q = q.Where("boards.title ILIKE ?", likePattern(filter.Query))
	}

	err := q.Order("boards.updated_at DESC").Find(&boards).Error
	return boards, err
}

func (r *BoardRepository) Update(ctx context.Context, board *model.Board) error {
	result := r.db.WithContext(ctx).Model(board).
		Select("title", "description", "updated_at").
		Updates(board)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBoardNotFound
	}
	return nil
}

func (r *BoardRepository) SetTrashed(ctx context.Context, id uuid.UUID, trashed bool) (*model.Board, error) {
	result := r.db.WithContext(ctx).Model(&model.Board{}).
		Where("id = ?", id).
		Update("trashed", trashed)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrBoardNotFound
	}
	return r.GetByID(ctx, id)
}

// DeleteCascade removes the board's tasks, then its contributors, then the
// board itself, all in one transaction. It returns the deleted board.
// Only a trashed board is deleted; the row stays locked until commit so a
// concurrent restore cannot slip in.
func (r *BoardRepository) DeleteCascade(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND trashed = ?", id, true).
			First(&board).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			var count int64
			if err := tx.Model(&model.Board{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrBoardNotFound
			}
			return ErrBoardNotTrashed
		}
		if err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.Contributor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Board{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &board, nil
}
