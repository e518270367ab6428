package service

import (
	"context"
	"errors"
	"strings"

	"workflo/internal/model"
	"workflo/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateBoardInput struct {
	Title       string
	Description string
}

type UpdateBoardInput struct {
	Title       *string
	Description *string
}

type BoardService struct {
	boards BoardStore
	guard  *Guard
	logger *zap.Logger
}

func NewBoardService(boards BoardStore, guard *Guard, logger *zap.Logger) *BoardService {
	return &BoardService{boards: boards, guard: guard, logger: logger}
}

// Create stores the board and makes the owner its first ADMIN.
func (s *BoardService) Create(ctx context.Context, ownerID uuid.UUID, in CreateBoardInput) (*model.Board, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errorf(ErrValidation, "title is required")
	}

	board := &model.Board{
		Title:       title,
		Description: in.Description,
		OwnerID:     ownerID,
	}
	owner := &model.Contributor{
		UserID: ownerID,
		Role:   model.RoleAdmin,
		Status: model.StatusAccepted,
	}
	if err := s.boards.CreateWithOwner(ctx, board, owner); err != nil {
		return nil, storeError("create board", err)
	}
	return board, nil
}

// List returns the boards the user holds an accepted role on.
func (s *BoardService) List(ctx context.Context, userID uuid.UUID, filter repository.BoardFilter) ([]model.Board, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	boards, err := s.boards.ListForMember(ctx, userID, filter)
	if err != nil {
		return nil, storeError("list boards", err)
	}
	if boards == nil {
		boards = []model.Board{}
	}
	return boards, nil
}

func (s *BoardService) Get(ctx context.Context, userID, boardID uuid.UUID) (*model.Board, error) {
	return s.authorized(ctx, userID, boardID, ActionViewBoard)
}

func (s *BoardService) Update(ctx context.Context, userID, boardID uuid.UUID, in UpdateBoardInput) (*model.Board, error) {
	board, err := s.authorized(ctx, userID, boardID, ActionUpdateBoard)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, errorf(ErrValidation, "title cannot be empty")
		}
		board.Title = title
	}
	if in.Description != nil {
		board.Description = *in.Description
	}

	if err := s.boards.Update(ctx, board); err != nil {
		return nil, storeError("update board", err)
	}
	return board, nil
}

func (s *BoardService) Trash(ctx context.Context, userID, boardID uuid.UUID) (*model.Board, error) {
	return s.setTrashed(ctx, userID, boardID, true)
}

func (s *BoardService) Restore(ctx context.Context, userID, boardID uuid.UUID) (*model.Board, error) {
	return s.setTrashed(ctx, userID, boardID, false)
}

func (s *BoardService) setTrashed(ctx context.Context, userID, boardID uuid.UUID, trashed bool) (*model.Board, error) {
	if _, err := s.authorized(ctx, userID, boardID, ActionTrashBoard); err != nil {
		return nil, err
	}

	board, err := s.boards.SetTrashed(ctx, boardID, trashed)
	if err != nil {
		return nil, storeError("trash board", err)
	}

	s.logger.Info("Board trash state changed",
		zap.String("board_id", boardID.String()),
		zap.String("user_id", userID.String()),
		zap.Bool("trashed", trashed),
	)
	return board, nil
}

// Delete permanently removes a trashed board with its tasks and contributors.
func (s *BoardService) Delete(ctx context.Context, userID, boardID uuid.UUID) (*model.Board, error) {
	board, err := s.authorized(ctx, userID, boardID, ActionDeleteBoard)
	if err != nil {
		return nil, err
	}
	if !board.Trashed {
		return nil, ErrBoardNotTrashed
	}

	deleted, err := s.boards.DeleteCascade(ctx, boardID)
	if errors.Is(err, repository.ErrBoardNotTrashed) {
		// восстановлена между проверкой и удалением
		return nil, ErrBoardNotTrashed
	}
	if err != nil {
		return nil, storeError("delete board", err)
	}

	s.logger.Info("Board deleted",
		zap.String("board_id", boardID.String()),
		zap.String("user_id", userID.String()),
	)
	return deleted, nil
}

// authorized loads the board and checks the caller may perform action on it.
// A missing board is reported before any permission check.
func (s *BoardService) authorized(ctx context.Context, userID, boardID uuid.UUID, action Action) (*model.Board, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, storeError("get board", err)
	}
	if _, err := s.guard.Authorize(ctx, userID, boardID, action); err != nil {
		return nil, err
	}
	return board, nil
}
