package service

import (
	"context"
	"time"

	"workflo/internal/model"
	"workflo/internal/repository"

	"github.com/google/uuid"
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type BoardStore interface {
	CreateWithOwner(ctx context.Context, board *model.Board, owner *model.Contributor) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error)
	ListForMember(ctx context.Context, userID uuid.UUID, filter repository.BoardFilter) ([]model.Board, error)
	Update(ctx context.Context, board *model.Board) error
	SetTrashed(ctx context.Context, id uuid.UUID, trashed bool) (*model.Board, error)
	DeleteCascade(ctx context.Context, id uuid.UUID) (*model.Board, error)
}

type ContributorStore interface {
	Create(ctx context.Context, contributor *model.Contributor) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Contributor, error)
	FindByUserAndBoard(ctx context.Context, userID, boardID uuid.UUID) (*model.Contributor, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID, filter repository.ContributorFilter) ([]model.Contributor, error)
	SearchForMember(ctx context.Context, userID uuid.UUID, query string) ([]model.Contributor, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ContributorStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountAdmins(ctx context.Context, boardID uuid.UUID) (int64, error)
}

type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID, query string) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RedemptionLedger makes invitation tokens single-use. Redeem returns
// cache.ErrAlreadyRedeemed for an id seen before.
type RedemptionLedger interface {
	Redeem(ctx context.Context, id, outcome string, expiresAt time.Time) error
	Release(ctx context.Context, id string) error
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	GenerateToken(userID uuid.UUID) (string, error)
}
