package service

import (
	"context"
	"strings"

	"workflo/internal/model"
	"workflo/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateContributorInput struct {
	BoardID uuid.UUID
	UserID  uuid.UUID
	Role    model.Role
}

type ContributorService struct {
	boards       BoardStore
	users        UserStore
	contributors ContributorStore
	guard        *Guard
	logger       *zap.Logger
}

func NewContributorService(
	boards BoardStore,
	users UserStore,
	contributors ContributorStore,
	guard *Guard,
	logger *zap.Logger,
) *ContributorService {
	return &ContributorService{
		boards:       boards,
		users:        users,
		contributors: contributors,
		guard:        guard,
		logger:       logger,
	}
}

// Create adds a PENDING record that the invited user accepts or declines later.
func (s *ContributorService) Create(ctx context.Context, actorID uuid.UUID, in CreateContributorInput) (*model.Contributor, error) {
	if !in.Role.Valid() {
		return nil, errorf(ErrValidation, "role must be one of ADMIN, EDITOR, VIEWER")
	}
	if _, err := s.boards.GetByID(ctx, in.BoardID); err != nil {
		return nil, storeError("get board", err)
	}
	if _, err := s.guard.Authorize(ctx, actorID, in.BoardID, ActionManageContributors); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return nil, storeError("get user", err)
	}

	contributor := &model.Contributor{
		BoardID:   in.BoardID,
		UserID:    in.UserID,
		Role:      in.Role,
		Status:    model.StatusPending,
		InvitedBy: &actorID,
	}
	if err := s.contributors.Create(ctx, contributor); err != nil {
		return nil, storeError("create contributor", err)
	}
	return s.reload(ctx, contributor.ID)
}

// GetRole returns the role of the user's accepted record, or "" if there is none.
func (s *ContributorService) GetRole(ctx context.Context, userID, boardID uuid.UUID) (model.Role, error) {
	return s.guard.Role(ctx, userID, boardID)
}

func (s *ContributorService) UpdateRole(ctx context.Context, actorID, contributorID uuid.UUID, role model.Role) (*model.Contributor, error) {
	if !role.Valid() {
		return nil, errorf(ErrValidation, "role must be one of ADMIN, EDITOR, VIEWER")
	}

	contributor, err := s.contributors.GetByID(ctx, contributorID)
	if err != nil {
		return nil, storeError("get contributor", err)
	}
	if _, err := s.guard.Authorize(ctx, actorID, contributor.BoardID, ActionManageContributors); err != nil {
		return nil, err
	}
	if contributor.Role == role {
		return contributor, nil
	}
	if role != model.RoleAdmin {
		if err := s.ensureNotLastAdmin(ctx, contributor); err != nil {
			return nil, err
		}
	}

	if err := s.contributors.UpdateRole(ctx, contributorID, role); err != nil {
		return nil, storeError("update contributor", err)
	}
	return s.reload(ctx, contributorID)
}

// Remove deletes a contributor record. ADMINs may remove anyone; any
// contributor may remove their own record to leave the board.
func (s *ContributorService) Remove(ctx context.Context, actorID, contributorID uuid.UUID) (*model.Contributor, error) {
	contributor, err := s.contributors.GetByID(ctx, contributorID)
	if err != nil {
		return nil, storeError("get contributor", err)
	}
	if contributor.UserID != actorID {
		if _, err := s.guard.Authorize(ctx, actorID, contributor.BoardID, ActionManageContributors); err != nil {
			return nil, err
		}
	}
	if err := s.ensureNotLastAdmin(ctx, contributor); err != nil {
		return nil, err
	}

	if err := s.contributors.Delete(ctx, contributorID); err != nil {
		return nil, storeError("delete contributor", err)
	}

	s.logger.Info("Contributor removed",
		zap.String("board_id", contributor.BoardID.String()),
		zap.String("user_id", contributor.UserID.String()),
		zap.String("removed_by", actorID.String()),
	)
	return contributor, nil
}

// ListByBoard returns the board's records, newest first. Any role may list.
func (s *ContributorService) ListByBoard(ctx context.Context, actorID, boardID uuid.UUID, filter repository.ContributorFilter) ([]model.Contributor, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, errorf(ErrValidation, "role must be one of ADMIN, EDITOR, VIEWER")
	}
	filter.Query = strings.TrimSpace(filter.Query)

	if _, err := s.boards.GetByID(ctx, boardID); err != nil {
		return nil, storeError("get board", err)
	}
	if _, err := s.guard.Authorize(ctx, actorID, boardID, ActionViewBoard); err != nil {
		return nil, err
	}

	contributors, err := s.contributors.ListByBoard(ctx, boardID, filter)
	if err != nil {
		return nil, storeError("list contributors", err)
	}
	if contributors == nil {
		contributors = []model.Contributor{}
	}
	return contributors, nil
}

// Search looks contributors up by username or email across every board the
// actor has accepted a seat on.
func (s *ContributorService) Search(ctx context.Context, actorID uuid.UUID, query string) ([]model.Contributor, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errorf(ErrValidation, "query parameter is missing")
	}

	contributors, err := s.contributors.SearchForMember(ctx, actorID, query)
	if err != nil {
		return nil, storeError("search contributors", err)
	}
	if contributors == nil {
		contributors = []model.Contributor{}
	}
	return contributors, nil
}

// Respond lets the invited user accept or decline a PENDING record.
func (s *ContributorService) Respond(ctx context.Context, actorID, contributorID uuid.UUID, accept bool) (*model.Contributor, error) {
	contributor, err := s.contributors.GetByID(ctx, contributorID)
	if err != nil {
		return nil, storeError("get contributor", err)
	}
	if contributor.UserID != actorID {
		return nil, errorf(ErrForbidden, "this invitation belongs to another user")
	}
	if contributor.Status != model.StatusPending {
		return nil, errorf(ErrConflict, "invitation was already %s", strings.ToLower(string(contributor.Status)))
	}

	status := model.StatusDeclined
	if accept {
		status = model.StatusAccepted
	}
	if err := s.contributors.UpdateStatus(ctx, contributorID, status); err != nil {
		return nil, storeError("update contributor", err)
	}
	return s.reload(ctx, contributorID)
}

// ensureNotLastAdmin refuses to strip a board of its only accepted ADMIN.
func (s *ContributorService) ensureNotLastAdmin(ctx context.Context, contributor *model.Contributor) error {
	if contributor.Role != model.RoleAdmin || contributor.Status != model.StatusAccepted {
		return nil
	}
	admins, err := s.contributors.CountAdmins(ctx, contributor.BoardID)
	if err != nil {
		return storeError("count admins", err)
	}
	if admins <= 1 {
		return errorf(ErrConflict, "a board must keep at least one admin")
	}
	return nil
}

func (s *ContributorService) reload(ctx context.Context, id uuid.UUID) (*model.Contributor, error) {
	contributor, err := s.contributors.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get contributor", err)
	}
	return contributor, nil
}
