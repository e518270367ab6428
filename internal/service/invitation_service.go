package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"workflo/internal/auth"
	"workflo/internal/cache"
	"workflo/internal/mailer"
	"workflo/internal/model"
	"workflo/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	outcomeAccepted = "accepted"
	outcomeDeclined = "declined"
)

type IssueInviteInput struct {
	Email string
	Role  model.Role
}

// IssuedInvite is returned to the inviter. Token and Link stay valid even
// when the email could not be delivered.
type IssuedInvite struct {
	Token  string      `json:"invite_hash"`
	Link   string      `json:"link"`
	Invite auth.Invite `json:"invite"`
}

type InvitationService struct {
	boards       BoardStore
	users        UserStore
	contributors ContributorStore
	guard        *Guard
	signer       *auth.InviteSigner
	sender       mailer.Sender
	ledger       RedemptionLedger
	frontendURL  string
	logger       *zap.Logger
}

// NewInvitationService wires the service. ledger may be nil, in which case
// tokens can be redeemed more than once until they expire; the contributor
// uniqueness still prevents duplicate records.
func NewInvitationService(
	boards BoardStore,
	users UserStore,
	contributors ContributorStore,
	guard *Guard,
	signer *auth.InviteSigner,
	sender mailer.Sender,
	ledger RedemptionLedger,
	frontendURL string,
	logger *zap.Logger,
) *InvitationService {
	return &InvitationService{
		boards:       boards,
		users:        users,
		contributors: contributors,
		guard:        guard,
		signer:       signer,
		sender:       sender,
		ledger:       ledger,
		frontendURL:  frontendURL,
		logger:       logger,
	}
}

// Issue mints an invitation for email and mails the link. A delivery failure
// is returned together with the issued invitation, wrapped in ErrEmailDelivery.
// The token carries the address as supplied; recipients are matched on it
// case-insensitively.
func (s *InvitationService) Issue(ctx context.Context, senderID, boardID uuid.UUID, in IssueInviteInput) (*IssuedInvite, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	recipient := strings.TrimSpace(in.Email)
	if !in.Role.Valid() {
		return nil, errorf(ErrValidation, "role must be one of ADMIN, EDITOR, VIEWER")
	}

	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, storeError("get board", err)
	}
	if _, err := s.guard.Authorize(ctx, senderID, boardID, ActionManageContributors); err != nil {
		return nil, err
	}
	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, storeError("get sender", err)
	}

	// Приглашать уже состоящего в доске пользователя нельзя
	if err := s.ensureNotContributor(ctx, email, boardID); err != nil {
		return nil, err
	}

	token, invite, err := s.signer.Sign(auth.Invite{
		BoardID:    board.ID,
		BoardName:  board.Title,
		Email:      recipient,
		SenderID:   sender.ID,
		SenderName: sender.Username,
		Role:       in.Role,
	})
	if err != nil {
		return nil, err
	}

	issued := &IssuedInvite{
		Token:  token,
		Link:   mailer.InvitationLink(s.frontendURL, token),
		Invite: invite,
	}

	s.logger.Info("Invitation issued",
		zap.String("invite_id", invite.ID),
		zap.String("board_id", boardID.String()),
		zap.String("sender_id", senderID.String()),
		zap.String("role", string(in.Role)),
	)

	msg, err := mailer.NewInvitationMessage(s.frontendURL, mailer.Invitation{
		To:         recipient,
		SenderName: sender.Username,
		BoardName:  board.Title,
		Role:       string(in.Role),
		Token:      token,
		ExpiresAt:  invite.ExpiresAt.UTC().Format(time.RFC1123),
	})
	if err == nil {
		err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		s.logger.Error("Invitation email failed",
			zap.String("invite_id", invite.ID),
			zap.Error(err),
		)
		return issued, errorf(ErrEmailDelivery, "invitation created but the email could not be sent")
	}
	return issued, nil
}

// Decode verifies the token and returns its content. It changes nothing.
func (s *InvitationService) Decode(_ context.Context, token string) (auth.Invite, error) {
	invite, err := s.signer.Decode(strings.TrimSpace(token))
	if err != nil {
		return auth.Invite{}, errorf(ErrInvalidInvite, "invalid or expired invitation")
	}
	return invite, nil
}

// Accept redeems the token for userID on boardID and returns the new
// ACCEPTED contributor record. The caller must be userID and own the
// invited email address.
func (s *InvitationService) Accept(ctx context.Context, actorID, boardID, userID uuid.UUID, token string) (*model.Contributor, error) {
	if actorID != userID {
		return nil, errorf(ErrForbidden, "you can only accept invitations for yourself")
	}

	invite, err := s.Decode(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite.BoardID != boardID {
		return nil, errorf(ErrInviteMismatch, "invitation was issued for another board")
	}
	if err := s.ensureRecipient(ctx, userID, invite); err != nil {
		return nil, err
	}
	if _, err := s.boards.GetByID(ctx, boardID); err != nil {
		return nil, storeError("get board", err)
	}

	// Идемпотентность: повторное принятие даёт конфликт
	if _, err := s.contributors.FindByUserAndBoard(ctx, userID, boardID); err == nil {
		return nil, errorf(ErrConflict, "already a contributor")
	} else if !errors.Is(err, repository.ErrContributorNotFound) {
		return nil, storeError("find contributor", err)
	}

	if err := s.redeem(ctx, invite, outcomeAccepted); err != nil {
		return nil, err
	}

	senderID := invite.SenderID
	contributor := &model.Contributor{
		BoardID:   boardID,
		UserID:    userID,
		Role:      invite.Role,
		Status:    model.StatusAccepted,
		InvitedBy: &senderID,
	}
	if err := s.contributors.Create(ctx, contributor); err != nil {
		if !errors.Is(err, repository.ErrDuplicateContributor) {
			s.release(ctx, invite)
		}
		return nil, storeError("create contributor", err)
	}

	s.logger.Info("Invitation accepted",
		zap.String("invite_id", invite.ID),
		zap.String("board_id", boardID.String()),
		zap.String("user_id", userID.String()),
	)

	created, err := s.contributors.GetByID(ctx, contributor.ID)
	if err != nil {
		return nil, storeError("get contributor", err)
	}
	return created, nil
}

// Decline consumes the token without creating a record. Without a ledger
// the token is not invalidated and Decline only validates it.
func (s *InvitationService) Decline(ctx context.Context, actorID uuid.UUID, token string) (auth.Invite, error) {
	invite, err := s.Decode(ctx, token)
	if err != nil {
		return auth.Invite{}, err
	}
	if err := s.ensureRecipient(ctx, actorID, invite); err != nil {
		return auth.Invite{}, err
	}
	if err := s.redeem(ctx, invite, outcomeDeclined); err != nil {
		return auth.Invite{}, err
	}

	s.logger.Info("Invitation declined",
		zap.String("invite_id", invite.ID),
		zap.String("board_id", invite.BoardID.String()),
		zap.String("user_id", actorID.String()),
		zap.Bool("recorded", s.ledger != nil),
	)
	return invite, nil
}

func (s *InvitationService) ensureNotContributor(ctx context.Context, email string, boardID uuid.UUID) error {
	invitee, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return storeError("find invitee", err)
	}

	_, err = s.contributors.FindByUserAndBoard(ctx, invitee.ID, boardID)
	if err == nil {
		return errorf(ErrConflict, "already a contributor")
	}
	if !errors.Is(err, repository.ErrContributorNotFound) {
		return storeError("find contributor", err)
	}
	return nil
}

// ensureRecipient checks that the caller owns the invited email address.
func (s *InvitationService) ensureRecipient(ctx context.Context, userID uuid.UUID, invite auth.Invite) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storeError("get user", err)
	}
	if !strings.EqualFold(user.Email, invite.Email) {
		return errorf(ErrInviteMismatch, "invitation was sent to a different email address")
	}
	return nil
}

func (s *InvitationService) redeem(ctx context.Context, invite auth.Invite, outcome string) error {
	if s.ledger == nil {
		return nil
	}
	err := s.ledger.Redeem(ctx, invite.ID, outcome, invite.ExpiresAt)
	if errors.Is(err, cache.ErrAlreadyRedeemed) {
		return errorf(ErrConflict, "invitation has already been used")
	}
	return err
}

func (s *InvitationService) release(ctx context.Context, invite auth.Invite) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Release(ctx, invite.ID); err != nil {
		s.logger.Warn("Failed to release invitation", zap.String("invite_id", invite.ID), zap.Error(err))
	}
}
