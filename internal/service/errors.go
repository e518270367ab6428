package service

import (
	"errors"
	"fmt"

	"workflo/internal/repository"
)

// Категории ошибок; обработчики сопоставляют их со статусами HTTP
var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrValidation     = errors.New("validation failed")
	ErrInvalidInvite  = errors.New("invalid or expired invitation")
	ErrInviteMismatch = errors.New("invitation does not match")
	ErrEmailDelivery  = errors.New("invitation email could not be delivered")
)

// ErrBoardNotTrashed is a Conflict: only trashed boards can be deleted.
var ErrBoardNotTrashed error = &Error{kind: ErrConflict, msg: "board must be moved to trash before it can be deleted"}

// Error is a categorised error with a message that is safe to show to the caller.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func errorf(kind error, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// storeError maps repository sentinels onto service categories and wraps
// everything else as an internal failure.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrBoardNotFound),
		errors.Is(err, repository.ErrContributorNotFound),
		errors.Is(err, repository.ErrTaskNotFound):
		return errorf(ErrNotFound, "%s", err.Error())
	case errors.Is(err, repository.ErrDuplicateContributor),
		errors.Is(err, repository.ErrDuplicateUser):
		return errorf(ErrConflict, "%s", err.Error())
	}
	return fmt.Errorf("%s: %w", op, err)
}
