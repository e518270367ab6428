package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Common repository errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrBoardNotFound       = errors.New("board not found")
	ErrContributorNotFound = errors.New("contributor not found")
	ErrTaskNotFound        = errors.New("task not found")

	// ErrBoardNotTrashed is returned when deleting a board that is not in the trash
	ErrBoardNotTrashed = errors.New("board is not trashed")

	// ErrDuplicateUser is returned when the email or username is taken
	ErrDuplicateUser = errors.New("user already exists")

	// ErrDuplicateContributor is returned when the (board, user) pair already has a record
	ErrDuplicateContributor = errors.New("already a contributor")
)

// translate maps gorm sentinel errors onto the repository ones.
func translate(err error, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case duplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicate
	}
	return err
}

// likePattern escapes LIKE wildcards and wraps the term for a substring match.
func likePattern(term string) string {
	r := []rune{}
	for _, ch := range term {
		if ch == '%' || ch == '_' || ch == '\\' {
			r = append(r, '\\')
		}
		r = append(r, ch)
	}
	return "%" + string(r) + "%"
}
