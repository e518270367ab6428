package service

import (
	"context"
	"errors"

	"workflo/internal/model"
	"workflo/internal/repository"

	"github.com/google/uuid"
)

type Action string

const (
	ActionViewBoard          Action = "view board"
	ActionUpdateBoard        Action = "update board"
	ActionTrashBoard         Action = "trash board"
	ActionDeleteBoard        Action = "delete board"
	ActionManageContributors Action = "manage contributors"
	ActionEditTask           Action = "edit task"
	ActionDeleteTask         Action = "delete task"
)

// Таблица прав: какие роли допускаются к действию
var policy = map[Action][]model.Role{
	ActionViewBoard:          {model.RoleAdmin, model.RoleEditor, model.RoleViewer},
	ActionUpdateBoard:        {model.RoleAdmin, model.RoleEditor},
	ActionTrashBoard:         {model.RoleAdmin},
	ActionDeleteBoard:        {model.RoleAdmin},
	ActionManageContributors: {model.RoleAdmin},
	ActionEditTask:           {model.RoleAdmin, model.RoleEditor},
	ActionDeleteTask:         {model.RoleAdmin, model.RoleEditor},
}

// Allows reports whether role may perform action. The empty role allows nothing.
func Allows(role model.Role, action Action) bool {
	for _, r := range policy[action] {
		if r == role {
			return true
		}
	}
	return false
}

// Guard resolves a caller's role on a board. The role is looked up on every
// call and never cached, so changes take effect on the next request.
type Guard struct {
	contributors ContributorStore
}

func NewGuard(contributors ContributorStore) *Guard {
	return &Guard{contributors: contributors}
}

// Role returns the role of the caller's accepted contributor record, or ""
// when there is none. Pending and declined records grant nothing.
func (g *Guard) Role(ctx context.Context, userID, boardID uuid.UUID) (model.Role, error) {
	contributor, err := g.contributors.FindByUserAndBoard(ctx, userID, boardID)
	if errors.Is(err, repository.ErrContributorNotFound) {
		return "", nil
	}
	if err != nil {
		return "", storeError("resolve role", err)
	}
	if contributor.Status != model.StatusAccepted {
		return "", nil
	}
	return contributor.Role, nil
}

// Authorize returns the caller's role or ErrForbidden if it does not permit action.
func (g *Guard) Authorize(ctx context.Context, userID, boardID uuid.UUID, action Action) (model.Role, error) {
	role, err := g.Role(ctx, userID, boardID)
	if err != nil {
		return "", err
	}
	if role == "" {
		return "", errorf(ErrForbidden, "you are not a contributor of this board")
	}
	if !Allows(role, action) {
		return role, errorf(ErrForbidden, "role %s is not allowed to %s", role, action)
	}
	return role, nil
}
