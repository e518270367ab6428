package service_test

import (
	"context"
	"testing"

	"workflo/internal/model"
	"workflo/internal/repository"
	"workflo/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContributorService_Create(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.signUp(t, "owner")
	bob := f.signUp(t, "bob")
	board := f.createBoard(t, owner, "Roadmap")

	contributor, err := f.contributors.Create(ctx, owner.ID, service.CreateContributorInput{
		BoardID: board.ID,
		UserID:  bob.ID,
		Role:    model.RoleEditor,
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, contributor.Status)
	assert.Equal(t, model.RoleEditor, contributor.Role)
	require.NotNil(t, contributor.InvitedBy)
	assert.Equal(t, owner.ID, *contributor.InvitedBy)
	// Запись возвращается вместе с профилем пользователя
	assert.Equal(t, "bob", contributor.User.Username)

	_, err = f.contributors.Create(ctx, owner.ID, service.CreateContributorInput{
		BoardID: board.ID,
		UserID:  bob.ID,
		Role:    model.RoleViewer,
	})
	assert.ErrorIs(t, err, service.ErrConflict)
	assert.EqualError(t, err, "already a contributor")
}

func TestContributorService_CreateErrors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.signUp(t, "owner")
	editor := f.signUp(t, "editor")
	bob := f.signUp(t, "bob")
	board := f.createBoard(t, owner, "Roadmap")
	f.addMember(t, owner, editor, board, model.RoleEditor)

	tests := []struct {
		name    string
		actor   uuid.UUID
		input   service.CreateContributorInput
		wantErr error
	}{
		{
			name:    "editor cannot manage contributors",
			actor:   editor.ID,
			input:   service.CreateContributorInput{BoardID: board.ID, UserID: bob.ID, Role: model.RoleViewer},
			wantErr: service.ErrForbidden,
		},
		{
			name:    "unknown role",
			actor:   owner.ID,
			input:   service.CreateContributorInput{BoardID: board.ID, UserID: bob.ID, Role: "OWNER"},
			wantErr: service.ErrValidation,
		},
		{
			name:    "unknown board",
			actor:   owner.ID,
			input:   service.CreateContributorInput{BoardID: uuid.New(), UserID: bob.ID, Role: model.RoleViewer},
			wantErr: service.ErrNotFound,
		},
		{
			name:    "unknown user",
			actor:   owner.ID,
			input:   service.CreateContributorInput{BoardID: board.ID, UserID: uuid.New(), Role: model.RoleViewer},
			wantErr: service.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.contributors.Create(ctx, tt.actor, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestContributorService_Respond(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.signUp(t, "owner")
	bob := f.signUp(t, "bob")
	carol := f.signUp(t, "carol")
	board := f.createBoard(t, owner, "Roadmap")

	pending, err := f.contributors.Create(ctx, owner.ID, service.CreateContributorInput{
		BoardID: board.ID, UserID: bob.ID, Role: model.RoleViewer,
	})
	require.NoError(t, err)

	// Ответить может только приглашённый
	_, err = f.contributors.Respond(ctx, carol.ID, pending.ID, true)
	assert.ErrorIs(t, err, service.ErrForbidden)

	declined, err := f.contributors.Respond(ctx, bob.ID, pending.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeclined, declined.Status)

	role, err := f.contributors.GetRole(ctx, bob.ID, board.ID)
	require.NoError(t, err)
	assert.Empty(t, role)

	_, err = f.contributors.Respond(ctx, bob.ID, pending.ID, true)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestContributorService_UpdateRole(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.signUp(t, "owner")
	bob := f.signUp(t, "bob")
	board := f.createBoard(t, owner, "Roadmap")
	record := f.addMember(t, owner, bob, board, model.RoleViewer)

	updated, err := f.contributors.UpdateRole(ctx, owner.ID, record.ID, model.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, updated.Role)

	_, err = f.contributors.UpdateRole(ctx, bob.ID, record.ID, model.RoleAdmin)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.contributors.UpdateRole(ctx, owner.ID, uuid.New(), model.RoleEditor)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.contributors.UpdateRole(ctx, owner.ID, record.ID, "SUPERUSER")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestContributorService_LastAdminIsProtected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.signUp(t, "owner")
	bob := f.signUp(t, "bob")
	board := f.createBoard(t, owner, "Roadmap")

	ownerRecord, err := f.store.Contributors.FindByUserAndBoard(ctx, owner.ID, board.ID)
	require.NoError(t, err)

	_, err = f.contributors.UpdateRole(ctx, owner.ID, ownerRecord.ID, model.RoleEditor)
	assert.ErrorIs(t, err, service.ErrConflict)
	_, err = f.contributors.Remove(ctx, owner.ID, ownerRecord.ID)
	assert.ErrorIs(t, err, service.ErrConflict)

	// Со вторым администратором понижение допустимо
	f.addMember(t, owner, bob, board, model.RoleAdmin)
	demoted, err := f.contributors.UpdateRole(ctx, owner.ID, ownerRecord.ID, model.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, model.RoleViewer, demoted.Role)
}

func TestContributorService_Remove(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.signUp(t, "owner")
	bob := f.signUp(t, "bob")
	carol := f.signUp(t, "carol")
	board := f.createBoard(t, owner, "Roadmap")
	bobRecord := f.addMember(t, owner, bob, board, model.RoleEditor)
	carolRecord := f.addMember(t, owner, carol, board, model.RoleViewer)

	_, err := f.contributors.Remove(ctx, bob.ID, carolRecord.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	removed, err := f.contributors.Remove(ctx, owner.ID, carolRecord.ID)
	require.NoError(t, err)
	assert.Equal(t, carol.ID, removed.UserID)

	_, err = f.contributors.Remove(ctx, owner.ID, carolRecord.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// Участник может покинуть доску сам
	_, err = f.contributors.Remove(ctx, bob.ID, bobRecord.ID)
	require.NoError(t, err)
	role, err := f.contributors.GetRole(ctx, bob.ID, board.ID)
	require.NoError(t, err)
	assert.Empty(t, role)
}

func TestContributorService_ListByBoard(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.signUp(t, "owner")
	alice := f.signUp(t, "alice")
	alfred := f.signUp(t, "alfred")
	stranger := f.signUp(t, "stranger")
	board := f.createBoard(t, owner, "Roadmap")
	f.addMember(t, owner, alice, board, model.RoleEditor)
	f.addMember(t, owner, alfred, board, model.RoleViewer)

	all, err := f.contributors.ListByBoard(ctx, alfred.ID, board.ID, repository.ContributorFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Новые записи первыми
	assert.Equal(t, "alfred", all[0].User.Username)
	assert.Equal(t, "owner", all[2].User.Username)

	editors, err := f.contributors.ListByBoard(ctx, owner.ID, board.ID, repository.ContributorFilter{Role: model.RoleEditor})
	require.NoError(t, err)
	require.Len(t, editors, 1)
	assert.Equal(t, alice.ID, editors[0].UserID)

	found, err := f.contributors.ListByBoard(ctx, owner.ID, board.ID, repository.ContributorFilter{Query: "AL"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	byEmail, err := f.contributors.ListByBoard(ctx, owner.ID, board.ID, repository.ContributorFilter{Query: "alice@example"})
	require.NoError(t, err)
	assert.Len(t, byEmail, 1)

	_, err = f.contributors.ListByBoard(ctx, stranger.ID, board.ID, repository.ContributorFilter{})
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.contributors.ListByBoard(ctx, owner.ID, board.ID, repository.ContributorFilter{Role: "GUEST"})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestContributorService_Search(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := f.signUp(t, "owner")
	bob := f.signUp(t, "bob")
	alice := f.signUp(t, "alice")
	bobcat := f.signUp(t, "bobcat")
	stranger := f.signUp(t, "stranger")
	roadmap := f.createBoard(t, owner, "Roadmap")
	secret := f.createBoard(t, alice, "Secret")
	f.addMember(t, owner, bob, roadmap, model.RoleEditor)
	f.addMember(t, alice, bobcat, secret, model.RoleViewer)

	// Чужие доски в выдачу не попадают
	found, err := f.contributors.Search(ctx, owner.ID, "BOB")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, bob.ID, found[0].UserID)
	assert.Equal(t, "bob", found[0].User.Username)

	found, err = f.contributors.Search(ctx, bobcat.ID, "bob")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, secret.ID, found[0].BoardID)

	found, err = f.contributors.Search(ctx, stranger.ID, "bob")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)

	_, err = f.contributors.Search(ctx, owner.ID, "  ")
	assert.ErrorIs(t, err, service.ErrValidation)
}
