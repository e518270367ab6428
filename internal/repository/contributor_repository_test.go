package repository_test

import (
	"context"
	"testing"
	"time"

	"workflo/internal/model"
	"workflo/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contributorColumns = []string{"id", "board_id", "user_id", "role", "status", "invited_by", "created_at", "updated_at"}

func TestContributorRepository_Create_Duplicate(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewContributorRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "contributors"`).WillReturnError(uniqueViolation())
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Contributor{
		BoardID: uuid.New(),
		UserID:  uuid.New(),
		Role:    model.RoleViewer,
		Status:  model.StatusPending,
	})

	assert.ErrorIs(t, err, repository.ErrDuplicateContributor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContributorRepository_FindByUserAndBoard(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewContributorRepository(gormDB)

	boardID, userID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM "contributors" WHERE board_id = .* AND user_id = .*`).
		WithArgs(boardID, userID, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(contributorColumns).
			AddRow(uuid.NewString(), boardID.String(), userID.String(), "EDITOR", "ACCEPTED", nil, now, now))

	contributor, err := repo.FindByUserAndBoard(context.Background(), userID, boardID)

	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, contributor.Role)
	assert.Equal(t, model.StatusAccepted, contributor.Status)
	assert.Nil(t, contributor.InvitedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContributorRepository_FindByUserAndBoard_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewContributorRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "contributors"`).
		WillReturnRows(sqlmock.NewRows(contributorColumns))

	contributor, err := repo.FindByUserAndBoard(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrContributorNotFound)
	assert.Nil(t, contributor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContributorRepository_ListByBoard_Empty(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewContributorRepository(gormDB)

	boardID := uuid.New()

	// Фильтр по роли и поиск по имени или email пользователя
	mock.ExpectQuery(`SELECT "contributors"\..* FROM "contributors" JOIN users ON users.id = contributors.user_id `+
		`WHERE contributors.board_id = .* AND contributors.role = .* AND \(users.username ILIKE .* OR users.email ILIKE .*\) `+
		`ORDER BY contributors.created_at DESC`).
		WithArgs(boardID, model.RoleEditor, "%ali%", "%ali%").
		WillReturnRows(sqlmock.NewRows(contributorColumns))

	contributors, err := repo.ListByBoard(context.Background(), boardID, repository.ContributorFilter{
		Role:  model.RoleEditor,
		Query: "ali",
	})

	require.NoError(t, err)
	assert.Empty(t, contributors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContributorRepository_SearchForMember(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewContributorRepository(gormDB)

	userID := uuid.New()

	// Только доски, где пользователь сам принят участником
	mock.ExpectQuery(`SELECT "contributors"\..* FROM "contributors" JOIN users ON users.id = contributors.user_id `+
		`WHERE \(contributors.board_id IN \(SELECT mine.board_id FROM contributors AS mine WHERE mine.user_id = .* AND mine.status = .*\)\) `+
		`AND \(users.username ILIKE .* OR users.email ILIKE .*\) ORDER BY contributors.created_at DESC`).
		WithArgs(userID, model.StatusAccepted, "%50\\%%", "%50\\%%").
		WillReturnRows(sqlmock.NewRows(contributorColumns))

	contributors, err := repo.SearchForMember(context.Background(), userID, "50%")

	require.NoError(t, err)
	assert.Empty(t, contributors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContributorRepository_UpdateRole_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewContributorRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "contributors" SET "role"=.*`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateRole(context.Background(), uuid.New(), model.RoleViewer)

	assert.ErrorIs(t, err, repository.ErrContributorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContributorRepository_Delete(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewContributorRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "contributors" WHERE id = .*`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContributorRepository_CountAdmins(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewContributorRepository(gormDB)

	boardID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "contributors" WHERE board_id = .* AND role = .* AND status = .*`).
		WithArgs(boardID, model.RoleAdmin, model.StatusAccepted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountAdmins(context.Background(), boardID)

	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
