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

var taskColumns = []string{
	"id", "title", "description", "status", "priority", "subtasks",
	"board_id", "created_by", "assigned_to", "deadline", "created_at", "updated_at",
}

func TestTaskRepository_Create(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	task := &model.Task{
		Title:     "Write docs",
		Status:    model.TaskNotStarted,
		Priority:  model.PriorityLow,
		BoardID:   uuid.New(),
		CreatedBy: uuid.New(),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "tasks"`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), task)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.NotNil(t, task.Subtasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .*`).
		WillReturnRows(sqlmock.NewRows(taskColumns))

	task, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListByBoard(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	boardID, creatorID := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE board_id = .* AND \(title ILIKE .* OR description ILIKE .*\) ORDER BY updated_at DESC`).
		WithArgs(boardID, "%docs%", "%docs%").
		WillReturnRows(sqlmock.NewRows(taskColumns).
			AddRow(uuid.NewString(), "Write docs", "", "IN PROGRESS", "high",
				`[{"description":"outline","completed":true},{"description":"draft","completed":false}]`,
				boardID.String(), creatorID.String(), nil, nil, now, now))
	// Assignee не загружается: assigned_to пуст
	mock.ExpectQuery(`SELECT .* FROM "users" WHERE "users"."id" = .*`).
		WithArgs(creatorID).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(creatorID.String(), "alice", "alice@example.com", "hash", nil, now, now))

	tasks, err := repo.ListByBoard(context.Background(), boardID, "docs")

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.TaskInProgress, tasks[0].Status)
	require.Len(t, tasks[0].Subtasks, 2)
	assert.Equal(t, "outline", tasks[0].Subtasks[0].Description)
	assert.True(t, tasks[0].Subtasks[0].Completed)
	assert.Equal(t, "alice", tasks[0].Creator.Username)
	assert.Nil(t, tasks[0].Assignee)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Delete_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks" WHERE id = .*`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
