package service_test

import (
	"context"
	"testing"
	"time"

	"workflo/internal/model"
	"workflo/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskBoard struct {
	owner, editor, viewer, outsider *model.User
	board                           *model.Board
}

func newTaskBoard(t *testing.T, f *fixture) taskBoard {
	t.Helper()
	tb := taskBoard{
		owner:    f.signUp(t, "owner"),
		editor:   f.signUp(t, "editor"),
		viewer:   f.signUp(t, "viewer"),
		outsider: f.signUp(t, "outsider"),
	}
	tb.board = f.createBoard(t, tb.owner, "Roadmap")
	f.addMember(t, tb.owner, tb.editor, tb.board, model.RoleEditor)
	f.addMember(t, tb.owner, tb.viewer, tb.board, model.RoleViewer)
	return tb
}

func TestTaskService_Create(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	tb := newTaskBoard(t, f)
	deadline := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	task, err := f.tasks.Create(ctx, tb.editor.ID, service.CreateTaskInput{
		BoardID:    tb.board.ID,
		Title:      "Write docs",
		Priority:   model.PriorityHigh,
		Subtasks:   []model.Subtask{{Description: "outline"}, {Description: "draft"}},
		AssignedTo: &tb.viewer.ID,
		Deadline:   &deadline,
	})

	require.NoError(t, err)
	assert.Equal(t, model.TaskNotStarted, task.Status)
	assert.Equal(t, model.PriorityHigh, task.Priority)
	assert.Equal(t, tb.editor.ID, task.CreatedBy)
	assert.Equal(t, "editor", task.Creator.Username)
	require.NotNil(t, task.Assignee)
	assert.Equal(t, "viewer", task.Assignee.Username)
	// Порядок подзадач сохраняется
	require.Len(t, task.Subtasks, 2)
	assert.Equal(t, "outline", task.Subtasks[0].Description)
	assert.Equal(t, "draft", task.Subtasks[1].Description)
}

func TestTaskService_CreateErrors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	tb := newTaskBoard(t, f)

	tests := []struct {
		name    string
		actor   uuid.UUID
		input   service.CreateTaskInput
		wantErr error
	}{
		{"viewer cannot create", tb.viewer.ID, service.CreateTaskInput{BoardID: tb.board.ID, Title: "t"}, service.ErrForbidden},
		{"outsider cannot create", tb.outsider.ID, service.CreateTaskInput{BoardID: tb.board.ID, Title: "t"}, service.ErrForbidden},
		{"missing title", tb.editor.ID, service.CreateTaskInput{BoardID: tb.board.ID}, service.ErrValidation},
		{"bad status", tb.editor.ID, service.CreateTaskInput{BoardID: tb.board.ID, Title: "t", Status: "DONE"}, service.ErrValidation},
		{"bad priority", tb.editor.ID, service.CreateTaskInput{BoardID: tb.board.ID, Title: "t", Priority: "urgent"}, service.ErrValidation},
		{"empty subtask", tb.editor.ID, service.CreateTaskInput{BoardID: tb.board.ID, Title: "t", Subtasks: []model.Subtask{{Description: " "}}}, service.ErrValidation},
		{"assignee outside board", tb.editor.ID, service.CreateTaskInput{BoardID: tb.board.ID, Title: "t", AssignedTo: &tb.outsider.ID}, service.ErrValidation},
		{"unknown board", tb.editor.ID, service.CreateTaskInput{BoardID: uuid.New(), Title: "t"}, service.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tasks.Create(ctx, tt.actor, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTaskService_ListByBoard(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	tb := newTaskBoard(t, f)

	first, err := f.tasks.Create(ctx, tb.editor.ID, service.CreateTaskInput{BoardID: tb.board.ID, Title: "Write docs"})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, tb.editor.ID, service.CreateTaskInput{BoardID: tb.board.ID, Title: "Fix bug", Description: "crash in DOCS viewer"})
	require.NoError(t, err)
	_, err = f.tasks.Create(ctx, tb.editor.ID, service.CreateTaskInput{BoardID: tb.board.ID, Title: "Release"})
	require.NoError(t, err)

	// Обновлённая задача поднимается наверх
	status := model.TaskInProgress
	_, err = f.tasks.Update(ctx, tb.editor.ID, first.ID, service.UpdateTaskInput{Status: &status})
	require.NoError(t, err)

	tasks, err := f.tasks.ListByBoard(ctx, tb.viewer.ID, tb.board.ID, "")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, "Release", tasks[1].Title)

	found, err := f.tasks.ListByBoard(ctx, tb.viewer.ID, tb.board.ID, "docs")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = f.tasks.ListByBoard(ctx, tb.outsider.ID, tb.board.ID, "")
	assert.ErrorIs(t, err, service.ErrForbidden)

	missing, err := f.tasks.ListByBoard(ctx, tb.viewer.ID, uuid.New(), "")
	require.NoError(t, err)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}

func TestTaskService_Update(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	tb := newTaskBoard(t, f)
	deadline := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	task, err := f.tasks.Create(ctx, tb.owner.ID, service.CreateTaskInput{
		BoardID:     tb.board.ID,
		Title:       "Write docs",
		Description: "keep me",
		AssignedTo:  &tb.editor.ID,
		Deadline:    &deadline,
	})
	require.NoError(t, err)

	title := "Write better docs"
	subtasks := []model.Subtask{{Description: "outline", Completed: true}}
	updated, err := f.tasks.Update(ctx, tb.editor.ID, task.ID, service.UpdateTaskInput{
		Title:         &title,
		Subtasks:      &subtasks,
		ClearDeadline: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Write better docs", updated.Title)
	assert.Equal(t, "keep me", updated.Description)
	assert.Nil(t, updated.Deadline)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, tb.editor.ID, *updated.AssignedTo)
	require.Len(t, updated.Subtasks, 1)
	assert.True(t, updated.Subtasks[0].Completed)
	assert.Equal(t, tb.owner.ID, updated.CreatedBy)

	_, err = f.tasks.Update(ctx, tb.viewer.ID, task.ID, service.UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.tasks.Update(ctx, tb.editor.ID, task.ID, service.UpdateTaskInput{AssignedTo: &tb.outsider.ID})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.tasks.Update(ctx, tb.editor.ID, uuid.New(), service.UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestTaskService_GetAndDelete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	tb := newTaskBoard(t, f)

	task, err := f.tasks.Create(ctx, tb.editor.ID, service.CreateTaskInput{BoardID: tb.board.ID, Title: "Write docs"})
	require.NoError(t, err)

	got, err := f.tasks.Get(ctx, tb.viewer.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = f.tasks.Get(ctx, tb.outsider.ID, task.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.tasks.Delete(ctx, tb.viewer.ID, task.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	deleted, err := f.tasks.Delete(ctx, tb.editor.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, deleted.ID)

	_, err = f.tasks.Get(ctx, tb.editor.ID, task.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
