package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"workflo/internal/model"
	"workflo/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateTaskInput struct {
	BoardID     uuid.UUID
	Title       string
	Description string
	Status      model.TaskStatus
	Priority    model.TaskPriority
	Subtasks    []model.Subtask
	AssignedTo  *uuid.UUID
	Deadline    *time.Time
}

// UpdateTaskInput holds the fields to change; nil leaves a field as is.
// ClearAssignee and ClearDeadline unset the optional fields.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *model.TaskStatus
	Priority      *model.TaskPriority
	Subtasks      *[]model.Subtask
	AssignedTo    *uuid.UUID
	ClearAssignee bool
	Deadline      *time.Time
	ClearDeadline bool
}

type TaskService struct {
	boards       BoardStore
	tasks        TaskStore
	contributors ContributorStore
	guard        *Guard
	logger       *zap.Logger
}

func NewTaskService(
	boards BoardStore,
	tasks TaskStore,
	contributors ContributorStore,
	guard *Guard,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		boards:       boards,
		tasks:        tasks,
		contributors: contributors,
		guard:        guard,
		logger:       logger,
	}
}

func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, in CreateTaskInput) (*model.Task, error) {
	task := &model.Task{
		BoardID:     in.BoardID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		Subtasks:    in.Subtasks,
		CreatedBy:   userID,
		AssignedTo:  in.AssignedTo,
		Deadline:    in.Deadline,
	}
	if task.Status == "" {
		task.Status = model.TaskNotStarted
	}
	if task.Priority == "" {
		task.Priority = model.PriorityLow
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	if _, err := s.boards.GetByID(ctx, in.BoardID); err != nil {
		return nil, storeError("get board", err)
	}
	if _, err := s.guard.Authorize(ctx, userID, in.BoardID, ActionEditTask); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, in.BoardID, task.AssignedTo); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, storeError("create task", err)
	}
	return s.reload(ctx, task.ID)
}

func (s *TaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, storeError("get task", err)
	}
	if _, err := s.guard.Authorize(ctx, userID, task.BoardID, ActionViewBoard); err != nil {
		return nil, err
	}
	return task, nil
}

// ListByBoard returns the board's tasks, most recently updated first. A board
// that does not exist has no tasks.
func (s *TaskService) ListByBoard(ctx context.Context, userID, boardID uuid.UUID, query string) ([]model.Task, error) {
	if _, err := s.boards.GetByID(ctx, boardID); err != nil {
		if errors.Is(err, repository.ErrBoardNotFound) {
			return []model.Task{}, nil
		}
		return nil, storeError("get board", err)
	}
	if _, err := s.guard.Authorize(ctx, userID, boardID, ActionViewBoard); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByBoard(ctx, boardID, strings.TrimSpace(query))
	if err != nil {
		return nil, storeError("list tasks", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, in UpdateTaskInput) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, storeError("get task", err)
	}
	if _, err := s.guard.Authorize(ctx, userID, task.BoardID, ActionEditTask); err != nil {
		return nil, err
	}

	if in.Title != nil {
		task.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.Subtasks != nil {
		task.Subtasks = *in.Subtasks
	}
	switch {
	case in.ClearAssignee:
		task.AssignedTo = nil
	case in.AssignedTo != nil:
		task.AssignedTo = in.AssignedTo
	}
	switch {
	case in.ClearDeadline:
		task.Deadline = nil
	case in.Deadline != nil:
		task.Deadline = in.Deadline
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}
	if in.AssignedTo != nil && !in.ClearAssignee {
		if err := s.checkAssignee(ctx, task.BoardID, task.AssignedTo); err != nil {
			return nil, err
		}
	}

	// Связанные записи перезагружаются после сохранения
	task.Creator = model.User{}
	task.Assignee = nil
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, storeError("update task", err)
	}
	return s.reload(ctx, taskID)
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, storeError("get task", err)
	}
	if _, err := s.guard.Authorize(ctx, userID, task.BoardID, ActionDeleteTask); err != nil {
		return nil, err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return nil, storeError("delete task", err)
	}
	return task, nil
}

// checkAssignee requires the assignee to hold an accepted role on the board.
func (s *TaskService) checkAssignee(ctx context.Context, boardID uuid.UUID, assignee *uuid.UUID) error {
	if assignee == nil {
		return nil
	}
	role, err := s.guard.Role(ctx, *assignee, boardID)
	if err != nil {
		return err
	}
	if role == "" {
		return errorf(ErrValidation, "assignee must be a contributor of the board")
	}
	return nil
}

func (s *TaskService) reload(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get task", err)
	}
	return task, nil
}

func validateTask(task *model.Task) error {
	if task.Title == "" {
		return errorf(ErrValidation, "title is required")
	}
	if !task.Status.Valid() {
		return errorf(ErrValidation, "status must be one of NOT STARTED, IN PROGRESS, COMPLETED")
	}
	if !task.Priority.Valid() {
		return errorf(ErrValidation, "priority must be one of low, medium, high")
	}
	for i, subtask := range task.Subtasks {
		if strings.TrimSpace(subtask.Description) == "" {
			return errorf(ErrValidation, "subtask %d has no description", i+1)
		}
	}
	return nil
}
