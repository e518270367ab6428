package handler

import (
	"net/http"
	"time"

	"workflo/internal/model"
	"workflo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// SubtaskRequest представляет пункт чек-листа задачи
type SubtaskRequest struct {
	Description string `json:"description" binding:"required"`
	Completed   bool   `json:"completed"`
}

// TaskRequest представляет запрос на создание задачи
type TaskRequest struct {
	BoardID     string           `json:"board_id" binding:"required"`
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Status      string           `json:"status" binding:"omitempty,oneof='NOT STARTED' 'IN PROGRESS' COMPLETED"`
	Priority    string           `json:"priority" binding:"omitempty,oneof=low medium high"`
	Subtasks    []SubtaskRequest `json:"subtasks" binding:"omitempty,dive"`
	AssignedTo  *string          `json:"assigned_to"`
	Deadline    *time.Time       `json:"deadline"`
}

// UpdateTaskRequest представляет частичное обновление задачи
type UpdateTaskRequest struct {
	Title         *string           `json:"title" binding:"omitempty,min=1"`
	Description   *string           `json:"description"`
	Status        *string           `json:"status" binding:"omitempty,oneof='NOT STARTED' 'IN PROGRESS' COMPLETED"`
	Priority      *string           `json:"priority" binding:"omitempty,oneof=low medium high"`
	Subtasks      *[]SubtaskRequest `json:"subtasks" binding:"omitempty,dive"`
	AssignedTo    *string           `json:"assigned_to"`
	ClearAssignee bool              `json:"clear_assignee"`
	Deadline      *time.Time        `json:"deadline"`
	ClearDeadline bool              `json:"clear_deadline"`
}

func toSubtasks(in []SubtaskRequest) []model.Subtask {
	subtasks := make([]model.Subtask, 0, len(in))
	for _, s := range in {
		subtasks = append(subtasks, model.Subtask{Description: s.Description, Completed: s.Completed})
	}
	return subtasks
}

// optionalUUID разбирает необязательный id из тела запроса
func optionalUUID(c *gin.Context, field string, raw *string) (*uuid.UUID, bool) {
	if raw == nil {
		return nil, true
	}
	id, ok := bodyUUID(c, field, *raw)
	if !ok {
		return nil, false
	}
	return &id, true
}

// GetByBoard godoc
// @Summary List a board's tasks
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param board_id path string true "Board ID"
// @Param query query string false "Search over title and description"
// @Success 200 {object} SuccessResponse{data=[]TaskResponse}
// @Failure 403 {object} ErrorResponse
// @Router /api/task/fetch/board/{board_id} [get]
func (h *TaskHandler) GetByBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "board_id")
	if !ok {
		return
	}

	tasks, err := h.tasks.ListByBoard(c.Request.Context(), userID, boardID, c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toTaskResponses(tasks), "Tasks fetched successfully")
}

// GetByID godoc
// @Summary Get a task
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} SuccessResponse{data=TaskResponse}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/task/fetch/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toTaskResponse(*task), "Task fetched successfully")
}

// Create godoc
// @Summary Create a task
// @Description Requires ADMIN or EDITOR on the board. Status defaults to NOT STARTED, priority to low.
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TaskRequest true "Task"
// @Success 201 {object} SuccessResponse{data=TaskResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/task/create [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req TaskRequest
	if !bindJSON(c, &req) {
		return
	}
	boardID, ok := bodyUUID(c, "board_id", req.BoardID)
	if !ok {
		return
	}
	assignee, ok := optionalUUID(c, "assigned_to", req.AssignedTo)
	if !ok {
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, service.CreateTaskInput{
		BoardID:     boardID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskStatus(req.Status),
		Priority:    model.TaskPriority(req.Priority),
		Subtasks:    toSubtasks(req.Subtasks),
		AssignedTo:  assignee,
		Deadline:    req.Deadline,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, toTaskResponse(*task), "Task created successfully")
}

// Update godoc
// @Summary Update a task
// @Description Only the supplied fields change. clear_assignee and clear_deadline unset them.
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body UpdateTaskRequest true "Changes"
// @Success 200 {object} SuccessResponse{data=TaskResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/task/update/{id} [post]
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	assignee, ok := optionalUUID(c, "assigned_to", req.AssignedTo)
	if !ok {
		return
	}

	in := service.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		AssignedTo:    assignee,
		ClearAssignee: req.ClearAssignee,
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline,
	}
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		in.Status = &status
	}
	if req.Priority != nil {
		priority := model.TaskPriority(*req.Priority)
		in.Priority = &priority
	}
	if req.Subtasks != nil {
		subtasks := toSubtasks(*req.Subtasks)
		in.Subtasks = &subtasks
	}

	task, err := h.tasks.Update(c.Request.Context(), userID, taskID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toTaskResponse(*task), "Task updated successfully")
}

// Delete godoc
// @Summary Delete a task
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} SuccessResponse{data=TaskResponse}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/task/delete/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.Delete(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toTaskResponse(*task), "Task deleted successfully")
}
