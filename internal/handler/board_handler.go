package handler

import (
	"net/http"
	"strconv"

	"workflo/internal/repository"
	"workflo/internal/service"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	boards *service.BoardService
}

func NewBoardHandler(boards *service.BoardService) *BoardHandler {
	return &BoardHandler{boards: boards}
}

// BoardRequest представляет запрос на создание доски
type BoardRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// UpdateBoardRequest: изменяются только переданные поля
type UpdateBoardRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Create godoc
// @Summary Create a board
// @Description The creator becomes the board's first ADMIN.
// @Tags Boards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BoardRequest true "Board"
// @Success 201 {object} SuccessResponse{data=BoardResponse}
// @Failure 400 {object} ErrorResponse
// @Router /api/board/create [post]
func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req BoardRequest
	if !bindJSON(c, &req) {
		return
	}

	board, err := h.boards.Create(c.Request.Context(), userID, service.CreateBoardInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, toBoardResponse(*board), "Board created successfully")
}

// GetAll godoc
// @Summary List the caller's boards
// @Tags Boards
// @Produce json
// @Security BearerAuth
// @Param trashed query bool false "Only trashed (true) or active (false) boards"
// @Param query query string false "Case-insensitive title search"
// @Success 200 {object} SuccessResponse{data=[]BoardResponse}
// @Router /api/board/fetch [get]
func (h *BoardHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := repository.BoardFilter{Query: c.Query("query")}
	if raw, set := c.GetQuery("trashed"); set && raw != "" {
		trashed, err := strconv.ParseBool(raw)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid trashed filter")
			return
		}
		filter.Trashed = &trashed
	}

	boards, err := h.boards.List(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toBoardResponses(boards), "Boards fetched successfully")
}

// GetByID godoc
// @Summary Get a board
// @Tags Boards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Board ID"
// @Success 200 {object} SuccessResponse{data=BoardResponse}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/board/fetch/{id} [get]
func (h *BoardHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	board, err := h.boards.Get(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toBoardResponse(*board), "Board fetched successfully")
}

// Update godoc
// @Summary Update board metadata
// @Tags Boards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Board ID"
// @Param request body UpdateBoardRequest true "Fields to change"
// @Success 200 {object} SuccessResponse{data=BoardResponse}
// @Failure 403 {object} ErrorResponse
// @Router /api/board/update/{id} [post]
func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateBoardRequest
	if !bindJSON(c, &req) {
		return
	}

	board, err := h.boards.Update(c.Request.Context(), userID, boardID, service.UpdateBoardInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toBoardResponse(*board), "Board updated successfully")
}

// Trash godoc
// @Summary Move a board to trash
// @Tags Boards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Board ID"
// @Success 200 {object} SuccessResponse{data=BoardResponse}
// @Failure 403 {object} ErrorResponse
// @Router /api/board/trash/{id} [post]
func (h *BoardHandler) Trash(c *gin.Context) {
	h.setTrashed(c, true)
}

// Restore godoc
// @Summary Restore a board from trash
// @Tags Boards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Board ID"
// @Success 200 {object} SuccessResponse{data=BoardResponse}
// @Failure 403 {object} ErrorResponse
// @Router /api/board/restore/{id} [post]
func (h *BoardHandler) Restore(c *gin.Context) {
	h.setTrashed(c, false)
}

func (h *BoardHandler) setTrashed(c *gin.Context, trashed bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	apply, message := h.boards.Trash, "Board moved to trash"
	if !trashed {
		apply, message = h.boards.Restore, "Board restored successfully"
	}

	board, err := apply(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toBoardResponse(*board), message)
}

// Delete godoc
// @Summary Permanently delete a trashed board
// @Description Removes the board's tasks, then its contributors, then the board.
// @Tags Boards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Board ID"
// @Success 200 {object} SuccessResponse{data=BoardResponse}
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/board/delete/{id} [delete]
func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	board, err := h.boards.Delete(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toBoardResponse(*board), "Board deleted successfully")
}
