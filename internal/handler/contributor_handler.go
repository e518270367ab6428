package handler

import (
	"net/http"

	"workflo/internal/model"
	"workflo/internal/repository"
	"workflo/internal/service"

	"github.com/gin-gonic/gin"
)

type ContributorHandler struct {
	contributors *service.ContributorService
}

func NewContributorHandler(contributors *service.ContributorService) *ContributorHandler {
	return &ContributorHandler{contributors: contributors}
}

// CreateContributorRequest представляет запрос на добавление участника
type CreateContributorRequest struct {
	BoardID string `json:"board_id" binding:"required"`
	UserID  string `json:"user_id" binding:"required"`
	Role    string `json:"role" binding:"required,oneof=ADMIN EDITOR VIEWER"`
}

// UpdateContributorRequest представляет запрос на смену роли
type UpdateContributorRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN EDITOR VIEWER"`
}

// GetByBoard godoc
// @Summary List a board's contributors
// @Tags Contributors
// @Produce json
// @Security BearerAuth
// @Param board_id path string true "Board ID"
// @Param role query string false "ADMIN, EDITOR or VIEWER"
// @Param query query string false "Search over username and email"
// @Success 200 {object} SuccessResponse{data=[]ContributorResponse}
// @Failure 403 {object} ErrorResponse
// @Router /api/contributor/fetch/{board_id} [get]
func (h *ContributorHandler) GetByBoard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "board_id")
	if !ok {
		return
	}

	contributors, err := h.contributors.ListByBoard(c.Request.Context(), userID, boardID, repository.ContributorFilter{
		Role:  model.Role(c.Query("role")),
		Query: c.Query("query"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toContributorResponses(contributors), "Contributors fetched successfully")
}

// Search godoc
// @Summary Search contributors across the caller's boards
// @Tags Contributors
// @Produce json
// @Security BearerAuth
// @Param query query string true "Search over username and email"
// @Success 200 {object} SuccessResponse{data=[]ContributorResponse}
// @Failure 400 {object} ErrorResponse
// @Router /api/contributor/fetch [get]
func (h *ContributorHandler) Search(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	contributors, err := h.contributors.Search(c.Request.Context(), userID, c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toContributorResponses(contributors), "Contributors fetched successfully")
}

// Create godoc
// @Summary Add a pending contributor
// @Tags Contributors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateContributorRequest true "Contributor"
// @Success 201 {object} SuccessResponse{data=ContributorResponse}
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/contributor/create [post]
func (h *ContributorHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateContributorRequest
	if !bindJSON(c, &req) {
		return
	}
	boardID, ok := bodyUUID(c, "board_id", req.BoardID)
	if !ok {
		return
	}
	invitee, ok := bodyUUID(c, "user_id", req.UserID)
	if !ok {
		return
	}

	contributor, err := h.contributors.Create(c.Request.Context(), userID, service.CreateContributorInput{
		BoardID: boardID,
		UserID:  invitee,
		Role:    model.Role(req.Role),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, toContributorResponse(*contributor), "Contributor invitation sent successfully")
}

// Update godoc
// @Summary Change a contributor's role
// @Tags Contributors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contributor ID"
// @Param request body UpdateContributorRequest true "Role"
// @Success 200 {object} SuccessResponse{data=ContributorResponse}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/contributor/update/{id} [post]
func (h *ContributorHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	contributorID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateContributorRequest
	if !bindJSON(c, &req) {
		return
	}

	contributor, err := h.contributors.UpdateRole(c.Request.Context(), userID, contributorID, model.Role(req.Role))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toContributorResponse(*contributor), "Contributor updated successfully")
}

// Delete godoc
// @Summary Remove a contributor
// @Tags Contributors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contributor ID"
// @Success 200 {object} SuccessResponse{data=ContributorResponse}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/contributor/delete/{id} [delete]
func (h *ContributorHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	contributorID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	contributor, err := h.contributors.Remove(c.Request.Context(), userID, contributorID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toContributorResponse(*contributor), "Contributor removed successfully")
}

// Accept godoc
// @Summary Accept a pending contributor record
// @Tags Contributors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contributor ID"
// @Success 200 {object} SuccessResponse{data=ContributorResponse}
// @Router /api/contributor/accept/{id} [post]
func (h *ContributorHandler) Accept(c *gin.Context) {
	h.respond(c, true, "Invitation accepted successfully")
}

// Decline godoc
// @Summary Decline a pending contributor record
// @Tags Contributors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contributor ID"
// @Success 200 {object} SuccessResponse{data=ContributorResponse}
// @Router /api/contributor/decline/{id} [post]
func (h *ContributorHandler) Decline(c *gin.Context) {
	h.respond(c, false, "Invitation declined successfully")
}

func (h *ContributorHandler) respond(c *gin.Context, accept bool, message string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	contributorID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	contributor, err := h.contributors.Respond(c.Request.Context(), userID, contributorID, accept)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toContributorResponse(*contributor), message)
}
