package handler

import (
	"errors"
	"net/http"

	"workflo/internal/model"
	"workflo/internal/service"

	"github.com/gin-gonic/gin"
)

type InviteHandler struct {
	invites *service.InvitationService
}

func NewInviteHandler(invites *service.InvitationService) *InviteHandler {
	return &InviteHandler{invites: invites}
}

// InviteRequest представляет запрос на приглашение по email
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=ADMIN EDITOR VIEWER"`
}

// InviteTokenRequest несёт токен из ссылки приглашения
type InviteTokenRequest struct {
	InviteHash string `json:"invite_hash" binding:"required"`
}

// Issue godoc
// @Summary Invite someone to a board by email
// @Description A 502 still carries the issued invitation in data: the link works even though the email failed.
// @Tags Invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param boardId path string true "Board ID"
// @Param request body InviteRequest true "Invitee"
// @Success 200 {object} SuccessResponse{data=service.IssuedInvite}
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} SuccessResponse{data=service.IssuedInvite}
// @Router /api/invite/{boardId} [post]
func (h *InviteHandler) Issue(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId")
	if !ok {
		return
	}

	var req InviteRequest
	if !bindJSON(c, &req) {
		return
	}

	issued, err := h.invites.Issue(c.Request.Context(), userID, boardID, service.IssueInviteInput{
		Email: req.Email,
		Role:  model.Role(req.Role),
	})
	if errors.Is(err, service.ErrEmailDelivery) && issued != nil {
		_ = c.Error(err)
		respondSuccess(c, http.StatusBadGateway, issued, err.Error())
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, issued, "Invitation sent successfully")
}

// Decode godoc
// @Summary Read an invitation without redeeming it
// @Tags Invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body InviteTokenRequest true "Token"
// @Success 200 {object} SuccessResponse{data=auth.Invite}
// @Failure 401 {object} ErrorResponse
// @Router /api/invite/decode [post]
func (h *InviteHandler) Decode(c *gin.Context) {
	var req InviteTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	invite, err := h.invites.Decode(c.Request.Context(), req.InviteHash)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, invite, "Invitation decoded successfully")
}

// Accept godoc
// @Summary Redeem an invitation
// @Description The caller must be userId and own the invited email address.
// @Tags Invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param boardId path string true "Board ID"
// @Param userId path string true "User ID"
// @Param request body InviteTokenRequest true "Token"
// @Success 201 {object} SuccessResponse{data=ContributorResponse}
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/invite/accept/{boardId}/user/{userId} [post]
func (h *InviteHandler) Accept(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "boardId")
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}

	var req InviteTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	contributor, err := h.invites.Accept(c.Request.Context(), actorID, boardID, userID, req.InviteHash)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, toContributorResponse(*contributor), "Invitation accepted successfully")
}

// Decline godoc
// @Summary Decline an invitation
// @Tags Invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body InviteTokenRequest true "Token"
// @Success 200 {object} SuccessResponse{data=auth.Invite}
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/invite/decline [post]
func (h *InviteHandler) Decline(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req InviteTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	invite, err := h.invites.Decline(c.Request.Context(), userID, req.InviteHash)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, invite, "Invitation declined")
}
