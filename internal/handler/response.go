package handler

import (
	"errors"
	"net/http"

	"workflo/internal/middleware"
	"workflo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SuccessResponse is the envelope of every successful answer.
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// ErrorResponse is the envelope of every failed answer.
type ErrorResponse struct {
	Message string `json:"message"`
}

func respondSuccess(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, SuccessResponse{Data: data, Message: message})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message})
}

// respondError maps a service error onto a status code. Unexpected errors are
// attached to the context for the request logger and hidden from the caller.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		respondMessage(c, status, "Internal server error")
		return
	}
	respondMessage(c, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidInvite):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrInviteMismatch):
		return http.StatusForbidden
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEmailDelivery):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// currentUserID returns the id set by JWTAuthMiddleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		respondMessage(c, http.StatusUnauthorized, "Not authenticated")
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	if !ok {
		respondMessage(c, http.StatusInternalServerError, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

// uuidParam parses a path parameter, answering 400 when it is not a uuid.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// bodyUUID parses an id taken from a request body, answering 400 on failure.
// Unlike the validator's uuid rule it accepts upper-case hex, same as path ids.
func bodyUUID(c *gin.Context, field, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid "+field+" format")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the body, answering 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return false
	}
	return true
}
