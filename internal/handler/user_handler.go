package handler

import (
	"net/http"
	"time"

	"workflo/internal/middleware"
	"workflo/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users        *service.UserService
	sessionTTL   time.Duration
	secureCookie bool
}

func NewUserHandler(users *service.UserService, sessionTTL time.Duration, secureCookie bool) *UserHandler {
	return &UserHandler{users: users, sessionTTL: sessionTTL, secureCookie: secureCookie}
}

// SignUpRequest представляет запрос на регистрацию
type SignUpRequest struct {
	Username string `json:"username" binding:"required,min=2,excludes=@"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// SignInRequest: login принимает email или имя пользователя
type SignInRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UpdateUserRequest: пустые поля не изменяются
type UpdateUserRequest struct {
	Username       *string `json:"username" binding:"omitempty,min=2,excludes=@"`
	Email          *string `json:"email" binding:"omitempty,email"`
	ProfilePicture *string `json:"profile_picture" binding:"omitempty,url"`
}

// SignUp godoc
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "Credentials"
// @Success 201 {object} SuccessResponse{data=UserResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/auth/signup [post]
func (h *UserHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.SignUp(c.Request.Context(), service.SignUpInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, toUserResponse(*user), "User registered successfully")
}

// SignIn godoc
// @Summary Sign in with email or username
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Credentials"
// @Success 200 {object} SuccessResponse{data=AuthResponse}
// @Failure 401 {object} ErrorResponse
// @Router /api/auth/signin [post]
func (h *UserHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if !bindJSON(c, &req) {
		return
	}

	token, user, err := h.users.SignIn(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	// Токен также кладём в http-only cookie
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.sessionTTL.Seconds()), "/", "", h.secureCookie, true)

	respondSuccess(c, http.StatusOK, AuthResponse{Token: token, User: toUserResponse(*user)}, "Signed in successfully")
}

// SignOut godoc
// @Summary Clear the session cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /api/auth/signout [post]
func (h *UserHandler) SignOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
	respondSuccess(c, http.StatusOK, nil, "Signed out successfully")
}

// Me godoc
// @Summary Current user profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SuccessResponse{data=UserResponse}
// @Failure 401 {object} ErrorResponse
// @Router /api/user/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toUserResponse(*user), "User fetched successfully")
}

// Update godoc
// @Summary Update own profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} SuccessResponse{data=UserResponse}
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/user/update/{id} [post]
func (h *UserHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, targetID, service.UpdateProfileInput{
		Username:       req.Username,
		Email:          req.Email,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, toUserResponse(*user), "User updated successfully")
}
