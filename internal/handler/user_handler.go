package handler

import (
	"net/http"
	"time"

	"gamevault/backend/internal/auth"
	"gamevault/backend/internal/models"
	"gamevault/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// UserResponse is the serialized account. The password hash never leaves the server.
type UserResponse struct {
	ID            uint      `json:"id" example:"1"`
	Name          string    `json:"name" example:"Jane Player"`
	Email         string    `json:"email" example:"jane@example.com"`
	Role          string    `json:"role" example:"user"`
	ReviewsCount  int64     `json:"reviews_count" example:"3"`
	AverageRating float64   `json:"average_rating" example:"4.33"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserEnvelope wraps a single user.
type UserEnvelope struct {
	Success bool         `json:"success" example:"true"`
	Message string       `json:"message,omitempty"`
	User    UserResponse `json:"user"`
}

// LoginResponse carries the bearer token for subsequent requests.
type LoginResponse struct {
	Success bool         `json:"success" example:"true"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

func newUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func newProfileResponse(p *service.UserProfile) UserResponse {
	resp := newUserResponse(p.User)
	resp.ReviewsCount = p.ReviewsCount
	resp.AverageRating = p.AverageRating
	return resp
}

// endregion

// region --- Auth Handlers ---

// Register godoc
// @Summary      Register a new user
// @Description  Creates a new account with the user role.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body service.RegisterInput true "Registration Info"
// @Success      201  {object}  UserEnvelope
// @Failure      400  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var input service.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, UserEnvelope{Success: true, Message: "User registered successfully", User: newUserResponse(*user)})
}

// Login godoc
// @Summary      Log in a user
// @Description  Authenticates a user with email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body service.LoginInput true "Login Info"
// @Success      200  {object}  LoginResponse
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      422  {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var input service.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := h.auth.Profile(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Success: true, Token: token, User: newProfileResponse(profile)})
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the bearer token used for this request.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	claims, _ := auth.ClaimsFrom(c)
	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Logged out successfully"})
}

// endregion

// region --- Profile Handlers ---

// Me godoc
// @Summary      Get current user's info
// @Description  Returns the authenticated user with review counters. Clients use it to revalidate a stored token.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UserEnvelope
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	profile, err := h.auth.Profile(c.Request.Context(), actor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserEnvelope{Success: true, User: newProfileResponse(profile)})
}

// UpdateProfile godoc
// @Summary      Update profile
// @Description  Changes name and email. A new password requires the current one and a matching confirmation.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body service.ProfileInput true "Profile"
// @Success      200  {object}  UserEnvelope
// @Failure      401  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /auth/update-profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var input service.ProfileInput
	if !bindJSON(c, &input) {
		return
	}

	profile, err := h.auth.UpdateProfile(c.Request.Context(), actor(c).ID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserEnvelope{Success: true, Message: "Profile updated successfully", User: newProfileResponse(profile)})
}

// endregion
