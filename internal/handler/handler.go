package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"

	"gamevault/backend/internal/auth"
	"gamevault/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Handler serves the HTTP API on top of the domain services.
type Handler struct {
	db      *gorm.DB
	auth    *service.AuthService
	games   *service.GameService
	reviews *service.ReviewService
	stats   *service.StatsService
}

func New(db *gorm.DB, authSvc *service.AuthService, games *service.GameService, reviews *service.ReviewService, stats *service.StatsService) *Handler {
	return &Handler{db: db, auth: authSvc, games: games, reviews: reviews, stats: stats}
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Success bool                `json:"success" example:"false"`
	Message string              `json:"message" example:"Validation errors"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// MessageResponse is returned by operations without a payload.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Review deleted successfully"`
}

var ginValidatorOnce sync.Once

// useJSONFieldNames makes gin's binding errors name fields as clients send them.
func useJSONFieldNames() {
	ginValidatorOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			service.RegisterJSONFieldNames(v)
		}
	})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Success: false, Message: message})
}

// respondError maps service errors onto status codes.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Success: false, Message: verr.Message, Errors: verr.Fields})
	case errors.Is(err, service.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrUnauthenticated):
		fail(c, http.StatusUnauthorized, "Unauthenticated")
	case errors.Is(err, auth.ErrForbidden):
		fail(c, http.StatusForbidden, "You are not allowed to perform this action")
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, service.ErrDuplicateReview):
		fail(c, http.StatusConflict, "You have already reviewed this game")
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// bindJSON decodes the body into dst. Rule violations become a 422 with
// per-field messages, undecodable bodies a 400.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		respondError(c, service.FromValidator(verrs))
		return false
	}
	fail(c, http.StatusBadRequest, "Invalid request body")
	return false
}

func parseID(c *gin.Context, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, "Invalid "+what+" ID")
		return 0, false
	}
	return uint(id), true
}

// actor returns the authenticated identity. Routes using it sit behind AuthMiddleware.
func actor(c *gin.Context) auth.Actor {
	a, _ := auth.ActorFrom(c)
	return a
}
