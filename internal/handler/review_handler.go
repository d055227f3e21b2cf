package handler

import (
	"net/http"
	"time"

	"gamevault/backend/internal/models"
	"gamevault/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// ReviewAuthor is the public part of a review's author.
type ReviewAuthor struct {
	ID   uint   `json:"id" example:"1"`
	Name string `json:"name" example:"GamerPro"`
}

// ReviewGame identifies the reviewed game.
type ReviewGame struct {
	ID       uint   `json:"id" example:"1"`
	Title    string `json:"title" example:"Hades"`
	ImageURL string `json:"image_url"`
}

type ReviewResponse struct {
	ID        uint          `json:"id" example:"1"`
	UserID    uint          `json:"user_id" example:"1"`
	GameID    uint          `json:"game_id" example:"1"`
	Rating    int           `json:"rating" example:"5"`
	Comment   string        `json:"comment"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	User      *ReviewAuthor `json:"user,omitempty"`
	Game      *ReviewGame   `json:"game,omitempty"`
}

// ReviewEnvelope wraps a single review.
type ReviewEnvelope struct {
	Success bool           `json:"success" example:"true"`
	Message string         `json:"message,omitempty"`
	Data    ReviewResponse `json:"data"`
}

// ReviewListResponse wraps a list of reviews.
type ReviewListResponse struct {
	Success bool             `json:"success" example:"true"`
	Data    []ReviewResponse `json:"data"`
}

func newReviewResponse(r models.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		GameID:    r.GameID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	// associations are only present when preloaded
	if r.User.ID != 0 {
		resp.User = &ReviewAuthor{ID: r.User.ID, Name: r.User.Name}
	}
	if r.Game.ID != 0 {
		resp.Game = &ReviewGame{ID: r.Game.ID, Title: r.Game.Title, ImageURL: r.Game.ImageURL}
	}
	return resp
}

func newReviewListResponse(reviews []models.Review) ReviewListResponse {
	data := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		data[i] = newReviewResponse(r)
	}
	return ReviewListResponse{Success: true, Data: data}
}

// endregion

// region --- Review Handlers ---

// RecentReviews godoc
// @Summary      Latest reviews
// @Description  The newest reviews across all games, with author and game.
// @Tags         reviews
// @Produce      json
// @Param        limit query int false "Number of reviews, at most 50" default(6)
// @Success      200  {object}  ReviewListResponse
// @Router       /reviews/recent [get]
func (h *Handler) RecentReviews(c *gin.Context) {
	reviews, err := h.reviews.Recent(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReviewListResponse(reviews))
}

// CreateReview godoc
// @Summary      Review a game
// @Description  Posts the caller's review. Each user may review a game once; the game's rating is recomputed.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body service.ReviewInput true "Review"
// @Success      201  {object}  ReviewEnvelope
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Already reviewed"
// @Failure      422  {object}  ErrorResponse
// @Router       /reviews [post]
func (h *Handler) CreateReview(c *gin.Context) {
	var input service.ReviewInput
	if !bindJSON(c, &input) {
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), actor(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ReviewEnvelope{Success: true, Message: "Review submitted successfully", Data: newReviewResponse(*review)})
}

// UpdateReview godoc
// @Summary      Edit a review
// @Description  Only the author or an admin may edit a review.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                       true  "Review ID"
// @Param        input body  service.ReviewUpdateInput true  "Review"
// @Success      200  {object}  ReviewEnvelope
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /reviews/{id} [put]
func (h *Handler) UpdateReview(c *gin.Context) {
	id, ok := parseID(c, "review")
	if !ok {
		return
	}
	var input service.ReviewUpdateInput
	if !bindJSON(c, &input) {
		return
	}

	review, err := h.reviews.Update(c.Request.Context(), actor(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ReviewEnvelope{Success: true, Message: "Review updated successfully", Data: newReviewResponse(*review)})
}

// DeleteReview godoc
// @Summary      Delete a review
// @Description  Only the author or an admin may delete a review.
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Review ID"
// @Success      200  {object}  MessageResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /reviews/{id} [delete]
func (h *Handler) DeleteReview(c *gin.Context) {
	id, ok := parseID(c, "review")
	if !ok {
		return
	}
	if err := h.reviews.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Review deleted successfully"})
}

// UserReviews godoc
// @Summary      My reviews
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ReviewListResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /user/reviews [get]
func (h *Handler) UserReviews(c *gin.Context) {
	reviews, err := h.reviews.ForUser(c.Request.Context(), actor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReviewListResponse(reviews))
}

// endregion

// region --- Admin Handlers ---

// AdminListReviews godoc
// @Summary      Review moderation list
// @Tags         admin-reviews
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of reviews, at most 50" default(50)
// @Success      200  {object}  ReviewListResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/reviews [get]
func (h *Handler) AdminListReviews(c *gin.Context) {
	reviews, err := h.reviews.All(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReviewListResponse(reviews))
}

// endregion
