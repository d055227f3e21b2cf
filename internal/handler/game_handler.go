package handler

import (
	"net/http"
	"time"

	"gamevault/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type GameResponse struct {
	ID            uint             `json:"id" example:"1"`
	Title         string           `json:"title" example:"Hades"`
	Description   string           `json:"description"`
	Price         float64          `json:"price" example:"24.99"`
	DiscountPrice *float64         `json:"discount_price" example:"12.49"`
	ImageURL      string           `json:"image_url"`
	SteamURL      string           `json:"steam_url"`
	EpicURL       string           `json:"epic_url"`
	Rating        float64          `json:"rating" example:"4.5"`
	IsFree        bool             `json:"is_free"`
	IsOnSale      bool             `json:"is_on_sale"`
	IsFeatured    bool             `json:"is_featured"`
	ReviewsCount  int64            `json:"reviews_count" example:"2"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Reviews       []ReviewResponse `json:"reviews,omitempty"`
}

// GameEnvelope wraps a single game.
type GameEnvelope struct {
	Success bool         `json:"success" example:"true"`
	Message string       `json:"message,omitempty"`
	Data    GameResponse `json:"data"`
}

// GameListResponse wraps a list of games.
type GameListResponse struct {
	Success bool           `json:"success" example:"true"`
	Data    []GameResponse `json:"data"`
}

func newGameResponse(g service.GameWithStats) GameResponse {
	return GameResponse{
		ID:            g.ID,
		Title:         g.Title,
		Description:   g.Description,
		Price:         g.Price,
		DiscountPrice: g.DiscountPrice,
		ImageURL:      g.ImageURL,
		SteamURL:      g.SteamURL,
		EpicURL:       g.EpicURL,
		Rating:        g.Rating,
		IsFree:        g.IsFree,
		IsOnSale:      g.IsOnSale,
		IsFeatured:    g.IsFeatured,
		ReviewsCount:  g.ReviewsCount,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

// newGameDetailResponse includes the reviews with their authors.
func newGameDetailResponse(g service.GameWithStats) GameResponse {
	resp := newGameResponse(g)
	resp.Reviews = make([]ReviewResponse, 0, len(g.Reviews))
	for _, r := range g.Reviews {
		rr := newReviewResponse(r)
		rr.Game = nil
		resp.Reviews = append(resp.Reviews, rr)
	}
	return resp
}

func newGameListResponse(games []service.GameWithStats) GameListResponse {
	data := make([]GameResponse, len(games))
	for i, g := range games {
		data[i] = newGameResponse(g)
	}
	return GameListResponse{Success: true, Data: data}
}

// endregion

// region --- Public Handlers ---

// ListGames godoc
// @Summary      Get a list of games
// @Description  Lists the catalog with an optional substring search, flag filter and ordering.
// @Tags         games
// @Produce      json
// @Param        q      query  string  false  "Case-insensitive substring of title or description"
// @Param        filter query  string  false  "all, free, sale or featured" default(all)
// @Param        sort   query  string  false  "rating, price_low, price_high, name, reviews or newest" default(rating)
// @Success      200  {object}  GameListResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /games [get]
func (h *Handler) ListGames(c *gin.Context) {
	h.listGames(c, service.ListOptions{
		Query:  c.Query("q"),
		Filter: c.Query("filter"),
		Sort:   c.Query("sort"),
	})
}

// FeaturedGames godoc
// @Summary      Featured games
// @Tags         games
// @Produce      json
// @Success      200  {object}  GameListResponse
// @Router       /games/featured [get]
func (h *Handler) FeaturedGames(c *gin.Context) {
	h.listGames(c, service.ListOptions{Filter: service.FilterFeatured})
}

// FreeGames godoc
// @Summary      Free-to-play games
// @Tags         games
// @Produce      json
// @Success      200  {object}  GameListResponse
// @Router       /games/free [get]
func (h *Handler) FreeGames(c *gin.Context) {
	h.listGames(c, service.ListOptions{Filter: service.FilterFree})
}

// OnSaleGames godoc
// @Summary      Discounted games
// @Tags         games
// @Produce      json
// @Success      200  {object}  GameListResponse
// @Router       /games/on-sale [get]
func (h *Handler) OnSaleGames(c *gin.Context) {
	h.listGames(c, service.ListOptions{Filter: service.FilterSale})
}

func (h *Handler) listGames(c *gin.Context, opts service.ListOptions) {
	games, err := h.games.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGameListResponse(games))
}

// GetGame godoc
// @Summary      Get a single game by ID
// @Description  Returns a game with its reviews, newest first, each with its author.
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} GameEnvelope
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func (h *Handler) GetGame(c *gin.Context) {
	id, ok := parseID(c, "game")
	if !ok {
		return
	}
	game, err := h.games.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, GameEnvelope{Success: true, Data: newGameDetailResponse(*game)})
}

// endregion

// region --- Admin Handlers ---

// AdminListGames godoc
// @Summary      List games for the admin console
// @Description  Every game, newest first, with review counts.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  GameListResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/games [get]
func (h *Handler) AdminListGames(c *gin.Context) {
	h.listGames(c, service.ListOptions{Sort: service.SortNewest})
}

// CreateGame godoc
// @Summary      Create a new game
// @Description  A free game is stored with price 0, no discount and not on sale.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body service.GameInput true "Game Info"
// @Success      201  {object}  GameEnvelope
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      422  {object}  ErrorResponse
// @Router       /admin/games [post]
func (h *Handler) CreateGame(c *gin.Context) {
	var input service.GameInput
	if !bindJSON(c, &input) {
		return
	}

	game, err := h.games.Create(c.Request.Context(), actor(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, GameEnvelope{Success: true, Message: "Game created successfully", Data: newGameResponse(*game)})
}

// UpdateGame godoc
// @Summary      Update a game
// @Description  Replaces a game's editable fields. The rating is derived from reviews and cannot be set.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int               true  "Game ID"
// @Param        input body      service.GameInput true  "New Game Info"
// @Success      200   {object}  GameEnvelope
// @Failure      403   {object}  ErrorResponse "Admin access required"
// @Failure      404   {object}  ErrorResponse "Game not found"
// @Failure      422   {object}  ErrorResponse
// @Router       /admin/games/{id} [put]
func (h *Handler) UpdateGame(c *gin.Context) {
	id, ok := parseID(c, "game")
	if !ok {
		return
	}
	var input service.GameInput
	if !bindJSON(c, &input) {
		return
	}

	game, err := h.games.Update(c.Request.Context(), actor(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, GameEnvelope{Success: true, Message: "Game updated successfully", Data: newGameResponse(*game)})
}

// DeleteGame godoc
// @Summary      Delete a game
// @Description  Deletes a game together with its reviews.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} MessageResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /admin/games/{id} [delete]
func (h *Handler) DeleteGame(c *gin.Context) {
	id, ok := parseID(c, "game")
	if !ok {
		return
	}
	if err := h.games.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Game deleted successfully"})
}

// endregion
