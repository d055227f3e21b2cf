package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"gamevault/backend/internal/activity"

	"github.com/gin-gonic/gin"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// ActivityResponse is one recorded API mutation.
type ActivityResponse struct {
	ID        uint            `json:"id"`
	RequestID string          `json:"request_id"`
	UserID    *uint           `json:"user_id"`
	Method    string          `json:"method" example:"POST"`
	Path      string          `json:"path" example:"/api/reviews"`
	Status    int             `json:"status" example:"201"`
	Details   json.RawMessage `json:"details" swaggertype:"object"`
	CreatedAt time.Time       `json:"created_at"`
}

// ActivityListResponse wraps the activity log.
type ActivityListResponse struct {
	Success bool               `json:"success" example:"true"`
	Data    []ActivityResponse `json:"data"`
}

// Stats godoc
// @Summary      Dashboard counters
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.Stats
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.stats.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdminActivity godoc
// @Summary      Activity log
// @Description  The newest recorded mutations, newest first.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of entries, at most 200" default(50)
// @Success      200  {object}  ActivityListResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/activity [get]
func (h *Handler) AdminActivity(c *gin.Context) {
	limit := queryLimit(c)
	if limit == 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	entries, err := activity.Recent(c.Request.Context(), h.db, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]ActivityResponse, len(entries))
	for i, e := range entries {
		data[i] = ActivityResponse{
			ID:        e.ID,
			RequestID: e.RequestID,
			UserID:    e.UserID,
			Method:    e.Method,
			Path:      e.Path,
			Status:    e.Status,
			Details:   json.RawMessage(e.Details),
			CreatedAt: e.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, ActivityListResponse{Success: true, Data: data})
}
