// Package activity records every mutating API request in the activity log.
package activity

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"gamevault/backend/internal/auth"
	"gamevault/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	HeaderRequestID  = "X-Request-ID"
	ContextRequestID = "requestID"
)

// Details is the JSON payload stored with each entry. Request bodies are
// never recorded since they may carry passwords.
type Details struct {
	Route     string   `json:"route,omitempty"`
	Query     string   `json:"query,omitempty"`
	ClientIP  string   `json:"client_ip,omitempty"`
	UserAgent string   `json:"user_agent,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Middleware tags each request with a request id and, once the handler chain
// has run, stores an ActivityLog row for POST, PUT, PATCH and DELETE requests.
// The acting user is taken from the auth middleware further down the chain.
func Middleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		if !mutating(c.Request.Method) {
			return
		}

		entry := models.ActivityLog{
			RequestID: requestID,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Status:    c.Writer.Status(),
		}
		if actor, ok := auth.ActorFrom(c); ok {
			entry.UserID = &actor.ID
		}

		details := Details{
			Route:     c.FullPath(),
			Query:     c.Request.URL.RawQuery,
			ClientIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Errors:    c.Errors.Errors(),
		}
		raw, err := json.Marshal(details)
		if err != nil {
			log.Printf("activity: encode details: %v", err)
			return
		}
		entry.Details = datatypes.JSON(raw)

		// the client already has its response, so a failed write is only logged
		if err := db.WithContext(c.Request.Context()).Create(&entry).Error; err != nil {
			log.Printf("activity: record %s %s: %v", entry.Method, entry.Path, err)
		}
	}
}

// Recent returns the newest activity entries, at most limit of them.
func Recent(ctx context.Context, db *gorm.DB, limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
