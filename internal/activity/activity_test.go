package activity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gamevault/backend/internal/auth"
	"gamevault/backend/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestMiddlewareRecordsMutations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := database.OpenTest(t)

	router := gin.New()
	router.Use(Middleware(db))
	router.Use(func(c *gin.Context) {
		c.Set(auth.ContextUserID, uint(7))
		c.Set(auth.ContextUserRole, "user")
	})
	router.GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/items/:id", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items", nil))
	if w.Header().Get(HeaderRequestID) == "" {
		t.Fatal("missing request id header on GET")
	}

	requestID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/items/3?draft=1", nil)
	req.Header.Set(HeaderRequestID, requestID)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get(HeaderRequestID); got != requestID {
		t.Fatalf("request id = %q, want %q", got, requestID)
	}

	entries, err := Recent(context.Background(), db, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("recorded %d entries, want only the POST", len(entries))
	}
	e := entries[0]
	if e.Method != http.MethodPost || e.Path != "/items/3" || e.Status != http.StatusCreated || e.RequestID != requestID {
		t.Fatalf("entry = %+v", e)
	}
	if e.UserID == nil || *e.UserID != 7 {
		t.Fatalf("user id = %v, want 7", e.UserID)
	}

	var details Details
	if err := json.Unmarshal(e.Details, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details.Route != "/items/:id" || details.Query != "draft=1" {
		t.Fatalf("details = %+v", details)
	}
}

func TestMiddlewareReplacesMalformedRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := database.OpenTest(t)

	router := gin.New()
	router.Use(Middleware(db))
	router.DELETE("/items/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodDelete, "/items/1", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	got := w.Header().Get(HeaderRequestID)
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("request id %q is not a uuid", got)
	}

	entries, err := Recent(context.Background(), db, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].UserID != nil || entries[0].Status != http.StatusNotFound {
		t.Fatalf("entries = %+v", entries)
	}
}
