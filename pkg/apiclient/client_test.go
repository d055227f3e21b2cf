package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestErrorTaxonomy(t *testing.T) {
	statuses := map[string]int{
		"/api/games/1": http.StatusUnprocessableEntity,
		"/api/games/2": http.StatusBadRequest,
		"/api/games/3": http.StatusUnauthorized,
		"/api/games/4": http.StatusForbidden,
		"/api/games/5": http.StatusConflict,
		"/api/games/6": http.StatusNotFound,
		"/api/games/7": http.StatusInternalServerError,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, statuses[r.URL.Path], map[string]any{
			"success": false,
			"message": "nope",
			"errors":  map[string][]string{"rating": {"The rating may not be greater than 5."}},
		})
	}))
	defer srv.Close()
	c := New(srv.URL + "/api")
	ctx := context.Background()

	_, err := c.Game(ctx, 1)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Status != http.StatusUnprocessableEntity || verr.First("rating") == "" {
		t.Fatalf("422: %#v", err)
	}
	if _, err := c.Game(ctx, 2); !errors.As(err, &verr) || verr.Status != http.StatusBadRequest {
		t.Fatalf("400: %#v", err)
	}

	checks := []struct {
		id    uint
		match func(error) bool
	}{
		{3, func(err error) bool { var e *AuthError; return errors.As(err, &e) }},
		{4, func(err error) bool { var e *AuthorizationError; return errors.As(err, &e) }},
		{5, func(err error) bool { var e *ConflictError; return errors.As(err, &e) }},
		{6, func(err error) bool { var e *NotFoundError; return errors.As(err, &e) }},
		{7, func(err error) bool {
			var e *StatusError
			return errors.As(err, &e) && e.Status == http.StatusInternalServerError && e.Message == "nope"
		}},
	}
	for _, tc := range checks {
		if _, err := c.Game(ctx, tc.id); !tc.match(err) {
			t.Errorf("game %d: unexpected error %#v", tc.id, err)
		}
	}

	srv.Close()
	_, err = c.Game(ctx, 1)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("closed server: %#v", err)
	}
}

func TestBearerToken(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Path] = r.Header.Get("Authorization")
		mu.Unlock()
		switch r.URL.Path {
		case "/api/auth/me":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": map[string]any{"id": 3, "name": "Jane", "role": "admin"}})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", WithTokenSource(StaticToken("session-token")))
	ctx := context.Background()

	if _, err := c.MyReviews(ctx); err != nil {
		t.Fatal(err)
	}
	user, err := c.Me(ctx, "other-token")
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != 3 || !user.IsAdmin() {
		t.Fatalf("me = %+v", user)
	}
	if _, err := New(srv.URL+"/api").RecentReviews(ctx, 3); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got := seen["/api/user/reviews"]; got != "Bearer session-token" {
		t.Errorf("user reviews auth = %q", got)
	}
	if got := seen["/api/auth/me"]; got != "Bearer other-token" {
		t.Errorf("me auth = %q", got)
	}
	if got := seen["/api/reviews/recent"]; got != "" {
		t.Errorf("anonymous call sent %q", got)
	}
}

// fakeAPI serves a one-game catalog whose rating follows posted reviews.
type fakeAPI struct {
	mu        sync.Mutex
	reviews   []Review
	listCalls int
}

func (f *fakeAPI) game() Game {
	g := Game{ID: 1, Title: "Hades", Description: "Rogue-like", Price: 24.99}
	sum := 0
	for _, r := range f.reviews {
		sum += r.Rating
	}
	if n := len(f.reviews); n > 0 {
		g.Rating = float64(sum) / float64(n)
		g.ReviewsCount = int64(n)
	}
	g.Reviews = append([]Review(nil), f.reviews...)
	return g
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/games", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listCalls++
		g := f.game()
		g.Reviews = nil
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []Game{g}})
	})
	mux.HandleFunc("GET /api/games/featured", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []Game{}})
	})
	mux.HandleFunc("GET /api/games/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": f.game()})
	})
	mux.HandleFunc("GET /api/reviews/recent", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": append([]Review{}, f.reviews...)})
	})
	mux.HandleFunc("POST /api/reviews", func(w http.ResponseWriter, r *http.Request) {
		var in ReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "bad body"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if len(f.reviews) > 0 {
			writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "You have already reviewed this game"})
			return
		}
		rev := Review{ID: 10, GameID: in.GameID, Rating: in.Rating, Comment: in.Comment}
		f.reviews = append(f.reviews, rev)
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": rev})
	})
	return mux
}

func TestCatalogInvalidatesAndReloads(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	catalog := NewCatalog(New(srv.URL + "/api"))
	ctx := context.Background()

	list, err := catalog.Games(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if list.Fallback || len(list.Games) != 1 || list.Games[0].Rating != 0 {
		t.Fatalf("initial list = %+v", list)
	}
	if _, err := catalog.Games(ctx); err != nil {
		t.Fatal(err)
	}
	if api.calls() != 1 {
		t.Fatalf("list fetched %d times, want 1 (cached)", api.calls())
	}
	if g, err := catalog.Game(ctx, 1); err != nil || len(g.Reviews) != 0 {
		t.Fatalf("detail = %+v, %v", g, err)
	}
	if recent, err := catalog.RecentReviews(ctx, 6); err != nil || recent.Fallback || len(recent.Reviews) != 0 {
		t.Fatalf("recent = %+v, %v", recent, err)
	}

	if _, err := catalog.SubmitReview(ctx, ReviewRequest{GameID: 1, Rating: 4, Comment: "Great"}); err != nil {
		t.Fatal(err)
	}
	if api.calls() != 2 {
		t.Fatalf("list fetched %d times after mutation, want 2", api.calls())
	}
	list, _ = catalog.Games(ctx)
	if list.Games[0].Rating != 4 || list.Games[0].ReviewsCount != 1 {
		t.Fatalf("list after review = %+v", list.Games[0])
	}
	if g, _ := catalog.Game(ctx, 1); len(g.Reviews) != 1 {
		t.Fatalf("detail after review has %d reviews", len(g.Reviews))
	}
	if recent, _ := catalog.RecentReviews(ctx, 6); len(recent.Reviews) != 1 || recent.Reviews[0].Comment != "Great" {
		t.Fatalf("recent after review = %+v", recent)
	}

	_, err = catalog.SubmitReview(ctx, ReviewRequest{GameID: 1, Rating: 1, Comment: "Again"})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second review err = %#v", err)
	}
	if api.calls() != 2 {
		t.Fatalf("failed mutation reloaded the list (%d calls)", api.calls())
	}
}

func TestCatalogFallsBackWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	catalog := NewCatalog(New(srv.URL + "/api"))
	ctx := context.Background()

	list, err := catalog.Games(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !list.Fallback || len(list.Games) != len(Placeholders()) {
		t.Fatalf("fallback list = %+v", list)
	}
	featured, err := catalog.Featured(ctx)
	if err != nil || !featured.Fallback || len(featured.Games) == 0 {
		t.Fatalf("featured = %+v, %v", featured, err)
	}

	recent, err := catalog.RecentReviews(ctx, 0)
	if err != nil || !recent.Fallback || len(recent.Reviews) != len(PlaceholderReviews()) {
		t.Fatalf("recent = %+v, %v", recent, err)
	}
	if recent.Reviews[0].User == nil || recent.Reviews[0].User.Name == "" {
		t.Fatalf("placeholder review has no author: %+v", recent.Reviews[0])
	}

	if _, err := catalog.Game(ctx, 1); err == nil {
		t.Fatal("detail reads do not fall back")
	}
}

func TestViewApply(t *testing.T) {
	games := append(Placeholders(), Game{ID: 3, Title: "Celeste", Description: "A mountain climb", Price: 19.99, Rating: 4.8, ReviewsCount: 9})

	tests := []struct {
		name string
		view View
		want []uint
	}{
		{"default rating order", View{}, []uint{3, 2, 1}},
		{"price low", View{Sort: SortPriceLow}, []uint{2, 3, 1}},
		{"price high", View{Sort: SortPriceHigh}, []uint{1, 3, 2}},
		{"name", View{Sort: SortName}, []uint{3, 1, 2}},
		{"reviews", View{Sort: SortReviews}, []uint{3, 1, 2}},
		{"free", View{Filter: FilterFree}, []uint{2}},
		{"sale", View{Filter: FilterSale}, []uint{1}},
		{"search is case-insensitive", View{Query: "MOUNTAIN"}, []uint{3}},
		{"search and filter", View{Query: "night", Filter: FilterFree}, []uint{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.view.Apply(games)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d games, want %d", len(got), len(tt.want))
			}
			for i, g := range got {
				if g.ID != tt.want[i] {
					t.Fatalf("position %d = game %d, want %d", i, g.ID, tt.want[i])
				}
			}
		})
	}

	if games[0].ID != 1 {
		t.Fatal("Apply reordered its input")
	}
}

func TestAuthErrorHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid credentials"})
	}))
	defer srv.Close()

	var rejected []string
	c := New(srv.URL+"/api", WithTokenSource(StaticToken("session")), WithAuthErrorHandler(func(token string) {
		rejected = append(rejected, token)
	}))
	ctx := context.Background()

	if _, _, err := c.Login(ctx, "jane@example.com", "wrong"); err == nil {
		t.Fatal("expected login to fail")
	}
	if _, err := c.Me(ctx, "explicit"); err == nil {
		t.Fatal("expected me to fail")
	}
	if len(rejected) != 0 {
		t.Fatalf("calls without the session token reported %v", rejected)
	}

	if _, err := c.MyReviews(ctx); err == nil {
		t.Fatal("expected my reviews to fail")
	}
	if len(rejected) != 1 || rejected[0] != "session" {
		t.Fatalf("rejected = %v", rejected)
	}
}
