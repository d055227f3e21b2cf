// Package apiclient is a typed client for the GameVault HTTP API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// token sends no Authorization header.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource with a fixed token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithAuthErrorHandler registers fn to be called with the token source's
// token whenever the API answers 401 to a request that carried it.
func WithAuthErrorHandler(fn func(token string)) Option {
	return func(c *Client) { c.onAuthError = fn }
}

// Client calls the API. baseURL includes the API prefix, e.g. http://localhost:8080/api.
type Client struct {
	baseURL     string
	http        *http.Client
	tokens      TokenSource
	onAuthError func(token string)
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080/api"
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) sessionToken() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
	Error   string              `json:"error"`
}

// decodeError maps an unsuccessful response onto the error taxonomy.
func decodeError(status int, body []byte) error {
	var data errorBody
	_ = json.Unmarshal(body, &data)
	msg := data.Message
	if msg == "" {
		msg = data.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return &ValidationError{Status: status, Message: msg, Fields: data.Errors}
	case http.StatusUnauthorized:
		return &AuthError{Message: msg}
	case http.StatusForbidden:
		return &AuthorizationError{Message: msg}
	case http.StatusConflict:
		return &ConflictError{Message: msg}
	case http.StatusNotFound:
		return &NotFoundError{Message: msg}
	default:
		return &StatusError{Status: status, Message: msg}
	}
}

// do sends a JSON request carrying the session token, if any, and decodes a
// successful JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	token := c.sessionToken()
	err := c.send(ctx, method, path, token, in, out)
	var authErr *AuthError
	if token != "" && c.onAuthError != nil && errors.As(err, &authErr) {
		c.onAuthError(token)
	}
	return err
}

// send performs the request with token as bearer. An empty token sends no
// Authorization header.
func (c *Client) send(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

type userEnvelope struct {
	User User `json:"user"`
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// region --- Auth ---

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	var out userEnvelope
	if err := c.send(ctx, http.MethodPost, "/auth/register", "", in, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login returns the token and the user it belongs to. It never sends the
// current session token, so bad credentials do not end the session.
func (c *Client) Login(ctx context.Context, email, password string) (string, *User, error) {
	var out struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/auth/login", "", in, &out); err != nil {
		return "", nil, err
	}
	return out.Token, &out.User, nil
}

// Logout revokes token. Me and Logout take the token explicitly because the
// session store uses them to manage that very token.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.send(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

// Me returns the user owning token.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var out userEnvelope
	if err := c.send(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*User, error) {
	var out userEnvelope
	if err := c.do(ctx, http.MethodPut, "/auth/update-profile", in, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// endregion

// region --- Games ---

func (c *Client) listGames(ctx context.Context, path string) ([]Game, error) {
	var out dataEnvelope[[]Game]
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) Games(ctx context.Context, q GameQuery) ([]Game, error) {
	v := url.Values{}
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	if q.Filter != "" {
		v.Set("filter", q.Filter)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	path := "/games"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	return c.listGames(ctx, path)
}

func (c *Client) FeaturedGames(ctx context.Context) ([]Game, error) {
	return c.listGames(ctx, "/games/featured")
}

func (c *Client) FreeGames(ctx context.Context) ([]Game, error) {
	return c.listGames(ctx, "/games/free")
}

func (c *Client) OnSaleGames(ctx context.Context) ([]Game, error) {
	return c.listGames(ctx, "/games/on-sale")
}

// Game returns a game with its reviews.
func (c *Client) Game(ctx context.Context, id uint) (*Game, error) {
	var out dataEnvelope[Game]
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/games/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// endregion

// region --- Reviews ---

func (c *Client) listReviews(ctx context.Context, path string, limit int) ([]Review, error) {
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out dataEnvelope[[]Review]
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// RecentReviews lists the newest reviews. limit 0 uses the server default.
func (c *Client) RecentReviews(ctx context.Context, limit int) ([]Review, error) {
	return c.listReviews(ctx, "/reviews/recent", limit)
}

func (c *Client) MyReviews(ctx context.Context) ([]Review, error) {
	return c.listReviews(ctx, "/user/reviews", 0)
}

func (c *Client) CreateReview(ctx context.Context, in ReviewRequest) (*Review, error) {
	var out dataEnvelope[Review]
	if err := c.do(ctx, http.MethodPost, "/reviews", in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) UpdateReview(ctx context.Context, id uint, in ReviewUpdate) (*Review, error) {
	var out dataEnvelope[Review]
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/reviews/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) DeleteReview(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/reviews/%d", id), nil, nil)
}

// endregion

// region --- Admin ---

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, "/admin/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminGames(ctx context.Context) ([]Game, error) {
	return c.listGames(ctx, "/admin/games")
}

func (c *Client) CreateGame(ctx context.Context, in GameRequest) (*Game, error) {
	var out dataEnvelope[Game]
	if err := c.do(ctx, http.MethodPost, "/admin/games", in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) UpdateGame(ctx context.Context, id uint, in GameRequest) (*Game, error) {
	var out dataEnvelope[Game]
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/games/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) DeleteGame(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/games/%d", id), nil, nil)
}

func (c *Client) AdminReviews(ctx context.Context, limit int) ([]Review, error) {
	return c.listReviews(ctx, "/admin/reviews", limit)
}

func (c *Client) Activity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	path := "/admin/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out dataEnvelope[[]ActivityEntry]
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// endregion

// Health reports whether the API and its database answer.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}
