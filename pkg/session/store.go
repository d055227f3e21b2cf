// Package session keeps the signed-in user and token of an API client.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"gamevault/backend/pkg/apiclient"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Remote is the part of the API the store talks to.
type Remote interface {
	Me(ctx context.Context, token string) (*apiclient.User, error)
	Logout(ctx context.Context, token string) error
}

// UserPatch holds the user fields to change. Nil fields are left alone.
type UserPatch struct {
	Name          *string
	Email         *string
	Role          *string
	ReviewsCount  *int64
	AverageRating *float64
}

// Store holds the current session and mirrors it to Storage. Token and user
// are always set or cleared together.
type Store struct {
	storage Storage
	remote  Remote

	mu    sync.RWMutex
	token string
	user  *apiclient.User
}

func New(storage Storage, remote Remote) *Store {
	return &Store{storage: storage, remote: remote}
}

// Init adopts a persisted session and revalidates it in the background. The
// returned channel is closed once revalidation is over (or immediately when
// there is nothing to revalidate).
//
// A rejected token clears the session, unless another Login or Logout
// replaced it in the meantime. Network failures keep the session.
func (s *Store) Init(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	token, user, ok := s.restore()
	if !ok {
		close(done)
		return done
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	go func() {
		defer close(done)
		fresh, err := s.remote.Me(ctx, token)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.token != token {
			return
		}
		var authErr *apiclient.AuthError
		switch {
		case errors.As(err, &authErr):
			s.clearLocked()
		case err != nil:
			log.Printf("session: revalidation failed, keeping session: %v", err)
		default:
			s.user = fresh
			s.persistUserLocked()
		}
	}()
	return done
}

// restore reads the persisted pair. Partial or unreadable state is cleared.
func (s *Store) restore() (string, *apiclient.User, bool) {
	token, hasToken, err := s.storage.Get(KeyToken)
	if err != nil {
		log.Printf("session: read token: %v", err)
		s.wipe()
		return "", nil, false
	}
	raw, hasUser, err := s.storage.Get(KeyUser)
	if err != nil {
		log.Printf("session: read user: %v", err)
		s.wipe()
		return "", nil, false
	}
	if !hasToken && !hasUser {
		return "", nil, false
	}
	if !hasToken || !hasUser || token == "" {
		s.wipe()
		return "", nil, false
	}

	var user apiclient.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Printf("session: corrupt stored user, clearing: %v", err)
		s.wipe()
		return "", nil, false
	}
	return token, &user, true
}

func (s *Store) wipe() {
	if err := s.storage.Delete(KeyToken, KeyUser); err != nil {
		log.Printf("session: clear storage: %v", err)
	}
}

func (s *Store) clearLocked() {
	s.token = ""
	s.user = nil
	s.wipe()
}

func (s *Store) persistUserLocked() error {
	data, err := json.Marshal(s.user)
	if err != nil {
		return err
	}
	if err := s.storage.Set(KeyUser, string(data)); err != nil {
		log.Printf("session: persist user: %v", err)
		return err
	}
	return nil
}

// Login replaces the session with user and token. Both keys are persisted
// before the session changes; if a write fails the previous session is kept
// in memory and in storage.
func (s *Store) Login(user apiclient.User, token string) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(KeyUser, string(data)); err != nil {
		return err
	}
	if err := s.storage.Set(KeyToken, token); err != nil {
		s.restoreUserLocked()
		return err
	}
	s.token = token
	s.user = &user
	return nil
}

// restoreUserLocked puts the in-memory user back in storage after a
// half-finished Login.
func (s *Store) restoreUserLocked() {
	if s.user == nil {
		if err := s.storage.Delete(KeyUser); err != nil {
			log.Printf("session: restore user: %v", err)
		}
		return
	}
	if err := s.persistUserLocked(); err != nil {
		s.clearLocked()
	}
}

// Logout clears the session and then revokes its token remotely. The remote
// error is returned so the caller can log it; the session is gone either way,
// and a Login made while the call is pending is kept.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.clearLocked()
	s.mu.Unlock()

	if token == "" {
		return nil
	}
	return s.remote.Logout(ctx, token)
}

// TokenRejected clears the session if token is still its token. Register it
// with apiclient.WithAuthErrorHandler so a 401 on any session call signs out.
func (s *Store) TokenRejected(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" || s.token != token {
		return
	}
	log.Printf("session: token rejected by the API, signing out")
	s.clearLocked()
}

// Client returns an API client that authenticates as this session and
// clears it when the API rejects the token.
func (s *Store) Client(baseURL string, opts ...apiclient.Option) *apiclient.Client {
	opts = append(opts, apiclient.WithTokenSource(s), apiclient.WithAuthErrorHandler(s.TokenRejected))
	return apiclient.New(baseURL, opts...)
}

// UpdateUser merges patch into the current user and persists it. The token
// is untouched. Without a session it does nothing.
func (s *Store) UpdateUser(patch UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}

	u := *s.user
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.ReviewsCount != nil {
		u.ReviewsCount = *patch.ReviewsCount
	}
	if patch.AverageRating != nil {
		u.AverageRating = *patch.AverageRating
	}
	s.user = &u
	return s.persistUserLocked()
}

// Token implements apiclient.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *apiclient.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin()
}

var _ apiclient.TokenSource = (*Store)(nil)
