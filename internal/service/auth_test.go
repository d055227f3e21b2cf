package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gamevault/backend/internal/database"
	"gamevault/backend/internal/models"
	"gamevault/backend/pkg/jwt"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(database.OpenTest(t), jwt.NewIssuer("test-secret", time.Hour))
}

func register(t *testing.T, s *AuthService, name, email string) *models.User {
	t.Helper()
	u, err := s.Register(context.Background(), RegisterInput{
		Name: name, Email: email, Password: "password123", PasswordConfirmation: "password123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u
}

func TestRegisterAndLogin(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()

	u := register(t, s, "Jane", "  Jane@Example.com ")
	if u.Email != "jane@example.com" || u.Role != models.RoleUser {
		t.Fatalf("registered user = %+v", u)
	}
	if u.PasswordHash == "password123" {
		t.Fatal("password stored in clear text")
	}

	_, err := s.Register(ctx, RegisterInput{Name: "Other", Email: "jane@example.com", Password: "password123", PasswordConfirmation: "password123"})
	if fields := fieldErrors(t, err); len(fields["email"]) == 0 {
		t.Fatalf("expected email taken, got %v", fields)
	}

	_, err = s.Register(ctx, RegisterInput{Name: "Short", Email: "short@example.com", Password: "short", PasswordConfirmation: "different"})
	fields := fieldErrors(t, err)
	if len(fields["password"]) == 0 || len(fields["password_confirmation"]) == 0 {
		t.Fatalf("expected password errors, got %v", fields)
	}

	if _, _, err := s.Login(ctx, LoginInput{Email: "jane@example.com", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, _, err := s.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v", err)
	}

	token, user, err := s.Login(ctx, LoginInput{Email: "JANE@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != u.ID {
		t.Fatalf("login user = %d, want %d", user.ID, u.ID)
	}
	claims, err := s.issuer.ParseToken(token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if id, _ := claims.UserID(); id != u.ID || claims.Role != models.RoleUser {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()
	register(t, s, "Jane", "jane@example.com")

	token, _, err := s.Login(ctx, LoginInput{Email: "jane@example.com", Password: "password123"})
	if err != nil {
		t.Fatal(err)
	}
	claims, err := s.issuer.ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}

	stale := models.RevokedToken{JTI: "stale", ExpiresAt: time.Now().Add(-time.Hour)}
	if err := s.db.Create(&stale).Error; err != nil {
		t.Fatal(err)
	}

	if err := s.Logout(ctx, claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	// a second logout with the same token is harmless
	if err := s.Logout(ctx, claims); err != nil {
		t.Fatalf("repeated logout: %v", err)
	}

	var jtis []string
	s.db.Model(&models.RevokedToken{}).Pluck("jti", &jtis)
	if len(jtis) != 1 || jtis[0] != claims.ID {
		t.Fatalf("revoked tokens = %v, want only %s", jtis, claims.ID)
	}

	if err := s.Logout(ctx, nil); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("logout without claims err = %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()
	jane := register(t, s, "Jane", "jane@example.com")
	register(t, s, "John", "john@example.com")

	_, err := s.UpdateProfile(ctx, jane.ID, ProfileInput{Name: "Jane", Email: "john@example.com"})
	if fields := fieldErrors(t, err); len(fields["email"]) == 0 {
		t.Fatalf("expected email taken, got %v", fields)
	}

	_, err = s.UpdateProfile(ctx, jane.ID, ProfileInput{
		Name: "Jane", Email: "jane@example.com",
		CurrentPassword: "not-it", Password: "newpassword", PasswordConfirmation: "newpassword",
	})
	if fields := fieldErrors(t, err); len(fields["current_password"]) == 0 {
		t.Fatalf("expected current_password error, got %v", fields)
	}

	profile, err := s.UpdateProfile(ctx, jane.ID, ProfileInput{
		Name: "Jane Doe", Email: "jane.doe@example.com",
		CurrentPassword: "password123", Password: "newpassword", PasswordConfirmation: "newpassword",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if profile.Name != "Jane Doe" || profile.Email != "jane.doe@example.com" {
		t.Fatalf("profile = %+v", profile.User)
	}

	if _, _, err := s.Login(ctx, LoginInput{Email: "jane.doe@example.com", Password: "newpassword"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestProfileCounters(t *testing.T) {
	s := newAuthService(t)
	ctx := context.Background()
	u := register(t, s, "Jane", "jane@example.com")

	games := []models.Game{{Title: "A", Description: "a"}, {Title: "B", Description: "b"}, {Title: "C", Description: "c"}}
	if err := s.db.Create(&games).Error; err != nil {
		t.Fatal(err)
	}
	for i, stars := range []int{5, 4, 4} {
		r := models.Review{UserID: u.ID, GameID: games[i].ID, Rating: stars, Comment: "x"}
		if err := s.db.Create(&r).Error; err != nil {
			t.Fatal(err)
		}
	}

	p, err := s.Profile(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.ReviewsCount != 3 || p.AverageRating != 4.33 {
		t.Fatalf("counters = %d, %v", p.ReviewsCount, p.AverageRating)
	}

	if _, err := s.Profile(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing profile err = %v", err)
	}
}
