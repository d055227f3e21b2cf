package auth

import (
	"errors"
	"testing"

	"gamevault/backend/internal/models"
)

func TestAuthorizeReviewMutation(t *testing.T) {
	review := models.Review{ID: 7, UserID: 1, GameID: 3}

	tests := []struct {
		name  string
		actor Actor
		allow bool
	}{
		{"author", Actor{ID: 1, Role: models.RoleUser}, true},
		{"admin", Actor{ID: 9, Role: models.RoleAdmin}, true},
		{"author who is admin", Actor{ID: 1, Role: models.RoleAdmin}, true},
		{"other user", Actor{ID: 2, Role: models.RoleUser}, false},
		{"anonymous", Actor{}, false},
		{"unknown role", Actor{ID: 2, Role: "moderator"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeReviewMutation(tt.actor, review)
			if tt.allow && err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
			if !tt.allow && !errors.Is(err, ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestAuthorizeReviewMutationZeroOwner(t *testing.T) {
	// An unauthenticated actor must not match a review with an unset owner.
	if err := AuthorizeReviewMutation(Actor{}, models.Review{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthorizeGameMutation(t *testing.T) {
	if err := AuthorizeGameMutation(Actor{ID: 1, Role: models.RoleAdmin}); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}
	if err := AuthorizeGameMutation(Actor{ID: 1, Role: models.RoleUser}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("user allowed: %v", err)
	}
}
