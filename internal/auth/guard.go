package auth

import (
	"errors"

	"gamevault/backend/internal/models"
)

// ErrForbidden is returned when the acting user lacks rights over a resource.
var ErrForbidden = errors.New("forbidden")

// Actor is the authenticated user performing a request.
type Actor struct {
	ID   uint
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// ActorOf builds an Actor from a stored user.
func ActorOf(u models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// AuthorizeReviewMutation allows the review's author or an admin.
func AuthorizeReviewMutation(actor Actor, review models.Review) error {
	if actor.ID != 0 && actor.ID == review.UserID {
		return nil
	}
	if actor.IsAdmin() {
		return nil
	}
	return ErrForbidden
}

// AuthorizeGameMutation allows admins only; games have no owner.
func AuthorizeGameMutation(actor Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	return ErrForbidden
}
