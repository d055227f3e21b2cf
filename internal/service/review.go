package service

import (
	"context"
	"errors"
	"strings"

	"gamevault/backend/internal/auth"
	"gamevault/backend/internal/cache"
	"gamevault/backend/internal/models"
	"gamevault/backend/internal/rating"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultRecentReviews = 6
	MaxReviewsPage       = 50
)

// ReviewInput is the payload for posting a review.
type ReviewInput struct {
	GameID  uint   `json:"game_id" binding:"required" example:"1"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5" example:"5"`
	Comment string `json:"comment" binding:"required,max=1000" example:"Fantastic soundtrack."`
}

// ReviewUpdateInput is the payload for editing a review.
type ReviewUpdateInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5" example:"4"`
	Comment string `json:"comment" binding:"required,max=1000" example:"Still great after 40 hours."`
}

// ReviewService manages reviews and keeps game ratings consistent with them.
type ReviewService struct {
	db          *gorm.DB
	cache       *cache.Cache
	recentLimit int
}

func NewReviewService(db *gorm.DB, c *cache.Cache, recentLimit int) *ReviewService {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentReviews
	}
	return &ReviewService{db: db, cache: c, recentLimit: recentLimit}
}

// clampLimit applies the default for non-positive limits and caps the rest.
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxReviewsPage {
		return MaxReviewsPage
	}
	return limit
}

func withAuthorAndGame(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Game")
}

func (s *ReviewService) loadReview(tx *gorm.DB, id uint) (*models.Review, error) {
	var review models.Review
	if err := tx.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

// Create posts a review for the actor. A user may review a game only once.
func (s *ReviewService) Create(ctx context.Context, actor auth.Actor, input ReviewInput) (*models.Review, error) {
	if actor.ID == 0 {
		return nil, ErrUnauthenticated
	}
	input.Comment = strings.TrimSpace(input.Comment)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.Select("id").First(&game, input.GameID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				verr := newValidationError()
				verr.Add("game_id", "The selected game id is invalid.")
				return verr
			}
			return err
		}

		var existing int64
		err := tx.Model(&models.Review{}).
			Where("user_id = ? AND game_id = ?", actor.ID, input.GameID).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateReview
		}

		review = models.Review{
			UserID:  actor.ID,
			GameID:  input.GameID,
			Rating:  input.Rating,
			Comment: input.Comment,
		}
		if err := tx.Omit(clause.Associations).Create(&review).Error; err != nil {
			return err
		}
		if _, err := rating.Recompute(tx, input.GameID); err != nil {
			return err
		}
		return withAuthorAndGame(tx).First(&review, review.ID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}

	invalidateCatalog(s.cache, review.GameID)
	return &review, nil
}

// Update edits a review. Only its author or an admin may do so.
func (s *ReviewService) Update(ctx context.Context, actor auth.Actor, id uint, input ReviewUpdateInput) (*models.Review, error) {
	input.Comment = strings.TrimSpace(input.Comment)

	var review *models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		review, err = s.loadReview(tx, id)
		if err != nil {
			return err
		}
		if err := auth.AuthorizeReviewMutation(actor, *review); err != nil {
			return err
		}
		if err := validateStruct(input); err != nil {
			return err
		}

		err = tx.Model(review).Updates(map[string]interface{}{
			"rating":  input.Rating,
			"comment": input.Comment,
		}).Error
		if err != nil {
			return err
		}
		if _, err := rating.Recompute(tx, review.GameID); err != nil {
			return err
		}
		return withAuthorAndGame(tx).First(review, review.ID).Error
	})
	if err != nil {
		return nil, err
	}

	invalidateCatalog(s.cache, review.GameID)
	return review, nil
}

// Delete removes a review. Only its author or an admin may do so.
func (s *ReviewService) Delete(ctx context.Context, actor auth.Actor, id uint) error {
	var gameID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		review, err := s.loadReview(tx, id)
		if err != nil {
			return err
		}
		if err := auth.AuthorizeReviewMutation(actor, *review); err != nil {
			return err
		}
		gameID = review.GameID

		if err := tx.Delete(&models.Review{}, review.ID).Error; err != nil {
			return err
		}
		_, err = rating.Recompute(tx, gameID)
		return err
	})
	if err != nil {
		return err
	}

	invalidateCatalog(s.cache, gameID)
	return nil
}

// Recent returns the newest reviews across all games with their authors and games.
func (s *ReviewService) Recent(ctx context.Context, limit int) ([]models.Review, error) {
	limit = clampLimit(limit, s.recentLimit)
	var reviews []models.Review
	err := withAuthorAndGame(s.db.WithContext(ctx)).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

// ForUser returns every review written by the user, newest first.
func (s *ReviewService) ForUser(ctx context.Context, userID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := withAuthorAndGame(s.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&reviews).Error
	return reviews, err
}

// All is the admin moderation listing, newest first.
func (s *ReviewService) All(ctx context.Context, limit int) ([]models.Review, error) {
	limit = clampLimit(limit, MaxReviewsPage)
	var reviews []models.Review
	err := withAuthorAndGame(s.db.WithContext(ctx)).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}
