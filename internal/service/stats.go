package service

import (
	"context"

	"gamevault/backend/internal/models"
	"gamevault/backend/internal/rating"

	"gorm.io/gorm"
)

// Stats are the dashboard counters of the admin console.
type Stats struct {
	TotalGames    int64   `json:"total_games"`
	TotalUsers    int64   `json:"total_users"`
	TotalReviews  int64   `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
}

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// Get counts games, users and reviews. AverageRating is the mean over every
// review on the platform, 0 when there are none.
func (s *StatsService) Get(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	var stats Stats
	if err := db.Model(&models.Game{}).Count(&stats.TotalGames).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}

	var ratings []int
	if err := db.Model(&models.Review{}).Pluck("rating", &ratings).Error; err != nil {
		return nil, err
	}
	stats.TotalReviews = int64(len(ratings))
	stats.AverageRating = rating.Mean(ratings)
	return &stats, nil
}
