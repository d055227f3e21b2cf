// Package rating keeps a game's aggregate rating in step with its reviews.
package rating

import (
	"fmt"
	"math"

	"gamevault/backend/internal/models"

	"gorm.io/gorm"
)

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Mean is the arithmetic mean of the ratings rounded to two decimals, or 0 for none.
func Mean(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return Round2(float64(sum) / float64(len(ratings)))
}

// Recompute reads every review of the game, stores the new mean on the game
// and returns it. Call it with the transaction that changed the reviews.
func Recompute(tx *gorm.DB, gameID uint) (float64, error) {
	var game models.Game
	if err := tx.Select("id").First(&game, gameID).Error; err != nil {
		return 0, fmt.Errorf("load game %d: %w", gameID, err)
	}

	var ratings []int
	if err := tx.Model(&models.Review{}).Where("game_id = ?", gameID).Pluck("rating", &ratings).Error; err != nil {
		return 0, fmt.Errorf("load ratings for game %d: %w", gameID, err)
	}

	mean := Mean(ratings)
	if err := tx.Model(&game).Update("rating", mean).Error; err != nil {
		return 0, fmt.Errorf("store rating for game %d: %w", gameID, err)
	}
	return mean, nil
}
