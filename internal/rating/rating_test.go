package rating_test

import (
	"errors"
	"testing"

	"gamevault/backend/internal/database"
	"gamevault/backend/internal/models"
	"gamevault/backend/internal/rating"

	"gorm.io/gorm"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"empty", nil, 0},
		{"single", []int{4}, 4},
		{"two", []int{4, 2}, 3},
		{"repeating third", []int{5, 4, 4}, 4.33},
		{"rounds half up", []int{1, 2, 2, 2, 2, 2, 2, 2}, 1.88},
		{"two thirds", []int{1, 2, 2}, 1.67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rating.Mean(tt.ratings); got != tt.want {
				t.Fatalf("Mean(%v) = %v, want %v", tt.ratings, got, tt.want)
			}
		})
	}
}

func TestRecompute(t *testing.T) {
	db := database.OpenTest(t)

	game := models.Game{Title: "Hades", Description: "Roguelike"}
	if err := db.Create(&game).Error; err != nil {
		t.Fatal(err)
	}
	users := []models.User{
		{Name: "a", Email: "a@example.com", PasswordHash: "x"},
		{Name: "b", Email: "b@example.com", PasswordHash: "x"},
	}
	if err := db.Create(&users).Error; err != nil {
		t.Fatal(err)
	}

	mean, err := rating.Recompute(db, game.ID)
	if err != nil {
		t.Fatalf("recompute empty: %v", err)
	}
	if mean != 0 {
		t.Fatalf("empty mean = %v, want 0", mean)
	}

	reviews := []models.Review{
		{UserID: users[0].ID, GameID: game.ID, Rating: 5, Comment: "great"},
		{UserID: users[1].ID, GameID: game.ID, Rating: 2, Comment: "meh"},
	}
	if err := db.Create(&reviews).Error; err != nil {
		t.Fatal(err)
	}

	mean, err = rating.Recompute(db, game.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if mean != 3.5 {
		t.Fatalf("mean = %v, want 3.5", mean)
	}

	var stored models.Game
	if err := db.First(&stored, game.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Rating != 3.5 {
		t.Fatalf("stored rating = %v, want 3.5", stored.Rating)
	}
}

func TestRecomputeMissingGame(t *testing.T) {
	db := database.OpenTest(t)

	_, err := rating.Recompute(db, 999)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}
