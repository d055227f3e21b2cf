package models

import "time"

// Review is a single user's star rating of a game.
// The composite unique index allows at most one review per (user, game).
type Review struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reviews_user_game"`
	GameID    uint      `gorm:"not null;uniqueIndex:idx_reviews_user_game;index"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
	Game Game `gorm:"foreignKey:GameID"`
}
