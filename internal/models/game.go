package models

import "time"

// Game represents a catalog entry. Rating is derived from its reviews and is
// only written by the rating aggregator.
type Game struct {
	ID            uint    `gorm:"primarykey"`
	Title         string  `gorm:"size:255;uniqueIndex;not null"`
	Description   string  `gorm:"type:text;not null"`
	Price         float64 `gorm:"not null;default:0"`
	DiscountPrice *float64
	ImageURL      string  `gorm:"size:512"`
	SteamURL      string  `gorm:"size:512"`
	EpicURL       string  `gorm:"size:512"`
	Rating        float64 `gorm:"not null;default:0;index"`
	IsFree        bool    `gorm:"not null;default:false;index"`
	IsOnSale      bool    `gorm:"not null;default:false;index"`
	IsFeatured    bool    `gorm:"not null;default:false;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Reviews []Review `gorm:"foreignKey:GameID"`
}

// EffectivePrice is the price a buyer pays at the storefront.
func (g Game) EffectivePrice() float64 {
	if g.DiscountPrice != nil {
		return *g.DiscountPrice
	}
	return g.Price
}
