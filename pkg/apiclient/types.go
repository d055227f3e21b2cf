package apiclient

import (
	"encoding/json"
	"time"
)

const RoleAdmin = "admin"

type User struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	ReviewsCount  int64     `json:"reviews_count"`
	AverageRating float64   `json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

type Game struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	DiscountPrice *float64  `json:"discount_price"`
	ImageURL      string    `json:"image_url"`
	SteamURL      string    `json:"steam_url"`
	EpicURL       string    `json:"epic_url"`
	Rating        float64   `json:"rating"`
	IsFree        bool      `json:"is_free"`
	IsOnSale      bool      `json:"is_on_sale"`
	IsFeatured    bool      `json:"is_featured"`
	ReviewsCount  int64     `json:"reviews_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Reviews       []Review  `json:"reviews,omitempty"`
}

// EffectivePrice is the discounted price when there is one.
func (g Game) EffectivePrice() float64 {
	if g.DiscountPrice != nil {
		return *g.DiscountPrice
	}
	return g.Price
}

// StoreURL is the storefront a buyer is sent to, Steam first.
func (g Game) StoreURL() string {
	if g.SteamURL != "" {
		return g.SteamURL
	}
	return g.EpicURL
}

type ReviewAuthor struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ReviewGame struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

type Review struct {
	ID        uint          `json:"id"`
	UserID    uint          `json:"user_id"`
	GameID    uint          `json:"game_id"`
	Rating    int           `json:"rating"`
	Comment   string        `json:"comment"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	User      *ReviewAuthor `json:"user,omitempty"`
	Game      *ReviewGame   `json:"game,omitempty"`
}

type Stats struct {
	TotalGames    int64   `json:"total_games"`
	TotalUsers    int64   `json:"total_users"`
	TotalReviews  int64   `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
}

type ActivityEntry struct {
	ID        uint            `json:"id"`
	RequestID string          `json:"request_id"`
	UserID    *uint           `json:"user_id"`
	Method    string          `json:"method"`
	Path      string          `json:"path"`
	Status    int             `json:"status"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}

// region --- Requests ---

type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type ProfileUpdate struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	CurrentPassword      string `json:"current_password,omitempty"`
	Password             string `json:"password,omitempty"`
	PasswordConfirmation string `json:"password_confirmation,omitempty"`
}

type GameRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	SteamURL      string   `json:"steam_url,omitempty"`
	EpicURL       string   `json:"epic_url,omitempty"`
	IsFree        bool     `json:"is_free"`
	IsOnSale      bool     `json:"is_on_sale"`
	IsFeatured    bool     `json:"is_featured"`
}

type ReviewRequest struct {
	GameID  uint   `json:"game_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ReviewUpdate struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// GameQuery selects a catalog listing. Empty fields use the server defaults.
type GameQuery struct {
	Query  string
	Filter string
	Sort   string
}

// endregion
