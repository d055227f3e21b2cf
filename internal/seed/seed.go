// Package seed creates the administrator account and a starter catalog.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gamevault/backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Admin describes the administrator account to ensure.
type Admin struct {
	Name     string
	Email    string
	Password string
}

// Result reports what a run changed.
type Result struct {
	AdminCreated  bool
	AdminPromoted bool
	GamesCreated  int
}

func ptr(v float64) *float64 { return &v }

// StarterCatalog is inserted into an empty games table.
var StarterCatalog = []models.Game{
	{
		Title:         "Cyberpunk 2077",
		Description:   "An open-world action RPG set in the megalopolis of Night City.",
		Price:         59.99,
		DiscountPrice: ptr(29.99),
		SteamURL:      "https://store.steampowered.com/app/1091500/Cyberpunk_2077/",
		IsOnSale:      true,
		IsFeatured:    true,
	},
	{
		Title:       "Fortnite",
		Description: "Free-to-play battle royale with building.",
		EpicURL:     "https://www.epicgames.com/fortnite/",
		IsFree:      true,
		IsFeatured:  true,
	},
	{
		Title:       "The Witcher 3: Wild Hunt",
		Description: "A story-driven open world RPG following the monster slayer Geralt of Rivia.",
		Price:       39.99,
		SteamURL:    "https://store.steampowered.com/app/292030/The_Witcher_3_Wild_Hunt/",
		IsFeatured:  true,
	},
	{
		Title:         "Hades",
		Description:   "A rogue-like dungeon crawler in which you defy the god of the dead.",
		Price:         24.99,
		DiscountPrice: ptr(12.49),
		SteamURL:      "https://store.steampowered.com/app/1145360/Hades/",
		EpicURL:       "https://store.epicgames.com/p/hades",
		IsOnSale:      true,
	},
	{
		Title:       "Rocket League",
		Description: "Soccer meets driving in this free-to-play competitive arena game.",
		EpicURL:     "https://store.epicgames.com/p/rocket-league",
		IsFree:      true,
	},
	{
		Title:       "Stardew Valley",
		Description: "Inherit your grandfather's old farm plot and build a new life.",
		Price:       14.99,
		SteamURL:    "https://store.steampowered.com/app/413150/Stardew_Valley/",
	},
}

// Run ensures the admin account exists with the admin role and fills an
// empty catalog. Running it again changes nothing.
func Run(ctx context.Context, db *gorm.DB, admin Admin) (Result, error) {
	var res Result
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	if admin.Email == "" || admin.Password == "" {
		return res, errors.New("admin email and password are required")
	}
	if admin.Name == "" {
		admin.Name = "Administrator"
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Where("email = ?", admin.Email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user = models.User{Name: admin.Name, Email: admin.Email, PasswordHash: string(hash), Role: models.RoleAdmin}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			res.AdminCreated = true
		case err != nil:
			return err
		case user.Role != models.RoleAdmin:
			if err := tx.Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
				return fmt.Errorf("promote admin: %w", err)
			}
			res.AdminPromoted = true
		}

		var games int64
		if err := tx.Model(&models.Game{}).Count(&games).Error; err != nil {
			return err
		}
		if games > 0 {
			return nil
		}
		catalog := make([]models.Game, len(StarterCatalog))
		copy(catalog, StarterCatalog)
		if err := tx.Create(&catalog).Error; err != nil {
			return fmt.Errorf("create starter catalog: %w", err)
		}
		res.GamesCreated = len(catalog)
		return nil
	})
	return res, err
}
