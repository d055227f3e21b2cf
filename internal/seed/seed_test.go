package seed

import (
	"context"
	"testing"

	"gamevault/backend/internal/database"
	"gamevault/backend/internal/models"
)

func TestRunIsIdempotent(t *testing.T) {
	db := database.OpenTest(t)
	ctx := context.Background()
	admin := Admin{Email: "Admin@Example.com", Password: "secret-password"}

	res, err := Run(ctx, db, admin)
	if err != nil {
		t.Fatal(err)
	}
	if !res.AdminCreated || res.GamesCreated != len(StarterCatalog) {
		t.Fatalf("first run = %+v", res)
	}

	res, err = Run(ctx, db, admin)
	if err != nil {
		t.Fatal(err)
	}
	if res != (Result{}) {
		t.Fatalf("second run changed something: %+v", res)
	}

	var user models.User
	if err := db.Where("email = ?", "admin@example.com").First(&user).Error; err != nil {
		t.Fatal(err)
	}
	if !user.IsAdmin() || user.Name != "Administrator" {
		t.Fatalf("admin = %+v", user)
	}

	var games []models.Game
	db.Find(&games)
	for _, g := range games {
		if g.IsFree && (g.Price != 0 || g.DiscountPrice != nil || g.IsOnSale) {
			t.Errorf("free game %q carries a price", g.Title)
		}
		if g.DiscountPrice != nil && *g.DiscountPrice >= g.Price {
			t.Errorf("game %q discount %v not below %v", g.Title, *g.DiscountPrice, g.Price)
		}
	}
}

func TestRunPromotesExistingUser(t *testing.T) {
	db := database.OpenTest(t)
	u := models.User{Name: "Jane", Email: "jane@example.com", PasswordHash: "x", Role: models.RoleUser}
	if err := db.Create(&u).Error; err != nil {
		t.Fatal(err)
	}

	res, err := Run(context.Background(), db, Admin{Email: "jane@example.com", Password: "ignored"})
	if err != nil {
		t.Fatal(err)
	}
	if res.AdminCreated || !res.AdminPromoted {
		t.Fatalf("result = %+v", res)
	}
	db.First(&u, u.ID)
	if !u.IsAdmin() {
		t.Fatal("user was not promoted")
	}
}

func TestRunRequiresCredentials(t *testing.T) {
	if _, err := Run(context.Background(), database.OpenTest(t), Admin{Email: "a@b.c"}); err == nil {
		t.Fatal("expected error without password")
	}
}
