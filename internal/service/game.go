package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gamevault/backend/internal/auth"
	"gamevault/backend/internal/cache"
	"gamevault/backend/internal/models"

	"gorm.io/gorm"
)

// List filters accepted by GameService.List.
const (
	FilterAll      = "all"
	FilterFree     = "free"
	FilterSale     = "sale"
	FilterFeatured = "featured"
)

// List orderings accepted by GameService.List.
const (
	SortRating    = "rating"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortName      = "name"
	SortReviews   = "reviews"
	SortNewest    = "newest"
)

const (
	cacheKeyGamesPrefix = "games:"
	cacheKeyGamePrefix  = "game:"
)

func gameCacheKey(id uint) string {
	return fmt.Sprintf("%s%d", cacheKeyGamePrefix, id)
}

// GameInput is the admin payload for creating or replacing a game.
type GameInput struct {
	Title         string   `json:"title" binding:"required,max=255" example:"Hades"`
	Description   string   `json:"description" binding:"required" example:"A rogue-like dungeon crawler"`
	Price         *float64 `json:"price" binding:"required,gte=0" example:"24.99"`
	DiscountPrice *float64 `json:"discount_price" binding:"omitempty,gte=0" example:"12.49"`
	ImageURL      string   `json:"image_url" binding:"omitempty,url,max=512"`
	SteamURL      string   `json:"steam_url" binding:"omitempty,url,max=512"`
	EpicURL       string   `json:"epic_url" binding:"omitempty,url,max=512"`
	IsFree        bool     `json:"is_free"`
	IsOnSale      bool     `json:"is_on_sale"`
	IsFeatured    bool     `json:"is_featured"`
}

// ListOptions narrows and orders a catalog listing.
type ListOptions struct {
	Query  string
	Filter string
	Sort   string
}

func (o ListOptions) normalized() (ListOptions, error) {
	o.Query = strings.TrimSpace(o.Query)
	o.Filter = strings.ToLower(strings.TrimSpace(o.Filter))
	o.Sort = strings.ToLower(strings.TrimSpace(o.Sort))
	if o.Filter == "" {
		o.Filter = FilterAll
	}
	if o.Sort == "" {
		o.Sort = SortRating
	}

	verr := newValidationError()
	switch o.Filter {
	case FilterAll, FilterFree, FilterSale, FilterFeatured:
	default:
		verr.Add("filter", "The selected filter is invalid.")
	}
	switch o.Sort {
	case SortRating, SortPriceLow, SortPriceHigh, SortName, SortReviews, SortNewest:
	default:
		verr.Add("sort", "The selected sort is invalid.")
	}
	return o, verr.OrNil()
}

func (o ListOptions) cacheKey() string {
	return fmt.Sprintf("%slist:%s:%s:%s", cacheKeyGamesPrefix, o.Filter, o.Sort, strings.ToLower(o.Query))
}

// GameWithStats is a game plus the number of reviews it has.
type GameWithStats struct {
	models.Game
	ReviewsCount int64
}

// GameService serves the catalog and the admin game operations.
type GameService struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewGameService(db *gorm.DB, c *cache.Cache) *GameService {
	return &GameService{db: db, cache: c}
}

// invalidateCatalog drops every cached list and, when given, the game detail.
func invalidateCatalog(c *cache.Cache, gameIDs ...uint) {
	c.InvalidatePrefix(cacheKeyGamesPrefix)
	for _, id := range gameIDs {
		c.Invalidate(gameCacheKey(id))
	}
}

func reviewCounts(db *gorm.DB, gameIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(gameIDs))
	if len(gameIDs) == 0 {
		return counts, nil
	}
	type row struct {
		GameID uint
		Cnt    int64
	}
	var rows []row
	err := db.Model(&models.Review{}).
		Select("game_id, COUNT(*) AS cnt").
		Where("game_id IN ?", gameIDs).
		Group("game_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.GameID] = r.Cnt
	}
	return counts, nil
}

func withStats(db *gorm.DB, games []models.Game) ([]GameWithStats, error) {
	ids := make([]uint, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}
	counts, err := reviewCounts(db, ids)
	if err != nil {
		return nil, err
	}
	out := make([]GameWithStats, len(games))
	for i, g := range games {
		out[i] = GameWithStats{Game: g, ReviewsCount: counts[g.ID]}
	}
	return out, nil
}

// List returns the catalog filtered by substring and flags, ordered as asked.
func (s *GameService) List(ctx context.Context, opts ListOptions) ([]GameWithStats, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	return cache.Remember(s.cache, opts.cacheKey(), func() ([]GameWithStats, error) {
		return s.list(ctx, opts)
	})
}

func (s *GameService) list(ctx context.Context, opts ListOptions) ([]GameWithStats, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Game{})
	if opts.Query != "" {
		pattern := "%" + strings.ToLower(opts.Query) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	switch opts.Filter {
	case FilterFree:
		q = q.Where("is_free = ?", true)
	case FilterSale:
		q = q.Where("is_on_sale = ?", true)
	case FilterFeatured:
		q = q.Where("is_featured = ?", true)
	}
	switch opts.Sort {
	case SortName:
		q = q.Order("title ASC")
	case SortNewest:
		q = q.Order("created_at DESC").Order("id DESC")
	default:
		q = q.Order("rating DESC").Order("id ASC")
	}

	var games []models.Game
	if err := q.Find(&games).Error; err != nil {
		return nil, err
	}
	list, err := withStats(db, games)
	if err != nil {
		return nil, err
	}

	// Orderings over derived values are applied in memory.
	switch opts.Sort {
	case SortPriceLow:
		sort.SliceStable(list, func(i, j int) bool { return list[i].EffectivePrice() < list[j].EffectivePrice() })
	case SortPriceHigh:
		sort.SliceStable(list, func(i, j int) bool { return list[i].EffectivePrice() > list[j].EffectivePrice() })
	case SortReviews:
		sort.SliceStable(list, func(i, j int) bool { return list[i].ReviewsCount > list[j].ReviewsCount })
	}
	return list, nil
}

// Get returns a game with its reviews and their authors, newest review first.
func (s *GameService) Get(ctx context.Context, id uint) (*GameWithStats, error) {
	return cache.Remember(s.cache, gameCacheKey(id), func() (*GameWithStats, error) {
		var game models.Game
		err := s.db.WithContext(ctx).
			Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC").Order("id DESC") }).
			Preload("Reviews.User").
			First(&game, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return &GameWithStats{Game: game, ReviewsCount: int64(len(game.Reviews))}, nil
	})
}

func (s *GameService) validate(tx *gorm.DB, input GameInput, exceptID uint) error {
	if err := validateStruct(input); err != nil {
		return err
	}

	verr := newValidationError()
	if input.DiscountPrice != nil && *input.DiscountPrice >= *input.Price {
		verr.Add("discount_price", "The discount price must be less than price.")
	}

	q := tx.Model(&models.Game{}).Where("title = ?", input.Title)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		verr.Add("title", "The title has already been taken.")
	}
	return verr.OrNil()
}

// apply copies the input onto the game and enforces the free-game invariant.
func apply(game *models.Game, input GameInput) {
	game.Title = input.Title
	game.Description = input.Description
	game.Price = *input.Price
	game.DiscountPrice = input.DiscountPrice
	game.ImageURL = input.ImageURL
	game.SteamURL = input.SteamURL
	game.EpicURL = input.EpicURL
	game.IsFree = input.IsFree
	game.IsOnSale = input.IsOnSale
	game.IsFeatured = input.IsFeatured

	if game.IsFree {
		game.Price = 0
		game.DiscountPrice = nil
		game.IsOnSale = false
	}
}

func trimGameInput(input GameInput) GameInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	input.SteamURL = strings.TrimSpace(input.SteamURL)
	input.EpicURL = strings.TrimSpace(input.EpicURL)
	return input
}

// Create adds a game to the catalog. Admins only.
func (s *GameService) Create(ctx context.Context, actor auth.Actor, input GameInput) (*GameWithStats, error) {
	if err := auth.AuthorizeGameMutation(actor); err != nil {
		return nil, err
	}
	input = trimGameInput(input)

	var game models.Game
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.validate(tx, input, 0); err != nil {
			return err
		}
		apply(&game, input)
		return tx.Create(&game).Error
	})
	if err != nil {
		return nil, translateGameWriteError(err)
	}

	invalidateCatalog(s.cache, game.ID)
	return &GameWithStats{Game: game}, nil
}

// Update replaces a game's editable fields. The derived rating is untouched.
func (s *GameService) Update(ctx context.Context, actor auth.Actor, id uint, input GameInput) (*GameWithStats, error) {
	if err := auth.AuthorizeGameMutation(actor); err != nil {
		return nil, err
	}
	input = trimGameInput(input)

	var result *GameWithStats
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.First(&game, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := s.validate(tx, input, game.ID); err != nil {
			return err
		}
		apply(&game, input)
		if err := tx.Omit("Rating", "CreatedAt").Save(&game).Error; err != nil {
			return err
		}
		list, err := withStats(tx, []models.Game{game})
		if err != nil {
			return err
		}
		result = &list[0]
		return nil
	})
	if err != nil {
		return nil, translateGameWriteError(err)
	}

	invalidateCatalog(s.cache, id)
	return result, nil
}

// Delete removes a game together with its reviews.
func (s *GameService) Delete(ctx context.Context, actor auth.Actor, id uint) error {
	if err := auth.AuthorizeGameMutation(actor); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.First(&game, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("game_id = ?", game.ID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&game).Error
	})
	if err != nil {
		return err
	}

	invalidateCatalog(s.cache, id)
	return nil
}

func translateGameWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		verr := newValidationError()
		verr.Add("title", "The title has already been taken.")
		return verr
	}
	return err
}
