package apiclient

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// List filters and orderings understood by Catalog views.
const (
	FilterAll      = "all"
	FilterFree     = "free"
	FilterSale     = "sale"
	FilterFeatured = "featured"

	SortRating    = "rating"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortName      = "name"
	SortReviews   = "reviews"
)

// GameList is a catalog read. Fallback is set when the API was unreachable
// and the games are placeholders.
type GameList struct {
	Games    []Game
	Fallback bool
}

// ReviewList is a recent-reviews read, with Fallback as in GameList.
type ReviewList struct {
	Reviews  []Review
	Fallback bool
}

func price(v float64) *float64 { return &v }

// Placeholders is the small catalog shown while the API cannot be reached.
func Placeholders() []Game {
	return []Game{
		{
			ID:            1,
			Title:         "Cyberpunk 2077",
			Description:   "An open-world RPG set in Night City.",
			Price:         59.99,
			DiscountPrice: price(29.99),
			SteamURL:      "https://store.steampowered.com/app/1091500/Cyberpunk_2077/",
			Rating:        4.2,
			IsOnSale:      true,
			IsFeatured:    true,
		},
		{
			ID:          2,
			Title:       "Fortnite",
			Description: "Free battle royale with building.",
			EpicURL:     "https://www.epicgames.com/fortnite/",
			Rating:      4.5,
			IsFree:      true,
			IsFeatured:  true,
		},
	}
}

// PlaceholderReviews accompany Placeholders.
func PlaceholderReviews() []Review {
	return []Review{{
		ID:      1,
		GameID:  1,
		Rating:  4,
		Comment: "Excellent game after the updates.",
		User:    &ReviewAuthor{Name: "GamerPro"},
	}}
}

// View narrows and orders a game list on the client.
type View struct {
	Query  string
	Filter string
	Sort   string
}

// Apply returns the games matching the view, in view order. The input is not modified.
func (v View) Apply(games []Game) []Game {
	out := FilterGames(SearchGames(games, v.Query), v.Filter)
	SortGames(out, v.Sort)
	return out
}

// SearchGames keeps games whose title or description contains q, ignoring case.
func SearchGames(games []Game, q string) []Game {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]Game, 0, len(games))
	for _, g := range games {
		if q == "" || strings.Contains(strings.ToLower(g.Title), q) || strings.Contains(strings.ToLower(g.Description), q) {
			out = append(out, g)
		}
	}
	return out
}

// FilterGames keeps games matching filter. Unknown filters keep everything.
func FilterGames(games []Game, filter string) []Game {
	out := make([]Game, 0, len(games))
	for _, g := range games {
		switch filter {
		case FilterFree:
			if !g.IsFree {
				continue
			}
		case FilterSale:
			if !g.IsOnSale {
				continue
			}
		case FilterFeatured:
			if !g.IsFeatured {
				continue
			}
		}
		out = append(out, g)
	}
	return out
}

// SortGames orders games in place. Unknown orderings sort by rating.
func SortGames(games []Game, order string) {
	var less func(a, b Game) bool
	switch order {
	case SortPriceLow:
		less = func(a, b Game) bool { return a.EffectivePrice() < b.EffectivePrice() }
	case SortPriceHigh:
		less = func(a, b Game) bool { return a.EffectivePrice() > b.EffectivePrice() }
	case SortName:
		less = func(a, b Game) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case SortReviews:
		less = func(a, b Game) bool { return a.ReviewsCount > b.ReviewsCount }
	default:
		less = func(a, b Game) bool { return a.Rating > b.Rating }
	}
	sort.SliceStable(games, func(i, j int) bool { return less(games[i], games[j]) })
}

// Catalog caches catalog reads for a client. Every mutation it performs
// invalidates the entries the mutation can change and reloads them, so reads
// after a successful mutation reflect it. Failed mutations leave the cache alone.
type Catalog struct {
	client *Client

	mu       sync.Mutex
	games    []Game
	featured []Game
	details  map[uint]*Game
	mine     []Review
	recent   map[int][]Review
}

func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client, details: make(map[uint]*Game), recent: make(map[int][]Review)}
}

func isNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// Games returns the full catalog. When the API is unreachable the placeholders
// are returned with Fallback set; they are never cached.
func (c *Catalog) Games(ctx context.Context) (GameList, error) {
	c.mu.Lock()
	cached := c.games
	c.mu.Unlock()
	if cached != nil {
		return GameList{Games: cached}, nil
	}

	games, err := c.client.Games(ctx, GameQuery{})
	if err != nil {
		if isNetworkError(err) {
			return GameList{Games: Placeholders(), Fallback: true}, nil
		}
		return GameList{}, err
	}
	if games == nil {
		games = []Game{}
	}
	c.mu.Lock()
	c.games = games
	c.mu.Unlock()
	return GameList{Games: games}, nil
}

// Browse applies a view to the cached catalog.
func (c *Catalog) Browse(ctx context.Context, v View) (GameList, error) {
	list, err := c.Games(ctx)
	if err != nil {
		return list, err
	}
	list.Games = v.Apply(list.Games)
	return list, nil
}

// Featured returns the featured games, falling back to the featured placeholders.
func (c *Catalog) Featured(ctx context.Context) (GameList, error) {
	c.mu.Lock()
	cached := c.featured
	c.mu.Unlock()
	if cached != nil {
		return GameList{Games: cached}, nil
	}

	games, err := c.client.FeaturedGames(ctx)
	if err != nil {
		if isNetworkError(err) {
			return GameList{Games: FilterGames(Placeholders(), FilterFeatured), Fallback: true}, nil
		}
		return GameList{}, err
	}
	if games == nil {
		games = []Game{}
	}
	c.mu.Lock()
	c.featured = games
	c.mu.Unlock()
	return GameList{Games: games}, nil
}

// Game returns a game with its reviews.
func (c *Catalog) Game(ctx context.Context, id uint) (*Game, error) {
	c.mu.Lock()
	cached, ok := c.details[id]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	game, err := c.client.Game(ctx, id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.details[id] = game
	c.mu.Unlock()
	return game, nil
}

// RecentReviews returns the newest reviews, limit 0 meaning the server
// default. When the API is unreachable the placeholder reviews are returned
// with Fallback set; they are never cached.
func (c *Catalog) RecentReviews(ctx context.Context, limit int) (ReviewList, error) {
	c.mu.Lock()
	cached, ok := c.recent[limit]
	c.mu.Unlock()
	if ok {
		return ReviewList{Reviews: cached}, nil
	}

	reviews, err := c.client.RecentReviews(ctx, limit)
	if err != nil {
		if isNetworkError(err) {
			return ReviewList{Reviews: PlaceholderReviews(), Fallback: true}, nil
		}
		return ReviewList{}, err
	}
	if reviews == nil {
		reviews = []Review{}
	}
	c.mu.Lock()
	c.recent[limit] = reviews
	c.mu.Unlock()
	return ReviewList{Reviews: reviews}, nil
}

// MyReviews returns the reviews of the client's session user.
func (c *Catalog) MyReviews(ctx context.Context) ([]Review, error) {
	c.mu.Lock()
	cached := c.mine
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	reviews, err := c.client.MyReviews(ctx)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []Review{}
	}
	c.mu.Lock()
	c.mine = reviews
	c.mu.Unlock()
	return reviews, nil
}

// Invalidate drops every cached read.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.games = nil
	c.featured = nil
	c.details = make(map[uint]*Game)
	c.mine = nil
	c.recent = make(map[int][]Review)
	c.mu.Unlock()
}

// invalidateAndReload drops the lists, the recent and own reviews and the
// given game details (all details when none are given) and fetches them
// again. Reload failures are ignored: the entries stay empty and the next
// read retries.
func (c *Catalog) invalidateAndReload(ctx context.Context, gameIDs ...uint) {
	c.mu.Lock()
	c.games = nil
	c.featured = nil
	c.mine = nil
	limits := make([]int, 0, len(c.recent))
	for limit := range c.recent {
		limits = append(limits, limit)
	}
	c.recent = make(map[int][]Review)
	if len(gameIDs) == 0 {
		c.details = make(map[uint]*Game)
	}
	for _, id := range gameIDs {
		delete(c.details, id)
	}
	c.mu.Unlock()

	_, _ = c.Games(ctx)
	_, _ = c.Featured(ctx)
	if c.client.sessionToken() != "" {
		_, _ = c.MyReviews(ctx)
	}
	for _, limit := range limits {
		_, _ = c.RecentReviews(ctx, limit)
	}
	for _, id := range gameIDs {
		_, _ = c.Game(ctx, id)
	}
}

// SubmitReview posts a review and refreshes the reviewed game.
func (c *Catalog) SubmitReview(ctx context.Context, in ReviewRequest) (*Review, error) {
	review, err := c.client.CreateReview(ctx, in)
	if err != nil {
		return nil, err
	}
	c.invalidateAndReload(ctx, review.GameID)
	return review, nil
}

// EditReview updates a review and refreshes its game.
func (c *Catalog) EditReview(ctx context.Context, id uint, in ReviewUpdate) (*Review, error) {
	review, err := c.client.UpdateReview(ctx, id, in)
	if err != nil {
		return nil, err
	}
	c.invalidateAndReload(ctx, review.GameID)
	return review, nil
}

// RemoveReview deletes a review of gameID and refreshes that game.
func (c *Catalog) RemoveReview(ctx context.Context, id, gameID uint) error {
	if err := c.client.DeleteReview(ctx, id); err != nil {
		return err
	}
	if gameID == 0 {
		c.invalidateAndReload(ctx)
	} else {
		c.invalidateAndReload(ctx, gameID)
	}
	return nil
}

// SaveGame creates the game when id is 0 and updates it otherwise.
func (c *Catalog) SaveGame(ctx context.Context, id uint, in GameRequest) (*Game, error) {
	var (
		game *Game
		err  error
	)
	if id == 0 {
		game, err = c.client.CreateGame(ctx, in)
	} else {
		game, err = c.client.UpdateGame(ctx, id, in)
	}
	if err != nil {
		return nil, err
	}
	c.invalidateAndReload(ctx, game.ID)
	return game, nil
}

// RemoveGame deletes a game. Its reviews go with it.
func (c *Catalog) RemoveGame(ctx context.Context, id uint) error {
	if err := c.client.DeleteGame(ctx, id); err != nil {
		return err
	}
	c.invalidateAndReload(ctx)
	return nil
}
