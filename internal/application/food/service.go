package food

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/foodshare/foodshare-api/internal/domain"
	"github.com/foodshare/foodshare-api/internal/pkg/geo"
	"github.com/foodshare/foodshare-api/internal/pkg/id"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50

	sideEffectTimeout = 10 * time.Second
)

// Store is the persistence surface the service needs from the foods table.
type Store interface {
	Put(ctx context.Context, f *domain.FoodListing) error
	Get(ctx context.Context, foodID string) (*domain.FoodListing, error)
	ListAvailable(ctx context.Context) ([]domain.FoodListing, error)
	ListByDonor(ctx context.Context, donorID string) ([]domain.FoodListing, error)
	ListByClaimer(ctx context.Context, userID string) ([]domain.FoodListing, error)
	Claim(ctx context.Context, foodID, userID string, at time.Time) (*domain.FoodListing, error)
	Delete(ctx context.Context, foodID string) error
}

// UserStore resolves user records for claim side effects.
type UserStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Notifier persists and pushes the food_claimed notification.
type Notifier interface {
	NotifyFoodClaimed(ctx context.Context, f *domain.FoodListing, claimer *domain.User) error
}

// Mailer emails the donor when a listing is claimed.
type Mailer interface {
	SendFoodClaimed(donor, claimer *domain.User, f *domain.FoodListing) error
}

// Pusher is the best-effort live channel used for location broadcasts.
type Pusher interface {
	Push(room, event string, payload any)
}

// SearchResult is one page of the public food feed.
type SearchResult struct {
	Foods      []domain.FoodListing `json:"foods"`
	Pagination domain.Pagination    `json:"pagination"`
}

type Service interface {
	Search(ctx context.Context, p domain.SearchFoodParams) (*SearchResult, error)
	Create(ctx context.Context, req domain.CreateFoodRequest, donorID string) (*domain.FoodListing, error)
	MyDonations(ctx context.Context, userID string) ([]domain.FoodListing, error)
	MyClaims(ctx context.Context, userID string) ([]domain.FoodListing, error)
	Claim(ctx context.Context, foodID, userID string) (*domain.FoodListing, error)
	Delete(ctx context.Context, foodID, userID string) error
}

type service struct {
	foods    Store
	users    UserStore
	notifier Notifier
	mailer   Mailer
	pusher   Pusher

	// spawn runs claim side effects; replaced in tests to run inline.
	spawn func(func())
}

type ServiceDeps struct {
	FoodRepo Store
	UserRepo UserStore
	Notifier Notifier
	Mailer   Mailer
	Pusher   Pusher
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		foods:    deps.FoodRepo,
		users:    deps.UserRepo,
		notifier: deps.Notifier,
		mailer:   deps.Mailer,
		pusher:   deps.Pusher,
	}
	s.spawn = func(fn func()) { go fn() }
	return s
}

// Search returns available listings matching p, newest first unless another
// order is requested. A page past the end is empty, not an error.
func (s *service) Search(ctx context.Context, p domain.SearchFoodParams) (*SearchResult, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > maxPageSize {
		p.Limit = defaultPageSize
	}
	all, err := s.foods.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	matched := all[:0:0]
	query := strings.ToLower(p.Query)
	location := strings.ToLower(p.Location)
	for i := range all {
		f := &all[i]
		if query != "" &&
			!strings.Contains(strings.ToLower(f.Title), query) &&
			!strings.Contains(strings.ToLower(f.Description), query) {
			continue
		}
		if p.Category != "" && p.Category != "all" && f.Category != p.Category {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(f.Location), location) {
			continue
		}
		if p.ExpiryDays > 0 {
			cutoff := time.Now().AddDate(0, 0, p.ExpiryDays)
			if f.ExpiryDate.After(cutoff) {
				continue
			}
		}
		matched = append(matched, *f)
	}

	sortListings(matched, p.SortBy, p.SortOrder)

	total := len(matched)
	start := (p.Page - 1) * p.Limit
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return &SearchResult{
		Foods:      matched[start:end],
		Pagination: domain.Paginate(p.Page, p.Limit, total),
	}, nil
}

func sortListings(foods []domain.FoodListing, sortBy, sortOrder string) {
	asc := sortOrder == "asc"
	var less func(a, b *domain.FoodListing) bool
	switch sortBy {
	case "expiryDate":
		less = func(a, b *domain.FoodListing) bool { return a.ExpiryDate.Before(b.ExpiryDate) }
	case "title":
		less = func(a, b *domain.FoodListing) bool { return a.Title < b.Title }
	default:
		// Default feed order is newest first.
		less = func(a, b *domain.FoodListing) bool { return a.CreatedAt.Before(b.CreatedAt) }
		if sortOrder == "" {
			asc = false
		}
	}
	sort.SliceStable(foods, func(i, j int) bool {
		if asc {
			return less(&foods[i], &foods[j])
		}
		return less(&foods[j], &foods[i])
	})
}

func (s *service) Create(ctx context.Context, req domain.CreateFoodRequest, donorID string) (*domain.FoodListing, error) {
	expiry, err := parseExpiry(req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	f := &domain.FoodListing{
		FoodID:      id.New(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Quantity:    strings.TrimSpace(req.Quantity),
		Category:    req.Category,
		ExpiryDate:  expiry,
		Location:    strings.TrimSpace(req.Location),
		ImageURL:    req.ImageURL, // omitted image stays "", never null
		IsAvailable: true,
		DonorID:     donorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.foods.Put(ctx, f); err != nil {
		return nil, err
	}
	if s.pusher != nil && req.Lat != nil && req.Lng != nil {
		s.pusher.Push(geo.Cell(*req.Lat, *req.Lng), "new-food-available", f)
	}
	return f, nil
}

func parseExpiry(raw string) (time.Time, error) {
	var expiry time.Time
	var err error
	if expiry, err = time.Parse(time.RFC3339, raw); err != nil {
		if expiry, err = time.Parse(time.DateOnly, raw); err != nil {
			return time.Time{}, fmt.Errorf("invalid expiry date format: %w", domain.ErrBadRequest)
		}
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if expiry.Before(today) {
		return time.Time{}, fmt.Errorf("expiry date cannot be in the past: %w", domain.ErrBadRequest)
	}
	return expiry, nil
}

func (s *service) MyDonations(ctx context.Context, userID string) ([]domain.FoodListing, error) {
	return s.foods.ListByDonor(ctx, userID)
}

func (s *service) MyClaims(ctx context.Context, userID string) ([]domain.FoodListing, error) {
	foods, err := s.foods.ListByClaimer(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Most recently claimed first.
	sort.SliceStable(foods, func(i, j int) bool {
		a, b := foods[i].ClaimedAt, foods[j].ClaimedAt
		if a == nil || b == nil {
			return b == nil
		}
		return a.After(*b)
	})
	return foods, nil
}

// Claim transitions the listing from available to claimed. The precondition
// checks run on a fresh read; the transition itself is a conditional update
// so two racing claims produce exactly one winner. Notification and email to
// the donor happen after the response and never fail the claim.
func (s *service) Claim(ctx context.Context, foodID, userID string) (*domain.FoodListing, error) {
	f, err := s.foods.Get(ctx, foodID)
	if err != nil {
		return nil, err
	}
	if f.DonorID == userID {
		return nil, fmt.Errorf("you cannot claim your own donation: %w", domain.ErrForbidden)
	}
	if !f.IsAvailable {
		return nil, fmt.Errorf("food item is no longer available: %w", domain.ErrConflict)
	}
	claimed, err := s.foods.Claim(ctx, foodID, userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.spawn(func() { s.afterClaim(claimed, userID) })
	return claimed, nil
}

// afterClaim runs the fire-and-forget side effects of a successful claim.
// Failures are logged, never propagated: the state transition already
// happened and must not be rolled back.
func (s *service) afterClaim(f *domain.FoodListing, claimerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	claimer, err := s.users.Get(ctx, claimerID)
	if err != nil {
		slog.Warn("claim side effects skipped: claimer lookup failed", "food_id", f.FoodID, "err", err)
		return
	}
	if err := s.notifier.NotifyFoodClaimed(ctx, f, claimer); err != nil {
		slog.Warn("claim notification failed", "food_id", f.FoodID, "err", err)
	}
	if s.mailer == nil {
		return
	}
	donor, err := s.users.Get(ctx, f.DonorID)
	if err != nil {
		slog.Warn("claim email skipped: donor lookup failed", "food_id", f.FoodID, "err", err)
		return
	}
	if err := s.mailer.SendFoodClaimed(donor, claimer, f); err != nil {
		slog.Warn("claim email failed", "food_id", f.FoodID, "err", err)
	}
}

// Delete removes a listing. Only the donor may delete, and may do so even
// after the listing has been claimed.
func (s *service) Delete(ctx context.Context, foodID, userID string) error {
	f, err := s.foods.Get(ctx, foodID)
	if err != nil {
		return err
	}
	if f.DonorID != userID {
		return fmt.Errorf("not authorized to delete this item: %w", domain.ErrForbidden)
	}
	return s.foods.Delete(ctx, foodID)
}
