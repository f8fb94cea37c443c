// Package expiry implements the periodic sweep that warns donors about
// listings expiring within the next day.
package expiry

import (
	"context"
	"log/slog"
	"time"

	"github.com/foodshare/foodshare-api/internal/domain"
)

// window is how far ahead the sweep looks for expiring listings.
const window = 24 * time.Hour

type foodStore interface {
	ListAvailable(ctx context.Context) ([]domain.FoodListing, error)
}

type userStore interface {
	GetMany(ctx context.Context, userIDs []string) ([]domain.User, error)
}

// Notifier records one food_expiring notification per listing.
type Notifier interface {
	NotifyFoodExpiring(ctx context.Context, listings []domain.FoodListing) error
}

// Mailer sends each donor a single reminder covering all their expiring
// listings.
type Mailer interface {
	SendExpiryReminder(donor *domain.User, listings []domain.FoodListing) error
}

type Service struct {
	foods    foodStore
	users    userStore
	notifier Notifier
	mailer   Mailer
}

func NewService(foods foodStore, users userStore, notifier Notifier, mailer Mailer) *Service {
	return &Service{foods: foods, users: users, notifier: notifier, mailer: mailer}
}

// Sweep finds available listings expiring within the next 24 hours and
// notifies their donors, in-app and by email. Partial failure is logged and
// the sweep carries on; the next run covers anything missed.
func (s *Service) Sweep(ctx context.Context) error {
	all, err := s.foods.ListAvailable(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	cutoff := now.Add(window)
	expiring := all[:0:0]
	for i := range all {
		f := &all[i]
		if f.ExpiryDate.After(now) && f.ExpiryDate.Before(cutoff) {
			expiring = append(expiring, *f)
		}
	}
	if len(expiring) == 0 {
		return nil
	}

	if err := s.notifier.NotifyFoodExpiring(ctx, expiring); err != nil {
		slog.Warn("expiry sweep: notifications failed", "err", err)
	}

	if s.mailer == nil {
		return nil
	}
	byDonor := make(map[string][]domain.FoodListing)
	donorIDs := make([]string, 0, len(expiring))
	for _, f := range expiring {
		if _, seen := byDonor[f.DonorID]; !seen {
			donorIDs = append(donorIDs, f.DonorID)
		}
		byDonor[f.DonorID] = append(byDonor[f.DonorID], f)
	}
	donors, err := s.users.GetMany(ctx, donorIDs)
	if err != nil {
		slog.Warn("expiry sweep: donor lookup failed", "err", err)
		return nil
	}
	for i := range donors {
		donor := &donors[i]
		if err := s.mailer.SendExpiryReminder(donor, byDonor[donor.UserID]); err != nil {
			slog.Warn("expiry sweep: reminder email failed", "donor_id", donor.UserID, "err", err)
		}
	}
	return nil
}

// Run sweeps immediately and then on the given interval until ctx is
// cancelled. The upfront sweep covers listings that expire within a day of
// a restart.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if err := s.Sweep(ctx); err != nil {
		slog.Error("expiry sweep failed", "err", err)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				slog.Error("expiry sweep failed", "err", err)
			}
		}
	}
}
