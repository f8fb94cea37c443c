package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/foodshare/foodshare-api/internal/domain"
	"github.com/foodshare/foodshare-api/internal/pkg/id"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// Store is the persistence surface the service needs from the notification
// table.
type Store interface {
	Put(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, userID string) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, notificationID, userID string, at time.Time) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error)
}

// Pusher is the best-effort live delivery channel. Pushing to a room nobody
// subscribed to is a no-op; a Pusher never reports failure to the caller.
type Pusher interface {
	Push(room, event string, payload any)
}

// CreateInput describes one notification to persist and push.
type CreateInput struct {
	RecipientID string
	SenderID    string
	Type        string
	Title       string
	Message     string
	FoodID      string
}

// Feed is one page of a user's notification feed.
type Feed struct {
	Notifications []domain.Notification `json:"notifications"`
	Pagination    domain.Pagination     `json:"pagination"`
	UnreadCount   int                   `json:"unreadCount"`
}

type Service interface {
	// Create persists a notification record and then pushes it to the
	// recipient's live channel. The push can be silently lost; persistence
	// failing fails the whole call.
	Create(ctx context.Context, in CreateInput) (*domain.Notification, error)
	NotifyFoodClaimed(ctx context.Context, f *domain.FoodListing, claimer *domain.User) error
	NotifyNewFoodNearby(ctx context.Context, users []domain.User, f *domain.FoodListing) error
	NotifyFoodExpiring(ctx context.Context, listings []domain.FoodListing) error
	Feed(ctx context.Context, userID string, page, limit int) (*Feed, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) error
}

type service struct {
	store  Store
	pusher Pusher
	ttl    time.Duration
}

// NewService builds the notification service. A nil pusher disables live
// delivery without branching at the call sites.
func NewService(store Store, pusher Pusher, ttl time.Duration) Service {
	if pusher == nil {
		pusher = noopPusher{}
	}
	return &service{store: store, pusher: pusher, ttl: ttl}
}

type noopPusher struct{}

func (noopPusher) Push(string, string, any) {}

func (s *service) Create(ctx context.Context, in CreateInput) (*domain.Notification, error) {
	now := time.Now().UTC()
	n := &domain.Notification{
		NotificationID: id.New(),
		RecipientID:    in.RecipientID,
		SenderID:       in.SenderID,
		Type:           in.Type,
		Title:          in.Title,
		Message:        in.Message,
		FoodID:         in.FoodID,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl).Unix(),
	}
	if err := s.store.Put(ctx, n); err != nil {
		return nil, err
	}
	s.pusher.Push(in.RecipientID, "notification", n)
	return n, nil
}

func (s *service) NotifyFoodClaimed(ctx context.Context, f *domain.FoodListing, claimer *domain.User) error {
	_, err := s.Create(ctx, CreateInput{
		RecipientID: f.DonorID,
		SenderID:    claimer.UserID,
		Type:        domain.NotificationFoodClaimed,
		Title:       "Your food donation was claimed!",
		Message:     fmt.Sprintf("%s has claimed your %q. Please coordinate pickup details.", claimer.Name, f.Title),
		FoodID:      f.FoodID,
	})
	return err
}

func (s *service) NotifyNewFoodNearby(ctx context.Context, users []domain.User, f *domain.FoodListing) error {
	for i := range users {
		_, err := s.Create(ctx, CreateInput{
			RecipientID: users[i].UserID,
			SenderID:    f.DonorID,
			Type:        domain.NotificationNewFoodNearby,
			Title:       "New food available nearby!",
			Message:     fmt.Sprintf("%q is now available in %s", f.Title, f.Location),
			FoodID:      f.FoodID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *service) NotifyFoodExpiring(ctx context.Context, listings []domain.FoodListing) error {
	for i := range listings {
		f := &listings[i]
		_, err := s.Create(ctx, CreateInput{
			RecipientID: f.DonorID,
			SenderID:    f.DonorID,
			Type:        domain.NotificationFoodExpiring,
			Title:       "Food item expiring soon",
			Message:     fmt.Sprintf("Your %q expires tomorrow. Consider updating or removing it.", f.Title),
			FoodID:      f.FoodID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Feed returns the userID's notifications newest-first, one page at a time.
// A page past the end is empty, not an error.
func (s *service) Feed(ctx context.Context, userID string, page, limit int) (*Feed, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	all, err := s.store.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread := 0
	for i := range all {
		if !all[i].IsRead {
			unread++
		}
	}
	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return &Feed{
		Notifications: all[start:end],
		Pagination:    domain.Paginate(page, limit, total),
		UnreadCount:   unread,
	}, nil
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *service) MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.store.MarkRead(ctx, notificationID, userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.pusher.Push(userID, "notification_read", map[string]string{"id": notificationID})
	return n, nil
}

func (s *service) MarkAllAsRead(ctx context.Context, userID string) error {
	if _, err := s.store.MarkAllRead(ctx, userID, time.Now().UTC()); err != nil {
		return err
	}
	s.pusher.Push(userID, "notifications_all_read", nil)
	return nil
}
