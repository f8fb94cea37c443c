package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foodshare/foodshare-api/internal/application/notification"
	"github.com/foodshare/foodshare-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifSvc struct{ mock.Mock }

func (m *mockNotifSvc) Create(ctx context.Context, in notification.CreateInput) (*domain.Notification, error) {
	args := m.Called(ctx, in)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotifSvc) NotifyFoodClaimed(ctx context.Context, f *domain.FoodListing, claimer *domain.User) error {
	return m.Called(ctx, f, claimer).Error(0)
}

func (m *mockNotifSvc) NotifyNewFoodNearby(ctx context.Context, users []domain.User, f *domain.FoodListing) error {
	return m.Called(ctx, users, f).Error(0)
}

func (m *mockNotifSvc) NotifyFoodExpiring(ctx context.Context, listings []domain.FoodListing) error {
	return m.Called(ctx, listings).Error(0)
}

func (m *mockNotifSvc) Feed(ctx context.Context, userID string, page, limit int) (*notification.Feed, error) {
	args := m.Called(ctx, userID, page, limit)
	if f, _ := args.Get(0).(*notification.Feed); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotifSvc) UnreadCount(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockNotifSvc) MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID, userID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotifSvc) MarkAllAsRead(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// --- List ---

func TestNotificationList_ReturnsFeed(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockNotifSvc{}
	svc.On("Feed", mock.Anything, "u1", 2, 10).Return(&notification.Feed{
		Notifications: []domain.Notification{{NotificationID: "n1", RecipientID: "u1"}},
		Pagination:    domain.Paginate(2, 10, 11),
		UnreadCount:   3,
	}, nil)
	h := NewNotificationHandler(svc)

	r := bearerReq(t, p, http.MethodGet, "/api/notifications?page=2&limit=10", "u1", nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.List), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp notification.Feed
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, 3, resp.UnreadCount)
	assert.Equal(t, 2, resp.Pagination.Current)
	svc.AssertExpectations(t)
}

func TestNotificationList_MissingClaims(t *testing.T) {
	h := NewNotificationHandler(&mockNotifSvc{})
	r := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// --- UnreadCount ---

func TestUnreadCount_ReturnsCount(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockNotifSvc{}
	svc.On("UnreadCount", mock.Anything, "u1").Return(7, nil)
	h := NewNotificationHandler(svc)

	r := bearerReq(t, p, http.MethodGet, "/api/notifications/unread-count", "u1", nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.UnreadCount), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp CountEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 7, resp.Count)
}

// --- MarkAsRead ---

func TestMarkAsRead_HappyPath(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockNotifSvc{}
	svc.On("MarkAsRead", mock.Anything, "n1", "u1").
		Return(&domain.Notification{NotificationID: "n1", IsRead: true}, nil)
	h := NewNotificationHandler(svc)

	r := bearerReq(t, p, http.MethodPatch, "/api/notifications/n1/read", "u1", nil)
	r = withChiParam(r, "id", "n1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.MarkAsRead), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp domain.Notification
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.IsRead)
}

func TestMarkAsRead_SomeoneElsesNotificationIs404(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockNotifSvc{}
	svc.On("MarkAsRead", mock.Anything, "n1", "u2").Return(nil, domain.ErrNotFound)
	h := NewNotificationHandler(svc)

	r := bearerReq(t, p, http.MethodPatch, "/api/notifications/n1/read", "u2", nil)
	r = withChiParam(r, "id", "n1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.MarkAsRead), rr, r)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- MarkAllAsRead ---

func TestMarkAllAsRead_HappyPath(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockNotifSvc{}
	svc.On("MarkAllAsRead", mock.Anything, "u1").Return(nil)
	h := NewNotificationHandler(svc)

	r := bearerReq(t, p, http.MethodPatch, "/api/notifications/mark-all-read", "u1", nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.MarkAllAsRead), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
