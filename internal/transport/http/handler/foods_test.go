package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foodshare/foodshare-api/internal/application/food"
	"github.com/foodshare/foodshare-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFoodSvc struct{ mock.Mock }

func (m *mockFoodSvc) Search(ctx context.Context, p domain.SearchFoodParams) (*food.SearchResult, error) {
	args := m.Called(ctx, p)
	if res, _ := args.Get(0).(*food.SearchResult); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFoodSvc) Create(ctx context.Context, req domain.CreateFoodRequest, donorID string) (*domain.FoodListing, error) {
	args := m.Called(ctx, req, donorID)
	if f, _ := args.Get(0).(*domain.FoodListing); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFoodSvc) MyDonations(ctx context.Context, userID string) ([]domain.FoodListing, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.FoodListing), args.Error(1)
}

func (m *mockFoodSvc) MyClaims(ctx context.Context, userID string) ([]domain.FoodListing, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.FoodListing), args.Error(1)
}

func (m *mockFoodSvc) Claim(ctx context.Context, foodID, userID string) (*domain.FoodListing, error) {
	args := m.Called(ctx, foodID, userID)
	if f, _ := args.Get(0).(*domain.FoodListing); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFoodSvc) Delete(ctx context.Context, foodID, userID string) error {
	return m.Called(ctx, foodID, userID).Error(0)
}

func validCreateFoodBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(domain.CreateFoodRequest{
		Title:       "Fresh Bread",
		Description: "Baked this morning, more than we can eat",
		Quantity:    "3 loaves",
		Category:    domain.CategoryOther,
		ExpiryDate:  time.Now().AddDate(0, 0, 2).Format(time.RFC3339),
		Location:    "123 Main Street",
	})
	require.NoError(t, err)
	return body
}

// --- List ---

func TestFoodList_ParsesQueryParams(t *testing.T) {
	svc := &mockFoodSvc{}
	var got domain.SearchFoodParams
	svc.On("Search", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).(domain.SearchFoodParams)
	}).Return(&food.SearchResult{Foods: []domain.FoodListing{}}, nil)
	h := NewFoodHandler(svc)

	r := httptest.NewRequest(http.MethodGet,
		"/api/food?query=bread&category=bakery&location=main&page=2&limit=5&sortBy=title&sortOrder=asc&expiryDays=3", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "bread", got.Query)
	assert.Equal(t, "bakery", got.Category)
	assert.Equal(t, "main", got.Location)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, "title", got.SortBy)
	assert.Equal(t, "asc", got.SortOrder)
	assert.Equal(t, 3, got.ExpiryDays)
}

func TestFoodList_SearchParamIsAnAliasForQuery(t *testing.T) {
	svc := &mockFoodSvc{}
	var got domain.SearchFoodParams
	svc.On("Search", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).(domain.SearchFoodParams)
	}).Return(&food.SearchResult{Foods: []domain.FoodListing{}}, nil)
	h := NewFoodHandler(svc)

	r := httptest.NewRequest(http.MethodGet, "/api/food?search=bread", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "bread", got.Query)
}

func TestFoodList_IsPublic(t *testing.T) {
	svc := &mockFoodSvc{}
	svc.On("Search", mock.Anything, mock.Anything).
		Return(&food.SearchResult{Foods: []domain.FoodListing{{FoodID: "f1"}}}, nil)
	h := NewFoodHandler(svc)

	// No Authorization header at all.
	r := httptest.NewRequest(http.MethodGet, "/api/food", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp food.SearchResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Foods, 1)
}

// --- Create ---

func TestFoodCreate_ValidationFailure(t *testing.T) {
	p := newTestJWTProvider(t)
	h := NewFoodHandler(&mockFoodSvc{})

	body, _ := json.Marshal(domain.CreateFoodRequest{Title: "ab"}) // too short, missing fields
	r := bearerReq(t, p, http.MethodPost, "/api/food", "u1", body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Create), rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFoodCreate_HappyPath(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockFoodSvc{}
	svc.On("Create", mock.Anything, mock.Anything, "u1").
		Return(&domain.FoodListing{FoodID: "f1", Title: "Fresh Bread", DonorID: "u1", IsAvailable: true}, nil)
	h := NewFoodHandler(svc)

	r := bearerReq(t, p, http.MethodPost, "/api/food", "u1", validCreateFoodBody(t))
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Create), rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp domain.FoodListing
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "f1", resp.FoodID)
	assert.True(t, resp.IsAvailable)
	svc.AssertExpectations(t)
}

func TestFoodCreate_RequiresAuth(t *testing.T) {
	p := newTestJWTProvider(t)
	h := NewFoodHandler(&mockFoodSvc{})

	r := httptest.NewRequest(http.MethodPost, "/api/food", bytes.NewReader(validCreateFoodBody(t)))
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Create), rr, r)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// --- Claim ---

func TestFoodClaim_HappyPath(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockFoodSvc{}
	svc.On("Claim", mock.Anything, "f1", "u2").
		Return(&domain.FoodListing{FoodID: "f1", IsAvailable: false, ClaimedBy: "u2"}, nil)
	h := NewFoodHandler(svc)

	r := bearerReq(t, p, http.MethodPatch, "/api/food/f1/claim", "u2", nil)
	r = withChiParam(r, "id", "f1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Claim), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp domain.FoodListing
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.False(t, resp.IsAvailable)
	assert.Equal(t, "u2", resp.ClaimedBy)
}

func TestFoodClaim_AlreadyClaimedIs400(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockFoodSvc{}
	svc.On("Claim", mock.Anything, "f1", "u2").Return(nil, domain.ErrConflict)
	h := NewFoodHandler(svc)

	r := bearerReq(t, p, http.MethodPatch, "/api/food/f1/claim", "u2", nil)
	r = withChiParam(r, "id", "f1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Claim), rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFoodClaim_OwnListingIs403(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockFoodSvc{}
	svc.On("Claim", mock.Anything, "f1", "u1").Return(nil, domain.ErrForbidden)
	h := NewFoodHandler(svc)

	r := bearerReq(t, p, http.MethodPatch, "/api/food/f1/claim", "u1", nil)
	r = withChiParam(r, "id", "f1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Claim), rr, r)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestFoodClaim_UnknownIs404(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockFoodSvc{}
	svc.On("Claim", mock.Anything, "nope", "u2").Return(nil, domain.ErrNotFound)
	h := NewFoodHandler(svc)

	r := bearerReq(t, p, http.MethodPatch, "/api/food/nope/claim", "u2", nil)
	r = withChiParam(r, "id", "nope")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Claim), rr, r)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- my-donations / my-claims ---

func TestMyDonations_ReturnsOwnListings(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockFoodSvc{}
	svc.On("MyDonations", mock.Anything, "u1").
		Return([]domain.FoodListing{{FoodID: "f1", DonorID: "u1"}}, nil)
	h := NewFoodHandler(svc)

	r := bearerReq(t, p, http.MethodGet, "/api/food/my-donations", "u1", nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.MyDonations), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []domain.FoodListing
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "f1", resp[0].FoodID)
}

func TestMyClaims_ReturnsClaimedListings(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockFoodSvc{}
	svc.On("MyClaims", mock.Anything, "u2").
		Return([]domain.FoodListing{{FoodID: "f1", ClaimedBy: "u2"}}, nil)
	h := NewFoodHandler(svc)

	r := bearerReq(t, p, http.MethodGet, "/api/food/my-claims", "u2", nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.MyClaims), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
}

// --- Delete ---

func TestFoodDelete_NonDonorIs403(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockFoodSvc{}
	svc.On("Delete", mock.Anything, "f1", "u2").Return(domain.ErrForbidden)
	h := NewFoodHandler(svc)

	r := bearerReq(t, p, http.MethodDelete, "/api/food/f1", "u2", nil)
	r = withChiParam(r, "id", "f1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Delete), rr, r)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestFoodDelete_HappyPath(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockFoodSvc{}
	svc.On("Delete", mock.Anything, "f1", "u1").Return(nil)
	h := NewFoodHandler(svc)

	r := bearerReq(t, p, http.MethodDelete, "/api/food/f1", "u1", nil)
	r = withChiParam(r, "id", "f1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Delete), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
