package domain

import "time"

// Food listing categories.
const (
	CategoryVegetables = "vegetables"
	CategoryFruits     = "fruits"
	CategoryGrains     = "grains"
	CategoryDairy      = "dairy"
	CategoryMeat       = "meat"
	CategoryPrepared   = "prepared"
	CategoryOther      = "other"
)

// FoodListing is a donor's posted surplus-food item.
//
// Invariants: IsAvailable is false exactly when ClaimedBy is set, and a
// listing is never claimed by its own donor. The available→claimed
// transition is one-way.
type FoodListing struct {
	FoodID      string     `json:"id" dynamodbav:"food_id"`
	Title       string     `json:"title" dynamodbav:"title"`
	Description string     `json:"description" dynamodbav:"description"`
	Quantity    string     `json:"quantity" dynamodbav:"quantity"`
	Category    string     `json:"category" dynamodbav:"category"`
	ExpiryDate  time.Time  `json:"expiryDate" dynamodbav:"expiry_date"`
	Location    string     `json:"location" dynamodbav:"location"`
	ImageURL    string     `json:"imageUrl" dynamodbav:"image_url"`
	IsAvailable bool       `json:"isAvailable" dynamodbav:"is_available"`
	DonorID     string     `json:"donor" dynamodbav:"donor_id"`
	// claimed_by is a sparse GSI key: unclaimed listings omit the attribute
	// entirely (DynamoDB rejects empty-string key values).
	ClaimedBy string     `json:"claimedBy,omitempty" dynamodbav:"claimed_by,omitempty"`
	ClaimedAt *time.Time `json:"claimedAt,omitempty" dynamodbav:"claimed_at,omitempty"`
	CreatedAt time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" dynamodbav:"updated_at"`
}

type CreateFoodRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"required,min=10,max=500"`
	Quantity    string `json:"quantity" validate:"required,min=1,max=50"`
	Category    string `json:"category" validate:"required,oneof=vegetables fruits grains dairy meat prepared other"`
	ExpiryDate  string `json:"expiryDate" validate:"required"` // ISO 8601; must not be in the past
	Location    string `json:"location" validate:"required,min=5,max=200"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`

	// Optional coordinates for the new-food-available location broadcast.
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// SearchFoodParams filters and orders the public food listing feed.
type SearchFoodParams struct {
	Query      string
	Category   string
	Location   string
	ExpiryDays int
	SortBy     string // createdAt | expiryDate | title
	SortOrder  string // asc | desc
	Page       int
	Limit      int
}
