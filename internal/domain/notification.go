package domain

import "time"

// Notification types.
const (
	NotificationFoodClaimed   = "food_claimed"
	NotificationNewFoodNearby = "new_food_nearby"
	NotificationFoodExpiring  = "food_expiring"
)

// Notification is a durable record of a domain event directed at one
// recipient. Records are created only by the notification service, never
// directly by a client request.
type Notification struct {
	NotificationID string     `json:"id" dynamodbav:"notification_id"`
	RecipientID    string     `json:"recipient" dynamodbav:"recipient_id"`
	SenderID       string     `json:"sender" dynamodbav:"sender_id"`
	Type           string     `json:"type" dynamodbav:"type"`
	Title          string     `json:"title" dynamodbav:"title"`
	Message        string     `json:"message" dynamodbav:"message"`
	FoodID         string     `json:"foodItem,omitempty" dynamodbav:"food_id"`
	IsRead         bool       `json:"isRead" dynamodbav:"is_read"`
	ReadAt         *time.Time `json:"readAt,omitempty" dynamodbav:"read_at"`
	CreatedAt      time.Time  `json:"createdAt" dynamodbav:"created_at"`

	// ExpiresAt is a unix timestamp consumed by the DynamoDB TTL sweeper.
	// It bounds notification retention.
	ExpiresAt int64 `json:"-" dynamodbav:"expires_at"`
}
