package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/foodshare/foodshare-api/internal/domain"
)

// NotificationRepo provides typed DynamoDB operations for the notifications
// table.
type NotificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByRecipient queries the recipient GSI newest-first.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, userID string) ([]domain.Notification, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("recipient_id-created_at-index"),
		KeyConditionExpression: aws.String("recipient_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var notifications []domain.Notification
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// ListUnread queries the recipient GSI and filters for unread records.
func (r *NotificationRepo) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("recipient_id-created_at-index"),
		KeyConditionExpression: aws.String("recipient_id = :uid"),
		FilterExpression:       aws.String("is_read = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		return nil, err
	}
	var notifications []domain.Notification
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// CountUnread counts unread records for a recipient without fetching them.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("recipient_id-created_at-index"),
		KeyConditionExpression: aws.String("recipient_id = :uid"),
		FilterExpression:       aws.String("is_read = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
		},
		Select: types.SelectCount,
	})
	if err != nil {
		return 0, err
	}
	return int(out.Count), nil
}

// MarkRead flips is_read for a single record, but only when the record
// belongs to userID. Ownership is enforced by the condition expression, so a
// foreign notification id is indistinguishable from a missing one.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID string, at time.Time) (*domain.Notification, error) {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"is_read": true,
		"read_at": at.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	ue.Values[":uid"] = &types.AttributeValueMemberS{Value: userID}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("notification_id", notificationID),
		ConditionExpression:       aws.String("attribute_exists(notification_id) AND recipient_id = :uid"),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Attributes, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkAllRead flips every unread record for userID. DynamoDB has no bulk
// update, so unread records are listed and updated one by one; the operation
// is idempotent because a second call finds nothing unread.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	unread, err := r.ListUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	for i := range unread {
		if _, err := r.MarkRead(ctx, unread[i].NotificationID, userID, at); err != nil {
			return i, err
		}
	}
	return len(unread), nil
}
