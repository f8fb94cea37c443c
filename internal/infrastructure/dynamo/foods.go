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

// FoodRepo provides typed DynamoDB operations for the foods table.
type FoodRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewFoodRepo(client *dynamodb.Client, tableName string) *FoodRepo {
	return &FoodRepo{client: client, tableName: tableName}
}

func (r *FoodRepo) Put(ctx context.Context, f *domain.FoodListing) error {
	item, err := attributevalue.MarshalMap(f)
	if err != nil {
		return fmt.Errorf("marshal food listing: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *FoodRepo) Get(ctx context.Context, foodID string) (*domain.FoodListing, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("food_id", foodID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("food item not found: %w", domain.ErrNotFound)
	}
	var f domain.FoodListing
	if err := attributevalue.UnmarshalMap(out.Item, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ListAvailable scans for listings that are still claimable.
func (r *FoodRepo) ListAvailable(ctx context.Context) ([]domain.FoodListing, error) {
	var foods []domain.FoodListing
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("is_available = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.FoodListing
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		foods = append(foods, page...)
	}
	return foods, nil
}

// ListByDonor queries the donor GSI, newest first.
func (r *FoodRepo) ListByDonor(ctx context.Context, donorID string) ([]domain.FoodListing, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("donor_id-created_at-index"),
		KeyConditionExpression: aws.String("donor_id = :d"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberS{Value: donorID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var foods []domain.FoodListing
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}

// ListByClaimer queries the claimed_by GSI.
func (r *FoodRepo) ListByClaimer(ctx context.Context, userID string) ([]domain.FoodListing, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("claimed_by-index"),
		KeyConditionExpression: aws.String("claimed_by = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var foods []domain.FoodListing
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}

// Claim performs the one-way available→claimed transition as a single
// conditional update. The condition on is_available guarantees that two
// concurrent claims on the same listing produce exactly one winner; the
// loser's ConditionalCheckFailedException surfaces as ErrConflict.
func (r *FoodRepo) Claim(ctx context.Context, foodID, userID string, at time.Time) (*domain.FoodListing, error) {
	ts := at.UTC().Format(time.RFC3339Nano)
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("food_id", foodID),
		ConditionExpression: aws.String("attribute_exists(food_id) AND is_available = :t"),
		UpdateExpression:    aws.String("SET is_available = :f, claimed_by = :u, claimed_at = :at, updated_at = :at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":  &types.AttributeValueMemberBOOL{Value: true},
			":f":  &types.AttributeValueMemberBOOL{Value: false},
			":u":  &types.AttributeValueMemberS{Value: userID},
			":at": &types.AttributeValueMemberS{Value: ts},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, fmt.Errorf("food item is no longer available: %w", domain.ErrConflict)
		}
		return nil, err
	}
	var f domain.FoodListing
	if err := attributevalue.UnmarshalMap(out.Attributes, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FoodRepo) Delete(ctx context.Context, foodID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("food_id", foodID),
	})
	return err
}
