package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/vault-wallet/pkg/models"
)

// AppendActivity writes a standalone activity record.
func (s *Store) AppendActivity(ctx context.Context, activity *models.ActivityRecord) error {
	item, err := attributevalue.MarshalMap(activity)
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Activity),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(sk)"),
	})
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}

	return nil
}

// ListActivity retrieves a user's most recent activity.
func (s *Store) ListActivity(ctx context.Context, userID string, limit int32) ([]models.ActivityRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Activity),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": stringAV(userID),
		},
		ScanIndexForward: aws.Bool(false), // Sort key is time-prefixed, so this is newest first.
		Limit:            &limit,
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for activity: %w", err)
	}

	var records []models.ActivityRecord
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity: %w", err)
	}

	return records, nil
}
