package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
)

// CreateIntent writes a new intent record.
func (s *Store) CreateIntent(ctx context.Context, intent *models.Intent) error {
	item, err := attributevalue.MarshalMap(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Intents),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("intent %s already exists: %w", intent.Id, storage.ErrConditionFailed)
		}
		return fmt.Errorf("failed to create intent in DynamoDB: %w", err)
	}

	return nil
}

// GetIntent retrieves an intent by its ID.
func (s *Store) GetIntent(ctx context.Context, id string) (*models.Intent, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Intents),
		Key:            map[string]types.AttributeValue{"id": stringAV(id)},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get intent from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("intent %s: %w", id, storage.ErrNotFound)
	}

	var intent models.Intent
	if err := attributevalue.UnmarshalMap(result.Item, &intent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal intent: %w", err)
	}

	return &intent, nil
}

// MarkIntentFailed moves a PENDING intent to FAILED and records the reason.
func (s *Store) MarkIntentFailed(ctx context.Context, id string, reason string) error {
	nowAV, err := timeAV(s.now())
	if err != nil {
		return err
	}

	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Tables.Intents),
		Key:                 map[string]types.AttributeValue{"id": stringAV(id)},
		UpdateExpression:    aws.String("SET #status = :failed, #error = :reason, updated_at = :now"),
		ConditionExpression: aws.String("#status = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
			"#error":  "error",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":failed":  stringAV(string(models.FAILED)),
			":pending": stringAV(string(models.PENDING)),
			":reason":  stringAV(reason),
			":now":     nowAV,
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("intent %s: %w", id, storage.ErrIntentNotPending)
		}
		return fmt.Errorf("failed to mark intent failed: %w", err)
	}

	return nil
}

// MarkIntentApplied moves a LOCAL_APPLIED intent to APPLIED.
func (s *Store) MarkIntentApplied(ctx context.Context, id string) error {
	nowAV, err := timeAV(s.now())
	if err != nil {
		return err
	}

	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Tables.Intents),
		Key:                 map[string]types.AttributeValue{"id": stringAV(id)},
		UpdateExpression:    aws.String("SET #status = :applied, updated_at = :now"),
		ConditionExpression: aws.String("#status = :local_applied"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":applied":       stringAV(string(models.APPLIED)),
			":local_applied": stringAV(string(models.LOCAL_APPLIED)),
			":now":           nowAV,
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("intent %s: %w", id, storage.ErrIntentNotPending)
		}
		return fmt.Errorf("failed to mark intent applied: %w", err)
	}

	return nil
}

// GetStuckIntents queries the status index for unfinished intents created before the cutoff.
func (s *Store) GetStuckIntents(ctx context.Context, maxAge time.Duration) ([]models.Intent, error) {
	cutoffAV, err := timeAV(s.now().Add(-maxAge))
	if err != nil {
		return nil, err
	}

	var intents []models.Intent
	for _, status := range []models.IntentStatus{models.PENDING, models.LOCAL_APPLIED} {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.Tables.Intents),
			IndexName:              aws.String(intentsByStatusIndex),
			KeyConditionExpression: aws.String("#status = :status AND created_at < :cutoff"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":status": stringAV(string(status)),
				":cutoff": cutoffAV,
			},
		}

		for {
			result, err := s.Client.Query(ctx, input)
			if err != nil {
				return nil, fmt.Errorf("failed to query for stuck intents: %w", err)
			}

			var page []models.Intent
			if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
				return nil, fmt.Errorf("failed to unmarshal stuck intents: %w", err)
			}
			intents = append(intents, page...)

			if len(result.LastEvaluatedKey) == 0 {
				break
			}
			input.ExclusiveStartKey = result.LastEvaluatedKey
		}
	}

	return intents, nil
}
