package dynamodb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
)

// ApplyContribution atomically credits the member and the vault total, records the
// activity and completes the intent. The intent condition makes the write happen once.
func (s *Store) ApplyContribution(ctx context.Context, intent *models.Intent, activity *models.ActivityRecord) error {
	now := s.now()
	nowAV, err := timeAV(now)
	if err != nil {
		return err
	}
	amountAV := numberAV(intent.Amount)

	slog.Log(ctx, slog.LevelDebug, "applying contribution", "intent_id", intent.Id, "group_vault_id", intent.GroupVaultId)

	activityItem, err := s.putActivity(activity)
	if err != nil {
		return err
	}
	intentItem, err := s.transitionIntent(intent.Id, models.PENDING, models.APPLIED, now)
	if err != nil {
		return err
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Insert-if-absent the member and credit its contribution.
				Update: &types.Update{
					TableName:        aws.String(s.Tables.Members),
					Key:              memberKey(intent.GroupVaultId, intent.MemberName),
					UpdateExpression: aws.String("SET contribution_balance = if_not_exists(contribution_balance, :zero) + :amount, is_leader = if_not_exists(is_leader, :false), created_at = if_not_exists(created_at, :now)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":zero":   numberAV(0),
						":amount": amountAV,
						":false":  boolAV(false),
						":now":    nowAV,
					},
				},
			},
			{
				// Operation 2: Increment the vault total.
				Update: &types.Update{
					TableName:           aws.String(s.Tables.GroupVaults),
					Key:                 vaultKey(intent.GroupVaultId),
					UpdateExpression:    aws.String("SET total_balance = total_balance + :amount, version = version + :inc"),
					ConditionExpression: aws.String("attribute_exists(id)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount": amountAV,
						":inc":    numberAV(1),
					},
				},
			},
			// Operation 3: Append the activity record.
			activityItem,
			// Operation 4: PENDING -> APPLIED.
			intentItem,
		},
	}

	_, err = s.Client.TransactWriteItems(ctx, input)
	if err != nil {
		switch failedConditionIndex(err) {
		case -1:
			return fmt.Errorf("failed to execute contribution transaction: %w", err)
		case 1:
			return fmt.Errorf("group vault %s: %w", intent.GroupVaultId, storage.ErrNotFound)
		case 3:
			return fmt.Errorf("contribution intent %s: %w", intent.Id, storage.ErrIntentNotPending)
		default:
			return fmt.Errorf("failed to apply contribution: %w", storage.ErrConditionFailed)
		}
	}

	return nil
}
