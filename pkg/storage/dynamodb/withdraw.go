package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
)

// ApplyWithdrawal atomically debits the member and the vault total, records the
// activity and moves the intent to LOCAL_APPLIED. The ledger credit follows.
func (s *Store) ApplyWithdrawal(ctx context.Context, intent *models.Intent, activity *models.ActivityRecord) error {
	now := s.now()
	amountAV := numberAV(intent.Amount)

	activityItem, err := s.putActivity(activity)
	if err != nil {
		return err
	}
	intentItem, err := s.transitionIntent(intent.Id, models.PENDING, models.LOCAL_APPLIED, now)
	if err != nil {
		return err
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName:           aws.String(s.Tables.Members),
					Key:                 memberKey(intent.GroupVaultId, intent.MemberName),
					UpdateExpression:    aws.String("SET contribution_balance = contribution_balance - :amount"),
					ConditionExpression: aws.String("attribute_exists(member_name) AND contribution_balance >= :amount"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount": amountAV,
					},
				},
			},
			{
				Update: &types.Update{
					TableName:           aws.String(s.Tables.GroupVaults),
					Key:                 vaultKey(intent.GroupVaultId),
					UpdateExpression:    aws.String("SET total_balance = total_balance - :amount, version = version + :inc"),
					ConditionExpression: aws.String("total_balance >= :amount"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount": amountAV,
						":inc":    numberAV(1),
					},
				},
			},
			activityItem,
			intentItem,
		},
	}

	_, err = s.Client.TransactWriteItems(ctx, input)
	if err != nil {
		switch failedConditionIndex(err) {
		case -1:
			return fmt.Errorf("failed to execute withdrawal transaction: %w", err)
		case 0:
			return fmt.Errorf("member %q: %w", intent.MemberName, storage.ErrInsufficientContribution)
		case 3:
			return fmt.Errorf("withdrawal intent %s: %w", intent.Id, storage.ErrIntentNotPending)
		default:
			return fmt.Errorf("failed to apply withdrawal: %w", storage.ErrConditionFailed)
		}
	}

	return nil
}
