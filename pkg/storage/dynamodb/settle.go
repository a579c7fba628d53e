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

// ApplySettlement zeroes the vault and every member against the snapshot taken by
// the caller. Any concurrent change to the vault or a member cancels the write.
func (s *Store) ApplySettlement(ctx context.Context, st storage.Settlement) error {
	if len(st.Members)+3 > maxTransactItems {
		return storage.ErrTooManyMembers
	}

	settledAV, err := timeAV(st.SettledAt)
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{
		{
			Update: &types.Update{
				TableName:           aws.String(s.Tables.GroupVaults),
				Key:                 vaultKey(st.Vault.Id),
				UpdateExpression:    aws.String("SET total_balance = :zero, settled_at = :settled_at, version = version + :inc"),
				ConditionExpression: aws.String("total_balance = :total AND version = :version"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":zero":       numberAV(0),
					":settled_at": settledAV,
					":inc":        numberAV(1),
					":total":      numberAV(st.Vault.TotalBalance),
					":version":    numberAV(st.Vault.Version),
				},
			},
		},
	}

	for _, m := range st.Members {
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Members),
				Key:                 memberKey(st.Vault.Id, m.MemberName),
				UpdateExpression:    aws.String("SET contribution_balance = :zero"),
				ConditionExpression: aws.String("contribution_balance = :snapshot"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":zero":     numberAV(0),
					":snapshot": numberAV(m.ContributionBalance),
				},
			},
		})
	}

	activityItem, err := s.putActivity(st.Activity)
	if err != nil {
		return err
	}
	intentItem, err := s.transitionIntent(st.Intent.Id, models.PENDING, models.LOCAL_APPLIED, st.SettledAt)
	if err != nil {
		return err
	}
	items = append(items, activityItem, intentItem)

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		switch failedConditionIndex(err) {
		case -1:
			return fmt.Errorf("failed to execute settlement transaction: %w", err)
		case len(items) - 1:
			return fmt.Errorf("settlement intent %s: %w", st.Intent.Id, storage.ErrIntentNotPending)
		default:
			return fmt.Errorf("group vault %s changed during settlement: %w", st.Vault.Id, storage.ErrConditionFailed)
		}
	}

	return nil
}

// RepairTotal overwrites the vault total with the given value if the vault is unchanged.
func (s *Store) RepairTotal(ctx context.Context, groupVaultID string, observedVersion int64, total models.Cents) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Tables.GroupVaults),
		Key:                 vaultKey(groupVaultID),
		UpdateExpression:    aws.String("SET total_balance = :total, version = version + :inc"),
		ConditionExpression: aws.String("version = :version"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":total":   numberAV(total),
			":inc":     numberAV(1),
			":version": numberAV(observedVersion),
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("group vault %s changed before repair: %w", groupVaultID, storage.ErrConditionFailed)
		}
		return fmt.Errorf("failed to repair group vault total: %w", err)
	}
	return nil
}
