package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
)

// CreateGroupVault atomically writes a new vault, its initial members and the creation activity.
func (s *Store) CreateGroupVault(ctx context.Context, vault *models.GroupVault, members []models.GroupVaultMember, activity *models.ActivityRecord) error {
	if len(members)+2 > maxTransactItems {
		return storage.ErrTooManyMembers
	}

	vaultAV, err := attributevalue.MarshalMap(vault)
	if err != nil {
		return fmt.Errorf("failed to marshal group vault: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.GroupVaults),
				Item:                vaultAV,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		},
	}

	for i := range members {
		memberAV, err := attributevalue.MarshalMap(&members[i])
		if err != nil {
			return fmt.Errorf("failed to marshal group vault member: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Members),
				Item:                memberAV,
				ConditionExpression: aws.String("attribute_not_exists(member_name)"),
			},
		})
	}

	activityItem, err := s.putActivity(activity)
	if err != nil {
		return err
	}
	items = append(items, activityItem)

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if failedConditionIndex(err) >= 0 {
			return fmt.Errorf("failed to create group vault: %w", storage.ErrConditionFailed)
		}
		return fmt.Errorf("failed to execute create group vault transaction: %w", err)
	}

	return nil
}
