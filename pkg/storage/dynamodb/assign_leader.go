package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/vault-wallet/pkg/storage"
)

// AssignLeader swaps the vault's leadership and the member leader flags in one
// transaction, so readers never observe zero or two leaders.
func (s *Store) AssignLeader(ctx context.Context, a storage.LeaderAssignment) error {
	leaderAV, err := attributevalue.Marshal(a.Leader)
	if err != nil {
		return fmt.Errorf("failed to marshal leader: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: Replace the leadership, guarded by the snapshot version.
			Update: &types.Update{
				TableName:           aws.String(s.Tables.GroupVaults),
				Key:                 vaultKey(a.Vault.Id),
				UpdateExpression:    aws.String("SET leader = :leader, version = version + :inc"),
				ConditionExpression: aws.String("version = :version"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":leader":  leaderAV,
					":inc":     numberAV(1),
					":version": numberAV(a.Vault.Version),
				},
			},
		},
		{
			// Operation 2: Flag the new leader.
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Members),
				Key:                 memberKey(a.Vault.Id, a.Leader.Name),
				UpdateExpression:    aws.String("SET is_leader = :true"),
				ConditionExpression: aws.String("attribute_exists(member_name)"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":true": boolAV(true),
				},
			},
		},
	}

	if previous := a.Vault.LeaderName(); previous != "" && previous != a.Leader.Name {
		// Operation 3: Clear the previous leader.
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Members),
				Key:                 memberKey(a.Vault.Id, previous),
				UpdateExpression:    aws.String("SET is_leader = :false"),
				ConditionExpression: aws.String("attribute_exists(member_name)"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":false": boolAV(false),
				},
			},
		})
	}

	activityItem, err := s.putActivity(a.Activity)
	if err != nil {
		return err
	}
	items = append(items, activityItem)

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		switch failedConditionIndex(err) {
		case -1:
			return fmt.Errorf("failed to execute leader assignment transaction: %w", err)
		case 1:
			return fmt.Errorf("member %q: %w", a.Leader.Name, storage.ErrNotFound)
		default:
			return fmt.Errorf("failed to assign leader: %w", storage.ErrConditionFailed)
		}
	}

	return nil
}
