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

// GetGroupVault retrieves a group vault from DynamoDB by its ID.
func (s *Store) GetGroupVault(ctx context.Context, id string) (*models.GroupVault, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.GroupVaults),
		Key:            vaultKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get group vault from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("group vault %s: %w", id, storage.ErrNotFound)
	}

	var vault models.GroupVault
	if err := attributevalue.UnmarshalMap(result.Item, &vault); err != nil {
		return nil, fmt.Errorf("failed to unmarshal group vault: %w", err)
	}

	return &vault, nil
}

// ListGroupVaults queries the owner index, newest first.
func (s *Store) ListGroupVaults(ctx context.Context, userID string) ([]models.GroupVault, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.GroupVaults),
		IndexName:              aws.String(groupVaultsByUserIndex),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": stringAV(userID),
		},
		ScanIndexForward: aws.Bool(false),
	}

	var vaults []models.GroupVault
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query group vaults by user ID: %w", err)
		}

		var page []models.GroupVault
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal group vaults: %w", err)
		}
		vaults = append(vaults, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return vaults, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// ListAllGroupVaults scans the whole group vaults table.
func (s *Store) ListAllGroupVaults(ctx context.Context) ([]models.GroupVault, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.Tables.GroupVaults),
	}

	var vaults []models.GroupVault
	for {
		result, err := s.Client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group vaults: %w", err)
		}

		var page []models.GroupVault
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal group vaults: %w", err)
		}
		vaults = append(vaults, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return vaults, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// GetMember retrieves a group vault member by display name.
func (s *Store) GetMember(ctx context.Context, groupVaultID, memberName string) (*models.GroupVaultMember, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Members),
		Key:            memberKey(groupVaultID, memberName),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get group vault member from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("member %q of group vault %s: %w", memberName, groupVaultID, storage.ErrNotFound)
	}

	var member models.GroupVaultMember
	if err := attributevalue.UnmarshalMap(result.Item, &member); err != nil {
		return nil, fmt.Errorf("failed to unmarshal group vault member: %w", err)
	}

	return &member, nil
}

// ListMembers retrieves every member of a group vault.
func (s *Store) ListMembers(ctx context.Context, groupVaultID string) ([]models.GroupVaultMember, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Members),
		KeyConditionExpression: aws.String("group_vault_id = :group_vault_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":group_vault_id": stringAV(groupVaultID),
		},
		ConsistentRead: aws.Bool(true),
	}

	var members []models.GroupVaultMember
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query group vault members: %w", err)
		}

		var page []models.GroupVaultMember
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal group vault members: %w", err)
		}
		members = append(members, page...)

		if len(result.LastEvaluatedKey) == 0 {
			return members, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}
