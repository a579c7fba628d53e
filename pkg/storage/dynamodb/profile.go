package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
)

// AddLinkedBank links a bank. When the bank is primary, every current primary is
// cleared in the same transaction.
func (s *Store) AddLinkedBank(ctx context.Context, bank *models.LinkedBank) error {
	bankAV, err := attributevalue.MarshalMap(bank)
	if err != nil {
		return fmt.Errorf("failed to marshal linked bank: %w", err)
	}
	put := &types.Put{
		TableName:           aws.String(s.Tables.Banks),
		Item:                bankAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	}

	if !bank.IsPrimary {
		_, err := s.Client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           put.TableName,
			Item:                put.Item,
			ConditionExpression: put.ConditionExpression,
		})
		if err != nil {
			return fmt.Errorf("failed to add linked bank: %w", err)
		}
		return nil
	}

	existing, err := s.ListLinkedBanks(ctx, bank.UserId)
	if err != nil {
		return err
	}

	var items []types.TransactWriteItem
	for _, b := range existing {
		if !b.IsPrimary {
			continue
		}
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(s.Tables.Banks),
				Key: map[string]types.AttributeValue{
					"user_id": stringAV(b.UserId),
					"id":      stringAV(b.Id),
				},
				UpdateExpression:    aws.String("SET is_primary = :false"),
				ConditionExpression: aws.String("is_primary = :true"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":false": boolAV(false),
					":true":  boolAV(true),
				},
			},
		})
	}
	items = append(items, types.TransactWriteItem{Put: put})

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if failedConditionIndex(err) >= 0 {
			return fmt.Errorf("primary bank changed concurrently: %w", storage.ErrConditionFailed)
		}
		return fmt.Errorf("failed to execute add primary bank transaction: %w", err)
	}

	return nil
}

// ListLinkedBanks retrieves a user's linked banks.
func (s *Store) ListLinkedBanks(ctx context.Context, userID string) ([]models.LinkedBank, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Banks),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": stringAV(userID),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query linked banks: %w", err)
	}

	var banks []models.LinkedBank
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &banks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal linked banks: %w", err)
	}

	return banks, nil
}

// UpsertSettings sets each option present in the patch and stamps updated_at.
func (s *Store) UpsertSettings(ctx context.Context, patch *models.ProfileSettings) (*models.ProfileSettings, error) {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil, errors.New("no settings to update")
	}

	nowAV, err := timeAV(s.now())
	if err != nil {
		return nil, err
	}

	names := map[string]string{"#updated_at": "updated_at"}
	values := map[string]types.AttributeValue{":updated_at": nowAV}
	sets := make([]string, 0, len(fields)+1)
	for i, f := range fields {
		av, err := attributevalue.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal setting %s: %w", f.Name, err)
		}
		name, value := fmt.Sprintf("#f%d", i), fmt.Sprintf(":v%d", i)
		names[name] = f.Name
		values[value] = av
		sets = append(sets, name+" = "+value)
	}
	sets = append(sets, "#updated_at = :updated_at")

	result, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.Tables.Settings),
		Key:                       map[string]types.AttributeValue{"user_id": stringAV(patch.UserId)},
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	var settings models.ProfileSettings
	if err := attributevalue.UnmarshalMap(result.Attributes, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return &settings, nil
}

// GetSettings retrieves a user's settings.
func (s *Store) GetSettings(ctx context.Context, userID string) (*models.ProfileSettings, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Settings),
		Key:       map[string]types.AttributeValue{"user_id": stringAV(userID)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get settings from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return &models.ProfileSettings{UserId: userID}, nil
	}

	var settings models.ProfileSettings
	if err := attributevalue.UnmarshalMap(result.Item, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return &settings, nil
}
