package dynamodb

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAddLinkedBank(t *testing.T) {
	t.Run("Secondary Bank", func(t *testing.T) {
		store, mockClient := newTestStore()
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(&dynamodb.PutItemOutput{}, nil)

		err := store.AddLinkedBank(context.Background(), &models.LinkedBank{UserId: "user-1", Id: "bank-2", BankName: "Chase", AccountLast4: "1234"})

		assert.NoError(t, err)
		mockClient.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
	})

	t.Run("Primary Clears Previous", func(t *testing.T) {
		store, mockClient := newTestStore()

		oldPrimary, _ := attributevalue.MarshalMap(&models.LinkedBank{UserId: "user-1", Id: "bank-1", IsPrimary: true})
		secondary, _ := attributevalue.MarshalMap(&models.LinkedBank{UserId: "user-1", Id: "bank-3"})
		mockClient.On("Query", mock.Anything, mock.Anything).
			Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{oldPrimary, secondary}}, nil)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			if len(in.TransactItems) != 2 {
				return false
			}
			cleared := in.TransactItems[0].Update.Key["id"].(*types.AttributeValueMemberS).Value
			return cleared == "bank-1" && in.TransactItems[1].Put != nil
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.AddLinkedBank(context.Background(), &models.LinkedBank{UserId: "user-1", Id: "bank-2", BankName: "Chase", AccountLast4: "1234", IsPrimary: true})

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})
}

func TestUpsertSettings(t *testing.T) {
	store, mockClient := newTestStore()

	theme := "dark"
	limit := models.Cents(50000)
	privacy := true
	patch := &models.ProfileSettings{UserId: "user-1", Theme: &theme, DailySendLimit: &limit, PrivacyMode: &privacy}

	merged := *patch
	merged.UpdatedAt = &fixedNow
	mergedAV, _ := attributevalue.MarshalMap(&merged)

	mockClient.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		expr := *in.UpdateExpression
		return strings.HasPrefix(expr, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2") &&
			in.ExpressionAttributeNames["#f0"] == "daily_send_limit" &&
			in.ExpressionAttributeNames["#f1"] == "privacy_mode" &&
			in.ExpressionAttributeNames["#f2"] == "theme" &&
			in.ReturnValues == types.ReturnValueAllNew
	})).Return(&dynamodb.UpdateItemOutput{Attributes: mergedAV}, nil)

	settings, err := store.UpsertSettings(context.Background(), patch)

	require.NoError(t, err)
	assert.Equal(t, "dark", *settings.Theme)
	assert.Equal(t, models.Cents(50000), *settings.DailySendLimit)
	mockClient.AssertExpectations(t)
}

func TestGetSettings(t *testing.T) {
	t.Run("Missing Yields Empty", func(t *testing.T) {
		store, mockClient := newTestStore()
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		settings, err := store.GetSettings(context.Background(), "user-1")

		require.NoError(t, err)
		assert.Equal(t, "user-1", settings.UserId)
		assert.Nil(t, settings.Theme)
	})
}
