package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestListActivity(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		store, mockClient := newTestStore()

		record := testActivity("Added contribution to group vault")
		recordAV, _ := attributevalue.MarshalMap(record)
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return *in.Limit == 20 && !*in.ScanIndexForward
		})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{recordAV}}, nil)

		records, err := store.ListActivity(context.Background(), "user-1", 20)

		assert.NoError(t, err)
		assert.Equal(t, []models.ActivityRecord{*record}, records)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		store, mockClient := newTestStore()
		mockClient.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("query failed"))

		_, err := store.ListActivity(context.Background(), "user-1", 20)

		assert.Contains(t, err.Error(), "failed to query for activity")
	})
}

func TestAppendActivity(t *testing.T) {
	store, mockClient := newTestStore()
	mockClient.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return *in.TableName == "activity"
	})).Return(&dynamodb.PutItemOutput{}, nil)

	err := store.AppendActivity(context.Background(), testActivity("Added demo cash"))

	assert.NoError(t, err)
	mockClient.AssertExpectations(t)
}
