package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testIntent(kind models.IntentKind, amount models.Cents) *models.Intent {
	return &models.Intent{
		Id:           "intent-1",
		Kind:         kind,
		Status:       models.PENDING,
		UserId:       "user-1",
		GroupVaultId: "vault-1",
		MemberName:   "Alex",
		Amount:       amount,
		CreatedAt:    fixedNow,
		UpdatedAt:    fixedNow,
	}
}

func testActivity(note string) *models.ActivityRecord {
	return &models.ActivityRecord{
		UserId:     "user-1",
		SortKey:    models.ActivitySortKey(fixedNow, "act-1"),
		Id:         "act-1",
		Note:       note,
		OccurredAt: fixedNow,
	}
}

func TestApplyContribution(t *testing.T) {
	intent := testIntent(models.IntentContribute, 5000)
	activity := testActivity("Added contribution to group vault")

	t.Run("Success", func(t *testing.T) {
		store, mockClient := newTestStore()

		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			if len(in.TransactItems) != 4 {
				return false
			}
			member := in.TransactItems[0].Update
			vault := in.TransactItems[1].Update
			intentUpdate := in.TransactItems[3].Update
			amount := member.ExpressionAttributeValues[":amount"].(*types.AttributeValueMemberN).Value
			status := intentUpdate.ExpressionAttributeValues[":to_status"].(*types.AttributeValueMemberS).Value
			return *member.TableName == "group_vault_members" &&
				*vault.TableName == "group_vaults" &&
				amount == "5000" &&
				status == string(models.APPLIED)
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.ApplyContribution(context.Background(), intent, activity)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Vault Not Found", func(t *testing.T) {
		store, mockClient := newTestStore()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, canceledAt(1, 4))

		err := store.ApplyContribution(context.Background(), intent, activity)

		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Intent Already Applied", func(t *testing.T) {
		store, mockClient := newTestStore()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, canceledAt(3, 4))

		err := store.ApplyContribution(context.Background(), intent, activity)

		assert.ErrorIs(t, err, storage.ErrIntentNotPending)
	})

	t.Run("Storage Error", func(t *testing.T) {
		store, mockClient := newTestStore()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		err := store.ApplyContribution(context.Background(), intent, activity)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute contribution transaction")
		assert.NotErrorIs(t, err, storage.ErrConditionFailed)
	})
}

func TestApplyWithdrawal(t *testing.T) {
	intent := testIntent(models.IntentWithdraw, 3000)
	activity := testActivity("Withdrew member contribution from group vault")

	t.Run("Success", func(t *testing.T) {
		store, mockClient := newTestStore()

		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			member := in.TransactItems[0].Update
			intentUpdate := in.TransactItems[3].Update
			status := intentUpdate.ExpressionAttributeValues[":to_status"].(*types.AttributeValueMemberS).Value
			return *member.ConditionExpression == "attribute_exists(member_name) AND contribution_balance >= :amount" &&
				status == string(models.LOCAL_APPLIED)
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.ApplyWithdrawal(context.Background(), intent, activity)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Insufficient Contribution", func(t *testing.T) {
		store, mockClient := newTestStore()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, canceledAt(0, 4))

		err := store.ApplyWithdrawal(context.Background(), intent, activity)

		assert.ErrorIs(t, err, storage.ErrInsufficientContribution)
	})

	t.Run("Vault Total Too Low", func(t *testing.T) {
		store, mockClient := newTestStore()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, canceledAt(1, 4))

		err := store.ApplyWithdrawal(context.Background(), intent, activity)

		assert.ErrorIs(t, err, storage.ErrConditionFailed)
	})
}
