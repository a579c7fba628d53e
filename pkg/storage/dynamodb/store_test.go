package dynamodb

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/vault-wallet/pkg/storage/dynamodb/mocks"
)

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func testTables() Tables {
	return Tables{
		GroupVaults: "group_vaults",
		Members:     "group_vault_members",
		Activity:    "activity",
		Intents:     "intents",
		Banks:       "linked_banks",
		Settings:    "profile_settings",
	}
}

func newTestStore() (*Store, *mocks.DynamoDBAPI) {
	mockClient := new(mocks.DynamoDBAPI)
	store := New(mockClient, testTables())
	store.Now = func() time.Time { return fixedNow }
	return store, mockClient
}

// canceledAt builds a cancelled transaction whose item at index failed its condition.
func canceledAt(index, items int) error {
	reasons := make([]types.CancellationReason, items)
	for i := range reasons {
		reasons[i] = types.CancellationReason{Code: aws.String("None")}
	}
	reasons[index] = types.CancellationReason{Code: aws.String("ConditionalCheckFailed")}
	return &types.TransactionCanceledException{CancellationReasons: reasons}
}
