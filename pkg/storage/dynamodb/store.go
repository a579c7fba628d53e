package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the Store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Tables names the DynamoDB tables backing the Store.
type Tables struct {
	GroupVaults string
	Members     string
	Activity    string
	Intents     string
	Banks       string
	Settings    string
}

// Validate reports the first missing table name.
func (t Tables) Validate() error {
	names := [][2]string{
		{"group vaults", t.GroupVaults},
		{"members", t.Members},
		{"activity", t.Activity},
		{"intents", t.Intents},
		{"banks", t.Banks},
		{"settings", t.Settings},
	}
	for _, n := range names {
		if n[1] == "" {
			return fmt.Errorf("%s table name is not set", n[0])
		}
	}
	return nil
}

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client DynamoDBAPI
	Tables Tables
	Now    func() time.Time
}

// New creates a new Store.
func New(client DynamoDBAPI, tables Tables) *Store {
	return &Store{
		Client: client,
		Tables: tables,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// maxTransactItems is DynamoDB's limit on items per TransactWriteItems call.
const maxTransactItems = 100

const (
	groupVaultsByUserIndex = "user_id-created_at-index"
	intentsByStatusIndex   = "status-created_at-index"
)

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

// failedConditionIndex returns the index of the first transaction item whose
// condition check failed, or -1 when err is not a condition failure.
func failedConditionIndex(err error) int {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return -1
	}
	for i, reason := range tce.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return i
		}
	}
	return -1
}

func isConditionalCheckFailed(err error) bool {
	var condCheckFailed *types.ConditionalCheckFailedException
	return errors.As(err, &condCheckFailed)
}

func stringAV(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func numberAV[T ~int64 | ~int](v T) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", v)}
}

func boolAV(v bool) types.AttributeValue {
	return &types.AttributeValueMemberBOOL{Value: v}
}

func timeAV(t time.Time) (types.AttributeValue, error) {
	av, err := attributevalue.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}
	return av, nil
}

func vaultKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": stringAV(id)}
}

func memberKey(groupVaultID, memberName string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"group_vault_id": stringAV(groupVaultID),
		"member_name":    stringAV(memberName),
	}
}

// putActivity builds the transaction item appending an activity record.
func (s *Store) putActivity(activity *models.ActivityRecord) (types.TransactWriteItem, error) {
	item, err := attributevalue.MarshalMap(activity)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to marshal activity: %w", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(s.Tables.Activity),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(sk)"),
		},
	}, nil
}

// transitionIntent builds the transaction item moving an intent between statuses.
func (s *Store) transitionIntent(id string, from, to models.IntentStatus, now time.Time) (types.TransactWriteItem, error) {
	nowAV, err := timeAV(now)
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName:           aws.String(s.Tables.Intents),
			Key:                 map[string]types.AttributeValue{"id": stringAV(id)},
			UpdateExpression:    aws.String("SET #status = :to_status, updated_at = :now"),
			ConditionExpression: aws.String("#status = :from_status"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":to_status":   stringAV(string(to)),
				":from_status": stringAV(string(from)),
				":now":         nowAV,
			},
		},
	}, nil
}
