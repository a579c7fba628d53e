// Package bootstrap opens the backends named by the configuration. It is shared
// by the API server and the lambdas.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/vault-wallet/pkg/config"
	"github.com/chris/vault-wallet/pkg/ledger"
	ledgermemory "github.com/chris/vault-wallet/pkg/ledger/memory"
	"github.com/chris/vault-wallet/pkg/ledger/postgres"
	"github.com/chris/vault-wallet/pkg/scheduler"
	"github.com/chris/vault-wallet/pkg/storage"
	"github.com/chris/vault-wallet/pkg/storage/dynamodb"
	"github.com/chris/vault-wallet/pkg/storage/memory"
)

// Backends holds the opened store and ledger.
type Backends struct {
	Store  storage.Storage
	Ledger ledger.Gateway
	AWS    *aws.Config
	closer func() error
}

// Close releases the ledger connection, if any.
func (b *Backends) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}

// Open connects the store and the ledger. The AWS config is loaded only when a
// backend needs it.
func Open(ctx context.Context, cfg *config.Config) (*Backends, error) {
	b := &Backends{}

	switch cfg.StorageBackend {
	case config.BackendMemory:
		b.Store = memory.New()
	default:
		awsCfg, err := b.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		b.Store = dynamodb.New(awsdynamodb.NewFromConfig(*awsCfg), cfg.Tables)
	}

	switch cfg.LedgerBackend {
	case config.BackendMemory:
		b.Ledger = ledgermemory.New()
	default:
		l, err := postgres.Open(cfg.LedgerDSN)
		if err != nil {
			return nil, err
		}
		b.Ledger = l
		b.closer = l.Close
	}
	return b, nil
}

// Scheduler builds the SQS intent scheduler.
func (b *Backends) Scheduler(ctx context.Context, cfg *config.Config) (*scheduler.SQSScheduler, error) {
	if err := cfg.RequireQueue(); err != nil {
		return nil, err
	}
	awsCfg, err := b.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	return scheduler.NewSQSScheduler(sqs.NewFromConfig(*awsCfg), cfg.SQSQueueURL), nil
}

func (b *Backends) awsConfig(ctx context.Context) (*aws.Config, error) {
	if b.AWS != nil {
		return b.AWS, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	b.AWS = &awsCfg
	return b.AWS, nil
}
