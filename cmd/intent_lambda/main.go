package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/vault-wallet/pkg/bootstrap"
	"github.com/chris/vault-wallet/pkg/config"
	"github.com/chris/vault-wallet/pkg/groupvault"
	"github.com/chris/vault-wallet/pkg/logging"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/scheduler"
)

// IntentStore is what the worker reads intents from.
type IntentStore interface {
	GetIntent(ctx context.Context, id string) (*models.Intent, error)
}

// Worker resumes the intents named by queue messages.
type Worker struct {
	Store   IntentStore
	Resumer interface {
		Resume(ctx context.Context, intent *models.Intent) (groupvault.Outcome, error)
	}
	Logger *slog.Logger
}

// HandleRequest resumes each queued intent. Messages that fail are reported
// back so SQS redelivers only those. Malformed messages are dropped.
func (wk *Worker) HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, message := range sqsEvent.Records {
		log := wk.Logger.With(slog.String("message_id", message.MessageId))

		msg, err := scheduler.ParseMessage(message.Body)
		if err != nil {
			log.Error("dropping malformed intent message", slog.Any("error", err))
			continue
		}
		log = log.With(slog.String("intent_id", msg.IntentId))

		intent, err := wk.Store.GetIntent(ctx, msg.IntentId)
		if err != nil {
			log.Error("failed to load intent", slog.Any("error", err))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
			continue
		}

		outcome, err := wk.Resumer.Resume(ctx, intent)
		if err != nil {
			log.Error("failed to resume intent", slog.Any("error", err))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
			continue
		}
		log.Info("intent resumed", slog.String("outcome", string(outcome)))
	}
	return resp, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger, _, err := logging.Setup(cfg.LogLevel, "")
	if err != nil {
		os.Exit(1)
	}

	backends, err := bootstrap.Open(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to open backends", slog.Any("error", err))
		os.Exit(1)
	}

	worker := &Worker{
		Store:   backends.Store,
		Resumer: groupvault.NewService(backends.Store, backends.Ledger, logger),
		Logger:  logger,
	}
	lambda.Start(worker.HandleRequest)
}
