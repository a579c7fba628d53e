package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/vault-wallet/pkg/bootstrap"
	"github.com/chris/vault-wallet/pkg/config"
	"github.com/chris/vault-wallet/pkg/groupvault"
	"github.com/chris/vault-wallet/pkg/logging"
	"github.com/chris/vault-wallet/pkg/reconcile"
)

var reconciler *reconcile.Reconciler

func init() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger, _, err := logging.Setup(cfg.LogLevel, "")
	if err != nil {
		os.Exit(1)
	}

	ctx := context.Background()
	backends, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to open backends", slog.Any("error", err))
		os.Exit(1)
	}
	sqsScheduler, err := backends.Scheduler(ctx, cfg)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	reconciler = &reconcile.Reconciler{
		Store:     backends.Store,
		Resumer:   groupvault.NewService(backends.Store, backends.Ledger, logger),
		Scheduler: sqsScheduler,
		Logger:    logger,
		Threshold: cfg.StuckThreshold,
		Repair:    cfg.ReconcileRepair,
	}
}

// HandleRequest is triggered by an EventBridge Schedule. Stuck intents are
// re-enqueued for the intent worker and every vault is audited.
func HandleRequest(ctx context.Context) (*reconcile.Report, error) {
	return reconciler.RunOnce(ctx)
}

func main() {
	lambda.Start(HandleRequest)
}
