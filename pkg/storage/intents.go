package storage

import (
	"context"
	"time"

	"github.com/chris/vault-wallet/pkg/models"
)

// IntentStore defines the interface for the workflow intent log.
type IntentStore interface {
	// CreateIntent writes a new PENDING intent.
	CreateIntent(ctx context.Context, intent *models.Intent) error

	// GetIntent retrieves an intent by its ID.
	GetIntent(ctx context.Context, id string) (*models.Intent, error)

	// MarkIntentFailed moves a PENDING intent to FAILED.
	MarkIntentFailed(ctx context.Context, id string, reason string) error

	// MarkIntentApplied moves a LOCAL_APPLIED intent to APPLIED.
	MarkIntentApplied(ctx context.Context, id string) error

	// GetStuckIntents retrieves PENDING and LOCAL_APPLIED intents older than maxAge.
	GetStuckIntents(ctx context.Context, maxAge time.Duration) ([]models.Intent, error)
}
