package storage

import (
	"context"

	"github.com/chris/vault-wallet/pkg/models"
)

// ActivityStore defines the interface for the append-only activity log.
type ActivityStore interface {
	// AppendActivity writes a standalone activity record.
	AppendActivity(ctx context.Context, activity *models.ActivityRecord) error

	// ListActivity retrieves a user's most recent activity records, newest first.
	ListActivity(ctx context.Context, userID string, limit int32) ([]models.ActivityRecord, error)
}
