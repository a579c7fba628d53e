package storage

import (
	"context"

	"github.com/chris/vault-wallet/pkg/models"
)

// ProfileStore defines the interface for linked banks and profile settings.
type ProfileStore interface {
	// AddLinkedBank links a bank. A primary bank clears the previous primary in the same write.
	AddLinkedBank(ctx context.Context, bank *models.LinkedBank) error

	// ListLinkedBanks retrieves a user's linked banks.
	ListLinkedBanks(ctx context.Context, userID string) ([]models.LinkedBank, error)

	// UpsertSettings applies the options set in patch and returns the merged settings.
	UpsertSettings(ctx context.Context, patch *models.ProfileSettings) (*models.ProfileSettings, error)

	// GetSettings retrieves a user's settings. Missing settings yield an empty record.
	GetSettings(ctx context.Context, userID string) (*models.ProfileSettings, error)
}
