package groupvault

import (
	"context"
	"strings"

	"github.com/chris/vault-wallet/pkg/apperrors"
	"github.com/chris/vault-wallet/pkg/models"
)

// Detail is a vault with its members.
type Detail struct {
	Vault   *models.GroupVault
	Members []models.GroupVaultMember
}

// Get returns one of the caller's vaults with its members.
func (s *Service) Get(ctx context.Context, userID, groupVaultID string) (*Detail, error) {
	vault, err := s.ownedVault(ctx, userID, strings.TrimSpace(groupVaultID))
	if err != nil {
		return nil, err
	}
	members, err := s.Store.ListMembers(ctx, vault.Id)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return &Detail{Vault: vault, Members: orderMembers(members)}, nil
}

// List returns the caller's vaults, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.GroupVault, error) {
	vaults, err := s.Store.ListGroupVaults(ctx, userID)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return vaults, nil
}
