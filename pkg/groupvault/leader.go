package groupvault

import (
	"context"
	"errors"
	"strings"

	"github.com/chris/vault-wallet/pkg/apperrors"
	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
)

// LeaderInput names the member who receives the payout at release.
type LeaderInput struct {
	UserID             string
	GroupVaultID       string
	LeaderName         string
	AllMembersApproved bool
}

// AssignLeader replaces the vault's leader. Reassigning the current leader only
// updates the approval flag.
func (s *Service) AssignLeader(ctx context.Context, in LeaderInput) (err error) {
	defer func() { s.record("set_leader", err) }()

	groupVaultID := strings.TrimSpace(in.GroupVaultID)
	leaderName := strings.TrimSpace(in.LeaderName)
	if groupVaultID == "" || leaderName == "" {
		return apperrors.Invalid("Group vault and leader are required")
	}

	vault, err := s.ownedVault(ctx, in.UserID, groupVaultID)
	if err != nil {
		return err
	}
	if _, err := s.Store.GetMember(ctx, groupVaultID, leaderName); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.Wrap(apperrors.ErrNotFound, "Member not found", err)
		}
		return apperrors.Persistence(err)
	}

	note := "Leader set to " + leaderName
	if in.AllMembersApproved {
		note += " (approved by all members)"
	}
	err = s.Store.AssignLeader(ctx, storage.LeaderAssignment{
		Vault:    vault,
		Leader:   models.Leadership{Name: leaderName, Approved: in.AllMembersApproved},
		Activity: s.newActivity(in.UserID, models.ActivityGroupVaultLeader, models.DirectionInfo, 0, ptr(leaderName), note),
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.Wrap(apperrors.ErrNotFound, "Member not found", err)
	case errors.Is(err, storage.ErrConditionFailed):
		return apperrors.Wrap(apperrors.ErrConflict, "Group vault changed while assigning the leader, please retry", err)
	default:
		return apperrors.Persistence(err)
	}
}
