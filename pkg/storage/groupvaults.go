package storage

import (
	"context"
	"time"

	"github.com/chris/vault-wallet/pkg/models"
)

// GroupVaultReader defines the interface for reading group vaults and their members.
type GroupVaultReader interface {
	// GetGroupVault retrieves a group vault by its ID.
	GetGroupVault(ctx context.Context, id string) (*models.GroupVault, error)

	// ListGroupVaults retrieves the group vaults owned by a user, newest first.
	ListGroupVaults(ctx context.Context, userID string) ([]models.GroupVault, error)

	// ListAllGroupVaults retrieves every group vault. Used by the reconciler's audit.
	ListAllGroupVaults(ctx context.Context) ([]models.GroupVault, error)

	// GetMember retrieves one member of a group vault by display name.
	GetMember(ctx context.Context, groupVaultID, memberName string) (*models.GroupVaultMember, error)

	// ListMembers retrieves all members of a group vault.
	ListMembers(ctx context.Context, groupVaultID string) ([]models.GroupVaultMember, error)
}

// LeaderAssignment is the atomic leadership change of a group vault.
type LeaderAssignment struct {
	// Vault is the snapshot the assignment was computed from; its version guards the write.
	Vault    *models.GroupVault
	Leader   models.Leadership
	Activity *models.ActivityRecord
}

// Settlement is the store side of a group vault settlement.
type Settlement struct {
	// Vault and Members are the snapshot the settlement was computed from.
	Vault     *models.GroupVault
	Members   []models.GroupVaultMember
	Intent    *models.Intent
	Activity  *models.ActivityRecord
	SettledAt time.Time
}

// GroupVaultManager defines the atomic store steps of the group vault workflows.
// Every method is a single all-or-nothing write.
type GroupVaultManager interface {
	// CreateGroupVault writes the vault, its initial members and the creation activity.
	CreateGroupVault(ctx context.Context, vault *models.GroupVault, members []models.GroupVaultMember, activity *models.ActivityRecord) error

	// ApplyContribution credits the member (creating it if absent) and the vault total,
	// appends the activity and moves the intent from PENDING to APPLIED.
	ApplyContribution(ctx context.Context, intent *models.Intent, activity *models.ActivityRecord) error

	// ApplyWithdrawal debits the member and the vault total, appends the activity and
	// moves the intent from PENDING to LOCAL_APPLIED.
	ApplyWithdrawal(ctx context.Context, intent *models.Intent, activity *models.ActivityRecord) error

	// AssignLeader replaces the vault's leadership and the members' leader flags.
	AssignLeader(ctx context.Context, assignment LeaderAssignment) error

	// ApplySettlement zeroes the vault and all members against the snapshot, marks the
	// vault settled, appends the activity and moves the intent to LOCAL_APPLIED.
	ApplySettlement(ctx context.Context, settlement Settlement) error

	// RepairTotal overwrites a vault's total, guarded by the observed version.
	RepairTotal(ctx context.Context, groupVaultID string, observedVersion int64, total models.Cents) error
}

// GroupVaultStore combines the reader and manager interfaces.
type GroupVaultStore interface {
	GroupVaultReader
	GroupVaultManager
}
