// Package memory is an in-process Storage used for local runs and workflow tests.
// It enforces the same conditions as the DynamoDB store.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
)

type memberKey struct {
	vaultID string
	name    string
}

// Store keeps every table in maps guarded by one mutex, so each method is atomic.
type Store struct {
	mu       sync.Mutex
	vaults   map[string]models.GroupVault
	members  map[memberKey]models.GroupVaultMember
	intents  map[string]models.Intent
	activity map[string][]models.ActivityRecord
	banks    map[string][]models.LinkedBank
	settings map[string]models.ProfileSettings

	Now func() time.Time
}

var _ storage.Storage = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{
		vaults:   make(map[string]models.GroupVault),
		members:  make(map[memberKey]models.GroupVaultMember),
		intents:  make(map[string]models.Intent),
		activity: make(map[string][]models.ActivityRecord),
		banks:    make(map[string][]models.LinkedBank),
		settings: make(map[string]models.ProfileSettings),
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

func copyVault(v models.GroupVault) *models.GroupVault {
	if v.Leader != nil {
		l := *v.Leader
		v.Leader = &l
	}
	return &v
}

// GetGroupVault retrieves a group vault by its ID.
func (s *Store) GetGroupVault(_ context.Context, id string) (*models.GroupVault, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vaults[id]
	if !ok {
		return nil, fmt.Errorf("group vault %s: %w", id, storage.ErrNotFound)
	}
	return copyVault(v), nil
}

// ListGroupVaults retrieves a user's group vaults, newest first.
func (s *Store) ListGroupVaults(_ context.Context, userID string) ([]models.GroupVault, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.GroupVault
	for _, v := range s.vaults {
		if v.UserId == userID {
			out = append(out, *copyVault(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListAllGroupVaults retrieves every group vault.
func (s *Store) ListAllGroupVaults(_ context.Context) ([]models.GroupVault, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.GroupVault, 0, len(s.vaults))
	for _, v := range s.vaults {
		out = append(out, *copyVault(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

// GetMember retrieves a member by display name.
func (s *Store) GetMember(_ context.Context, groupVaultID, memberName string) (*models.GroupVaultMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[memberKey{groupVaultID, memberName}]
	if !ok {
		return nil, fmt.Errorf("member %q: %w", memberName, storage.ErrNotFound)
	}
	return &m, nil
}

// ListMembers retrieves a vault's members ordered by name.
func (s *Store) ListMembers(_ context.Context, groupVaultID string) ([]models.GroupVaultMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listMembers(groupVaultID), nil
}

func (s *Store) listMembers(groupVaultID string) []models.GroupVaultMember {
	var out []models.GroupVaultMember
	for k, m := range s.members {
		if k.vaultID == groupVaultID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberName < out[j].MemberName })
	return out
}

// CreateGroupVault writes the vault, its members and the creation activity.
func (s *Store) CreateGroupVault(_ context.Context, vault *models.GroupVault, members []models.GroupVaultMember, activity *models.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vaults[vault.Id]; ok {
		return fmt.Errorf("group vault %s already exists: %w", vault.Id, storage.ErrConditionFailed)
	}
	for _, m := range members {
		if _, ok := s.members[memberKey{vault.Id, m.MemberName}]; ok {
			return fmt.Errorf("member %q already exists: %w", m.MemberName, storage.ErrConditionFailed)
		}
	}
	if err := s.checkActivity(activity); err != nil {
		return err
	}

	s.vaults[vault.Id] = *copyVault(*vault)
	for _, m := range members {
		s.members[memberKey{vault.Id, m.MemberName}] = m
	}
	s.appendActivity(activity)
	return nil
}

// ApplyContribution credits the member and the vault and marks the intent APPLIED.
func (s *Store) ApplyContribution(_ context.Context, intent *models.Intent, activity *models.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vault, ok := s.vaults[intent.GroupVaultId]
	if !ok {
		return fmt.Errorf("group vault %s: %w", intent.GroupVaultId, storage.ErrNotFound)
	}
	if err := s.checkActivity(activity); err != nil {
		return err
	}
	if err := s.checkIntent(intent.Id, models.PENDING); err != nil {
		return err
	}

	now := s.now()
	key := memberKey{intent.GroupVaultId, intent.MemberName}
	member, ok := s.members[key]
	if !ok {
		member = models.GroupVaultMember{GroupVaultId: intent.GroupVaultId, MemberName: intent.MemberName, CreatedAt: now}
	}
	member.ContributionBalance += intent.Amount
	s.members[key] = member

	vault.TotalBalance += intent.Amount
	vault.Version++
	s.vaults[vault.Id] = vault

	s.appendActivity(activity)
	s.setIntentStatus(intent.Id, models.APPLIED, now)
	return nil
}

// ApplyWithdrawal debits the member and the vault and marks the intent LOCAL_APPLIED.
func (s *Store) ApplyWithdrawal(_ context.Context, intent *models.Intent, activity *models.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memberKey{intent.GroupVaultId, intent.MemberName}
	member, ok := s.members[key]
	if !ok || member.ContributionBalance < intent.Amount {
		return fmt.Errorf("member %q: %w", intent.MemberName, storage.ErrInsufficientContribution)
	}
	vault, ok := s.vaults[intent.GroupVaultId]
	if !ok || vault.TotalBalance < intent.Amount {
		return fmt.Errorf("group vault %s total too low: %w", intent.GroupVaultId, storage.ErrConditionFailed)
	}
	if err := s.checkActivity(activity); err != nil {
		return err
	}
	if err := s.checkIntent(intent.Id, models.PENDING); err != nil {
		return err
	}

	member.ContributionBalance -= intent.Amount
	s.members[key] = member
	vault.TotalBalance -= intent.Amount
	vault.Version++
	s.vaults[vault.Id] = vault

	s.appendActivity(activity)
	s.setIntentStatus(intent.Id, models.LOCAL_APPLIED, s.now())
	return nil
}

// AssignLeader replaces the leadership if the vault is unchanged since the snapshot.
func (s *Store) AssignLeader(_ context.Context, a storage.LeaderAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vault, ok := s.vaults[a.Vault.Id]
	if !ok || vault.Version != a.Vault.Version {
		return fmt.Errorf("failed to assign leader: %w", storage.ErrConditionFailed)
	}
	newKey := memberKey{vault.Id, a.Leader.Name}
	newLeader, ok := s.members[newKey]
	if !ok {
		return fmt.Errorf("member %q: %w", a.Leader.Name, storage.ErrNotFound)
	}
	previous := a.Vault.LeaderName()
	if previous != "" && previous != a.Leader.Name {
		if _, ok := s.members[memberKey{vault.Id, previous}]; !ok {
			return fmt.Errorf("failed to assign leader: %w", storage.ErrConditionFailed)
		}
	}
	if err := s.checkActivity(a.Activity); err != nil {
		return err
	}

	leader := a.Leader
	vault.Leader = &leader
	vault.Version++
	s.vaults[vault.Id] = vault

	newLeader.IsLeader = true
	s.members[newKey] = newLeader
	if previous != "" && previous != a.Leader.Name {
		prevKey := memberKey{vault.Id, previous}
		prev := s.members[prevKey]
		prev.IsLeader = false
		s.members[prevKey] = prev
	}

	s.appendActivity(a.Activity)
	return nil
}

// ApplySettlement zeroes the vault and its members if nothing changed since the snapshot.
func (s *Store) ApplySettlement(_ context.Context, st storage.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vault, ok := s.vaults[st.Vault.Id]
	if !ok || vault.TotalBalance != st.Vault.TotalBalance || vault.Version != st.Vault.Version {
		return fmt.Errorf("group vault %s changed during settlement: %w", st.Vault.Id, storage.ErrConditionFailed)
	}
	for _, m := range st.Members {
		current, ok := s.members[memberKey{vault.Id, m.MemberName}]
		if !ok || current.ContributionBalance != m.ContributionBalance {
			return fmt.Errorf("group vault %s changed during settlement: %w", st.Vault.Id, storage.ErrConditionFailed)
		}
	}
	if err := s.checkActivity(st.Activity); err != nil {
		return err
	}
	if err := s.checkIntent(st.Intent.Id, models.PENDING); err != nil {
		return err
	}

	for _, m := range st.Members {
		key := memberKey{vault.Id, m.MemberName}
		current := s.members[key]
		current.ContributionBalance = 0
		s.members[key] = current
	}
	settledAt := st.SettledAt
	vault.TotalBalance = 0
	vault.SettledAt = &settledAt
	vault.Version++
	s.vaults[vault.Id] = vault

	s.appendActivity(st.Activity)
	s.setIntentStatus(st.Intent.Id, models.LOCAL_APPLIED, st.SettledAt)
	return nil
}

// RepairTotal overwrites the vault total if the version still matches.
func (s *Store) RepairTotal(_ context.Context, groupVaultID string, observedVersion int64, total models.Cents) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vault, ok := s.vaults[groupVaultID]
	if !ok || vault.Version != observedVersion {
		return fmt.Errorf("group vault %s changed before repair: %w", groupVaultID, storage.ErrConditionFailed)
	}
	vault.TotalBalance = total
	vault.Version++
	s.vaults[groupVaultID] = vault
	return nil
}

// CreateIntent writes a new intent.
func (s *Store) CreateIntent(_ context.Context, intent *models.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.intents[intent.Id]; ok {
		return fmt.Errorf("intent %s already exists: %w", intent.Id, storage.ErrConditionFailed)
	}
	s.intents[intent.Id] = *intent
	return nil
}

// GetIntent retrieves an intent by its ID.
func (s *Store) GetIntent(_ context.Context, id string) (*models.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.intents[id]
	if !ok {
		return nil, fmt.Errorf("intent %s: %w", id, storage.ErrNotFound)
	}
	return &intent, nil
}

// MarkIntentFailed moves a PENDING intent to FAILED.
func (s *Store) MarkIntentFailed(_ context.Context, id string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIntent(id, models.PENDING); err != nil {
		return err
	}
	intent := s.intents[id]
	intent.Status = models.FAILED
	intent.Error = reason
	intent.UpdatedAt = s.now()
	s.intents[id] = intent
	return nil
}

// MarkIntentApplied moves a LOCAL_APPLIED intent to APPLIED.
func (s *Store) MarkIntentApplied(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIntent(id, models.LOCAL_APPLIED); err != nil {
		return err
	}
	s.setIntentStatus(id, models.APPLIED, s.now())
	return nil
}

// GetStuckIntents retrieves PENDING and LOCAL_APPLIED intents older than maxAge.
func (s *Store) GetStuckIntents(_ context.Context, maxAge time.Duration) ([]models.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	var out []models.Intent
	for _, intent := range s.intents {
		if intent.Terminal() || !intent.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, intent)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// AppendActivity writes a standalone activity record.
func (s *Store) AppendActivity(_ context.Context, activity *models.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActivity(activity); err != nil {
		return err
	}
	s.appendActivity(activity)
	return nil
}

// ListActivity retrieves a user's most recent activity, newest first.
func (s *Store) ListActivity(_ context.Context, userID string, limit int32) ([]models.ActivityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.activity[userID]
	out := make([]models.ActivityRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		if limit > 0 && int32(len(out)) == limit {
			break
		}
		out = append(out, records[i])
	}
	return out, nil
}

// AddLinkedBank links a bank, clearing any previous primary when the new bank is primary.
func (s *Store) AddLinkedBank(_ context.Context, bank *models.LinkedBank) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	banks := s.banks[bank.UserId]
	for i := range banks {
		if banks[i].Id == bank.Id {
			return fmt.Errorf("linked bank %s already exists: %w", bank.Id, storage.ErrConditionFailed)
		}
	}
	if bank.IsPrimary {
		for i := range banks {
			banks[i].IsPrimary = false
		}
	}
	s.banks[bank.UserId] = append(banks, *bank)
	return nil
}

// ListLinkedBanks retrieves a user's linked banks in link order.
func (s *Store) ListLinkedBanks(_ context.Context, userID string) ([]models.LinkedBank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.LinkedBank(nil), s.banks[userID]...), nil
}

// UpsertSettings merges the patch into the stored settings.
func (s *Store) UpsertSettings(_ context.Context, patch *models.ProfileSettings) (*models.ProfileSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(patch.Fields()) == 0 {
		return nil, errors.New("no settings to update")
	}
	current, ok := s.settings[patch.UserId]
	if !ok {
		current = models.ProfileSettings{UserId: patch.UserId}
	}
	current.Merge(patch)
	now := s.now()
	current.UpdatedAt = &now
	s.settings[patch.UserId] = current

	out := current
	return &out, nil
}

// GetSettings retrieves a user's settings, or an empty record.
func (s *Store) GetSettings(_ context.Context, userID string) (*models.ProfileSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.settings[userID]
	if !ok {
		return &models.ProfileSettings{UserId: userID}, nil
	}
	return &current, nil
}

func (s *Store) checkIntent(id string, want models.IntentStatus) error {
	intent, ok := s.intents[id]
	if !ok || intent.Status != want {
		return fmt.Errorf("intent %s: %w", id, storage.ErrIntentNotPending)
	}
	return nil
}

func (s *Store) setIntentStatus(id string, status models.IntentStatus, now time.Time) {
	intent := s.intents[id]
	intent.Status = status
	intent.UpdatedAt = now
	s.intents[id] = intent
}

func (s *Store) checkActivity(activity *models.ActivityRecord) error {
	for _, r := range s.activity[activity.UserId] {
		if r.SortKey == activity.SortKey {
			return fmt.Errorf("activity %s already exists: %w", activity.SortKey, storage.ErrConditionFailed)
		}
	}
	return nil
}

// appendActivity keeps each user's records sorted by sort key.
func (s *Store) appendActivity(activity *models.ActivityRecord) {
	records := append(s.activity[activity.UserId], *activity)
	sort.SliceStable(records, func(i, j int) bool { return records[i].SortKey < records[j].SortKey })
	s.activity[activity.UserId] = records
}
