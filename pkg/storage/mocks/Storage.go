package mocks

import (
	"context"
	"time"

	"github.com/chris/vault-wallet/pkg/models"
	"github.com/chris/vault-wallet/pkg/storage"
	"github.com/stretchr/testify/mock"
)

// Storage is a mock type for the storage.Storage type
type Storage struct {
	mock.Mock
}

var _ storage.Storage = (*Storage)(nil)

// GetGroupVault provides a mock function with given fields: ctx, id
func (_m *Storage) GetGroupVault(ctx context.Context, id string) (*models.GroupVault, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.GroupVault
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.GroupVault)
	}
	return r0, ret.Error(1)
}

// ListGroupVaults provides a mock function with given fields: ctx, userID
func (_m *Storage) ListGroupVaults(ctx context.Context, userID string) ([]models.GroupVault, error) {
	ret := _m.Called(ctx, userID)

	var r0 []models.GroupVault
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.GroupVault)
	}
	return r0, ret.Error(1)
}

// ListAllGroupVaults provides a mock function with given fields: ctx
func (_m *Storage) ListAllGroupVaults(ctx context.Context) ([]models.GroupVault, error) {
	ret := _m.Called(ctx)

	var r0 []models.GroupVault
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.GroupVault)
	}
	return r0, ret.Error(1)
}

// GetMember provides a mock function with given fields: ctx, groupVaultID, memberName
func (_m *Storage) GetMember(ctx context.Context, groupVaultID string, memberName string) (*models.GroupVaultMember, error) {
	ret := _m.Called(ctx, groupVaultID, memberName)

	var r0 *models.GroupVaultMember
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.GroupVaultMember)
	}
	return r0, ret.Error(1)
}

// ListMembers provides a mock function with given fields: ctx, groupVaultID
func (_m *Storage) ListMembers(ctx context.Context, groupVaultID string) ([]models.GroupVaultMember, error) {
	ret := _m.Called(ctx, groupVaultID)

	var r0 []models.GroupVaultMember
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.GroupVaultMember)
	}
	return r0, ret.Error(1)
}

// CreateGroupVault provides a mock function with given fields: ctx, vault, members, activity
func (_m *Storage) CreateGroupVault(ctx context.Context, vault *models.GroupVault, members []models.GroupVaultMember, activity *models.ActivityRecord) error {
	ret := _m.Called(ctx, vault, members, activity)
	return ret.Error(0)
}

// ApplyContribution provides a mock function with given fields: ctx, intent, activity
func (_m *Storage) ApplyContribution(ctx context.Context, intent *models.Intent, activity *models.ActivityRecord) error {
	ret := _m.Called(ctx, intent, activity)
	return ret.Error(0)
}

// ApplyWithdrawal provides a mock function with given fields: ctx, intent, activity
func (_m *Storage) ApplyWithdrawal(ctx context.Context, intent *models.Intent, activity *models.ActivityRecord) error {
	ret := _m.Called(ctx, intent, activity)
	return ret.Error(0)
}

// AssignLeader provides a mock function with given fields: ctx, assignment
func (_m *Storage) AssignLeader(ctx context.Context, assignment storage.LeaderAssignment) error {
	ret := _m.Called(ctx, assignment)
	return ret.Error(0)
}

// ApplySettlement provides a mock function with given fields: ctx, settlement
func (_m *Storage) ApplySettlement(ctx context.Context, settlement storage.Settlement) error {
	ret := _m.Called(ctx, settlement)
	return ret.Error(0)
}

// RepairTotal provides a mock function with given fields: ctx, groupVaultID, observedVersion, total
func (_m *Storage) RepairTotal(ctx context.Context, groupVaultID string, observedVersion int64, total models.Cents) error {
	ret := _m.Called(ctx, groupVaultID, observedVersion, total)
	return ret.Error(0)
}

// CreateIntent provides a mock function with given fields: ctx, intent
func (_m *Storage) CreateIntent(ctx context.Context, intent *models.Intent) error {
	ret := _m.Called(ctx, intent)
	return ret.Error(0)
}

// GetIntent provides a mock function with given fields: ctx, id
func (_m *Storage) GetIntent(ctx context.Context, id string) (*models.Intent, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Intent
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Intent)
	}
	return r0, ret.Error(1)
}

// MarkIntentFailed provides a mock function with given fields: ctx, id, reason
func (_m *Storage) MarkIntentFailed(ctx context.Context, id string, reason string) error {
	ret := _m.Called(ctx, id, reason)
	return ret.Error(0)
}

// MarkIntentApplied provides a mock function with given fields: ctx, id
func (_m *Storage) MarkIntentApplied(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

// GetStuckIntents provides a mock function with given fields: ctx, maxAge
func (_m *Storage) GetStuckIntents(ctx context.Context, maxAge time.Duration) ([]models.Intent, error) {
	ret := _m.Called(ctx, maxAge)

	var r0 []models.Intent
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Intent)
	}
	return r0, ret.Error(1)
}

// AppendActivity provides a mock function with given fields: ctx, activity
func (_m *Storage) AppendActivity(ctx context.Context, activity *models.ActivityRecord) error {
	ret := _m.Called(ctx, activity)
	return ret.Error(0)
}

// ListActivity provides a mock function with given fields: ctx, userID, limit
func (_m *Storage) ListActivity(ctx context.Context, userID string, limit int32) ([]models.ActivityRecord, error) {
	ret := _m.Called(ctx, userID, limit)

	var r0 []models.ActivityRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.ActivityRecord)
	}
	return r0, ret.Error(1)
}

// AddLinkedBank provides a mock function with given fields: ctx, bank
func (_m *Storage) AddLinkedBank(ctx context.Context, bank *models.LinkedBank) error {
	ret := _m.Called(ctx, bank)
	return ret.Error(0)
}

// ListLinkedBanks provides a mock function with given fields: ctx, userID
func (_m *Storage) ListLinkedBanks(ctx context.Context, userID string) ([]models.LinkedBank, error) {
	ret := _m.Called(ctx, userID)

	var r0 []models.LinkedBank
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.LinkedBank)
	}
	return r0, ret.Error(1)
}

// UpsertSettings provides a mock function with given fields: ctx, patch
func (_m *Storage) UpsertSettings(ctx context.Context, patch *models.ProfileSettings) (*models.ProfileSettings, error) {
	ret := _m.Called(ctx, patch)

	var r0 *models.ProfileSettings
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ProfileSettings)
	}
	return r0, ret.Error(1)
}

// GetSettings provides a mock function with given fields: ctx, userID
func (_m *Storage) GetSettings(ctx context.Context, userID string) (*models.ProfileSettings, error) {
	ret := _m.Called(ctx, userID)

	var r0 *models.ProfileSettings
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ProfileSettings)
	}
	return r0, ret.Error(1)
}

// NewStorage creates a new instance of Storage. It also registers a testing
// interface on the mock and a cleanup function to assert the mocks expectations.
func NewStorage(t interface {
	mock.TestingT
	Cleanup(func())
}) *Storage {
	m := &Storage{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
