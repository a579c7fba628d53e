package mocks

import (
	"context"

	"github.com/chris/vault-wallet/pkg/models"
	"github.com/stretchr/testify/mock"
)

// IntentScheduler is a mock type for the scheduler.IntentScheduler type
type IntentScheduler struct {
	mock.Mock
}

// ScheduleIntent provides a mock function with given fields: ctx, intent
func (_m *IntentScheduler) ScheduleIntent(ctx context.Context, intent *models.Intent) error {
	ret := _m.Called(ctx, intent)
	return ret.Error(0)
}

// NewIntentScheduler creates a new instance of IntentScheduler. It also registers a testing
// interface on the mock and a cleanup function to assert the mocks expectations.
func NewIntentScheduler(t interface {
	mock.TestingT
	Cleanup(func())
}) *IntentScheduler {
	m := &IntentScheduler{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
