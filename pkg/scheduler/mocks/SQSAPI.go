package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/mock"
)

// SQSAPI is a mock type for the scheduler.SQSAPI type
type SQSAPI struct {
	mock.Mock
}

// SendMessage provides a mock function with given fields: ctx, params, optFns
func (_m *SQSAPI) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	ret := _m.Called(ctx, params)

	var r0 *sqs.SendMessageOutput
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*sqs.SendMessageOutput)
	}
	return r0, ret.Error(1)
}
