package chainfeed

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Subscribe(ctx context.Context, contractAddress string) error {
	return m.Called(ctx, contractAddress).Error(0)
}

func (m *MockClient) Events() <-chan TransferEvent {
	return m.Called().Get(0).(<-chan TransferEvent)
}

func (m *MockClient) Disconnects() <-chan error {
	return m.Called().Get(0).(<-chan error)
}

func (m *MockClient) ConfirmTransaction(ctx context.Context, txRef string) (*TransactionConfirmation, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TransactionConfirmation), args.Error(1)
}

func (m *MockClient) Close() {
	m.Called()
}

// Ensuring that MockClient is implementing ClientInterface interface
var _ ClientInterface = (*MockClient)(nil)
