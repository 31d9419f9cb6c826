package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
)

type MockDrainReconciliationService struct {
	mock.Mock
}

var _ DrainReconciliationServiceInterface = (*MockDrainReconciliationService)(nil)

func (m *MockDrainReconciliationService) Reconcile(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockLiquidationAddressService struct {
	mock.Mock
}

var _ LiquidationAddressServiceInterface = (*MockLiquidationAddressService)(nil)

func (m *MockLiquidationAddressService) CreateLiquidationAddress(ctx context.Context, customerID string, req CreateLiquidationAddressRequest) (*data.LiquidationAddress, error) {
	args := m.Called(ctx, customerID, req)
	if la := args.Get(0); la != nil {
		return la.(*data.LiquidationAddress), args.Error(1)
	}
	return nil, args.Error(1)
}
