package onboarding

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
)

type MockService struct {
	mock.Mock
}

var _ ServiceInterface = (*MockService)(nil)

func (m *MockService) CreateKYCLink(ctx context.Context, fullName, email string, customerType data.CustomerType) (*KYCLinkInfo, error) {
	args := m.Called(ctx, fullName, email, customerType)
	if info := args.Get(0); info != nil {
		return info.(*KYCLinkInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) GetKYCLink(ctx context.Context, kycLinkID string) (*KYCLinkInfo, error) {
	args := m.Called(ctx, kycLinkID)
	if info := args.Get(0); info != nil {
		return info.(*KYCLinkInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) ResolveKYC(ctx context.Context, sessionToken string, outcome KYCOutcome) error {
	args := m.Called(ctx, sessionToken, outcome)
	return args.Error(0)
}

func (m *MockService) AcceptTermsOfService(ctx context.Context, sessionToken string) (string, error) {
	args := m.Called(ctx, sessionToken)
	return args.String(0), args.Error(1)
}

func (m *MockService) ProvisionCustomer(ctx context.Context, req ProvisionRequest) (*data.Customer, error) {
	args := m.Called(ctx, req)
	if customer := args.Get(0); customer != nil {
		return customer.(*data.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}
