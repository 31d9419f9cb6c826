package httphandler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/onboarding"
)

type handlerFixture struct {
	models            *data.Models
	onboardingService *onboarding.Service
}

func setupHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	models, err := data.NewModels(data.NewStore())
	require.NoError(t, err)

	onboardingService, err := onboarding.NewService(onboarding.ServiceOptions{
		Models:  models,
		BaseURL: "http://localhost:8000",
	})
	require.NoError(t, err)

	return &handlerFixture{
		models:            models,
		onboardingService: onboardingService,
	}
}

// onboardCustomer walks a submission through KYC approval and ToS acceptance
// and returns the customer id and a fresh signed agreement id.
func (f *handlerFixture) onboardCustomer(t *testing.T) (customerID, signedAgreementID string) {
	t.Helper()
	ctx := context.Background()

	kycLink, err := f.onboardingService.CreateKYCLink(ctx, "Ada Lovelace", "ada@example.com", data.CustomerTypeIndividual)
	require.NoError(t, err)

	customer, err := f.models.Customers.Get(ctx, kycLink.CustomerID)
	require.NoError(t, err)

	err = f.onboardingService.ResolveKYC(ctx, customer.KYCSessionToken, onboarding.KYCOutcomeValid)
	require.NoError(t, err)

	signedAgreementID, err = f.onboardingService.AcceptTermsOfService(ctx, customer.TOSSessionToken)
	require.NoError(t, err)

	return kycLink.CustomerID, signedAgreementID
}

// linkUSAccount links a default US bank account to the customer.
func (f *handlerFixture) linkUSAccount(t *testing.T, customerID string) *data.ExternalAccount {
	t.Helper()
	ctx := context.Background()

	account := data.NewUSExternalAccount("ea-"+customerID, customerID, "Ada Lovelace", "Chase", "123456789", "021000021")
	require.NoError(t, f.models.ExternalAccounts.Insert(ctx, account))
	return &account
}
