package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LiquidationAddressValidator_ValidateRequired(t *testing.T) {
	t.Run("🔴nil request", func(t *testing.T) {
		v := NewLiquidationAddressValidator()
		assert.Nil(t, v.ValidateRequired(nil))
		assert.Equal(t, "request body is empty", v.FirstError())
	})

	t.Run("🔴missing chain", func(t *testing.T) {
		v := NewLiquidationAddressValidator()
		assert.Nil(t, v.ValidateRequired(&LiquidationAddressRequest{Currency: "usdc"}))
		assert.Equal(t, "chain and currency are required", v.FirstError())
	})

	t.Run("🔴missing currency", func(t *testing.T) {
		v := NewLiquidationAddressValidator()
		assert.Nil(t, v.ValidateRequired(&LiquidationAddressRequest{Chain: "arbitrum"}))
		assert.Equal(t, "chain and currency are required", v.FirstError())
	})

	t.Run("🟢normalizes casing and whitespace", func(t *testing.T) {
		v := NewLiquidationAddressValidator()
		sanitized := v.ValidateRequired(&LiquidationAddressRequest{
			Chain:               " Arbitrum ",
			Currency:            "USDC",
			DestinationCurrency: "USD",
		})

		assert.False(t, v.HasErrors())
		require.NotNil(t, sanitized)
		assert.Equal(t, "arbitrum", sanitized.Chain)
		assert.Equal(t, "usdc", sanitized.Currency)
		assert.Equal(t, "usd", sanitized.DestinationCurrency)
	})
}

func Test_LiquidationAddressValidator_ValidateDestination(t *testing.T) {
	testCases := []struct {
		name            string
		request         LiquidationAddressRequest
		expectedMessage string
	}{
		{
			name:    "🟢usd destination on any chain",
			request: LiquidationAddressRequest{Chain: "base", Currency: "usdc", DestinationCurrency: "usd"},
		},
		{
			name:    "🟢sepa to eur for usdc on arbitrum",
			request: LiquidationAddressRequest{Chain: "arbitrum", Currency: "usdc", DestinationPaymentRail: "sepa", DestinationCurrency: "eur"},
		},
		{
			name:            "🔴unsupported destination currency",
			request:         LiquidationAddressRequest{Chain: "arbitrum", Currency: "usdc", DestinationCurrency: "gbp"},
			expectedMessage: "destination_currency must be usd or eur",
		},
		{
			name:            "🔴sepa to usd",
			request:         LiquidationAddressRequest{Chain: "arbitrum", Currency: "usdc", DestinationPaymentRail: "sepa", DestinationCurrency: "usd"},
			expectedMessage: "SEPA is only supported for USDC on Arbitrum",
		},
		{
			name:            "🔴sepa off arbitrum",
			request:         LiquidationAddressRequest{Chain: "base", Currency: "usdc", DestinationPaymentRail: "sepa", DestinationCurrency: "eur"},
			expectedMessage: "SEPA is only supported for USDC on Arbitrum",
		},
		{
			name:            "🔴eur without the sepa rail",
			request:         LiquidationAddressRequest{Chain: "arbitrum", Currency: "usdc", DestinationCurrency: "eur"},
			expectedMessage: "eur is only supported for USDC on Arbitrum",
		},
		{
			name:            "🔴eur for a token other than usdc",
			request:         LiquidationAddressRequest{Chain: "arbitrum", Currency: "dai", DestinationPaymentRail: "sepa", DestinationCurrency: "eur"},
			expectedMessage: "SEPA is only supported for USDC on Arbitrum",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewLiquidationAddressValidator()
			v.ValidateDestination(&tc.request)

			if tc.expectedMessage != "" {
				assert.Equal(t, tc.expectedMessage, v.FirstError())
				return
			}
			assert.False(t, v.HasErrors())
		})
	}
}
