package validators

import (
	"strings"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
)

// LiquidationAddressRequest is the payload for registering a new liquidation
// address under a customer.
type LiquidationAddressRequest struct {
	Chain                  string `json:"chain"`
	Currency               string `json:"currency"`
	ExternalAccountID      string `json:"external_account_id"`
	DestinationPaymentRail string `json:"destination_payment_rail"`
	DestinationCurrency    string `json:"destination_currency"`
}

type LiquidationAddressValidator struct {
	*Validator
}

func NewLiquidationAddressValidator() *LiquidationAddressValidator {
	return &LiquidationAddressValidator{Validator: NewValidator()}
}

// ValidateRequired checks the fields needed before the external account
// reference can be resolved.
func (v *LiquidationAddressValidator) ValidateRequired(req *LiquidationAddressRequest) *LiquidationAddressRequest {
	if req == nil {
		v.AddError("body", "request body is empty")
		return nil
	}

	req.Chain = strings.ToLower(strings.TrimSpace(req.Chain))
	req.Currency = strings.ToLower(strings.TrimSpace(req.Currency))
	req.DestinationPaymentRail = strings.ToLower(strings.TrimSpace(req.DestinationPaymentRail))
	req.DestinationCurrency = strings.ToLower(strings.TrimSpace(req.DestinationCurrency))

	v.Check(req.Chain != "" && req.Currency != "", "chain", "chain and currency are required")
	if v.HasErrors() {
		return nil
	}
	return req
}

// ValidateDestination checks the destination currency and the sepa<->eur
// coupling. It runs after the external account reference resolved, matching
// the documented check order.
func (v *LiquidationAddressValidator) ValidateDestination(req *LiquidationAddressRequest) {
	v.Check(req.DestinationCurrency == string(data.CurrencyUSD) || req.DestinationCurrency == string(data.CurrencyEUR),
		"destination_currency", "destination_currency must be usd or eur")
	if v.HasErrors() {
		return
	}

	isSepa := req.DestinationPaymentRail == string(data.PaymentRailSEPA)
	isEur := req.DestinationCurrency == string(data.CurrencyEUR)
	onArbitrumUSDC := req.Currency == data.SourceTokenUSDC && req.Chain == data.ChainArbitrum

	if isSepa && (!isEur || !onArbitrumUSDC) {
		v.AddError("destination_payment_rail", "SEPA is only supported for USDC on Arbitrum")
		return
	}
	if isEur && (!isSepa || !onArbitrumUSDC) {
		v.AddError("destination_currency", "eur is only supported for USDC on Arbitrum")
	}
}
