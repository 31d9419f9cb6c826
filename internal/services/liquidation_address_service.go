package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
)

var (
	// ErrUnsupportedRail is returned when the destination rail fields are
	// inconsistent: sepa requires eur over usdc on arbitrum, and eur requires
	// the sepa rail.
	ErrUnsupportedRail = errors.New("destination payment rail is not supported for the requested currencies")
	// ErrAddressSpaceExhausted is returned when address generation keeps
	// colliding with existing addresses.
	ErrAddressSpaceExhausted = errors.New("could not generate a unique liquidation address")
)

const addressGenerationAttempts = 5

type LiquidationAddressServiceInterface interface {
	CreateLiquidationAddress(ctx context.Context, customerID string, req CreateLiquidationAddressRequest) (*data.LiquidationAddress, error)
}

// CreateLiquidationAddressRequest carries the already-validated payload for
// registering a new liquidation address.
type CreateLiquidationAddressRequest struct {
	Chain                  string
	Currency               string
	ExternalAccountID      string
	DestinationPaymentRail data.PaymentRail
	DestinationCurrency    data.Currency
}

var _ LiquidationAddressServiceInterface = (*LiquidationAddressService)(nil)

// LiquidationAddressService generates deposit addresses and registers them in
// the ledger, so the drain reconciler picks them up on its next tick.
type LiquidationAddressService struct {
	models *data.Models
}

func NewLiquidationAddressService(models *data.Models) (*LiquidationAddressService, error) {
	if models == nil {
		return nil, fmt.Errorf("models cannot be nil")
	}
	return &LiquidationAddressService{models: models}, nil
}

// CreateLiquidationAddress enforces the rail invariant, verifies the external
// account reference, and retries address generation until the value is unique
// system-wide.
func (s *LiquidationAddressService) CreateLiquidationAddress(ctx context.Context, customerID string, req CreateLiquidationAddressRequest) (*data.LiquidationAddress, error) {
	if err := validateRail(req); err != nil {
		return nil, err
	}

	if _, err := s.models.ExternalAccounts.Get(ctx, customerID, req.ExternalAccountID); err != nil {
		return nil, fmt.Errorf("resolving external account %s: %w", req.ExternalAccountID, err)
	}

	now := time.Now().UTC()
	la := data.LiquidationAddress{
		ID:                     uuid.NewString(),
		Chain:                  req.Chain,
		Currency:               req.Currency,
		ExternalAccountID:      req.ExternalAccountID,
		DestinationPaymentRail: req.DestinationPaymentRail,
		DestinationCurrency:    req.DestinationCurrency,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if req.DestinationPaymentRail == data.PaymentRailSEPA {
		la.DestinationSepaReference = "SEPA reference"
	}

	for attempt := 0; attempt < addressGenerationAttempts; attempt++ {
		address, err := generateDepositAddress()
		if err != nil {
			return nil, fmt.Errorf("generating deposit address: %w", err)
		}
		la.Address = address

		err = s.models.LiquidationAddresses.Insert(ctx, customerID, la)
		if errors.Is(err, data.ErrRecordAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("inserting liquidation address: %w", err)
		}

		return s.models.LiquidationAddresses.Get(ctx, customerID, la.ID)
	}

	return nil, ErrAddressSpaceExhausted
}

// validateRail checks the sepa<->eur coupling in both directions.
func validateRail(req CreateLiquidationAddressRequest) error {
	isSepa := req.DestinationPaymentRail == data.PaymentRailSEPA
	isEur := req.DestinationCurrency == data.CurrencyEUR
	if !isSepa && !isEur {
		return nil
	}

	if !isSepa || !isEur {
		return ErrUnsupportedRail
	}
	if req.Currency != data.SourceTokenUSDC || req.Chain != data.ChainArbitrum {
		return ErrUnsupportedRail
	}
	return nil
}

func generateDepositAddress() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(raw), nil
}
