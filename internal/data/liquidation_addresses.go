package data

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// PaymentRail is the off-chain settlement network for a liquidation address.
// An empty rail means the default (domestic wire) rail.
type PaymentRail string

const PaymentRailSEPA PaymentRail = "sepa"

// Chain and source currency supported by the sandbox.
const (
	ChainArbitrum   = "arbitrum"
	SourceTokenUSDC = "usdc"
)

// DrainState is the lifecycle state of a drain. The emulation records drains
// only once funds are received, so the state is terminal.
type DrainState string

const DrainStateFundsReceived DrainState = "funds_received"

// DrainReceipt points at the settlement receipt for a drain.
type DrainReceipt struct {
	DestinationCurrency Currency `json:"destination_currency"`
	URL                 string   `json:"url"`
}

// Drain is one detected token transfer into a liquidation address. Created
// solely by the drain reconciler; never mutated or deleted afterwards.
type Drain struct {
	ID            string       `json:"id"`
	Amount        string       `json:"amount"`
	State         DrainState   `json:"state"`
	CreatedAt     time.Time    `json:"created_at"`
	DepositTxHash string       `json:"deposit_tx_hash"`
	Receipt       DrainReceipt `json:"receipt"`
}

// LiquidationAddress is a generated blockchain deposit address bound to one
// customer and one external account. The address value is globally unique
// across the whole ledger. The SEPA variant additionally carries the
// destination rail fields; the invariant
//
//	rail == sepa  <=>  destination currency == eur && currency == usdc && chain == arbitrum
//
// is enforced by the registry before construction.
type LiquidationAddress struct {
	ID                       string      `json:"id"`
	Chain                    string      `json:"chain"`
	Currency                 string      `json:"currency"`
	ExternalAccountID        string      `json:"external_account_id"`
	Address                  string      `json:"address"`
	DestinationPaymentRail   PaymentRail `json:"destination_payment_rail,omitempty"`
	DestinationCurrency      Currency    `json:"destination_currency,omitempty"`
	DestinationSepaReference string      `json:"destination_sepa_reference,omitempty"`
	CreatedAt                time.Time   `json:"created_at"`
	UpdatedAt                time.Time   `json:"updated_at"`

	drains []Drain
}

// WatchedAddress is the reconciler's view of one liquidation address: just
// enough to subscribe and attribute transfer events.
type WatchedAddress struct {
	CustomerID           string
	LiquidationAddressID string
	Chain                string
	Currency             string
	Address              string
	DestinationCurrency  Currency
}

type LiquidationAddressModel struct {
	store *Store
}

// Insert stores a new liquidation address. The address value must be unique
// system-wide; a collision returns ErrRecordAlreadyExists so the registry can
// regenerate and retry.
func (m *LiquidationAddressModel) Insert(_ context.Context, customerID string, la LiquidationAddress) error {
	if la.ID == "" || la.Address == "" {
		return fmt.Errorf("validating liquidation address: %w", ErrMissingInput)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	customer, ok := m.store.customers[customerID]
	if !ok {
		return fmt.Errorf("getting customer %s: %w", customerID, ErrRecordNotFound)
	}
	if _, ok = customer.liquidationAddresses[la.ID]; ok {
		return fmt.Errorf("inserting liquidation address %s: %w", la.ID, ErrRecordAlreadyExists)
	}
	if m.store.addressExists(la.Address) {
		return fmt.Errorf("address value %s is already in use: %w", la.Address, ErrRecordAlreadyExists)
	}

	la.drains = []Drain{}
	customer.liquidationAddresses[la.ID] = &la
	m.store.addressIndex[strings.ToLower(la.Address)] = addressRef{
		CustomerID:           customerID,
		LiquidationAddressID: la.ID,
	}
	return nil
}

// Get returns a copy of one liquidation address namespaced under the customer.
func (m *LiquidationAddressModel) Get(_ context.Context, customerID, liquidationAddressID string) (*LiquidationAddress, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	la, err := m.get(customerID, liquidationAddressID)
	if err != nil {
		return nil, err
	}

	cloned := *la
	cloned.drains = nil
	return &cloned, nil
}

// ListAll returns a snapshot of every liquidation address in the ledger,
// across all customers. The copy is taken under the read lock and the lock is
// released before the caller performs any network operation.
func (m *LiquidationAddressModel) ListAll(_ context.Context) []WatchedAddress {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	watched := make([]WatchedAddress, 0, len(m.store.addressIndex))
	for _, customer := range m.store.customers {
		for _, la := range customer.liquidationAddresses {
			watched = append(watched, WatchedAddress{
				CustomerID:           customer.ID,
				LiquidationAddressID: la.ID,
				Chain:                la.Chain,
				Currency:             la.Currency,
				Address:              la.Address,
				DestinationCurrency:  la.DestinationCurrency,
			})
		}
	}
	return watched
}

// RecordDrain appends a drain to the liquidation address, enforcing the
// deduplication contract: at most one drain per (address, deposit tx hash)
// pair. The write is atomic: the drain is either fully stored or not at all.
func (m *LiquidationAddressModel) RecordDrain(_ context.Context, customerID, liquidationAddressID string, drain Drain) error {
	if drain.ID == "" || drain.DepositTxHash == "" {
		return fmt.Errorf("validating drain: %w", ErrMissingInput)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	la, err := m.get(customerID, liquidationAddressID)
	if err != nil {
		return err
	}

	for _, existing := range la.drains {
		if strings.EqualFold(existing.DepositTxHash, drain.DepositTxHash) {
			return fmt.Errorf("recording drain for tx %s on address %s: %w", drain.DepositTxHash, liquidationAddressID, ErrDrainAlreadyRecorded)
		}
	}

	la.drains = append(la.drains, drain)
	la.UpdatedAt = time.Now().UTC()
	return nil
}

// GetDrains returns the drains of a liquidation address in detection order.
func (m *LiquidationAddressModel) GetDrains(_ context.Context, customerID, liquidationAddressID string) ([]Drain, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	la, err := m.get(customerID, liquidationAddressID)
	if err != nil {
		return nil, err
	}
	return append([]Drain(nil), la.drains...), nil
}

// get resolves customer and liquidation address. Callers must hold s.mu.
func (m *LiquidationAddressModel) get(customerID, liquidationAddressID string) (*LiquidationAddress, error) {
	customer, ok := m.store.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("getting customer %s: %w", customerID, ErrRecordNotFound)
	}
	la, ok := customer.liquidationAddresses[liquidationAddressID]
	if !ok {
		return nil, fmt.Errorf("getting liquidation address %s: %w", liquidationAddressID, ErrRecordNotFound)
	}
	return la, nil
}
