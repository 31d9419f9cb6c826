package data

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ExternalAccountType discriminates the two supported bank account shapes.
type ExternalAccountType string

const (
	ExternalAccountTypeUS   ExternalAccountType = "us"
	ExternalAccountTypeIBAN ExternalAccountType = "iban"
)

// Currency is a fiat settlement currency.
type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyEUR Currency = "eur"
)

func (c Currency) Validate() error {
	switch Currency(strings.ToLower(string(c))) {
	case CurrencyUSD, CurrencyEUR:
		return nil
	default:
		return fmt.Errorf("invalid currency %q, must be 'usd' or 'eur'", c)
	}
}

// AccountOwnerType qualifies the owner of an IBAN account.
type AccountOwnerType string

const (
	AccountOwnerTypeIndividual AccountOwnerType = "individual"
	AccountOwnerTypeCompany    AccountOwnerType = "company"
)

// ExternalAccountDetails carries the variant-specific bank coordinates. Only
// the fields of the active variant are populated: RoutingNumber for "us"
// accounts, BIC and Country for "iban" accounts.
type ExternalAccountDetails struct {
	Last4         string `json:"last_4"`
	RoutingNumber string `json:"routing_number,omitempty"`
	BIC           string `json:"bic,omitempty"`
	Country       string `json:"country,omitempty"`
}

// ExternalAccount is a linked bank destination owned by exactly one customer.
// Immutable once created except for the Active and BeneficiaryAddressValid
// flags. Construct through NewUSExternalAccount or NewIBANExternalAccount so
// the currency/type invariant holds from the start.
type ExternalAccount struct {
	ID                      string                 `json:"id"`
	AccountType             ExternalAccountType    `json:"account_type"`
	Currency                Currency               `json:"currency"`
	CustomerID              string                 `json:"customer_id"`
	AccountOwnerName        string                 `json:"account_owner_name"`
	AccountOwnerType        AccountOwnerType       `json:"account_owner_type,omitempty"`
	BankName                string                 `json:"bank_name"`
	Last4                   string                 `json:"last_4"`
	Active                  bool                   `json:"active"`
	BeneficiaryAddressValid bool                   `json:"beneficiary_address_valid"`
	Account                 ExternalAccountDetails `json:"account"`
	CreatedAt               time.Time              `json:"created_at"`
	UpdatedAt               time.Time              `json:"updated_at"`
}

// NewUSExternalAccount builds the "us" variant. US accounts settle in USD
// only.
func NewUSExternalAccount(id, customerID, ownerName, bankName, accountNumber, routingNumber string) ExternalAccount {
	now := time.Now().UTC()
	last4 := lastFour(accountNumber)
	return ExternalAccount{
		ID:                      id,
		AccountType:             ExternalAccountTypeUS,
		Currency:                CurrencyUSD,
		CustomerID:              customerID,
		AccountOwnerName:        ownerName,
		BankName:                bankName,
		Last4:                   last4,
		Active:                  true,
		BeneficiaryAddressValid: true,
		Account: ExternalAccountDetails{
			Last4:         last4,
			RoutingNumber: routingNumber,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewIBANExternalAccount builds the "iban" variant, the only one allowed to
// settle in EUR.
func NewIBANExternalAccount(id, customerID, ownerName, bankName, accountNumber, bic, country string, currency Currency, ownerType AccountOwnerType) ExternalAccount {
	now := time.Now().UTC()
	last4 := lastFour(accountNumber)
	return ExternalAccount{
		ID:                      id,
		AccountType:             ExternalAccountTypeIBAN,
		Currency:                currency,
		CustomerID:              customerID,
		AccountOwnerName:        ownerName,
		AccountOwnerType:        ownerType,
		BankName:                bankName,
		Last4:                   last4,
		Active:                  true,
		BeneficiaryAddressValid: true,
		Account: ExternalAccountDetails{
			Last4:   last4,
			BIC:     bic,
			Country: country,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func lastFour(accountNumber string) string {
	if len(accountNumber) <= 4 {
		return accountNumber
	}
	return accountNumber[len(accountNumber)-4:]
}

type ExternalAccountModel struct {
	store *Store
}

// Insert stores a new external account under its owning customer.
func (m *ExternalAccountModel) Insert(_ context.Context, account ExternalAccount) error {
	if account.ID == "" || account.CustomerID == "" {
		return fmt.Errorf("validating external account: %w", ErrMissingInput)
	}
	if account.Currency == CurrencyEUR && account.AccountType != ExternalAccountTypeIBAN {
		return fmt.Errorf("eur external accounts must be iban accounts: %w", ErrMissingInput)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	customer, ok := m.store.customers[account.CustomerID]
	if !ok {
		return fmt.Errorf("getting customer %s: %w", account.CustomerID, ErrRecordNotFound)
	}
	if _, ok = customer.externalAccounts[account.ID]; ok {
		return fmt.Errorf("inserting external account %s: %w", account.ID, ErrRecordAlreadyExists)
	}

	customer.externalAccounts[account.ID] = &account
	return nil
}

// Get returns a copy of one external account namespaced under the customer.
func (m *ExternalAccountModel) Get(_ context.Context, customerID, accountID string) (*ExternalAccount, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	customer, ok := m.store.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("getting customer %s: %w", customerID, ErrRecordNotFound)
	}
	account, ok := customer.externalAccounts[accountID]
	if !ok {
		return nil, fmt.Errorf("getting external account %s: %w", accountID, ErrRecordNotFound)
	}

	cloned := *account
	return &cloned, nil
}

// GetAll returns a snapshot of the customer's external accounts keyed by id.
func (m *ExternalAccountModel) GetAll(_ context.Context, customerID string) (map[string]ExternalAccount, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	customer, ok := m.store.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("getting customer %s: %w", customerID, ErrRecordNotFound)
	}

	accounts := make(map[string]ExternalAccount, len(customer.externalAccounts))
	for id, account := range customer.externalAccounts {
		accounts[id] = *account
	}
	return accounts, nil
}
