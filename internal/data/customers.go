package data

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// KYCStatus represents the status of KYC verification.
type KYCStatus string

const (
	KYCStatusNotStarted   KYCStatus = "not_started"
	KYCStatusPending      KYCStatus = "pending"
	KYCStatusIncomplete   KYCStatus = "incomplete"
	KYCStatusAwaitingUBO  KYCStatus = "awaiting_ubo"
	KYCStatusManualReview KYCStatus = "manual_review"
	KYCStatusUnderReview  KYCStatus = "under_review"
	KYCStatusApproved     KYCStatus = "approved"
	KYCStatusRejected     KYCStatus = "rejected"
)

// TOSStatus represents the status of Terms of Service acceptance.
type TOSStatus string

const (
	TOSStatusPending  TOSStatus = "pending"
	TOSStatusApproved TOSStatus = "approved"
)

// CustomerStatus represents the provisioning status of a customer account.
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// CustomerType represents the persona of an onboarding submission. Only
// individuals are supported.
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeBusiness   CustomerType = "business"
)

func (t CustomerType) Validate() error {
	switch CustomerType(strings.ToLower(string(t))) {
	case CustomerTypeIndividual, CustomerTypeBusiness:
		return nil
	default:
		return fmt.Errorf("invalid customer type %q, must be either 'individual' or 'business'", t)
	}
}

// Address is a customer's postal address.
type Address struct {
	StreetLine1 string `json:"street_line_1"`
	StreetLine2 string `json:"street_line_2"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	State       string `json:"state"`
	Country     string `json:"country"`
}

// Endorsement mirrors the endorsement entries returned for a customer.
type Endorsement struct {
	Name                   string   `json:"name"`
	Status                 string   `json:"status"`
	AdditionalRequirements []string `json:"additional_requirements"`
}

// Customer is the ledger record for one onboarding submission. It is created
// by the onboarding service and mutated only through CustomerModel.Update;
// customers are never deleted.
type Customer struct {
	ID                        string         `json:"id"`
	KYCLinkID                 string         `json:"-"`
	FirstName                 string         `json:"first_name"`
	LastName                  string         `json:"last_name"`
	Email                     string         `json:"email"`
	Status                    CustomerStatus `json:"status"`
	HasAcceptedTermsOfService bool           `json:"has_accepted_terms_of_service"`
	Address                   Address        `json:"address"`
	BirthDate                 string         `json:"-"`
	TaxID                     string         `json:"-"`
	RejectionReasons          []string       `json:"rejection_reasons"`
	RequirementsDue           []string       `json:"requirements_due"`
	FutureRequirementsDue     []string       `json:"future_requirements_due"`
	Endorsements              []Endorsement  `json:"endorsements"`
	CreatedAt                 time.Time      `json:"created_at"`
	UpdatedAt                 time.Time      `json:"updated_at"`

	KYCLink   string    `json:"-"`
	TOSLink   string    `json:"-"`
	KYCStatus KYCStatus `json:"-"`
	TOSStatus TOSStatus `json:"-"`

	// Session tokens embedded in the KYC and ToS links. Unique per submission
	// by construction.
	KYCSessionToken string `json:"-"`
	TOSSessionToken string `json:"-"`

	externalAccounts     map[string]*ExternalAccount
	liquidationAddresses map[string]*LiquidationAddress
}

func (c *Customer) clone() *Customer {
	if c == nil {
		return nil
	}
	cloned := *c
	cloned.RejectionReasons = append([]string(nil), c.RejectionReasons...)
	cloned.RequirementsDue = append([]string(nil), c.RequirementsDue...)
	cloned.FutureRequirementsDue = append([]string(nil), c.FutureRequirementsDue...)
	cloned.Endorsements = append([]Endorsement(nil), c.Endorsements...)
	cloned.externalAccounts = nil
	cloned.liquidationAddresses = nil
	return &cloned
}

type CustomerModel struct {
	store *Store
}

// Insert adds a new customer to the ledger. The id is generated by the caller
// and must not already exist.
func (m *CustomerModel) Insert(_ context.Context, customer Customer) error {
	if customer.ID == "" {
		return fmt.Errorf("validating customer: %w", ErrMissingInput)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if _, ok := m.store.customers[customer.ID]; ok {
		return fmt.Errorf("inserting customer %s: %w", customer.ID, ErrRecordAlreadyExists)
	}

	customer.externalAccounts = make(map[string]*ExternalAccount)
	customer.liquidationAddresses = make(map[string]*LiquidationAddress)
	m.store.customers[customer.ID] = &customer
	return nil
}

// Get returns a copy of the customer, so callers can read it without holding
// the ledger lock.
func (m *CustomerModel) Get(_ context.Context, customerID string) (*Customer, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	customer, ok := m.store.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("getting customer %s: %w", customerID, ErrRecordNotFound)
	}
	return customer.clone(), nil
}

// Update applies the mutator to the customer under the write lock and bumps
// UpdatedAt. The mutator must not retain the pointer after returning.
func (m *CustomerModel) Update(_ context.Context, customerID string, mutate func(*Customer)) (*Customer, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	customer, ok := m.store.customers[customerID]
	if !ok {
		return nil, fmt.Errorf("updating customer %s: %w", customerID, ErrRecordNotFound)
	}

	mutate(customer)
	customer.UpdatedAt = time.Now().UTC()
	return customer.clone(), nil
}

// FindByKYCLinkID resolves a customer by its KYC link id.
func (m *CustomerModel) FindByKYCLinkID(_ context.Context, kycLinkID string) (*Customer, error) {
	return m.findOne(func(c *Customer) bool { return c.KYCLinkID == kycLinkID })
}

// FindByKYCSessionToken resolves a customer by the session token embedded in
// its KYC link.
func (m *CustomerModel) FindByKYCSessionToken(_ context.Context, sessionToken string) (*Customer, error) {
	return m.findOne(func(c *Customer) bool { return c.KYCSessionToken == sessionToken })
}

// FindByTOSSessionToken resolves a customer by the session token embedded in
// its ToS link.
func (m *CustomerModel) FindByTOSSessionToken(_ context.Context, sessionToken string) (*Customer, error) {
	return m.findOne(func(c *Customer) bool { return c.TOSSessionToken == sessionToken })
}

// findOne returns the single customer matching the predicate. Zero matches is
// ErrRecordNotFound; more than one is ErrAmbiguousRecord, because every key we
// look up this way is unique by construction.
func (m *CustomerModel) findOne(match func(*Customer) bool) (*Customer, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	var found *Customer
	for _, customer := range m.store.customers {
		if !match(customer) {
			continue
		}
		if found != nil {
			return nil, ErrAmbiguousRecord
		}
		found = customer
	}
	if found == nil {
		return nil, ErrRecordNotFound
	}
	return found.clone(), nil
}
