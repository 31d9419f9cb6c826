package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/utils"
)

var (
	ErrUnsupportedCustomerType = errors.New("customer type must be individual")
	ErrUnknownSession          = errors.New("unknown session token")
	// ErrAmbiguousSession means more than one customer holds the same session
	// token. Session tokens are unique by construction, so this signals a
	// corrupted invariant and is surfaced as an internal error.
	ErrAmbiguousSession = errors.New("multiple customers matched the same session token")
	ErrInvalidAgreement = errors.New("signed agreement id is unknown or already consumed")
	ErrInvalidAddress   = errors.New("invalid mailing address")
	ErrKYCNotApproved   = errors.New("kyc verification is not approved")
)

// KYCOutcome is the result reported by the identity-verification form.
type KYCOutcome string

const (
	KYCOutcomeValid   KYCOutcome = "valid"
	KYCOutcomeInvalid KYCOutcome = "invalid"
)

// KYCLinkInfo is the onboarding view of a customer returned for KYC link
// operations.
type KYCLinkInfo struct {
	ID         string            `json:"id"`
	FullName   string            `json:"full_name"`
	Email      string            `json:"email"`
	Type       data.CustomerType `json:"type"`
	KYCLink    string            `json:"kyc_link"`
	TOSLink    string            `json:"tos_link"`
	KYCStatus  data.KYCStatus    `json:"kyc_status"`
	TOSStatus  data.TOSStatus    `json:"tos_status"`
	CustomerID string            `json:"customer_id"`
}

// ProvisionRequest carries the profile submitted to promote a customer to a
// fully provisioned account.
type ProvisionRequest struct {
	Type              data.CustomerType
	FirstName         string
	LastName          string
	Email             string
	Address           data.Address
	BirthDate         string
	TaxID             string
	SignedAgreementID string
}

// ServiceInterface defines the onboarding state machine operations.
type ServiceInterface interface {
	CreateKYCLink(ctx context.Context, fullName, email string, customerType data.CustomerType) (*KYCLinkInfo, error)
	GetKYCLink(ctx context.Context, kycLinkID string) (*KYCLinkInfo, error)
	ResolveKYC(ctx context.Context, sessionToken string, outcome KYCOutcome) error
	AcceptTermsOfService(ctx context.Context, sessionToken string) (signedAgreementID string, err error)
	ProvisionCustomer(ctx context.Context, req ProvisionRequest) (*data.Customer, error)
}

// Service enforces the legal transition order for KYC status, ToS acceptance
// and customer activation. It is the only component that mutates customers.
type Service struct {
	models  *data.Models
	baseURL string

	// agreementsMu guards the single-use signed agreement ids issued by
	// AcceptTermsOfService. agreements maps agreement id -> customer id;
	// sessionAgreements maps ToS session token -> the currently valid
	// agreement id, so reissuing invalidates the prior one.
	agreementsMu      sync.Mutex
	agreements        map[string]string
	sessionAgreements map[string]string
}

var _ ServiceInterface = (*Service)(nil)

type ServiceOptions struct {
	Models  *data.Models
	BaseURL string
}

func (o ServiceOptions) Validate() error {
	if o.Models == nil {
		return fmt.Errorf("models is required")
	}
	if o.BaseURL == "" {
		return fmt.Errorf("baseURL is required")
	}
	return nil
}

func NewService(opts ServiceOptions) (*Service, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("validating onboarding.Service options: %w", err)
	}
	return &Service{
		models:            opts.Models,
		baseURL:           strings.TrimRight(opts.BaseURL, "/"),
		agreements:        make(map[string]string),
		sessionAgreements: make(map[string]string),
	}, nil
}

// CreateKYCLink registers a new onboarding submission: it creates the customer
// record with pending KYC and ToS links, each addressed by an opaque
// single-use session token embedded in the URL.
func (s *Service) CreateKYCLink(ctx context.Context, fullName, email string, customerType data.CustomerType) (*KYCLinkInfo, error) {
	if customerType != data.CustomerTypeIndividual {
		return nil, ErrUnsupportedCustomerType
	}

	firstName, lastName := splitFullName(fullName)
	now := time.Now().UTC()
	customer := data.Customer{
		ID:                    uuid.NewString(),
		KYCLinkID:             uuid.NewString(),
		FirstName:             firstName,
		LastName:              lastName,
		Email:                 email,
		Status:                data.CustomerStatusInactive,
		KYCStatus:             data.KYCStatusNotStarted,
		TOSStatus:             data.TOSStatusPending,
		KYCSessionToken:       uuid.NewString(),
		TOSSessionToken:       uuid.NewString(),
		RejectionReasons:      []string{},
		RequirementsDue:       []string{},
		FutureRequirementsDue: []string{},
		Endorsements:          []data.Endorsement{},
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	customer.KYCLink = fmt.Sprintf("%s/persona/kyc?session_token=%s", s.baseURL, customer.KYCSessionToken)
	customer.TOSLink = fmt.Sprintf("%s/accept-terms-of-service?session_token=%s", s.baseURL, customer.TOSSessionToken)

	if err := s.models.Customers.Insert(ctx, customer); err != nil {
		return nil, fmt.Errorf("inserting customer: %w", err)
	}

	return kycLinkInfo(&customer), nil
}

// GetKYCLink returns the onboarding view for a KYC link id.
func (s *Service) GetKYCLink(ctx context.Context, kycLinkID string) (*KYCLinkInfo, error) {
	customer, err := s.models.Customers.FindByKYCLinkID(ctx, kycLinkID)
	if err != nil {
		if errors.Is(err, data.ErrAmbiguousRecord) {
			return nil, fmt.Errorf("resolving kyc link %s: %w", kycLinkID, ErrAmbiguousSession)
		}
		return nil, fmt.Errorf("resolving kyc link %s: %w", kycLinkID, err)
	}
	return kycLinkInfo(customer), nil
}

// ResolveKYC applies the identity-verification outcome for the customer
// holding the session token: valid approves, invalid rejects and appends a
// rejection reason, anything else marks the submission incomplete.
func (s *Service) ResolveKYC(ctx context.Context, sessionToken string, outcome KYCOutcome) error {
	customer, err := s.models.Customers.FindByKYCSessionToken(ctx, sessionToken)
	if err != nil {
		return sessionLookupError(err)
	}

	_, err = s.models.Customers.Update(ctx, customer.ID, func(c *data.Customer) {
		switch outcome {
		case KYCOutcomeValid:
			c.KYCStatus = data.KYCStatusApproved
		case KYCOutcomeInvalid:
			c.KYCStatus = data.KYCStatusRejected
			c.RejectionReasons = append(c.RejectionReasons, "KYC was invalid")
		default:
			c.KYCStatus = data.KYCStatusIncomplete
		}
	})
	if err != nil {
		return fmt.Errorf("updating kyc status for customer %s: %w", customer.ID, err)
	}
	return nil
}

// AcceptTermsOfService marks the ToS as approved for the customer holding the
// session token and issues a fresh single-use signed agreement id. Calling it
// again on the same session reissues a new agreement id and invalidates the
// prior one.
func (s *Service) AcceptTermsOfService(ctx context.Context, sessionToken string) (string, error) {
	customer, err := s.models.Customers.FindByTOSSessionToken(ctx, sessionToken)
	if err != nil {
		return "", sessionLookupError(err)
	}

	if _, err = s.models.Customers.Update(ctx, customer.ID, func(c *data.Customer) {
		c.TOSStatus = data.TOSStatusApproved
		c.HasAcceptedTermsOfService = true
	}); err != nil {
		return "", fmt.Errorf("updating tos status for customer %s: %w", customer.ID, err)
	}

	signedAgreementID := uuid.NewString()
	s.agreementsMu.Lock()
	if prior, ok := s.sessionAgreements[sessionToken]; ok {
		delete(s.agreements, prior)
	}
	s.sessionAgreements[sessionToken] = signedAgreementID
	s.agreements[signedAgreementID] = customer.ID
	s.agreementsMu.Unlock()

	return signedAgreementID, nil
}

// ProvisionCustomer promotes a customer to a fully provisioned account. It
// requires a valid mailing address, an approved KYC verification, and an
// unconsumed signed agreement id, which it consumes on success.
func (s *Service) ProvisionCustomer(ctx context.Context, req ProvisionRequest) (*data.Customer, error) {
	if err := utils.ValidateMailingAddress(req.Address.StreetLine1, req.Address.City, req.Address.Country); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	s.agreementsMu.Lock()
	defer s.agreementsMu.Unlock()

	customerID, ok := s.agreements[req.SignedAgreementID]
	if !ok {
		return nil, ErrInvalidAgreement
	}

	customer, err := s.models.Customers.Get(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("getting customer %s: %w", customerID, err)
	}
	if customer.KYCStatus != data.KYCStatusApproved {
		return nil, ErrKYCNotApproved
	}

	// The agreement id is single-use: it is deleted before the activation is
	// applied so a concurrent provisioning attempt fails with InvalidAgreement.
	delete(s.agreements, req.SignedAgreementID)

	updated, err := s.models.Customers.Update(ctx, customerID, func(c *data.Customer) {
		c.Status = data.CustomerStatusActive
		if req.FirstName != "" {
			c.FirstName = req.FirstName
		}
		if req.LastName != "" {
			c.LastName = req.LastName
		}
		if req.Email != "" {
			c.Email = req.Email
		}
		c.Address = req.Address
		c.BirthDate = req.BirthDate
		c.TaxID = req.TaxID
	})
	if err != nil {
		return nil, fmt.Errorf("activating customer %s: %w", customerID, err)
	}
	return updated, nil
}

func sessionLookupError(err error) error {
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		return ErrUnknownSession
	case errors.Is(err, data.ErrAmbiguousRecord):
		return ErrAmbiguousSession
	default:
		return fmt.Errorf("looking up session: %w", err)
	}
}

func kycLinkInfo(c *data.Customer) *KYCLinkInfo {
	return &KYCLinkInfo{
		ID:         c.KYCLinkID,
		FullName:   strings.TrimSpace(c.FirstName + " " + c.LastName),
		Email:      c.Email,
		Type:       data.CustomerTypeIndividual,
		KYCLink:    c.KYCLink,
		TOSLink:    c.TOSLink,
		KYCStatus:  c.KYCStatus,
		TOSStatus:  c.TOSStatus,
		CustomerID: c.ID,
	}
}

func splitFullName(fullName string) (firstName, lastName string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
