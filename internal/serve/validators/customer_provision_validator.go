package validators

import (
	"strings"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/utils"
)

// CustomerProvisionRequest is the payload for promoting an onboarded customer
// to a fully provisioned account.
type CustomerProvisionRequest struct {
	Type              string                 `json:"type"`
	FirstName         string                 `json:"first_name"`
	LastName          string                 `json:"last_name"`
	Email             string                 `json:"email"`
	Address           ExternalAccountAddress `json:"address"`
	BirthDate         string                 `json:"birth_date"`
	TaxID             string                 `json:"tax_id"`
	SignedAgreementID string                 `json:"signed_agreement_id"`
}

type CustomerProvisionValidator struct {
	*Validator
}

func NewCustomerProvisionValidator() *CustomerProvisionValidator {
	return &CustomerProvisionValidator{Validator: NewValidator()}
}

// ValidateProvisionRequest checks the provisioning payload and returns the
// sanitized request.
func (v *CustomerProvisionValidator) ValidateProvisionRequest(req *CustomerProvisionRequest) *CustomerProvisionRequest {
	if req == nil {
		v.AddError("body", "request body is empty")
		return nil
	}

	customerType := strings.TrimSpace(strings.ToLower(req.Type))
	if customerType == "" {
		customerType = string(data.CustomerTypeIndividual)
	}
	v.Check(customerType == string(data.CustomerTypeIndividual), "type", "customer type must be individual")
	if v.HasErrors() {
		return nil
	}

	v.Check(req.SignedAgreementID != "", "signed_agreement_id", "signed_agreement_id is required")
	if v.HasErrors() {
		return nil
	}

	if req.Email != "" {
		v.CheckError(utils.ValidateEmail(req.Email), "email", "")
		if v.HasErrors() {
			return nil
		}
	}

	req.Type = customerType
	return req
}
