package validators

import (
	"strings"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
)

// KYCLinkRequest is the payload for starting an onboarding submission.
type KYCLinkRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Type     string `json:"type"`
}

type KYCLinkValidator struct {
	*Validator
}

func NewKYCLinkValidator() *KYCLinkValidator {
	return &KYCLinkValidator{Validator: NewValidator()}
}

// ValidateCreateKYCLinkRequest checks the onboarding payload and returns the
// sanitized request. Only individual customers can be onboarded.
func (v *KYCLinkValidator) ValidateCreateKYCLinkRequest(req *KYCLinkRequest) *KYCLinkRequest {
	if req == nil {
		v.AddError("body", "request body is empty")
		return nil
	}

	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(req.Email)
	customerType := strings.TrimSpace(strings.ToLower(req.Type))

	v.Check(fullName != "" && email != "" && customerType != "", "body", "fields missing from customer body.")
	if v.HasErrors() {
		return nil
	}

	v.Check(customerType == string(data.CustomerTypeIndividual), "type", "customer type must be individual")
	if v.HasErrors() {
		return nil
	}

	return &KYCLinkRequest{
		FullName: fullName,
		Email:    email,
		Type:     customerType,
	}
}
