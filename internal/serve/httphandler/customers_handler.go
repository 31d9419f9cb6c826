package httphandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stellar/go-stellar-sdk/support/http/httpdecode"
	"github.com/stellar/go-stellar-sdk/support/render/httpjson"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/onboarding"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve/httperror"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve/validators"
)

// CustomersHandler provisions onboarded customers and exposes their records.
type CustomersHandler struct {
	Models            *data.Models
	OnboardingService onboarding.ServiceInterface
}

// PostCustomers promotes an onboarded customer to a fully provisioned account.
// The signed agreement id is consumed on success, so a retry with the same id
// fails.
func (h CustomersHandler) PostCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqBody *validators.CustomerProvisionRequest
	if err := httpdecode.DecodeJSON(r, &reqBody); err != nil {
		httperror.BadCustomerRequest("fields missing from customer body.", err).Render(w)
		return
	}

	validator := validators.NewCustomerProvisionValidator()
	reqBody = validator.ValidateProvisionRequest(reqBody)
	if validator.HasErrors() {
		httperror.BadCustomerRequest(validator.FirstError(), nil).Render(w)
		return
	}

	customer, err := h.OnboardingService.ProvisionCustomer(ctx, onboarding.ProvisionRequest{
		Type:      data.CustomerType(reqBody.Type),
		FirstName: reqBody.FirstName,
		LastName:  reqBody.LastName,
		Email:     reqBody.Email,
		Address: data.Address{
			StreetLine1: reqBody.Address.StreetLine1,
			StreetLine2: reqBody.Address.StreetLine2,
			City:        reqBody.Address.City,
			PostalCode:  reqBody.Address.PostalCode,
			State:       reqBody.Address.State,
			Country:     reqBody.Address.Country,
		},
		BirthDate:         reqBody.BirthDate,
		TaxID:             reqBody.TaxID,
		SignedAgreementID: reqBody.SignedAgreementID,
	})
	switch {
	case err == nil:
		httpjson.RenderStatus(w, http.StatusCreated, customer, httpjson.JSON)
	case errors.Is(err, onboarding.ErrInvalidAddress):
		httperror.BadCustomerRequest(err.Error(), err).Render(w)
	case errors.Is(err, onboarding.ErrInvalidAgreement):
		httperror.BadCustomerRequest(onboarding.ErrInvalidAgreement.Error(), err).Render(w)
	case errors.Is(err, onboarding.ErrKYCNotApproved):
		httperror.BadCustomerRequest(onboarding.ErrKYCNotApproved.Error(), err).Render(w)
	default:
		httperror.InternalError(ctx, "", err).Render(w)
	}
}

// GetCustomer returns one customer record.
func (h CustomersHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := chi.URLParam(r, "customerID")

	customer, err := h.Models.Customers.Get(ctx, customerID)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("Unknown customer id", err).Render(w)
			return
		}
		httperror.InternalError(ctx, "", err).Render(w)
		return
	}

	httpjson.Render(w, customer, httpjson.JSON)
}
