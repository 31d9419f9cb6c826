package httphandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stellar/go-stellar-sdk/support/http/httpdecode"
	"github.com/stellar/go-stellar-sdk/support/log"
	"github.com/stellar/go-stellar-sdk/support/render/httpjson"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/monitor"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/onboarding"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve/httperror"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve/validators"
)

// KYCLinksHandler starts onboarding submissions and exposes their state.
type KYCLinksHandler struct {
	OnboardingService onboarding.ServiceInterface
	MonitorService    monitor.MonitorServiceInterface
}

// PostKYCLinks registers a new onboarding submission and returns the KYC and
// ToS links the customer must complete.
func (h KYCLinksHandler) PostKYCLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqBody *validators.KYCLinkRequest
	if err := httpdecode.DecodeJSON(r, &reqBody); err != nil {
		httperror.BadCustomerRequest("fields missing from customer body.", err).Render(w)
		return
	}

	validator := validators.NewKYCLinkValidator()
	reqBody = validator.ValidateCreateKYCLinkRequest(reqBody)
	if validator.HasErrors() {
		httperror.BadCustomerRequest(validator.FirstError(), nil).Render(w)
		return
	}

	kycLink, err := h.OnboardingService.CreateKYCLink(ctx, reqBody.FullName, reqBody.Email, data.CustomerType(reqBody.Type))
	if err != nil {
		if errors.Is(err, onboarding.ErrUnsupportedCustomerType) {
			httperror.BadCustomerRequest(onboarding.ErrUnsupportedCustomerType.Error(), err).Render(w)
			return
		}
		httperror.InternalError(ctx, "", err).Render(w)
		return
	}

	if h.MonitorService != nil {
		if monitorErr := h.MonitorService.MonitorCounters(monitor.CustomersCreatedCounterTag, nil); monitorErr != nil {
			log.Ctx(ctx).Errorf("monitoring customers created counter: %v", monitorErr)
		}
	}

	httpjson.RenderStatus(w, http.StatusCreated, kycLink, httpjson.JSON)
}

// GetKYCLink returns the current onboarding state for one KYC link id.
func (h KYCLinksHandler) GetKYCLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kycLinkID := chi.URLParam(r, "kycLinkID")

	kycLink, err := h.OnboardingService.GetKYCLink(ctx, kycLinkID)
	switch {
	case err == nil:
		httpjson.Render(w, kycLink, httpjson.JSON)
	case errors.Is(err, data.ErrRecordNotFound):
		httperror.NotFound("Unknown customer id", err).Render(w)
	case errors.Is(err, onboarding.ErrAmbiguousSession):
		httperror.Ambiguous("Multiple customers with the same kyc link id", err).Render(w)
	default:
		httperror.InternalError(ctx, "", err).Render(w)
	}
}
