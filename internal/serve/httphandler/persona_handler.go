package httphandler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stellar/go-stellar-sdk/support/http/httpdecode"
	"github.com/stellar/go-stellar-sdk/support/render/httpjson"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/onboarding"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve/httperror"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve/publicfiles"
)

// PersonaHandler serves the hosted identity-verification form and resolves
// the outcome posted back by it.
type PersonaHandler struct {
	OnboardingService onboarding.ServiceInterface
}

// kycResolutionRequest is posted by the KYC form (urlencoded) or by API
// clients (JSON).
type kycResolutionRequest struct {
	SessionToken string `json:"session_token"`
	KYC          string `json:"kyc"`
}

// GetKYCForm renders the KYC form with the session token from the link
// embedded, so the form posts it back on submit.
func (h PersonaHandler) GetKYCForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form, err := publicfiles.RenderForm("kyc.html", r.URL.Query().Get("session_token"))
	if err != nil {
		httperror.InternalError(ctx, "", fmt.Errorf("rendering kyc form: %w", err)).Render(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(form))
}

// PostKYC applies the verification outcome for the customer holding the
// session token and replies 204 on success.
func (h PersonaHandler) PostKYC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reqBody, err := decodeKYCResolution(r)
	if err != nil {
		httperror.BadRequest("", err).Render(w)
		return
	}
	if reqBody.SessionToken == "" {
		httperror.BadRequest("session_token is required", nil).Render(w)
		return
	}

	err = h.OnboardingService.ResolveKYC(ctx, reqBody.SessionToken, onboarding.KYCOutcome(reqBody.KYC))
	switch {
	case err == nil:
		httpjson.RenderStatus(w, http.StatusNoContent, nil, httpjson.JSON)
	case errors.Is(err, onboarding.ErrUnknownSession):
		httperror.NotFound("Unknown session id", err).Render(w)
	case errors.Is(err, onboarding.ErrAmbiguousSession):
		httperror.Ambiguous("Multiple customers with the same session token", err).Render(w)
	default:
		httperror.InternalError(ctx, "", err).Render(w)
	}
}

func decodeKYCResolution(r *http.Request) (*kycResolutionRequest, error) {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var reqBody kycResolutionRequest
		if err := httpdecode.DecodeJSON(r, &reqBody); err != nil {
			return nil, fmt.Errorf("decoding request body: %w", err)
		}
		return &reqBody, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parsing form body: %w", err)
	}
	return &kycResolutionRequest{
		SessionToken: r.PostFormValue("session_token"),
		KYC:          r.PostFormValue("kyc"),
	}, nil
}
