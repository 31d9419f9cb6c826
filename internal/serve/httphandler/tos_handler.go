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

// TOSHandler serves the hosted terms-of-service form and records acceptances.
type TOSHandler struct {
	OnboardingService onboarding.ServiceInterface
}

type tosAcceptanceRequest struct {
	SessionToken string `json:"session_token"`
}

// TOSAcceptanceResponse carries the single-use agreement id handed to the
// customer on acceptance. The id is consumed when the customer is provisioned.
type TOSAcceptanceResponse struct {
	SignedAgreementID string `json:"signed_agreement_id"`
}

// GetTOSForm renders the acceptance form with the session token from the link
// embedded.
func (h TOSHandler) GetTOSForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form, err := publicfiles.RenderForm("tos.html", r.URL.Query().Get("session_token"))
	if err != nil {
		httperror.InternalError(ctx, "", fmt.Errorf("rendering tos form: %w", err)).Render(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(form))
}

// PostAcceptTOS marks the terms as accepted for the customer holding the
// session token and returns a fresh signed agreement id.
func (h TOSHandler) PostAcceptTOS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reqBody, err := decodeTOSAcceptance(r)
	if err != nil {
		httperror.BadRequest("", err).Render(w)
		return
	}
	if reqBody.SessionToken == "" {
		httperror.BadRequest("session_token is required", nil).Render(w)
		return
	}

	signedAgreementID, err := h.OnboardingService.AcceptTermsOfService(ctx, reqBody.SessionToken)
	switch {
	case err == nil:
		httpjson.Render(w, TOSAcceptanceResponse{SignedAgreementID: signedAgreementID}, httpjson.JSON)
	case errors.Is(err, onboarding.ErrUnknownSession):
		httperror.NotFound("Unknown session id", err).Render(w)
	case errors.Is(err, onboarding.ErrAmbiguousSession):
		httperror.Ambiguous("Multiple customers with the same session token", err).Render(w)
	default:
		httperror.InternalError(ctx, "", err).Render(w)
	}
}

func decodeTOSAcceptance(r *http.Request) (*tosAcceptanceRequest, error) {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var reqBody tosAcceptanceRequest
		if err := httpdecode.DecodeJSON(r, &reqBody); err != nil {
			return nil, fmt.Errorf("decoding request body: %w", err)
		}
		return &reqBody, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parsing form body: %w", err)
	}
	return &tosAcceptanceRequest{SessionToken: r.PostFormValue("session_token")}, nil
}
