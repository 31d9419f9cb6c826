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
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve/httperror"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve/validators"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/services"
)

// LiquidationAddressesHandler registers deposit addresses and exposes them
// together with their detected drains.
type LiquidationAddressesHandler struct {
	Models                    *data.Models
	LiquidationAddressService services.LiquidationAddressServiceInterface
	MonitorService            monitor.MonitorServiceInterface
}

// DrainsResponse lists the drains detected for one liquidation address, in
// detection order.
type DrainsResponse struct {
	Count  int          `json:"count"`
	Drains []data.Drain `json:"drains"`
}

// PostLiquidationAddresses registers a new deposit address bound to one of
// the customer's external accounts. The reconciler picks it up on its next
// tick.
func (h LiquidationAddressesHandler) PostLiquidationAddresses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := chi.URLParam(r, "customerID")

	if _, err := h.Models.Customers.Get(ctx, customerID); err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("Unknown customer id", err).Render(w)
			return
		}
		httperror.InternalError(ctx, "", err).Render(w)
		return
	}

	var reqBody *validators.LiquidationAddressRequest
	if err := httpdecode.DecodeJSON(r, &reqBody); err != nil {
		httperror.BadRequest("", err).Render(w)
		return
	}

	validator := validators.NewLiquidationAddressValidator()
	reqBody = validator.ValidateRequired(reqBody)
	if validator.HasErrors() {
		httperror.BadRequest(validator.FirstError(), nil).Render(w)
		return
	}

	if _, err := h.Models.ExternalAccounts.Get(ctx, customerID, reqBody.ExternalAccountID); err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("Unknown external account id", err).Render(w)
			return
		}
		httperror.InternalError(ctx, "", err).Render(w)
		return
	}

	validator.ValidateDestination(reqBody)
	if validator.HasErrors() {
		httperror.BadRequest(validator.FirstError(), nil).Render(w)
		return
	}

	la, err := h.LiquidationAddressService.CreateLiquidationAddress(ctx, customerID, services.CreateLiquidationAddressRequest{
		Chain:                  reqBody.Chain,
		Currency:               reqBody.Currency,
		ExternalAccountID:      reqBody.ExternalAccountID,
		DestinationPaymentRail: data.PaymentRail(reqBody.DestinationPaymentRail),
		DestinationCurrency:    data.Currency(reqBody.DestinationCurrency),
	})
	switch {
	case err == nil:
	case errors.Is(err, data.ErrRecordNotFound):
		httperror.NotFound("Unknown external account id", err).Render(w)
		return
	case errors.Is(err, services.ErrUnsupportedRail):
		httperror.BadRequest(services.ErrUnsupportedRail.Error(), err).Render(w)
		return
	default:
		httperror.InternalError(ctx, "", err).Render(w)
		return
	}

	if h.MonitorService != nil {
		if monitorErr := h.MonitorService.MonitorCounters(monitor.LiquidationAddressesCreatedCounterTag, nil); monitorErr != nil {
			log.Ctx(ctx).Errorf("monitoring liquidation addresses created counter: %v", monitorErr)
		}
	}

	httpjson.RenderStatus(w, http.StatusCreated, la, httpjson.JSON)
}

// GetLiquidationAddress returns one liquidation address.
func (h LiquidationAddressesHandler) GetLiquidationAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := chi.URLParam(r, "customerID")
	liquidationAddressID := chi.URLParam(r, "liquidationAddressID")

	if _, err := h.Models.Customers.Get(ctx, customerID); err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("Unknown customer id", err).Render(w)
			return
		}
		httperror.InternalError(ctx, "", err).Render(w)
		return
	}

	la, err := h.Models.LiquidationAddresses.Get(ctx, customerID, liquidationAddressID)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("Unknown liquidation address id", err).Render(w)
			return
		}
		httperror.InternalError(ctx, "", err).Render(w)
		return
	}

	httpjson.Render(w, la, httpjson.JSON)
}

// GetDrains returns the drains detected for one liquidation address.
func (h LiquidationAddressesHandler) GetDrains(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := chi.URLParam(r, "customerID")
	liquidationAddressID := chi.URLParam(r, "liquidationAddressID")

	if _, err := h.Models.Customers.Get(ctx, customerID); err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("Unknown customer id", err).Render(w)
			return
		}
		httperror.InternalError(ctx, "", err).Render(w)
		return
	}

	drains, err := h.Models.LiquidationAddresses.GetDrains(ctx, customerID, liquidationAddressID)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("Unknown liquidation address id", err).Render(w)
			return
		}
		httperror.InternalError(ctx, "", err).Render(w)
		return
	}

	httpjson.Render(w, DrainsResponse{Count: len(drains), Drains: drains}, httpjson.JSON)
}
