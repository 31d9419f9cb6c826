package httphandler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stellar/go-stellar-sdk/support/http/httpdecode"
	"github.com/stellar/go-stellar-sdk/support/render/httpjson"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve/httperror"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve/validators"
)

// ExternalAccountsHandler links bank accounts to customers and exposes them.
type ExternalAccountsHandler struct {
	Models *data.Models
}

// PostExternalAccounts links a new bank account to the customer. The payload
// is discriminated by account_type: "us" carries the account block plus a
// beneficiary address, "iban" carries the iban block plus the owner identity.
func (h ExternalAccountsHandler) PostExternalAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := chi.URLParam(r, "customerID")

	var reqBody *validators.ExternalAccountRequest
	if err := httpdecode.DecodeJSON(r, &reqBody); err != nil {
		httperror.BadRequest("", err).Render(w)
		return
	}

	validator := validators.NewExternalAccountValidator()
	reqBody = validator.ValidateCreateExternalAccountRequest(reqBody)
	if validator.HasErrors() {
		httperror.BadRequest(validator.FirstError(), nil).Render(w)
		return
	}

	var account data.ExternalAccount
	if reqBody.AccountType == string(data.ExternalAccountTypeUS) {
		account = data.NewUSExternalAccount(
			uuid.NewString(),
			customerID,
			reqBody.AccountOwnerName,
			reqBody.BankName,
			reqBody.Account.AccountNumber,
			reqBody.Account.RoutingNumber,
		)
	} else {
		account = data.NewIBANExternalAccount(
			uuid.NewString(),
			customerID,
			reqBody.AccountOwnerName,
			reqBody.BankName,
			reqBody.IBAN.AccountNumber,
			reqBody.IBAN.BIC,
			reqBody.IBAN.Country,
			data.Currency(reqBody.Currency),
			data.AccountOwnerType(reqBody.AccountOwnerType),
		)
	}

	if err := h.Models.ExternalAccounts.Insert(ctx, account); err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("Unknown customer id", err).Render(w)
			return
		}
		httperror.InternalError(ctx, "", fmt.Errorf("inserting external account: %w", err)).Render(w)
		return
	}

	httpjson.RenderStatus(w, http.StatusCreated, account, httpjson.JSON)
}

// GetExternalAccounts returns the customer's external accounts keyed by id.
func (h ExternalAccountsHandler) GetExternalAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := chi.URLParam(r, "customerID")

	accounts, err := h.Models.ExternalAccounts.GetAll(ctx, customerID)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("Unknown customer id", err).Render(w)
			return
		}
		httperror.InternalError(ctx, "", err).Render(w)
		return
	}

	httpjson.Render(w, accounts, httpjson.JSON)
}

// GetExternalAccount returns one external account.
func (h ExternalAccountsHandler) GetExternalAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID := chi.URLParam(r, "customerID")
	externalAccountID := chi.URLParam(r, "externalAccountID")

	if _, err := h.Models.Customers.Get(ctx, customerID); err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("Unknown customer id", err).Render(w)
			return
		}
		httperror.InternalError(ctx, "", err).Render(w)
		return
	}

	account, err := h.Models.ExternalAccounts.Get(ctx, customerID, externalAccountID)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("Unknown external account id", err).Render(w)
			return
		}
		httperror.InternalError(ctx, "", err).Render(w)
		return
	}

	httpjson.Render(w, account, httpjson.JSON)
}
