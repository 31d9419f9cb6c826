package httphandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
)

func Test_CustomersHandler_PostCustomers(t *testing.T) {
	ctx := context.Background()

	postCustomers := func(t *testing.T, handler CustomersHandler, body string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/v0/customers", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		handler.PostCustomers(rr, req)
		return rr
	}

	provisionBody := func(signedAgreementID string) string {
		return `{
			"type": "individual",
			"first_name": "Ada",
			"last_name": "Lovelace",
			"email": "ada@example.com",
			"address": {"street_line_1": "123 Main St", "city": "London", "country": "GBR"},
			"birth_date": "1815-12-10",
			"tax_id": "123-45-6789",
			"signed_agreement_id": "` + signedAgreementID + `"
		}`
	}

	t.Run("🔴returns 400 when signed_agreement_id is missing", func(t *testing.T) {
		f := setupHandlerFixture(t)
		handler := CustomersHandler{Models: f.models, OnboardingService: f.onboardingService}

		rr := postCustomers(t, handler, `{"type": "individual"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"code": "bad_customer_request", "message": "signed_agreement_id is required"}`, rr.Body.String())
	})

	t.Run("🔴returns 400 when the mailing address is incomplete", func(t *testing.T) {
		f := setupHandlerFixture(t)
		handler := CustomersHandler{Models: f.models, OnboardingService: f.onboardingService}
		_, signedAgreementID := f.onboardCustomer(t)

		rr := postCustomers(t, handler, `{
			"type": "individual",
			"address": {"street_line_1": "123 Main St"},
			"signed_agreement_id": "`+signedAgreementID+`"
		}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var respBody map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &respBody))
		assert.Equal(t, "bad_customer_request", respBody["code"])
		assert.Contains(t, respBody["message"], "city is required")
	})

	t.Run("🔴returns 400 for an unknown agreement id", func(t *testing.T) {
		f := setupHandlerFixture(t)
		handler := CustomersHandler{Models: f.models, OnboardingService: f.onboardingService}

		rr := postCustomers(t, handler, provisionBody("never-issued"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"code": "bad_customer_request", "message": "signed agreement id is unknown or already consumed"}`, rr.Body.String())
	})

	t.Run("🔴returns 400 when kyc is not approved", func(t *testing.T) {
		f := setupHandlerFixture(t)
		handler := CustomersHandler{Models: f.models, OnboardingService: f.onboardingService}

		kycLink, err := f.onboardingService.CreateKYCLink(ctx, "Ada Lovelace", "ada@example.com", data.CustomerTypeIndividual)
		require.NoError(t, err)
		customer, err := f.models.Customers.Get(ctx, kycLink.CustomerID)
		require.NoError(t, err)
		signedAgreementID, err := f.onboardingService.AcceptTermsOfService(ctx, customer.TOSSessionToken)
		require.NoError(t, err)

		rr := postCustomers(t, handler, provisionBody(signedAgreementID))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"code": "bad_customer_request", "message": "kyc verification is not approved"}`, rr.Body.String())
	})

	t.Run("🟢provisions the customer and consumes the agreement id", func(t *testing.T) {
		f := setupHandlerFixture(t)
		handler := CustomersHandler{Models: f.models, OnboardingService: f.onboardingService}
		customerID, signedAgreementID := f.onboardCustomer(t)

		rr := postCustomers(t, handler, provisionBody(signedAgreementID))

		assert.Equal(t, http.StatusCreated, rr.Code)
		var customer data.Customer
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &customer))
		assert.Equal(t, customerID, customer.ID)
		assert.Equal(t, data.CustomerStatusActive, customer.Status)
		assert.Equal(t, "London", customer.Address.City)

		// The agreement id is single use.
		rr = postCustomers(t, handler, provisionBody(signedAgreementID))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"code": "bad_customer_request", "message": "signed agreement id is unknown or already consumed"}`, rr.Body.String())
	})
}

func Test_CustomersHandler_GetCustomer(t *testing.T) {
	getCustomer := func(t *testing.T, handler CustomersHandler, customerID string) *httptest.ResponseRecorder {
		t.Helper()
		r := chi.NewRouter()
		r.Get("/v0/customers/{customerID}", handler.GetCustomer)

		req := httptest.NewRequest(http.MethodGet, "/v0/customers/"+customerID, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	t.Run("🔴returns 404 for an unknown customer id", func(t *testing.T) {
		f := setupHandlerFixture(t)
		handler := CustomersHandler{Models: f.models, OnboardingService: f.onboardingService}

		rr := getCustomer(t, handler, "unknown-id")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"code": "Invalid", "message": "Unknown customer id"}`, rr.Body.String())
	})

	t.Run("🟢returns the customer record without internal fields", func(t *testing.T) {
		f := setupHandlerFixture(t)
		handler := CustomersHandler{Models: f.models, OnboardingService: f.onboardingService}
		kycLink, err := f.onboardingService.CreateKYCLink(context.Background(), "Ada Lovelace", "ada@example.com", data.CustomerTypeIndividual)
		require.NoError(t, err)

		rr := getCustomer(t, handler, kycLink.CustomerID)

		assert.Equal(t, http.StatusOK, rr.Code)
		var rendered map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rendered))
		assert.Equal(t, kycLink.CustomerID, rendered["id"])
		assert.Equal(t, "inactive", rendered["status"])
		assert.NotContains(t, rendered, "kyc_session_token")
		assert.NotContains(t, rendered, "tax_id")
		assert.NotContains(t, rendered, "birth_date")
	})
}
