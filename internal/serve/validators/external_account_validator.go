package validators

import (
	"strings"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
)

// USAccountDetails is the bank coordinates block of a "us" external account.
type USAccountDetails struct {
	AccountNumber string `json:"account_number"`
	RoutingNumber string `json:"routing_number"`
}

// IBANDetails is the bank coordinates block of an "iban" external account.
type IBANDetails struct {
	AccountNumber string `json:"account_number"`
	BIC           string `json:"bic"`
	Country       string `json:"country"`
}

// ExternalAccountAddress is the beneficiary address block required for "us"
// accounts.
type ExternalAccountAddress struct {
	StreetLine1 string `json:"street_line_1"`
	StreetLine2 string `json:"street_line_2"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	State       string `json:"state"`
	Country     string `json:"country"`
}

// ExternalAccountRequest is the discriminated payload for linking a bank
// account. AccountType defaults to "us" and Currency to "usd" when omitted.
type ExternalAccountRequest struct {
	Currency         string                  `json:"currency"`
	BankName         string                  `json:"bank_name"`
	AccountOwnerName string                  `json:"account_owner_name"`
	AccountType      string                  `json:"account_type"`
	Account          *USAccountDetails       `json:"account"`
	IBAN             *IBANDetails            `json:"iban"`
	AccountOwnerType string                  `json:"account_owner_type"`
	FirstName        string                  `json:"first_name"`
	LastName         string                  `json:"last_name"`
	BusinessName     string                  `json:"business_name"`
	Address          *ExternalAccountAddress `json:"address"`
}

type ExternalAccountValidator struct {
	*Validator
}

func NewExternalAccountValidator() *ExternalAccountValidator {
	return &ExternalAccountValidator{Validator: NewValidator()}
}

// ValidateCreateExternalAccountRequest runs the per-variant checks in the
// documented order, so the message of the first violated rule is the one the
// client sees. It returns the request with the defaults applied.
func (v *ExternalAccountValidator) ValidateCreateExternalAccountRequest(req *ExternalAccountRequest) *ExternalAccountRequest {
	if req == nil {
		v.AddError("body", "request body is empty")
		return nil
	}

	if req.AccountType == "" {
		req.AccountType = string(data.ExternalAccountTypeUS)
	}
	if req.Currency == "" {
		req.Currency = string(data.CurrencyUSD)
	}
	accountType := strings.ToLower(req.AccountType)
	currency := strings.ToLower(req.Currency)

	if accountType == string(data.ExternalAccountTypeUS) {
		v.Check(req.Account != nil && req.Account.RoutingNumber != "" && req.Account.AccountNumber != "",
			"account", "account containing routing_number and account_number as strings are required for us account")
		if v.HasErrors() {
			return nil
		}

		v.Check(req.Address != nil && req.Address.StreetLine1 != "" && req.Address.City != "" && req.Address.Country != "",
			"address", "address, street_line_1, city, country are required for us account")
		if v.HasErrors() {
			return nil
		}
	}

	if accountType == string(data.ExternalAccountTypeIBAN) {
		v.Check(req.IBAN != nil && req.IBAN.BIC != "" && req.IBAN.AccountNumber != "" && req.IBAN.Country != "",
			"iban", "iban, bic, account_number, and country are required for iban account")
		if v.HasErrors() {
			return nil
		}

		v.Check(req.AccountOwnerType != "", "account_owner_type", "account_owner_type is required for iban account")
		if v.HasErrors() {
			return nil
		}

		if req.AccountOwnerType == string(data.AccountOwnerTypeIndividual) {
			v.Check(req.FirstName != "" && req.LastName != "",
				"account_owner_type", "first_name and last_name are required for individual iban account")
		}
		if req.AccountOwnerType == string(data.AccountOwnerTypeCompany) {
			v.Check(req.BusinessName != "", "account_owner_type", "business_name is required for company iban account")
		}
		if v.HasErrors() {
			return nil
		}
	}

	v.Check(req.AccountOwnerName != "", "account_owner_name", "account_owner_name is required")
	if v.HasErrors() {
		return nil
	}

	v.Check(currency == string(data.CurrencyUSD) || currency == string(data.CurrencyEUR),
		"currency", "currency must be usd or eur")
	if v.HasErrors() {
		return nil
	}

	if currency == string(data.CurrencyEUR) {
		v.Check(accountType == string(data.ExternalAccountTypeIBAN),
			"account_type", "account_type must be iban if currency is eur")
		if v.HasErrors() {
			return nil
		}
	}

	v.Check(accountType == string(data.ExternalAccountTypeUS) || accountType == string(data.ExternalAccountTypeIBAN),
		"account_type", "account_type must be us or iban")
	if v.HasErrors() {
		return nil
	}

	req.AccountType = accountType
	req.Currency = currency
	return req
}
