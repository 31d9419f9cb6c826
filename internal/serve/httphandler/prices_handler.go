package httphandler

import (
	"math/rand"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stellar/go-stellar-sdk/support/render/httpjson"
)

// quoteNetworkArbitrumOne is the only network the token price endpoint quotes.
const quoteNetworkArbitrumOne = "arbitrum-one"

// PricesHandler emulates the upstream price oracle API. Quotes are random on
// every call; consumers only need the response shape, not stable prices. The
// oracle uses its own flat error envelope rather than the {code, message} one.
type PricesHandler struct{}

type priceErrorResponse struct {
	Error string `json:"error"`
}

func renderPriceError(w http.ResponseWriter, message string) {
	httpjson.RenderStatus(w, http.StatusBadRequest, priceErrorResponse{Error: message}, httpjson.JSON)
}

// GetSimplePrice quotes each requested asset id against each requested vs
// currency.
func (h PricesHandler) GetSimplePrice(w http.ResponseWriter, r *http.Request) {
	ids := r.URL.Query().Get("ids")
	if ids == "" {
		renderPriceError(w, "Missing parameter ids")
		return
	}
	vsCurrencies := r.URL.Query().Get("vs_currencies")
	if vsCurrencies == "" {
		renderPriceError(w, "Missing parameter vs_currencies")
		return
	}

	httpjson.Render(w, quoteMatrix(strings.Split(ids, ","), strings.Split(vsCurrencies, ",")), httpjson.JSON)
}

// GetTokenPrice quotes each requested token contract against each requested
// vs currency. Only the arbitrum-one network is supported.
func (h PricesHandler) GetTokenPrice(w http.ResponseWriter, r *http.Request) {
	contractAddresses := r.URL.Query().Get("contract_addresses")
	if contractAddresses == "" {
		renderPriceError(w, "Missing parameter contract_addresses")
		return
	}
	vsCurrencies := r.URL.Query().Get("vs_currencies")
	if vsCurrencies == "" {
		renderPriceError(w, "Missing parameter vs_currencies")
		return
	}

	if chi.URLParam(r, "networkName") != quoteNetworkArbitrumOne {
		renderPriceError(w, "Invalid network")
		return
	}

	addresses := strings.Split(strings.ToLower(contractAddresses), ",")
	httpjson.Render(w, quoteMatrix(addresses, strings.Split(vsCurrencies, ",")), httpjson.JSON)
}

func quoteMatrix(keys, vsCurrencies []string) map[string]map[string]float64 {
	quotes := make(map[string]map[string]float64, len(keys))
	for _, key := range keys {
		quotes[key] = make(map[string]float64, len(vsCurrencies))
		for _, currency := range vsCurrencies {
			quotes[key][currency] = randomQuote()
		}
	}
	return quotes
}

// randomQuote draws a price in [0, 1000) rounded to 6 decimal places.
func randomQuote() float64 {
	return decimal.NewFromFloat(rand.Float64() * 1000).Round(6).InexactFloat64()
}
