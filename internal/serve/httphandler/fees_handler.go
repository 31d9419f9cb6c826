package httphandler

import (
	"net/http"

	"github.com/stellar/go-stellar-sdk/support/render/httpjson"
)

// FeesHandler exposes the developer fee configuration. The sandbox fee
// schedule is static.
type FeesHandler struct{}

// FeesResponse carries the fee percentages as decimal strings.
type FeesResponse struct {
	DefaultLiquidationAddressFeePercent string `json:"default_liquidation_address_fee_percent"`
}

func (h FeesHandler) GetDeveloperFees(w http.ResponseWriter, r *http.Request) {
	httpjson.Render(w, FeesResponse{DefaultLiquidationAddressFeePercent: "1.3"}, httpjson.JSON)
}
