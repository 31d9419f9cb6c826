package httphandler

import (
	"net/http"

	"github.com/stellar/go-stellar-sdk/support/http/httpdecode"
	"github.com/stellar/go-stellar-sdk/support/log"
	"github.com/stellar/go-stellar-sdk/support/render/httpjson"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/chainfeed"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve/httperror"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/utils"
)

// SandboxHandler injects transfer events into the simulated feed, so clients
// can drive the drain detection flow end to end without a blockchain.
// Simulator is nil when the ethereum feed is configured.
type SandboxHandler struct {
	Simulator chainfeed.Simulator
}

// SandboxTransferRequest is the transfer to inject. TxRef is optional; a
// random transaction hash is assigned when it is omitted.
type SandboxTransferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
	TxRef  string `json:"tx_ref"`
}

// PostTransfers queues one transfer event on the simulated feed. The drain
// reconciler observes it on its next tick.
func (h SandboxHandler) PostTransfers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Simulator == nil {
		httperror.NotImplemented("transfer injection is only available with the simulated feed", nil).Render(w)
		return
	}

	var reqBody SandboxTransferRequest
	if err := httpdecode.DecodeJSON(r, &reqBody); err != nil {
		httperror.BadRequest("", err).Render(w)
		return
	}

	if err := utils.ValidateBlockchainAddress(reqBody.To); err != nil {
		httperror.BadRequest(err.Error(), err).Render(w)
		return
	}
	if err := utils.ValidateAmount(reqBody.Amount); err != nil {
		httperror.BadRequest(err.Error(), err).Render(w)
		return
	}
	if reqBody.From != "" {
		if err := utils.ValidateBlockchainAddress(reqBody.From); err != nil {
			httperror.BadRequest(err.Error(), err).Render(w)
			return
		}
	}
	if reqBody.TxRef != "" {
		if err := utils.ValidateTransactionHash(reqBody.TxRef); err != nil {
			httperror.BadRequest(err.Error(), err).Render(w)
			return
		}
	}

	err := h.Simulator.EmitTransfer(chainfeed.TransferEvent{
		From:   reqBody.From,
		To:     reqBody.To,
		Amount: reqBody.Amount,
		TxRef:  reqBody.TxRef,
	})
	if err != nil {
		httperror.ServiceUnavailable("the transfer feed is not accepting events, is the reconciler running?", err).Render(w)
		return
	}
	log.Ctx(ctx).Infof("queued sandbox transfer of %s to %s", reqBody.Amount, reqBody.To)

	httpjson.RenderStatus(w, http.StatusAccepted, map[string]string{"status": "queued"}, httpjson.JSON)
}
