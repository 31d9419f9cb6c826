package chainfeed

import (
	"fmt"
	"strings"

	"github.com/stellar/go-stellar-sdk/support/log"
)

type FeedType string

const (
	// FeedTypeEthereum subscribes to an EVM node over websocket.
	FeedTypeEthereum FeedType = "ETHEREUM"
	// FeedTypeSimulated is an in-process feed fed by the sandbox API, used in
	// development and tests.
	FeedTypeSimulated FeedType = "SIMULATED"
)

func ParseFeedType(feedTypeStr string) (FeedType, error) {
	feedTypeStrUpper := strings.ToUpper(feedTypeStr)
	fType := FeedType(feedTypeStrUpper)

	switch fType {
	case FeedTypeEthereum, FeedTypeSimulated:
		return fType, nil
	default:
		return "", fmt.Errorf("invalid feed type %q", feedTypeStrUpper)
	}
}

type ClientOptions struct {
	FeedType FeedType
	// FeedURL is the websocket endpoint of the EVM node. Required for the
	// ethereum feed, ignored otherwise.
	FeedURL string
	// Confirmations is the number of blocks behind the head a transaction
	// must be before it counts as finalized.
	Confirmations uint64
}

func GetClient(opts ClientOptions) (ClientInterface, error) {
	switch opts.FeedType {
	case FeedTypeEthereum:
		log.Infof("Using %q transfer feed", opts.FeedType)
		return NewEthereumClient(opts.FeedURL, opts.Confirmations)
	case FeedTypeSimulated:
		log.Warnf("Using %q transfer feed", opts.FeedType)
		return NewSimulatedClient(), nil
	default:
		return nil, fmt.Errorf("unknown feed type: %q", opts.FeedType)
	}
}
