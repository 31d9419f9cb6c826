package chainfeed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrFeedBacklogged is returned by EmitTransfer when the event buffer is
// full, which happens when nothing consumes the feed (scheduler disabled).
var ErrFeedBacklogged = errors.New("transfer feed buffer is full")

// Simulator is the injection surface the sandbox API uses to push transfer
// events into the feed.
type Simulator interface {
	EmitTransfer(event TransferEvent) error
}

// SimulatedClient is a channel-backed transfer feed for the sandbox mode.
// Transfers are injected through EmitTransfer; finality per transaction is
// programmable and defaults to finalized.
type SimulatedClient struct {
	events      chan TransferEvent
	disconnects chan error

	mu          sync.Mutex
	contracts   map[string]bool
	unfinalized map[string]bool
	closed      bool
}

var (
	_ ClientInterface = (*SimulatedClient)(nil)
	_ Simulator       = (*SimulatedClient)(nil)
)

func NewSimulatedClient() *SimulatedClient {
	return &SimulatedClient{
		events:      make(chan TransferEvent, eventBufferSize),
		disconnects: make(chan error, 1),
		contracts:   make(map[string]bool),
		unfinalized: make(map[string]bool),
	}
}

// Subscribe records the contract. Idempotent per contract address.
func (c *SimulatedClient) Subscribe(_ context.Context, contractAddress string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("subscribing to %s: client is closed", contractAddress)
	}
	c.contracts[strings.ToLower(contractAddress)] = true
	return nil
}

// SubscriptionCount reports how many distinct contracts are subscribed.
func (c *SimulatedClient) SubscriptionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.contracts)
}

// EmitTransfer injects a transfer event into the feed. Events for contracts
// nobody subscribed to are delivered as well, mirroring the unrelated traffic
// present on a shared feed. A missing TxRef gets a random transaction hash.
// The send never blocks: with no consumer draining the feed the buffer fills
// up and ErrFeedBacklogged is returned instead.
func (c *SimulatedClient) EmitTransfer(event TransferEvent) error {
	if event.TxRef == "" {
		event.TxRef = randomTxHash()
	}

	select {
	case c.events <- event:
		return nil
	default:
		return fmt.Errorf("emitting transfer %s: %w", event.TxRef, ErrFeedBacklogged)
	}
}

// SetFinalized overrides the finality reported for a transaction reference.
func (c *SimulatedClient) SetFinalized(txRef string, finalized bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if finalized {
		delete(c.unfinalized, strings.ToLower(txRef))
	} else {
		c.unfinalized[strings.ToLower(txRef)] = true
	}
}

// SimulateDisconnect surfaces a feed-disconnected condition, as a dropped
// websocket would.
func (c *SimulatedClient) SimulateDisconnect() {
	c.mu.Lock()
	c.contracts = make(map[string]bool)
	c.mu.Unlock()

	select {
	case c.disconnects <- ErrFeedDisconnected:
	default:
	}
}

func (c *SimulatedClient) Events() <-chan TransferEvent {
	return c.events
}

func (c *SimulatedClient) Disconnects() <-chan error {
	return c.disconnects
}

func (c *SimulatedClient) ConfirmTransaction(_ context.Context, txRef string) (*TransactionConfirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &TransactionConfirmation{
		TxHash:    txRef,
		Finalized: !c.unfinalized[strings.ToLower(txRef)],
	}, nil
}

func (c *SimulatedClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func randomTxHash() string {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		panic(fmt.Errorf("reading random bytes: %w", err))
	}
	return "0x" + hex.EncodeToString(raw[:])
}
