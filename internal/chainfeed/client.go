package chainfeed

import (
	"context"
	"errors"
)

// ErrFeedDisconnected is surfaced through Disconnects when the underlying
// feed connection drops. The reconciler owns the reconnection policy; the
// client never reconnects on its own.
var ErrFeedDisconnected = errors.New("transfer feed connection lost")

// TransferEvent is one observed token transfer. Events are unordered across
// addresses and ordered by arrival per underlying connection.
type TransferEvent struct {
	// From and To are blockchain addresses. They are not case-sensitive
	// identifiers; consumers must compare them case-insensitively.
	From   string
	To     string
	Amount string
	// TxRef identifies the transaction carrying the transfer, used to resolve
	// finality through ConfirmTransaction.
	TxRef string
}

// TransactionConfirmation is the finality proof for one transaction.
type TransactionConfirmation struct {
	TxHash    string
	Finalized bool
}

// ClientInterface abstracts one blockchain transfer feed connection.
type ClientInterface interface {
	// Subscribe starts delivering Transfer events for the given token
	// contract. It is idempotent per contract address within the process
	// lifetime: a second call for the same contract is a no-op.
	Subscribe(ctx context.Context, contractAddress string) error
	// Events delivers observed transfers. Consumers must drain this channel
	// promptly; slow per-event work belongs off the delivery path.
	Events() <-chan TransferEvent
	// Disconnects surfaces feed connection losses as ErrFeedDisconnected
	// conditions.
	Disconnects() <-chan error
	// ConfirmTransaction resolves the finality proof for an event. It may be
	// slow (network round-trip) and must never be called from the delivery
	// path.
	ConfirmTransaction(ctx context.Context, txRef string) (*TransactionConfirmation, error)
	// Close tears down all subscriptions.
	Close()
}
