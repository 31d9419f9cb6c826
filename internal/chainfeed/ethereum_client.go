package chainfeed

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stellar/go-stellar-sdk/support/log"
)

// transferTopic is the topic0 of the ERC-20 Transfer(address,address,uint256)
// event.
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

const (
	eventBufferSize      = 256
	confirmRetryAttempts = 3
	confirmRetryDelay    = 500 * time.Millisecond
)

// EthereumClient subscribes to ERC-20 Transfer logs on an EVM node over
// websocket. One filter subscription is kept per token contract.
type EthereumClient struct {
	client        *ethclient.Client
	confirmations uint64

	events      chan TransferEvent
	disconnects chan error

	mu            sync.Mutex
	subscriptions map[common.Address]ethereum.Subscription
	closed        bool
}

var _ ClientInterface = (*EthereumClient)(nil)

func NewEthereumClient(feedURL string, confirmations uint64) (*EthereumClient, error) {
	if feedURL == "" {
		return nil, fmt.Errorf("feedURL is required for the ethereum feed")
	}

	client, err := ethclient.Dial(feedURL)
	if err != nil {
		return nil, fmt.Errorf("dialing EVM node at %s: %w", feedURL, err)
	}

	return &EthereumClient{
		client:        client,
		confirmations: confirmations,
		events:        make(chan TransferEvent, eventBufferSize),
		disconnects:   make(chan error, 1),
		subscriptions: make(map[common.Address]ethereum.Subscription),
	}, nil
}

// Subscribe opens a Transfer log filter for the contract. Idempotent: a
// contract that already has a live subscription is left alone, so redundant
// calls never cause duplicate event delivery.
func (c *EthereumClient) Subscribe(ctx context.Context, contractAddress string) error {
	contract := common.HexToAddress(contractAddress)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("subscribing to %s: client is closed", contractAddress)
	}
	if _, ok := c.subscriptions[contract]; ok {
		return nil
	}

	query := ethereum.FilterQuery{
		Addresses: []common.Address{contract},
		Topics:    [][]common.Hash{{transferTopic}},
	}
	logs := make(chan types.Log, eventBufferSize)
	sub, err := c.client.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return fmt.Errorf("subscribing to Transfer logs for %s: %w", contractAddress, err)
	}

	c.subscriptions[contract] = sub
	go c.forwardLogs(contract, sub, logs)
	return nil
}

// forwardLogs translates raw logs into TransferEvents until the subscription
// errors out, at which point the disconnect is surfaced and the contract is
// released for resubscription.
func (c *EthereumClient) forwardLogs(contract common.Address, sub ethereum.Subscription, logs <-chan types.Log) {
	for {
		select {
		case lg := <-logs:
			event, ok := parseTransferLog(lg)
			if !ok {
				continue
			}
			c.events <- event
		case err := <-sub.Err():
			c.mu.Lock()
			delete(c.subscriptions, contract)
			closed := c.closed
			c.mu.Unlock()
			if closed || err == nil {
				return
			}

			log.Errorf("transfer feed subscription for %s dropped: %v", contract.Hex(), err)
			select {
			case c.disconnects <- fmt.Errorf("%w: %v", ErrFeedDisconnected, err):
			default:
			}
			return
		}
	}
}

func parseTransferLog(lg types.Log) (TransferEvent, bool) {
	if len(lg.Topics) != 3 || lg.Topics[0] != transferTopic {
		return TransferEvent{}, false
	}
	return TransferEvent{
		From:   common.BytesToAddress(lg.Topics[1].Bytes()).Hex(),
		To:     common.BytesToAddress(lg.Topics[2].Bytes()).Hex(),
		Amount: new(big.Int).SetBytes(lg.Data).String(),
		TxRef:  lg.TxHash.Hex(),
	}, true
}

func (c *EthereumClient) Events() <-chan TransferEvent {
	return c.events
}

func (c *EthereumClient) Disconnects() <-chan error {
	return c.disconnects
}

// ConfirmTransaction fetches the transaction receipt and reports whether the
// transaction is buried deep enough behind the chain head. A receipt that is
// not available yet is not an error: the transaction is simply not finalized.
func (c *EthereumClient) ConfirmTransaction(ctx context.Context, txRef string) (*TransactionConfirmation, error) {
	txHash := common.HexToHash(txRef)

	var receipt *types.Receipt
	err := retry.Do(
		func() error {
			var innerErr error
			receipt, innerErr = c.client.TransactionReceipt(ctx, txHash)
			return innerErr
		},
		retry.RetryIf(func(err error) bool { return !errors.Is(err, ethereum.NotFound) }),
		retry.Attempts(confirmRetryAttempts),
		retry.Delay(confirmRetryDelay),
		retry.Context(ctx),
	)
	if errors.Is(err, ethereum.NotFound) {
		return &TransactionConfirmation{TxHash: txHash.Hex(), Finalized: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting receipt for tx %s: %w", txRef, err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return &TransactionConfirmation{TxHash: txHash.Hex(), Finalized: false}, nil
	}

	head, err := c.client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting chain head: %w", err)
	}

	finalized := head >= receipt.BlockNumber.Uint64()+c.confirmations
	return &TransactionConfirmation{TxHash: txHash.Hex(), Finalized: finalized}, nil
}

func (c *EthereumClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for contract, sub := range c.subscriptions {
		sub.Unsubscribe()
		delete(c.subscriptions, contract)
	}
	c.client.Close()
}
