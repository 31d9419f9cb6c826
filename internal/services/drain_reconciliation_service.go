package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stellar/go-stellar-sdk/support/log"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/chainfeed"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/monitor"
)

const receiptURLFormat = "https://dashboard.onramp-sandbox.dev/transactions/%s/receipt/%s"

type DrainReconciliationServiceInterface interface {
	Reconcile(ctx context.Context) error
}

type DrainReconciliationServiceOptions struct {
	Models         *data.Models
	FeedClient     chainfeed.ClientInterface
	TokenContract  string
	MonitorService monitor.MonitorServiceInterface
}

func (o DrainReconciliationServiceOptions) Validate() error {
	if o.Models == nil {
		return fmt.Errorf("models cannot be nil")
	}
	if o.FeedClient == nil {
		return fmt.Errorf("feed client cannot be nil")
	}
	if o.TokenContract == "" {
		return fmt.Errorf("token contract cannot be empty")
	}
	return nil
}

var _ DrainReconciliationServiceInterface = (*DrainReconciliationService)(nil)

// DrainReconciliationService drives one reconciliation tick: it attaches feed
// subscriptions for liquidation addresses that gained one since the last tick,
// drains the transfer event stream, confirms finality, and appends drains to
// the ledger. A tick never aborts because one address or event failed.
type DrainReconciliationService struct {
	models         *data.Models
	feedClient     chainfeed.ClientInterface
	tokenContract  string
	monitorService monitor.MonitorServiceInterface

	// subscribed tracks which liquidation addresses already have a live feed
	// subscription, keyed by liquidation address ID. Cleared on feed
	// disconnect so the next tick resubscribes everything.
	subscribedMu sync.Mutex
	subscribed   map[string]bool

	// pending holds transfer events whose deposit transaction was not yet
	// final when last inspected. They are retried on the next tick.
	pendingMu sync.Mutex
	pending   []chainfeed.TransferEvent
}

func NewDrainReconciliationService(opts DrainReconciliationServiceOptions) (*DrainReconciliationService, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("validating drain reconciliation service options: %w", err)
	}

	return &DrainReconciliationService{
		models:         opts.Models,
		feedClient:     opts.FeedClient,
		tokenContract:  opts.TokenContract,
		monitorService: opts.MonitorService,
		subscribed:     map[string]bool{},
	}, nil
}

// Reconcile runs one tick. Per-address and per-event failures are collected
// and logged; the tick itself only fails when it cannot run at all.
func (s *DrainReconciliationService) Reconcile(ctx context.Context) error {
	startedAt := time.Now()

	s.handleDisconnects(ctx)

	watched := s.models.LiquidationAddresses.ListAll(ctx)
	subscribeErrs := s.ensureSubscriptions(ctx, watched)

	events := s.collectEvents()
	eventErrs := s.processEvents(ctx, watched, events)

	if s.monitorService != nil {
		if err := s.monitorService.MonitorDuration(time.Since(startedAt), monitor.DrainReconciliationDurationTag, nil); err != nil {
			log.Ctx(ctx).Errorf("monitoring reconciliation duration: %v", err)
		}
	}

	if err := errors.Join(append(subscribeErrs, eventErrs...)...); err != nil {
		log.Ctx(ctx).Errorf("drain reconciliation tick finished with errors: %v", err)
	}
	return nil
}

// handleDisconnects drains the disconnect channel. On disconnect the
// subscription record is wiped, so ensureSubscriptions reattaches every
// watched address on this same tick.
func (s *DrainReconciliationService) handleDisconnects(ctx context.Context) {
	disconnected := false
	for {
		select {
		case err := <-s.feedClient.Disconnects():
			disconnected = true
			log.Ctx(ctx).Warnf("transfer feed disconnected: %v", err)
		default:
			if disconnected {
				s.subscribedMu.Lock()
				s.subscribed = map[string]bool{}
				s.subscribedMu.Unlock()
			}
			return
		}
	}
}

// ensureSubscriptions attaches a feed subscription for every watched address
// that does not have one yet. A failed subscribe is not recorded, so it is
// retried on the next tick.
func (s *DrainReconciliationService) ensureSubscriptions(ctx context.Context, watched []data.WatchedAddress) []error {
	var errs []error
	for _, wa := range watched {
		s.subscribedMu.Lock()
		alreadySubscribed := s.subscribed[wa.LiquidationAddressID]
		s.subscribedMu.Unlock()
		if alreadySubscribed {
			continue
		}

		if err := s.feedClient.Subscribe(ctx, s.tokenContract); err != nil {
			errs = append(errs, fmt.Errorf("subscribing feed for liquidation address %s: %w", wa.LiquidationAddressID, err))
			continue
		}

		s.subscribedMu.Lock()
		s.subscribed[wa.LiquidationAddressID] = true
		s.subscribedMu.Unlock()
	}
	return errs
}

// collectEvents returns the events queued from previous ticks plus everything
// currently buffered in the feed channel, without blocking.
func (s *DrainReconciliationService) collectEvents() []chainfeed.TransferEvent {
	s.pendingMu.Lock()
	events := s.pending
	s.pending = nil
	s.pendingMu.Unlock()

	for {
		select {
		case ev := <-s.feedClient.Events():
			events = append(events, ev)
		default:
			return events
		}
	}
}

// processEvents fans events out to goroutines so one slow finality check does
// not serialize the rest of the tick.
func (s *DrainReconciliationService) processEvents(ctx context.Context, watched []data.WatchedAddress, events []chainfeed.TransferEvent) []error {
	if len(events) == 0 {
		return nil
	}

	index := make(map[string]data.WatchedAddress, len(watched))
	for _, wa := range watched {
		index[strings.ToLower(wa.Address)] = wa
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(events))
	for _, ev := range events {
		wg.Add(1)
		go func(ev chainfeed.TransferEvent) {
			defer wg.Done()
			if err := s.processEvent(ctx, index, ev); err != nil {
				errCh <- err
			}
		}(ev)
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errs
}

func (s *DrainReconciliationService) processEvent(ctx context.Context, index map[string]data.WatchedAddress, ev chainfeed.TransferEvent) error {
	wa, ok := index[strings.ToLower(ev.To)]
	if !ok {
		// Transfer to an address we do not manage. Silently discarded.
		log.Ctx(ctx).Debugf("discarding transfer event to unmanaged address %s", ev.To)
		return nil
	}

	confirmation, err := s.feedClient.ConfirmTransaction(ctx, ev.TxRef)
	if err != nil {
		s.requeue(ev)
		return fmt.Errorf("confirming transaction %s: %w", ev.TxRef, err)
	}
	if !confirmation.Finalized {
		s.requeue(ev)
		return nil
	}

	destinationCurrency := wa.DestinationCurrency
	if destinationCurrency == "" {
		destinationCurrency = data.CurrencyUSD
	}

	drain := data.Drain{
		ID:            uuid.NewString(),
		Amount:        ev.Amount,
		State:         data.DrainStateFundsReceived,
		CreatedAt:     time.Now().UTC(),
		DepositTxHash: confirmation.TxHash,
		Receipt: data.DrainReceipt{
			DestinationCurrency: destinationCurrency,
			URL:                 fmt.Sprintf(receiptURLFormat, confirmation.TxHash, uuid.NewString()),
		},
	}

	err = s.models.LiquidationAddresses.RecordDrain(ctx, wa.CustomerID, wa.LiquidationAddressID, drain)
	if errors.Is(err, data.ErrDrainAlreadyRecorded) {
		// Feed redelivery. The first drain for this deposit already stands.
		log.Ctx(ctx).Debugf("skipping already recorded drain for tx %s", confirmation.TxHash)
		return nil
	}
	if err != nil {
		return fmt.Errorf("recording drain for tx %s: %w", confirmation.TxHash, err)
	}

	log.Ctx(ctx).Infof("recorded drain of %s into liquidation address %s (tx %s)", ev.Amount, wa.LiquidationAddressID, confirmation.TxHash)
	if s.monitorService != nil {
		labels := map[string]string{"chain": wa.Chain, "currency": wa.Currency}
		if monitorErr := s.monitorService.MonitorCounters(monitor.DrainsDetectedCounterTag, labels); monitorErr != nil {
			log.Ctx(ctx).Errorf("monitoring drains detected counter: %v", monitorErr)
		}
	}
	return nil
}

func (s *DrainReconciliationService) requeue(ev chainfeed.TransferEvent) {
	s.pendingMu.Lock()
	s.pending = append(s.pending, ev)
	s.pendingMu.Unlock()
}
