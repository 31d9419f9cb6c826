package data

import (
	"strings"
	"sync"
)

// Store is the in-memory ledger backing all models. A single RWMutex guards
// the whole customer tree: request handlers and the background reconciler both
// mutate it, and the expected throughput is low enough that one coarse lock is
// preferable to per-collection locking.
//
// Lock discipline: every model operation acquires the lock for the duration of
// the mutation or snapshot copy and releases it before returning. Nothing
// holds the lock across I/O.
type Store struct {
	mu        sync.RWMutex
	customers map[string]*Customer
	// addressIndex maps the lowercased liquidation address value to its owning
	// (customer id, liquidation address id) pair. Address values are globally
	// unique so the reconciler can attribute a transfer event by destination
	// alone.
	addressIndex map[string]addressRef
}

type addressRef struct {
	CustomerID           string
	LiquidationAddressID string
}

func NewStore() *Store {
	return &Store{
		customers:    make(map[string]*Customer),
		addressIndex: make(map[string]addressRef),
	}
}

// addressExists reports whether an address value is already taken anywhere in
// the ledger. Callers must hold s.mu.
func (s *Store) addressExists(address string) bool {
	_, ok := s.addressIndex[strings.ToLower(address)]
	return ok
}
