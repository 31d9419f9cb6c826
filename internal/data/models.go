package data

import (
	"errors"
)

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrRecordAlreadyExists = errors.New("record already exists")
	ErrMissingInput        = errors.New("missing input")
	// ErrAmbiguousRecord signals a corrupted uniqueness invariant, e.g. two
	// customers holding the same session token. It is never recoverable by the
	// caller and must surface as an internal error.
	ErrAmbiguousRecord = errors.New("more than one record matched a unique key")
	// ErrDrainAlreadyRecorded enforces the at-most-one-drain-per-(address, tx hash)
	// contract. Redelivered feed events hit this and are skipped.
	ErrDrainAlreadyRecorded = errors.New("drain already recorded for this transaction hash")
)

type Models struct {
	Customers            *CustomerModel
	ExternalAccounts     *ExternalAccountModel
	LiquidationAddresses *LiquidationAddressModel
	Store                *Store
}

func NewModels(store *Store) (*Models, error) {
	if store == nil {
		return nil, errors.New("store is required for NewModels")
	}
	return &Models{
		Customers:            &CustomerModel{store: store},
		ExternalAccounts:     &ExternalAccountModel{store: store},
		LiquidationAddresses: &LiquidationAddressModel{store: store},
		Store:                store,
	}, nil
}
