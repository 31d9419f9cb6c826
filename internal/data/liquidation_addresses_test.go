package data

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LiquidationAddressModel_Insert(t *testing.T) {
	ctx := context.Background()
	models := newTestModels(t)

	require.NoError(t, models.Customers.Insert(ctx, Customer{ID: "cust-1"}))
	require.NoError(t, models.Customers.Insert(ctx, Customer{ID: "cust-2"}))

	t.Run("🔴 id and address are required", func(t *testing.T) {
		err := models.LiquidationAddresses.Insert(ctx, "cust-1", LiquidationAddress{ID: "la-1"})
		assert.ErrorIs(t, err, ErrMissingInput)
	})

	t.Run("🟢 inserts a new liquidation address", func(t *testing.T) {
		err := models.LiquidationAddresses.Insert(ctx, "cust-1", LiquidationAddress{
			ID:      "la-1",
			Chain:   ChainArbitrum,
			Address: "0xAAAA567890123456789012345678901234567890",
		})
		require.NoError(t, err)

		got, err := models.LiquidationAddresses.Get(ctx, "cust-1", "la-1")
		require.NoError(t, err)
		assert.Equal(t, ChainArbitrum, got.Chain)
	})

	t.Run("🔴 address values are unique across customers, case-insensitively", func(t *testing.T) {
		err := models.LiquidationAddresses.Insert(ctx, "cust-2", LiquidationAddress{
			ID:      "la-2",
			Address: strings.ToLower("0xAAAA567890123456789012345678901234567890"),
		})
		assert.ErrorIs(t, err, ErrRecordAlreadyExists)
	})
}

func Test_LiquidationAddressModel_RecordDrain(t *testing.T) {
	ctx := context.Background()
	models := newTestModels(t)

	require.NoError(t, models.Customers.Insert(ctx, Customer{ID: "cust-1"}))
	require.NoError(t, models.LiquidationAddresses.Insert(ctx, "cust-1", LiquidationAddress{
		ID:      "la-1",
		Address: "0x1234567890123456789012345678901234567890",
	}))

	txHash := "0x" + strings.Repeat("ef", 32)
	drain := Drain{
		ID:            "drain-1",
		Amount:        "500000",
		State:         DrainStateFundsReceived,
		CreatedAt:     time.Now().UTC(),
		DepositTxHash: txHash,
	}

	t.Run("🟢 records the first drain", func(t *testing.T) {
		require.NoError(t, models.LiquidationAddresses.RecordDrain(ctx, "cust-1", "la-1", drain))

		drains, err := models.LiquidationAddresses.GetDrains(ctx, "cust-1", "la-1")
		require.NoError(t, err)
		require.Len(t, drains, 1)
		assert.Equal(t, "500000", drains[0].Amount)
	})

	t.Run("🔴 rejects a duplicate tx hash with different casing", func(t *testing.T) {
		dup := drain
		dup.ID = "drain-2"
		dup.DepositTxHash = strings.ToUpper(txHash)
		err := models.LiquidationAddresses.RecordDrain(ctx, "cust-1", "la-1", dup)
		assert.ErrorIs(t, err, ErrDrainAlreadyRecorded)
	})

	t.Run("🔴 unknown liquidation address", func(t *testing.T) {
		err := models.LiquidationAddresses.RecordDrain(ctx, "cust-1", "missing", drain)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func Test_LiquidationAddressModel_ListAll(t *testing.T) {
	ctx := context.Background()
	models := newTestModels(t)

	assert.Empty(t, models.LiquidationAddresses.ListAll(ctx))

	require.NoError(t, models.Customers.Insert(ctx, Customer{ID: "cust-1"}))
	require.NoError(t, models.Customers.Insert(ctx, Customer{ID: "cust-2"}))
	require.NoError(t, models.LiquidationAddresses.Insert(ctx, "cust-1", LiquidationAddress{
		ID: "la-1", Address: "0x1111111111111111111111111111111111111111", DestinationCurrency: CurrencyEUR,
	}))
	require.NoError(t, models.LiquidationAddresses.Insert(ctx, "cust-2", LiquidationAddress{
		ID: "la-2", Address: "0x2222222222222222222222222222222222222222",
	}))

	watched := models.LiquidationAddresses.ListAll(ctx)
	require.Len(t, watched, 2)

	byID := map[string]WatchedAddress{}
	for _, wa := range watched {
		byID[wa.LiquidationAddressID] = wa
	}
	assert.Equal(t, "cust-1", byID["la-1"].CustomerID)
	assert.Equal(t, CurrencyEUR, byID["la-1"].DestinationCurrency)
	assert.Equal(t, "cust-2", byID["la-2"].CustomerID)
}
