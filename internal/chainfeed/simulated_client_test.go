package chainfeed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SimulatedClient_Subscribe(t *testing.T) {
	ctx := context.Background()
	client := NewSimulatedClient()

	t.Run("🟢 is idempotent per contract", func(t *testing.T) {
		require.NoError(t, client.Subscribe(ctx, "0xAAAA"))
		require.NoError(t, client.Subscribe(ctx, "0xaaaa"))
		assert.Equal(t, 1, client.SubscriptionCount())

		require.NoError(t, client.Subscribe(ctx, "0xBBBB"))
		assert.Equal(t, 2, client.SubscriptionCount())
	})

	t.Run("🔴 fails after Close", func(t *testing.T) {
		client.Close()
		err := client.Subscribe(ctx, "0xCCCC")
		assert.ErrorContains(t, err, "client is closed")
	})
}

func Test_SimulatedClient_EmitTransfer(t *testing.T) {
	client := NewSimulatedClient()

	t.Run("🟢 delivers the event on the events channel", func(t *testing.T) {
		client.EmitTransfer(TransferEvent{From: "0x01", To: "0x02", Amount: "100", TxRef: "0xdead"})

		ev := <-client.Events()
		assert.Equal(t, "0x02", ev.To)
		assert.Equal(t, "100", ev.Amount)
		assert.Equal(t, "0xdead", ev.TxRef)
	})

	t.Run("🟢 fills in a random tx hash when missing", func(t *testing.T) {
		client.EmitTransfer(TransferEvent{From: "0x01", To: "0x02", Amount: "1"})

		ev := <-client.Events()
		assert.Regexp(t, "^0x[0-9a-f]{64}$", ev.TxRef)
	})

	t.Run("🔴 returns ErrFeedBacklogged when nothing drains the feed", func(t *testing.T) {
		backlogged := NewSimulatedClient()
		for i := 0; i < eventBufferSize; i++ {
			require.NoError(t, backlogged.EmitTransfer(TransferEvent{From: "0x01", To: "0x02", Amount: "1", TxRef: "0xfull"}))
		}

		err := backlogged.EmitTransfer(TransferEvent{From: "0x01", To: "0x02", Amount: "1", TxRef: "0xoverflow"})
		assert.ErrorIs(t, err, ErrFeedBacklogged)
		assert.ErrorContains(t, err, "emitting transfer 0xoverflow")
	})
}

func Test_SimulatedClient_ConfirmTransaction(t *testing.T) {
	ctx := context.Background()
	client := NewSimulatedClient()

	t.Run("🟢 defaults to finalized", func(t *testing.T) {
		confirmation, err := client.ConfirmTransaction(ctx, "0xabc")
		require.NoError(t, err)
		assert.True(t, confirmation.Finalized)
		assert.Equal(t, "0xabc", confirmation.TxHash)
	})

	t.Run("🟢 honors the programmed finality", func(t *testing.T) {
		client.SetFinalized("0xABC", false)
		confirmation, err := client.ConfirmTransaction(ctx, "0xabc")
		require.NoError(t, err)
		assert.False(t, confirmation.Finalized)

		client.SetFinalized("0xabc", true)
		confirmation, err = client.ConfirmTransaction(ctx, "0xABC")
		require.NoError(t, err)
		assert.True(t, confirmation.Finalized)
	})
}

func Test_SimulatedClient_SimulateDisconnect(t *testing.T) {
	ctx := context.Background()
	client := NewSimulatedClient()

	require.NoError(t, client.Subscribe(ctx, "0xAAAA"))
	client.SimulateDisconnect()

	assert.Equal(t, 0, client.SubscriptionCount())

	select {
	case err := <-client.Disconnects():
		assert.ErrorIs(t, err, ErrFeedDisconnected)
	default:
		t.Fatal("expected a disconnect notification")
	}
}
