package reconcile

import (
	"context"
	"testing"
	"time"

	"makao/app/models/payment"
	"makao/pkg/gateway/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPending(t *testing.T, h *harness, trackingID string, age time.Duration) uint64 {
	t.Helper()

	record := &payment.Payment{
		Kind:              payment.KindRent,
		Provider:          string(types.ProviderPesapal),
		Amount:            decimal.NewFromInt(15000),
		UnitID:            ptr(42),
		MerchantReference: "RENT-" + trackingID,
		GatewayTrackingID: trackingID,
		Status:            payment.StatusPending,
	}
	require.NoError(t, h.ledger.Create(context.Background(), record))

	h.ledger.mu.Lock()
	h.ledger.records[record.ID].CreatedAt = time.Now().Add(-age)
	h.ledger.mu.Unlock()

	return record.ID
}

func TestSweeperExpiresAbandonedPayment(t *testing.T) {
	client := &fakeClient{provider: types.ProviderPesapal, feeRate: decimal.RequireFromString("3.5")}
	h := newHarness(client)

	id := seedPending(t, h, "track-old", 5*time.Hour)

	sweeper := NewSweeper(h.engine, time.Hour, time.Hour)
	sweeper.Sweep(context.Background())

	record, err := h.ledger.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, record.Status)
	assert.Equal(t, expiredReason, record.FailureReason)
	assert.Empty(t, h.units.rentCredits)
}

func TestSweeperPollsButKeepsRecentPending(t *testing.T) {
	client := &fakeClient{provider: types.ProviderPesapal, feeRate: decimal.RequireFromString("3.5")}
	h := newHarness(client)

	// stale enough to poll, too young to expire
	id := seedPending(t, h, "track-young", 90*time.Minute)

	sweeper := NewSweeper(h.engine, time.Hour, time.Hour)
	sweeper.Sweep(context.Background())

	assert.Equal(t, 1, client.queries, "gateway polled once")

	record, err := h.ledger.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, record.Status)
}

func TestSweeperCompletesLateConfirmation(t *testing.T) {
	client := &fakeClient{provider: types.ProviderPesapal, feeRate: decimal.RequireFromString("3.5")}
	h := newHarness(client)

	id := seedPending(t, h, "track-late", 5*time.Hour)

	// the gateway finally knows the outcome
	client.status = &types.StatusResult{
		TrackingID:  "track-late",
		State:       types.StateCompleted,
		ReceiptCode: "LATE1",
	}

	sweeper := NewSweeper(h.engine, time.Hour, time.Hour)
	sweeper.Sweep(context.Background())

	record, err := h.ledger.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, record.Status)
	assert.Equal(t, "LATE1", record.ReceiptCode)
	assert.Len(t, h.units.rentCredits, 1, "late confirmation still credits rent once")
}

func TestSweeperExpiresPaymentWithoutTrackingID(t *testing.T) {
	client := &fakeClient{provider: types.ProviderPesapal, feeRate: decimal.RequireFromString("3.5")}
	h := newHarness(client)

	// a crash between the ledger insert and the gateway submit leaves
	// a pending row with no tracking id, nothing will ever confirm it
	id := seedPending(t, h, "", 48*time.Hour)

	sweeper := NewSweeper(h.engine, time.Hour, time.Hour)
	sweeper.Sweep(context.Background())

	assert.Zero(t, client.queries, "nothing to poll without a tracking id")

	record, err := h.ledger.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, record.Status)
	assert.Equal(t, expiredReason, record.FailureReason)
}

func TestSweeperIgnoresFreshPayments(t *testing.T) {
	client := &fakeClient{provider: types.ProviderPesapal, feeRate: decimal.RequireFromString("3.5")}
	h := newHarness(client)

	seedPending(t, h, "track-fresh", 10*time.Minute)

	sweeper := NewSweeper(h.engine, time.Hour, time.Hour)
	sweeper.Sweep(context.Background())

	assert.Zero(t, client.queries, "fresh payments are left alone")
}
