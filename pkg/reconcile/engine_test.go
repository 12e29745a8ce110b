package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"makao/app/models/payment"
	"makao/pkg/correlation"
	"makao/pkg/gateway/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	mu      sync.Mutex
	nextID  uint64
	records map[uint64]*payment.Payment
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[uint64]*payment.Payment)}
}

func (l *fakeLedger) Create(_ context.Context, p *payment.Payment) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	p.ID = l.nextID
	p.CreatedAt = time.Now()
	clone := *p
	l.records[p.ID] = &clone
	return nil
}

func (l *fakeLedger) GetByID(_ context.Context, id uint64) (*payment.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.records[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	clone := *p
	return &clone, nil
}

func (l *fakeLedger) GetByTrackingID(_ context.Context, trackingID string) (*payment.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.records {
		if p.GatewayTrackingID == trackingID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, errors.New("record not found")
}

func (l *fakeLedger) SetTrackingID(_ context.Context, id uint64, trackingID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.records[id]; ok && p.GatewayTrackingID == "" {
		p.GatewayTrackingID = trackingID
	}
	return nil
}

func (l *fakeLedger) MarkCompleted(_ context.Context, id uint64, receiptCode string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.records[id]
	if !ok || p.Status != payment.StatusPending {
		return false, nil
	}
	p.Status = payment.StatusCompleted
	p.ReceiptCode = receiptCode
	return true, nil
}

func (l *fakeLedger) MarkFailed(_ context.Context, id uint64, reason string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.records[id]
	if !ok || p.Status != payment.StatusPending {
		return false, nil
	}
	p.Status = payment.StatusFailed
	p.FailureReason = reason
	return true, nil
}

func (l *fakeLedger) ListStalePending(_ context.Context, olderThan time.Time, limit int) ([]payment.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []payment.Payment
	for _, p := range l.records {
		if p.Status == payment.StatusPending && p.CreatedAt.Before(olderThan) {
			out = append(out, *p)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

type fakeUnits struct {
	mu             sync.Mutex
	rentCredits    []decimal.Decimal
	reserved       []uint64
	reservedTenant map[uint64]uint64
}

func newFakeUnits() *fakeUnits {
	return &fakeUnits{reservedTenant: make(map[uint64]uint64)}
}

func (u *fakeUnits) AddRentPaid(_ context.Context, _ uint64, amount decimal.Decimal) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.rentCredits = append(u.rentCredits, amount)
	return nil
}

func (u *fakeUnits) Reserve(_ context.Context, unitID uint64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.reserved = append(u.reserved, unitID)
	return nil
}

func (u *fakeUnits) ReserveForTenant(_ context.Context, unitID, tenantID uint64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.reservedTenant[unitID] = tenantID
	return nil
}

type fakeSubscriptions struct {
	mu      sync.Mutex
	renewed []uint64
}

func (s *fakeSubscriptions) Renew(_ context.Context, userID uint64, _ string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renewed = append(s.renewed, userID)
	return nil
}

type fakeCorrelations struct {
	mu      sync.Mutex
	entries map[string]*correlation.Entry
}

func newFakeCorrelations() *fakeCorrelations {
	return &fakeCorrelations{entries: make(map[string]*correlation.Entry)}
}

func (c *fakeCorrelations) Put(_ context.Context, trackingID string, entry *correlation.Entry, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[trackingID] = entry
}

func (c *fakeCorrelations) Get(_ context.Context, trackingID string) (*correlation.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[trackingID]
	if !ok {
		return nil, correlation.ErrNotFound
	}
	return entry, nil
}

func (c *fakeCorrelations) Delete(_ context.Context, trackingID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, trackingID)
}

type fakeNotifier struct {
	mu        sync.Mutex
	completed []uint64
}

func (n *fakeNotifier) PaymentCompleted(_ context.Context, p *payment.Payment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, p.ID)
}

type fakeClient struct {
	provider   types.Provider
	feeRate    decimal.Decimal
	trackingID string
	amountErr  error
	submitErr  error
	status     *types.StatusResult
	statusErr  error
	queries    int
}

func (c *fakeClient) Name() types.Provider                           { return c.provider }
func (c *fakeClient) FeeRate() decimal.Decimal                       { return c.feeRate }
func (c *fakeClient) ValidateAmount(decimal.Decimal) error           { return c.amountErr }
func (c *fakeClient) GetAccessToken(context.Context) (string, error) { return "token", nil }

func (c *fakeClient) SubmitOrder(_ context.Context, _ *types.OrderRequest) (*types.OrderResponse, error) {
	if c.submitErr != nil {
		return nil, c.submitErr
	}
	return &types.OrderResponse{TrackingID: c.trackingID, RedirectURL: "https://pay.example/redirect"}, nil
}

func (c *fakeClient) QueryStatus(_ context.Context, trackingID string) (*types.StatusResult, error) {
	c.queries++
	if c.statusErr != nil {
		return nil, c.statusErr
	}
	if c.status != nil {
		return c.status, nil
	}
	return &types.StatusResult{TrackingID: trackingID, State: types.StatePending}, nil
}

type harness struct {
	engine        *Engine
	ledger        *fakeLedger
	units         *fakeUnits
	subscriptions *fakeSubscriptions
	correlations  *fakeCorrelations
	notifier      *fakeNotifier
	client        *fakeClient
}

func newHarness(client *fakeClient) *harness {
	h := &harness{
		ledger:        newFakeLedger(),
		units:         newFakeUnits(),
		subscriptions: &fakeSubscriptions{},
		correlations:  newFakeCorrelations(),
		notifier:      &fakeNotifier{},
		client:        client,
	}
	h.engine = NewEngine(
		h.ledger, h.units, h.subscriptions, h.correlations,
		map[types.Provider]types.Client{client.provider: client},
		h.notifier,
		Config{},
	)
	return h
}

func ptr(v uint64) *uint64 { return &v }

func rentRequest() *InitiationRequest {
	return &InitiationRequest{
		Kind:        payment.KindRent,
		Provider:    types.ProviderPesapal,
		Amount:      decimal.NewFromInt(15000),
		PhoneNumber: "0712345678",
		Email:       "tenant@example.com",
		Description: "Rent for unit A1",
		TenantID:    ptr(7),
		UnitID:      ptr(42),
	}
}

func TestInitiateCreatesPendingLedgerRecord(t *testing.T) {
	client := &fakeClient{
		provider:   types.ProviderPesapal,
		feeRate:    decimal.RequireFromString("3.5"),
		trackingID: "track-001",
	}
	h := newHarness(client)

	result, err := h.engine.Initiate(context.Background(), rentRequest())
	require.NoError(t, err)

	assert.True(t, result.Net.Equal(decimal.NewFromInt(15000)))
	assert.True(t, result.Fee.Equal(decimal.RequireFromString("525.00")))
	assert.True(t, result.Total.Equal(decimal.RequireFromString("15525.00")))
	assert.Equal(t, "track-001", result.TrackingID)
	assert.NotEmpty(t, result.RedirectURL)

	record, err := h.ledger.GetByID(context.Background(), result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, record.Status)
	assert.True(t, record.Amount.Equal(decimal.NewFromInt(15000)), "ledger stores the net amount")
	assert.Equal(t, "track-001", record.GatewayTrackingID)
	assert.Equal(t, "254712345678", record.PhoneNumber)

	_, err = h.correlations.Get(context.Background(), "track-001")
	assert.NoError(t, err)
}

func TestInitiateSubmitFailureClosesRecord(t *testing.T) {
	client := &fakeClient{
		provider:  types.ProviderPesapal,
		feeRate:   decimal.RequireFromString("3.5"),
		submitErr: &types.TransportError{Provider: types.ProviderPesapal, Op: "submit_order", Err: errors.New("connection refused")},
	}
	h := newHarness(client)

	_, err := h.engine.Initiate(context.Background(), rentRequest())
	require.Error(t, err)

	record, err := h.ledger.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, record.Status)
	assert.Contains(t, record.FailureReason, "order submission failed")

	assert.Empty(t, h.correlations.entries)
}

func TestInitiateRejectsInvalidPhone(t *testing.T) {
	client := &fakeClient{provider: types.ProviderPesapal, feeRate: decimal.Zero}
	h := newHarness(client)

	req := rentRequest()
	req.PhoneNumber = "not-a-number"

	_, err := h.engine.Initiate(context.Background(), req)
	require.Error(t, err)

	var ve *types.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Empty(t, h.ledger.records)
}

func TestInitiateRejectsOutOfBoundsAmountBeforeLedgerWrite(t *testing.T) {
	client := &fakeClient{
		provider:  types.ProviderPesapal,
		feeRate:   decimal.RequireFromString("3.5"),
		amountErr: &types.ValidationError{Field: "amount", Reason: "must be between 10 and 500000 KES"},
	}
	h := newHarness(client)

	req := rentRequest()
	req.Amount = decimal.NewFromInt(900000)

	_, err := h.engine.Initiate(context.Background(), req)
	require.Error(t, err)

	var ve *types.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Empty(t, h.ledger.records, "rejected amounts never reach the ledger")
}

func TestInitiatePersistsSessionID(t *testing.T) {
	client := &fakeClient{
		provider:   types.ProviderMpesa,
		feeRate:    decimal.Zero,
		trackingID: "track-sess",
	}
	h := newHarness(client)

	result, err := h.engine.Initiate(context.Background(), &InitiationRequest{
		Kind:        payment.KindDepositRegistration,
		Provider:    types.ProviderMpesa,
		Amount:      decimal.NewFromInt(5000),
		PhoneNumber: "0712345678",
		Description: "Deposit during registration",
		UnitID:      ptr(42),
		SessionID:   "signup-7f3a",
	})
	require.NoError(t, err)

	// the signup link must survive correlation cache expiry
	h.correlations.Delete(context.Background(), "track-sess")

	record, err := h.ledger.GetByID(context.Background(), result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, "signup-7f3a", record.SessionID)
}

func TestDuplicateCallbackAppliesSideEffectsOnce(t *testing.T) {
	client := &fakeClient{
		provider:   types.ProviderPesapal,
		feeRate:    decimal.RequireFromString("3.5"),
		trackingID: "track-dup",
	}
	h := newHarness(client)

	_, err := h.engine.Initiate(context.Background(), rentRequest())
	require.NoError(t, err)

	status := &types.StatusResult{
		TrackingID:  "track-dup",
		State:       types.StateCompleted,
		ReceiptCode: "QA12BC34",
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, h.engine.ApplyOutcome(context.Background(), status))
	}

	assert.Len(t, h.units.rentCredits, 1, "rent credited exactly once")
	assert.True(t, h.units.rentCredits[0].Equal(decimal.NewFromInt(15000)))
	assert.Len(t, h.notifier.completed, 1, "notified exactly once")

	record, err := h.ledger.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, record.Status)
	assert.Equal(t, "QA12BC34", record.ReceiptCode)
}

func TestApplyOutcomeFallsBackToLedgerOnCacheMiss(t *testing.T) {
	client := &fakeClient{
		provider:   types.ProviderPesapal,
		feeRate:    decimal.RequireFromString("3.5"),
		trackingID: "track-miss",
	}
	h := newHarness(client)

	_, err := h.engine.Initiate(context.Background(), rentRequest())
	require.NoError(t, err)

	// simulate the correlation TTL expiring before the callback lands
	h.correlations.Delete(context.Background(), "track-miss")

	status := &types.StatusResult{
		TrackingID:  "track-miss",
		State:       types.StateCompleted,
		ReceiptCode: "RC99",
	}
	require.NoError(t, h.engine.ApplyOutcome(context.Background(), status))

	record, err := h.ledger.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, record.Status)
	assert.Len(t, h.units.rentCredits, 1)
}

func TestApplyOutcomeUnknownTrackingID(t *testing.T) {
	client := &fakeClient{provider: types.ProviderPesapal, feeRate: decimal.Zero}
	h := newHarness(client)

	err := h.engine.ApplyOutcome(context.Background(), &types.StatusResult{
		TrackingID: "never-seen",
		State:      types.StateCompleted,
	})
	assert.ErrorIs(t, err, ErrUnknownPayment)
}

func TestFailedOutcomeSkipsSideEffects(t *testing.T) {
	client := &fakeClient{
		provider:   types.ProviderPesapal,
		feeRate:    decimal.RequireFromString("3.5"),
		trackingID: "track-fail",
	}
	h := newHarness(client)

	_, err := h.engine.Initiate(context.Background(), rentRequest())
	require.NoError(t, err)

	require.NoError(t, h.engine.ApplyOutcome(context.Background(), &types.StatusResult{
		TrackingID:  "track-fail",
		State:       types.StateFailed,
		Description: "insufficient funds",
	}))

	record, err := h.ledger.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, record.Status)
	assert.Equal(t, "insufficient funds", record.FailureReason)
	assert.Empty(t, h.units.rentCredits)
	assert.Empty(t, h.notifier.completed)
	assert.Empty(t, h.correlations.entries)
}

func TestPendingOutcomeIsNoOp(t *testing.T) {
	client := &fakeClient{
		provider:   types.ProviderPesapal,
		feeRate:    decimal.RequireFromString("3.5"),
		trackingID: "track-wait",
	}
	h := newHarness(client)

	_, err := h.engine.Initiate(context.Background(), rentRequest())
	require.NoError(t, err)

	require.NoError(t, h.engine.ApplyOutcome(context.Background(), &types.StatusResult{
		TrackingID: "track-wait",
		State:      types.StatePending,
	}))

	record, err := h.ledger.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, record.Status)
}

func TestRegistrationDepositReservesWithoutTenant(t *testing.T) {
	client := &fakeClient{
		provider:   types.ProviderMpesa,
		feeRate:    decimal.Zero,
		trackingID: "track-reg",
	}
	h := newHarness(client)

	_, err := h.engine.Initiate(context.Background(), &InitiationRequest{
		Kind:        payment.KindDepositRegistration,
		Provider:    types.ProviderMpesa,
		Amount:      decimal.NewFromInt(5000),
		PhoneNumber: "0712345678",
		Description: "Deposit during registration",
		UnitID:      ptr(42),
	})
	require.NoError(t, err)

	require.NoError(t, h.engine.ApplyOutcome(context.Background(), &types.StatusResult{
		TrackingID:  "track-reg",
		State:       types.StateCompleted,
		ReceiptCode: "MP11",
	}))

	assert.Equal(t, []uint64{42}, h.units.reserved)
	assert.Empty(t, h.units.reservedTenant)
}

func TestSubscriptionPaymentRenews(t *testing.T) {
	client := &fakeClient{
		provider:   types.ProviderPesapal,
		feeRate:    decimal.RequireFromString("3.5"),
		trackingID: "track-sub",
	}
	h := newHarness(client)

	_, err := h.engine.Initiate(context.Background(), &InitiationRequest{
		Kind:        payment.KindSubscription,
		Provider:    types.ProviderPesapal,
		Amount:      decimal.NewFromInt(2500),
		PhoneNumber: "0712345678",
		Email:       "landlord@example.com",
		Description: "Basic plan",
		UserID:      ptr(9),
		Plan:        "basic",
	})
	require.NoError(t, err)

	require.NoError(t, h.engine.ApplyOutcome(context.Background(), &types.StatusResult{
		TrackingID:  "track-sub",
		State:       types.StateCompleted,
		ReceiptCode: "SB77",
	}))

	assert.Equal(t, []uint64{9}, h.subscriptions.renewed)
}

func TestPollAppliesGatewayState(t *testing.T) {
	client := &fakeClient{
		provider:   types.ProviderPesapal,
		feeRate:    decimal.RequireFromString("3.5"),
		trackingID: "track-poll",
	}
	h := newHarness(client)

	_, err := h.engine.Initiate(context.Background(), rentRequest())
	require.NoError(t, err)

	client.status = &types.StatusResult{
		TrackingID:  "track-poll",
		State:       types.StateCompleted,
		ReceiptCode: "PL55",
	}

	record, err := h.ledger.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, h.engine.Poll(context.Background(), record))

	fresh, err := h.ledger.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, fresh.Status)
	assert.Len(t, h.units.rentCredits, 1)
}

func TestStatusPollsPendingPayment(t *testing.T) {
	client := &fakeClient{
		provider:   types.ProviderPesapal,
		feeRate:    decimal.RequireFromString("3.5"),
		trackingID: "track-status",
	}
	h := newHarness(client)

	result, err := h.engine.Initiate(context.Background(), rentRequest())
	require.NoError(t, err)

	// the callback got lost, only the gateway knows the outcome
	client.status = &types.StatusResult{
		TrackingID:  "track-status",
		State:       types.StateCompleted,
		ReceiptCode: "ST88",
	}

	record, err := h.engine.Status(context.Background(), result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, 1, client.queries, "pending status read polls the gateway")
	assert.Equal(t, payment.StatusCompleted, record.Status)
	assert.Equal(t, "ST88", record.ReceiptCode)
	assert.Len(t, h.units.rentCredits, 1)
}

func TestStatusSurvivesGatewayOutage(t *testing.T) {
	client := &fakeClient{
		provider:   types.ProviderPesapal,
		feeRate:    decimal.RequireFromString("3.5"),
		trackingID: "track-down",
	}
	h := newHarness(client)

	result, err := h.engine.Initiate(context.Background(), rentRequest())
	require.NoError(t, err)

	client.statusErr = &types.TransportError{Provider: types.ProviderPesapal, Op: "query_status", Err: errors.New("timeout")}

	record, err := h.engine.Status(context.Background(), result.PaymentID)
	require.NoError(t, err, "a failed poll still answers with the ledger view")
	assert.Equal(t, payment.StatusPending, record.Status)
}

func TestStatusSkipsPollForTerminalPayment(t *testing.T) {
	client := &fakeClient{
		provider:   types.ProviderPesapal,
		feeRate:    decimal.RequireFromString("3.5"),
		trackingID: "track-done",
	}
	h := newHarness(client)

	result, err := h.engine.Initiate(context.Background(), rentRequest())
	require.NoError(t, err)

	require.NoError(t, h.engine.ApplyOutcome(context.Background(), &types.StatusResult{
		TrackingID:  "track-done",
		State:       types.StateCompleted,
		ReceiptCode: "DONE1",
	}))

	record, err := h.engine.Status(context.Background(), result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, record.Status)
	assert.Zero(t, client.queries, "terminal payments are never re-polled")
}

func TestConcurrentCallbackAndPollConverge(t *testing.T) {
	client := &fakeClient{
		provider:   types.ProviderPesapal,
		feeRate:    decimal.RequireFromString("3.5"),
		trackingID: "track-race",
	}
	h := newHarness(client)

	_, err := h.engine.Initiate(context.Background(), rentRequest())
	require.NoError(t, err)

	status := &types.StatusResult{
		TrackingID:  "track-race",
		State:       types.StateCompleted,
		ReceiptCode: "RACE1",
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.engine.ApplyOutcome(context.Background(), status)
		}()
	}
	wg.Wait()

	assert.Len(t, h.units.rentCredits, 1, "exactly one winner applied side effects")
	assert.Len(t, h.notifier.completed, 1)
}
