// Package reconcile correlates gateway confirmations with the payment
// ledger and applies side effects exactly once.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"makao/app/models/payment"
	"makao/pkg/correlation"
	"makao/pkg/fee"
	"makao/pkg/gateway/types"
	"makao/pkg/gateway/utils"
	"makao/pkg/logger"

	"github.com/shopspring/decimal"
)

// ErrUnknownPayment no ledger record matches the tracking id.
var ErrUnknownPayment = errors.New("reconcile: no payment for tracking id")

// PaymentLedger ledger operations the engine needs.
type PaymentLedger interface {
	Create(ctx context.Context, p *payment.Payment) error
	GetByID(ctx context.Context, id uint64) (*payment.Payment, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*payment.Payment, error)
	SetTrackingID(ctx context.Context, id uint64, trackingID string) error
	MarkCompleted(ctx context.Context, id uint64, receiptCode string) (bool, error)
	MarkFailed(ctx context.Context, id uint64, reason string) (bool, error)
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]payment.Payment, error)
}

// UnitStore unit operations driven by confirmed payments.
type UnitStore interface {
	AddRentPaid(ctx context.Context, unitID uint64, amount decimal.Decimal) error
	Reserve(ctx context.Context, unitID uint64) error
	ReserveForTenant(ctx context.Context, unitID, tenantID uint64) error
}

// SubscriptionStore subscription renewal driven by confirmed payments.
type SubscriptionStore interface {
	Renew(ctx context.Context, userID uint64, plan string, period time.Duration) error
}

// CorrelationStore in-flight tracking id index.
type CorrelationStore interface {
	Put(ctx context.Context, trackingID string, entry *correlation.Entry, ttl time.Duration)
	Get(ctx context.Context, trackingID string) (*correlation.Entry, error)
	Delete(ctx context.Context, trackingID string)
}

// Notifier receives confirmed payments for customer notification.
type Notifier interface {
	PaymentCompleted(ctx context.Context, p *payment.Payment)
}

// Config engine tuning knobs.
type Config struct {
	// PendingTTL covers the window between order submission and the
	// gateway confirmation, AuthenticatedTTL the shorter window after
	// a checkout session is already authenticated.
	PendingTTL       time.Duration
	AuthenticatedTTL time.Duration
	// BillingPeriod how long one subscription payment buys.
	BillingPeriod time.Duration
}

// Engine the reconciliation core. One instance serves initiation,
// webhook, polling and sweeper paths so every confirmation funnels
// through the same terminal transition.
type Engine struct {
	ledger        PaymentLedger
	units         UnitStore
	subscriptions SubscriptionStore
	correlations  CorrelationStore
	clients       map[types.Provider]types.Client
	notifier      Notifier
	config        Config
}

// NewEngine wires an engine.
func NewEngine(
	ledger PaymentLedger,
	units UnitStore,
	subscriptions SubscriptionStore,
	correlations CorrelationStore,
	clients map[types.Provider]types.Client,
	notifier Notifier,
	config Config,
) *Engine {
	if config.PendingTTL <= 0 {
		config.PendingTTL = 30 * time.Minute
	}
	if config.AuthenticatedTTL <= 0 {
		config.AuthenticatedTTL = 5 * time.Minute
	}
	if config.BillingPeriod <= 0 {
		config.BillingPeriod = 30 * 24 * time.Hour
	}

	return &Engine{
		ledger:        ledger,
		units:         units,
		subscriptions: subscriptions,
		correlations:  correlations,
		clients:       clients,
		notifier:      notifier,
		config:        config,
	}
}

// InitiationRequest a charge to start. Amount is the net amount owed,
// the gateway fee gets added on top.
type InitiationRequest struct {
	Kind        string
	Provider    types.Provider
	Amount      decimal.Decimal
	PhoneNumber string
	Email       string
	Description string

	TenantID *uint64
	UnitID   *uint64
	UserID   *uint64
	Plan     string

	// SessionID ties a registration deposit back to the signup session
	SessionID string
}

// InitiationResult what the caller gets back after a submitted order.
type InitiationResult struct {
	PaymentID         uint64
	MerchantReference string
	TrackingID        string
	RedirectURL       string
	Net               decimal.Decimal
	Fee               decimal.Decimal
	Total             decimal.Decimal
}

// Initiate creates a pending ledger record and pushes the charge to
// the gateway. The record is created before the network call so a
// crash mid-submission leaves an auditable pending row, and marked
// failed if the gateway never accepted the order.
func (e *Engine) Initiate(ctx context.Context, req *InitiationRequest) (*InitiationResult, error) {
	client, ok := e.clients[req.Provider]
	if !ok {
		return nil, fmt.Errorf("reconcile: no client for provider %q", req.Provider)
	}

	charge, err := fee.ComputeCharge(req.Amount, client.FeeRate())
	if err != nil {
		return nil, err
	}

	phone, err := utils.FormatPhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	// bounds are checked here so a rejected amount never touches the
	// ledger, the client re-checks before the network call
	if err := client.ValidateAmount(charge.Total); err != nil {
		return nil, err
	}

	record := &payment.Payment{
		Kind:              req.Kind,
		Provider:          string(req.Provider),
		Amount:            charge.Net,
		TenantID:          req.TenantID,
		UnitID:            req.UnitID,
		UserID:            req.UserID,
		Plan:              req.Plan,
		MerchantReference: utils.NewMerchantReference(req.Kind),
		SessionID:         req.SessionID,
		Status:            payment.StatusPending,
		Description:       req.Description,
		PhoneNumber:       phone,
		Email:             req.Email,
	}
	if err := e.ledger.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("reconcile: create ledger record: %w", err)
	}

	order, err := client.SubmitOrder(ctx, &types.OrderRequest{
		MerchantReference: record.MerchantReference,
		Amount:            charge.Total,
		PhoneNumber:       phone,
		Email:             req.Email,
		Description:       req.Description,
	})
	if err != nil {
		// the gateway never took the order, close the row out
		if _, failErr := e.ledger.MarkFailed(ctx, record.ID, "order submission failed: "+err.Error()); failErr != nil {
			logger.ErrorString("Reconcile", "Initiate", failErr.Error())
		}
		return nil, err
	}

	if err := e.ledger.SetTrackingID(ctx, record.ID, order.TrackingID); err != nil {
		logger.ErrorString("Reconcile", "Initiate", err.Error())
	}

	// STK push runs inside an already authenticated phone session, so
	// its confirmation window is much shorter than a hosted checkout
	ttl := e.config.PendingTTL
	if req.Provider == types.ProviderMpesa {
		ttl = e.config.AuthenticatedTTL
	}

	e.correlations.Put(ctx, order.TrackingID, &correlation.Entry{
		PaymentID:         record.ID,
		Kind:              record.Kind,
		Amount:            charge.Net.String(),
		UnitID:            record.UnitID,
		TenantID:          record.TenantID,
		UserID:            record.UserID,
		Plan:              record.Plan,
		MerchantReference: record.MerchantReference,
		SessionID:         req.SessionID,
		CreatedAt:         time.Now(),
	}, ttl)

	return &InitiationResult{
		PaymentID:         record.ID,
		MerchantReference: record.MerchantReference,
		TrackingID:        order.TrackingID,
		RedirectURL:       order.RedirectURL,
		Net:               charge.Net,
		Fee:               charge.Fee,
		Total:             charge.Total,
	}, nil
}

// ApplyOutcome resolves a gateway status against the ledger. Safe to
// call any number of times from any path: the first caller to land a
// terminal status wins the transition and applies side effects, every
// later call is a no-op.
func (e *Engine) ApplyOutcome(ctx context.Context, status *types.StatusResult) error {
	if status.State == types.StatePending {
		return nil
	}

	record, err := e.resolve(ctx, status.TrackingID)
	if err != nil {
		return err
	}

	if status.State == types.StateFailed {
		won, err := e.ledger.MarkFailed(ctx, record.ID, status.Description)
		if err != nil {
			return fmt.Errorf("reconcile: mark failed: %w", err)
		}
		if won {
			e.correlations.Delete(ctx, status.TrackingID)
			logger.InfoString("Reconcile", "ApplyOutcome",
				fmt.Sprintf("payment %d failed: %s", record.ID, status.Description))
		}
		return nil
	}

	// a gateway amount below the expected net is suspicious, log it
	// but keep the ledger on the net amount it was created with
	if !status.Amount.IsZero() && status.Amount.LessThan(record.Amount) {
		logger.WarnString("Reconcile", "ApplyOutcome",
			fmt.Sprintf("payment %d confirmed %s against expected net %s",
				record.ID, status.Amount, record.Amount))
	}

	won, err := e.ledger.MarkCompleted(ctx, record.ID, status.ReceiptCode)
	if err != nil {
		return fmt.Errorf("reconcile: mark completed: %w", err)
	}
	if !won {
		// a concurrent callback or poll already finalized this one
		return nil
	}

	e.correlations.Delete(ctx, status.TrackingID)

	if err := e.applySideEffects(ctx, record); err != nil {
		// the ledger is already terminal, surface the failure loudly
		logger.ErrorString("Reconcile", "SideEffects",
			fmt.Sprintf("payment %d: %v", record.ID, err))
		return err
	}

	record.Status = payment.StatusCompleted
	record.ReceiptCode = status.ReceiptCode
	if e.notifier != nil {
		e.notifier.PaymentCompleted(ctx, record)
	}

	logger.InfoString("Reconcile", "ApplyOutcome",
		fmt.Sprintf("payment %d completed, receipt %s", record.ID, status.ReceiptCode))
	return nil
}

// resolve finds the ledger record for a tracking id, preferring the
// correlation cache and falling back to the ledger index when the
// cache entry has expired.
func (e *Engine) resolve(ctx context.Context, trackingID string) (*payment.Payment, error) {
	entry, err := e.correlations.Get(ctx, trackingID)
	if err == nil {
		record, err := e.ledger.GetByID(ctx, entry.PaymentID)
		if err == nil {
			return record, nil
		}
		logger.WarnString("Reconcile", "Resolve",
			fmt.Sprintf("correlation entry for %s points at missing payment %d", trackingID, entry.PaymentID))
	} else if !errors.Is(err, correlation.ErrNotFound) {
		logger.ErrorString("Reconcile", "Resolve", err.Error())
	}

	record, err := e.ledger.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPayment, trackingID)
	}
	return record, nil
}

// applySideEffects runs the kind-specific business effect of a
// confirmed payment. Called exactly once per payment, guarded by the
// terminal transition.
func (e *Engine) applySideEffects(ctx context.Context, record *payment.Payment) error {
	switch record.Kind {
	case payment.KindRent:
		if record.UnitID == nil {
			return fmt.Errorf("rent payment %d has no unit", record.ID)
		}
		return e.units.AddRentPaid(ctx, *record.UnitID, record.Amount)

	case payment.KindDeposit:
		if record.UnitID == nil || record.TenantID == nil {
			return fmt.Errorf("deposit payment %d missing unit or tenant", record.ID)
		}
		return e.units.ReserveForTenant(ctx, *record.UnitID, *record.TenantID)

	case payment.KindDepositRegistration:
		// paid during signup, before a tenant account exists
		if record.UnitID == nil {
			return fmt.Errorf("registration deposit payment %d has no unit", record.ID)
		}
		return e.units.Reserve(ctx, *record.UnitID)

	case payment.KindSubscription:
		if record.UserID == nil {
			return fmt.Errorf("subscription payment %d has no user", record.ID)
		}
		return e.subscriptions.Renew(ctx, *record.UserID, record.Plan, e.config.BillingPeriod)

	default:
		return fmt.Errorf("unknown payment kind %q", record.Kind)
	}
}

// Poll queries the gateway for a pending payment's current state and
// applies whatever it learns.
func (e *Engine) Poll(ctx context.Context, record *payment.Payment) error {
	client, ok := e.clients[types.Provider(record.Provider)]
	if !ok {
		return fmt.Errorf("reconcile: no client for provider %q", record.Provider)
	}
	if record.GatewayTrackingID == "" {
		return fmt.Errorf("reconcile: payment %d has no tracking id", record.ID)
	}

	status, err := client.QueryStatus(ctx, record.GatewayTrackingID)
	if err != nil {
		return err
	}

	return e.ApplyOutcome(ctx, status)
}

// Status returns the ledger's view of a payment. Clients poll this
// instead of the gateway. A pending read doubles as recovery: the
// gateway gets queried in case the callback was lost, so a client
// refreshing the status page settles the payment without waiting for
// the sweeper.
func (e *Engine) Status(ctx context.Context, paymentID uint64) (*payment.Payment, error) {
	record, err := e.ledger.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !record.IsPending() || record.GatewayTrackingID == "" {
		return record, nil
	}

	if err := e.Poll(ctx, record); err != nil {
		// the stale read is still an answer, the sweeper retries later
		logger.WarnString("Reconcile", "Status",
			fmt.Sprintf("payment %d: %v", record.ID, err))
		return record, nil
	}

	return e.ledger.GetByID(ctx, paymentID)
}
