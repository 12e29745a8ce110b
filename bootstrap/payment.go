package bootstrap

import (
	"time"

	"makao/app/http/controllers/api/v1/payments"
	"makao/app/repositories"
	"makao/pkg/config"
	"makao/pkg/correlation"
	"makao/pkg/gateway"
	"makao/pkg/gateway/types"
	"makao/pkg/logger"
	"makao/pkg/reconcile"
	"makao/pkg/redis"
)

// PaymentStack everything the payment surface needs, wired once.
type PaymentStack struct {
	Engine     *reconcile.Engine
	Payments   *repositories.PaymentRepository
	Units      *repositories.UnitRepository
	Controller *payments.PaymentsController
	Callbacks  *payments.CallbacksController
}

// SetupPayment wires the gateway clients, the repositories and the
// reconciliation engine.
func SetupPayment(notifier reconcile.Notifier) *PaymentStack {
	clients := make(map[types.Provider]types.Client)
	for _, provider := range []types.Provider{types.ProviderMpesa, types.ProviderPesapal} {
		client, err := gateway.NewClient(provider)
		if err != nil {
			logger.ErrorString("Payment", "Setup", err.Error())
			continue
		}
		clients[provider] = client
	}

	paymentRepo := repositories.NewPaymentRepository()
	unitRepo := repositories.NewUnitRepository()
	subscriptionRepo := repositories.NewSubscriptionRepository()

	correlationStore := correlation.NewStore(redis.Redis.Client, config.GetString("app.name"))

	engine := reconcile.NewEngine(
		paymentRepo,
		unitRepo,
		subscriptionRepo,
		correlationStore,
		clients,
		notifier,
		reconcile.Config{
			PendingTTL:       time.Duration(config.GetInt("payment.correlation_registration_ttl")) * time.Second,
			AuthenticatedTTL: time.Duration(config.GetInt("payment.correlation_ttl")) * time.Second,
			BillingPeriod:    time.Duration(config.GetInt("payment.billing_period_days")) * 24 * time.Hour,
		},
	)

	logger.InfoString("Payment", "Setup", "payment engine initialized")

	return &PaymentStack{
		Engine:     engine,
		Payments:   paymentRepo,
		Units:      unitRepo,
		Controller: payments.NewPaymentsController(engine, paymentRepo, unitRepo),
		Callbacks:  payments.NewCallbacksController(engine, paymentRepo),
	}
}
