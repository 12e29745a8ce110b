// Package routes registers the HTTP routes.
package routes

import (
	"makao/app/http/controllers/api/v1/payments"
	"makao/app/http/middlewares"

	"github.com/gin-gonic/gin"
)

// route rate limits
const (
	// global limit per IP per hour
	GlobalRateLimit = "10000-H"
	// payment initiation limit per IP per hour
	InitiatePaymentLimit = "60-H"
	// status polling limit per IP per minute
	QueryStatusLimit = "300-M"
	// gateway callback limit per IP per minute
	CallbackLimit = "600-M"
)

// RegisterAPIRoutes registers all API routes.
func RegisterAPIRoutes(r *gin.Engine, pc *payments.PaymentsController, cc *payments.CallbacksController) {
	v1 := r.Group("/v1")

	v1.Use(
		middlewares.Recovery(),
		middlewares.SecurityHeaders(),
		middlewares.LimitIP(GlobalRateLimit),
		middlewares.Cors(),
	)

	paymentRoutes := v1.Group("/payments")
	{
		// initiation, one endpoint per payment kind
		// POST /v1/payments/rent/:unit_id
		paymentRoutes.POST("/rent/:unit_id",
			middlewares.LimitIP(InitiatePaymentLimit),
			pc.InitiateRent,
		)

		// POST /v1/payments/deposit/:unit_id
		paymentRoutes.POST("/deposit/:unit_id",
			middlewares.LimitIP(InitiatePaymentLimit),
			pc.InitiateDeposit,
		)

		// POST /v1/payments/deposit-registration/:unit_id
		paymentRoutes.POST("/deposit-registration/:unit_id",
			middlewares.LimitIP(InitiatePaymentLimit),
			pc.InitiateDepositRegistration,
		)

		// POST /v1/payments/subscription
		paymentRoutes.POST("/subscription",
			middlewares.LimitIP(InitiatePaymentLimit),
			pc.InitiateSubscription,
		)

		// status and history, clients poll here instead of the gateway
		// GET /v1/payments/:id/status
		paymentRoutes.GET("/:id/status",
			middlewares.LimitIP(QueryStatusLimit),
			pc.Status,
		)

		// GET /v1/payments?unit_id=
		paymentRoutes.GET("",
			middlewares.LimitIP(QueryStatusLimit),
			pc.List,
		)

		// GET /v1/payments/summary?unit_id=&days=
		paymentRoutes.GET("/summary",
			middlewares.LimitIP(QueryStatusLimit),
			pc.Summary,
		)

		// asynchronous gateway confirmations
		// POST /v1/payments/callback/mpesa
		paymentRoutes.POST("/callback/mpesa",
			middlewares.LimitIP(CallbackLimit),
			cc.MpesaCallback,
		)

		// GET /v1/payments/callback/pesapal-ipn
		paymentRoutes.GET("/callback/pesapal-ipn",
			middlewares.LimitIP(CallbackLimit),
			cc.PesapalIPN,
		)
	}
}
