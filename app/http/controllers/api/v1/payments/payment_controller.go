// Package payments exposes the payment HTTP API.
package payments

import (
	"time"

	"makao/app/models/payment"
	"makao/app/repositories"
	"makao/app/requests"
	"makao/pkg/config"
	"makao/pkg/reconcile"
	"makao/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

// PaymentsController handles payment initiation and status queries.
type PaymentsController struct {
	engine   *reconcile.Engine
	payments *repositories.PaymentRepository
	units    *repositories.UnitRepository
}

// NewPaymentsController wires the controller.
func NewPaymentsController(engine *reconcile.Engine, payments *repositories.PaymentRepository, units *repositories.UnitRepository) *PaymentsController {
	return &PaymentsController{
		engine:   engine,
		payments: payments,
		units:    units,
	}
}

// InitiateRent starts a rent payment for a unit.
// POST /v1/payments/rent/:unit_id
func (ctrl *PaymentsController) InitiateRent(c *gin.Context) {
	req, err := requests.ValidateInitiatePayment(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}

	unitID := cast.ToUint64(c.Param("unit_id"))
	u, err := ctrl.units.GetByID(c.Request.Context(), unitID)
	if err != nil {
		response.Abort404(c, "unit not found")
		return
	}
	if u.TenantID == nil {
		response.Abort400(c, "unit has no tenant")
		return
	}

	ctrl.initiate(c, &reconcile.InitiationRequest{
		Kind:        payment.KindRent,
		Provider:    req.ProviderType(),
		Amount:      req.ParsedAmount,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Description: "Rent payment for unit " + u.UnitNumber,
		TenantID:    u.TenantID,
		UnitID:      &u.ID,
	})
}

// InitiateDeposit starts a deposit payment by an existing tenant.
// POST /v1/payments/deposit/:unit_id
func (ctrl *PaymentsController) InitiateDeposit(c *gin.Context) {
	req, err := requests.ValidateInitiatePayment(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}
	if err := req.RequireTenant(); err != nil {
		response.BadRequest(c, err)
		return
	}

	unitID := cast.ToUint64(c.Param("unit_id"))
	u, err := ctrl.units.GetByID(c.Request.Context(), unitID)
	if err != nil {
		response.Abort404(c, "unit not found")
		return
	}
	if !u.IsAvailable {
		response.Abort400(c, "unit is no longer available")
		return
	}

	ctrl.initiate(c, &reconcile.InitiationRequest{
		Kind:        payment.KindDeposit,
		Provider:    req.ProviderType(),
		Amount:      req.ParsedAmount,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Description: "Deposit for unit " + u.UnitNumber,
		TenantID:    &req.TenantID,
		UnitID:      &u.ID,
	})
}

// InitiateDepositRegistration starts a deposit payment during signup,
// before the tenant account exists.
// POST /v1/payments/deposit-registration/:unit_id
func (ctrl *PaymentsController) InitiateDepositRegistration(c *gin.Context) {
	req, err := requests.ValidateInitiatePayment(c)
	if err != nil {
		response.BadRequest(c, err)
		return
	}

	unitID := cast.ToUint64(c.Param("unit_id"))
	u, err := ctrl.units.GetByID(c.Request.Context(), unitID)
	if err != nil {
		response.Abort404(c, "unit not found")
		return
	}
	if !u.IsAvailable {
		response.Abort400(c, "unit is no longer available")
		return
	}

	ctrl.initiate(c, &reconcile.InitiationRequest{
		Kind:        payment.KindDepositRegistration,
		Provider:    req.ProviderType(),
		Amount:      req.ParsedAmount,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Description: "Registration deposit for unit " + u.UnitNumber,
		UnitID:      &u.ID,
		SessionID:   req.SessionID,
	})
}

// InitiateSubscription starts a landlord subscription payment. The
// plan decides the amount.
// POST /v1/payments/subscription
func (ctrl *PaymentsController) InitiateSubscription(c *gin.Context) {
	plans := config.GetStringMapString("payment.plans")

	req, err := requests.ValidateSubscriptionPayment(c, plans)
	if err != nil {
		response.BadRequest(c, err)
		return
	}

	ctrl.initiate(c, &reconcile.InitiationRequest{
		Kind:        payment.KindSubscription,
		Provider:    req.ProviderType(),
		Amount:      req.ParsedAmount,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Description: "Subscription payment, " + req.Plan + " plan",
		UserID:      &req.UserID,
		Plan:        req.Plan,
	})
}

func (ctrl *PaymentsController) initiate(c *gin.Context, req *reconcile.InitiationRequest) {
	result, err := ctrl.engine.Initiate(c.Request.Context(), req)
	if err != nil {
		response.BadRequest(c, err, "payment could not be initiated")
		return
	}

	response.Created(c, gin.H{
		"payment_id":         result.PaymentID,
		"merchant_reference": result.MerchantReference,
		"tracking_id":        result.TrackingID,
		"redirect_url":       result.RedirectURL,
		"amount":             result.Net.StringFixed(2),
		"fee":                result.Fee.StringFixed(2),
		"total":              result.Total.StringFixed(2),
	}, "payment initiated")
}

// Status returns the ledger's view of one payment. Clients poll this
// endpoint, never the gateway.
// GET /v1/payments/:id/status
func (ctrl *PaymentsController) Status(c *gin.Context) {
	id := cast.ToUint64(c.Param("id"))

	record, err := ctrl.engine.Status(c.Request.Context(), id)
	if err != nil {
		response.Abort404(c, "payment not found")
		return
	}

	response.Data(c, gin.H{
		"payment_id":     record.ID,
		"kind":           record.Kind,
		"provider":       record.Provider,
		"amount":         record.Amount.StringFixed(2),
		"status":         record.Status,
		"receipt_code":   record.ReceiptCode,
		"failure_reason": record.FailureReason,
		"created_at":     record.CreatedAt,
		"updated_at":     record.UpdatedAt,
	})
}

// List returns a unit's payment history, newest first.
// GET /v1/payments?unit_id=
func (ctrl *PaymentsController) List(c *gin.Context) {
	unitID := cast.ToUint64(c.Query("unit_id"))
	if unitID == 0 {
		response.Abort400(c, "unit_id query parameter is required")
		return
	}

	records, err := ctrl.payments.ListByUnit(c.Request.Context(), unitID)
	if err != nil {
		response.ServerError(c, err)
		return
	}

	response.Data(c, records)
}

// Summary totals a unit's completed payments since a date.
// GET /v1/payments/summary?unit_id=&days=
func (ctrl *PaymentsController) Summary(c *gin.Context) {
	unitID := cast.ToUint64(c.Query("unit_id"))
	if unitID == 0 {
		response.Abort400(c, "unit_id query parameter is required")
		return
	}

	days := cast.ToInt(c.DefaultQuery("days", "30"))
	since := time.Now().AddDate(0, 0, -days)

	total, err := ctrl.payments.SumCompletedByUnit(c.Request.Context(), unitID, since)
	if err != nil {
		response.ServerError(c, err)
		return
	}

	response.Data(c, gin.H{
		"unit_id": unitID,
		"since":   since.Format("2006-01-02"),
		"total":   total.StringFixed(2),
	})
}
