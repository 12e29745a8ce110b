package payments

import (
	"fmt"

	"makao/app/repositories"
	"makao/pkg/gateway/types"
	"makao/pkg/logger"
	"makao/pkg/reconcile"
	"makao/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// CallbacksController receives asynchronous gateway confirmations.
type CallbacksController struct {
	engine   *reconcile.Engine
	payments *repositories.PaymentRepository
}

// NewCallbacksController wires the controller.
func NewCallbacksController(engine *reconcile.Engine, payments *repositories.PaymentRepository) *CallbacksController {
	return &CallbacksController{engine: engine, payments: payments}
}

// mpesaCallbackPayload the Daraja STK push result envelope.
type mpesaCallbackPayload struct {
	Body struct {
		StkCallback struct {
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string      `json:"Name"`
					Value interface{} `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// MpesaCallback handles the Daraja STK push result. Always acks with
// the provider's expected body, even on processing errors, Daraja
// retries on anything else and the retry would hit the same error.
// POST /v1/payments/callback/mpesa
func (ctrl *CallbacksController) MpesaCallback(c *gin.Context) {
	ack := gin.H{"ResultCode": 0, "ResultDesc": "Accepted"}

	var payload mpesaCallbackPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.ErrorString("Callback", "Mpesa", "unparseable payload: "+err.Error())
		response.JSON(c, ack)
		return
	}

	cb := payload.Body.StkCallback
	status := &types.StatusResult{
		TrackingID:  cb.CheckoutRequestID,
		Description: cb.ResultDesc,
	}

	if cb.ResultCode == 0 {
		status.State = types.StateCompleted
		for _, item := range cb.CallbackMetadata.Item {
			switch item.Name {
			case "MpesaReceiptNumber":
				status.ReceiptCode = cast.ToString(item.Value)
			case "Amount":
				status.Amount = decimal.NewFromFloat(cast.ToFloat64(item.Value))
			}
		}
	} else {
		status.State = types.StateFailed
	}

	if err := ctrl.engine.ApplyOutcome(c.Request.Context(), status); err != nil {
		logger.ErrorString("Callback", "Mpesa",
			fmt.Sprintf("tracking id %s: %v", cb.CheckoutRequestID, err))
	}

	response.JSON(c, ack)
}

// PesapalIPN handles PesaPal's change notification. The IPN carries
// no outcome, only a tracking id, so the engine polls the gateway for
// the authoritative status.
// GET /v1/payments/callback/pesapal-ipn
func (ctrl *CallbacksController) PesapalIPN(c *gin.Context) {
	trackingID := c.Query("OrderTrackingId")
	merchantRef := c.Query("OrderMerchantReference")
	notificationType := c.Query("OrderNotificationType")

	ipnStatus := 200
	if trackingID == "" {
		ipnStatus = 500
	} else if err := ctrl.pollByTrackingID(c, trackingID); err != nil {
		logger.ErrorString("Callback", "PesapalIPN",
			fmt.Sprintf("tracking id %s: %v", trackingID, err))
		ipnStatus = 500
	}

	// PesaPal expects its own acknowledgment shape
	response.JSON(c, gin.H{
		"orderNotificationType":  notificationType,
		"orderTrackingId":        trackingID,
		"orderMerchantReference": merchantRef,
		"status":                 ipnStatus,
	})
}

func (ctrl *CallbacksController) pollByTrackingID(c *gin.Context, trackingID string) error {
	record, err := ctrl.payments.GetByTrackingID(c.Request.Context(), trackingID)
	if err != nil {
		return fmt.Errorf("%w: %s", reconcile.ErrUnknownPayment, trackingID)
	}
	if record.IsTerminal() {
		// duplicate notification for a settled payment
		return nil
	}
	return ctrl.engine.Poll(c.Request.Context(), record)
}
