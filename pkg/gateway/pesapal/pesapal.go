// Package pesapal implements the PesaPal Order API v3 client.
package pesapal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"makao/pkg/config"
	"makao/pkg/gateway/types"
	"makao/pkg/logger"
	"makao/pkg/redis"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// PesaPal amount bounds for a single order, in KES.
var (
	minAmount = decimal.NewFromInt(10)
	maxAmount = decimal.NewFromInt(500000)
)

// ipnIDKey redis cache key for the registered IPN id.
const ipnIDKey = "pesapal:ipn_id"

// Tokens live five minutes on the provider side; reuse for four.
const tokenLifetime = 4 * time.Minute

// Client talks to the PesaPal Order API.
type Client struct {
	http        *resty.Client
	baseURL     string
	consumerKey string
	secret      string
	ipnURL      string
	callbackURL string
	feeRate     decimal.Decimal

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time

	ipnOnce sync.Once
	ipnID   string
	ipnErr  error
}

// NewClient builds a PesaPal client from configuration.
func NewClient() *Client {
	env := config.GetString("pesapal.env")
	baseURL := config.GetString("pesapal.sandbox_url")
	if env == "live" {
		baseURL = config.GetString("pesapal.live_url")
	}

	return &Client{
		http:        newHTTPClient(),
		baseURL:     baseURL,
		consumerKey: config.GetString("pesapal.consumer_key"),
		secret:      config.GetString("pesapal.consumer_secret"),
		ipnURL:      config.GetString("pesapal.ipn_url"),
		callbackURL: config.GetString("pesapal.callback_url"),
		feeRate:     decimal.RequireFromString(config.GetString("pesapal.fee_rate", "3.5")),
	}
}

// newHTTPClient builds the resty client. No transport retries: a
// silently retried submit could create a second order the ledger never
// recorded, recovery belongs to the caller's poll and sweep paths.
func newHTTPClient() *resty.Client {
	return resty.New().SetTimeout(30 * time.Second)
}

// Name implements types.Client.
func (c *Client) Name() types.Provider {
	return types.ProviderPesapal
}

// FeeRate implements types.Client.
func (c *Client) FeeRate() decimal.Decimal {
	return c.feeRate
}

type tokenResponse struct {
	Token string `json:"token"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetAccessToken fetches a bearer token, caching it just under the
// provider's five minute lifetime.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	var result tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"consumer_key":    c.consumerKey,
			"consumer_secret": c.secret,
		}).
		SetResult(&result).
		Post(c.baseURL + "/api/Auth/RequestToken")
	if err != nil {
		return "", &types.TransportError{Provider: types.ProviderPesapal, Op: "token", Err: err}
	}
	if resp.IsError() || result.Token == "" {
		logger.ErrorString("Pesapal", "GetAccessToken", resp.String())
		code, msg := resp.Status(), "token request refused"
		if result.Error != nil {
			code, msg = result.Error.Code, result.Error.Message
		}
		return "", &types.RejectionError{Provider: types.ProviderPesapal, Code: code, Message: msg}
	}

	c.token = result.Token
	c.tokenExpiry = time.Now().Add(tokenLifetime)
	return c.token, nil
}

type ipnResponse struct {
	IpnID string `json:"ipn_id"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// registerIPN registers our IPN listener once per process, backed by a
// redis cache so restarts reuse the registration.
func (c *Client) registerIPN(ctx context.Context) (string, error) {
	c.ipnOnce.Do(func() {
		if cached := redis.Redis.Get(ipnIDKey); cached != "" {
			c.ipnID = cached
			return
		}

		token, err := c.GetAccessToken(ctx)
		if err != nil {
			c.ipnErr = err
			return
		}

		var result ipnResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetBody(map[string]string{
				"url":                   c.ipnURL,
				"ipn_notification_type": "GET",
			}).
			SetResult(&result).
			Post(c.baseURL + "/api/URLSetup/RegisterIPN")
		if err != nil {
			c.ipnErr = &types.TransportError{Provider: types.ProviderPesapal, Op: "register_ipn", Err: err}
			return
		}
		if resp.IsError() || result.IpnID == "" {
			logger.ErrorString("Pesapal", "RegisterIPN", resp.String())
			c.ipnErr = &types.RejectionError{
				Provider: types.ProviderPesapal,
				Code:     resp.Status(),
				Message:  "ipn registration refused",
			}
			return
		}

		c.ipnID = result.IpnID
		redis.Redis.Set(ipnIDKey, c.ipnID, 0)
		logger.InfoString("Pesapal", "RegisterIPN", "registered ipn "+c.ipnID)
	})

	return c.ipnID, c.ipnErr
}

type orderResponse struct {
	OrderTrackingID string `json:"order_tracking_id"`
	RedirectURL     string `json:"redirect_url"`
	Error           *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ValidateAmount implements types.Client.
func (c *Client) ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThan(minAmount) || amount.GreaterThan(maxAmount) {
		return &types.ValidationError{Field: "amount", Reason: "must be between 10 and 500000 KES"}
	}
	return nil
}

// SubmitOrder creates a PesaPal order and returns the hosted payment
// page URL alongside the tracking id.
func (c *Client) SubmitOrder(ctx context.Context, req *types.OrderRequest) (*types.OrderResponse, error) {
	if err := c.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}

	ipnID, err := c.registerIPN(ctx)
	if err != nil {
		return nil, err
	}

	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	amount, _ := req.Amount.Round(2).Float64()

	var result orderResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]interface{}{
			"id":              req.MerchantReference,
			"currency":        "KES",
			"amount":          amount,
			"description":     req.Description,
			"callback_url":    c.callbackURL,
			"notification_id": ipnID,
			"billing_address": map[string]string{
				"phone_number":  req.PhoneNumber,
				"email_address": req.Email,
				"country_code":  "KE",
			},
		}).
		SetResult(&result).
		Post(c.baseURL + "/api/Transactions/SubmitOrderRequest")
	if err != nil {
		return nil, &types.TransportError{Provider: types.ProviderPesapal, Op: "submit_order", Err: err}
	}
	if resp.IsError() || result.Error != nil || result.OrderTrackingID == "" {
		logger.ErrorString("Pesapal", "SubmitOrder", resp.String())
		code, msg := resp.Status(), "order refused"
		if result.Error != nil {
			code, msg = result.Error.Code, result.Error.Message
		}
		return nil, &types.RejectionError{Provider: types.ProviderPesapal, Code: code, Message: msg}
	}

	logger.InfoString("Pesapal", "SubmitOrder",
		fmt.Sprintf("order %s accepted, tracking id %s", req.MerchantReference, result.OrderTrackingID))

	return &types.OrderResponse{
		TrackingID:  result.OrderTrackingID,
		RedirectURL: result.RedirectURL,
	}, nil
}

type statusResponse struct {
	PaymentStatusDescription string  `json:"payment_status_description"`
	ConfirmationCode         string  `json:"confirmation_code"`
	Amount                   float64 `json:"amount"`
	Error                    *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// QueryStatus asks PesaPal for an order's current state.
func (c *Client) QueryStatus(ctx context.Context, trackingID string) (*types.StatusResult, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var result statusResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParam("orderTrackingId", trackingID).
		SetResult(&result).
		Get(c.baseURL + "/api/Transactions/GetTransactionStatus")
	if err != nil {
		return nil, &types.TransportError{Provider: types.ProviderPesapal, Op: "query_status", Err: err}
	}
	if resp.IsError() {
		logger.ErrorString("Pesapal", "QueryStatus", resp.String())
		code, msg := resp.Status(), "status query refused"
		if result.Error != nil {
			code, msg = result.Error.Code, result.Error.Message
		}
		return nil, &types.RejectionError{Provider: types.ProviderPesapal, Code: code, Message: msg}
	}

	return &types.StatusResult{
		TrackingID:  trackingID,
		State:       NormalizeState(result.PaymentStatusDescription),
		ReceiptCode: result.ConfirmationCode,
		Amount:      decimal.NewFromFloat(result.Amount),
		Description: result.PaymentStatusDescription,
	}, nil
}

// NormalizeState maps PesaPal's status descriptions onto the shared
// state set. Unknown descriptions count as pending so nothing gets
// finalized on a value we do not understand.
func NormalizeState(description string) types.State {
	switch strings.ToLower(description) {
	case "completed":
		return types.StateCompleted
	case "failed", "invalid", "reversed":
		return types.StateFailed
	default:
		return types.StatePending
	}
}
