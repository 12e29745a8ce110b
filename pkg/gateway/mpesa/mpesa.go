// Package mpesa implements the Safaricom Daraja STK push client.
package mpesa

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"makao/pkg/app"
	"makao/pkg/config"
	"makao/pkg/gateway/types"
	"makao/pkg/logger"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Daraja amount bounds for a single STK push, in KES.
var (
	minAmount = decimal.NewFromInt(1)
	maxAmount = decimal.NewFromInt(150000)
)

// Client talks to the Daraja API.
type Client struct {
	http        *resty.Client
	baseURL     string
	consumerKey string
	secret      string
	shortcode   string
	passkey     string
	callbackURL string
	feeRate     decimal.Decimal

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient builds an M-Pesa client from configuration.
func NewClient() *Client {
	env := config.GetString("mpesa.env")
	baseURL := config.GetString("mpesa.sandbox_url")
	if env == "live" {
		baseURL = config.GetString("mpesa.live_url")
	}

	return &Client{
		http:        newHTTPClient(),
		baseURL:     baseURL,
		consumerKey: config.GetString("mpesa.consumer_key"),
		secret:      config.GetString("mpesa.consumer_secret"),
		shortcode:   config.GetString("mpesa.shortcode"),
		passkey:     config.GetString("mpesa.passkey"),
		callbackURL: config.GetString("mpesa.callback_url"),
		feeRate:     decimal.RequireFromString(config.GetString("mpesa.fee_rate", "0")),
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
	return types.ProviderMpesa
}

// FeeRate implements types.Client.
func (c *Client) FeeRate() decimal.Decimal {
	return c.feeRate
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// GetAccessToken fetches an OAuth token, caching it for 80% of the
// provider lifetime so a token is never used close to expiry.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	var result tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.consumerKey, c.secret).
		SetQueryParam("grant_type", "client_credentials").
		SetResult(&result).
		Get(c.baseURL + "/oauth/v1/generate")
	if err != nil {
		return "", &types.TransportError{Provider: types.ProviderMpesa, Op: "token", Err: err}
	}
	if resp.IsError() || result.AccessToken == "" {
		logger.ErrorString("Mpesa", "GetAccessToken", resp.String())
		return "", &types.RejectionError{
			Provider: types.ProviderMpesa,
			Code:     resp.Status(),
			Message:  "token request refused",
		}
	}

	lifetime := cast.ToInt(result.ExpiresIn)
	if lifetime <= 0 {
		lifetime = 3600
	}

	c.token = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(lifetime) * time.Second * 8 / 10)
	return c.token, nil
}

type stkPushResponse struct {
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResponseCode      string `json:"ResponseCode"`
	ResponseDesc      string `json:"ResponseDescription"`
	ErrorCode         string `json:"errorCode"`
	ErrorMessage      string `json:"errorMessage"`
}

// ValidateAmount implements types.Client.
func (c *Client) ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThan(minAmount) || amount.GreaterThan(maxAmount) {
		return &types.ValidationError{Field: "amount", Reason: "must be between 1 and 150000 KES"}
	}
	return nil
}

// SubmitOrder sends an STK push to the payer's phone.
func (c *Client) SubmitOrder(ctx context.Context, req *types.OrderRequest) (*types.OrderResponse, error) {
	if err := c.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	if req.PhoneNumber == "" {
		return nil, &types.ValidationError{Field: "phone_number", Reason: "is required"}
	}

	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := app.TimenowInTimezone().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(c.shortcode + c.passkey + timestamp))

	// Daraja only takes whole shillings
	amount := req.Amount.Round(0).IntPart()

	var result stkPushResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]interface{}{
			"BusinessShortCode": c.shortcode,
			"Password":          password,
			"Timestamp":         timestamp,
			"TransactionType":   "CustomerPayBillOnline",
			"Amount":            amount,
			"PartyA":            req.PhoneNumber,
			"PartyB":            c.shortcode,
			"PhoneNumber":       req.PhoneNumber,
			"CallBackURL":       c.callbackURL,
			"AccountReference":  req.MerchantReference,
			"TransactionDesc":   req.Description,
		}).
		SetResult(&result).
		SetError(&result).
		Post(c.baseURL + "/mpesa/stkpush/v1/processrequest")
	if err != nil {
		return nil, &types.TransportError{Provider: types.ProviderMpesa, Op: "stkpush", Err: err}
	}
	if resp.IsError() || result.ResponseCode != "0" {
		logger.ErrorString("Mpesa", "SubmitOrder", resp.String())
		code := result.ErrorCode
		if code == "" {
			code = result.ResponseCode
		}
		msg := result.ErrorMessage
		if msg == "" {
			msg = result.ResponseDesc
		}
		return nil, &types.RejectionError{Provider: types.ProviderMpesa, Code: code, Message: msg}
	}

	logger.InfoString("Mpesa", "SubmitOrder",
		fmt.Sprintf("stk push accepted, checkout request %s", result.CheckoutRequestID))

	return &types.OrderResponse{TrackingID: result.CheckoutRequestID}, nil
}

type stkQueryResponse struct {
	ResponseCode string `json:"ResponseCode"`
	ResultCode   string `json:"ResultCode"`
	ResultDesc   string `json:"ResultDesc"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// Daraja signals "still processing" through this error code.
const codeStillProcessing = "500.001.1001"

// QueryStatus polls the outcome of an earlier STK push.
func (c *Client) QueryStatus(ctx context.Context, trackingID string) (*types.StatusResult, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := app.TimenowInTimezone().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(c.shortcode + c.passkey + timestamp))

	var result stkQueryResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(map[string]interface{}{
			"BusinessShortCode": c.shortcode,
			"Password":          password,
			"Timestamp":         timestamp,
			"CheckoutRequestID": trackingID,
		}).
		SetResult(&result).
		SetError(&result).
		Post(c.baseURL + "/mpesa/stkpushquery/v1/query")
	if err != nil {
		return nil, &types.TransportError{Provider: types.ProviderMpesa, Op: "stkquery", Err: err}
	}

	if result.ErrorCode == codeStillProcessing {
		return &types.StatusResult{TrackingID: trackingID, State: types.StatePending}, nil
	}
	if resp.IsError() {
		logger.ErrorString("Mpesa", "QueryStatus", resp.String())
		return nil, &types.RejectionError{Provider: types.ProviderMpesa, Code: result.ErrorCode, Message: result.ErrorMessage}
	}

	status := &types.StatusResult{
		TrackingID:  trackingID,
		Description: result.ResultDesc,
	}
	if result.ResultCode == "0" {
		status.State = types.StateCompleted
	} else {
		status.State = types.StateFailed
	}
	return status, nil
}
