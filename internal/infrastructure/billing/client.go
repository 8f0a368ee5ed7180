// Package billing is the HTTP client of the external billing service that
// owns transactions, buyers and PINs.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrBillingAPI marks every error returned by the billing service.
var ErrBillingAPI = errors.New("billing api")

// ErrorResponse is the JSON the billing service answers with on failure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client implements payment.BillingService over HTTP
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a billing client. Requests are retried on transport
// errors and 5xx answers.
func NewClient(cfg config.BillingConfig, logger *zap.Logger) *Client {
	return NewClientWithResty(resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}), logger)
}

// NewClientWithResty creates a billing client with a configured resty client
func NewClientWithResty(client *resty.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	client.SetHeader("Accept", "application/json")
	return &Client{http: client, logger: logger.Named("billing")}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

func toError(resp *resty.Response) error {
	var apiErr ErrorResponse
	if err := json.Unmarshal(resp.Body(), &apiErr); err != nil || apiErr.Message == "" {
		return errors.Join(ErrBillingAPI, fmt.Errorf("(HTTP Status: %d)", resp.StatusCode()))
	}
	return errors.Join(ErrBillingAPI, fmt.Errorf("(HTTP Status: %d)- %s: %s", resp.StatusCode(), apiErr.Code, apiErr.Message))
}

// GetTransaction fetches a transaction by its id
func (c *Client) GetTransaction(ctx context.Context, transID string) (*payment.Transaction, error) {
	var out payment.Transaction
	resp, err := c.request(ctx).
		SetResult(&out).
		Get("/transactions/" + url.PathEscape(transID))
	if err != nil {
		return nil, errors.Join(ErrBillingAPI, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, payment.ErrTransactionNotFound
	}
	if resp.IsError() {
		return nil, toError(resp)
	}
	return &out, nil
}

// StartTransaction creates and configures a transaction
func (c *Client) StartTransaction(ctx context.Context, req payment.StartRequest) (*payment.Transaction, error) {
	c.logger.Debug("Starting transaction",
		zap.String("trans_id", req.TransID),
		zap.String("seller_key", req.IssuerKey),
		zap.String("price_point", string(req.PricePoint)))

	var out payment.Transaction
	resp, err := c.request(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/transactions")
	if err != nil {
		return nil, errors.Join(ErrBillingAPI, err)
	}
	if resp.IsError() {
		return nil, toError(resp)
	}
	return &out, nil
}

// SetTransactionStatus overrides the status of a transaction
func (c *Client) SetTransactionStatus(ctx context.Context, transID string, status payment.TransactionStatus) error {
	resp, err := c.request(ctx).
		SetBody(map[string]any{"status": int(status)}).
		Patch("/transactions/" + url.PathEscape(transID))
	if err != nil {
		return errors.Join(ErrBillingAPI, err)
	}
	if resp.IsError() {
		return toError(resp)
	}
	return nil
}

// GetBuyer fetches a buyer by uuid
func (c *Client) GetBuyer(ctx context.Context, uuid string) (*payment.Buyer, error) {
	var out payment.Buyer
	resp, err := c.request(ctx).
		SetResult(&out).
		Get("/buyers/" + url.PathEscape(uuid))
	if err != nil {
		return nil, errors.Join(ErrBillingAPI, err)
	}
	if resp.IsError() {
		return nil, toError(resp)
	}
	return &out, nil
}

// SetNeedsPinReset updates the buyer's PIN reset flag
func (c *Client) SetNeedsPinReset(ctx context.Context, uuid string, value bool) error {
	resp, err := c.request(ctx).
		SetBody(map[string]any{"needs_pin_reset": value}).
		Patch("/buyers/" + url.PathEscape(uuid))
	if err != nil {
		return errors.Join(ErrBillingAPI, err)
	}
	if resp.IsError() {
		return toError(resp)
	}
	return nil
}

// VerifyPin checks a PIN attempt for the buyer
func (c *Client) VerifyPin(ctx context.Context, uuid, pin string) (*payment.PinCheck, error) {
	var out payment.PinCheck
	resp, err := c.request(ctx).
		SetBody(map[string]string{"pin": pin}).
		SetResult(&out).
		Post("/buyers/" + url.PathEscape(uuid) + "/pin/verify")
	if err != nil {
		return nil, errors.Join(ErrBillingAPI, err)
	}
	if resp.IsError() {
		return nil, toError(resp)
	}
	return &out, nil
}

var _ payment.BillingService = (*Client)(nil)
