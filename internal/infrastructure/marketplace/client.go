// Package marketplace is the client of the marketplace API that owns
// price tiers.
package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/marketplace/backend/internal/infrastructure/config"
)

// Client implements payment.PriceCatalog against the marketplace API
type Client struct {
	http     *resty.Client
	provider string
}

// NewClient creates a marketplace API client
func NewClient(cfg config.MarketplaceConfig) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
		provider: cfg.Provider,
	}
}

// GetPrice looks up the price tier of a price point for the configured provider
func (c *Client) GetPrice(ctx context.Context, pricePoint payment.PricePoint) (*payment.PriceTier, error) {
	var tier payment.PriceTier
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("provider", c.provider).
		SetResult(&tier).
		Get("/api/v1/webpay/prices/" + url.PathEscape(string(pricePoint)) + "/")
	if err != nil {
		return nil, payment.ErrMarketplaceError.WithMessage(err.Error())
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, payment.ErrTierNotFound
	}
	if resp.IsError() {
		return nil, errors.Join(payment.ErrMarketplaceError, fmt.Errorf("(HTTP Status: %d)", resp.StatusCode()))
	}
	if tier.PricePoint == "" {
		tier.PricePoint = pricePoint
	}
	return &tier, nil
}

var _ payment.PriceCatalog = (*Client)(nil)
