package payment

import "github.com/shopspring/decimal"

// Price is the amount of a tier in one currency.
type Price struct {
	Amount   decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Region   int             `json:"region,omitempty"`
	Method   int             `json:"method,omitempty"`
}

// PriceTier is a marketplace price point with its per-currency prices.
type PriceTier struct {
	PricePoint PricePoint `json:"pricePoint"`
	Name       string     `json:"name"`
	Prices     []Price    `json:"prices"`
}

// PriceIn returns the tier price in the currency, if listed.
func (t *PriceTier) PriceIn(currency string) (Price, bool) {
	for _, p := range t.Prices {
		if p.Currency == currency {
			return p, true
		}
	}
	return Price{}, false
}
