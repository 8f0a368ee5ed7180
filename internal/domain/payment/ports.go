package payment

import "context"

// Buyer is the billing service's record of a paying user.
type Buyer struct {
	UUID          string `json:"uuid"`
	HasPin        bool   `json:"pin"`
	NeedsPinReset bool   `json:"needs_pin_reset"`
	PinLocked     bool   `json:"pin_is_locked_out"`
}

// PinCheck is the billing service's answer to a PIN attempt.
type PinCheck struct {
	Valid  bool `json:"valid"`
	Locked bool `json:"locked"`
}

// BillingService is the external billing API.
type BillingService interface {
	// GetTransaction returns ErrTransactionNotFound for unknown ids.
	GetTransaction(ctx context.Context, transID string) (*Transaction, error)
	StartTransaction(ctx context.Context, req StartRequest) (*Transaction, error)
	SetTransactionStatus(ctx context.Context, transID string, status TransactionStatus) error
	GetBuyer(ctx context.Context, uuid string) (*Buyer, error)
	SetNeedsPinReset(ctx context.Context, uuid string, value bool) error
	VerifyPin(ctx context.Context, uuid, pin string) (*PinCheck, error)
}

// PriceCatalog resolves price points to tiers.
type PriceCatalog interface {
	// GetPrice returns ErrTierNotFound for unknown price points.
	GetPrice(ctx context.Context, pricePoint PricePoint) (*PriceTier, error)
}

// URLVerifier checks the postback and chargeback URLs of a request.
type URLVerifier interface {
	Verify(ctx context.Context, isSimulation bool, urls ...string) error
}
