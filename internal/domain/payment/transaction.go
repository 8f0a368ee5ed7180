package payment

import "fmt"

// TransactionStatus is the billing service's transaction state.
type TransactionStatus int

const (
	StatusPending   TransactionStatus = 0
	StatusCompleted TransactionStatus = 1
	StatusChecked   TransactionStatus = 2
	StatusReceived  TransactionStatus = 3
	StatusFailed    TransactionStatus = 4
	StatusCancelled TransactionStatus = 5
	StatusStarted   TransactionStatus = 6
	StatusErrored   TransactionStatus = 7
)

var endedStatuses = map[TransactionStatus]bool{
	StatusCompleted: true,
	StatusChecked:   true,
	StatusReceived:  true,
	StatusFailed:    true,
	StatusCancelled: true,
	StatusErrored:   true,
}

// IsEnded reports whether no further payment can happen.
func (s TransactionStatus) IsEnded() bool {
	return endedStatuses[s]
}

// String returns the status name
func (s TransactionStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	case StatusChecked:
		return "checked"
	case StatusReceived:
		return "received"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	case StatusStarted:
		return "started"
	case StatusErrored:
		return "errored"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Transaction is the billing service's view of a payment.
// A nil Status means the billing service does not know the transaction yet.
type Transaction struct {
	UUID   string             `json:"uuid"`
	UIDPay string             `json:"uid_pay"`
	Status *TransactionStatus `json:"status"`
}

// IsPending reports whether the payment flow can start.
func (t *Transaction) IsPending() bool {
	return t.Status != nil && *t.Status == StatusPending
}

// IsEnded reports whether the transaction already finished
func (t *Transaction) IsEnded() bool {
	return t.Status != nil && t.Status.IsEnded()
}

// StartRequest asks the billing service to prepare a transaction.
type StartRequest struct {
	TransID       string     `json:"transaction_uuid"`
	IssuerKey     string     `json:"seller_key"`
	ProductID     string     `json:"product_id"`
	PricePoint    PricePoint `json:"price_point"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	PostbackURL   string     `json:"postback_url"`
	ChargebackURL string     `json:"chargeback_url"`
	Prices        []Price    `json:"prices"`
}

// NewStartRequest builds the billing request for a verified pay request.
func NewStartRequest(transID string, notes Notes, tier *PriceTier) StartRequest {
	req := notes.PayRequest.Request
	sr := StartRequest{
		TransID:       transID,
		IssuerKey:     notes.IssuerKey,
		ProductID:     req.ID,
		PricePoint:    req.PricePoint,
		Name:          req.Name,
		Description:   req.Description,
		PostbackURL:   req.PostbackURL,
		ChargebackURL: req.ChargebackURL,
	}
	if tier != nil {
		sr.Prices = tier.Prices
	}
	return sr
}
