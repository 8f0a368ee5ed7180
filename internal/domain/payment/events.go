package payment

import "github.com/marketplace/backend/internal/domain/shared"

// Event types of the payment context. Both drive background tasks.
const (
	EventTypePayRequestAccepted  = "payment.request.accepted"
	EventTypeSimulationRequested = "payment.simulation.requested"
)

// AggregateTypeTransaction is the aggregate type of payment events.
const AggregateTypeTransaction = "Transaction"

// PayRequestAcceptedEvent starts the transaction at the billing service.
type PayRequestAcceptedEvent struct {
	shared.BaseDomainEvent
	TransID string `json:"trans_id"`
	Notes   Notes  `json:"notes"`
}

// NewPayRequestAcceptedEvent creates the start-pay event.
func NewPayRequestAcceptedEvent(transID string, notes Notes) *PayRequestAcceptedEvent {
	return &PayRequestAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayRequestAccepted, AggregateTypeTransaction, transID),
		TransID:         transID,
		Notes:           notes,
	}
}

// SimulationRequestedEvent asks for a simulated payment notice.
type SimulationRequestedEvent struct {
	shared.BaseDomainEvent
	IssuerKey  string     `json:"issuer_key"`
	PayRequest PayRequest `json:"pay_request"`
}

// NewSimulationRequestedEvent creates the simulate-notify event.
func NewSimulationRequestedEvent(issuerKey string, req PayRequest) *SimulationRequestedEvent {
	return &SimulationRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSimulationRequested, AggregateTypeTransaction, req.Request.ID),
		IssuerKey:       issuerKey,
		PayRequest:      req,
	}
}
