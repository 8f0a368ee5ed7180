package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// StartPayHandler configures accepted transactions at the billing service
type StartPayHandler struct {
	billing payment.BillingService
	prices  payment.PriceCatalog
	metrics *telemetry.AppMetrics
	logger  *zap.Logger
}

// NewStartPayHandler creates the start_pay task handler
func NewStartPayHandler(billing payment.BillingService, prices payment.PriceCatalog, metrics *telemetry.AppMetrics, logger *zap.Logger) *StartPayHandler {
	return &StartPayHandler{billing: billing, prices: prices, metrics: metrics, logger: logger.Named("start_pay")}
}

// EventTypes returns the event types this handler is interested in
func (h *StartPayHandler) EventTypes() []string {
	return []string{payment.EventTypePayRequestAccepted}
}

// Handle starts the transaction. A failure is reported to the billing
// service as an errored transaction and is not retried.
func (h *StartPayHandler) Handle(ctx context.Context, event shared.DomainEvent) (err error) {
	e, ok := event.(*payment.PayRequestAcceptedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			payment.EventTypePayRequestAccepted, event.EventType())
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "StartPayHandler", "Handle")
	defer func() { telemetry.EndSpan(span, err) }()

	if startErr := h.start(ctx, e); startErr != nil {
		h.metrics.RecordTransactionStart(ctx, "errored")
		h.logger.Error("start_pay failed",
			zap.String("trans_id", e.TransID),
			zap.Error(startErr),
		)
		if err := h.billing.SetTransactionStatus(ctx, e.TransID, payment.StatusErrored); err != nil {
			h.logger.Error("failed to mark transaction errored",
				zap.String("trans_id", e.TransID),
				zap.Error(err),
			)
		}
		return nil
	}

	h.metrics.RecordTransactionStart(ctx, "started")
	return nil
}

func (h *StartPayHandler) start(ctx context.Context, e *payment.PayRequestAcceptedEvent) error {
	tier, err := h.prices.GetPrice(ctx, e.Notes.PayRequest.Request.PricePoint)
	if err != nil {
		return fmt.Errorf("price lookup: %w", err)
	}
	trans, err := h.billing.StartTransaction(ctx, payment.NewStartRequest(e.TransID, e.Notes, tier))
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	h.logger.Info("transaction started",
		zap.String("trans_id", e.TransID),
		zap.String("uid_pay", trans.UIDPay),
	)
	return nil
}

var _ shared.EventHandler = (*StartPayHandler)(nil)

// NoticeSigner signs simulated postback and chargeback notices
type NoticeSigner interface {
	Sign(issuerKey, secret string, req payment.PayRequest, transID string, sim payment.Simulation) (string, error)
}

// NoticeDeliverer posts a signed notice to an app
type NoticeDeliverer interface {
	Deliver(ctx context.Context, target, notice, transID string) error
}

// SimulateNotifyHandler sends the notice a simulated payment asked for
type SimulateNotifyHandler struct {
	secrets   *SecretResolver
	signer    NoticeSigner
	deliverer NoticeDeliverer
	metrics   *telemetry.AppMetrics
	logger    *zap.Logger
}

// NewSimulateNotifyHandler creates the simulate_notify task handler
func NewSimulateNotifyHandler(secrets *SecretResolver, signer NoticeSigner, deliverer NoticeDeliverer, metrics *telemetry.AppMetrics, logger *zap.Logger) *SimulateNotifyHandler {
	return &SimulateNotifyHandler{
		secrets:   secrets,
		signer:    signer,
		deliverer: deliverer,
		metrics:   metrics,
		logger:    logger.Named("simulate_notify"),
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SimulateNotifyHandler) EventTypes() []string {
	return []string{payment.EventTypeSimulationRequested}
}

// Handle signs and delivers the simulated notice
func (h *SimulateNotifyHandler) Handle(ctx context.Context, event shared.DomainEvent) (err error) {
	e, ok := event.(*payment.SimulationRequestedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			payment.EventTypeSimulationRequested, event.EventType())
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "SimulateNotifyHandler", "Handle")
	defer func() { telemetry.EndSpan(span, err) }()

	req := e.PayRequest.Request
	if req.Simulate == nil {
		return fmt.Errorf("pay request %s has no simulation", req.ID)
	}
	sim := *req.Simulate

	target := req.PostbackURL
	if sim.Result == payment.SimulateChargeback {
		target = req.ChargebackURL
	}
	if target == "" {
		h.logger.Warn("no notice URL for simulation",
			zap.String("issuer_key", e.IssuerKey),
			zap.String("result", sim.Result),
		)
		h.metrics.RecordNoticeDelivery(ctx, sim.Result, "skipped")
		return nil
	}

	secret, err := h.secrets.Secret(ctx, e.IssuerKey)
	if err != nil {
		h.metrics.RecordNoticeDelivery(ctx, sim.Result, "failed")
		return fmt.Errorf("issuer secret: %w", err)
	}

	transID := payment.TransactionIDPrefix + uuid.NewString()
	notice, err := h.signer.Sign(e.IssuerKey, secret, e.PayRequest, transID, sim)
	if err != nil {
		h.metrics.RecordNoticeDelivery(ctx, sim.Result, "failed")
		return fmt.Errorf("sign notice: %w", err)
	}

	if err := h.deliverer.Deliver(ctx, target, notice, transID); err != nil {
		h.metrics.RecordNoticeDelivery(ctx, sim.Result, "failed")
		h.logger.Error("simulated notice not delivered",
			zap.String("target", target),
			zap.String("trans_id", transID),
			zap.Error(err),
		)
		return err
	}

	h.metrics.RecordNoticeDelivery(ctx, sim.Result, "acknowledged")
	h.logger.Info("simulated notice delivered",
		zap.String("target", target),
		zap.String("trans_id", transID),
		zap.String("result", sim.Result),
	)
	return nil
}

var _ shared.EventHandler = (*SimulateNotifyHandler)(nil)
