// Package payment implements the buyer-facing pay flow: verifying pay
// requests, the lobby, PIN entry and the hand-off to the payment provider.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/i18n"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// PayRequestVerifier checks a signed pay request
type PayRequestVerifier interface {
	Verify(raw, secret string) (*payment.PayRequest, error)
}

// Translator localizes user-facing strings
type Translator interface {
	T(tag language.Tag, key string, args ...any) string
}

// Dependencies are the collaborators of the pay flow
type Dependencies struct {
	Secrets    *SecretResolver
	Verifier   PayRequestVerifier
	URLs       payment.URLVerifier
	Prices     payment.PriceCatalog
	Billing    payment.BillingService
	Publisher  shared.EventPublisher
	Translator Translator
	Metrics    *telemetry.AppMetrics
}

// Service runs the pay flow against the buyer's session
type Service struct {
	cfg      config.PaymentConfig
	deps     Dependencies
	validate *validator.Validate
	decode   func(raw string) (*auth.UnverifiedRequest, error)
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates the pay flow service
func NewService(cfg config.PaymentConfig, deps Dependencies, logger *zap.Logger) *Service {
	return &Service{
		cfg:      cfg,
		deps:     deps,
		validate: validator.New(),
		decode:   auth.DecodeUnverified,
		logger:   logger.Named("pay"),
		now:      time.Now,
	}
}

// PaymentURL is where a buyer with a freshly entered PIN continues
func (s *Service) PaymentURL() string {
	if s.cfg.FakePayments {
		return PathFakePay
	}
	return PathWaitToStart
}

// Lobby starts or resumes a payment. A req parameter replaces any
// payment already in the session.
func (s *Service) Lobby(ctx context.Context, sess *payment.Session, in LobbyInput, lang language.Tag) (res *Result, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "PayService", "Lobby")
	defer func() { telemetry.EndSpan(span, err) }()

	switch {
	case in.Req != "":
		if err := s.processPayReq(ctx, sess, in.Req); err != nil {
			return nil, err
		}
	case s.cfg.TestPinUI:
		sess.TransID = uuid.NewString()
	case sess.Notes == nil:
		return nil, payment.ErrReqRequired
	}

	if sess.PinRecentlyEntered(s.now(), s.cfg.PinUnlockLength) {
		return redirect(s.PaymentURL()), nil
	}

	// A buyer who closed the window during a PIN reset has to ask again.
	if sess.UUIDNeedsPinReset {
		if err := s.deps.Billing.SetNeedsPinReset(ctx, sess.UUID, false); err != nil {
			return nil, billingError(err)
		}
		sess.UUIDNeedsPinReset = false
	}

	if sess.IsSimulation {
		sim := sess.SimulateRequest()
		s.logger.Info("starting simulation",
			zap.Any("simulate", sim),
			zap.String("issuer_key", sess.Notes.IssuerKey),
		)
		return view(ViewSimulate, map[string]any{"simulate": sim}), nil
	}

	return view(ViewLobby, map[string]any{
		"action": PathPinVerify,
		"title":  s.deps.Translator.T(lang, i18n.MsgEnterPin),
	}), nil
}

// processPayReq verifies a pay request and stores it in the session.
// Real payments are started in the background.
func (s *Service) processPayReq(ctx context.Context, sess *payment.Session, raw string) error {
	unverified, err := s.decode(raw)
	if err != nil {
		s.deps.Metrics.RecordPayRequest(ctx, "rejected")
		return &RequestError{Err: payment.ErrInvalidPayRequest.WithMessage("req: " + err.Error())}
	}
	isSim := unverified.Simulate != nil

	reject := func(err error) error {
		s.deps.Metrics.RecordPayRequest(ctx, "rejected")
		s.logger.Warn("pay request rejected",
			zap.String("issuer", unverified.Issuer),
			zap.Bool("is_simulation", isSim),
			zap.Error(err),
		)
		return &RequestError{Err: err, IsSimulation: isSim}
	}

	if isSim {
		if err := unverified.Simulate.Validate(); err != nil {
			return reject(payment.ErrInvalidPayRequest.WithMessage("req: " + err.Error()))
		}
	}
	secret, err := s.deps.Secrets.Secret(ctx, unverified.Issuer)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return reject(payment.ErrInvalidPayRequest.WithMessage("req: No issuer found for key " + unverified.Issuer))
		}
		return err
	}

	if s.cfg.OnlySimulations && !isSim {
		return reject(payment.ErrPaymentsDisabled)
	}

	req, err := s.deps.Verifier.Verify(raw, secret)
	if err != nil {
		return reject(err)
	}
	if err := s.deps.URLs.Verify(ctx, isSim, req.Request.PostbackURL, req.Request.ChargebackURL); err != nil {
		return reject(err)
	}
	if _, err := s.deps.Prices.GetPrice(ctx, req.Request.PricePoint); err != nil {
		return reject(err)
	}

	sess.IsSimulation = isSim
	sess.Notes = &payment.Notes{PayRequest: *req, IssuerKey: unverified.Issuer}
	sess.TransID = payment.TransactionIDPrefix + uuid.NewString()

	if isSim {
		s.deps.Metrics.RecordPayRequest(ctx, "simulated")
		return nil
	}
	s.deps.Metrics.RecordPayRequest(ctx, "accepted")
	if !s.cfg.FakePayments {
		if err := s.deps.Publisher.Publish(ctx, payment.NewPayRequestAcceptedEvent(sess.TransID, *sess.Notes)); err != nil {
			s.logger.Error("failed to dispatch start_pay", zap.String("trans_id", sess.TransID), zap.Error(err))
		}
	}
	return nil
}

// Simulate dispatches the simulated notice of the session's request
func (s *Service) Simulate(ctx context.Context, sess *payment.Session) (*Result, error) {
	if !sess.IsSimulation || sess.Notes == nil {
		s.logger.Info("request to simulate without a valid session")
		return nil, payment.ErrNotSimulation
	}
	event := payment.NewSimulationRequestedEvent(sess.Notes.IssuerKey, sess.Notes.PayRequest)
	if err := s.deps.Publisher.Publish(ctx, event); err != nil {
		return nil, fmt.Errorf("dispatch simulation: %w", err)
	}
	return view(ViewSimulateDone, nil), nil
}

// FakePay renders the fake payment page when fake payments are on
func (s *Service) FakePay() (*Result, error) {
	if !s.cfg.FakePayments {
		return nil, payment.ErrFakePaymentsOff
	}
	return view(ViewFakePay, nil), nil
}

// FakeBangoURL renders the stand-in for the provider's payment page
func (s *Service) FakeBangoURL(sess *payment.Session, billConfigID string) (*Result, error) {
	if !sess.IsVerified() {
		return nil, payment.ErrBuyerNotVerified
	}
	if strings.TrimSpace(billConfigID) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("bcid is required")
	}
	return view(ViewFakeBangoURL, map[string]any{"bill_config_id": billConfigID}), nil
}

// transaction returns the session's transaction. Unknown transactions
// come back with a nil status.
func (s *Service) transaction(ctx context.Context, sess *payment.Session) (*payment.Transaction, error) {
	if sess.TransID == "" {
		return &payment.Transaction{}, nil
	}
	trans, err := s.deps.Billing.GetTransaction(ctx, sess.TransID)
	if errors.Is(err, payment.ErrTransactionNotFound) {
		return &payment.Transaction{}, nil
	}
	if err != nil {
		return nil, billingError(err)
	}
	return trans, nil
}

func (s *Service) bangoStartURL(uidPay string) string {
	url := s.cfg.BangoURL(uidPay)
	s.logger.Info("start bango pay", zap.String("url", url))
	return url
}

// WaitToStart sends the buyer to the provider once the transaction is
// configured, or renders the polling page until then.
func (s *Service) WaitToStart(ctx context.Context, sess *payment.Session) (res *Result, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "PayService", "WaitToStart",
		attribute.String("trans_id", sess.TransID))
	defer func() { telemetry.EndSpan(span, err) }()

	if !sess.IsVerified() {
		return nil, payment.ErrBuyerNotVerified
	}
	trans, err := s.transaction(ctx, sess)
	if err != nil {
		return nil, err
	}
	if trans.IsEnded() {
		s.logger.Warn("attempt to restart finished transaction", zap.String("trans_id", sess.TransID))
		return nil, payment.ErrTransactionEnded
	}
	if trans.IsPending() {
		return redirect(s.bangoStartURL(trans.UIDPay)), nil
	}
	return view(ViewWaitToStart, nil), nil
}

// TransStartURL reports the transaction status and, once pending, the payment URL
func (s *Service) TransStartURL(ctx context.Context, sess *payment.Session) (*TransStartView, error) {
	if !sess.IsVerified() {
		return nil, payment.ErrBuyerNotVerified
	}
	trans, err := s.transaction(ctx, sess)
	if err != nil {
		return nil, err
	}
	out := &TransStartView{Status: trans.Status}
	if trans.IsPending() {
		url := s.bangoStartURL(trans.UIDPay)
		out.URL = &url
	}
	return out, nil
}

// VerifyPin checks the buyer's PIN with the billing service
func (s *Service) VerifyPin(ctx context.Context, sess *payment.Session, form PinForm) (res *Result, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "PayService", "VerifyPin")
	defer func() { telemetry.EndSpan(span, err) }()

	if !sess.IsVerified() {
		return nil, payment.ErrBuyerNotVerified
	}
	if err := s.validate.Struct(form); err != nil {
		return nil, shared.ErrInvalidInput.WithMessage("pin: Enter your 4 digit PIN.")
	}

	check, err := s.deps.Billing.VerifyPin(ctx, sess.UUID, form.Pin)
	if err != nil {
		return nil, billingError(err)
	}
	switch {
	case check.Locked:
		s.deps.Metrics.RecordPinVerification(ctx, "locked")
		return nil, payment.ErrPinLocked
	case !check.Valid:
		s.deps.Metrics.RecordPinVerification(ctx, "wrong")
		return nil, payment.ErrWrongPin
	}

	s.deps.Metrics.RecordPinVerification(ctx, "ok")
	now := s.now()
	sess.LastPinSuccess = &now
	return redirect(s.PaymentURL()), nil
}

// VerifyBuyer attaches an authenticated buyer to the session
func (s *Service) VerifyBuyer(ctx context.Context, sess *payment.Session, buyerUUID string) (*BuyerView, error) {
	buyer, err := s.deps.Billing.GetBuyer(ctx, buyerUUID)
	if err != nil {
		return nil, billingError(err)
	}
	sess.UUID = buyerUUID
	sess.UUIDNeedsPinReset = buyer.NeedsPinReset
	return &BuyerView{UUID: buyerUUID, HasPin: buyer.HasPin, NeedsPinReset: buyer.NeedsPinReset}, nil
}

// billingError keeps domain errors and marks anything else as a billing outage
func billingError(err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return errors.Join(payment.ErrBillingUnavailable, err)
}
