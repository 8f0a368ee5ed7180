package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/i18n"
	"github.com/marketplace/backend/internal/infrastructure/urlcheck"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testDomain            = "marketplace.test"
	testMarketplaceKey    = "marketplace-key"
	testMarketplaceSecret = "marketplace-secret"
	testIssuerKey         = "app-key"
	testIssuerSecret      = "app-secret"
)

type MockBillingService struct{ mock.Mock }

func (m *MockBillingService) GetTransaction(ctx context.Context, transID string) (*payment.Transaction, error) {
	args := m.Called(ctx, transID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockBillingService) StartTransaction(ctx context.Context, req payment.StartRequest) (*payment.Transaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockBillingService) SetTransactionStatus(ctx context.Context, transID string, status payment.TransactionStatus) error {
	return m.Called(ctx, transID, status).Error(0)
}

func (m *MockBillingService) GetBuyer(ctx context.Context, uuid string) (*payment.Buyer, error) {
	args := m.Called(ctx, uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Buyer), args.Error(1)
}

func (m *MockBillingService) SetNeedsPinReset(ctx context.Context, uuid string, value bool) error {
	return m.Called(ctx, uuid, value).Error(0)
}

func (m *MockBillingService) VerifyPin(ctx context.Context, uuid, pin string) (*payment.PinCheck, error) {
	args := m.Called(ctx, uuid, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PinCheck), args.Error(1)
}

type MockPriceCatalog struct{ mock.Mock }

func (m *MockPriceCatalog) GetPrice(ctx context.Context, pricePoint payment.PricePoint) (*payment.PriceTier, error) {
	args := m.Called(ctx, pricePoint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PriceTier), args.Error(1)
}

type MockIssuerRepository struct{ mock.Mock }

func (m *MockIssuerRepository) FindByKey(ctx context.Context, key string) (*payment.Issuer, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Issuer), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

type payFixture struct {
	svc       *Service
	cfg       config.PaymentConfig
	billing   *MockBillingService
	prices    *MockPriceCatalog
	issuers   *MockIssuerRepository
	publisher *recordingPublisher
	now       time.Time
}

func newPayFixture(t *testing.T, mutate ...func(*config.PaymentConfig)) *payFixture {
	t.Helper()
	cfg := config.PaymentConfig{
		Domain:          testDomain,
		Key:             testMarketplaceKey,
		Secret:          testMarketplaceSecret,
		BangoPayURL:     "https://mp.bango.test/pay/?bcid=%s",
		PinUnlockLength: 5 * time.Minute,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	f := &payFixture{
		cfg:       cfg,
		billing:   new(MockBillingService),
		prices:    new(MockPriceCatalog),
		issuers:   new(MockIssuerRepository),
		publisher: &recordingPublisher{},
		now:       time.Now(),
	}
	f.svc = NewService(cfg, Dependencies{
		Secrets:    NewSecretResolver(cfg.Key, cfg.Secret, f.issuers),
		Verifier:   auth.NewPayRequestVerifier(cfg.Domain),
		URLs:       urlcheck.NewVerifier(false, time.Second),
		Prices:     f.prices,
		Billing:    f.billing,
		Publisher:  f.publisher,
		Translator: i18n.NewTranslator(),
	}, zap.NewNop())
	f.svc.now = func() time.Time { return f.now }
	return f
}

func payRequestClaims(iss string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss": iss,
		"aud": testDomain,
		"typ": "mozilla/payments/pay/v1",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
		"request": map[string]any{
			"id":            "sku-1",
			"pricePoint":    10,
			"name":          "Magic Sword",
			"description":   "A sword",
			"postbackURL":   "https://app.example.com/postback",
			"chargebackURL": "https://app.example.com/chargeback",
		},
	}
}

func signRequest(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}
