package payment

import (
	"context"

	"github.com/marketplace/backend/internal/domain/payment"
)

// SecretResolver finds the signing secret of a pay request issuer: the
// marketplace itself or a registered in-app issuer.
type SecretResolver struct {
	marketplaceKey    string
	marketplaceSecret string
	issuers           payment.IssuerRepository
}

// NewSecretResolver creates a resolver
func NewSecretResolver(marketplaceKey, marketplaceSecret string, issuers payment.IssuerRepository) *SecretResolver {
	return &SecretResolver{
		marketplaceKey:    marketplaceKey,
		marketplaceSecret: marketplaceSecret,
		issuers:           issuers,
	}
}

// Secret returns the issuer's secret, or shared.ErrNotFound for unknown issuers
func (r *SecretResolver) Secret(ctx context.Context, issuerKey string) (string, error) {
	if r.marketplaceKey != "" && issuerKey == r.marketplaceKey {
		return r.marketplaceSecret, nil
	}
	issuer, err := r.issuers.FindByKey(ctx, issuerKey)
	if err != nil {
		return "", err
	}
	return issuer.Secret, nil
}
