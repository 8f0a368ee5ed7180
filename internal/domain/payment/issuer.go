package payment

import (
	"context"

	"github.com/marketplace/backend/internal/domain/shared"
)

// Issuer is an app developer allowed to sign pay requests.
type Issuer struct {
	shared.BaseEntity
	Key    string
	Secret string
	Name   string
	Active bool
}

// IssuerRepository looks up registered in-app payment issuers.
type IssuerRepository interface {
	// FindByKey returns shared.ErrNotFound for unknown or inactive keys.
	FindByKey(ctx context.Context, key string) (*Issuer, error)
}
