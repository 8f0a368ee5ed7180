package payment

import "github.com/marketplace/backend/internal/domain/shared"

// Payment errors. Codes map to HTTP statuses in the interfaces layer.
var (
	ErrPaymentsDisabled    = shared.NewDomainError("PAYMENTS_DISABLED", "Payments are temporarily disabled.")
	ErrInvalidPayRequest   = shared.NewDomainError("INVALID_PAY_REQUEST", "Invalid payment request")
	ErrRequestExpired      = shared.NewDomainError("REQUEST_EXPIRED", "Payment request has expired")
	ErrInvalidURL          = shared.NewDomainError("INVALID_URL", "Invalid URL")
	ErrTierNotFound        = shared.NewDomainError("TIER_NOT_FOUND", "Price point is not known")
	ErrReqRequired         = shared.NewDomainError("REQ_REQUIRED", "req is required")
	ErrTransactionEnded    = shared.NewDomainError("TRANSACTION_ENDED", "Transaction has already ended.")
	ErrTransactionNotFound = shared.NewDomainError("TRANSACTION_NOT_FOUND", "Transaction not found")
	ErrNotSimulation       = shared.NewDomainError("NOT_SIMULATION", "No simulation in progress")
	ErrFakePaymentsOff     = shared.NewDomainError("FAKE_PAYMENTS_DISABLED", "Fake payments are disabled")
	ErrBuyerNotVerified    = shared.NewDomainError("BUYER_NOT_VERIFIED", "Buyer is not verified")
	ErrWrongPin            = shared.NewDomainError("WRONG_PIN", "Wrong pin")
	ErrPinLocked           = shared.NewDomainError("PIN_LOCKED", "Pin is locked")
	ErrBillingUnavailable  = shared.NewDomainError("BILLING_UNAVAILABLE", "Billing service error")
	ErrMarketplaceError    = shared.NewDomainError("MARKETPLACE_ERROR", "Marketplace API error")
)
