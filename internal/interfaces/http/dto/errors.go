package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation     = "ERR_VALIDATION"
	ErrCodeInvalidFormset = "ERR_INVALID_FORMSET"
	ErrCodeInvalidAction  = "ERR_INVALID_ACTION"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Editor review error codes
const (
	ErrCodeSelfReview        = "ERR_SELF_REVIEW"
	ErrCodeInvalidReviewForm = "ERR_INVALID_REVIEW_FORM"
)

// Pay flow error codes
const (
	ErrCodePaymentsDisabled    = "ERR_PAYMENTS_DISABLED"
	ErrCodeInvalidPayRequest   = "ERR_INVALID_PAY_REQUEST"
	ErrCodeRequestExpired      = "ERR_REQUEST_EXPIRED"
	ErrCodeInvalidURL          = "ERR_INVALID_URL"
	ErrCodeTierNotFound        = "ERR_TIER_NOT_FOUND"
	ErrCodeReqRequired         = "ERR_REQ_REQUIRED"
	ErrCodeTransactionEnded    = "ERR_TRANSACTION_ENDED"
	ErrCodeTransactionNotFound = "ERR_TRANSACTION_NOT_FOUND"
	ErrCodeNotSimulation       = "ERR_NOT_SIMULATION"
	ErrCodeFakePaymentsOff     = "ERR_FAKE_PAYMENTS_DISABLED"
	ErrCodeBuyerNotVerified    = "ERR_BUYER_NOT_VERIFIED"
	ErrCodeWrongPin            = "ERR_WRONG_PIN"
	ErrCodePinLocked           = "ERR_PIN_LOCKED"
	ErrCodeBillingUnavailable  = "ERR_BILLING_UNAVAILABLE"
	ErrCodeMarketplaceError    = "ERR_MARKETPLACE_ERROR"
)

// Upstream error codes
const (
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
	ErrCodeUpstream           = "ERR_UPSTREAM"
	ErrCodeRateLimited        = "ERR_RATE_LIMITED"
	ErrCodeRequestTooLarge    = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeInvalidFormset: http.StatusBadRequest,
	ErrCodeInvalidAction:  http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeSelfReview:        http.StatusForbidden,
	ErrCodeInvalidReviewForm: http.StatusBadRequest,

	// Payments are switched off for real money: 503 so clients retry later
	ErrCodePaymentsDisabled:    http.StatusServiceUnavailable,
	ErrCodeInvalidPayRequest:   http.StatusBadRequest,
	ErrCodeRequestExpired:      http.StatusBadRequest,
	ErrCodeInvalidURL:          http.StatusBadRequest,
	ErrCodeTierNotFound:        http.StatusBadRequest,
	ErrCodeMarketplaceError:    http.StatusBadRequest,
	ErrCodeReqRequired:         http.StatusBadRequest,
	ErrCodeTransactionEnded:    http.StatusBadRequest,
	ErrCodeTransactionNotFound: http.StatusNotFound,
	ErrCodeNotSimulation:       http.StatusForbidden,
	ErrCodeFakePaymentsOff:     http.StatusForbidden,
	ErrCodeBuyerNotVerified:    http.StatusForbidden,
	ErrCodeWrongPin:            http.StatusBadRequest,
	ErrCodePinLocked:           http.StatusForbidden,
	ErrCodeBillingUnavailable:  http.StatusBadGateway,

	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeUpstream:           http.StatusBadGateway,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already carrying the ERR_ prefix are returned as-is.
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeUnknown
	}
	if len(code) > 4 && code[:4] == "ERR_" {
		return code
	}
	return "ERR_" + code
}
