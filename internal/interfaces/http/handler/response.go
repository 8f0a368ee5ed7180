package handler

import "github.com/marketplace/backend/internal/interfaces/http/dto"

// The types below only describe envelopes for the generated API docs.
// Handlers write dto.Response directly.

// APIResponse is the envelope around a page or action result
// @Description Envelope with a typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse
// @Description Failure envelope; error.code is one of the dto error codes
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}

// FormErrorResponse is a rejected review or moderation form sent back with
// the page it was posted from so the client can redisplay it.
// @Description Failure envelope that still carries the page data
type FormErrorResponse[T any] struct {
	Success bool           `json:"success" example:"false"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
}

// SuccessResponse acknowledges an action with no payload, such as saving the MOTD
// @Description Bare acknowledgement
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}
