package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrMalformedToken     = errors.New("malformed token")
	ErrTokenExpired       = errors.New("token expired")
	ErrSuspiciousActivity = errors.New("suspicious activity")
	ErrDeliveryFailure    = errors.New("delivery failure")
	ErrGateUnavailable    = errors.New("bot gate unavailable")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
)
