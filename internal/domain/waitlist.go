package domain

import (
	"strings"
	"time"
)

// WaitlistEntry is the durable record of a verified waitlist signup.
// PK: email (normalized). Created exactly once at first successful
// verification and never mutated afterwards.
type WaitlistEntry struct {
	Email      string    `json:"email" dynamodbav:"email"`
	EntryID    string    `json:"entry_id" dynamodbav:"entry_id"`
	VerifiedAt time.Time `json:"verified_at" dynamodbav:"verified_at"`
}

// SignupRequest is the body of POST /v1/waitlist.
// RecaptchaToken is required only when the bot gate is configured.
type SignupRequest struct {
	Email          string `json:"email" validate:"required,contains=@"`
	RecaptchaToken string `json:"recaptchaToken"`
}

// NormalizeEmail canonicalizes an address before any token or store use.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
