package http

import (
	"github.com/go-waitlist-api/internal/application/waitlist"
	resendinfra "github.com/go-waitlist-api/internal/infrastructure/resend"
)

// Deps holds all infrastructure dependencies for the router.
// Gate and SMSSender may be nil; the corresponding features are then disabled.
type Deps struct {
	WaitlistRepo waitlist.WaitlistStore
	Tokens       waitlist.TokenProvider
	Mailer       resendinfra.Mailer
	Gate         waitlist.BotGate
	SMSSender    waitlist.SMSSender
}
