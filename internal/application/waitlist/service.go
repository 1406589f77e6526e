package waitlist

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-waitlist-api/internal/config"
	"github.com/go-waitlist-api/internal/domain"
	"github.com/go-waitlist-api/internal/infrastructure/recaptcha"
	resendinfra "github.com/go-waitlist-api/internal/infrastructure/resend"
	"github.com/go-waitlist-api/internal/infrastructure/token"
	"github.com/go-waitlist-api/internal/pkg/validate"
	"github.com/oklog/ulid/v2"
)

// Outcome is the terminal result of a verification attempt. Both values are
// success-class: re-verifying an already-verified email is a no-op, never an
// error.
type Outcome int

const (
	OutcomeVerified Outcome = iota
	OutcomeAlreadyVerified
)

// WaitlistStore is the minimal interface the service requires from the
// verified-email store.
type WaitlistStore interface {
	MarkVerified(ctx context.Context, e *domain.WaitlistEntry) error
	Count(ctx context.Context) (int, error)
}

// TokenProvider signs and verifies self-contained verification tokens.
type TokenProvider interface {
	Sign(email string) (string, error)
	Verify(tokenStr string) (*token.Claims, error)
}

// BotGate scores client proof tokens via an external service.
type BotGate interface {
	Verify(ctx context.Context, proofToken, remoteIP string) (*recaptcha.Result, error)
}

// SMSSender pings the owner over SMS. Optional.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type Service interface {
	// Signup validates the email, runs the bot gate when configured, issues a
	// verification token and dispatches the verification email.
	Signup(ctx context.Context, req domain.SignupRequest, remoteIP string) error
	// Verify consumes a verification token and finalizes the signup. The
	// returned email is the normalized subject of the token.
	Verify(ctx context.Context, tokenStr string) (Outcome, string, error)
	// VerifiedCount reports the number of verified entries.
	VerifiedCount(ctx context.Context) (int, error)
}

// ServiceDeps bundles the service's collaborators. Gate and SMSSender may be
// nil, which disables the bot gate and the owner SMS ping respectively.
type ServiceDeps struct {
	Repo      WaitlistStore
	Tokens    TokenProvider
	Mailer    resendinfra.Mailer
	Gate      BotGate
	SMSSender SMSSender
	Cfg       *config.Config
}

type service struct {
	repo      WaitlistStore
	tokens    TokenProvider
	mailer    resendinfra.Mailer
	gate      BotGate
	smsSender SMSSender
	cfg       *config.Config
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:      deps.Repo,
		tokens:    deps.Tokens,
		mailer:    deps.Mailer,
		gate:      deps.Gate,
		smsSender: deps.SMSSender,
		cfg:       deps.Cfg,
	}
}

func (s *service) Signup(ctx context.Context, req domain.SignupRequest, remoteIP string) error {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}

	// The gate runs strictly before token issuance and delivery.
	if s.gate != nil {
		if req.RecaptchaToken == "" {
			return fmt.Errorf("recaptcha token required: %w", domain.ErrInvalidInput)
		}
		res, err := s.gate.Verify(ctx, req.RecaptchaToken, remoteIP)
		if err != nil {
			return err
		}
		if !res.Success || res.Score < s.cfg.BotScoreThreshold {
			return fmt.Errorf("recaptcha score %.2f below threshold: %w", res.Score, domain.ErrSuspiciousActivity)
		}
	}

	tok, err := s.tokens.Sign(req.Email)
	if err != nil {
		return fmt.Errorf("issue verification token: %w", err)
	}
	link := fmt.Sprintf("%s/v1/verify?token=%s", s.cfg.BaseURL, url.QueryEscape(tok))

	subject, html := verificationEmail(link)
	if err := s.mailer.Send(ctx, resendinfra.Message{
		From:    s.cfg.VerifyFromAddr,
		To:      req.Email,
		Subject: subject,
		HTML:    html,
	}); err != nil {
		return err
	}

	slog.Info("waitlist signup", "email", req.Email)
	return nil
}

func (s *service) Verify(ctx context.Context, tokenStr string) (Outcome, string, error) {
	claims, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return 0, "", err
	}
	email := domain.NormalizeEmail(claims.Email)

	entry := &domain.WaitlistEntry{
		Email:      email,
		EntryID:    ulid.MustNew(ulid.Now(), rand.Reader).String(),
		VerifiedAt: time.Now().UTC(),
	}
	if err := s.repo.MarkVerified(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return OutcomeAlreadyVerified, email, nil
		}
		return 0, "", err
	}

	slog.Info("email verified", "email", email)

	// Notifications fire only after the state transition, once per email.
	var deliveryErr error
	if s.cfg.OwnerNotifyAddr != "" {
		subject, html := ownerNotification(email, entry.VerifiedAt)
		if err := s.mailer.Send(ctx, resendinfra.Message{
			From:    s.cfg.VerifyFromAddr,
			To:      s.cfg.OwnerNotifyAddr,
			Subject: subject,
			HTML:    html,
		}); err != nil {
			slog.Error("owner notification failed", "email", email, "err", err)
			deliveryErr = err
		}
	}

	subject, html := welcomeEmail(s.cfg.BaseURL)
	if err := s.mailer.Send(ctx, resendinfra.Message{
		From:    s.cfg.WelcomeFromAddr,
		To:      email,
		Subject: subject,
		HTML:    html,
	}); err != nil {
		slog.Error("welcome email failed", "email", email, "err", err)
		if deliveryErr == nil {
			deliveryErr = err
		}
	}

	if s.smsSender != nil && s.cfg.OwnerNotifyPhone != "" {
		msg := fmt.Sprintf("New verified waitlist signup: %s", email)
		if err := s.smsSender.SendSMS(ctx, s.cfg.OwnerNotifyPhone, msg); err != nil {
			// Secondary channel; email remains the contractual notification.
			slog.Warn("owner SMS ping failed", "err", err)
		}
	}

	return OutcomeVerified, email, deliveryErr
}

func (s *service) VerifiedCount(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
