package waitlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-waitlist-api/internal/config"
	"github.com/go-waitlist-api/internal/domain"
	"github.com/go-waitlist-api/internal/infrastructure/recaptcha"
	resendinfra "github.com/go-waitlist-api/internal/infrastructure/resend"
	"github.com/go-waitlist-api/internal/infrastructure/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockWaitlistStore struct{ mock.Mock }

func (m *mockWaitlistStore) MarkVerified(ctx context.Context, e *domain.WaitlistEntry) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockWaitlistStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) Sign(email string) (string, error) {
	args := m.Called(email)
	return args.String(0), args.Error(1)
}
func (m *mockTokens) Verify(tokenStr string) (*token.Claims, error) {
	args := m.Called(tokenStr)
	if c, _ := args.Get(0).(*token.Claims); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, msg resendinfra.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type mockGate struct{ mock.Mock }

func (m *mockGate) Verify(ctx context.Context, proofToken, remoteIP string) (*recaptcha.Result, error) {
	args := m.Called(ctx, proofToken, remoteIP)
	if r, _ := args.Get(0).(*recaptcha.Result); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, msg string) error {
	return m.Called(ctx, to, msg).Error(0)
}

// --- helpers ---

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:           "https://waitlist.example.com",
		VerifyFromAddr:    "waitlist@example.com",
		WelcomeFromAddr:   "hello@example.com",
		OwnerNotifyAddr:   "owner@example.com",
		BotScoreThreshold: 0.5,
	}
}

func verifiedClaims(email string) *token.Claims {
	now := time.Now()
	return &token.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}
}

func sentTo(to string) interface{} {
	return mock.MatchedBy(func(msg resendinfra.Message) bool { return msg.To == to })
}

// --- Signup ---

func TestSignup_InvalidEmail(t *testing.T) {
	ml := &mockMailer{}
	tk := &mockTokens{}
	svc := NewService(ServiceDeps{Tokens: tk, Mailer: ml, Cfg: testConfig()})

	err := svc.Signup(context.Background(), domain.SignupRequest{Email: "bad-email"}, "1.2.3.4")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	tk.AssertNotCalled(t, "Sign", mock.Anything)
	ml.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSignup_SendsVerificationLink(t *testing.T) {
	tk := &mockTokens{}
	tk.On("Sign", "user@example.com").Return("tok123", nil)
	ml := &mockMailer{}
	ml.On("Send", mock.Anything, mock.MatchedBy(func(msg resendinfra.Message) bool {
		return msg.To == "user@example.com" && msg.From == "waitlist@example.com"
	})).Return(nil)

	svc := NewService(ServiceDeps{Tokens: tk, Mailer: ml, Cfg: testConfig()})
	err := svc.Signup(context.Background(), domain.SignupRequest{Email: "user@example.com"}, "1.2.3.4")

	require.NoError(t, err)
	ml.AssertNumberOfCalls(t, "Send", 1)

	sent := ml.Calls[0].Arguments.Get(1).(resendinfra.Message)
	assert.Contains(t, sent.HTML, "https://waitlist.example.com/v1/verify?token=tok123")
}

func TestSignup_NormalizesEmail(t *testing.T) {
	tk := &mockTokens{}
	tk.On("Sign", "user@example.com").Return("tok123", nil)
	ml := &mockMailer{}
	ml.On("Send", mock.Anything, sentTo("user@example.com")).Return(nil)

	svc := NewService(ServiceDeps{Tokens: tk, Mailer: ml, Cfg: testConfig()})
	err := svc.Signup(context.Background(), domain.SignupRequest{Email: "  User@Example.COM "}, "1.2.3.4")

	require.NoError(t, err)
	tk.AssertCalled(t, "Sign", "user@example.com")
}

func TestSignup_DeliveryFailure(t *testing.T) {
	tk := &mockTokens{}
	tk.On("Sign", mock.Anything).Return("tok123", nil)
	ml := &mockMailer{}
	ml.On("Send", mock.Anything, mock.Anything).Return(domain.ErrDeliveryFailure)

	svc := NewService(ServiceDeps{Tokens: tk, Mailer: ml, Cfg: testConfig()})
	err := svc.Signup(context.Background(), domain.SignupRequest{Email: "user@example.com"}, "1.2.3.4")

	assert.ErrorIs(t, err, domain.ErrDeliveryFailure)
}

func TestSignup_GateRejectsLowScore(t *testing.T) {
	gate := &mockGate{}
	gate.On("Verify", mock.Anything, "proof", "1.2.3.4").
		Return(&recaptcha.Result{Success: true, Score: 0.3}, nil)
	tk := &mockTokens{}
	ml := &mockMailer{}

	svc := NewService(ServiceDeps{Tokens: tk, Mailer: ml, Gate: gate, Cfg: testConfig()})
	err := svc.Signup(context.Background(), domain.SignupRequest{
		Email:          "user@example.com",
		RecaptchaToken: "proof",
	}, "1.2.3.4")

	assert.ErrorIs(t, err, domain.ErrSuspiciousActivity)
	tk.AssertNotCalled(t, "Sign", mock.Anything)
	ml.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSignup_GateRejectsFailedCheck(t *testing.T) {
	gate := &mockGate{}
	gate.On("Verify", mock.Anything, "proof", mock.Anything).
		Return(&recaptcha.Result{Success: false, Score: 0.9}, nil)

	svc := NewService(ServiceDeps{Tokens: &mockTokens{}, Mailer: &mockMailer{}, Gate: gate, Cfg: testConfig()})
	err := svc.Signup(context.Background(), domain.SignupRequest{
		Email:          "user@example.com",
		RecaptchaToken: "proof",
	}, "1.2.3.4")

	assert.ErrorIs(t, err, domain.ErrSuspiciousActivity)
}

func TestSignup_GateRequiresProofToken(t *testing.T) {
	gate := &mockGate{}

	svc := NewService(ServiceDeps{Tokens: &mockTokens{}, Mailer: &mockMailer{}, Gate: gate, Cfg: testConfig()})
	err := svc.Signup(context.Background(), domain.SignupRequest{Email: "user@example.com"}, "1.2.3.4")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	gate.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignup_GateUnavailable(t *testing.T) {
	gate := &mockGate{}
	gate.On("Verify", mock.Anything, "proof", mock.Anything).
		Return(nil, domain.ErrGateUnavailable)
	ml := &mockMailer{}

	svc := NewService(ServiceDeps{Tokens: &mockTokens{}, Mailer: ml, Gate: gate, Cfg: testConfig()})
	err := svc.Signup(context.Background(), domain.SignupRequest{
		Email:          "user@example.com",
		RecaptchaToken: "proof",
	}, "1.2.3.4")

	assert.ErrorIs(t, err, domain.ErrGateUnavailable)
	ml.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

// --- Verify ---

func TestVerify_Succeeds(t *testing.T) {
	tk := &mockTokens{}
	tk.On("Verify", "tok123").Return(verifiedClaims("user@example.com"), nil)
	repo := &mockWaitlistStore{}
	repo.On("MarkVerified", mock.Anything, mock.MatchedBy(func(e *domain.WaitlistEntry) bool {
		return e.Email == "user@example.com" && e.EntryID != "" && !e.VerifiedAt.IsZero()
	})).Return(nil)
	ml := &mockMailer{}
	ml.On("Send", mock.Anything, sentTo("owner@example.com")).Return(nil)
	ml.On("Send", mock.Anything, sentTo("user@example.com")).Return(nil)

	svc := NewService(ServiceDeps{Repo: repo, Tokens: tk, Mailer: ml, Cfg: testConfig()})
	outcome, email, err := svc.Verify(context.Background(), "tok123")

	require.NoError(t, err)
	assert.Equal(t, OutcomeVerified, outcome)
	assert.Equal(t, "user@example.com", email)
	ml.AssertNumberOfCalls(t, "Send", 2)
}

func TestVerify_AlreadyVerified(t *testing.T) {
	tk := &mockTokens{}
	tk.On("Verify", "tok123").Return(verifiedClaims("user@example.com"), nil)
	repo := &mockWaitlistStore{}
	repo.On("MarkVerified", mock.Anything, mock.Anything).Return(domain.ErrConflict)
	ml := &mockMailer{}

	svc := NewService(ServiceDeps{Repo: repo, Tokens: tk, Mailer: ml, Cfg: testConfig()})
	outcome, email, err := svc.Verify(context.Background(), "tok123")

	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyVerified, outcome)
	assert.Equal(t, "user@example.com", email)
	ml.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestVerify_ExpiredToken(t *testing.T) {
	tk := &mockTokens{}
	tk.On("Verify", "stale").Return(nil, domain.ErrTokenExpired)
	repo := &mockWaitlistStore{}
	ml := &mockMailer{}

	svc := NewService(ServiceDeps{Repo: repo, Tokens: tk, Mailer: ml, Cfg: testConfig()})
	_, _, err := svc.Verify(context.Background(), "stale")

	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	repo.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
	ml.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestVerify_MalformedToken(t *testing.T) {
	tk := &mockTokens{}
	tk.On("Verify", "garbage").Return(nil, domain.ErrMalformedToken)
	repo := &mockWaitlistStore{}

	svc := NewService(ServiceDeps{Repo: repo, Tokens: tk, Mailer: &mockMailer{}, Cfg: testConfig()})
	_, _, err := svc.Verify(context.Background(), "garbage")

	assert.ErrorIs(t, err, domain.ErrMalformedToken)
	repo.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
}

func TestVerify_WelcomeDeliveryFailureStillVerifies(t *testing.T) {
	tk := &mockTokens{}
	tk.On("Verify", "tok123").Return(verifiedClaims("user@example.com"), nil)
	repo := &mockWaitlistStore{}
	repo.On("MarkVerified", mock.Anything, mock.Anything).Return(nil)
	ml := &mockMailer{}
	ml.On("Send", mock.Anything, sentTo("owner@example.com")).Return(nil)
	ml.On("Send", mock.Anything, sentTo("user@example.com")).Return(domain.ErrDeliveryFailure)

	svc := NewService(ServiceDeps{Repo: repo, Tokens: tk, Mailer: ml, Cfg: testConfig()})
	outcome, _, err := svc.Verify(context.Background(), "tok123")

	assert.Equal(t, OutcomeVerified, outcome)
	assert.ErrorIs(t, err, domain.ErrDeliveryFailure)
}

func TestVerify_SMSPingFailureIsNonFatal(t *testing.T) {
	cfg := testConfig()
	cfg.OwnerNotifyPhone = "+15550100"

	tk := &mockTokens{}
	tk.On("Verify", "tok123").Return(verifiedClaims("user@example.com"), nil)
	repo := &mockWaitlistStore{}
	repo.On("MarkVerified", mock.Anything, mock.Anything).Return(nil)
	ml := &mockMailer{}
	ml.On("Send", mock.Anything, mock.Anything).Return(nil)
	sms := &mockSMSSender{}
	sms.On("SendSMS", mock.Anything, "+15550100", mock.Anything).Return(errors.New("sns down"))

	svc := NewService(ServiceDeps{Repo: repo, Tokens: tk, Mailer: ml, SMSSender: sms, Cfg: cfg})
	outcome, _, err := svc.Verify(context.Background(), "tok123")

	require.NoError(t, err)
	assert.Equal(t, OutcomeVerified, outcome)
	sms.AssertNumberOfCalls(t, "SendSMS", 1)
}

// --- end to end through the real token provider ---

func TestSignupThenVerify_RoundTrip(t *testing.T) {
	tokens, err := token.NewProvider("test-key", 24*time.Hour)
	require.NoError(t, err)

	repo := &mockWaitlistStore{}
	ml := &mockMailer{}

	var issued string
	ml.On("Send", mock.Anything, sentTo("user@example.com")).Return(nil)
	repo.On("MarkVerified", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("MarkVerified", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	cfg := testConfig()
	cfg.OwnerNotifyAddr = "" // keep the mail expectations to the user address
	svc := NewService(ServiceDeps{Repo: repo, Tokens: tokens, Mailer: ml, Cfg: cfg})

	require.NoError(t, svc.Signup(context.Background(), domain.SignupRequest{Email: "user@example.com"}, "1.2.3.4"))
	issued, err = tokens.Sign("user@example.com")
	require.NoError(t, err)

	outcome, email, err := svc.Verify(context.Background(), issued)
	require.NoError(t, err)
	assert.Equal(t, OutcomeVerified, outcome)
	assert.Equal(t, "user@example.com", email)

	// Same or re-issued token for the same email is idempotent.
	outcome, _, err = svc.Verify(context.Background(), issued)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyVerified, outcome)

	reissued, err := tokens.Sign("user@example.com")
	require.NoError(t, err)
	outcome, _, err = svc.Verify(context.Background(), reissued)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyVerified, outcome)
}

func TestVerifiedCount(t *testing.T) {
	repo := &mockWaitlistStore{}
	repo.On("Count", mock.Anything).Return(42, nil)

	svc := NewService(ServiceDeps{Repo: repo, Cfg: testConfig()})
	n, err := svc.VerifiedCount(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, n)
}
