package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-waitlist-api/internal/domain"
)

const siteVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Result holds the scoring service's answer for one proof token.
type Result struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// Verifier scores client proof tokens against the reCAPTCHA siteverify API.
type Verifier struct {
	secret   string
	endpoint string
	client   *http.Client
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret:   secret,
		endpoint: siteVerifyURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Verify submits the proof token and returns the raw scoring result.
// Transport errors and non-200 responses map to domain.ErrGateUnavailable;
// policy (threshold comparison) is the caller's concern.
func (v *Verifier) Verify(ctx context.Context, proofToken, remoteIP string) (*Result, error) {
	form := url.Values{
		"secret":   {v.secret},
		"response": {proofToken},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recaptcha siteverify: %v: %w", err, domain.ErrGateUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recaptcha siteverify status %d: %w", resp.StatusCode, domain.ErrGateUnavailable)
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("recaptcha siteverify decode: %v: %w", err, domain.ErrGateUnavailable)
	}
	return &res, nil
}
