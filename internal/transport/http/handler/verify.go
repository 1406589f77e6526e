package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-waitlist-api/internal/application/waitlist"
	"github.com/go-waitlist-api/internal/domain"
)

// VerifyHandler handles the verification-link click and renders the HTML
// result pages.
type VerifyHandler struct {
	svc     waitlist.Service
	baseURL string
}

func NewVerifyHandler(svc waitlist.Service, baseURL string) *VerifyHandler {
	return &VerifyHandler{svc: svc, baseURL: baseURL}
}

type resultPage struct {
	Title   string
	Color   string
	Heading string
	Message string
	BaseURL string
}

var resultTmpl = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial; text-align: center; padding: 50px 20px; background: #f4f4f4; margin: 0; }
    .container { max-width: 500px; margin: 0 auto; background: white; padding: 40px; border-radius: 12px; }
    h1 { color: {{.Color}}; }
    p { color: #4A5568; line-height: 1.6; }
    a { color: #FF9A56; }
  </style>
</head>
<body>
  <div class="container">
    <h1>{{.Heading}}</h1>
    <p>{{.Message}}</p>
    <p><a href="{{.BaseURL}}">Return to the site</a></p>
  </div>
</body>
</html>
`))

func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	tok := r.URL.Query().Get("token")
	if tok == "" {
		h.render(w, http.StatusBadRequest, resultPage{
			Title: "Invalid Link", Color: "#ef4444", Heading: "Invalid Link",
			Message: "This verification link is invalid.",
		})
		return
	}

	outcome, _, err := h.svc.Verify(r.Context(), tok)
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		h.render(w, http.StatusBadRequest, resultPage{
			Title: "Link Expired", Color: "#f59e0b", Heading: "Link Expired",
			Message: "This verification link has expired. Please sign up again.",
		})
	case errors.Is(err, domain.ErrMalformedToken):
		h.render(w, http.StatusBadRequest, resultPage{
			Title: "Invalid Link", Color: "#ef4444", Heading: "Invalid Link",
			Message: "This verification link is invalid or malformed.",
		})
	case errors.Is(err, domain.ErrDeliveryFailure):
		// Verified, but a notification could not be delivered.
		slog.Error("post-verification delivery failed", "err", err)
		h.render(w, http.StatusInternalServerError, resultPage{
			Title: "Almost There", Color: "#f59e0b", Heading: "You're Verified",
			Message: "Your email is confirmed, but we couldn't send your welcome email. No action needed.",
		})
	case err != nil:
		slog.Error("verification failed", "err", err)
		h.render(w, http.StatusInternalServerError, resultPage{
			Title: "Something Went Wrong", Color: "#ef4444", Heading: "Something Went Wrong",
			Message: "We couldn't process this verification link. Please try again later.",
		})
	case outcome == waitlist.OutcomeAlreadyVerified:
		h.render(w, http.StatusOK, resultPage{
			Title: "Already Verified", Color: "#22c55e", Heading: "Already Verified",
			Message: "Your email has already been confirmed!",
		})
	default:
		h.render(w, http.StatusOK, resultPage{
			Title: "You're Verified!", Color: "#FF9A56", Heading: "You're Verified!",
			Message: "Thank you for confirming your email. You're now on the waitlist. Check your inbox for a welcome email.",
		})
	}
}

func (h *VerifyHandler) render(w http.ResponseWriter, status int, page resultPage) {
	page.BaseURL = h.baseURL
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := resultTmpl.Execute(w, page); err != nil {
		slog.Error("render result page", "err", err)
	}
}
