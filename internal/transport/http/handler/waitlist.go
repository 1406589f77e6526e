package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-waitlist-api/internal/application/waitlist"
	"github.com/go-waitlist-api/internal/domain"
)

// WaitlistHandler handles signup intake and the owner stats endpoint.
type WaitlistHandler struct {
	svc waitlist.Service
}

func NewWaitlistHandler(svc waitlist.Service) *WaitlistHandler {
	return &WaitlistHandler{svc: svc}
}

func (h *WaitlistHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.Signup(r.Context(), req, clientIP(r)); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "valid email is required")
		case errors.Is(err, domain.ErrSuspiciousActivity):
			writeError(w, http.StatusBadRequest, "request could not be verified")
		case errors.Is(err, domain.ErrDeliveryFailure), errors.Is(err, domain.ErrGateUnavailable):
			slog.Error("signup failed", "err", err)
			writeError(w, http.StatusInternalServerError, "failed to join waitlist, please try again")
		default:
			slog.Error("signup failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, SignupEnvelope{
		Success: true,
		Message: "check your inbox to confirm your email",
	})
}

// Status is a quick reachability probe for the signup endpoint.
func (h *WaitlistHandler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "waitlist API is up"})
}

// Stats reports the verified signup count. Gated by the admin-key middleware.
func (h *WaitlistHandler) Stats(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.VerifiedCount(r.Context())
	if err != nil {
		slog.Error("stats query failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, StatsEnvelope{Verified: n})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
