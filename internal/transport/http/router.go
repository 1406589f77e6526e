package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-waitlist-api/internal/application/waitlist"
	"github.com/go-waitlist-api/internal/config"
	"github.com/go-waitlist-api/internal/transport/http/handler"
	appmiddleware "github.com/go-waitlist-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// 5 requests/second, burst of 10 — applied to the public signup endpoint.
	signupRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	svc := waitlist.NewService(waitlist.ServiceDeps{
		Repo:      deps.WaitlistRepo,
		Tokens:    deps.Tokens,
		Mailer:    deps.Mailer,
		Gate:      deps.Gate,
		SMSSender: deps.SMSSender,
		Cfg:       cfg,
	})

	healthH := handler.NewHealthHandler()
	waitlistH := handler.NewWaitlistHandler(svc)
	verifyH := handler.NewVerifyHandler(svc, cfg.BaseURL)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Get("/waitlist", waitlistH.Status)
		r.With(signupRL.Limit).Post("/waitlist", waitlistH.Signup)
		r.With(appmiddleware.RequireAdminKey(cfg.AdminKey)).Get("/waitlist/stats", waitlistH.Stats)

		r.Get("/verify", verifyH.Verify)
	})

	return r
}
