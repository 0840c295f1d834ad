// Package handler wires the HTTP surface: auth, entitlement-aware login,
// plan catalog, checkout-session creation, and session-backed quiz state.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mindfixhq/mindfix/internal/auth"
	"github.com/mindfixhq/mindfix/internal/billing"
	"github.com/mindfixhq/mindfix/internal/entitlement"
	"github.com/mindfixhq/mindfix/internal/plan"
	"github.com/mindfixhq/mindfix/internal/session"
	"github.com/mindfixhq/mindfix/internal/user"
)

// Healthcheck probes one dependency for the health endpoint.
type Healthcheck func(context.Context) error

// Deps carries everything the router serves. Sessions, Auth, Resolver, and
// Billing are required; the rest degrade gracefully when nil.
type Deps struct {
	Auth     auth.PasswordAuthenticator
	Sync     *user.SyncService
	Resolver *entitlement.Resolver
	Billing  *billing.Service
	Sessions *session.Manager
	Catalog  *plan.Catalog
	Checks   map[string]Healthcheck
	Log      *slog.Logger
}

type handlers struct {
	Deps
}

// New builds the application router.
func New(deps Deps) http.Handler {
	if deps.Log == nil {
		deps.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &handlers{Deps: deps}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if deps.Sessions != nil {
		r.Use(deps.Sessions.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", h.health)

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", h.signUp)
		api.Post("/auth/login", h.login)
		api.Post("/auth/logout", h.logout)
		api.Post("/auth/forgot-password", h.forgotPassword)
		api.Post("/auth/reset-password", h.resetPassword)

		api.Get("/plans", h.listPlans)

		api.Post("/billing/checkout-session", h.createCheckoutSession)

		api.Get("/session/quiz-result", h.getQuizResult)
		api.Put("/session/quiz-result", h.putQuizResult)
	})

	return r
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	out := make(map[string]string, len(h.Checks))
	for name, check := range h.Checks {
		if err := check(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			out[name] = err.Error()
			continue
		}
		out[name] = "ok"
	}
	respondJSON(w, status, out)
}
