// Package httptransport assembles the HTTP surface: middleware ordering,
// public endpoints and the authenticated API group.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	authhandler "github.com/willian-mayer/listify/internal/auth/handler"
	listhandler "github.com/willian-mayer/listify/internal/list/handler"
	sharehandler "github.com/willian-mayer/listify/internal/share/handler"
	"github.com/willian-mayer/listify/pkg/platform/httputil"
	authmw "github.com/willian-mayer/listify/pkg/platform/middleware/auth"
	"github.com/willian-mayer/listify/pkg/platform/middleware/requestid"
	"github.com/willian-mayer/listify/pkg/platform/middleware/requesttime"
)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// Deps collects everything the router mounts. Handlers register their own
// routes; the router only decides which group they land in.
type Deps struct {
	Logger *slog.Logger

	Auth  *authhandler.Handler
	Lists *listhandler.Handler
	Share *sharehandler.Handler

	Verifier authmw.TokenVerifier
	Resolver authmw.IdentityResolver

	// HealthChecks run in parallel on GET /health, keyed by component name.
	HealthChecks map[string]HealthCheck
}

const healthTimeout = 2 * time.Second

// NewRouter builds the chi router. Request ID and request time middleware
// run on every route; bearer auth guards everything except registration,
// login, health and metrics.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/", handleRoot)
	r.Get("/health", handleHealth(deps))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	deps.Auth.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(deps.Verifier, deps.Resolver, deps.Logger))
		deps.Auth.RegisterProtected(r)
		deps.Lists.RegisterProtected(r)
		deps.Share.RegisterProtected(r)
	})

	return r
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"service": "listify",
		"status":  "ok",
	})
}

// handleHealth probes all dependencies concurrently and reports per-component
// status. Any failing component turns the overall response into a 503.
func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		var mu sync.Mutex
		results := make(map[string]string, len(deps.HealthChecks))

		g, ctx := errgroup.WithContext(ctx)
		for name, check := range deps.HealthChecks {
			g.Go(func() error {
				err := check(ctx)
				mu.Lock()
				if err != nil {
					results[name] = "unhealthy"
				} else {
					results[name] = "ok"
				}
				mu.Unlock()
				return err
			})
		}

		status := http.StatusOK
		if err := g.Wait(); err != nil {
			deps.Logger.WarnContext(ctx, "health check failed", "error", err)
			status = http.StatusServiceUnavailable
		}

		word := "ok"
		if status != http.StatusOK {
			word = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{
			"status":     word,
			"components": results,
		})
	}
}
