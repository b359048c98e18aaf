package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Eatzy/auth-service/internal/auth/service"
	"github.com/Eatzy/auth-service/internal/auth/store"
	"github.com/Eatzy/auth-service/pkg/httpx"
	"github.com/Eatzy/auth-service/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	adminSecret  string

	store            store.Store
	ReconcileService *service.ReconcileService
	SessionService   *service.SessionService
	VerifyService    *service.VerifyService
	ConfigService    *service.ConfigService
	OriginPolicy     *service.OriginPolicy
}

func NewRouter(
	buildVersion, adminSecret string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		adminSecret:  adminSecret,
		store:        st,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	// CORS runs inside the logging middleware but outside every route, so
	// preflights are answered without reaching handlers.
	if r.OriginPolicy != nil {
		r.middlewares = append(r.middlewares, httpx.CORS(func(origin string) bool {
			return r.OriginPolicy.IsAllowed(context.Background(), origin)
		}))
	}

	r.registerAuth()
	r.registerVerify()
	r.registerConfig()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	signup := &SignUpHandler{Reconcile: r.ReconcileService, Sessions: r.SessionService}
	signin := &SignInHandler{Reconcile: r.ReconcileService, Sessions: r.SessionService}
	social := &SocialHandler{Reconcile: r.ReconcileService}

	// Authentication attempts get the strict per-IP limit to slow brute force.
	r.Mux.Handle("POST /v1/auth/signup",
		httpx.Chain(signup, httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/auth/signin",
		httpx.Chain(signin, httpx.RateLimitByIP(httpx.StrictLimit)))
	r.Mux.Handle("POST /v1/auth/social",
		httpx.Chain(social, httpx.RateLimitByIP(httpx.StrictLimit)))
}

func (r *Router) registerVerify() {
	// Every downstream service calls this on every request; the limit only
	// exists to shed pathological traffic.
	h := &VerifyHandler{Verify: r.VerifyService}
	r.Mux.Handle("POST /verify",
		httpx.Chain(h, httpx.RateLimitByIP(httpx.PublicLimit)))
}

func (r *Router) registerConfig() {
	h := &ConfigHandler{Config: r.ConfigService}

	r.Mux.Handle("GET /v1/config",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.ModerateLimit)))
	r.Mux.Handle("GET /v1/config/{key}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.ModerateLimit)))

	// Writes are gated by the static admin secret.
	r.Mux.Handle("PUT /v1/config/{key}",
		httpx.Chain(http.HandlerFunc(h.HandlePut),
			httpx.RequireAdminSecret(r.adminSecret),
			httpx.RateLimitByIP(httpx.ModerateLimit)))
	r.Mux.Handle("DELETE /v1/config/{key}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.RequireAdminSecret(r.adminSecret),
			httpx.RateLimitByIP(httpx.ModerateLimit)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
