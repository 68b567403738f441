package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/hubsignup/internal/signup/service"
	"github.com/aussiebroadwan/hubsignup/internal/signup/store"
	"github.com/aussiebroadwan/hubsignup/pkg/httpx"
	"github.com/aussiebroadwan/hubsignup/pkg/jwtx"
	"github.com/aussiebroadwan/hubsignup/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/hubsignup/api/signup" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	// Keys is the local provider's session key set. Nil when sessions are
	// minted by an external provider; JWKS is then not served.
	Keys *jwtx.KeySet

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	Signup       *service.SignupOrchestrator
	Invites      *service.InviteCodeRegistry
	Roles        *service.RoleAuthority
	Bootstrap    *service.Bootstrap
	Passwords    PasswordExchanger // Optional: nil disables the password grant
	EmailConfirm EmailConfirmer    // Optional: only the local provider confirms emails
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSignup()
	r.registerInvites()
	r.registerRoles()
	r.registerUsers()
	r.registerAuth()
	r.registerBootstrap()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Hub Signup Service API
//	@version		0.1.0
//	@description	Invite-gated account signup for the hub platform. Invite codes are issued by hub staff,
//	@description	validated and consumed exactly once, and every signup runs as a compensating saga.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/hubsignup
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authed(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerSignup() {
	h := &SignupHandler{Signup: r.Signup}

	// POST /signup - strict rate limit by IP (public account creation)
	r.Mux.Handle("POST /v1/signup",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerInvites() {
	h := &InvitesHandler{Invites: r.Invites}

	// Validation is public and must not reveal why a code is rejected.
	r.Mux.Handle("GET /v1/invite-codes/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/invite-codes/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("POST /v1/invite-codes", r.authed(http.HandlerFunc(h.HandleIssue), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/invite-codes", r.authed(http.HandlerFunc(h.HandleList), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/invite-codes/{id}", r.authed(http.HandlerFunc(h.HandleDelete), httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/invite-codes/send", r.authed(http.HandlerFunc(h.HandleSend), httpx.ModerateLimit))

	// POST /invite-codes/consume - strict: each call races for a single-use code
	r.Mux.Handle("POST /v1/invite-codes/consume", r.authed(http.HandlerFunc(h.HandleConsume), httpx.StrictLimit))
}

func (r *Router) registerRoles() {
	h := &RolesHandler{Roles: r.Roles}

	r.Mux.Handle("POST /v1/roles", r.authed(http.HandlerFunc(h.HandleAssign), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/roles", r.authed(http.HandlerFunc(h.HandleRemove), httpx.ModerateLimit))
}

func (r *Router) registerUsers() {
	h := &MeHandler{Store: r.store, Roles: r.Roles}

	r.Mux.Handle("GET /v1/me", r.authed(h, httpx.LenientLimit))
}

func (r *Router) registerAuth() {
	if r.Passwords != nil {
		// POST /auth/token - strict rate limit by IP (credential guessing)
		r.Mux.Handle("POST /v1/auth/token",
			httpx.Chain(&TokenHandler{Passwords: r.Passwords},
				httpx.RateLimitByIP(httpx.StrictLimit),
			),
		)
	}
	if r.EmailConfirm != nil {
		r.Mux.Handle("GET /v1/auth/confirm",
			httpx.Chain(&ConfirmHandler{Confirmer: r.EmailConfirm},
				httpx.RateLimitByIP(httpx.ModerateLimit),
			),
		)
	}
	if r.Keys != nil {
		r.Mux.Handle("GET /.well-known/jwks.json",
			httpx.Chain(JWKSHandler(r.Keys),
				httpx.RateLimitByIP(httpx.PublicLimit),
			),
		)
	}
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	bootstrapHandler := &BootstrapHandler{Bootstrap: r.Bootstrap}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(bootstrapHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	if r.Gatherer != nil {
		r.Mux.Handle("GET /metrics",
			httpx.Chain(promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{}),
				httpx.RateLimitByIP(httpx.PublicLimit),
			),
		)
	}
}
