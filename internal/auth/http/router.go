package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/crewdeskhq/crewdesk/internal/auth/service"
	"github.com/crewdeskhq/crewdesk/internal/auth/store"
	"github.com/crewdeskhq/crewdesk/pkg/httpx"
	"github.com/crewdeskhq/crewdesk/pkg/jwtx"
	"github.com/crewdeskhq/crewdesk/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	tokens       *jwtx.Codec
	cookieSecure bool
	startTime    time.Time
	buildVersion string
	logger       *slog.Logger

	store                store.Store
	AuthService          *service.AuthService
	AccountService       *service.AccountService
	TwoFactorService     *service.TwoFactorService
	PasswordResetService *service.PasswordResetService
	IdentityService      *service.IdentityService
}

func NewRouter(
	tokens *jwtx.Codec,
	cookieSecure bool,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		tokens:       tokens,
		cookieSecure: cookieSecure,
		startTime:    time.Now(),
		buildVersion: buildVersion,
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
	r.registerPublic()
	r.registerProtected()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerPublic() {
	registerHandler := &RegisterHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimit(httpx.StrictLimit, httpx.ClientIP),
		),
	)

	loginHandler := &LoginHandler{
		AuthService:  r.AuthService,
		Tokens:       r.tokens,
		CookieSecure: r.cookieSecure,
	}
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimit(httpx.StrictLimit, httpx.ClientIP),
		),
	)

	verifyHandler := &VerifyTwoFactorHandler{
		AuthService:  r.AuthService,
		Tokens:       r.tokens,
		CookieSecure: r.cookieSecure,
	}
	r.Mux.Handle("POST /api/auth/verify-2fa",
		httpx.Chain(verifyHandler,
			httpx.RateLimit(httpx.StrictLimit, httpx.ClientIP),
		),
	)

	forgotHandler := &ForgotPasswordHandler{PasswordResetService: r.PasswordResetService}
	r.Mux.Handle("POST /api/auth/forgotpassword",
		httpx.Chain(forgotHandler,
			httpx.RateLimit(httpx.StrictLimit, httpx.ClientIP),
		),
	)

	resetHandler := &ResetPasswordHandler{PasswordResetService: r.PasswordResetService}
	r.Mux.Handle("PUT /api/auth/resetpassword/{token}",
		httpx.Chain(resetHandler,
			httpx.RateLimit(httpx.StrictLimit, httpx.ClientIP),
		),
	)
}

func (r *Router) registerProtected() {
	protect := AuthnMiddleware(r.tokens, r.IdentityService)

	logoutHandler := &LogoutHandler{AuthService: r.AuthService, CookieSecure: r.cookieSecure}
	r.Mux.Handle("GET /api/auth/logout",
		httpx.Chain(logoutHandler,
			protect,
			httpx.RateLimit(httpx.LenientLimit, httpx.ClientIP),
		),
	)

	meHandler := &MeHandler{AccountService: r.AccountService}
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(meHandler,
			protect,
			httpx.RateLimit(httpx.LenientLimit, httpx.ClientIP),
		),
	)

	detailsHandler := &UpdateDetailsHandler{AccountService: r.AccountService}
	r.Mux.Handle("PUT /api/auth/updatedetails",
		httpx.Chain(detailsHandler,
			protect,
			httpx.RateLimit(httpx.ModerateLimit, httpx.ClientIP),
		),
	)

	passwordHandler := &UpdatePasswordHandler{AccountService: r.AccountService}
	r.Mux.Handle("PUT /api/auth/updatepassword",
		httpx.Chain(passwordHandler,
			protect,
			httpx.RateLimit(httpx.ModerateLimit, httpx.ClientIP),
		),
	)

	setupHandler := &SetupTwoFactorHandler{TwoFactorService: r.TwoFactorService}
	r.Mux.Handle("POST /api/auth/setup-2fa",
		httpx.Chain(setupHandler,
			protect,
			httpx.RateLimit(httpx.ModerateLimit, httpx.ClientIP),
		),
	)

	enableHandler := &EnableTwoFactorHandler{TwoFactorService: r.TwoFactorService}
	r.Mux.Handle("POST /api/auth/enable-2fa",
		httpx.Chain(enableHandler,
			protect,
			httpx.RateLimit(httpx.ModerateLimit, httpx.ClientIP),
		),
	)

	disableHandler := &DisableTwoFactorHandler{TwoFactorService: r.TwoFactorService}
	r.Mux.Handle("POST /api/auth/disable-2fa",
		httpx.Chain(disableHandler,
			protect,
			httpx.RateLimit(httpx.ModerateLimit, httpx.ClientIP),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
}
