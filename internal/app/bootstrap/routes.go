// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	departmentsfeature "github.com/nmercer/insighthub/internal/app/features/departments"
	errorsfeature "github.com/nmercer/insighthub/internal/app/features/errors"
	forgotpwfeature "github.com/nmercer/insighthub/internal/app/features/forgotpw"
	healthfeature "github.com/nmercer/insighthub/internal/app/features/health"
	homefeature "github.com/nmercer/insighthub/internal/app/features/home"
	insightsfeature "github.com/nmercer/insighthub/internal/app/features/insights"
	loginfeature "github.com/nmercer/insighthub/internal/app/features/login"
	logoutfeature "github.com/nmercer/insighthub/internal/app/features/logout"
	logsfeature "github.com/nmercer/insighthub/internal/app/features/logs"
	overviewfeature "github.com/nmercer/insighthub/internal/app/features/overview"
	profilefeature "github.com/nmercer/insighthub/internal/app/features/profile"
	registerfeature "github.com/nmercer/insighthub/internal/app/features/register"
	screenshotsfeature "github.com/nmercer/insighthub/internal/app/features/screenshots"
	settingsfeature "github.com/nmercer/insighthub/internal/app/features/settings"
	userdetailfeature "github.com/nmercer/insighthub/internal/app/features/userdetail"
	usersfeature "github.com/nmercer/insighthub/internal/app/features/users"
	"github.com/nmercer/insighthub/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, the API client, and any Startup
// hooks have completed. It initializes the session store, wires the
// profile fetcher so LoadSessionUser resolves tokens against the
// monitoring API on every request, boots the template engine, and mounts
// the feature routers: public pages, authentication, and the dashboard
// area (overview, users, logs, screenshots, insights, departments).
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser resolves the session token into a fresh profile on
	// each request, so role and department changes take effect immediately.
	auth.SetProfileFetcher(deps.Monitor.Me)

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// CSRF protection for all form posts; templates carry the token via
	// BaseVM.CSRFToken.
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey), csrf.Secure(secure), csrf.Path("/")))

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(auth.LoadSessionUser(logger))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.Monitor, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.Monitor, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(deps.Lists, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	registerHandler := registerfeature.NewHandler(deps.Monitor, errLog, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	forgotHandler := &forgotpwfeature.Handler{Monitor: deps.Monitor, Log: logger, ErrLog: errLog}
	r.Mount("/forgot-password", forgotpwfeature.Routes(forgotHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Account pages
	profileHandler := &profilefeature.Handler{Log: logger}
	r.Mount("/profile", profilefeature.Routes(profileHandler))

	settingsHandler := &settingsfeature.Handler{Log: logger, ErrLog: errLog}
	r.Mount("/settings", settingsfeature.Routes(settingsHandler))

	// Dashboard area
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(auth.RequireSignedIn)

		overviewHandler := &overviewfeature.Handler{Monitor: deps.Monitor, Log: logger, ErrLog: errLog}
		r.Mount("/", overviewfeature.Routes(overviewHandler))

		usersHandler := &usersfeature.Handler{Monitor: deps.Monitor, Log: logger, ErrLog: errLog}
		userdetailHandler := &userdetailfeature.Handler{Monitor: deps.Monitor, Log: logger, ErrLog: errLog, Lists: deps.Lists}
		r.Mount("/users", usersfeature.Routes(usersHandler, userdetailHandler))

		logsHandler := &logsfeature.Handler{Monitor: deps.Monitor, Log: logger, ErrLog: errLog, Lists: deps.Lists}
		r.Mount("/logs", logsfeature.Routes(logsHandler))

		screenshotsHandler := &screenshotsfeature.Handler{Monitor: deps.Monitor, Log: logger, ErrLog: errLog, Lists: deps.Lists}
		r.Mount("/screenshots", screenshotsfeature.Routes(screenshotsHandler))

		insightsHandler := &insightsfeature.Handler{Monitor: deps.Monitor, Log: logger, ErrLog: errLog}
		r.Mount("/insights", insightsfeature.Routes(insightsHandler))

		departmentsHandler := &departmentsfeature.Handler{Monitor: deps.Monitor, Log: logger, ErrLog: errLog}
		r.Mount("/departments", departmentsfeature.Routes(departmentsHandler))
	})

	return r, nil
}
