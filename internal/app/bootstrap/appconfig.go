// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level and CORS. AppConfig is everything specific
// to InsightHub: where the monitoring API lives, how sessions are
// signed, and the CSRF key.
type AppConfig struct {
	// Monitoring API configuration. InsightHub owns no storage of its
	// own; all data comes from this backend.
	APIBaseURL string        // e.g. https://monitor.internal:8443
	APITimeout time.Duration // base HTTP client timeout for API calls

	// Session management configuration
	SessionKey    string // secret key for signing session cookies (must be strong in production)
	SessionName   string // cookie name for sessions (default: insighthub-session)
	SessionDomain string // cookie domain (blank means current host)

	// CSRF protection
	CSRFKey string // 32-byte key for gorilla/csrf (falls back to SessionKey when blank)
}
