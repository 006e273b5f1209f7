package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/nmercer/insighthub/internal/domain/models"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants & globals                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionName is the session cookie name. InitSessionStore may override it
// from configuration.
var SessionName = "insighthub-session"

const (
	tokenKey     = "token"
	sessionIDKey = "sid"
	themeKey     = "theme_mode"
)

// selectedKey is versioned: selection payloads written under an older key are
// simply invisible and the user re-selects.
const selectedKey = models.SelectedUserKey

// Store is initialised once via InitSessionStore.
var Store *sessions.CookieStore

// ProfileFetcher resolves a bearer token into the signed-in profile. The
// bootstrap wires this to the monitoring backend; tests stub it.
type ProfileFetcher func(ctx context.Context, token string) (*models.UserProfile, error)

var fetchProfile ProfileFetcher

// SetProfileFetcher installs the profile resolver used by LoadSessionUser.
func SetProfileFetcher(f ProfileFetcher) { fetchProfile = f }

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what LoadSessionUser injects into r.Context(): the bearer
// token, the freshly fetched profile, and the session's selected user.
type SessionUser struct {
	Token     string
	SessionID string
	Profile   *models.UserProfile
	Selected  *models.SelectedUser
}

// Role returns the effective role key.
func (u *SessionUser) Role() string {
	if u == nil || u.Profile == nil {
		return ""
	}
	return u.Profile.EffectiveRole()
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// LoadSessionUser resolves the session token into a profile and injects the
// user into context. Any profile-fetch failure, a rejected token and a
// backend outage alike, scrubs the token from the session so the next
// request starts signed out.
func LoadSessionUser(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Store == nil || fetchProfile == nil {
				next.ServeHTTP(w, r)
				return
			}

			sess, _ := Store.Get(r, SessionName)
			token := getString(sess, tokenKey)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			profile, err := fetchProfile(r.Context(), token)
			if err != nil {
				delete(sess.Values, tokenKey)
				delete(sess.Values, selectedKey)
				_ = sess.Save(r, w)
				if monitorapi.IsAuthError(err) {
					logger.Info("session token rejected, signing out",
						zap.String("path", r.URL.Path))
				} else {
					logger.Warn("profile fetch failed, signing out", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			u := &SessionUser{
				Token:     token,
				SessionID: getString(sess, sessionIDKey),
				Profile:   profile,
				Selected:  models.DecodeSelectedUser(getString(sess, selectedKey)),
			}
			next.ServeHTTP(w, withUser(r, u))
		})
	}
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		redirectToLogin(w, r)
	})
}

// RequireRole ensures the signed-in user's role is one of allowed. The
// comparison is case-insensitive.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[models.NormalizeRole(role)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				redirectToLogin(w, r)
				return
			}

			if _, has := set[models.NormalizeRole(u.Role())]; !has {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session mutation                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// SignIn stores the bearer token and assigns a fresh session id. Any earlier
// user selection is cleared.
func SignIn(w http.ResponseWriter, r *http.Request, token string) (string, error) {
	sess, _ := Store.Get(r, SessionName)
	sid := uuid.NewString()
	sess.Values[tokenKey] = token
	sess.Values[sessionIDKey] = sid
	delete(sess.Values, selectedKey)
	return sid, sess.Save(r, w)
}

// SignOut scrubs the session and returns the old session id so callers can
// release per-session server state.
func SignOut(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, _ := Store.Get(r, SessionName)
	sid := getString(sess, sessionIDKey)
	delete(sess.Values, tokenKey)
	delete(sess.Values, sessionIDKey)
	delete(sess.Values, selectedKey)
	return sid, sess.Save(r, w)
}

// SetSelectedUser persists the dashboard's user selection.
func SetSelectedUser(w http.ResponseWriter, r *http.Request, sel *models.SelectedUser) error {
	sess, _ := Store.Get(r, SessionName)
	if sel == nil {
		delete(sess.Values, selectedKey)
	} else {
		sess.Values[selectedKey] = sel.Encode()
	}
	return sess.Save(r, w)
}

// ClearSelectedUser removes the dashboard's user selection.
func ClearSelectedUser(w http.ResponseWriter, r *http.Request) error {
	return SetSelectedUser(w, r, nil)
}

// ThemeMode returns the stored UI theme, one of "light", "dark" or
// "system", defaulting to "light".
func ThemeMode(r *http.Request) string {
	if Store == nil {
		return "light"
	}
	sess, _ := Store.Get(r, SessionName)
	switch mode := getString(sess, themeKey); mode {
	case "dark", "system":
		return mode
	}
	return "light"
}

// SetThemeMode persists the UI theme choice; unknown values store as "light".
func SetThemeMode(w http.ResponseWriter, r *http.Request, mode string) error {
	sess, _ := Store.Get(r, SessionName)
	switch mode {
	case "dark", "system":
	default:
		mode = "light"
	}
	sess.Values[themeKey] = mode
	return sess.Save(r, w)
}

// InitSessionStore initializes the global session Store using the provided
// session key, cookie name and domain. The `secure` flag controls whether
// cookies are marked Secure and which SameSite mode is used.
//
// In production (secure=true), cookies should be Secure + SameSite=None
// (for cross-site use with HTTPS).
// In local dev over http://localhost, use secure=false so cookies are accepted.
func InitSessionStore(sessionKey, name, domain string, secure bool, logger *zap.Logger) error {
	if name != "" {
		SessionName = name
	}
	if sessionKey == "" {
		return fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}

	// SameSite handling: in prod with Secure cookies, we use None
	// so cookies can be sent in cross-site contexts. In dev, Lax is fine.
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}

	store.Options = opts
	Store = store

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return nil
}

// helpers

// WithUser injects a user into the request context. Exposed for tests and
// for handlers that refresh the profile mid-request.
func WithUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(currentURI(r))

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	// Browser/HTML: go to login and preserve return
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}

	// Non-HTML (API) callers: plain 401
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func wantsHTML(r *http.Request) bool {
	// Very light heuristic: treat it as HTML if it's HTMX or Accepts text/html.
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}

func currentURI(r *http.Request) string {
	// Preserve path + query as a return param.
	u := *r.URL
	return u.RequestURI()
}
