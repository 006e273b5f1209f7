// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"

	uierrors "github.com/nmercer/insighthub/internal/app/features/errors"
	"github.com/nmercer/insighthub/internal/app/system/auth"
	"github.com/nmercer/insighthub/internal/app/system/ratelimit"
	"github.com/nmercer/insighthub/internal/app/system/timeouts"
	"github.com/nmercer/insighthub/internal/app/system/viewdata"
	"github.com/nmercer/insighthub/internal/domain/models"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

// loginAttemptLimit throttles credential guessing per client IP.
const (
	loginAttemptLimit  = 10
	loginAttemptWindow = 10 * time.Minute
)

type Handler struct {
	Monitor  *monitorapi.Client
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	attempts *ratelimit.Limiter
}

func NewHandler(monitor *monitorapi.Client, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Monitor:  monitor,
		Log:      logger,
		ErrLog:   errLog,
		attempts: ratelimit.New(loginAttemptLimit, loginAttemptWindow),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Email     string
	ReturnURL string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	ret := query.Get(r, "return")

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Login", "/"),
		ReturnURL: ret,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	ret := r.FormValue("return")

	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email, ret)
		return
	}

	ip := ratelimit.ClientIP(r)
	if !h.attempts.Allow(ip) {
		h.Log.Warn("login throttled", zap.String("ip", ip))
		w.WriteHeader(http.StatusTooManyRequests)
		templates.Render(w, r, "login", loginFormData{
			BaseVM:    viewdata.NewBaseVM(r, "Login", "/"),
			Error:     "Too many sign-in attempts. Please wait a few minutes and try again.",
			Email:     email,
			ReturnURL: ret,
		})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	res, err := h.Monitor.Login(ctx, email, password)
	if err != nil {
		if monitorapi.IsAuthError(err) {
			h.Log.Info("login rejected", zap.String("email", email))
			h.renderFormWithError(w, r, "Invalid email or password.", email, ret)
			return
		}
		var ae *monitorapi.APIError
		if errors.As(err, &ae) {
			h.renderFormWithError(w, r, ae.Message, email, ret)
			return
		}
		h.ErrLog.LogUpstreamError(w, r, "login request failed", err,
			"The monitoring service is unavailable. Please try again shortly.", "/login")
		return
	}

	// resolve the profile up front so role routing is decided now, not on
	// the next request
	profile := res.Profile
	if profile == nil {
		profile, err = h.Monitor.Me(ctx, res.Token)
		if err != nil {
			h.Log.Warn("profile fetch after login failed", zap.Error(err))
			h.renderFormWithError(w, r, "Could not load your profile. Please try again.", email, ret)
			return
		}
	}

	// desktop-agent accounts have no console; do not leave a half-usable
	// session behind
	if !models.HasDashboardAccess(profile.EffectiveRole()) {
		h.Log.Info("console login refused for agent role",
			zap.String("email", email),
			zap.String("role", profile.EffectiveRole()))
		h.renderFormWithError(w, r, "This account does not have console access.", email, ret)
		return
	}

	if _, err := auth.SignIn(w, r, res.Token); err != nil {
		h.ErrLog.LogServerError(w, r, "session save failed", err,
			"Could not start your session. Please try again.", "/login")
		return
	}
	h.attempts.Reset(ip)

	h.Log.Info("user signed in",
		zap.String("email", email),
		zap.String("role", profile.EffectiveRole()))

	http.Redirect(w, r, urlutil.SafeReturn(ret, "", "/dashboard"), http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email, ret string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Login", "/"),
		Error:     msg,
		Email:     email,
		ReturnURL: ret,
	})
}
