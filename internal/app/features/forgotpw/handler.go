// internal/app/features/forgotpw/handler.go
package forgotpw

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	uierrors "github.com/nmercer/insighthub/internal/app/features/errors"
	"github.com/nmercer/insighthub/internal/app/system/timeouts"
	"github.com/nmercer/insighthub/internal/app/system/viewdata"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

type Handler struct {
	Monitor *monitorapi.Client
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

type resetFormData struct {
	viewdata.BaseVM
	Error string
	Email string
}

// ServeForm shows the password-reset form.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "forgot_password", resetFormData{
		BaseVM: viewdata.NewBaseVM(r, "Reset password", "/login"),
	})
}

// HandleResetPost submits the new password to the monitoring backend.
func (h *Handler) HandleResetPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/forgot-password")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	newPassword := r.FormValue("new_password")
	confirm := r.FormValue("confirm_password")

	switch {
	case email == "" || newPassword == "":
		h.renderError(w, r, email, "Please enter your email and a new password.")
		return
	case len(newPassword) < 8:
		h.renderError(w, r, email, "Password must be at least 8 characters.")
		return
	case newPassword != confirm:
		h.renderError(w, r, email, "Passwords do not match.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "forgot-password")
	defer cancel()

	if err := h.Monitor.ForgotPassword(ctx, email, newPassword); err != nil {
		var ae *monitorapi.APIError
		if errors.As(err, &ae) {
			h.renderError(w, r, email, ae.Message)
			return
		}
		h.ErrLog.LogUpstreamError(w, r, "password reset failed", err,
			"The monitoring service is unavailable. Please try again shortly.", "/forgot-password")
		return
	}

	h.Log.Info("password reset", zap.String("email", email))
	http.Redirect(w, r, "/login?reset=1", http.StatusSeeOther)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, email, msg string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "forgot_password", resetFormData{
		BaseVM: viewdata.NewBaseVM(r, "Reset password", "/login"),
		Error:  msg,
		Email:  email,
	})
}
