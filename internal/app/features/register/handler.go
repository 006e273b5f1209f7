// internal/app/features/register/handler.go
package register

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	uierrors "github.com/nmercer/insighthub/internal/app/features/errors"
	"github.com/nmercer/insighthub/internal/app/system/timeouts"
	"github.com/nmercer/insighthub/internal/app/system/viewdata"
	"github.com/nmercer/insighthub/internal/domain/models"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

type Handler struct {
	Monitor  *monitorapi.Client
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	validate *validator.Validate
}

func NewHandler(monitor *monitorapi.Client, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Monitor:  monitor,
		Log:      logger,
		ErrLog:   errLog,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data & form                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// registerForm carries the posted fields through validation. Department is
// required only for department heads, enforced by required_if.
type registerForm struct {
	FullName        string `validate:"required,min=2,max=120"`
	Email           string `validate:"required,email"`
	CompanyUsername string `validate:"required,min=3,max=64"`
	Password        string `validate:"required,min=8,max=128"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	Role            string `validate:"required,oneof=C_SUITE DEPARTMENT_HEAD"`
	ContactNo       string `validate:"required,min=7,max=20"`
	Department      string `validate:"required_if=Role DEPARTMENT_HEAD,max=120"`
	LicenseAccepted bool   `validate:"required"`
}

type registerPageData struct {
	viewdata.BaseVM
	Error          string
	FieldErrors    map[string]string
	Form           registerForm
	LicenseVersion string
}

// fieldMessages maps struct fields to user-facing messages.
var fieldMessages = map[string]string{
	"FullName":        "Please enter your full name.",
	"Email":           "Please enter a valid email address.",
	"CompanyUsername": "Please choose a username of at least 3 characters.",
	"Password":        "Password must be at least 8 characters.",
	"ConfirmPassword": "Passwords do not match.",
	"Role":            "Please choose an account type.",
	"ContactNo":       "Please enter a contact number.",
	"Department":      "Department heads must name their department.",
	"LicenseAccepted": "You must accept the terms of use.",
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, registerPageData{
		BaseVM:         viewdata.NewBaseVM(r, "Create an account", "/login"),
		LicenseVersion: models.LicenseVersion,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/register")
		return
	}

	form := registerForm{
		FullName:        strings.TrimSpace(r.FormValue("full_name")),
		Email:           strings.TrimSpace(r.FormValue("email")),
		CompanyUsername: strings.TrimSpace(r.FormValue("company_username")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		Role:            models.NormalizeRole(r.FormValue("role")),
		ContactNo:       strings.TrimSpace(r.FormValue("contact_no")),
		Department:      strings.TrimSpace(r.FormValue("department")),
		LicenseAccepted: r.FormValue("license_accepted") == "on",
	}

	if err := h.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		fieldErrs := map[string]string{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if msg, ok := fieldMessages[fe.StructField()]; ok {
					fieldErrs[fe.StructField()] = msg
				} else {
					fieldErrs[fe.StructField()] = "Invalid value."
				}
			}
		}
		h.renderFormError(w, r, form, "Please fix the highlighted fields.", fieldErrs)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "register")
	defer cancel()

	err := h.Monitor.Register(ctx, monitorapi.RegisterRequest{
		Email:           form.Email,
		CompanyUsername: form.CompanyUsername,
		Password:        form.Password,
		Role:            form.Role,
		FullName:        form.FullName,
		ContactNo:       form.ContactNo,
		Department:      form.Department,
		LicenseAccepted: form.LicenseAccepted,
		LicenseVersion:  models.LicenseVersion,
	})
	if err != nil {
		var ae *monitorapi.APIError
		if errors.As(err, &ae) {
			h.renderFormError(w, r, form, ae.Message, nil)
			return
		}
		h.ErrLog.LogUpstreamError(w, r, "register request failed", err,
			"The monitoring service is unavailable. Please try again shortly.", "/register")
		return
	}

	h.Log.Info("account registered",
		zap.String("email", form.Email),
		zap.String("role", form.Role))

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, data registerPageData) {
	templates.Render(w, r, "register", data)
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, form registerForm, msg string, fieldErrs map[string]string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	form.Password = ""
	form.ConfirmPassword = ""
	h.renderForm(w, r, registerPageData{
		BaseVM:         viewdata.NewBaseVM(r, "Create an account", "/login"),
		Error:          msg,
		FieldErrors:    fieldErrs,
		Form:           form,
		LicenseVersion: models.LicenseVersion,
	})
}
