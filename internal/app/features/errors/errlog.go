// internal/app/features/errors/errlog.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"

	"github.com/nmercer/insighthub/internal/app/system/viewdata"
)

// ErrorLogger pairs structured logging with friendly error pages so handlers
// report failures in one line instead of log-then-render boilerplate.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs an internal failure and renders a friendly error page.
// logMsg is for operators; userMsg is what the visitor sees.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method))
	renderError(w, r, http.StatusInternalServerError, "Something went wrong", userMsg, backURL)
}

// LogBadRequest logs a client error and renders a friendly error page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method))
	renderError(w, r, http.StatusBadRequest, "Invalid request", userMsg, backURL)
}

// LogUpstreamError logs a monitoring-backend failure and renders a friendly
// error page. Kept distinct from LogServerError so backend outages are easy
// to filter in logs.
func (e *ErrorLogger) LogUpstreamError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("upstream", "monitorapi"))
	renderError(w, r, http.StatusBadGateway, "Service unavailable", userMsg, backURL)
}

func renderError(w http.ResponseWriter, r *http.Request, status int, title, userMsg, backURL string) {
	if backURL == "" {
		backURL = "/"
	}
	if userMsg == "" {
		userMsg = "An unexpected error occurred. Please try again."
	}
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, title, backURL),
		Message: userMsg,
	}
	data.BackURL = backURL
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}
