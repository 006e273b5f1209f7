package home_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nmercer/insighthub/internal/app/features/home"
	"github.com/nmercer/insighthub/internal/testutil"
)

func TestServeRoot_Anonymous(t *testing.T) {
	testutil.BootTemplates(t)
	h := home.NewHandler(zap.NewNop())

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	h.ServeRoot(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Sign in") {
		t.Error("expected a sign-in link on the landing page")
	}
}

func TestServeRoot_SignedInRedirects(t *testing.T) {
	testutil.BootTemplates(t)
	h := home.NewHandler(zap.NewNop())

	req := httptest.NewRequest("GET", "/", nil)
	req = testutil.WithTestUser(req, testutil.CSuiteUser())
	rec := httptest.NewRecorder()
	h.ServeRoot(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location: got %q, want /dashboard", loc)
	}
}
