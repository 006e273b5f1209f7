package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/nmercer/insighthub/internal/app/features/logout"
	"github.com/nmercer/insighthub/internal/app/system/auth"
	"github.com/nmercer/insighthub/internal/app/system/pagedlist"
)

func initStore(t *testing.T) {
	t.Helper()
	if err := auth.InitSessionStore("test-session-key-must-be-32-chars-long", "", "", false, zap.NewNop()); err != nil {
		t.Fatalf("InitSessionStore: %v", err)
	}
}

func TestServeLogout_RedirectsHome(t *testing.T) {
	initStore(t)
	h := logout.NewHandler(pagedlist.NewRegistry(), zap.NewNop())

	req := httptest.NewRequest("POST", "/logout", nil)
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location: got %q, want /", loc)
	}
}

func TestServeLogout_HTMXRedirect(t *testing.T) {
	initStore(t)
	h := logout.NewHandler(pagedlist.NewRegistry(), zap.NewNop())

	req := httptest.NewRequest("POST", "/logout", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if hx := rec.Header().Get("HX-Redirect"); hx != "/" {
		t.Errorf("HX-Redirect: got %q, want /", hx)
	}
}

func TestServeLogout_DropsSessionLists(t *testing.T) {
	initStore(t)
	reg := pagedlist.NewRegistry()
	h := logout.NewHandler(reg, zap.NewNop())

	// prime a session with a signed-in cookie and list state
	signin := httptest.NewRequest("GET", "/", nil)
	signinRec := httptest.NewRecorder()
	sid, err := auth.SignIn(signinRec, signin, "tok-1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	reg.Bundle(sid).Logs.Bind("logs:user:u-1|2024-01-01..2024-01-07")

	req := httptest.NewRequest("POST", "/logout", nil)
	for _, c := range signinRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	// the bundle is recreated empty on next use
	snap := reg.Bundle(sid).Logs.Snapshot()
	if len(snap.Items) != 0 || snap.Page != 0 {
		t.Error("expected the session's list state to be dropped")
	}
}
