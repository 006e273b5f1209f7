package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nmercer/insighthub/internal/app/system/auth"
	"github.com/nmercer/insighthub/internal/domain/models"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

func initTestStore(t *testing.T) {
	t.Helper()
	err := auth.InitSessionStore("test-session-key-must-be-32-chars-long", "", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to init session store: %v", err)
	}
}

func withTestUser(r *http.Request, role string) *http.Request {
	user := &auth.SessionUser{
		Token:     "tok-test",
		SessionID: "sid-test",
		Profile: &models.UserProfile{
			RoleKey:         role,
			FullName:        "Test User",
			CompanyUsername: "test.user",
		},
	}
	return auth.WithUser(r, user)
}

func TestRequireSignedIn_NoUser_RedirectsToLogin(t *testing.T) {
	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("protected content"))
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/login") {
		t.Errorf("expected redirect to /login, got %q", location)
	}
}

func TestRequireSignedIn_NoUser_API_Returns401(t *testing.T) {
	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/data", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_NoUser_HTMX_ReturnsHXRedirect(t *testing.T) {
	handler := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}

	hxRedirect := rec.Header().Get("HX-Redirect")
	if !strings.HasPrefix(hxRedirect, "/login") {
		t.Errorf("expected HX-Redirect to /login, got %q", hxRedirect)
	}
}

func TestRequireRole_WrongRole_RedirectsToForbidden(t *testing.T) {
	handler := auth.RequireRole(models.RoleCSuite)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard/departments", nil)
	req.Header.Set("Accept", "text/html")
	req = withTestUser(req, models.RoleDepartmentHead)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	location := rec.Header().Get("Location")
	if location != "/forbidden" {
		t.Errorf("expected redirect to /forbidden, got %q", location)
	}
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	handler := auth.RequireRole(models.RoleCSuite, models.RoleDepartmentHead)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	tests := []struct {
		role     string
		expected int
	}{
		{models.RoleCSuite, http.StatusOK},
		{models.RoleDepartmentHead, http.StatusOK},
		{models.RoleDepartmentMember, http.StatusSeeOther}, // redirect to forbidden
		{"UNKNOWN", http.StatusSeeOther},
	}

	for _, tc := range tests {
		t.Run(tc.role, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/dashboard", nil)
			req.Header.Set("Accept", "text/html")
			req = withTestUser(req, tc.role)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.expected {
				t.Errorf("role %q: expected status %d, got %d", tc.role, tc.expected, rec.Code)
			}
		})
	}
}

func TestRequireRole_CaseInsensitive(t *testing.T) {
	handler := auth.RequireRole(models.RoleCSuite)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req = withTestUser(req, "c_suite")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d for lowercase role, got %d", http.StatusOK, rec.Code)
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	user, ok := auth.CurrentUser(req)

	if ok {
		t.Error("expected ok to be false when no user in context")
	}
	if user != nil {
		t.Error("expected user to be nil when no user in context")
	}
}

func TestCurrentUser_WithUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = withTestUser(req, models.RoleCSuite)

	user, ok := auth.CurrentUser(req)

	if !ok {
		t.Error("expected ok to be true when user in context")
	}
	if user == nil {
		t.Fatal("expected user to not be nil")
	}
	if user.Role() != models.RoleCSuite {
		t.Errorf("expected role %q, got %q", models.RoleCSuite, user.Role())
	}
}

// sessionCookies round-trips the recorder's Set-Cookie headers onto a new
// request, the way a browser would.
func sessionCookies(rec *httptest.ResponseRecorder, req *http.Request) {
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
}

func TestLoadSessionUser_ResolvesProfile(t *testing.T) {
	initTestStore(t)
	auth.SetProfileFetcher(func(ctx context.Context, token string) (*models.UserProfile, error) {
		if token != "tok-good" {
			t.Errorf("fetcher token: got %q", token)
		}
		return &models.UserProfile{RoleKey: models.RoleCSuite, FullName: "Ada"}, nil
	})
	t.Cleanup(func() { auth.SetProfileFetcher(nil) })

	// sign in to get a session cookie
	signin := httptest.NewRequest("POST", "/login", nil)
	signinRec := httptest.NewRecorder()
	sid, err := auth.SignIn(signinRec, signin, "tok-good")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if sid == "" {
		t.Fatal("SignIn returned empty session id")
	}

	var got *auth.SessionUser
	handler := auth.LoadSessionUser(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	sessionCookies(signinRec, req)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected a session user in context")
	}
	if got.Token != "tok-good" || got.SessionID != sid {
		t.Errorf("got token %q sid %q", got.Token, got.SessionID)
	}
	if got.Profile.DisplayName() != "Ada" {
		t.Errorf("profile name: got %q", got.Profile.DisplayName())
	}
}

func TestLoadSessionUser_RejectedTokenIsScrubbed(t *testing.T) {
	initTestStore(t)
	calls := 0
	auth.SetProfileFetcher(func(ctx context.Context, token string) (*models.UserProfile, error) {
		calls++
		return nil, &monitorapi.StatusError{Code: http.StatusUnauthorized}
	})
	t.Cleanup(func() { auth.SetProfileFetcher(nil) })

	signin := httptest.NewRequest("POST", "/login", nil)
	signinRec := httptest.NewRecorder()
	if _, err := auth.SignIn(signinRec, signin, "tok-stale"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	mw := auth.LoadSessionUser(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("rejected token must not yield a session user")
		}
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	sessionCookies(signinRec, req)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	// the scrubbed session comes back as a rewritten cookie; replaying it
	// must not trigger another profile fetch
	req2 := httptest.NewRequest("GET", "/dashboard", nil)
	sessionCookies(rec, req2)
	mw.ServeHTTP(httptest.NewRecorder(), req2)

	if calls != 1 {
		t.Errorf("profile fetch calls: got %d, want 1", calls)
	}
}

func TestLoadSessionUser_FetchFailureClearsToken(t *testing.T) {
	initTestStore(t)
	calls := 0
	auth.SetProfileFetcher(func(ctx context.Context, token string) (*models.UserProfile, error) {
		calls++
		return nil, errors.New("backend down")
	})
	t.Cleanup(func() { auth.SetProfileFetcher(nil) })

	signin := httptest.NewRequest("POST", "/login", nil)
	signinRec := httptest.NewRecorder()
	if _, err := auth.SignIn(signinRec, signin, "tok-gone"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	mw := auth.LoadSessionUser(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("failed fetch must not yield a session user")
		}
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	sessionCookies(signinRec, req)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	// any fetch failure invalidates the stored token: the session is
	// rewritten, and replaying it does not fetch again
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("expected the session cookie to be rewritten")
	}
	req2 := httptest.NewRequest("GET", "/dashboard", nil)
	sessionCookies(rec, req2)
	mw.ServeHTTP(httptest.NewRecorder(), req2)

	if calls != 1 {
		t.Errorf("profile fetch calls: got %d, want 1", calls)
	}
}

func TestSignOut_ClearsSelection(t *testing.T) {
	initTestStore(t)

	signin := httptest.NewRequest("POST", "/login", nil)
	signinRec := httptest.NewRecorder()
	sid, err := auth.SignIn(signinRec, signin, "tok-1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	req := httptest.NewRequest("POST", "/logout", nil)
	sessionCookies(signinRec, req)
	rec := httptest.NewRecorder()

	gotSID, err := auth.SignOut(rec, req)
	if err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if gotSID != sid {
		t.Errorf("SignOut sid: got %q, want %q", gotSID, sid)
	}
}

func TestThemeMode_RoundTripsAllModes(t *testing.T) {
	initTestStore(t)

	for _, mode := range []string{"light", "dark", "system"} {
		req := httptest.NewRequest("POST", "/settings/theme", nil)
		rec := httptest.NewRecorder()
		if err := auth.SetThemeMode(rec, req, mode); err != nil {
			t.Fatalf("SetThemeMode(%s): %v", mode, err)
		}

		read := httptest.NewRequest("GET", "/settings", nil)
		sessionCookies(rec, read)
		if got := auth.ThemeMode(read); got != mode {
			t.Errorf("theme mode: got %q, want %q", got, mode)
		}
	}
}

func TestSetThemeMode_UnknownValueStoresLight(t *testing.T) {
	initTestStore(t)

	req := httptest.NewRequest("POST", "/settings/theme", nil)
	rec := httptest.NewRecorder()
	if err := auth.SetThemeMode(rec, req, "sepia"); err != nil {
		t.Fatalf("SetThemeMode: %v", err)
	}

	read := httptest.NewRequest("GET", "/settings", nil)
	sessionCookies(rec, read)
	if got := auth.ThemeMode(read); got != "light" {
		t.Errorf("theme mode: got %q, want light", got)
	}
}
