package users_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"

	uierrors "github.com/nmercer/insighthub/internal/app/features/errors"
	"github.com/nmercer/insighthub/internal/app/features/users"
	"github.com/nmercer/insighthub/internal/app/system/auth"
	"github.com/nmercer/insighthub/internal/domain/models"
	"github.com/nmercer/insighthub/internal/testutil"
)

func newHandler(t *testing.T, backend http.HandlerFunc) *users.Handler {
	t.Helper()
	testutil.BootTemplates(t)
	if err := auth.InitSessionStore("test-session-key-must-be-32-chars-long", "", "", false, zap.NewNop()); err != nil {
		t.Fatalf("InitSessionStore: %v", err)
	}
	logger := zap.NewNop()
	return &users.Handler{
		Monitor: testutil.FakeBackend(t, backend),
		Log:     logger,
		ErrLog:  uierrors.NewErrorLogger(logger),
	}
}

func directoryBackend(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users":
			json.NewEncoder(w).Encode([]map[string]any{
				{
					"_id":              "rec-1",
					"company_username": "jordan.dev",
					"full_name":        "Jordan Dev",
					"department":       "Engineering",
					"user_mac_id":      "mac-77",
					"is_active":        true,
				},
				{
					"_id":              "rec-2",
					"company_username": "sam.ops",
					"full_name":        "Sam Ops",
					"department":       "Operations",
					"is_active":        false,
				},
			})
		default:
			t.Errorf("unexpected backend call %s", r.URL.Path)
		}
	}
}

func TestServeDirectory_ListsUsers(t *testing.T) {
	h := newHandler(t, directoryBackend(t))

	req := httptest.NewRequest("GET", "/dashboard/users", nil)
	req = testutil.WithTestUser(req, testutil.CSuiteUser())
	rec := httptest.NewRecorder()
	h.ServeDirectory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Jordan Dev") || !strings.Contains(body, "sam.ops") {
		t.Error("expected both users in the directory")
	}
}

func TestServeDirectory_HeadScopePinned(t *testing.T) {
	var gotDept string
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		gotDept = r.URL.Query().Get("department")
		json.NewEncoder(w).Encode([]map[string]any{})
	})

	req := httptest.NewRequest("GET", "/dashboard/users?department=Other", nil)
	req = testutil.WithTestUser(req, testutil.HeadUser("Engineering"))
	rec := httptest.NewRecorder()
	h.ServeDirectory(rec, req)

	if gotDept != "Engineering" {
		t.Errorf("department param: got %q, want Engineering", gotDept)
	}
}

func selectBackend() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"data": map[string]any{
				"_id":              "rec-1",
				"company_username": "jordan.dev",
				"full_name":        "Jordan Dev",
				"department":       "Engineering",
				"user_mac_id":      "mac-77",
			},
		})
	}
}

func postSelect(h *users.Handler, u testutil.TestUser, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/dashboard/users/select", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithTestUser(req, u)
	rec := httptest.NewRecorder()
	h.HandleSelect(rec, req)
	return rec
}

func TestHandleSelect_StoresSelectionAndRedirects(t *testing.T) {
	h := newHandler(t, selectBackend())

	rec := postSelect(h, testutil.CSuiteUser(), url.Values{"company_username": {"jordan.dev"}})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard/insights" {
		t.Errorf("Location: got %q, want /dashboard/insights", loc)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("expected a session cookie carrying the selection")
	}

	// replay the cookie and confirm the stored identity is the mac id
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	sess, _ := auth.Store.Get(req, auth.SessionName)
	raw, _ := sess.Values[models.SelectedUserKey].(string)
	sel := models.DecodeSelectedUser(raw)
	if sel == nil || sel.ID != "mac-77" {
		t.Errorf("stored selection: got %+v, want ID mac-77", sel)
	}
}

func TestHandleSelect_OutsideDepartmentForbidden(t *testing.T) {
	h := newHandler(t, selectBackend())

	rec := postSelect(h, testutil.HeadUser("Sales"), url.Values{"company_username": {"jordan.dev"}})

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
	if !strings.Contains(rec.Body.String(), "outside your department") {
		t.Error("expected the department-boundary message")
	}
}

func TestHandleSelect_MissingUsername(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend should not be called without a username")
	})

	rec := postSelect(h, testutil.CSuiteUser(), url.Values{})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleCreatePost_HeadPinnedToOwnDepartment(t *testing.T) {
	var created map[string]any
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&created)
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "data": map[string]any{}})
	})

	form := url.Values{
		"full_name":        {"New Person"},
		"company_username": {"new.person"},
		"department":       {"Somewhere Else"},
	}
	req := httptest.NewRequest("POST", "/dashboard/users/new", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithTestUser(req, testutil.HeadUser("Engineering"))
	rec := httptest.NewRecorder()
	h.HandleCreatePost(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if created["department"] != "Engineering" {
		t.Errorf("department sent: got %v, want Engineering", created["department"])
	}
	if created["role_key"] != models.RoleDepartmentMember {
		t.Errorf("role sent: got %v, want %s", created["role_key"], models.RoleDepartmentMember)
	}
}

func TestHandleCreatePost_MissingFields(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend should not be called with missing fields")
	})

	req := httptest.NewRequest("POST", "/dashboard/users/new", strings.NewReader("full_name=X"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithTestUser(req, testutil.CSuiteUser())
	rec := httptest.NewRecorder()
	h.HandleCreatePost(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}
