package overview_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	uierrors "github.com/nmercer/insighthub/internal/app/features/errors"
	"github.com/nmercer/insighthub/internal/app/features/overview"
	"github.com/nmercer/insighthub/internal/testutil"
)

func newHandler(t *testing.T, backend http.HandlerFunc) *overview.Handler {
	t.Helper()
	testutil.BootTemplates(t)
	logger := zap.NewNop()
	return &overview.Handler{
		Monitor: testutil.FakeBackend(t, backend),
		Log:     logger,
		ErrLog:  uierrors.NewErrorLogger(logger),
	}
}

func dashboardPayload() map[string]any {
	return map[string]any{
		"ok": true,
		"data": map[string]any{
			"scope": map[string]any{"label": "Organization"},
			"range": map[string]any{"from": "2024-03-04", "to": "2024-03-10"},
			"kpis": map[string]any{
				"total_active_minutes": 1234,
				"logs":                 500,
				"most_used_app":        "Chrome",
			},
			"charts": map[string]any{
				"activity_over_time": map[string]any{
					"labels": []string{"2024-03-04", "2024-03-05"},
					"series": []float64{10, 20},
				},
				"top_apps": map[string]any{
					"items": []map[string]any{
						{"name": "Chrome", "count": 42},
					},
				},
			},
		},
	}
}

func TestServeOverview_RendersKPIsAndCharts(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/insights/dashboard" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(dashboardPayload())
	})

	req := httptest.NewRequest("GET", "/dashboard?from=2024-03-04&to=2024-03-10", nil)
	req = testutil.WithTestUser(req, testutil.CSuiteUser())
	rec := httptest.NewRecorder()
	h.ServeOverview(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "1234") {
		t.Error("expected active-minutes KPI in the page")
	}
	if !strings.Contains(body, "Chrome") {
		t.Error("expected top app in the page")
	}
}

func TestServeOverview_DepartmentScopeSent(t *testing.T) {
	var gotDept string
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		gotDept = r.URL.Query().Get("department")
		json.NewEncoder(w).Encode(dashboardPayload())
	})

	req := httptest.NewRequest("GET", "/dashboard?from=2024-03-04&to=2024-03-10", nil)
	req = testutil.WithTestUser(req, testutil.HeadUser("Engineering"))
	rec := httptest.NewRecorder()
	h.ServeOverview(rec, req)

	if gotDept != "Engineering" {
		t.Errorf("department param: got %q, want Engineering", gotDept)
	}
}

func TestServeOverview_NoDataRendersEmptyState(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok":    false,
			"error": "No data found for range",
		})
	})

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req = testutil.WithTestUser(req, testutil.CSuiteUser())
	rec := httptest.NewRecorder()
	h.ServeOverview(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "No activity was recorded") {
		t.Error("expected the empty-state message")
	}
}

func TestServeOverview_MemberRedirectedToLogin(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend should not be called for denied roles")
	})

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req = testutil.WithTestUser(req, testutil.MemberUser("Sales"))
	rec := httptest.NewRecorder()
	h.ServeOverview(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location: got %q, want /login", loc)
	}
}

func TestServeOverview_SelectedUserNarrowsScope(t *testing.T) {
	var gotUser string
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.URL.Query().Get("user")
		json.NewEncoder(w).Encode(dashboardPayload())
	})

	u := testutil.CSuiteUser()
	u.Selected = testutil.SelectedUser("mac-77", "jordan.dev", "Jordan Dev")
	req := httptest.NewRequest("GET", "/dashboard", nil)
	req = testutil.WithTestUser(req, u)
	rec := httptest.NewRecorder()
	h.ServeOverview(rec, req)

	if gotUser != "mac-77" {
		t.Errorf("user param: got %q, want mac-77", gotUser)
	}
}
