package logs_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	uierrors "github.com/nmercer/insighthub/internal/app/features/errors"
	"github.com/nmercer/insighthub/internal/app/features/logs"
	"github.com/nmercer/insighthub/internal/app/system/pagedlist"
	"github.com/nmercer/insighthub/internal/testutil"
)

func newHandler(t *testing.T, backend http.HandlerFunc) *logs.Handler {
	t.Helper()
	testutil.BootTemplates(t)
	logger := zap.NewNop()
	return &logs.Handler{
		Monitor: testutil.FakeBackend(t, backend),
		Log:     logger,
		ErrLog:  uierrors.NewErrorLogger(logger),
		Lists:   pagedlist.NewRegistry(),
	}
}

func selectedViewer() testutil.TestUser {
	u := testutil.CSuiteUser()
	u.Selected = testutil.SelectedUser("mac-77", "jordan.dev", "Jordan Dev")
	return u
}

func TestServeLogs_NoSelectionRedirectsToDirectory(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend should not be called without a selection")
	})

	req := httptest.NewRequest("GET", "/dashboard/logs", nil)
	req = testutil.WithTestUser(req, testutil.CSuiteUser())
	rec := httptest.NewRecorder()
	h.ServeLogs(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard/users?notice=pick" {
		t.Errorf("Location: got %q, want /dashboard/users?notice=pick", loc)
	}
}

func TestServeLogs_RendersSelectedUsersRows(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("user_mac_id"); got != "mac-77" {
			t.Errorf("scoped to %q, want mac-77", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"data": map[string]any{
				"items": []map[string]any{{
					"ts":          "2024-03-05T09:30:00Z",
					"application": "Slack",
					"category":    "chat",
				}},
				"total": 180,
			},
		})
	})

	req := httptest.NewRequest("GET", "/dashboard/logs?from=2024-03-04&to=2024-03-10", nil)
	req = testutil.WithTestUser(req, selectedViewer())
	rec := httptest.NewRecorder()
	h.ServeLogs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Slack") {
		t.Error("expected log rows in the page")
	}
	if !strings.Contains(body, "Load more") {
		t.Error("expected a load-more control while more rows remain")
	}
}

func TestHandleLoadMore_AdvancesAndRedirects(t *testing.T) {
	var pages []string
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		pages = append(pages, r.URL.Query().Get("page"))
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"data": map[string]any{
				"items": []map[string]any{{"ts": "2024-03-05T09:30:00Z", "application": "Slack"}},
				"total": 500,
			},
		})
	})

	viewer := selectedViewer()
	req := httptest.NewRequest("GET", "/dashboard/logs?from=2024-03-04&to=2024-03-10", nil)
	req = testutil.WithTestUser(req, viewer)
	h.ServeLogs(httptest.NewRecorder(), req)

	req = httptest.NewRequest("POST", "/dashboard/logs/more?from=2024-03-04&to=2024-03-10", nil)
	req = testutil.WithTestUser(req, viewer)
	rec := httptest.NewRecorder()
	h.HandleLoadMore(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard/logs?from=2024-03-04&to=2024-03-10" {
		t.Errorf("Location: got %q", loc)
	}
	if len(pages) != 2 || pages[0] != "1" || pages[1] != "2" {
		t.Errorf("pages fetched: got %v, want [1 2]", pages)
	}
}

func TestServeCSV_ExportsAccumulatedRows(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"data": map[string]any{
				"items": []map[string]any{{
					"ts":          "2024-03-05T09:30:00Z",
					"application": "Slack",
					"category":    "chat",
				}},
				"total": 1,
			},
		})
	})

	req := httptest.NewRequest("GET", "/dashboard/logs/export.csv?from=2024-03-04&to=2024-03-10", nil)
	req = testutil.WithTestUser(req, selectedViewer())
	rec := httptest.NewRecorder()
	h.ServeCSV(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	wantName := "logs_" + time.Now().Format("2006-01-02") + ".csv"
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, wantName) {
		t.Errorf("Content-Disposition: got %q, want %q", cd, wantName)
	}
	if !strings.Contains(rec.Body.String(), "2024-03-05,09:30:00,Slack") {
		t.Error("expected the accumulated row in the CSV")
	}
}

func TestServePrint_UsesSelectionDisplayName(t *testing.T) {
	h := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"data": map[string]any{
				"items": []map[string]any{{"ts": "2024-03-05T09:30:00Z", "application": "Slack"}},
				"total": 1,
			},
		})
	})

	req := httptest.NewRequest("GET", "/dashboard/logs/print?from=2024-03-04&to=2024-03-10", nil)
	req = testutil.WithTestUser(req, selectedViewer())
	rec := httptest.NewRecorder()
	h.ServePrint(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Activity report: Jordan Dev") {
		t.Error("expected the selection's display name in the report title")
	}
}
