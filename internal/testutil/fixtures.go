package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nmercer/insighthub/internal/app/resources"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

var bootOnce sync.Once

// BootTemplates boots the shared template engine once for the test binary.
// Handlers that render pages need this before their first Render call.
func BootTemplates(t *testing.T) {
	t.Helper()
	bootOnce.Do(func() {
		resources.LoadSharedTemplates()
		eng := templates.New(false)
		if err := eng.Boot(zap.NewNop()); err != nil {
			t.Fatalf("template engine boot failed: %v", err)
		}
		templates.UseEngine(eng, zap.NewNop())
	})
}

// FakeBackend starts an httptest server running the given handler and
// returns a monitoring client pointed at it.
func FakeBackend(t *testing.T, handler http.HandlerFunc) *monitorapi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := monitorapi.New(srv.URL, 5*time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("monitorapi.New: %v", err)
	}
	return c
}
