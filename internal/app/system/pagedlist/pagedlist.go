// internal/app/system/pagedlist/pagedlist.go

// Package pagedlist accumulates load-more lists server-side. Each signed-in
// session gets one accumulator per list; pages append in request order, and a
// scope change (different user, department, or date range) resets the list
// back to page one.
package pagedlist

import (
	"context"
	"sync"

	"encoding/json"

	"github.com/google/uuid"

	"github.com/nmercer/insighthub/internal/app/system/listnorm"
)

// Fetcher loads one page of rows. Page numbering starts at 1.
type Fetcher func(ctx context.Context, page, limit int) (listnorm.PagedList, error)

// Snapshot is a read-only view of the accumulated list.
type Snapshot struct {
	Items   []json.RawMessage
	Total   int
	Page    int
	HasMore bool
	Loading bool
}

// Accumulator holds the loaded pages of one list for one session.
type Accumulator struct {
	mu       sync.Mutex
	pageSize int

	scopeSig string
	gen      string

	items       []json.RawMessage
	total       int
	serverTotal int
	haveTotal   bool
	page        int
	loading     bool
}

// NewAccumulator builds an empty accumulator with a fixed page size.
func NewAccumulator(pageSize int) *Accumulator {
	return &Accumulator{
		pageSize: pageSize,
		gen:      uuid.NewString(),
		items:    []json.RawMessage{},
	}
}

// PageSize returns the fixed per-page row count.
func (a *Accumulator) PageSize() int { return a.pageSize }

// Bind points the accumulator at a scope. A changed scope discards everything
// loaded so far and invalidates any fetch still in flight for the old scope.
func (a *Accumulator) Bind(scopeSig string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.scopeSig == scopeSig {
		return
	}
	a.scopeSig = scopeSig
	a.resetLocked()
}

// Reset discards all loaded pages regardless of scope.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
}

func (a *Accumulator) resetLocked() {
	a.gen = uuid.NewString()
	a.items = []json.RawMessage{}
	a.total = 0
	a.serverTotal = 0
	a.haveTotal = false
	a.page = 0
	a.loading = false
}

// Snapshot returns the current accumulated state.
func (a *Accumulator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		Items:   a.items,
		Total:   a.total,
		Page:    a.page,
		HasMore: a.page == 0 || len(a.items) < a.total,
		Loading: a.loading,
	}
}

// EnsureLoaded fetches page one if nothing is loaded yet.
func (a *Accumulator) EnsureLoaded(ctx context.Context, fetch Fetcher) error {
	a.mu.Lock()
	if a.page > 0 || a.loading {
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()
	return a.LoadMore(ctx, fetch)
}

// LoadMore fetches the next page and appends it. It is a no-op when a fetch
// is already in flight or the server has no rows left. A failed fetch leaves
// the accumulated state untouched, and a result that arrives after the scope
// changed is discarded.
func (a *Accumulator) LoadMore(ctx context.Context, fetch Fetcher) error {
	a.mu.Lock()
	if a.loading {
		a.mu.Unlock()
		return nil
	}
	if a.page > 0 && len(a.items) >= a.total {
		a.mu.Unlock()
		return nil
	}
	a.loading = true
	gen := a.gen
	next := a.page + 1
	limit := a.pageSize
	a.mu.Unlock()

	page, err := fetch(ctx, next, limit)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != gen {
		// scope changed mid-flight; the result belongs to the old list
		return nil
	}
	a.loading = false
	if err != nil {
		return err
	}

	a.items = append(a.items, page.Items...)
	a.page = next
	// a page without a server-reported total keeps the last reported one;
	// only a list that never saw one falls back to the loaded count
	if page.ServerTotal != nil {
		a.serverTotal = *page.ServerTotal
		a.haveTotal = true
	}
	if a.haveTotal {
		a.total = a.serverTotal
	} else {
		a.total = len(a.items)
	}
	return nil
}

// Default page sizes for the two accumulated lists.
const (
	LogsPageSize        = 100
	ScreenshotsPageSize = 50
)

// ScopeSig builds the scope signature a list is bound to. Pages that show
// the same user and range share accumulated state through it.
func ScopeSig(kind, userID, rangeSig string) string {
	return kind + ":user:" + userID + "|" + rangeSig
}

// Bundle is the per-session pair of accumulated lists.
type Bundle struct {
	Logs        *Accumulator
	Screenshots *Accumulator
}

// Registry hands out one Bundle per session ID. It is process-local state;
// signing out should call Drop.
type Registry struct {
	mu      sync.Mutex
	bundles map[string]*Bundle
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{bundles: make(map[string]*Bundle)}
}

// Bundle returns the session's bundle, creating it on first use.
func (r *Registry) Bundle(sessionID string) *Bundle {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bundles[sessionID]
	if !ok {
		b = &Bundle{
			Logs:        NewAccumulator(LogsPageSize),
			Screenshots: NewAccumulator(ScreenshotsPageSize),
		}
		r.bundles[sessionID] = b
	}
	return b
}

// Drop discards a session's accumulated lists.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bundles, sessionID)
}
