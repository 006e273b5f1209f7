// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/nmercer/insighthub/internal/app/system/pagedlist"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

// DBDeps holds back-end dependencies for the app. InsightHub has no
// database of its own; the monitoring API client is the data backend,
// and the paged-list registry is the per-session fetch state.
type DBDeps struct {
	Monitor *monitorapi.Client
	Lists   *pagedlist.Registry
}
