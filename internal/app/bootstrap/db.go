// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/nmercer/insighthub/internal/app/system/pagedlist"
	"github.com/nmercer/insighthub/internal/monitorapi"
)

// ConnectDB builds the monitoring API client. There is no persistent
// connection to establish; a reachability probe is logged but does not
// block startup, since the backend may come up after the console.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	client, err := monitorapi.New(appCfg.APIBaseURL, appCfg.APITimeout, logger)
	if err != nil {
		return DBDeps{}, err
	}

	if err := client.Ping(ctx); err != nil {
		logger.Warn("monitoring API not reachable at startup", zap.Error(err))
	} else {
		logger.Info("monitoring API reachable", zap.String("base_url", appCfg.APIBaseURL))
	}

	return DBDeps{
		Monitor: client,
		Lists:   pagedlist.NewRegistry(),
	}, nil
}

// EnsureSchema sets up indexes or schema as needed. The monitoring API
// owns all storage, so there is nothing to do here.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return nil
}
