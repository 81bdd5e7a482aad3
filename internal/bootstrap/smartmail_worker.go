package bootstrap

import (
	"time"

	"smartmail_server/adapter/in/worker"
	"smartmail_server/config"
	"smartmail_server/pkg/logger"
)

// NewWorker builds the inbox poller with its own dependency graph so the
// worker can run as a separate process from the API.
func NewWorker(cfg *config.Config) (*worker.InboxPoller, func(), error) {
	logger.Init(logger.Config{
		Level:   logger.LevelInfo,
		Service: "smartmail-worker",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize worker dependencies")
		return nil, nil, err
	}

	poller := worker.NewInboxPoller(deps.Sync,
		time.Duration(cfg.SyncIntervalSec)*time.Second,
		cfg.SyncBatchSize)
	return poller, cleanup, nil
}
