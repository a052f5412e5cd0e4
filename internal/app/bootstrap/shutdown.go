// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background work, then closes backends in reverse order of
// ConnectDB.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if runtime.reminders != nil {
		runtime.reminders.Stop()
	}
	if runtime.chatLimiter != nil {
		runtime.chatLimiter.Stop()
	}
	if runtime.signInLimit != nil {
		runtime.signInLimit.Stop()
	}

	if deps.Activity != nil {
		if err := deps.Activity.Close(); err != nil {
			logger.Warn("activity publisher close failed", zap.Error(err))
		}
	}
	if deps.Bus != nil {
		if err := deps.Bus.Close(); err != nil {
			logger.Warn("pub/sub close failed", zap.Error(err))
		}
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting StudyPal MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
