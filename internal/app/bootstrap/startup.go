// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	notificationstore "github.com/dalemusser/studypal/internal/app/store/notifications"
	"github.com/dalemusser/studypal/internal/app/system/metrics"
	"github.com/dalemusser/studypal/internal/app/system/ratelimit"
	"github.com/dalemusser/studypal/internal/app/system/timeouts"
	"github.com/dalemusser/studypal/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Token exchanges allowed per client IP.
const (
	signInAttempts = 10
	signInWindow   = time.Minute
)

// runtime holds process-wide services created in Startup and used by
// BuildHandler and Shutdown.
var runtime struct {
	metrics     *metrics.Metrics
	chatLimiter *ratelimit.Limiter
	signInLimit *ratelimit.Limiter
	reminders   *workers.ReminderDispatcher
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	runtime.metrics = metrics.New()
	runtime.chatLimiter = ratelimit.New(appCfg.ChatRateLimit, appCfg.ChatRateWindow)
	runtime.signInLimit = ratelimit.New(signInAttempts, signInWindow)

	runtime.reminders = workers.NewReminderDispatcher(
		notificationstore.New(deps.MongoDatabase),
		deps.Bus,
		runtime.metrics,
		logger,
		appCfg.ReminderInterval,
	)
	runtime.reminders.Start()

	return nil
}
