// internal/app/system/workers/reminders.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/studypal/internal/app/system/metrics"
	"github.com/dalemusser/studypal/internal/app/system/pubsub"
	"github.com/dalemusser/studypal/internal/domain/models"
	"go.uber.org/zap"
)

// DueClaimer hands out scheduled notifications whose time has come. Each
// notification is claimed at most once, even with several dispatchers.
type DueClaimer interface {
	ClaimDue(ctx context.Context, now time.Time) (models.Notification, bool, error)
}

// maxPerSweep bounds the work of one tick so a backlog cannot starve Stop.
const maxPerSweep = 500

// ReminderDispatcher is a background worker that delivers due event
// reminders to their owners' notification channels.
type ReminderDispatcher struct {
	notifications DueClaimer
	bus           pubsub.Bus
	metrics       *metrics.Metrics
	log           *zap.Logger
	interval      time.Duration
	now           func() time.Time
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewReminderDispatcher creates a dispatcher that sweeps every interval.
func NewReminderDispatcher(n DueClaimer, bus pubsub.Bus, m *metrics.Metrics, logger *zap.Logger, interval time.Duration) *ReminderDispatcher {
	return &ReminderDispatcher{
		notifications: n,
		bus:           bus,
		metrics:       m,
		log:           logger,
		interval:      interval,
		now:           func() time.Time { return time.Now().UTC() },
		stopCh:        make(chan struct{}),
	}
}

// Start begins the background dispatch loop.
func (w *ReminderDispatcher) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("reminder dispatcher started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *ReminderDispatcher) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("reminder dispatcher stopped")
}

func (w *ReminderDispatcher) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep(context.Background())
		}
	}
}

// Sweep delivers every reminder due now and returns how many it delivered.
// A reminder whose publish fails stays delivered; the client sees it on the
// next notification list.
func (w *ReminderDispatcher) Sweep(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := w.now()
	sent := 0
	for sent < maxPerSweep {
		n, ok, err := w.notifications.ClaimDue(ctx, now)
		if err != nil {
			w.log.Error("failed to claim due reminders", zap.Error(err))
			break
		}
		if !ok {
			break
		}
		sent++
		if err := w.bus.Publish(ctx, pubsub.UserChannel(n.UserID), pubsub.EventNotification, n); err != nil {
			w.log.Warn("publish reminder failed",
				zap.String("user_id", n.UserID),
				zap.String("notification_id", n.ID.Hex()),
				zap.Error(err))
		}
	}

	if sent > 0 {
		w.metrics.RemindersDispatched(sent)
		w.log.Info("dispatched reminders", zap.Int("count", sent))
	}
	return sent
}
