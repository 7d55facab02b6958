package reminder

import (
	"context"
	"time"

	"hrdesk/backend/internal/config"
	"hrdesk/backend/internal/metrics"

	"go.uber.org/zap"
)

// Worker polls the reminder queue until its context is cancelled.
type Worker struct {
	svc      *Service
	interval time.Duration
	batch    int64
	logger   *zap.Logger
	now      func() time.Time
}

// NewWorker creates a worker. Non-positive interval or batch fall back to the
// configured defaults.
func NewWorker(svc *Service, interval time.Duration, batch int, logger *zap.Logger) *Worker {
	if interval <= 0 {
		interval = config.ReminderPollInterval
	}
	if batch <= 0 {
		batch = config.ReminderBatchSize
	}
	return &Worker{
		svc:      svc,
		interval: interval,
		batch:    int64(batch),
		logger:   logger,
		now:      time.Now,
	}
}

// Run drains due reminders once, then on every tick.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("reminder worker started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.Poll(ctx)

		select {
		case <-ctx.Done():
			w.logger.Info("reminder worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// Poll drains every reminder due now, batch by batch.
func (w *Worker) Poll(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.ReminderPollDuration.Observe(time.Since(start).Seconds())
	}()

	for ctx.Err() == nil {
		sent, err := w.svc.Process(ctx, w.now(), w.batch)
		if err != nil {
			w.logger.Error("reminder poll failed", zap.Error(err))
			return
		}
		if int64(sent) < w.batch {
			return
		}
	}
}
