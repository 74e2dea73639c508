package workers

import (
	"context"
	"log/slog"
	"time"
)

// staleAfter matches the mobile clients' token rotation window; tokens not
// seen for this long are almost certainly dead.
const staleAfter = 30 * 24 * time.Hour

type DeviceDeactivator interface {
	DeactivateStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// DeviceCleanup periodically deactivates devices that stopped checking in,
// so fan-out does not keep pushing to dead tokens.
type DeviceCleanup struct {
	devices  DeviceDeactivator
	interval time.Duration
	logger   *slog.Logger
}

func NewDeviceCleanup(devices DeviceDeactivator, interval time.Duration, logger *slog.Logger) *DeviceCleanup {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &DeviceCleanup{
		devices:  devices,
		interval: interval,
		logger:   logger,
	}
}

func (w *DeviceCleanup) Run(ctx context.Context) {
	w.logger.Info("deviceCleanup STARTED", slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("deviceCleanup STOPPED", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-staleAfter)
			n, err := w.devices.DeactivateStale(ctx, cutoff)
			if err != nil {
				w.logger.Error("stale device cleanup failed", slog.Any("error", err))
				continue
			}
			if n > 0 {
				w.logger.Info("stale devices deactivated", slog.Int64("count", n))
			}
		}
	}
}
