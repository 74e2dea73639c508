package workers

import (
	"context"
	"log/slog"
	"time"
)

type CommunityRefresher interface {
	RefreshCache(ctx context.Context) (int, error)
}

// CacheRefresher keeps the active-community cache warm so resolution never
// waits on a cold read during request handling.
type CacheRefresher struct {
	communities CommunityRefresher
	interval    time.Duration
	logger      *slog.Logger
}

func NewCacheRefresher(communities CommunityRefresher, interval time.Duration, logger *slog.Logger) *CacheRefresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheRefresher{
		communities: communities,
		interval:    interval,
		logger:      logger,
	}
}

func (w *CacheRefresher) Run(ctx context.Context) {
	w.logger.Info("cacheRefresher STARTED", slog.Duration("interval", w.interval))

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cacheRefresher STOPPED", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *CacheRefresher) refresh(ctx context.Context) {
	count, err := w.communities.RefreshCache(ctx)
	if err != nil {
		w.logger.Error("community cache refresh failed", slog.Any("error", err))
		return
	}
	w.logger.Debug("community cache refreshed", slog.Int("communities", count))
}
