// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cache

import (
	"context"
	"log/slog"
	"time"
)

// StartJanitor purges expired entries every interval until ctx is cancelled.
// Failures are logged and the next tick tries again.
func StartJanitor(ctx context.Context, store *Store, interval time.Duration) {
	go func() {
		ticker := store.clock.Ticker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				purged, err := store.CleanExpired(ctx)
				if err != nil {
					store.logger.WarnContext(ctx, "cache_janitor_failed", slog.Any("error", err))
					continue
				}
				if purged > 0 {
					store.logger.InfoContext(ctx, "cache_janitor_purged", slog.Int64("entries", purged))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
