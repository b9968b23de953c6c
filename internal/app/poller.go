package app

import (
	"context"
	"log"
	"time"

	"github.com/five82/rally/internal/state"
)

const defaultRefreshInterval = time.Minute

// matchLoader is the slice of core.Core the refresher needs.
type matchLoader interface {
	Snapshot() state.Snapshot
	LoadMatches(ctx context.Context) error
}

// StartRefresher launches a background goroutine that reloads the nearby
// matches at a fixed cadence. Broadcast events missed while offline are not
// replayed by the server, so the list is refetched on a timer. It returns
// immediately.
func StartRefresher(ctx context.Context, loader matchLoader, interval time.Duration) {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refresh(ctx, loader)
			}
		}
	}()
}

func refresh(ctx context.Context, loader matchLoader) bool {
	if !loader.Snapshot().Coordinates.Set {
		return false
	}
	if err := loader.LoadMatches(ctx); err != nil {
		log.Printf("matches refresh failed: %v", err)
		return false
	}
	return true
}
