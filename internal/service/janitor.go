package service

import (
	"context"
	"time"

	"github.com/ericogr/elemental-cards/internal/logging"
	"github.com/ericogr/elemental-cards/internal/match"
)

// RunJanitor periodically forgets matches that stopped more than keep ago.
// It returns when ctx ends.
func RunJanitor(ctx context.Context, mg *match.Manager, interval, keep time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := mg.Prune(keep); n > 0 {
				logging.Info("pruned finished matches", logging.Fields{"count": n})
			}
		}
	}
}
