// Package dedupe provides shared singleflight groups used to deduplicate
// concurrent work. Only one job runs for a given key while other callers
// wait for its result.
package dedupe

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// SnapshotKey identifies one committed state of a match. The history
// grows with every applied action, so work derived from a state can be
// shared under this key.
func SnapshotKey(matchID string, turn, historyLen int) string {
	return fmt.Sprintf("%s:%d:%d", matchID, turn, historyLen)
}

// Do runs fn once per key among concurrent callers of g and returns its
// typed result. shared reports whether the result was handed to more than
// one caller. The wait is abandoned when ctx ends; fn keeps running.
func Do[T any](ctx context.Context, g *singleflight.Group, key string, fn func() (T, error)) (v T, shared bool, err error) {
	ch := g.DoChan(key, func() (interface{}, error) { return fn() })
	select {
	case <-ctx.Done():
		return v, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return v, res.Shared, res.Err
		}
		return res.Val.(T), res.Shared, nil
	}
}
