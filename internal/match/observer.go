package match

import (
	"fmt"

	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/game"
	"github.com/ericogr/elemental-cards/internal/logging"
)

// Update is what observers receive after every change. State is a private
// deep copy. Record is nil for lifecycle-only updates.
type Update struct {
	MatchID   string
	Lifecycle string
	State     *game.GameState
	Record    *game.ActionRecord
}

// Observer watches a match. Observe runs on the match goroutine and must
// not block; it never sees the live state.
type Observer interface {
	Observe(u Update)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(u Update)

func (f ObserverFunc) Observe(u Update) { f(u) }

// TelemetryObserver logs applied actions and lifecycle changes.
type TelemetryObserver struct{}

func (TelemetryObserver) Observe(u Update) {
	fields := logging.Fields{constants.LogFieldMatchID: u.MatchID}
	if u.Record != nil {
		fields[constants.LogFieldPlayerID] = u.Record.Action.PlayerID
		fields[constants.LogFieldTurn] = u.Record.Turn
		fields[constants.LogFieldAction] = string(u.Record.Action.Type)
		fields["record_id"] = u.Record.ID
		fields["message"] = u.Record.Message
		logging.Info("action applied", fields)
		return
	}
	if u.State != nil {
		fields["winner"] = u.State.Winner
		fields[constants.LogFieldReason] = u.State.EndReason
		fields[constants.LogFieldTurn] = u.State.Turn
	}
	logging.Info("match "+u.Lifecycle, fields)
}

// notify hands each observer its own snapshot. A panicking observer is
// logged and skipped.
func (m *Match) notify(lifecycle string, s *game.GameState, rec *game.ActionRecord) {
	m.obsMu.RLock()
	obs := make([]Observer, 0, len(m.observers))
	for _, o := range m.observers {
		obs = append(obs, o.Observer)
	}
	m.obsMu.RUnlock()

	for _, o := range obs {
		u := Update{MatchID: m.id, Lifecycle: lifecycle}
		if s != nil {
			u.State = s.Clone()
		}
		if rec != nil {
			r := *rec
			u.Record = &r
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					logging.Error("observer panicked", fmt.Errorf("%v", r), logging.Fields{constants.LogFieldMatchID: m.id})
				}
			}()
			o.Observe(u)
		}()
	}
}
