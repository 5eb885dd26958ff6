package match

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/logging"
)

// Lifecycle states of a match.
const (
	StatePending  = "pending"
	StateActive   = "active"
	StateFinished = "finished"
	StateAborted  = "aborted"
)

const (
	eventStart  = "start"
	eventFinish = "finish"
	eventAbort  = "abort"
)

func newLifecycle(matchID string) *fsm.FSM {
	return fsm.NewFSM(
		StatePending,
		fsm.Events{
			{Name: eventStart, Src: []string{StatePending}, Dst: StateActive},
			{Name: eventFinish, Src: []string{StateActive}, Dst: StateFinished},
			{Name: eventAbort, Src: []string{StatePending, StateActive}, Dst: StateAborted},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logging.Debug("match lifecycle", logging.Fields{
					constants.LogFieldMatchID: matchID,
					"from":                    e.Src,
					"to":                      e.Dst,
				})
			},
		},
	)
}
