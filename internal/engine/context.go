package engine

import (
	"strings"

	"github.com/ericogr/elemental-cards/internal/game"
)

// --- Action context and helpers ---------------------------------------
type actionContext struct {
	s         *game.GameState
	actor     int
	summary   []string
	simulated bool
}

func newActionContext(s *game.GameState, actor int) *actionContext {
	return &actionContext{s: s, actor: actor, summary: make([]string, 0, 4)}
}

func (ac *actionContext) add(msg string) {
	if msg != "" {
		ac.summary = append(ac.summary, msg)
	}
}

func (ac *actionContext) self() *game.Player  { return &ac.s.Players[ac.actor] }
func (ac *actionContext) enemy() *game.Player { return &ac.s.Players[1-ac.actor] }

// joinSummary returns the accumulated summary as a single string.
func (ac *actionContext) joinSummary() string {
	return strings.Join(ac.summary, "; ")
}
