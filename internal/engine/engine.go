// Package engine is the authoritative battle state machine. Apply never
// mutates its input: handlers work on a deep copy that replaces the old
// state only when the whole transition succeeded.
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ericogr/elemental-cards/internal/game"
)

// AbilitySource resolves ability ids. *catalog.Catalog implements it.
type AbilitySource interface {
	Ability(id string) (game.AbilityDef, error)
}

// Engine applies actions to game states. It holds no per-match data and is
// safe for concurrent use.
type Engine struct {
	abilities AbilitySource
	now       func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the clock used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New returns an Engine that looks abilities up in src.
func New(src AbilitySource, opts ...Option) *Engine {
	e := &Engine{abilities: src, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Abilities exposes the ability source used by this engine.
func (e *Engine) Abilities() AbilitySource { return e.abilities }

// PlayerSetup describes one side of a new match.
type PlayerSetup struct {
	ID   string
	Name string
	IsAI bool
	Deck []game.Card
}

// NewGameState shuffles both decks with rng, deals the opening hands and
// gives the first turn to p1.
func (e *Engine) NewGameState(matchID string, p1, p2 PlayerSetup, rng *rand.Rand) (*game.GameState, error) {
	if p1.ID == "" || p2.ID == "" || p1.ID == p2.ID {
		return nil, fmt.Errorf("%w: players need distinct ids", ErrInvalidSetup)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(e.now().UnixNano()))
	}
	s := &game.GameState{
		MatchID: matchID,
		Turn:    1,
		Phase:   game.PhaseMain,
		Status:  game.StatusActive,
		History: []game.ActionRecord{},
	}
	for i, setup := range []PlayerSetup{p1, p2} {
		if len(setup.Deck) < game.StartingHandSize {
			return nil, fmt.Errorf("%w: %s has %d cards, need at least %d", ErrInvalidSetup, setup.ID, len(setup.Deck), game.StartingHandSize)
		}
		deck := make([]game.Card, len(setup.Deck))
		for j := range setup.Deck {
			c := setup.Deck[j].Clone()
			c.CanAttack = false
			c.CanUseAbilities = false
			c.TurnsSincePlayed = 0
			c.Cooldowns = nil
			c.StatusEffects = nil
			deck[j] = c
		}
		rng.Shuffle(len(deck), func(a, b int) { deck[a], deck[b] = deck[b], deck[a] })
		p := game.NewPlayer(setup.ID, setup.Name, deck)
		p.IsAI = setup.IsAI
		drawCards(&p, game.StartingHandSize)
		s.Players[i] = p
	}
	return s, nil
}

// Apply validates and executes one action. On success it returns the new
// state; on failure it returns the unchanged input and a wrapped sentinel.
func (e *Engine) Apply(state *game.GameState, action game.GameAction) (*game.GameState, error) {
	return e.apply(state, action, false)
}

// Simulate is Apply for lookahead: same result, but faulty abilities are
// only logged at debug level.
func (e *Engine) Simulate(state *game.GameState, action game.GameAction) (*game.GameState, error) {
	return e.apply(state, action, true)
}

func (e *Engine) apply(state *game.GameState, action game.GameAction, simulated bool) (*game.GameState, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: no state", ErrInvalidSetup)
	}
	if state.IsOver() {
		return state, ErrGameOver
	}
	idx := state.PlayerIndex(action.PlayerID)
	if idx < 0 {
		return state, fmt.Errorf("%w: %s", ErrUnknownPlayer, action.PlayerID)
	}
	if idx != state.CurrentPlayer {
		return state, fmt.Errorf("%w: %s", ErrNotYourTurn, action.PlayerID)
	}
	if action.Turn != 0 && action.Turn != state.Turn {
		return state, fmt.Errorf("%w: action turn %d, current turn %d", ErrStaleAction, action.Turn, state.Turn)
	}

	next := state.Clone()
	ac := newActionContext(next, idx)
	ac.simulated = simulated
	var err error
	switch action.Type {
	case game.ActionPlayCard:
		err = e.playCard(ac, action)
	case game.ActionAttack:
		err = e.attack(ac, action)
	case game.ActionUseAbility:
		err = e.useAbility(ac, action)
	case game.ActionEndTurn:
		err = e.endTurn(ac)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, action.Type)
	}
	if err != nil {
		return state, err
	}
	ac.sweepDead()
	if CheckGameEnd(next) {
		ac.add(endMessage(next))
	}
	e.record(next, action, state.Turn, ac.joinSummary())
	return next, nil
}

// Forfeit ends the match in favor of the other player.
func (e *Engine) Forfeit(state *game.GameState, playerID string) (*game.GameState, error) {
	if state.IsOver() {
		return state, ErrGameOver
	}
	idx := state.PlayerIndex(playerID)
	if idx < 0 {
		return state, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	next := state.Clone()
	next.Status = game.StatusFinished
	next.Winner = next.Players[1-idx].ID
	next.EndReason = EndForfeit
	e.record(next, game.GameAction{Type: ActionForfeit, PlayerID: playerID}, state.Turn, next.Players[idx].Name+" forfeits")
	return next, nil
}

// ActionForfeit only appears in history; Apply does not accept it.
const ActionForfeit game.ActionType = "forfeit"

func (e *Engine) record(s *game.GameState, a game.GameAction, turn int, msg string) {
	now := e.now().UTC()
	s.History = append(s.History, game.ActionRecord{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Action:    a,
		Turn:      turn,
		Timestamp: now,
		Message:   msg,
	})
}
