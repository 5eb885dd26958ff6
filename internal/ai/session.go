// Package ai picks actions for computer-controlled players. A Session is
// created per match and per seat; it keeps its own weights and decision
// counter and never shares them across matches.
package ai

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/game"
	"github.com/ericogr/elemental-cards/internal/logging"
)

// ErrNotMyTurn is returned by Decide when the session's player is not active.
var (
	ErrNotMyTurn     = errors.New("not the ai player's turn")
	ErrUnknownOption = errors.New("unknown ai option")
)

// Difficulty controls thinking time and how often the AI errs.
type Difficulty string

const (
	Novice     Difficulty = "novice"
	Apprentice Difficulty = "apprentice"
	Adept      Difficulty = "adept"
	Expert     Difficulty = "expert"
	Master     Difficulty = "master"
)

type difficultyProfile struct {
	think       time.Duration
	mistakeRate float64
}

var difficulties = map[Difficulty]difficultyProfile{
	Novice:     {300 * time.Millisecond, 0.30},
	Apprentice: {800 * time.Millisecond, 0.20},
	Adept:      {1500 * time.Millisecond, 0.10},
	Expert:     {2200 * time.Millisecond, 0.05},
	Master:     {3 * time.Second, 0.01},
}

// ParseDifficulty validates a difficulty name.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if _, ok := difficulties[d]; !ok {
		return "", fmt.Errorf("%w: difficulty '%s'", ErrUnknownOption, s)
	}
	return d, nil
}

// Personality selects the starting score weights.
type Personality string

const (
	Aggressive Personality = "aggressive"
	Defensive  Personality = "defensive"
	Balanced   Personality = "balanced"
	Tactical   Personality = "tactical"
	Chaotic    Personality = "chaotic"
)

// Weights scale the score components. Noise adds a random term in
// [-Noise, Noise] scaled to action values.
type Weights struct {
	Aggression float64 `json:"aggression"`
	Defense    float64 `json:"defense"`
	Combo      float64 `json:"combo"`
	Noise      float64 `json:"noise"`
}

var personalities = map[Personality]Weights{
	Aggressive: {Aggression: 1.5, Defense: 0.6, Combo: 1.0},
	Defensive:  {Aggression: 0.6, Defense: 1.5, Combo: 1.0},
	Balanced:   {Aggression: 1.0, Defense: 1.0, Combo: 1.0},
	Tactical:   {Aggression: 1.1, Defense: 1.1, Combo: 1.6},
	Chaotic:    {Aggression: 1.0, Defense: 1.0, Combo: 1.0, Noise: 0.35},
}

// ParsePersonality validates a personality name.
func ParsePersonality(s string) (Personality, error) {
	p := Personality(s)
	if _, ok := personalities[p]; !ok {
		return "", fmt.Errorf("%w: personality '%s'", ErrUnknownOption, s)
	}
	return p, nil
}

// Rules is the part of the engine the AI needs: enumeration and a
// side-effect free Simulate used to look one action ahead.
type Rules interface {
	LegalActions(s *game.GameState) []game.GameAction
	Simulate(s *game.GameState, a game.GameAction) (*game.GameState, error)
}

// Options configures a Session. MistakeRate overrides the difficulty's rate
// when set. ThinkScale multiplies the thinking delay; zero disables it.
type Options struct {
	Difficulty  Difficulty
	Personality Personality
	MistakeRate *float64
	ThinkScale  float64
	Rand        *rand.Rand
}

// Session is the AI of one seat in one match.
type Session struct {
	matchID  string
	playerID string
	rules    Rules

	difficulty  Difficulty
	personality Personality
	think       time.Duration
	mistakeRate float64

	mu        sync.Mutex
	weights   Weights
	rng       *rand.Rand
	decisions int
}

// NewSession builds a session. Unknown difficulty or personality values
// fall back to adept and balanced.
func NewSession(matchID, playerID string, rules Rules, opts Options) *Session {
	prof, ok := difficulties[opts.Difficulty]
	if !ok {
		opts.Difficulty = Adept
		prof = difficulties[Adept]
	}
	w, ok := personalities[opts.Personality]
	if !ok {
		opts.Personality = Balanced
		w = personalities[Balanced]
	}
	rate := prof.mistakeRate
	if opts.MistakeRate != nil {
		rate = clamp(*opts.MistakeRate, 0, 1)
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{
		matchID:     matchID,
		playerID:    playerID,
		rules:       rules,
		difficulty:  opts.Difficulty,
		personality: opts.Personality,
		think:       time.Duration(float64(prof.think) * opts.ThinkScale),
		mistakeRate: rate,
		weights:     w,
		rng:         rng,
	}
}

// PlayerID is the seat this session plays for.
func (s *Session) PlayerID() string { return s.playerID }

// ThinkTime is the scaled delay before each decision.
func (s *Session) ThinkTime() time.Duration { return s.think }

// Weights returns the current, possibly adapted, weights.
func (s *Session) Weights() Weights {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weights
}

// Decide waits the thinking delay, then returns a legal action for the
// session's player. Cancellation of ctx returns ctx.Err(); any other
// failure, including a panic, falls back to EndTurn.
func (s *Session) Decide(ctx context.Context, state *game.GameState) (action game.GameAction, err error) {
	if err := s.wait(ctx); err != nil {
		return game.GameAction{}, err
	}
	if state == nil || state.IsOver() || state.Active().ID != s.playerID {
		return game.GameAction{}, ErrNotMyTurn
	}
	defer func() {
		if r := recover(); r != nil {
			s.logFallback(state, fmt.Errorf("panic: %v", r))
			action, err = s.endTurn(state), nil
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	ranked := s.rank(state)
	if len(ranked) == 0 {
		s.logFallback(state, errors.New("no scored actions"))
		return s.endTurn(state), nil
	}
	choice := s.pick(ranked)
	s.decisions++
	if s.decisions%learnEvery == 0 {
		s.learn(state)
	}
	return choice.Action, nil
}

// wait is the cancellable thinking delay.
func (s *Session) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.think <= 0 {
		return nil
	}
	t := time.NewTimer(s.think)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pick returns the best candidate, or with probability mistakeRate one of
// the 2nd to 4th ranked candidates.
func (s *Session) pick(ranked []Candidate) Candidate {
	if len(ranked) < 2 || s.mistakeRate <= 0 || s.rng.Float64() >= s.mistakeRate {
		return ranked[0]
	}
	worst := len(ranked) - 1
	if worst > 3 {
		worst = 3
	}
	return ranked[1+s.rng.Intn(worst)]
}

func (s *Session) endTurn(state *game.GameState) game.GameAction {
	a := game.GameAction{Type: game.ActionEndTurn, PlayerID: s.playerID}
	if state != nil {
		a.Turn = state.Turn
	}
	return a
}

func (s *Session) logFallback(state *game.GameState, err error) {
	fields := logging.Fields{
		constants.LogFieldMatchID:     s.matchID,
		constants.LogFieldPlayerID:    s.playerID,
		constants.LogFieldDifficulty:  string(s.difficulty),
		constants.LogFieldPersonality: string(s.personality),
	}
	if state != nil {
		fields[constants.LogFieldTurn] = state.Turn
	}
	logging.Warn("ai decision fell back to end turn", err, fields)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
