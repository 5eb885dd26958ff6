package match

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericogr/elemental-cards/internal/ai"
	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/engine"
	"github.com/ericogr/elemental-cards/internal/logging"
)

// Setup describes a match to create. MatchID is generated when empty. AI
// lists the seats played by the computer. Seed zero means time based.
type Setup struct {
	MatchID string
	Players [2]engine.PlayerSetup
	AI      map[string]ai.Options
	Seed    int64
}

// Manager indexes running matches by id.
type Manager struct {
	eng       *engine.Engine
	cfg       Config
	observers []Observer

	mu      sync.RWMutex
	matches map[string]*Match
}

// NewManager creates a manager; observers are attached to every match.
func NewManager(eng *engine.Engine, cfg Config, observers ...Observer) *Manager {
	return &Manager{eng: eng, cfg: cfg, observers: observers, matches: map[string]*Match{}}
}

// Engine is the rules engine shared by all matches.
func (mg *Manager) Engine() *engine.Engine { return mg.eng }

// Create deals a new match and starts it.
func (mg *Manager) Create(setup Setup) (*Match, error) {
	id := setup.MatchID
	if id == "" {
		id = uuid.NewString()
	}
	seed := setup.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	for pid := range setup.AI {
		if setup.Players[0].ID != pid && setup.Players[1].ID != pid {
			return nil, fmt.Errorf("%w: ai seat %s", engine.ErrUnknownPlayer, pid)
		}
	}
	for i := range setup.Players {
		if _, ok := setup.AI[setup.Players[i].ID]; ok {
			setup.Players[i].IsAI = true
		}
	}
	state, err := mg.eng.NewGameState(id, setup.Players[0], setup.Players[1], rng)
	if err != nil {
		return nil, err
	}

	var sessions []*ai.Session
	for pid, opts := range setup.AI {
		if opts.Rand == nil {
			opts.Rand = rand.New(rand.NewSource(rng.Int63()))
		}
		sessions = append(sessions, ai.NewSession(id, pid, mg.eng, opts))
	}

	mg.mu.Lock()
	if _, exists := mg.matches[id]; exists {
		mg.mu.Unlock()
		return nil, fmt.Errorf("match %s already exists", id)
	}
	m := New(mg.eng, state, mg.cfg, sessions...)
	for _, o := range mg.observers {
		m.Subscribe(o)
	}
	mg.matches[id] = m
	mg.mu.Unlock()

	if err := m.Start(); err != nil {
		mg.Remove(id)
		return nil, err
	}
	logging.Info("match created", logging.Fields{constants.LogFieldMatchID: id, "ai_seats": len(sessions)})
	return m, nil
}

// Get looks a match up by id.
func (mg *Manager) Get(id string) (*Match, error) {
	mg.mu.RLock()
	defer mg.mu.RUnlock()
	m, ok := mg.matches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return m, nil
}

// Abort stops a match and forgets it.
func (mg *Manager) Abort(id string) error {
	m, err := mg.Get(id)
	if err != nil {
		return err
	}
	err = m.Abort()
	mg.Remove(id)
	return err
}

// Remove forgets a match without stopping it.
func (mg *Manager) Remove(id string) {
	mg.mu.Lock()
	defer mg.mu.Unlock()
	delete(mg.matches, id)
}

// Prune forgets matches that stopped more than keep ago and reports how
// many were removed.
func (mg *Manager) Prune(keep time.Duration) int {
	mg.mu.Lock()
	defer mg.mu.Unlock()
	n := 0
	for id, m := range mg.matches {
		select {
		case <-m.Done():
		default:
			continue
		}
		if last := m.lastChange(); time.Since(last) > keep {
			delete(mg.matches, id)
			n++
		}
	}
	return n
}

// Shutdown aborts every running match.
func (mg *Manager) Shutdown() {
	mg.mu.RLock()
	all := make([]*Match, 0, len(mg.matches))
	for _, m := range mg.matches {
		all = append(all, m)
	}
	mg.mu.RUnlock()
	for _, m := range all {
		_ = m.Abort()
	}
}
