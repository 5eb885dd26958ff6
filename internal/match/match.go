// Package match runs live matches. Each Match owns one game state and a
// single goroutine that applies queued actions through the engine, so
// every change to a match is serialized.
package match

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/ericogr/elemental-cards/internal/ai"
	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/engine"
	"github.com/ericogr/elemental-cards/internal/game"
	"github.com/ericogr/elemental-cards/internal/logging"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrNotActive     = errors.New("match is not active")
	ErrMatchClosed   = errors.New("match is closed")
	ErrQueueFull     = errors.New("action queue is full")
	ErrAIControlled  = errors.New("player is controlled by the AI")
)

// Defaults used when Config leaves a field zero.
const (
	DefaultQueueSize        = 16
	DefaultMaxAIActionsTurn = 30
)

// Config tunes a match. A zero TurnTimeout disables the turn timer.
type Config struct {
	QueueSize        int
	TurnTimeout      time.Duration
	MaxAIActionsTurn int
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.MaxAIActionsTurn <= 0 {
		c.MaxAIActionsTurn = DefaultMaxAIActionsTurn
	}
	return c
}

type origin int

const (
	fromPlayer origin = iota
	fromAI
	fromTimer
)

type result struct {
	state *game.GameState
	err   error
}

type submission struct {
	action  game.GameAction
	forfeit bool
	origin  origin
	reply   chan result
}

type registered struct {
	id int
	Observer
}

// Match is one running battle.
type Match struct {
	id    string
	eng   *engine.Engine
	cfg   Config
	queue chan submission
	abort chan struct{}
	done  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	lifecycle *fsm.FSM
	sessions  map[string]*ai.Session

	mu        sync.RWMutex
	state     *game.GameState
	deadline  time.Time
	startedAt time.Time

	obsMu     sync.RWMutex
	observers []registered
	nextObs   int

	// owned by the run goroutine
	timer     *time.Timer
	timerTurn int
	aiTurn    int
	aiActions int
	closing   bool
}

// New wraps an initial state. The match stays pending until Start.
func New(eng *engine.Engine, state *game.GameState, cfg Config, sessions ...*ai.Session) *Match {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	m := &Match{
		id:        state.MatchID,
		eng:       eng,
		cfg:       cfg,
		queue:     make(chan submission, cfg.QueueSize),
		abort:     make(chan struct{}),
		done:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		lifecycle: newLifecycle(state.MatchID),
		sessions:  map[string]*ai.Session{},
		state:     state,
	}
	for _, s := range sessions {
		m.sessions[s.PlayerID()] = s
	}
	return m
}

func (m *Match) ID() string { return m.id }

// Status is the lifecycle state.
func (m *Match) Status() string { return m.lifecycle.Current() }

// Done is closed once the match goroutine has stopped.
func (m *Match) Done() <-chan struct{} { return m.done }

// State returns a deep copy of the current state.
func (m *Match) State() *game.GameState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Clone()
}

// Deadline is when the current turn times out; zero when there is no timer.
func (m *Match) Deadline() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deadline
}

// StartedAt is when Start was called.
func (m *Match) StartedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.startedAt
}

// IsAI reports whether playerID is played by an AI session.
func (m *Match) IsAI(playerID string) bool {
	_, ok := m.sessions[playerID]
	return ok
}

// Subscribe adds an observer and returns the function that removes it.
func (m *Match) Subscribe(o Observer) func() {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	m.nextObs++
	id := m.nextObs
	m.observers = append(m.observers, registered{id: id, Observer: o})
	return func() {
		m.obsMu.Lock()
		defer m.obsMu.Unlock()
		for i, r := range m.observers {
			if r.id == id {
				m.observers = append(m.observers[:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

// Start activates the match and launches its goroutine.
func (m *Match) Start() error {
	if err := m.lifecycle.Event(m.ctx, eventStart); err != nil {
		return fmt.Errorf("%w: %v", ErrNotActive, err)
	}
	m.mu.Lock()
	m.startedAt = time.Now()
	snap := m.state
	m.mu.Unlock()

	m.notify(StateActive, snap, nil)
	m.armTimer(snap)
	m.driveAI(snap)
	go m.run()
	return nil
}

// Submit queues a player action and waits for its result. Actions for AI
// seats are refused.
func (m *Match) Submit(ctx context.Context, a game.GameAction) (*game.GameState, error) {
	if m.IsAI(a.PlayerID) {
		return nil, fmt.Errorf("%w: %s", ErrAIControlled, a.PlayerID)
	}
	return m.submit(ctx, submission{action: a, origin: fromPlayer})
}

// Forfeit concedes the match for playerID.
func (m *Match) Forfeit(ctx context.Context, playerID string) (*game.GameState, error) {
	return m.submit(ctx, submission{action: game.GameAction{PlayerID: playerID}, forfeit: true, origin: fromPlayer})
}

func (m *Match) submit(ctx context.Context, sub submission) (*game.GameState, error) {
	if !m.lifecycle.Is(StateActive) {
		return nil, fmt.Errorf("%w: %s", ErrNotActive, m.Status())
	}
	sub.reply = make(chan result, 1)
	select {
	case m.queue <- sub:
	case <-m.done:
		return nil, ErrMatchClosed
	default:
		return nil, ErrQueueFull
	}
	select {
	case r := <-sub.reply:
		return r.state, r.err
	case <-m.done:
		return nil, ErrMatchClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Abort stops the match without a result. Pending AI decisions are
// cancelled.
func (m *Match) Abort() error {
	if m.lifecycle.Is(StatePending) {
		if err := m.lifecycle.Event(m.ctx, eventAbort); err != nil {
			return err
		}
		m.cancel()
		close(m.done)
		m.notify(StateAborted, m.State(), nil)
		return nil
	}
	select {
	case m.abort <- struct{}{}:
		<-m.done
		return nil
	case <-m.done:
		return ErrMatchClosed
	}
}

func (m *Match) run() {
	defer func() {
		m.stopTimer()
		m.cancel()
		close(m.done)
	}()
	for !m.closing {
		select {
		case <-m.abort:
			if err := m.lifecycle.Event(m.ctx, eventAbort); err != nil {
				logging.Warn("abort transition failed", err, logging.Fields{constants.LogFieldMatchID: m.id})
			}
			m.notify(StateAborted, m.State(), nil)
			return
		case sub := <-m.queue:
			st, err := m.handle(sub)
			if sub.reply != nil {
				sub.reply <- result{state: st, err: err}
			}
		}
	}
}

func (m *Match) handle(sub submission) (*game.GameState, error) {
	m.mu.RLock()
	cur := m.state
	m.mu.RUnlock()

	if sub.origin == fromAI {
		if cur.Turn != m.aiTurn {
			m.aiTurn, m.aiActions = cur.Turn, 0
		}
		m.aiActions++
	}

	var next *game.GameState
	var err error
	if sub.forfeit {
		next, err = m.eng.Forfeit(cur, sub.action.PlayerID)
	} else {
		next, err = m.eng.Apply(cur, sub.action)
	}
	if err != nil {
		m.rejected(sub, cur, err)
		return nil, err
	}
	m.commit(next)
	return next.Clone(), nil
}

// rejected handles a failed submission. An AI action that the engine
// refuses ends the AI's turn so the match cannot stall.
func (m *Match) rejected(sub submission, cur *game.GameState, err error) {
	fields := logging.Fields{
		constants.LogFieldMatchID:  m.id,
		constants.LogFieldPlayerID: sub.action.PlayerID,
		constants.LogFieldAction:   string(sub.action.Type),
		constants.LogFieldTurn:     cur.Turn,
	}
	if sub.origin == fromPlayer || errors.Is(err, engine.ErrStaleAction) || cur.IsOver() {
		logging.Debug("action rejected: "+err.Error(), fields)
		return
	}
	logging.Warn("automatic action rejected; ending turn", err, fields)
	if cur.Active().ID != sub.action.PlayerID {
		return
	}
	next, err := m.eng.Apply(cur, game.GameAction{Type: game.ActionEndTurn, PlayerID: sub.action.PlayerID, Turn: cur.Turn})
	if err != nil {
		logging.Error("forced end turn failed", err, fields)
		return
	}
	m.commit(next)
}

// commit publishes next and schedules what the new state requires.
func (m *Match) commit(next *game.GameState) {
	m.mu.Lock()
	m.state = next
	m.mu.Unlock()

	var rec *game.ActionRecord
	if n := len(next.History); n > 0 {
		rec = &next.History[n-1]
	}
	m.notify(StateActive, next, rec)

	if next.IsOver() {
		if err := m.lifecycle.Event(m.ctx, eventFinish); err != nil {
			logging.Warn("finish transition failed", err, logging.Fields{constants.LogFieldMatchID: m.id})
		}
		m.notify(StateFinished, next, nil)
		m.closing = true
		return
	}
	m.armTimer(next)
	m.driveAI(next)
}

// armTimer restarts the turn timer when the turn changed. Expiry queues an
// EndTurn pinned to that turn; the engine drops it if the turn has moved on.
func (m *Match) armTimer(s *game.GameState) {
	if m.cfg.TurnTimeout <= 0 || s.Turn == m.timerTurn {
		return
	}
	m.stopTimer()
	m.timerTurn = s.Turn
	a := game.GameAction{Type: game.ActionEndTurn, PlayerID: s.Active().ID, Turn: s.Turn}
	m.mu.Lock()
	m.deadline = time.Now().Add(m.cfg.TurnTimeout)
	m.mu.Unlock()
	m.timer = time.AfterFunc(m.cfg.TurnTimeout, func() {
		logging.Info("turn timed out", logging.Fields{constants.LogFieldMatchID: m.id, constants.LogFieldTurn: a.Turn, constants.LogFieldPlayerID: a.PlayerID})
		m.enqueue(submission{action: a, origin: fromTimer})
	})
}

func (m *Match) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// enqueue is the blocking send used by timers and AI goroutines.
func (m *Match) enqueue(sub submission) {
	select {
	case m.queue <- sub:
	case <-m.ctx.Done():
	}
}

// driveAI asks the active seat's session for an action when it is AI
// controlled. After MaxAIActionsTurn actions in one turn the turn is ended
// instead.
func (m *Match) driveAI(s *game.GameState) {
	sess, ok := m.sessions[s.Active().ID]
	if !ok {
		return
	}
	if s.Turn == m.aiTurn && m.aiActions >= m.cfg.MaxAIActionsTurn {
		logging.Warn("ai action cap reached; ending turn", nil, logging.Fields{constants.LogFieldMatchID: m.id, constants.LogFieldTurn: s.Turn})
		m.aiActions = 0
		m.enqueueAsync(submission{action: game.GameAction{Type: game.ActionEndTurn, PlayerID: sess.PlayerID(), Turn: s.Turn}, origin: fromTimer})
		return
	}
	snap := s.Clone()
	go func() {
		a, err := sess.Decide(m.ctx, snap)
		if err != nil {
			if m.ctx.Err() == nil {
				logging.Warn("ai decision failed", err, logging.Fields{constants.LogFieldMatchID: m.id, constants.LogFieldTurn: snap.Turn})
			}
			return
		}
		if a.Turn == 0 {
			a.Turn = snap.Turn
		}
		m.enqueue(submission{action: a, origin: fromAI})
	}()
}

func (m *Match) enqueueAsync(sub submission) {
	go m.enqueue(sub)
}

func (m *Match) lastChange() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n := len(m.state.History); n > 0 {
		return m.state.History[n-1].Timestamp
	}
	return m.startedAt
}
