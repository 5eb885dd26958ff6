package match

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/elemental-cards/internal/ai"
	"github.com/ericogr/elemental-cards/internal/catalog"
	"github.com/ericogr/elemental-cards/internal/engine"
	"github.com/ericogr/elemental-cards/internal/game"
)

var testCatalog = catalog.MustDefault()

func seat(t *testing.T, id string, e game.Element) engine.PlayerSetup {
	t.Helper()
	deck, err := testCatalog.BuildDeck(testCatalog.StarterDeckIDs(e))
	require.NoError(t, err)
	return engine.PlayerSetup{ID: id, Name: id, Deck: deck}
}

func newManager(cfg Config, obs ...Observer) *Manager {
	return NewManager(engine.New(testCatalog), cfg, obs...)
}

// recorder collects updates for assertions.
type recorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *recorder) Observe(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recorder) all() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Update(nil), r.updates...)
}

func waitDone(t *testing.T, m *Match, d time.Duration) {
	t.Helper()
	select {
	case <-m.Done():
	case <-time.After(d):
		t.Fatalf("match %s did not stop within %s (turn %d)", m.ID(), d, m.State().Turn)
	}
}

func TestSubmitAppliesAndNotifies(t *testing.T) {
	rec := &recorder{}
	mg := newManager(Config{}, rec)
	m, err := mg.Create(Setup{MatchID: "m1", Players: [2]engine.PlayerSetup{seat(t, "ana", game.Fire), seat(t, "bo", game.Water)}, Seed: 3})
	require.NoError(t, err)
	defer mg.Shutdown()
	assert.Equal(t, StateActive, m.Status())

	ctx := context.Background()
	st, err := m.Submit(ctx, game.GameAction{Type: game.ActionEndTurn, PlayerID: "ana", Turn: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, st.Turn)
	assert.Equal(t, "bo", st.Active().ID)

	_, err = m.Submit(ctx, game.GameAction{Type: game.ActionEndTurn, PlayerID: "ana"})
	assert.True(t, errors.Is(err, engine.ErrNotYourTurn))
	assert.Equal(t, 2, m.State().Turn, "rejected action leaves state")

	// returned and observed states are copies
	st.Players[0].Health = 1
	assert.Equal(t, game.StartingHealth, m.State().Players[0].Health)

	ups := rec.all()
	require.Len(t, ups, 2)
	assert.Nil(t, ups[0].Record)
	require.NotNil(t, ups[1].Record)
	assert.Equal(t, game.ActionEndTurn, ups[1].Record.Action.Type)
	ups[1].State.Players[1].Hand = nil
	assert.NotEmpty(t, m.State().Players[1].Hand)
}

func TestTurnTimerEndsTurn(t *testing.T) {
	mg := newManager(Config{TurnTimeout: 30 * time.Millisecond})
	m, err := mg.Create(Setup{Players: [2]engine.PlayerSetup{seat(t, "ana", game.Fire), seat(t, "bo", game.Earth)}, Seed: 5})
	require.NoError(t, err)
	defer mg.Shutdown()
	assert.False(t, m.Deadline().IsZero())

	require.Eventually(t, func() bool { return m.State().Turn >= 3 }, 2*time.Second, 10*time.Millisecond)
	for _, r := range m.State().History[:2] {
		assert.Equal(t, game.ActionEndTurn, r.Action.Type)
	}
}

func TestHumanVersusAI(t *testing.T) {
	mg := newManager(Config{})
	m, err := mg.Create(Setup{
		Players: [2]engine.PlayerSetup{seat(t, "ana", game.Fire), seat(t, "bot", game.Shadow)},
		AI:      map[string]ai.Options{"bot": {Difficulty: ai.Master}},
		Seed:    11,
	})
	require.NoError(t, err)
	defer mg.Shutdown()

	_, err = m.Submit(context.Background(), game.GameAction{Type: game.ActionEndTurn, PlayerID: "bot"})
	assert.True(t, errors.Is(err, ErrAIControlled))

	_, err = m.Submit(context.Background(), game.GameAction{Type: game.ActionEndTurn, PlayerID: "ana", Turn: 1})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		s := m.State()
		return s.IsOver() || (s.Turn == 3 && s.Active().ID == "ana")
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, m.State().Players[1].IsAI)
}

func TestAIVersusAIFinishes(t *testing.T) {
	rec := &recorder{}
	mg := newManager(Config{}, rec)
	m, err := mg.Create(Setup{
		Players: [2]engine.PlayerSetup{seat(t, "red", game.Fire), seat(t, "blue", game.Water)},
		AI:      map[string]ai.Options{"red": {Personality: ai.Aggressive}, "blue": {Personality: ai.Defensive}},
		Seed:    21,
	})
	require.NoError(t, err)
	waitDone(t, m, 30*time.Second)

	assert.Equal(t, StateFinished, m.Status())
	s := m.State()
	assert.True(t, s.IsOver())
	assert.NotEmpty(t, s.EndReason)
	ups := rec.all()
	assert.Equal(t, StateFinished, ups[len(ups)-1].Lifecycle)
}

func TestForfeitFinishesMatch(t *testing.T) {
	mg := newManager(Config{})
	m, err := mg.Create(Setup{Players: [2]engine.PlayerSetup{seat(t, "ana", game.Light), seat(t, "bo", game.Air)}, Seed: 2})
	require.NoError(t, err)

	st, err := m.Forfeit(context.Background(), "bo")
	require.NoError(t, err)
	assert.Equal(t, "ana", st.Winner)
	assert.Equal(t, engine.EndForfeit, st.EndReason)
	waitDone(t, m, time.Second)
	assert.Equal(t, StateFinished, m.Status())

	_, err = m.Submit(context.Background(), game.GameAction{Type: game.ActionEndTurn, PlayerID: "ana"})
	assert.True(t, errors.Is(err, ErrNotActive))
}

func TestAbortCancelsThinkingAI(t *testing.T) {
	mg := newManager(Config{})
	m, err := mg.Create(Setup{
		Players: [2]engine.PlayerSetup{seat(t, "bot", game.Earth), seat(t, "ana", game.Fire)},
		AI:      map[string]ai.Options{"bot": {Difficulty: ai.Master, ThinkScale: 100}},
		Seed:    4,
	})
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, mg.Abort(m.ID()))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, StateAborted, m.Status())
	assert.Equal(t, 1, m.State().Turn)

	_, err = mg.Get(m.ID())
	assert.True(t, errors.Is(err, ErrMatchNotFound))
	assert.True(t, errors.Is(m.Abort(), ErrMatchClosed))
}

func TestPanickingObserverIsIsolated(t *testing.T) {
	rec := &recorder{}
	boom := ObserverFunc(func(Update) { panic("observer bug") })
	mg := newManager(Config{}, boom, rec)
	m, err := mg.Create(Setup{Players: [2]engine.PlayerSetup{seat(t, "ana", game.Fire), seat(t, "bo", game.Water)}, Seed: 8})
	require.NoError(t, err)
	defer mg.Shutdown()

	_, err = m.Submit(context.Background(), game.GameAction{Type: game.ActionEndTurn, PlayerID: "ana"})
	require.NoError(t, err)
	assert.Len(t, rec.all(), 2)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	mg := newManager(Config{})
	m, err := mg.Create(Setup{Players: [2]engine.PlayerSetup{seat(t, "ana", game.Fire), seat(t, "bo", game.Water)}, Seed: 8})
	require.NoError(t, err)
	defer mg.Shutdown()

	rec := &recorder{}
	cancel := m.Subscribe(rec)
	_, err = m.Submit(context.Background(), game.GameAction{Type: game.ActionEndTurn, PlayerID: "ana"})
	require.NoError(t, err)
	cancel()
	_, err = m.Submit(context.Background(), game.GameAction{Type: game.ActionEndTurn, PlayerID: "bo"})
	require.NoError(t, err)
	assert.Len(t, rec.all(), 1)
}

func TestManagerValidation(t *testing.T) {
	mg := newManager(Config{})
	defer mg.Shutdown()
	_, err := mg.Create(Setup{MatchID: "dup", Players: [2]engine.PlayerSetup{seat(t, "ana", game.Fire), seat(t, "bo", game.Water)}})
	require.NoError(t, err)
	_, err = mg.Create(Setup{MatchID: "dup", Players: [2]engine.PlayerSetup{seat(t, "ana", game.Fire), seat(t, "bo", game.Water)}})
	assert.Error(t, err)

	_, err = mg.Create(Setup{Players: [2]engine.PlayerSetup{seat(t, "ana", game.Fire), seat(t, "bo", game.Water)}, AI: map[string]ai.Options{"ghost": {}}})
	assert.True(t, errors.Is(err, engine.ErrUnknownPlayer))

	_, err = mg.Get("nope")
	assert.True(t, errors.Is(err, ErrMatchNotFound))
}

func TestPruneForgetsStoppedMatches(t *testing.T) {
	mg := newManager(Config{})
	defer mg.Shutdown()
	done, err := mg.Create(Setup{MatchID: "done", Players: [2]engine.PlayerSetup{seat(t, "ana", game.Fire), seat(t, "bo", game.Water)}})
	require.NoError(t, err)
	_, err = mg.Create(Setup{MatchID: "live", Players: [2]engine.PlayerSetup{seat(t, "cy", game.Earth), seat(t, "di", game.Air)}})
	require.NoError(t, err)

	_, err = done.Forfeit(context.Background(), "bo")
	require.NoError(t, err)
	waitDone(t, done, time.Second)

	assert.Equal(t, 0, mg.Prune(time.Hour), "recently stopped matches are kept")
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, mg.Prune(time.Millisecond))

	_, err = mg.Get("done")
	assert.True(t, errors.Is(err, ErrMatchNotFound))
	_, err = mg.Get("live")
	assert.NoError(t, err)
}
