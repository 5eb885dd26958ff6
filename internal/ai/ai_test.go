package ai

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ericogr/elemental-cards/internal/catalog"
	"github.com/ericogr/elemental-cards/internal/engine"
	"github.com/ericogr/elemental-cards/internal/game"
	"github.com/ericogr/elemental-cards/internal/logging"
)

var (
	testCatalog = catalog.MustDefault()
	testEngine  = engine.New(testCatalog)
)

func zero() *float64 { v := 0.0; return &v }

func newMatch(t *testing.T, seed int64) *game.GameState {
	t.Helper()
	d1, err := testCatalog.BuildDeck(testCatalog.StarterDeckIDs(game.Fire))
	require.NoError(t, err)
	d2, err := testCatalog.BuildDeck(testCatalog.StarterDeckIDs(game.Shadow))
	require.NoError(t, err)
	s, err := testEngine.NewGameState("m1",
		engine.PlayerSetup{ID: "ai", Name: "Bot", IsAI: true, Deck: d1},
		engine.PlayerSetup{ID: "human", Name: "Ana", Deck: d2},
		rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return s
}

func card(t *testing.T, id, instanceID string) game.Card {
	t.Helper()
	c, err := testCatalog.Card(id)
	require.NoError(t, err)
	c.InstanceID = instanceID
	c.CanAttack = true
	c.CanUseAbilities = true
	c.TurnsSincePlayed = 1
	return c
}

func TestDecideWithoutMistakesPicksTopRankedAction(t *testing.T) {
	sess := NewSession("m1", "ai", testEngine, Options{Difficulty: Master, Personality: Balanced, MistakeRate: zero()})
	state := newMatch(t, 1)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if state.IsOver() {
			state = newMatch(t, int64(i))
		}
		if state.Active().ID != "ai" {
			var err error
			state, err = testEngine.Apply(state, game.GameAction{Type: game.ActionEndTurn, PlayerID: "human"})
			require.NoError(t, err)
			if state.IsOver() {
				state = newMatch(t, int64(i))
			}
		}
		ranked := sess.Rank(state)
		require.NotEmpty(t, ranked)
		got, err := sess.Decide(ctx, state)
		require.NoError(t, err)
		assert.Equal(t, ranked[0].Action, got, "decision %d", i)

		state, err = testEngine.Apply(state, got)
		require.NoError(t, err, "decision %d must be legal", i)
	}
}

func TestMistakesPickFromRunnersUp(t *testing.T) {
	one := 1.0
	sess := NewSession("m1", "ai", testEngine, Options{Personality: Balanced, MistakeRate: &one, Rand: rand.New(rand.NewSource(3))})
	state := newMatch(t, 2)
	state.Players[0].Field = []game.Card{card(t, "fire_sprite", "s1"), card(t, "gale_hawk", "h1")}
	state.Players[1].Field = []game.Card{card(t, "tide_pup", "p1")}

	for i := 0; i < 20; i++ {
		ranked := sess.Rank(state)
		require.Greater(t, len(ranked), 4)
		got, err := sess.Decide(context.Background(), state)
		require.NoError(t, err)
		assert.NotEqual(t, ranked[0].Action, got)
		found := false
		for _, c := range ranked[1:4] {
			if c.Action == got {
				found = true
			}
		}
		assert.True(t, found, "mistake must come from ranks 2-4")
		_, err = testEngine.Apply(state, got)
		assert.NoError(t, err)
	}
}

func TestLethalAttackRanksFirst(t *testing.T) {
	sess := NewSession("m1", "ai", testEngine, Options{Personality: Defensive, MistakeRate: zero()})
	state := newMatch(t, 4)
	state.Players[0].Field = []game.Card{card(t, "inferno_drake", "drake")}
	state.Players[1].Health = 5

	ranked := sess.Rank(state)
	require.NotEmpty(t, ranked)
	best := ranked[0].Action
	assert.Equal(t, game.ActionAttack, best.Type)
	assert.True(t, best.TargetPlayer)
}

type panickyRules struct{}

func (panickyRules) LegalActions(*game.GameState) []game.GameAction { panic("broken rules") }
func (panickyRules) Simulate(s *game.GameState, _ game.GameAction) (*game.GameState, error) {
	return s, nil
}

type emptyRules struct{}

func (emptyRules) LegalActions(*game.GameState) []game.GameAction { return nil }
func (emptyRules) Simulate(s *game.GameState, _ game.GameAction) (*game.GameState, error) {
	return s, errors.New("nope")
}

func TestDecideFallsBackToEndTurn(t *testing.T) {
	state := newMatch(t, 5)
	for _, rules := range []Rules{panickyRules{}, emptyRules{}} {
		sess := NewSession("m1", "ai", rules, Options{MistakeRate: zero()})
		got, err := sess.Decide(context.Background(), state)
		require.NoError(t, err)
		assert.Equal(t, game.ActionEndTurn, got.Type)
		assert.Equal(t, "ai", got.PlayerID)
		assert.Equal(t, state.Turn, got.Turn)
	}
}

func TestDecideHonorsCancellation(t *testing.T) {
	sess := NewSession("m1", "ai", testEngine, Options{Difficulty: Master, ThinkScale: 1})
	require.Equal(t, 3*time.Second, sess.ThinkTime())
	state := newMatch(t, 6)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	_, err := sess.Decide(ctx, state)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDecideRejectsOtherPlayersTurn(t *testing.T) {
	sess := NewSession("m1", "human", testEngine, Options{})
	_, err := sess.Decide(context.Background(), newMatch(t, 7))
	assert.ErrorIs(t, err, ErrNotMyTurn)
}

func TestNewSessionDefaults(t *testing.T) {
	sess := NewSession("m1", "ai", testEngine, Options{Difficulty: "godlike", Personality: "moody", ThinkScale: 0.5})
	assert.Equal(t, Adept, sess.difficulty)
	assert.Equal(t, personalities[Balanced], sess.Weights())
	assert.Equal(t, 750*time.Millisecond, sess.ThinkTime())
	assert.InDelta(t, 0.10, sess.mistakeRate, 1e-9)

	_, err := ParseDifficulty("godlike")
	assert.Error(t, err)
	p, err := ParsePersonality("chaotic")
	require.NoError(t, err)
	assert.Equal(t, Chaotic, p)
}

func TestLearningIsBounded(t *testing.T) {
	sess := NewSession("m1", "ai", testEngine, Options{Personality: Aggressive})
	state := newMatch(t, 8)
	state.Players[1].Health = 10

	for i := 0; i < 100; i++ {
		sess.learn(state)
	}
	w := sess.Weights()
	assert.Equal(t, maxWeight, w.Aggression)
	assert.Equal(t, minWeight, w.Defense)

	state.Players[1].Health = 30
	state.Players[0].Health = 10
	sess.learn(state)
	assert.InDelta(t, maxWeight-learnStep, sess.Weights().Aggression, 1e-9)
}

// meteorEmber serves the catalog with ember broken beyond evaluation.
type meteorEmber struct{ engine.AbilitySource }

func (m meteorEmber) Ability(id string) (game.AbilityDef, error) {
	def, err := m.AbilitySource.Ability(id)
	if id == "ember" {
		def.Kind = "meteor"
	}
	return def, err
}

func TestRankingLooksAheadQuietly(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.SetLogger(zap.New(core))
	defer logging.SetLogger(nil)

	sess := NewSession("m1", "ai", engine.New(meteorEmber{testCatalog}), Options{Personality: Balanced, MistakeRate: zero()})
	state := newMatch(t, 6)
	state.Players[0].Mana = 3
	state.Players[0].Field = []game.Card{card(t, "fire_sprite", "s1")}
	state.Players[1].Field = []game.Card{card(t, "stone_golem", "g1")}

	ranked := sess.Rank(state)
	require.NotEmpty(t, ranked)
	uses := 0
	for _, c := range ranked {
		if c.Action.Type == game.ActionUseAbility {
			uses++
		}
	}
	require.Positive(t, uses, "ember candidates are still ranked")
	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 0 {
		t.Fatalf("lookahead logged %d warnings", n)
	}
	assert.Equal(t, uses, logs.FilterMessage("ability fizzled in simulation").Len())
}
