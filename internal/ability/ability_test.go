package ability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/elemental-cards/internal/game"
)

func caster() *game.Card {
	return &game.Card{ID: "void_witch", InstanceID: "c1", Name: "Void Witch", Element: game.Shadow, Attack: 3, Health: 4, MaxHealth: 4}
}

func TestEvaluateKinds(t *testing.T) {
	target := &game.Card{InstanceID: "t1", Name: "Tide Pup", Health: 2, MaxHealth: 2}
	cases := []struct {
		name  string
		def   game.AbilityDef
		check func(t *testing.T, res game.AbilityResult)
	}{
		{"damage", game.AbilityDef{ID: "bolt", Kind: game.AbilityDamage, Magnitude: 3}, func(t *testing.T, res game.AbilityResult) {
			assert.Equal(t, 3, res.Damage)
		}},
		{"heal", game.AbilityDef{ID: "mend", Kind: game.AbilityHeal, Magnitude: 2}, func(t *testing.T, res game.AbilityResult) {
			assert.Equal(t, 2, res.Healing)
		}},
		{"drain", game.AbilityDef{ID: "drain", Kind: game.AbilityDrain, Magnitude: 2}, func(t *testing.T, res game.AbilityResult) {
			assert.Equal(t, 2, res.Damage)
			assert.Equal(t, 2, res.SelfHealing)
		}},
		{"buff", game.AbilityDef{ID: "gust", Kind: game.AbilityBuff, Magnitude: 2}, func(t *testing.T, res game.AbilityResult) {
			assert.Equal(t, 2, res.AttackBoost)
		}},
		{"draw", game.AbilityDef{ID: "tailwind", Kind: game.AbilityDraw, Magnitude: 1}, func(t *testing.T, res game.AbilityResult) {
			assert.Equal(t, 1, res.Draw)
		}},
		{"status", game.AbilityDef{ID: "curse", Kind: game.AbilityStatus, Status: &game.StatusSpec{Type: game.StatusCurse, Duration: 2, Power: 1}}, func(t *testing.T, res game.AbilityResult) {
			require.Len(t, res.StatusEffects, 1)
			assert.Equal(t, "c1", res.StatusEffects[0].Source)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := *target
			res, err := Evaluate(tc.def, caster(), Target{Card: target}, nil)
			require.NoError(t, err)
			assert.True(t, res.Success)
			assert.NotEmpty(t, res.Message)
			tc.check(t, res)
			assert.Equal(t, before, *target, "evaluators must not mutate the target")
		})
	}
}

func TestEvaluateMalformed(t *testing.T) {
	cases := []game.AbilityDef{
		{ID: "x", Kind: "teleport", Magnitude: 1},
		{ID: "x", Kind: game.AbilityDamage},
		{ID: "x", Kind: game.AbilityStatus},
		{ID: "x", Kind: game.AbilityStatus, Status: &game.StatusSpec{Type: game.StatusBurn}},
	}
	for _, def := range cases {
		_, err := Evaluate(def, caster(), Target{}, nil)
		if !errors.Is(err, ErrMalformedAbility) {
			t.Fatalf("expected ErrMalformedAbility for %+v, got %v", def, err)
		}
	}
	_, err := Evaluate(game.AbilityDef{ID: "x", Kind: game.AbilityDamage, Magnitude: 1}, nil, Target{}, nil)
	assert.ErrorIs(t, err, ErrMalformedAbility)
}

func TestEvaluateRecoversPanics(t *testing.T) {
	evaluators["explode"] = func(game.AbilityDef, *game.Card, Target) (game.AbilityResult, error) {
		panic("boom")
	}
	defer delete(evaluators, "explode")

	_, err := Evaluate(game.AbilityDef{ID: "x", Kind: "explode"}, caster(), Target{}, nil)
	assert.ErrorIs(t, err, ErrMalformedAbility)
}

func TestDamageRespectsShield(t *testing.T) {
	c := &game.Card{Health: 5, MaxHealth: 5, StatusEffects: []game.StatusEffect{{Type: game.StatusShield, Duration: 2, Power: 2}}}
	assert.Equal(t, 1, DamageCard(c, 3))
	assert.Equal(t, 4, c.Health)
	assert.Equal(t, 0, DamageCard(c, 2))

	p := &game.Player{Health: 30, MaxHealth: 30}
	assert.Equal(t, 4, DamagePlayer(p, 4))
	assert.Equal(t, 26, p.Health)
}

func TestHealCapsAtMax(t *testing.T) {
	c := &game.Card{Health: 3, MaxHealth: 4}
	assert.Equal(t, 1, HealCard(c, 5))
	assert.Equal(t, 4, c.Health)

	p := &game.Player{Health: 30, MaxHealth: 30}
	assert.Equal(t, 0, HealPlayer(p, 5))
}

func TestAddStatusRefreshesSameSource(t *testing.T) {
	var effects []game.StatusEffect
	effects = AddStatus(effects, game.StatusEffect{Type: game.StatusBurn, Duration: 1, Power: 1, Source: "a"})
	effects = AddStatus(effects, game.StatusEffect{Type: game.StatusBurn, Duration: 3, Power: 1, Source: "a"})
	effects = AddStatus(effects, game.StatusEffect{Type: game.StatusBurn, Duration: 1, Power: 2, Source: "b"})
	require.Len(t, effects, 2)
	assert.Equal(t, 3, effects[0].Duration)
}

func TestApplyToCardFreezeStopsAttack(t *testing.T) {
	c := &game.Card{Health: 3, MaxHealth: 3, CanAttack: true}
	ApplyToCard(game.AbilityResult{StatusEffects: []game.StatusEffect{{Type: game.StatusFreeze, Duration: 1}}}, c)
	assert.False(t, c.CanAttack)
	assert.True(t, Disabled(c))
}
