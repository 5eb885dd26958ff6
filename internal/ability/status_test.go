package ability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericogr/elemental-cards/internal/game"
)

func TestTickAppliesAndExpires(t *testing.T) {
	effects := []game.StatusEffect{
		{Type: game.StatusBurn, Duration: 1, Power: 2},
		{Type: game.StatusPoison, Duration: 3, Power: 1},
		{Type: game.StatusHeal, Duration: game.PermanentDuration, Power: 1},
		{Type: game.StatusShield, Duration: 0, Power: 5},
	}
	remaining, rep := Tick(effects)

	assert.Equal(t, 3, rep.Damage)
	assert.Equal(t, 1, rep.Healing)
	assert.Equal(t, []game.StatusType{game.StatusBurn}, rep.Expired)
	if assert.Len(t, remaining, 2) {
		assert.Equal(t, 2, remaining[0].Duration)
		assert.Equal(t, game.PermanentDuration, remaining[1].Duration)
	}
	assert.Equal(t, 1, effects[0].Duration, "input must not be modified")
}

func TestTickCardIgnoresShield(t *testing.T) {
	c := &game.Card{Health: 4, MaxHealth: 4, StatusEffects: []game.StatusEffect{
		{Type: game.StatusBurn, Duration: 2, Power: 1},
		{Type: game.StatusShield, Duration: 2, Power: 3},
	}}
	TickCard(c)
	assert.Equal(t, 3, c.Health)
	assert.Len(t, c.StatusEffects, 2)
	TickCard(c)
	assert.Equal(t, 2, c.Health)
	assert.Empty(t, c.StatusEffects)
}

func TestTickPlayer(t *testing.T) {
	p := &game.Player{Health: 10, MaxHealth: 30, StatusEffects: []game.StatusEffect{{Type: game.StatusPoison, Duration: 1, Power: 3}}}
	rep := TickPlayer(p)
	assert.Equal(t, 7, p.Health)
	assert.Equal(t, 3, rep.Damage)
	assert.Empty(t, p.StatusEffects)
}
