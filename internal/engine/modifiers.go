package engine

import (
	"math"

	"github.com/ericogr/elemental-cards/internal/game"
)

// --- Modifier helpers --------------------------------------------------

// AttackPower is attack plus rage minus curse, never negative.
func AttackPower(c *game.Card) int {
	a := c.Attack + c.StatusPower(game.StatusRage) - c.StatusPower(game.StatusCurse)
	if a < 0 {
		a = 0
	}
	return a
}

// DefensePower is defense plus blessing, never negative.
func DefensePower(c *game.Card) int {
	d := c.Defense + c.StatusPower(game.StatusBlessing)
	if d < 0 {
		d = 0
	}
	return d
}

// globalMultiplier multiplies every active arena effect that matches the
// attacking element. An empty effect element matches everything.
func globalMultiplier(s *game.GameState, e game.Element) float64 {
	m := 1.0
	for _, g := range s.GlobalEffects {
		if g.TurnsLeft == 0 || g.Multiplier <= 0 {
			continue
		}
		if g.Element == "" || g.Element == e {
			m *= g.Multiplier
		}
	}
	return m
}

// AttackDamage is the raw damage of attacker against an element before the
// defender's defense and shield are subtracted.
func AttackDamage(s *game.GameState, attacker *game.Card, defender game.Element) (int, Matchup) {
	mu := Effectiveness(attacker.Element, defender)
	dmg := math.Floor(float64(AttackPower(attacker)) * mu.Multiplier * globalMultiplier(s, attacker.Element))
	return int(dmg), mu
}
