package ability

import "github.com/ericogr/elemental-cards/internal/game"

// TickReport summarizes one status tick.
type TickReport struct {
	Damage  int
	Healing int
	Expired []game.StatusType
}

// Tick applies one turn of the effect list: burn and poison add damage, heal
// adds healing, finite durations go down by one and anything that reaches
// zero is purged. The input slice is not modified.
func Tick(effects []game.StatusEffect) ([]game.StatusEffect, TickReport) {
	var rep TickReport
	remaining := make([]game.StatusEffect, 0, len(effects))
	for _, e := range effects {
		if e.Duration == 0 {
			continue
		}
		switch e.Type {
		case game.StatusBurn, game.StatusPoison:
			rep.Damage += e.Power
		case game.StatusHeal:
			rep.Healing += e.Power
		}
		if e.Duration > 0 {
			e.Duration--
		}
		if e.Duration == 0 {
			rep.Expired = append(rep.Expired, e.Type)
			continue
		}
		remaining = append(remaining, e)
	}
	return remaining, rep
}

// TickCard ticks a card's effects and applies the report to its health.
// Damage over time ignores shields.
func TickCard(c *game.Card) TickReport {
	remaining, rep := Tick(c.StatusEffects)
	c.StatusEffects = remaining
	c.Health -= rep.Damage
	if c.Health > 0 {
		HealCard(c, rep.Healing)
	}
	return rep
}

// TickPlayer ticks a player's effects and applies the report.
func TickPlayer(p *game.Player) TickReport {
	remaining, rep := Tick(p.StatusEffects)
	p.StatusEffects = remaining
	p.Health -= rep.Damage
	if p.Health > 0 {
		HealPlayer(p, rep.Healing)
	}
	return rep
}
