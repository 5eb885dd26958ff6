package engine

import (
	"fmt"

	"github.com/ericogr/elemental-cards/internal/ability"
	"github.com/ericogr/elemental-cards/internal/game"
)

// endTurn runs auto-combat for the ending player, hands the turn over and
// prepares the new active side.
func (e *Engine) endTurn(ac *actionContext) error {
	ending := ac.self()
	opponent := ac.enemy()
	for i := range ending.Field {
		c := &ending.Field[i]
		if !canAttack(c) {
			continue
		}
		ac.hitPlayer(c, opponent)
		c.CanAttack = false
	}
	ac.add(ending.Name + " ends the turn")

	s := ac.s
	s.CurrentPlayer = 1 - s.CurrentPlayer
	s.Turn++
	s.Phase = game.PhaseDraw

	p := s.Active()
	p.ManaCrystals = minInt(p.ManaCrystals+1, p.MaxMana)
	p.Mana = p.ManaCrystals
	if _, burned := drawCards(p, 1); burned > 0 {
		ac.add(fmt.Sprintf("%s's hand is full, a card burns", p.Name))
	}

	for i := range p.Field {
		c := &p.Field[i]
		c.TurnsSincePlayed++
		if c.TurnsSincePlayed >= 1 {
			c.CanAttack = true
			c.CanUseAbilities = true
		}
		tickCooldowns(c)
		// control effects bind this turn even when the tick expires them
		disabled := ability.Disabled(c)
		if rep := ability.TickCard(c); rep.Damage > 0 {
			ac.add(fmt.Sprintf("%s takes %d from effects", c.Name, rep.Damage))
		}
		if disabled || ability.Disabled(c) {
			c.CanAttack = false
		}
	}
	if rep := ability.TickPlayer(p); rep.Damage > 0 {
		ac.add(fmt.Sprintf("%s takes %d from effects", p.Name, rep.Damage))
	}
	tickGlobalEffects(s)
	s.Phase = game.PhaseMain
	return nil
}

func tickCooldowns(c *game.Card) {
	for id, cd := range c.Cooldowns {
		if cd <= 1 {
			delete(c.Cooldowns, id)
			continue
		}
		c.Cooldowns[id] = cd - 1
	}
}

// tickGlobalEffects counts arena effects down once per turn. Negative
// TurnsLeft never expires.
func tickGlobalEffects(s *game.GameState) {
	kept := s.GlobalEffects[:0]
	for _, g := range s.GlobalEffects {
		if g.TurnsLeft > 0 {
			g.TurnsLeft--
		}
		if g.TurnsLeft == 0 {
			continue
		}
		kept = append(kept, g)
	}
	s.GlobalEffects = kept
}
