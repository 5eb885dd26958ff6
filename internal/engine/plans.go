package engine

import (
	"github.com/ericogr/elemental-cards/internal/game"
)

// LegalActions enumerates the actions the active player can take right
// now. EndTurn is always last. Every action carries the current turn so it
// goes stale once the turn is over.
func (e *Engine) LegalActions(s *game.GameState) []game.GameAction {
	if s == nil || s.IsOver() {
		return nil
	}
	p := s.Active()
	base := game.GameAction{PlayerID: p.ID, Turn: s.Turn}
	out := make([]game.GameAction, 0, 16)

	for i := range p.Hand {
		c := &p.Hand[i]
		if c.ManaCost > p.Mana {
			continue
		}
		if c.Type != game.Spell && len(p.Field) >= game.MaxFieldSize {
			continue
		}
		a := base
		a.Type = game.ActionPlayCard
		a.CardID = c.InstanceID
		if c.Type != game.Spell {
			out = append(out, a)
			continue
		}
		def, targeted := e.firstTargeted(c)
		if !targeted {
			out = append(out, a)
			continue
		}
		out = append(out, withTargets(a, targetsFor(s, def.Side))...)
	}

	enemy := s.Opponent()
	for i := range p.Field {
		c := &p.Field[i]
		if !canAttack(c) {
			continue
		}
		a := base
		a.Type = game.ActionAttack
		a.CardID = c.InstanceID
		for j := range enemy.Field {
			if enemy.Field[j].IsAlive() {
				t := a
				t.TargetID = enemy.Field[j].InstanceID
				out = append(out, t)
			}
		}
		t := a
		t.TargetPlayer = true
		out = append(out, t)
	}

	for i := range p.Field {
		c := &p.Field[i]
		if !c.CanUseAbilities || !c.IsAlive() {
			continue
		}
		for _, id := range c.Abilities {
			def, err := e.abilities.Ability(id)
			if err != nil || c.Cooldowns[id] > 0 || def.ManaCost > p.Mana {
				continue
			}
			a := base
			a.Type = game.ActionUseAbility
			a.CardID = c.InstanceID
			a.AbilityID = id
			if !def.RequiresTarget {
				out = append(out, a)
				continue
			}
			out = append(out, withTargets(a, targetsFor(s, def.Side))...)
		}
	}

	end := base
	end.Type = game.ActionEndTurn
	return append(out, end)
}

func (e *Engine) firstTargeted(c *game.Card) (game.AbilityDef, bool) {
	for _, id := range c.Abilities {
		def, err := e.abilities.Ability(id)
		if err == nil && def.RequiresTarget {
			return def, true
		}
	}
	return game.AbilityDef{}, false
}

type target struct {
	cardID string
	player bool
}

// targetsFor lists the living cards on the given side plus its player.
func targetsFor(s *game.GameState, side game.AbilitySide) []target {
	p := s.Opponent()
	if side == game.SideSelf {
		p = s.Active()
	}
	out := make([]target, 0, len(p.Field)+1)
	for i := range p.Field {
		if p.Field[i].IsAlive() {
			out = append(out, target{cardID: p.Field[i].InstanceID})
		}
	}
	return append(out, target{player: true})
}

func withTargets(a game.GameAction, ts []target) []game.GameAction {
	out := make([]game.GameAction, 0, len(ts))
	for _, t := range ts {
		x := a
		x.TargetID = t.cardID
		x.TargetPlayer = t.player
		out = append(out, x)
	}
	return out
}
