package engine

import (
	"errors"
	"fmt"

	"github.com/ericogr/elemental-cards/internal/ability"
	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/game"
	"github.com/ericogr/elemental-cards/internal/logging"
)

// casting bundles the caster of an ability with where it sits.
type casting struct {
	card    *game.Card
	onField bool
}

// resolveTarget picks the target of def for the acting player. Explicit
// targets must be on the side the ability is meant for. Without an explicit
// target, self abilities land on the caster (or the owner for spells) and
// enemy abilities land on the opposing player.
func (ac *actionContext) resolveTarget(def game.AbilityDef, c casting, a game.GameAction) (ability.Target, error) {
	side := ac.enemy()
	if def.Side == game.SideSelf {
		side = ac.self()
	}
	switch {
	case a.TargetPlayer:
		return ability.Target{Player: side}, nil
	case a.TargetID != "":
		card := side.FieldCard(a.TargetID)
		if card == nil || !card.IsAlive() {
			return ability.Target{}, fmt.Errorf("%w: %s is not a valid target for %s", ErrInvalidTarget, a.TargetID, def.ID)
		}
		return ability.Target{Card: card}, nil
	case def.RequiresTarget:
		return ability.Target{}, fmt.Errorf("%w: %s", ErrTargetRequired, def.ID)
	case def.Side == game.SideSelf && c.onField:
		return ability.Target{Card: c.card}, nil
	default:
		return ability.Target{Player: side}, nil
	}
}

// cast evaluates def and lands the result. A faulty ability is logged and
// turns into a no-op; it reports false in that case.
func (e *Engine) cast(ac *actionContext, def game.AbilityDef, c casting, target ability.Target) bool {
	res, err := ability.Evaluate(def, c.card, target, ac.s)
	if err != nil {
		fields := logging.Fields{
			constants.LogFieldMatchID:   ac.s.MatchID,
			constants.LogFieldPlayerID:  ac.self().ID,
			constants.LogFieldAbilityID: def.ID,
			constants.LogFieldCardID:    c.card.InstanceID,
		}
		switch {
		case ac.simulated:
			fields["error"] = err.Error()
			logging.Debug("ability fizzled in simulation", fields)
		case errors.Is(err, ability.ErrMalformedAbility):
			logging.Warn("ability fizzled", err, fields)
		default:
			logging.Error("ability evaluation failed", err, fields)
		}
		ac.add(fmt.Sprintf("%s fizzles", def.Name))
		return false
	}
	switch {
	case target.Card != nil:
		ability.ApplyToCard(res, target.Card)
	case target.Player != nil:
		ability.ApplyToPlayer(res, target.Player)
	}
	if res.SelfHealing > 0 {
		if c.onField {
			ability.HealCard(c.card, res.SelfHealing)
		} else {
			ability.HealPlayer(ac.self(), res.SelfHealing)
		}
	}
	if res.Draw > 0 {
		if _, burned := drawCards(ac.self(), res.Draw); burned > 0 {
			res.Message += fmt.Sprintf(" (%d burned)", burned)
		}
	}
	ac.add(res.Message)
	return true
}

// resolveOnPlay fires the on-play abilities of a card. Spells fire all of
// them. Permanents fire their untargeted abilities; immediate permanents
// also fire targeted ones when the action names a target. An untargeted
// self heal of a permanent restores its owner, since the card enters at
// full health.
func (e *Engine) resolveOnPlay(ac *actionContext, c casting, a game.GameAction, spell bool) error {
	type planned struct {
		def    game.AbilityDef
		target ability.Target
	}
	targeted := a.TargetID != "" || a.TargetPlayer
	immediate := c.card.HasKeyword(game.KeywordImmediate)
	plans := make([]planned, 0, len(c.card.Abilities))
	for _, id := range c.card.Abilities {
		def, err := e.abilities.Ability(id)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAbilityUnavailable, err)
		}
		if !spell && def.RequiresTarget && (!immediate || !targeted) {
			continue
		}
		target, err := ac.resolveTarget(def, c, a)
		if err != nil {
			return err
		}
		if !spell && !targeted && def.Side == game.SideSelf && def.Kind == game.AbilityHeal {
			target = ability.Target{Player: ac.self()}
		}
		plans = append(plans, planned{def: def, target: target})
	}
	for _, p := range plans {
		e.cast(ac, p.def, c, p.target)
	}
	return nil
}

// triggerCombo fires the first elemental combo between the newly played
// card and a friendly field card. Damage and harmful statuses go to the
// opposing side, healing and helpful statuses to the owner's side.
func (ac *actionContext) triggerCombo(played *game.Card) {
	for i := range ac.self().Field {
		partner := &ac.self().Field[i]
		if partner.InstanceID == played.InstanceID || !partner.IsAlive() {
			continue
		}
		res, ok := ability.Combo(played, partner)
		if !ok {
			continue
		}
		if res.Damage > 0 {
			ability.DamagePlayer(ac.enemy(), res.Damage)
		}
		if res.Healing > 0 {
			ability.HealPlayer(ac.self(), res.Healing)
		}
		for _, eff := range res.StatusEffects {
			side := ac.self()
			if ability.Harmful(eff.Type) {
				side = ac.enemy()
			}
			for j := range side.Field {
				ability.ApplyToCard(game.AbilityResult{StatusEffects: []game.StatusEffect{eff}}, &side.Field[j])
			}
		}
		ac.add(res.Message)
		return
	}
}
