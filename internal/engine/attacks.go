package engine

import (
	"fmt"

	"github.com/ericogr/elemental-cards/internal/ability"
	"github.com/ericogr/elemental-cards/internal/game"
)

// canAttack reports whether a field card may declare an attack now.
func canAttack(c *game.Card) bool {
	return c.Type == game.Creature && c.CanAttack && c.IsAlive() && !ability.Disabled(c) && AttackPower(c) > 0
}

func (e *Engine) attack(ac *actionContext, a game.GameAction) error {
	attacker := ac.self().FieldCard(a.CardID)
	if attacker == nil {
		return fmt.Errorf("%w: %s", ErrCardNotOnField, a.CardID)
	}
	if !canAttack(attacker) {
		return fmt.Errorf("%w: %s", ErrCannotAttack, attacker.Name)
	}
	switch {
	case a.TargetPlayer:
		ac.hitPlayer(attacker, ac.enemy())
	case a.TargetID != "":
		target := ac.enemy().FieldCard(a.TargetID)
		if target == nil || !target.IsAlive() {
			return fmt.Errorf("%w: %s", ErrInvalidTarget, a.TargetID)
		}
		ac.hitCard(attacker, target)
	default:
		return fmt.Errorf("%w: attack needs a card or the player", ErrTargetRequired)
	}
	attacker.CanAttack = false
	return nil
}

// CardAttackDamage is the damage attacker would deal to target after
// effectiveness, arena effects, defense and shield.
func CardAttackDamage(s *game.GameState, attacker, target *game.Card) int {
	dmg, _ := AttackDamage(s, attacker, target.Element)
	dmg -= DefensePower(target) + target.StatusPower(game.StatusShield)
	if dmg < 0 {
		dmg = 0
	}
	return dmg
}

func (ac *actionContext) hitCard(attacker, target *game.Card) {
	dmg, mu := AttackDamage(ac.s, attacker, target.Element)
	dmg -= DefensePower(target)
	if dmg < 0 {
		dmg = 0
	}
	dealt := ability.DamageCard(target, dmg)
	ac.add(fmt.Sprintf("%s attacks %s for %d damage (%s)", attacker.Name, target.Name, dealt, mu.Message))
}

// hitPlayer deals attack damage to a player; players count as neutral.
func (ac *actionContext) hitPlayer(attacker *game.Card, target *game.Player) int {
	dmg, _ := AttackDamage(ac.s, attacker, game.Neutral)
	dealt := ability.DamagePlayer(target, dmg)
	ac.add(fmt.Sprintf("%s hits %s for %d", attacker.Name, target.Name, dealt))
	return dealt
}
