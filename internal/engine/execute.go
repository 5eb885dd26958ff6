package engine

import (
	"fmt"

	"github.com/ericogr/elemental-cards/internal/game"
)

func (e *Engine) playCard(ac *actionContext, a game.GameAction) error {
	p := ac.self()
	i := p.HandIndex(a.CardID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, a.CardID)
	}
	card := p.Hand[i]
	if card.ManaCost > p.Mana {
		return fmt.Errorf("%w: %s costs %d, have %d", ErrInsufficientMana, card.Name, card.ManaCost, p.Mana)
	}
	spell := card.Type == game.Spell
	if !spell && len(p.Field) >= game.MaxFieldSize {
		return fmt.Errorf("%w: %d cards", ErrFieldFull, len(p.Field))
	}

	p.Mana -= card.ManaCost
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	card.CanAttack = false
	card.CanUseAbilities = false
	card.TurnsSincePlayed = 0
	ac.add(fmt.Sprintf("%s plays %s", p.Name, card.Name))

	if spell {
		if err := e.resolveOnPlay(ac, casting{card: &card}, a, true); err != nil {
			return err
		}
		p.Graveyard = append(p.Graveyard, card)
		return nil
	}

	p.Field = append(p.Field, card)
	placed := &p.Field[len(p.Field)-1]
	if err := e.resolveOnPlay(ac, casting{card: placed, onField: true}, a, false); err != nil {
		return err
	}
	ac.triggerCombo(placed)
	return nil
}

func (e *Engine) useAbility(ac *actionContext, a game.GameAction) error {
	p := ac.self()
	card := p.FieldCard(a.CardID)
	if card == nil {
		return fmt.Errorf("%w: %s", ErrCardNotOnField, a.CardID)
	}
	if !card.HasAbility(a.AbilityID) {
		return fmt.Errorf("%w: %s does not know %s", ErrAbilityUnavailable, card.Name, a.AbilityID)
	}
	if !card.CanUseAbilities {
		return fmt.Errorf("%w: %s cannot use abilities yet", ErrAbilityUnavailable, card.Name)
	}
	def, err := e.abilities.Ability(a.AbilityID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAbilityUnavailable, err)
	}
	if cd := card.Cooldowns[def.ID]; cd > 0 {
		return fmt.Errorf("%w: %s ready in %d turns", ErrAbilityOnCooldown, def.Name, cd)
	}
	if def.ManaCost > p.Mana {
		return fmt.Errorf("%w: %s costs %d, have %d", ErrInsufficientMana, def.Name, def.ManaCost, p.Mana)
	}
	c := casting{card: card, onField: true}
	target, err := ac.resolveTarget(def, c, a)
	if err != nil {
		return err
	}

	p.Mana -= def.ManaCost
	card.CanUseAbilities = false
	if !e.cast(ac, def, c, target) {
		p.Mana += def.ManaCost
		return nil
	}
	if def.Cooldown > 0 {
		if card.Cooldowns == nil {
			card.Cooldowns = map[string]int{}
		}
		card.Cooldowns[def.ID] = def.Cooldown
	}
	return nil
}
