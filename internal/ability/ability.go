// Package ability turns ability definitions into results. Evaluators are
// pure: they read the caster and target and describe an outcome, the
// engine decides where it lands.
package ability

import (
	"errors"
	"fmt"

	"github.com/ericogr/elemental-cards/internal/game"
)

// ErrMalformedAbility is returned for unknown kinds, bad parameters or an
// evaluator that panicked.
var ErrMalformedAbility = errors.New("malformed ability")

// Target is where an ability is aimed. At most one of Card and Player is set.
type Target struct {
	Card   *game.Card
	Player *game.Player
}

// Empty reports whether no target was chosen.
func (t Target) Empty() bool { return t.Card == nil && t.Player == nil }

func (t Target) name() string {
	switch {
	case t.Card != nil:
		return t.Card.Name
	case t.Player != nil:
		return t.Player.Name
	}
	return "the field"
}

type evaluator func(def game.AbilityDef, caster *game.Card, target Target) (game.AbilityResult, error)

var evaluators = map[game.AbilityKind]evaluator{
	game.AbilityDamage: evalDamage,
	game.AbilityHeal:   evalHeal,
	game.AbilityStatus: evalStatus,
	game.AbilityBuff:   evalBuff,
	game.AbilityDrain:  evalDrain,
	game.AbilityDraw:   evalDraw,
}

// Evaluate runs the evaluator registered for def.Kind. It never mutates its
// arguments.
func Evaluate(def game.AbilityDef, caster *game.Card, target Target, _ *game.GameState) (res game.AbilityResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = game.AbilityResult{}
			err = fmt.Errorf("%w: %s panicked: %v", ErrMalformedAbility, def.ID, r)
		}
	}()
	if caster == nil {
		return game.AbilityResult{}, fmt.Errorf("%w: %s has no caster", ErrMalformedAbility, def.ID)
	}
	eval, ok := evaluators[def.Kind]
	if !ok {
		return game.AbilityResult{}, fmt.Errorf("%w: %s has unknown kind '%s'", ErrMalformedAbility, def.ID, def.Kind)
	}
	return eval(def, caster, target)
}

func requireMagnitude(def game.AbilityDef) error {
	if def.Magnitude <= 0 {
		return fmt.Errorf("%w: %s needs a positive magnitude", ErrMalformedAbility, def.ID)
	}
	return nil
}

func evalDamage(def game.AbilityDef, caster *game.Card, target Target) (game.AbilityResult, error) {
	if err := requireMagnitude(def); err != nil {
		return game.AbilityResult{}, err
	}
	return game.AbilityResult{
		Success: true,
		Damage:  def.Magnitude,
		Message: fmt.Sprintf("%s casts %s on %s for %d damage", caster.Name, def.Name, target.name(), def.Magnitude),
	}, nil
}

func evalHeal(def game.AbilityDef, caster *game.Card, target Target) (game.AbilityResult, error) {
	if err := requireMagnitude(def); err != nil {
		return game.AbilityResult{}, err
	}
	return game.AbilityResult{
		Success: true,
		Healing: def.Magnitude,
		Message: fmt.Sprintf("%s casts %s, restoring %d to %s", caster.Name, def.Name, def.Magnitude, target.name()),
	}, nil
}

func evalStatus(def game.AbilityDef, caster *game.Card, target Target) (game.AbilityResult, error) {
	if def.Status == nil || def.Status.Type == "" || def.Status.Duration == 0 {
		return game.AbilityResult{}, fmt.Errorf("%w: %s has no usable status payload", ErrMalformedAbility, def.ID)
	}
	eff := game.StatusEffect{
		Type:     def.Status.Type,
		Duration: def.Status.Duration,
		Power:    def.Status.Power,
		Source:   caster.InstanceID,
	}
	return game.AbilityResult{
		Success:       true,
		StatusEffects: []game.StatusEffect{eff},
		Message:       fmt.Sprintf("%s casts %s: %s gains %s", caster.Name, def.Name, target.name(), eff.Type),
	}, nil
}

func evalBuff(def game.AbilityDef, caster *game.Card, target Target) (game.AbilityResult, error) {
	if err := requireMagnitude(def); err != nil {
		return game.AbilityResult{}, err
	}
	return game.AbilityResult{
		Success:     true,
		AttackBoost: def.Magnitude,
		Message:     fmt.Sprintf("%s casts %s: %s gains +%d attack", caster.Name, def.Name, target.name(), def.Magnitude),
	}, nil
}

func evalDrain(def game.AbilityDef, caster *game.Card, target Target) (game.AbilityResult, error) {
	if err := requireMagnitude(def); err != nil {
		return game.AbilityResult{}, err
	}
	return game.AbilityResult{
		Success:     true,
		Damage:      def.Magnitude,
		SelfHealing: def.Magnitude,
		Message:     fmt.Sprintf("%s drains %d from %s", caster.Name, def.Magnitude, target.name()),
	}, nil
}

func evalDraw(def game.AbilityDef, caster *game.Card, _ Target) (game.AbilityResult, error) {
	if err := requireMagnitude(def); err != nil {
		return game.AbilityResult{}, err
	}
	return game.AbilityResult{
		Success: true,
		Draw:    def.Magnitude,
		Message: fmt.Sprintf("%s casts %s and draws %d", caster.Name, def.Name, def.Magnitude),
	}, nil
}
