package ability

import (
	"fmt"

	"github.com/ericogr/elemental-cards/internal/game"
)

type comboKey struct{ a, b game.Element }

type combo struct {
	name   string
	result game.AbilityResult
}

// combos is closed: pairs that are missing here never combo.
var combos = map[comboKey]combo{
	{game.Fire, game.Air}: {"Wildfire", game.AbilityResult{
		Damage:        3,
		StatusEffects: []game.StatusEffect{{Type: game.StatusBurn, Duration: 2, Power: 1}},
	}},
	{game.Water, game.Earth}: {"Mudslide", game.AbilityResult{
		Healing:       3,
		StatusEffects: []game.StatusEffect{{Type: game.StatusFreeze, Duration: 1}},
	}},
	{game.Light, game.Light}: {"Radiance", game.AbilityResult{
		Healing:       5,
		StatusEffects: []game.StatusEffect{{Type: game.StatusBlessing, Duration: 2, Power: 1}},
	}},
	{game.Shadow, game.Shadow}: {"Eclipse", game.AbilityResult{
		Damage:        4,
		StatusEffects: []game.StatusEffect{{Type: game.StatusCurse, Duration: 2, Power: 1}},
	}},
}

// Combo looks up the elemental combo of two cards. Element order does not
// matter. Damage and harmful statuses are meant for the enemy, healing and
// blessings for the owner.
func Combo(a, b *game.Card) (game.AbilityResult, bool) {
	if a == nil || b == nil {
		return game.AbilityResult{}, false
	}
	c, ok := combos[comboKey{a.Element, b.Element}]
	if !ok {
		c, ok = combos[comboKey{b.Element, a.Element}]
	}
	if !ok {
		return game.AbilityResult{}, false
	}
	res := c.result
	res.Success = true
	res.StatusEffects = make([]game.StatusEffect, len(c.result.StatusEffects))
	for i, e := range c.result.StatusEffects {
		e.Source = a.InstanceID
		res.StatusEffects[i] = e
	}
	res.Message = fmt.Sprintf("%s and %s unleash %s", a.Name, b.Name, c.name)
	return res, true
}

// ComboName returns the combo name for two elements, or "".
func ComboName(a, b game.Element) string {
	if c, ok := combos[comboKey{a, b}]; ok {
		return c.name
	}
	if c, ok := combos[comboKey{b, a}]; ok {
		return c.name
	}
	return ""
}
