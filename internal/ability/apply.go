package ability

import "github.com/ericogr/elemental-cards/internal/game"

// DamageCard reduces incoming damage by the card's shield and subtracts the
// rest from health. It returns the damage actually dealt.
func DamageCard(c *game.Card, amount int) int {
	amount -= c.StatusPower(game.StatusShield)
	if amount <= 0 {
		return 0
	}
	c.Health -= amount
	return amount
}

// DamagePlayer is DamageCard for a player's health pool.
func DamagePlayer(p *game.Player, amount int) int {
	amount -= p.StatusPower(game.StatusShield)
	if amount <= 0 {
		return 0
	}
	p.Health -= amount
	return amount
}

// HealCard restores health up to MaxHealth and returns the amount healed.
func HealCard(c *game.Card, amount int) int {
	return heal(&c.Health, c.MaxHealth, amount)
}

// HealPlayer restores player health up to MaxHealth.
func HealPlayer(p *game.Player, amount int) int {
	return heal(&p.Health, p.MaxHealth, amount)
}

func heal(health *int, maxHealth, amount int) int {
	if amount <= 0 || *health >= maxHealth {
		return 0
	}
	before := *health
	*health += amount
	if *health > maxHealth {
		*health = maxHealth
	}
	return *health - before
}

// AddStatus appends e, or refreshes an existing effect of the same type and
// source, keeping the longer duration and the higher power.
func AddStatus(effects []game.StatusEffect, e game.StatusEffect) []game.StatusEffect {
	for i := range effects {
		cur := &effects[i]
		if cur.Type != e.Type || cur.Source != e.Source || cur.Duration == 0 {
			continue
		}
		if e.Duration == game.PermanentDuration || (cur.Duration != game.PermanentDuration && e.Duration > cur.Duration) {
			cur.Duration = e.Duration
		}
		if e.Power > cur.Power {
			cur.Power = e.Power
		}
		return effects
	}
	return append(effects, e)
}

// ApplyToCard lands a result on a card. Freeze and stun take effect at once.
func ApplyToCard(res game.AbilityResult, c *game.Card) {
	if res.Damage > 0 {
		DamageCard(c, res.Damage)
	}
	if res.Healing > 0 {
		HealCard(c, res.Healing)
	}
	c.Attack += res.AttackBoost
	c.Defense += res.DefenseBoost
	for _, e := range res.StatusEffects {
		c.StatusEffects = AddStatus(c.StatusEffects, e)
	}
	if Disabled(c) {
		c.CanAttack = false
	}
}

// ApplyToPlayer lands a result on a player. Stat boosts have no player
// equivalent and are ignored.
func ApplyToPlayer(res game.AbilityResult, p *game.Player) {
	if res.Damage > 0 {
		DamagePlayer(p, res.Damage)
	}
	if res.Healing > 0 {
		HealPlayer(p, res.Healing)
	}
	for _, e := range res.StatusEffects {
		p.StatusEffects = AddStatus(p.StatusEffects, e)
	}
}

// Disabled reports whether a freeze or stun keeps the card from attacking.
func Disabled(c *game.Card) bool {
	return c.HasStatus(game.StatusFreeze) || c.HasStatus(game.StatusStun)
}

// Harmful reports whether a status type is meant for an enemy.
func Harmful(t game.StatusType) bool {
	switch t {
	case game.StatusBurn, game.StatusFreeze, game.StatusPoison, game.StatusStun, game.StatusCurse:
		return true
	}
	return false
}
