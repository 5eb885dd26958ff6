package game

import "strings"

// Element is one of the seven typed damage/resistance categories.
type Element string

const (
	Fire    Element = "fire"
	Water   Element = "water"
	Earth   Element = "earth"
	Air     Element = "air"
	Light   Element = "light"
	Shadow  Element = "shadow"
	Neutral Element = "neutral"
)

// Elements lists every element in table order.
var Elements = []Element{Fire, Water, Earth, Air, Light, Shadow, Neutral}

// Valid reports whether e is one of the known elements.
func (e Element) Valid() bool {
	for _, x := range Elements {
		if x == e {
			return true
		}
	}
	return false
}

// Rarity is the ordinal power tier of a card (common..divine).
type Rarity int

const (
	Common Rarity = iota
	Uncommon
	Rare
	Epic
	Legendary
	Mythic
	Divine
)

var rarityNames = []string{"common", "uncommon", "rare", "epic", "legendary", "mythic", "divine"}

func (r Rarity) String() string {
	if r < Common || r > Divine {
		return "unknown"
	}
	return rarityNames[r]
}

// Next returns the tier directly above r. Divine is a ceiling.
func (r Rarity) Next() Rarity {
	if r >= Divine {
		return Divine
	}
	return r + 1
}

// ParseRarity converts a case-insensitive tier name into a Rarity.
func ParseRarity(s string) (Rarity, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range rarityNames {
		if n == s {
			return Rarity(i), true
		}
	}
	return Common, false
}

// MarshalText keeps rarities human readable in JSON and YAML.
func (r Rarity) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText accepts the names produced by MarshalText.
func (r *Rarity) UnmarshalText(b []byte) error {
	v, ok := ParseRarity(string(b))
	if !ok {
		return &UnknownValueError{Kind: "rarity", Value: string(b)}
	}
	*r = v
	return nil
}

// CardType is the card category.
type CardType string

const (
	Creature    CardType = "creature"
	Spell       CardType = "spell"
	Artifact    CardType = "artifact"
	Enchantment CardType = "enchantment"
)

// KeywordImmediate marks permanents whose abilities resolve on play.
const KeywordImmediate = "immediate"

// Card is both the immutable template (as stored in the catalog) and the
// mutable battle instance. Instances carry a unique InstanceID; templates
// leave it empty.
type Card struct {
	ID         string   `json:"id" yaml:"id"`
	InstanceID string   `json:"instance_id,omitempty" yaml:"-"`
	Name       string   `json:"name" yaml:"name"`
	Element    Element  `json:"element" yaml:"element"`
	Rarity     Rarity   `json:"rarity" yaml:"rarity"`
	Type       CardType `json:"type" yaml:"type"`
	ManaCost   int      `json:"mana_cost" yaml:"mana_cost"`
	Attack     int      `json:"attack" yaml:"attack"`
	Health     int      `json:"health" yaml:"health"`
	MaxHealth  int      `json:"max_health" yaml:"max_health"`
	Defense    int      `json:"defense" yaml:"defense"`
	Speed      int      `json:"speed" yaml:"speed"`
	Abilities  []string `json:"abilities" yaml:"abilities"`
	Keywords   []string `json:"keywords,omitempty" yaml:"keywords"`
	ArtURL     string   `json:"art_url,omitempty" yaml:"art_url"`
	SoundURL   string   `json:"sound_url,omitempty" yaml:"sound_url"`

	StatusEffects    []StatusEffect `json:"status_effects,omitempty" yaml:"-"`
	CanAttack        bool           `json:"can_attack" yaml:"-"`
	CanUseAbilities  bool           `json:"can_use_abilities" yaml:"-"`
	TurnsSincePlayed int            `json:"turns_since_played" yaml:"-"`
	// Cooldowns maps ability id -> turns until it can be used again.
	Cooldowns map[string]int `json:"cooldowns,omitempty" yaml:"-"`
}

// HasKeyword reports whether the card carries the keyword (case-insensitive).
func (c *Card) HasKeyword(k string) bool {
	for _, x := range c.Keywords {
		if strings.EqualFold(x, k) {
			return true
		}
	}
	return false
}

// HasAbility reports whether the ability id is on the card.
func (c *Card) HasAbility(id string) bool {
	for _, x := range c.Abilities {
		if x == id {
			return true
		}
	}
	return false
}

// IsAlive is false once health has dropped to zero or below.
func (c *Card) IsAlive() bool { return c.Health > 0 }

// StatusPower sums the power of active effects of the given type.
func (c *Card) StatusPower(t StatusType) int {
	return sumStatus(c.StatusEffects, t)
}

// HasStatus reports whether any effect of type t is active.
func (c *Card) HasStatus(t StatusType) bool {
	return hasStatus(c.StatusEffects, t)
}

// Clone returns a deep copy of the card.
func (c Card) Clone() Card {
	out := c
	out.Abilities = append([]string(nil), c.Abilities...)
	out.Keywords = append([]string(nil), c.Keywords...)
	out.StatusEffects = append([]StatusEffect(nil), c.StatusEffects...)
	if c.Cooldowns != nil {
		out.Cooldowns = make(map[string]int, len(c.Cooldowns))
		for k, v := range c.Cooldowns {
			out.Cooldowns[k] = v
		}
	}
	return out
}

// StatusType enumerates the status effects.
type StatusType string

const (
	StatusBurn     StatusType = "burn"
	StatusFreeze   StatusType = "freeze"
	StatusPoison   StatusType = "poison"
	StatusShield   StatusType = "shield"
	StatusRage     StatusType = "rage"
	StatusHeal     StatusType = "heal"
	StatusStun     StatusType = "stun"
	StatusBlessing StatusType = "blessing"
	StatusCurse    StatusType = "curse"
)

// PermanentDuration marks an effect that never expires.
const PermanentDuration = -1

// StatusEffect is a timed modifier attached to a card or player.
type StatusEffect struct {
	Type     StatusType `json:"type" yaml:"type"`
	Duration int        `json:"duration" yaml:"duration"`
	Power    int        `json:"power" yaml:"power"`
	Source   string     `json:"source,omitempty" yaml:"-"`
}

func sumStatus(effects []StatusEffect, t StatusType) int {
	total := 0
	for _, e := range effects {
		if e.Type == t && e.Duration != 0 {
			total += e.Power
		}
	}
	return total
}

func hasStatus(effects []StatusEffect, t StatusType) bool {
	for _, e := range effects {
		if e.Type == t && e.Duration != 0 {
			return true
		}
	}
	return false
}

// AbilityKind selects the evaluator used for an ability.
type AbilityKind string

const (
	AbilityDamage AbilityKind = "damage"
	AbilityHeal   AbilityKind = "heal"
	AbilityStatus AbilityKind = "status"
	AbilityBuff   AbilityKind = "buff"
	AbilityDrain  AbilityKind = "drain"
	AbilityDraw   AbilityKind = "draw"
)

// AbilitySide tells untargeted abilities where their effect lands.
type AbilitySide string

const (
	SideEnemy AbilitySide = "enemy"
	SideSelf  AbilitySide = "self"
)

// StatusSpec is the status-effect payload of an ability.
type StatusSpec struct {
	Type     StatusType `json:"type" yaml:"type"`
	Duration int        `json:"duration" yaml:"duration"`
	Power    int        `json:"power" yaml:"power"`
}

// AbilityDef is pure data: the evaluator for Kind interprets the parameters.
type AbilityDef struct {
	ID             string      `json:"id" yaml:"id"`
	Name           string      `json:"name" yaml:"name"`
	Description    string      `json:"description,omitempty" yaml:"description"`
	ManaCost       int         `json:"mana_cost" yaml:"mana_cost"`
	Cooldown       int         `json:"cooldown" yaml:"cooldown"`
	RequiresTarget bool        `json:"requires_target" yaml:"requires_target"`
	Kind           AbilityKind `json:"kind" yaml:"kind"`
	Magnitude      int         `json:"magnitude" yaml:"magnitude"`
	Side           AbilitySide `json:"side" yaml:"side"`
	Status         *StatusSpec `json:"status,omitempty" yaml:"status"`
}

// AbilityResult is what an evaluator returns; the engine applies it.
type AbilityResult struct {
	Success       bool           `json:"success"`
	Damage        int            `json:"damage,omitempty"`
	Healing       int            `json:"healing,omitempty"`
	SelfHealing   int            `json:"self_healing,omitempty"`
	AttackBoost   int            `json:"attack_boost,omitempty"`
	DefenseBoost  int            `json:"defense_boost,omitempty"`
	Draw          int            `json:"draw,omitempty"`
	StatusEffects []StatusEffect `json:"status_effects,omitempty"`
	Message       string         `json:"message"`
}

// UnknownValueError is returned when decoding an unknown enum value.
type UnknownValueError struct {
	Kind  string
	Value string
}

func (e *UnknownValueError) Error() string { return "unknown " + e.Kind + " '" + e.Value + "'" }
