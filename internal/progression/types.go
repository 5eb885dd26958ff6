// Package progression handles experience, leveling, evolution and fusion of
// owned cards. It is pure domain logic; persistence is behind Repository.
package progression

import (
	"errors"
	"time"

	"github.com/ericogr/elemental-cards/internal/catalog"
	"github.com/ericogr/elemental-cards/internal/game"
)

// MaxLevel is the level cap.
const MaxLevel = 100

var ErrNotFound = errors.New("progression not found")

// EvolutionRecord is one immutable entry of the evolution history.
type EvolutionRecord struct {
	PathID       string            `json:"path_id"`
	From         catalog.Stage     `json:"from"`
	To           catalog.Stage     `json:"to"`
	StatBoosts   catalog.StatBlock `json:"stat_boosts"`
	NewAbilities []string          `json:"new_abilities,omitempty"`
	Consumed     []string          `json:"consumed,omitempty"`
	InstanceID   string            `json:"instance_id"`
	At           time.Time         `json:"at"`
}

// CardProgression is the long-lived record of one owned card. The battle
// card is rebuilt from the catalog template plus these fields.
type CardProgression struct {
	ID            string        `json:"id" gorm:"primaryKey"`
	OwnerID       string        `json:"owner_id" gorm:"index"`
	CardID        string        `json:"card_id"`
	InstanceID    string        `json:"instance_id"`
	Stage         catalog.Stage `json:"stage"`
	Level         int           `json:"level"`
	Experience    int           `json:"experience"`
	Battles       int           `json:"battles"`
	Victories     int           `json:"victories"`
	WinStreak     int           `json:"win_streak"`
	BestWinStreak int           `json:"best_win_streak"`

	StatBonuses       catalog.StatBlock `json:"stat_bonuses" gorm:"embedded;embeddedPrefix:bonus_"`
	UnlockedAbilities []string          `json:"unlocked_abilities" gorm:"serializer:json"`
	Rarity            game.Rarity       `json:"rarity"`
	Name              string            `json:"name,omitempty"`
	Element           game.Element      `json:"element,omitempty"`
	ArtURL            string            `json:"art_url,omitempty"`
	SoundURL          string            `json:"sound_url,omitempty"`
	FusedFrom         string            `json:"fused_from,omitempty"`

	EvolutionHistory []EvolutionRecord `json:"evolution_history" gorm:"serializer:json"`
	SupersededBy     string            `json:"superseded_by,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Repository stores progression records.
type Repository interface {
	CreateProgression(p *CardProgression) error
	GetProgression(id string) (*CardProgression, error)
	UpdateProgression(p *CardProgression) error
	ListProgressions(ownerID string) ([]CardProgression, error)
}

// New starts a level 1, base stage progression for a freshly acquired card.
func New(id, ownerID string, template game.Card, instanceID string, now time.Time) *CardProgression {
	return &CardProgression{
		ID:                id,
		OwnerID:           ownerID,
		CardID:            template.ID,
		InstanceID:        instanceID,
		Stage:             catalog.StageBase,
		Level:             1,
		Rarity:            template.Rarity,
		UnlockedAbilities: []string{},
		EvolutionHistory:  []EvolutionRecord{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Active reports whether the record has not been replaced by a fusion.
func (p *CardProgression) Active() bool { return p.SupersededBy == "" }

// Materialize builds the current card from its catalog template.
func (p *CardProgression) Materialize(template game.Card) game.Card {
	c := template.Clone()
	c.InstanceID = p.InstanceID
	c.Attack += p.StatBonuses.Attack
	c.MaxHealth += p.StatBonuses.Health
	c.Health = c.MaxHealth
	c.Defense += p.StatBonuses.Defense
	c.Speed += p.StatBonuses.Speed
	c.Abilities = appendUnique(c.Abilities, p.UnlockedAbilities...)
	c.Rarity = p.Rarity
	if p.Name != "" {
		c.Name = p.Name
	}
	if p.Element != "" {
		c.Element = p.Element
	}
	if p.ArtURL != "" {
		c.ArtURL = p.ArtURL
	}
	if p.SoundURL != "" {
		c.SoundURL = p.SoundURL
	}
	return c
}

func appendUnique(list []string, items ...string) []string {
	for _, it := range items {
		dup := false
		for _, x := range list {
			if x == it {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, it)
		}
	}
	return list
}
