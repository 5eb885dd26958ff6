package catalog

import (
	"time"

	"github.com/ericogr/elemental-cards/internal/game"
)

// Stage is the ordered evolution tier of a card lineage.
type Stage string

const (
	StageBase      Stage = "base"
	StageEvolved   Stage = "evolved"
	StageMega      Stage = "mega"
	StageLegendary Stage = "legendary"
	StageAwakened  Stage = "awakened"
)

// Stages lists the tiers in order; evolution may only advance one step.
var Stages = []Stage{StageBase, StageEvolved, StageMega, StageLegendary, StageAwakened}

// Index returns the position of s in Stages, or -1.
func (s Stage) Index() int {
	for i, x := range Stages {
		if x == s {
			return i
		}
	}
	return -1
}

// Next returns the stage that follows s and false when s is the last one.
func (s Stage) Next() (Stage, bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(Stages) {
		return s, false
	}
	return Stages[i+1], true
}

// StatBlock is a set of combat stat deltas.
type StatBlock struct {
	Attack  int `json:"attack" yaml:"attack" gorm:"column:attack"`
	Health  int `json:"health" yaml:"health" gorm:"column:health"`
	Defense int `json:"defense" yaml:"defense" gorm:"column:defense"`
	Speed   int `json:"speed" yaml:"speed" gorm:"column:speed"`
}

// Add returns the component-wise sum.
func (s StatBlock) Add(o StatBlock) StatBlock {
	return StatBlock{
		Attack:  s.Attack + o.Attack,
		Health:  s.Health + o.Health,
		Defense: s.Defense + o.Defense,
		Speed:   s.Speed + o.Speed,
	}
}

// RequirementType enumerates evolution requirement kinds.
type RequirementType string

const (
	RequireExperience RequirementType = "experience"
	RequireBattles    RequirementType = "battles"
	RequireVictories  RequirementType = "victories"
	RequireLevel      RequirementType = "level"
	RequireWinStreak  RequirementType = "win_streak"
	RequireMaterial   RequirementType = "material"
	RequireBranch     RequirementType = "branch"
)

// Requirement is one independent condition of an evolution path. CardID is
// used by material requirements, Trigger by branch requirements.
type Requirement struct {
	Type    RequirementType `json:"type" yaml:"type"`
	Value   int             `json:"value" yaml:"value"`
	CardID  string          `json:"card_id,omitempty" yaml:"card_id"`
	Trigger string          `json:"trigger,omitempty" yaml:"trigger"`
}

// Reward is what a successful evolution grants.
type Reward struct {
	ResultName    string    `json:"result_name,omitempty" yaml:"result_name"`
	StatBoosts    StatBlock `json:"stat_boosts" yaml:"stat_boosts"`
	NewAbilities  []string  `json:"new_abilities,omitempty" yaml:"new_abilities"`
	RarityUpgrade bool      `json:"rarity_upgrade" yaml:"rarity_upgrade"`
	ArtURL        string    `json:"art_url,omitempty" yaml:"art_url"`
	SoundURL      string    `json:"sound_url,omitempty" yaml:"sound_url"`
}

// Cost is paid when an evolution or fusion is performed.
type Cost struct {
	Currency         int           `json:"currency" yaml:"currency"`
	ConsumeMaterials bool          `json:"consume_materials" yaml:"consume_materials"`
	Duration         time.Duration `json:"duration" yaml:"duration"`
}

// EvolutionPath is static data describing one stage transition of a card.
type EvolutionPath struct {
	ID           string        `json:"id" yaml:"id"`
	CardID       string        `json:"card_id" yaml:"card_id"`
	From         Stage         `json:"from" yaml:"from"`
	To           Stage         `json:"to" yaml:"to"`
	Requirements []Requirement `json:"requirements" yaml:"requirements"`
	Reward       Reward        `json:"reward" yaml:"reward"`
	Cost         Cost          `json:"cost" yaml:"cost"`
}

// MaterialRequirement is a quantity of a given card consumed by fusion.
type MaterialRequirement struct {
	CardID   string `json:"card_id" yaml:"card_id"`
	Quantity int    `json:"quantity" yaml:"quantity"`
}

// FusionRecipe is static data describing a fusion.
type FusionRecipe struct {
	ID                    string                `json:"id" yaml:"id"`
	Name                  string                `json:"name" yaml:"name"`
	PrimaryCardID         string                `json:"primary_card_id" yaml:"primary_card_id"`
	MinPrimaryLevel       int                   `json:"min_primary_level" yaml:"min_primary_level"`
	Materials             []MaterialRequirement `json:"materials" yaml:"materials"`
	Catalysts             []string              `json:"catalysts,omitempty" yaml:"catalysts"`
	BaseSuccessRate       float64               `json:"base_success_rate" yaml:"base_success_rate"`
	InheritedStatsPercent int                   `json:"inherited_stats_percent" yaml:"inherited_stats_percent"`
	ResultName            string                `json:"result_name" yaml:"result_name"`
	ResultElement         game.Element          `json:"result_element,omitempty" yaml:"result_element"`
	ResultAbilities       []string              `json:"result_abilities,omitempty" yaml:"result_abilities"`
	ConsumesMaterials     bool                  `json:"consumes_materials" yaml:"consumes_materials"`
	Cost                  Cost                  `json:"cost" yaml:"cost"`
}

// MaterialIDs expands the material list into one id per required copy.
func (r FusionRecipe) MaterialIDs() []string {
	out := make([]string, 0, len(r.Materials))
	for _, m := range r.Materials {
		for i := 0; i < m.Quantity; i++ {
			out = append(out, m.CardID)
		}
	}
	return out
}
