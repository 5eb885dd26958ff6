package progression

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ericogr/elemental-cards/internal/catalog"
	"github.com/ericogr/elemental-cards/internal/game"
)

var (
	ErrWrongPrimary       = errors.New("primary card does not match recipe")
	ErrPrimaryLevelTooLow = errors.New("primary card level too low")
	ErrMissingMaterials   = errors.New("missing fusion materials")
)

// CatalystBonus is added to the success rate per matching catalyst.
const CatalystBonus = 0.10

// FailurePolicy decides what happens to materials when a fusion fails.
// The primary card is always kept.
type FailurePolicy string

const (
	MaterialsLost     FailurePolicy = "materials_lost"
	MaterialsReturned FailurePolicy = "materials_returned"
	HalfRefund        FailurePolicy = "half_refund"
)

// ParseFailurePolicy validates a policy name; empty means MaterialsLost.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case "":
		return MaterialsLost, nil
	case MaterialsLost, MaterialsReturned, HalfRefund:
		return p, nil
	}
	return "", fmt.Errorf("unknown fusion failure policy '%s'", s)
}

// FusionRequest bundles the inputs of one fusion attempt. PrimaryCard is
// the materialized card of Primary.
type FusionRequest struct {
	Recipe      catalog.FusionRecipe
	Primary     *CardProgression
	PrimaryCard game.Card
	Materials   []string
	Catalysts   []string
}

// FusionOutcome reports a fusion roll. Consumed and Refunded list material
// card ids.
type FusionOutcome struct {
	Success  bool       `json:"success"`
	Rate     float64    `json:"rate"`
	Roll     float64    `json:"roll"`
	Result   *game.Card `json:"result,omitempty"`
	Consumed []string   `json:"consumed"`
	Refunded []string   `json:"refunded"`
}

// FusionRate is the base rate plus CatalystBonus for every distinct
// catalyst the recipe accepts, clamped to [0,1].
func FusionRate(recipe catalog.FusionRecipe, catalysts []string) float64 {
	rate := recipe.BaseSuccessRate
	seen := map[string]bool{}
	for _, c := range catalysts {
		if seen[c] {
			continue
		}
		seen[c] = true
		for _, accepted := range recipe.Catalysts {
			if c == accepted {
				rate += CatalystBonus
				break
			}
		}
	}
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}

// Fuse validates the request, rolls once with rng and applies policy on
// failure. Extra materials beyond the recipe are never consumed.
func Fuse(req FusionRequest, rng *rand.Rand, policy FailurePolicy) (FusionOutcome, error) {
	r := req.Recipe
	if req.Primary == nil || req.Primary.CardID != r.PrimaryCardID {
		return FusionOutcome{}, fmt.Errorf("%w: recipe %s needs %s", ErrWrongPrimary, r.ID, r.PrimaryCardID)
	}
	if !req.Primary.Active() {
		return FusionOutcome{}, fmt.Errorf("%w: %s", ErrSuperseded, req.Primary.ID)
	}
	if req.Primary.Level < r.MinPrimaryLevel {
		return FusionOutcome{}, fmt.Errorf("%w: level %d, need %d", ErrPrimaryLevelTooLow, req.Primary.Level, r.MinPrimaryLevel)
	}
	offered := map[string]int{}
	for _, m := range req.Materials {
		offered[m]++
	}
	for _, m := range r.Materials {
		if offered[m.CardID] < m.Quantity {
			return FusionOutcome{}, fmt.Errorf("%w: %s needs %d, got %d", ErrMissingMaterials, m.CardID, m.Quantity, offered[m.CardID])
		}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	required := r.MaterialIDs()
	out := FusionOutcome{Rate: FusionRate(r, req.Catalysts), Roll: rng.Float64(), Consumed: []string{}, Refunded: []string{}}
	out.Success = out.Roll < out.Rate
	if out.Success {
		if r.ConsumesMaterials {
			out.Consumed = required
		}
		res := fusedCard(req.PrimaryCard, r)
		out.Result = &res
		return out, nil
	}

	switch policy {
	case MaterialsReturned:
		out.Refunded = required
	case HalfRefund:
		half := len(required) / 2
		out.Refunded = required[:half]
		out.Consumed = required[half:]
	default:
		out.Consumed = required
	}
	return out, nil
}

// fusedCard scales the primary's stats by the inherited percentage and
// raises rarity one tier.
func fusedCard(primary game.Card, r catalog.FusionRecipe) game.Card {
	scale := func(v int) int { return v * r.InheritedStatsPercent / 100 }
	c := primary.Clone()
	c.InstanceID = uuid.NewString()
	c.Attack = scale(c.Attack)
	c.MaxHealth = scale(c.MaxHealth)
	c.Health = c.MaxHealth
	c.Defense = scale(c.Defense)
	c.Speed = scale(c.Speed)
	c.Rarity = c.Rarity.Next()
	if r.ResultName != "" {
		c.Name = r.ResultName
	}
	if r.ResultElement != "" {
		c.Element = r.ResultElement
	}
	c.Abilities = appendUnique(c.Abilities, r.ResultAbilities...)
	c.StatusEffects = nil
	c.Cooldowns = nil
	return c
}

// FusedProgression creates the record of a fusion result. Bonuses are the
// difference between the result and the catalog template so Materialize
// reproduces the fused card.
func FusedProgression(id string, primary *CardProgression, template, result game.Card, recipeID string, now time.Time) *CardProgression {
	p := New(id, primary.OwnerID, template, result.InstanceID, now)
	p.Stage = primary.Stage
	p.StatBonuses = catalog.StatBlock{
		Attack:  result.Attack - template.Attack,
		Health:  result.MaxHealth - template.MaxHealth,
		Defense: result.Defense - template.Defense,
		Speed:   result.Speed - template.Speed,
	}
	p.UnlockedAbilities = appendUnique([]string{}, result.Abilities...)
	p.Rarity = result.Rarity
	p.Name = result.Name
	p.Element = result.Element
	p.ArtURL = primary.ArtURL
	p.SoundURL = primary.SoundURL
	p.FusedFrom = recipeID
	return p
}
