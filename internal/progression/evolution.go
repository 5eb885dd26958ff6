package progression

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericogr/elemental-cards/internal/catalog"
	"github.com/ericogr/elemental-cards/internal/game"
)

var (
	ErrRequirementsNotMet = errors.New("evolution requirements not met")
	ErrSuperseded         = errors.New("progression was superseded")
)

// Inventory counts spare owned copies by card template id. Materials are
// taken from it.
type Inventory map[string]int

// BranchHook decides whether a named special condition holds for p.
type BranchHook func(p *CardProgression) bool

// BranchHooks is a registry of named predicates used by branch
// requirements. A trigger with no registered hook is never satisfied.
type BranchHooks struct {
	mu    sync.RWMutex
	hooks map[string]BranchHook
}

// NewBranchHooks returns an empty registry.
func NewBranchHooks() *BranchHooks {
	return &BranchHooks{hooks: map[string]BranchHook{}}
}

// Register adds or replaces the hook for a trigger name.
func (b *BranchHooks) Register(trigger string, hook BranchHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hooks[trigger] = hook
}

// Satisfied evaluates the hook for trigger. Nil registries and unknown
// triggers are unsatisfied.
func (b *BranchHooks) Satisfied(trigger string, p *CardProgression) bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	hook, ok := b.hooks[trigger]
	b.mu.RUnlock()
	return ok && hook != nil && hook(p)
}

// Missing is one unsatisfied requirement.
type Missing struct {
	Requirement catalog.Requirement `json:"requirement"`
	Have        int                 `json:"have"`
	Detail      string              `json:"detail"`
}

// EvolutionCheck is the result of CheckEvolution.
type EvolutionCheck struct {
	CanEvolve bool      `json:"can_evolve"`
	Missing   []Missing `json:"missing,omitempty"`
}

// CheckEvolution evaluates every requirement of path independently and
// reports all of the ones that are not met.
func CheckEvolution(p *CardProgression, path catalog.EvolutionPath, inv Inventory, hooks *BranchHooks) EvolutionCheck {
	var missing []Missing
	if p.CardID != path.CardID {
		missing = append(missing, Missing{Detail: fmt.Sprintf("path is for %s, not %s", path.CardID, p.CardID)})
	}
	if next, ok := p.Stage.Next(); p.Stage != path.From || !ok || next != path.To {
		missing = append(missing, Missing{Detail: fmt.Sprintf("card is %s, path goes %s -> %s", p.Stage, path.From, path.To)})
	}
	if !p.Active() {
		missing = append(missing, Missing{Detail: "card was superseded by " + p.SupersededBy})
	}
	needs := materialNeeds(path)
	for _, req := range path.Requirements {
		have, ok := requirementMet(p, req, inv, needs, hooks)
		if !ok {
			missing = append(missing, Missing{Requirement: req, Have: have, Detail: describe(req, have, needs)})
		}
	}
	return EvolutionCheck{CanEvolve: len(missing) == 0, Missing: missing}
}

// materialNeeds totals the material requirements of path per card, so two
// requirements on the same card draw from one stock.
func materialNeeds(path catalog.EvolutionPath) map[string]int {
	needs := map[string]int{}
	for _, req := range path.Requirements {
		if req.Type == catalog.RequireMaterial {
			needs[req.CardID] += materialQuantity(req)
		}
	}
	return needs
}

func requirementMet(p *CardProgression, req catalog.Requirement, inv Inventory, needs map[string]int, hooks *BranchHooks) (int, bool) {
	switch req.Type {
	case catalog.RequireExperience:
		return p.Experience, p.Experience >= req.Value
	case catalog.RequireBattles:
		return p.Battles, p.Battles >= req.Value
	case catalog.RequireVictories:
		return p.Victories, p.Victories >= req.Value
	case catalog.RequireLevel:
		return p.Level, p.Level >= req.Value
	case catalog.RequireWinStreak:
		return p.WinStreak, p.WinStreak >= req.Value
	case catalog.RequireMaterial:
		have := inv[req.CardID]
		return have, have >= needs[req.CardID]
	case catalog.RequireBranch:
		if hooks.Satisfied(req.Trigger, p) {
			return 1, true
		}
		return 0, false
	}
	return 0, false
}

func materialQuantity(req catalog.Requirement) int {
	if req.Value < 1 {
		return 1
	}
	return req.Value
}

func describe(req catalog.Requirement, have int, needs map[string]int) string {
	switch req.Type {
	case catalog.RequireMaterial:
		return fmt.Sprintf("needs %d x %s, have %d", needs[req.CardID], req.CardID, have)
	case catalog.RequireBranch:
		return fmt.Sprintf("condition '%s' not met", req.Trigger)
	}
	return fmt.Sprintf("needs %s %d, have %d", req.Type, req.Value, have)
}

// Evolve advances p along path and returns the new battle card built from
// template, together with the history entry. Materials are removed from inv
// when the path consumes them. p is only modified on success.
func Evolve(p *CardProgression, template game.Card, path catalog.EvolutionPath, inv Inventory, hooks *BranchHooks, now time.Time) (game.Card, EvolutionRecord, error) {
	check := CheckEvolution(p, path, inv, hooks)
	if !check.CanEvolve {
		details := make([]string, 0, len(check.Missing))
		for _, m := range check.Missing {
			details = append(details, m.Detail)
		}
		return game.Card{}, EvolutionRecord{}, fmt.Errorf("%w: %s", ErrRequirementsNotMet, strings.Join(details, "; "))
	}

	rec := EvolutionRecord{
		PathID:       path.ID,
		From:         path.From,
		To:           path.To,
		StatBoosts:   path.Reward.StatBoosts,
		NewAbilities: append([]string(nil), path.Reward.NewAbilities...),
		InstanceID:   uuid.NewString(),
		At:           now,
	}
	if path.Cost.ConsumeMaterials {
		for _, req := range path.Requirements {
			if req.Type != catalog.RequireMaterial {
				continue
			}
			n := materialQuantity(req)
			inv[req.CardID] -= n
			for i := 0; i < n; i++ {
				rec.Consumed = append(rec.Consumed, req.CardID)
			}
		}
	}

	p.Stage = path.To
	p.StatBonuses = p.StatBonuses.Add(path.Reward.StatBoosts)
	p.UnlockedAbilities = appendUnique(p.UnlockedAbilities, path.Reward.NewAbilities...)
	if path.Reward.RarityUpgrade {
		p.Rarity = p.Rarity.Next()
	}
	if path.Reward.ResultName != "" {
		p.Name = path.Reward.ResultName
	}
	if path.Reward.ArtURL != "" {
		p.ArtURL = path.Reward.ArtURL
	}
	if path.Reward.SoundURL != "" {
		p.SoundURL = path.Reward.SoundURL
	}
	p.InstanceID = rec.InstanceID
	p.EvolutionHistory = append(p.EvolutionHistory, rec)
	p.UpdatedAt = now
	return p.Materialize(template), rec, nil
}
