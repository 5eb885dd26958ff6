package service

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ericogr/elemental-cards/internal/catalog"
	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/game"
	"github.com/ericogr/elemental-cards/internal/logging"
	"github.com/ericogr/elemental-cards/internal/progression"
)

// InventoryRepo stores spare card copies used as materials.
type InventoryRepo interface {
	GetInventory(ownerID string) (progression.Inventory, error)
	AdjustInventory(ownerID, cardID string, delta int) error
}

// CollectionRepo is the minimal repository the progression use-cases need.
// Using a small interface simplifies testing.
type CollectionRepo interface {
	progression.Repository
	InventoryRepo
}

var (
	ErrNotOwner        = errors.New("card belongs to another player")
	ErrMissingCatalyst = errors.New("catalyst not in inventory")
)

// AcquireResult reports what AcquireCard did. A second copy of a card the
// owner already progresses becomes an inventory material instead of a new
// record.
type AcquireResult struct {
	Progression *progression.CardProgression `json:"progression"`
	Card        game.Card                    `json:"card"`
	Duplicate   bool                         `json:"duplicate"`
}

// AcquireCard grants ownerID a copy of cardID.
func AcquireCard(repo CollectionRepo, cat *catalog.Catalog, ownerID, cardID string, now time.Time) (AcquireResult, error) {
	tpl, err := cat.Card(cardID)
	if err != nil {
		return AcquireResult{}, err
	}
	owned, err := repo.ListProgressions(ownerID)
	if err != nil {
		return AcquireResult{}, err
	}
	for i := range owned {
		p := &owned[i]
		if p.CardID == cardID && p.Active() {
			if err := repo.AdjustInventory(ownerID, cardID, 1); err != nil {
				return AcquireResult{}, err
			}
			return AcquireResult{Progression: p, Card: p.Materialize(tpl), Duplicate: true}, nil
		}
	}
	p := progression.New(uuid.NewString(), ownerID, tpl, uuid.NewString(), now)
	if err := repo.CreateProgression(p); err != nil {
		return AcquireResult{}, err
	}
	logging.Info("card acquired", logging.Fields{constants.LogFieldProgressionID: p.ID, constants.LogFieldCardID: cardID, constants.LogFieldPlayerID: ownerID})
	return AcquireResult{Progression: p, Card: p.Materialize(tpl)}, nil
}

// ownedProgression loads id and checks it belongs to ownerID. An empty
// ownerID skips the check.
func ownedProgression(repo progression.Repository, id, ownerID string) (*progression.CardProgression, error) {
	p, err := repo.GetProgression(id)
	if err != nil {
		return nil, err
	}
	if ownerID != "" && p.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: %s", ErrNotOwner, id)
	}
	return p, nil
}

// RecordBattle applies a battle outcome to one progression.
func RecordBattle(repo progression.Repository, progressionID string, o progression.BattleOutcome, now time.Time) (*progression.CardProgression, progression.LevelUp, error) {
	p, err := repo.GetProgression(progressionID)
	if err != nil {
		return nil, progression.LevelUp{}, err
	}
	if !p.Active() {
		return nil, progression.LevelUp{}, fmt.Errorf("%w: %s", progression.ErrSuperseded, p.ID)
	}
	up := progression.RecordBattle(p, o, now)
	if err := repo.UpdateProgression(p); err != nil {
		return nil, progression.LevelUp{}, err
	}
	if up.To > up.From {
		logging.Info("card leveled up", logging.Fields{constants.LogFieldProgressionID: p.ID, "from": up.From, "to": up.To})
	}
	return p, up, nil
}

// PathStatus pairs an evolution path with its current check.
type PathStatus struct {
	Path  catalog.EvolutionPath     `json:"path"`
	Check progression.EvolutionCheck `json:"check"`
}

// EvolutionOptions lists every path of the card with what is still missing.
func EvolutionOptions(repo CollectionRepo, cat *catalog.Catalog, hooks *progression.BranchHooks, progressionID string) ([]PathStatus, error) {
	p, err := repo.GetProgression(progressionID)
	if err != nil {
		return nil, err
	}
	inv, err := repo.GetInventory(p.OwnerID)
	if err != nil {
		return nil, err
	}
	out := []PathStatus{}
	for _, path := range cat.PathsFor(p.CardID) {
		if path.From != p.Stage {
			continue
		}
		out = append(out, PathStatus{Path: path, Check: progression.CheckEvolution(p, path, inv, hooks)})
	}
	return out, nil
}

// EvolveResult is the outcome of a successful evolution.
type EvolveResult struct {
	Progression *progression.CardProgression `json:"progression"`
	Card        game.Card                    `json:"card"`
	Record      progression.EvolutionRecord  `json:"record"`
}

// Evolve advances a progression along pathID and persists it. Consumed
// materials leave the owner's inventory.
func Evolve(repo CollectionRepo, cat *catalog.Catalog, hooks *progression.BranchHooks, progressionID, ownerID, pathID string, now time.Time) (EvolveResult, error) {
	p, err := ownedProgression(repo, progressionID, ownerID)
	if err != nil {
		return EvolveResult{}, err
	}
	path, err := cat.Path(pathID)
	if err != nil {
		return EvolveResult{}, err
	}
	tpl, err := cat.Card(p.CardID)
	if err != nil {
		return EvolveResult{}, err
	}
	inv, err := repo.GetInventory(p.OwnerID)
	if err != nil {
		return EvolveResult{}, err
	}
	card, rec, err := progression.Evolve(p, tpl, path, inv, hooks, now)
	if err != nil {
		return EvolveResult{}, err
	}
	taken, err := takeMaterials(repo, p.OwnerID, rec.Consumed)
	if err != nil {
		return EvolveResult{}, err
	}
	if err := repo.UpdateProgression(p); err != nil {
		returnMaterials(repo, p.OwnerID, taken)
		return EvolveResult{}, err
	}
	logging.Info("card evolved", logging.Fields{constants.LogFieldProgressionID: p.ID, "path": path.ID, "stage": string(p.Stage)})
	return EvolveResult{Progression: p, Card: card, Record: rec}, nil
}

// takeMaterials removes one copy per id. On failure everything taken so far
// is put back.
func takeMaterials(repo InventoryRepo, ownerID string, ids []string) ([]string, error) {
	taken := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := repo.AdjustInventory(ownerID, id, -1); err != nil {
			returnMaterials(repo, ownerID, taken)
			return nil, err
		}
		taken = append(taken, id)
	}
	return taken, nil
}

func returnMaterials(repo InventoryRepo, ownerID string, ids []string) {
	for _, id := range ids {
		if err := repo.AdjustInventory(ownerID, id, 1); err != nil {
			logging.Error("failed to return material", err, logging.Fields{constants.LogFieldPlayerID: ownerID, constants.LogFieldCardID: id})
		}
	}
}

// FuseRequest names the primary progression and the inventory cards offered.
// RecipeID is optional; without it the recipe is found from the primary and
// the materials.
type FuseRequest struct {
	OwnerID       string   `json:"owner_id"`
	ProgressionID string   `json:"progression_id"`
	RecipeID      string   `json:"recipe_id,omitempty"`
	Materials     []string `json:"materials"`
	Catalysts     []string `json:"catalysts,omitempty"`
}

// FuseResult carries the roll and, on success, the new progression that
// replaces the primary.
type FuseResult struct {
	Outcome     progression.FusionOutcome    `json:"outcome"`
	Progression *progression.CardProgression `json:"progression,omitempty"`
	Primary     *progression.CardProgression `json:"primary"`
}

// Fuse performs one fusion attempt. Materials and catalysts must be held in
// the owner's inventory; catalysts are not consumed.
func Fuse(repo CollectionRepo, cat *catalog.Catalog, rng *rand.Rand, policy progression.FailurePolicy, req FuseRequest, now time.Time) (FuseResult, error) {
	primary, err := ownedProgression(repo, req.ProgressionID, req.OwnerID)
	if err != nil {
		return FuseResult{}, err
	}
	var recipe catalog.FusionRecipe
	if req.RecipeID != "" {
		recipe, err = cat.Recipe(req.RecipeID)
	} else {
		recipe, err = cat.RecipeFor(primary.CardID, req.Materials)
	}
	if err != nil {
		return FuseResult{}, err
	}
	inv, err := repo.GetInventory(primary.OwnerID)
	if err != nil {
		return FuseResult{}, err
	}
	offered := map[string]int{}
	for _, m := range req.Materials {
		offered[m]++
	}
	for id, n := range offered {
		if inv[id] < n {
			return FuseResult{}, fmt.Errorf("%w: %s has %d in inventory, offered %d", progression.ErrMissingMaterials, id, inv[id], n)
		}
	}
	for _, c := range req.Catalysts {
		if inv[c] < 1 {
			return FuseResult{}, fmt.Errorf("%w: %s", ErrMissingCatalyst, c)
		}
	}
	tpl, err := cat.Card(primary.CardID)
	if err != nil {
		return FuseResult{}, err
	}

	out, err := progression.Fuse(progression.FusionRequest{
		Recipe:      recipe,
		Primary:     primary,
		PrimaryCard: primary.Materialize(tpl),
		Materials:   req.Materials,
		Catalysts:   req.Catalysts,
	}, rng, policy)
	if err != nil {
		return FuseResult{}, err
	}
	taken, err := takeMaterials(repo, primary.OwnerID, out.Consumed)
	if err != nil {
		return FuseResult{}, err
	}

	fields := logging.Fields{
		constants.LogFieldProgressionID: primary.ID,
		constants.LogFieldRecipeID:      recipe.ID,
		"rate":                          out.Rate,
		"roll":                          out.Roll,
	}
	res := FuseResult{Outcome: out, Primary: primary}
	if !out.Success {
		logging.Info("fusion failed", fields)
		return res, nil
	}
	fused := progression.FusedProgression(uuid.NewString(), primary, tpl, *out.Result, recipe.ID, now)
	if err := repo.CreateProgression(fused); err != nil {
		returnMaterials(repo, primary.OwnerID, taken)
		return FuseResult{}, err
	}
	primary.SupersededBy = fused.ID
	primary.UpdatedAt = now
	if err := repo.UpdateProgression(primary); err != nil {
		return FuseResult{}, err
	}
	res.Progression = fused
	fields["result_id"] = fused.ID
	logging.Info("fusion succeeded", fields)
	return res, nil
}
