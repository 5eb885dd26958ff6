package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ericogr/elemental-cards/internal/game"
	"github.com/ericogr/elemental-cards/internal/keys"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

var (
	ErrUnknownCard    = errors.New("unknown card")
	ErrUnknownAbility = errors.New("unknown ability")
	ErrUnknownPath    = errors.New("unknown evolution path")
	ErrUnknownRecipe  = errors.New("unknown fusion recipe")
)

// DeckSize is the number of cards in a constructed deck.
const DeckSize = 20

type rawCatalog struct {
	Version    int               `yaml:"version"`
	Abilities  []game.AbilityDef `yaml:"abilities"`
	Cards      []game.Card       `yaml:"cards"`
	Evolutions []EvolutionPath   `yaml:"evolutions"`
	Fusions    []FusionRecipe    `yaml:"fusions"`
}

// Catalog is the read-only set of card, ability, evolution and fusion
// definitions. It is safe for concurrent reads once built.
type Catalog struct {
	cards        map[string]game.Card
	cardOrder    []string
	abilities    map[string]game.AbilityDef
	paths        map[string]EvolutionPath
	pathsByCard  map[string][]EvolutionPath
	recipes      map[string]FusionRecipe
	recipesByKey map[string]FusionRecipe
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog, "default_catalog.yaml")
}

// MustDefault is Default for tests and static initialization.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a catalog YAML file from disk.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return Parse(b, path)
}

// Parse decodes and validates a catalog. name is only used in error texts.
func Parse(b []byte, name string) (*Catalog, error) {
	var rc rawCatalog
	if err := yaml.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", name, err)
	}
	if len(rc.Cards) == 0 {
		return nil, fmt.Errorf("catalog %s: cards is empty", name)
	}

	c := &Catalog{
		cards:        make(map[string]game.Card, len(rc.Cards)),
		abilities:    make(map[string]game.AbilityDef, len(rc.Abilities)),
		paths:        make(map[string]EvolutionPath, len(rc.Evolutions)),
		pathsByCard:  make(map[string][]EvolutionPath),
		recipes:      make(map[string]FusionRecipe, len(rc.Fusions)),
		recipesByKey: make(map[string]FusionRecipe, len(rc.Fusions)),
	}

	for _, a := range rc.Abilities {
		if strings.TrimSpace(a.ID) == "" {
			return nil, fmt.Errorf("catalog %s: ability entry missing 'id'", name)
		}
		if _, exists := c.abilities[a.ID]; exists {
			return nil, fmt.Errorf("catalog %s: duplicate ability id '%s'", name, a.ID)
		}
		if a.Side == "" {
			a.Side = game.SideEnemy
		}
		if a.Kind == game.AbilityStatus && a.Status == nil {
			return nil, fmt.Errorf("catalog %s: status ability '%s' missing 'status'", name, a.ID)
		}
		c.abilities[a.ID] = a
	}

	for _, card := range rc.Cards {
		if strings.TrimSpace(card.ID) == "" || strings.TrimSpace(card.Name) == "" {
			return nil, fmt.Errorf("catalog %s: card entry missing 'id' or 'name'", name)
		}
		if _, exists := c.cards[card.ID]; exists {
			return nil, fmt.Errorf("catalog %s: duplicate card id '%s'", name, card.ID)
		}
		if !card.Element.Valid() {
			return nil, fmt.Errorf("catalog %s: card '%s' has unknown element '%s'", name, card.ID, card.Element)
		}
		if card.Type == "" {
			card.Type = game.Creature
		}
		if card.MaxHealth < card.Health {
			card.MaxHealth = card.Health
		}
		for _, aid := range card.Abilities {
			if _, ok := c.abilities[aid]; !ok {
				return nil, fmt.Errorf("catalog %s: card '%s' references unknown ability '%s'", name, card.ID, aid)
			}
		}
		c.cards[card.ID] = card
		c.cardOrder = append(c.cardOrder, card.ID)
	}

	for _, p := range rc.Evolutions {
		if err := c.validatePath(p); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", name, err)
		}
		c.paths[p.ID] = p
		c.pathsByCard[p.CardID] = append(c.pathsByCard[p.CardID], p)
	}

	for _, r := range rc.Fusions {
		if err := c.validateRecipe(r); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", name, err)
		}
		c.recipes[r.ID] = r
		c.recipesByKey[keys.FusionKey(r.PrimaryCardID, r.MaterialIDs())] = r
	}
	return c, nil
}

func (c *Catalog) validatePath(p EvolutionPath) error {
	if p.ID == "" {
		return errors.New("evolution entry missing 'id'")
	}
	if _, exists := c.paths[p.ID]; exists {
		return fmt.Errorf("duplicate evolution id '%s'", p.ID)
	}
	if _, ok := c.cards[p.CardID]; !ok {
		return fmt.Errorf("evolution '%s' references unknown card '%s'", p.ID, p.CardID)
	}
	next, ok := p.From.Next()
	if !ok || next != p.To {
		return fmt.Errorf("evolution '%s' must advance exactly one stage (%s -> %s)", p.ID, p.From, p.To)
	}
	for _, req := range p.Requirements {
		if req.Type == RequireMaterial {
			if _, ok := c.cards[req.CardID]; !ok {
				return fmt.Errorf("evolution '%s' material references unknown card '%s'", p.ID, req.CardID)
			}
		}
	}
	for _, aid := range p.Reward.NewAbilities {
		if _, ok := c.abilities[aid]; !ok {
			return fmt.Errorf("evolution '%s' grants unknown ability '%s'", p.ID, aid)
		}
	}
	return nil
}

func (c *Catalog) validateRecipe(r FusionRecipe) error {
	if r.ID == "" {
		return errors.New("fusion entry missing 'id'")
	}
	if _, exists := c.recipes[r.ID]; exists {
		return fmt.Errorf("duplicate fusion id '%s'", r.ID)
	}
	if _, ok := c.cards[r.PrimaryCardID]; !ok {
		return fmt.Errorf("fusion '%s' references unknown primary card '%s'", r.ID, r.PrimaryCardID)
	}
	if len(r.Materials) == 0 {
		return fmt.Errorf("fusion '%s' has no materials", r.ID)
	}
	for _, m := range r.Materials {
		if _, ok := c.cards[m.CardID]; !ok {
			return fmt.Errorf("fusion '%s' material references unknown card '%s'", r.ID, m.CardID)
		}
		if m.Quantity <= 0 {
			return fmt.Errorf("fusion '%s' material '%s' needs a positive quantity", r.ID, m.CardID)
		}
	}
	if r.BaseSuccessRate < 0 || r.BaseSuccessRate > 1 {
		return fmt.Errorf("fusion '%s' base_success_rate must be within [0,1]", r.ID)
	}
	if r.InheritedStatsPercent <= 0 {
		return fmt.Errorf("fusion '%s' inherited_stats_percent must be positive", r.ID)
	}
	if r.ResultElement != "" && !r.ResultElement.Valid() {
		return fmt.Errorf("fusion '%s' has unknown result element '%s'", r.ID, r.ResultElement)
	}
	return nil
}

// Card returns a copy of the template with the given id.
func (c *Catalog) Card(id string) (game.Card, error) {
	card, ok := c.cards[id]
	if !ok {
		return game.Card{}, fmt.Errorf("%w: %s", ErrUnknownCard, id)
	}
	return card.Clone(), nil
}

// Cards returns every template in catalog order.
func (c *Catalog) Cards() []game.Card {
	out := make([]game.Card, 0, len(c.cardOrder))
	for _, id := range c.cardOrder {
		out = append(out, c.cards[id].Clone())
	}
	return out
}

// Ability returns the ability definition with the given id.
func (c *Catalog) Ability(id string) (game.AbilityDef, error) {
	a, ok := c.abilities[id]
	if !ok {
		return game.AbilityDef{}, fmt.Errorf("%w: %s", ErrUnknownAbility, id)
	}
	return a, nil
}

// Instance creates a fresh battle instance of a template.
func (c *Catalog) Instance(id string) (game.Card, error) {
	card, err := c.Card(id)
	if err != nil {
		return game.Card{}, err
	}
	card.InstanceID = uuid.NewString()
	card.Health = card.MaxHealth
	return card, nil
}

// BuildDeck instantiates the listed template ids in order.
func (c *Catalog) BuildDeck(ids []string) ([]game.Card, error) {
	deck := make([]game.Card, 0, len(ids))
	for _, id := range ids {
		card, err := c.Instance(id)
		if err != nil {
			return nil, err
		}
		deck = append(deck, card)
	}
	return deck, nil
}

// StarterDeckIDs picks DeckSize template ids favoring the given element:
// cards of that element first, then neutral, then the rest, each group
// ordered by mana cost. The list is cycled when the catalog is small.
func (c *Catalog) StarterDeckIDs(favored game.Element) []string {
	ids := append([]string(nil), c.cardOrder...)
	group := func(id string) int {
		switch c.cards[id].Element {
		case favored:
			return 0
		case game.Neutral:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		gi, gj := group(ids[i]), group(ids[j])
		if gi != gj {
			return gi < gj
		}
		return c.cards[ids[i]].ManaCost < c.cards[ids[j]].ManaCost
	})
	out := make([]string, 0, DeckSize)
	for len(out) < DeckSize && len(ids) > 0 {
		for _, id := range ids {
			if len(out) == DeckSize {
				break
			}
			out = append(out, id)
		}
	}
	return out
}

// Path returns an evolution path by id.
func (c *Catalog) Path(id string) (EvolutionPath, error) {
	p, ok := c.paths[id]
	if !ok {
		return EvolutionPath{}, fmt.Errorf("%w: %s", ErrUnknownPath, id)
	}
	return p, nil
}

// PathsFor lists the evolution paths available for a card template.
func (c *Catalog) PathsFor(cardID string) []EvolutionPath {
	return append([]EvolutionPath(nil), c.pathsByCard[cardID]...)
}

// Recipe returns a fusion recipe by id.
func (c *Catalog) Recipe(id string) (FusionRecipe, error) {
	r, ok := c.recipes[id]
	if !ok {
		return FusionRecipe{}, fmt.Errorf("%w: %s", ErrUnknownRecipe, id)
	}
	return r, nil
}

// RecipeFor finds the recipe matching a primary card and an exact material
// multiset, regardless of material order.
func (c *Catalog) RecipeFor(primaryID string, materialIDs []string) (FusionRecipe, error) {
	r, ok := c.recipesByKey[keys.FusionKey(primaryID, materialIDs)]
	if !ok {
		return FusionRecipe{}, fmt.Errorf("%w: %s + %s", ErrUnknownRecipe, primaryID, keys.CardKeyFromIDs(materialIDs))
	}
	return r, nil
}
