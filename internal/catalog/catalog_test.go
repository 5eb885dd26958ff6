package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/elemental-cards/internal/game"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	sprite, err := c.Card("fire_sprite")
	require.NoError(t, err)
	assert.Equal(t, game.Fire, sprite.Element)
	assert.Equal(t, game.Common, sprite.Rarity)
	assert.Equal(t, 3, sprite.Attack)
	assert.Empty(t, sprite.InstanceID)

	banner, err := c.Card("war_banner")
	require.NoError(t, err)
	assert.Equal(t, game.Artifact, banner.Type)
	assert.True(t, banner.HasKeyword(game.KeywordImmediate))

	scorch, err := c.Ability("scorch")
	require.NoError(t, err)
	require.NotNil(t, scorch.Status)
	assert.Equal(t, game.StatusBurn, scorch.Status.Type)

	p, err := c.Path("fire_sprite_evolved")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, p.Cost.Duration)
	assert.Len(t, c.PathsFor("fire_sprite"), 2)
}

func TestCardReturnsIndependentCopy(t *testing.T) {
	c := MustDefault()
	a, _ := c.Card("void_witch")
	a.Abilities[0] = "tampered"
	b, _ := c.Card("void_witch")
	assert.Equal(t, "life_drain", b.Abilities[0])
}

func TestInstanceAssignsUniqueIDs(t *testing.T) {
	c := MustDefault()
	a, err := c.Instance("tide_pup")
	require.NoError(t, err)
	b, err := c.Instance("tide_pup")
	require.NoError(t, err)
	assert.NotEmpty(t, a.InstanceID)
	assert.NotEqual(t, a.InstanceID, b.InstanceID)
	assert.Equal(t, a.MaxHealth, a.Health)
}

func TestUnknownLookups(t *testing.T) {
	c := MustDefault()
	_, err := c.Card("missing")
	assert.True(t, errors.Is(err, ErrUnknownCard))
	_, err = c.Ability("missing")
	assert.True(t, errors.Is(err, ErrUnknownAbility))
	_, err = c.Path("missing")
	assert.True(t, errors.Is(err, ErrUnknownPath))
	_, err = c.Recipe("missing")
	assert.True(t, errors.Is(err, ErrUnknownRecipe))
	_, err = c.BuildDeck([]string{"fire_sprite", "missing"})
	assert.True(t, errors.Is(err, ErrUnknownCard))
}

func TestRecipeForIgnoresMaterialOrder(t *testing.T) {
	c := MustDefault()
	r, err := c.RecipeFor("gale_hawk", []string{"gale_hawk", "storm_roc"})
	require.NoError(t, err)
	assert.Equal(t, "tempest_fusion", r.ID)

	r, err = c.RecipeFor("gale_hawk", []string{"storm_roc", "gale_hawk"})
	require.NoError(t, err)
	assert.Equal(t, "tempest_fusion", r.ID)

	_, err = c.RecipeFor("fire_sprite", []string{"ember_fox"})
	assert.True(t, errors.Is(err, ErrUnknownRecipe), "quantity matters")
}

func TestStarterDeckFavorsElement(t *testing.T) {
	c := MustDefault()
	ids := c.StarterDeckIDs(game.Water)
	require.Len(t, ids, DeckSize)
	first, _ := c.Card(ids[0])
	assert.Equal(t, game.Water, first.Element)

	deck, err := c.BuildDeck(ids)
	require.NoError(t, err)
	assert.Len(t, deck, DeckSize)
}

func TestParseValidation(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"no cards", "version: 1\n"},
		{"bad element", "cards:\n  - {id: x, name: X, element: plasma}\n"},
		{"duplicate card", "cards:\n  - {id: x, name: X, element: fire}\n  - {id: x, name: Y, element: fire}\n"},
		{"unknown ability", "cards:\n  - {id: x, name: X, element: fire, abilities: [nope]}\n"},
		{"bad rarity", "cards:\n  - {id: x, name: X, element: fire, rarity: shiny}\n"},
		{"stage skip", "cards:\n  - {id: x, name: X, element: fire}\nevolutions:\n  - {id: e, card_id: x, from: base, to: mega}\n"},
		{"bad rate", "cards:\n  - {id: x, name: X, element: fire}\nfusions:\n  - {id: f, primary_card_id: x, materials: [{card_id: x, quantity: 1}], base_success_rate: 1.5, inherited_stats_percent: 100}\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.doc), tc.name); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestParseDefaultsCardType(t *testing.T) {
	c, err := Parse([]byte("cards:\n  - {id: x, name: X, element: earth, health: 3}\n"), "inline")
	require.NoError(t, err)
	card, _ := c.Card("x")
	assert.Equal(t, game.Creature, card.Type)
	assert.Equal(t, 3, card.MaxHealth)
}
