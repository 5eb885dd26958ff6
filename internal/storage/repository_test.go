package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/elemental-cards/internal/catalog"
	"github.com/ericogr/elemental-cards/internal/progression"
)

func repositories(t *testing.T) map[string]Repository {
	t.Helper()
	db, err := OpenAndMigrate("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return map[string]Repository{
		"sqlite": NewSQLiteRepository(db),
		"memory": NewMemoryRepository(),
	}
}

func sampleProgression(id, owner string, created time.Time) *progression.CardProgression {
	tpl := catalog.MustDefault()
	c, _ := tpl.Card("fire_sprite")
	p := progression.New(id, owner, c, "inst-"+id, created)
	p.StatBonuses = catalog.StatBlock{Attack: 2, Health: 1}
	p.UnlockedAbilities = []string{"scorch"}
	p.EvolutionHistory = []progression.EvolutionRecord{{PathID: "fire_sprite_evolved", From: catalog.StageBase, To: catalog.StageEvolved, InstanceID: "inst-" + id, At: created}}
	return p
}

func TestProgressionRoundTrip(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			p := sampleProgression("p1", "ana", base)
			require.NoError(t, repo.CreateProgression(p))
			require.NoError(t, repo.CreateProgression(sampleProgression("p2", "ana", base.Add(time.Minute))))
			require.NoError(t, repo.CreateProgression(sampleProgression("p3", "bob", base)))

			got, err := repo.GetProgression("p1")
			require.NoError(t, err)
			assert.Equal(t, p.StatBonuses, got.StatBonuses)
			assert.Equal(t, []string{"scorch"}, got.UnlockedAbilities)
			require.Len(t, got.EvolutionHistory, 1)
			assert.Equal(t, catalog.StageEvolved, got.EvolutionHistory[0].To)

			got.Level = 7
			got.SupersededBy = "p2"
			require.NoError(t, repo.UpdateProgression(got))
			again, err := repo.GetProgression("p1")
			require.NoError(t, err)
			assert.Equal(t, 7, again.Level)
			assert.False(t, again.Active())

			list, err := repo.ListProgressions("ana")
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "p1", list[0].ID)
			assert.Equal(t, "p2", list[1].ID)

			_, err = repo.GetProgression("missing")
			assert.True(t, errors.Is(err, progression.ErrNotFound))
			err = repo.UpdateProgression(&progression.CardProgression{ID: "missing"})
			assert.True(t, errors.Is(err, progression.ErrNotFound))
		})
	}
}

func TestInventory(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.AdjustInventory("ana", "ember_fox", 3))
			require.NoError(t, repo.AdjustInventory("ana", "ember_fox", -2))
			require.NoError(t, repo.AdjustInventory("ana", "tide_pup", 1))

			err := repo.AdjustInventory("ana", "tide_pup", -2)
			assert.True(t, errors.Is(err, ErrInsufficientInventory))
			assert.True(t, errors.Is(repo.AdjustInventory("ana", "tide_pup", 0), ErrInvalidQuantity))

			require.NoError(t, repo.AdjustInventory("ana", "tide_pup", -1))
			inv, err := repo.GetInventory("ana")
			require.NoError(t, err)
			assert.Equal(t, progression.Inventory{"ember_fox": 1}, inv)

			inv, err = repo.GetInventory("bob")
			require.NoError(t, err)
			assert.Empty(t, inv)
		})
	}
}

func TestMatchResults(t *testing.T) {
	end := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			for i, id := range []string{"m1", "m2", "m3"} {
				require.NoError(t, repo.SaveMatchResult(&MatchResult{
					MatchID:   id,
					PlayerIDs: []string{"ana", "bot"},
					WinnerID:  "ana",
					Reason:    "health_depleted",
					Turns:     9 + i,
					EndedAt:   end.Add(time.Duration(i) * time.Minute),
				}))
			}
			require.NoError(t, repo.SaveMatchResult(&MatchResult{MatchID: "m4", PlayerIDs: []string{"anabel", "bot"}, EndedAt: end}))

			list, err := repo.ListMatchResults("ana", 2)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "m3", list[0].MatchID)
			assert.Equal(t, "m2", list[1].MatchID)

			list, err = repo.ListMatchResults("bot", 0)
			require.NoError(t, err)
			assert.Len(t, list, 4)
		})
	}
}
