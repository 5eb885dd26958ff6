package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/engine"
	"github.com/ericogr/elemental-cards/internal/game"
	"github.com/ericogr/elemental-cards/internal/version"
)

// Version returns build and VCS metadata injected at build time.
func Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

// ListCards returns every card template of the catalog.
func (h *GameHandler) ListCards(c *gin.Context) {
	c.JSON(http.StatusOK, h.cat.Cards())
}

// Effectiveness returns one matchup when both ?attacker= and ?defender= are
// given and the full table otherwise.
func (h *GameHandler) Effectiveness(c *gin.Context) {
	att, def := game.Element(c.Query("attacker")), game.Element(c.Query("defender"))
	if att == "" && def == "" {
		table := make(map[game.Element]map[game.Element]engine.Matchup, len(game.Elements))
		for _, a := range game.Elements {
			row := make(map[game.Element]engine.Matchup, len(game.Elements))
			for _, d := range game.Elements {
				row[d] = engine.Effectiveness(a, d)
			}
			table[a] = row
		}
		c.JSON(http.StatusOK, table)
		return
	}
	if !att.Valid() || !def.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrUnknownElement})
		return
	}
	c.JSON(http.StatusOK, engine.Effectiveness(att, def))
}
