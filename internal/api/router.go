package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/elemental-cards/internal/constants"
)

// NewRouter registers every route on a fresh gin engine.
func NewRouter(h *GameHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{constants.JSONKeyStatus: "ok"})
	})

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		// Public endpoints
		apiRoutes.GET(constants.RouteVersion, Version)
		apiRoutes.GET(constants.RouteCards, h.ListCards)
		apiRoutes.GET(constants.RouteEffectiveness, h.Effectiveness)

		// Endpoints acting for a player
		protected := apiRoutes.Group("")
		protected.Use(IdentityRequired())

		protected.POST(constants.RouteMatches, h.CreateMatch)
		protected.GET(constants.RouteMatchByID, h.GetMatch)
		protected.POST(constants.RouteMatchActions, h.SubmitAction)
		protected.POST(constants.RouteMatchForfeit, h.Forfeit)
		protected.GET(constants.RouteMatchStream, h.StreamMatch)

		protected.GET(constants.RouteProgressions, h.ListProgressions)
		protected.POST(constants.RouteProgressions, h.AcquireCard)
		protected.GET(constants.RouteProgressionByID, h.GetProgression)
		protected.POST(constants.RouteProgressionWin, h.RecordBattle)
		protected.POST(constants.RouteEvolve, h.Evolve)
		protected.POST(constants.RouteFusions, h.Fuse)
		protected.GET(constants.RouteInventory, h.Inventory)
		protected.GET(constants.RouteResults, h.ListResults)
	}
	return router
}
