package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/elemental-cards/internal/constants"
)

// IdentityRequired reads the caller id set by the fronting gateway and
// injects it into the context.
func IdentityRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(constants.HeaderPlayerID))
		if id == "" {
			// browsers cannot set headers on websocket upgrades
			id = strings.TrimSpace(c.Query("player_id"))
		}
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrIdentityRequired})
			return
		}
		c.Set(constants.ContextKeyPlayerID, id)
		c.Next()
	}
}

func callerID(c *gin.Context) string {
	return c.GetString(constants.ContextKeyPlayerID)
}
