package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/elemental-cards/internal/ai"
	"github.com/ericogr/elemental-cards/internal/catalog"
	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/engine"
	"github.com/ericogr/elemental-cards/internal/logging"
	"github.com/ericogr/elemental-cards/internal/match"
	"github.com/ericogr/elemental-cards/internal/progression"
	"github.com/ericogr/elemental-cards/internal/service"
	"github.com/ericogr/elemental-cards/internal/storage"
)

type errorMapping struct {
	targets []error
	status  int
	message string
}

// errorTable is checked in order with errors.Is.
var errorTable = []errorMapping{
	{[]error{match.ErrMatchNotFound}, http.StatusNotFound, constants.ErrMatchNotFound},
	{[]error{progression.ErrNotFound}, http.StatusNotFound, constants.ErrProgressionNotFound},
	{[]error{catalog.ErrUnknownCard, catalog.ErrUnknownAbility}, http.StatusNotFound, constants.ErrUnknownCard},
	{[]error{catalog.ErrUnknownPath}, http.StatusNotFound, constants.ErrUnknownEvolutionPath},
	{[]error{catalog.ErrUnknownRecipe}, http.StatusNotFound, constants.ErrUnknownFusionRecipe},
	{[]error{match.ErrQueueFull}, http.StatusTooManyRequests, constants.ErrQueueFull},
	{[]error{match.ErrNotActive, match.ErrMatchClosed, engine.ErrGameOver}, http.StatusConflict, constants.ErrMatchNotActive},
	{[]error{engine.ErrNotYourTurn, engine.ErrStaleAction, match.ErrAIControlled}, http.StatusConflict, constants.ErrIllegalAction},
	{[]error{service.ErrNotOwner, engine.ErrUnknownPlayer}, http.StatusForbidden, constants.ErrNotYourCard},
	{[]error{progression.ErrRequirementsNotMet, progression.ErrSuperseded}, http.StatusUnprocessableEntity, constants.ErrEvolutionNotAllowed},
	{[]error{progression.ErrWrongPrimary, progression.ErrPrimaryLevelTooLow, progression.ErrMissingMaterials, service.ErrMissingCatalyst, storage.ErrInsufficientInventory}, http.StatusUnprocessableEntity, constants.ErrFusionNotAllowed},
	{[]error{
		engine.ErrInsufficientMana, engine.ErrCardNotInHand, engine.ErrFieldFull, engine.ErrCardNotOnField,
		engine.ErrCannotAttack, engine.ErrInvalidTarget, engine.ErrAbilityUnavailable, engine.ErrAbilityOnCooldown,
		engine.ErrTargetRequired, engine.ErrUnknownAction,
	}, http.StatusUnprocessableEntity, constants.ErrIllegalAction},
	{[]error{engine.ErrInvalidSetup, service.ErrInvalidSeat, service.ErrCardNotAvailable, ai.ErrUnknownOption}, http.StatusBadRequest, constants.ErrInvalidRequest},
}

// writeError maps a service or engine error to a status code. Unknown
// errors are logged and reported as 500 with the fallback message.
func writeError(c *gin.Context, err error, fallback string) {
	for _, m := range errorTable {
		for _, target := range m.targets {
			if errors.Is(err, target) {
				c.JSON(m.status, gin.H{constants.JSONKeyError: m.message, constants.JSONKeyDetails: err.Error()})
				return
			}
		}
	}
	logging.Error(fallback, err, logging.Fields{"path": c.FullPath()})
	c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: fallback})
}
