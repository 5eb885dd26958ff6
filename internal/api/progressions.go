package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/progression"
	"github.com/ericogr/elemental-cards/internal/service"
)

// ownProgression loads the route's progression and checks the caller owns it.
func (h *GameHandler) ownProgression(c *gin.Context) (*progression.CardProgression, bool) {
	p, err := h.repo.GetProgression(c.Param("progressionID"))
	if err != nil {
		writeError(c, err, constants.ErrProgressionNotFound)
		return nil, false
	}
	if p.OwnerID != callerID(c) {
		writeError(c, fmt.Errorf("%w: %s", service.ErrNotOwner, p.ID), constants.ErrProgressionNotFound)
		return nil, false
	}
	return p, true
}

// ListProgressions returns the caller's collection.
func (h *GameHandler) ListProgressions(c *gin.Context) {
	list, err := h.repo.ListProgressions(callerID(c))
	if err != nil {
		writeError(c, err, constants.ErrProgressionNotFound)
		return
	}
	c.JSON(http.StatusOK, list)
}

type acquireRequest struct {
	CardID string `json:"card_id" binding:"required"`
}

// AcquireCard grants the caller a card from the catalog.
func (h *GameHandler) AcquireCard(c *gin.Context) {
	var req acquireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	res, err := service.AcquireCard(h.repo, h.cat, callerID(c), req.CardID, h.now())
	if err != nil {
		writeError(c, err, constants.ErrFailedSaveProgression)
		return
	}
	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

// GetProgression returns a progression, its current card and the state of
// each evolution path from its stage.
func (h *GameHandler) GetProgression(c *gin.Context) {
	p, ok := h.ownProgression(c)
	if !ok {
		return
	}
	tpl, err := h.cat.Card(p.CardID)
	if err != nil {
		writeError(c, err, constants.ErrUnknownCard)
		return
	}
	opts, err := service.EvolutionOptions(h.repo, h.cat, h.hooks, p.ID)
	if err != nil {
		writeError(c, err, constants.ErrProgressionNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"progression":       p,
		"card":              p.Materialize(tpl),
		"next_level_at":     progression.ExperienceForLevel(p.Level),
		"evolution_options": opts,
	})
}

type battleRequest struct {
	Result          progression.BattleResult `json:"result" binding:"required"`
	OpponentLevel   int                      `json:"opponent_level"`
	DurationSeconds int                      `json:"duration_seconds"`
}

// RecordBattle credits a battle fought outside of a hosted match.
func (h *GameHandler) RecordBattle(c *gin.Context) {
	p, ok := h.ownProgression(c)
	if !ok {
		return
	}
	var req battleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	switch req.Result {
	case progression.Win, progression.Draw, progression.Loss:
	default:
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if req.OpponentLevel < 1 {
		req.OpponentLevel = p.Level
	}
	o := progression.BattleOutcome{
		Result:        req.Result,
		OpponentLevel: req.OpponentLevel,
		Duration:      time.Duration(req.DurationSeconds) * time.Second,
	}
	updated, up, err := service.RecordBattle(h.repo, p.ID, o, h.now())
	if err != nil {
		writeError(c, err, constants.ErrFailedSaveProgression)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progression": updated, "level_up": up})
}

type evolveRequest struct {
	PathID string `json:"path_id" binding:"required"`
}

// Evolve advances the caller's progression along a path.
func (h *GameHandler) Evolve(c *gin.Context) {
	var req evolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	res, err := service.Evolve(h.repo, h.cat, h.hooks, c.Param("progressionID"), callerID(c), req.PathID, h.now())
	if err != nil {
		writeError(c, err, constants.ErrFailedSaveProgression)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Fuse runs one fusion attempt for the caller.
func (h *GameHandler) Fuse(c *gin.Context) {
	var req service.FuseRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProgressionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	req.OwnerID = callerID(c)
	res, err := service.Fuse(h.repo, h.cat, h.fusionRand(), h.opts.FailurePolicy, req, h.now())
	if err != nil {
		writeError(c, err, constants.ErrFailedSaveProgression)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Inventory lists the caller's spare copies.
func (h *GameHandler) Inventory(c *gin.Context) {
	inv, err := h.repo.GetInventory(callerID(c))
	if err != nil {
		writeError(c, err, constants.ErrFailedFetchInventory)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// ListResults returns the caller's finished matches, newest first.
// Optional ?limit=N (default 20, max 100).
func (h *GameHandler) ListResults(c *gin.Context) {
	limit := 20
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	results, err := h.repo.ListMatchResults(callerID(c), limit)
	if err != nil {
		writeError(c, err, constants.ErrFailedFetchResults)
		return
	}
	c.JSON(http.StatusOK, results)
}
