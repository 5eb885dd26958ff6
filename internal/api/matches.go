package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/dedupe"
	"github.com/ericogr/elemental-cards/internal/game"
	"github.com/ericogr/elemental-cards/internal/match"
	"github.com/ericogr/elemental-cards/internal/service"
)

// MatchView is the per-caller projection of a match. Hands other than the
// caller's are emptied; their sizes stay visible in HandSizes.
type MatchView struct {
	MatchID      string            `json:"match_id"`
	Status       string            `json:"status"`
	Deadline     *time.Time        `json:"deadline,omitempty"`
	State        *game.GameState   `json:"state"`
	HandSizes    map[string]int    `json:"hand_sizes"`
	LegalActions []game.GameAction `json:"legal_actions,omitempty"`
}

func (h *GameHandler) viewFor(ctx context.Context, m *match.Match, s *game.GameState, caller string) MatchView {
	s = s.Clone()
	v := MatchView{MatchID: m.ID(), Status: m.Status(), State: s, HandSizes: map[string]int{}}
	if d := m.Deadline(); !d.IsZero() && !s.IsOver() {
		v.Deadline = &d
	}
	for i := range s.Players {
		p := &s.Players[i]
		v.HandSizes[p.ID] = len(p.Hand)
		if p.ID != caller {
			p.Hand = []game.Card{}
		}
	}
	if !s.IsOver() && s.Active().ID == caller && !m.IsAI(caller) {
		v.LegalActions = h.legalActions(ctx, m.ID(), s)
	}
	return v
}

// legalActions lists the active player's moves once per committed state,
// however many GET and stream callers render it at the same time. Only
// the active player asks, so the result never depends on the caller.
func (h *GameHandler) legalActions(ctx context.Context, matchID string, s *game.GameState) []game.GameAction {
	key := dedupe.SnapshotKey(matchID, s.Turn, len(s.History))
	actions, _, err := dedupe.Do(ctx, &h.views, key, func() ([]game.GameAction, error) {
		return h.legal(s), nil
	})
	if err != nil {
		return nil
	}
	return actions
}

// CreateMatch starts a match. The caller must occupy one of the seats.
func (h *GameHandler) CreateMatch(c *gin.Context) {
	var req service.StartMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	caller := callerID(c)
	if req.Seats[0].ID != caller && req.Seats[1].ID != caller {
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrNotYourCard})
		return
	}
	m, err := service.StartMatch(h.matches, h.cat, h.repo, h.recorder, req, h.opts.ThinkScale)
	if err != nil {
		writeError(c, err, constants.ErrFailedCreateMatch)
		return
	}
	c.JSON(http.StatusCreated, h.viewFor(c.Request.Context(), m, m.State(), caller))
}

// GetMatch returns the caller's view of a match.
func (h *GameHandler) GetMatch(c *gin.Context) {
	m, err := h.matches.Get(c.Param("matchID"))
	if err != nil {
		writeError(c, err, constants.ErrMatchNotFound)
		return
	}
	c.JSON(http.StatusOK, h.viewFor(c.Request.Context(), m, m.State(), callerID(c)))
}

// participant loads the match and checks that the caller plays in it.
func (h *GameHandler) participant(c *gin.Context) (*match.Match, bool) {
	m, err := h.matches.Get(c.Param("matchID"))
	if err != nil {
		writeError(c, err, constants.ErrMatchNotFound)
		return nil, false
	}
	if m.State().PlayerIndex(callerID(c)) < 0 {
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrNotYourCard})
		return nil, false
	}
	return m, true
}

// SubmitAction applies one action for the caller and waits for the result.
func (h *GameHandler) SubmitAction(c *gin.Context) {
	m, ok := h.participant(c)
	if !ok {
		return
	}
	var a game.GameAction
	if err := c.ShouldBindJSON(&a); err != nil || a.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	caller := callerID(c)
	a.PlayerID = caller
	s, err := service.SubmitAction(c.Request.Context(), h.matches, m.ID(), a)
	if err != nil {
		writeError(c, err, constants.ErrIllegalAction)
		return
	}
	c.JSON(http.StatusOK, h.viewFor(c.Request.Context(), m, s, caller))
}

// Forfeit concedes the match for the caller.
func (h *GameHandler) Forfeit(c *gin.Context) {
	m, ok := h.participant(c)
	if !ok {
		return
	}
	caller := callerID(c)
	s, err := service.ForfeitMatch(c.Request.Context(), h.matches, m.ID(), caller)
	if err != nil {
		writeError(c, err, constants.ErrIllegalAction)
		return
	}
	c.JSON(http.StatusOK, h.viewFor(c.Request.Context(), m, s, caller))
}
