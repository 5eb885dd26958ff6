package api

import (
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ericogr/elemental-cards/internal/catalog"
	"github.com/ericogr/elemental-cards/internal/game"
	"github.com/ericogr/elemental-cards/internal/match"
	"github.com/ericogr/elemental-cards/internal/progression"
	"github.com/ericogr/elemental-cards/internal/service"
	"github.com/ericogr/elemental-cards/internal/storage"
)

// Options carries the tunables the handlers pass on to services.
type Options struct {
	ThinkScale    float64
	FailurePolicy progression.FailurePolicy
	Seed          int64
}

// GameHandler groups all HTTP handlers.
type GameHandler struct {
	cat      *catalog.Catalog
	matches  *match.Manager
	repo     storage.Repository
	hooks    *progression.BranchHooks
	recorder *service.ResultRecorder
	opts     Options
	now      func() time.Time

	// legal lists the moves of a state; views shares it between callers
	// rendering the same snapshot.
	legal func(*game.GameState) []game.GameAction
	views singleflight.Group

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewGameHandler wires the handlers to their dependencies.
func NewGameHandler(cat *catalog.Catalog, mg *match.Manager, repo storage.Repository, hooks *progression.BranchHooks, rec *service.ResultRecorder, opts Options) *GameHandler {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &GameHandler{
		cat:      cat,
		matches:  mg,
		repo:     repo,
		hooks:    hooks,
		recorder: rec,
		opts:     opts,
		now:      time.Now,
		legal:    mg.Engine().LegalActions,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// fusionRand hands out a per-request source derived from the shared one,
// since *rand.Rand is not safe for concurrent use.
func (h *GameHandler) fusionRand() *rand.Rand {
	h.rngMu.Lock()
	defer h.rngMu.Unlock()
	return rand.New(rand.NewSource(h.rng.Int63()))
}
