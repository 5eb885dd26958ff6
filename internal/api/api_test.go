package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/elemental-cards/internal/catalog"
	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/engine"
	"github.com/ericogr/elemental-cards/internal/game"
	"github.com/ericogr/elemental-cards/internal/match"
	"github.com/ericogr/elemental-cards/internal/progression"
	"github.com/ericogr/elemental-cards/internal/service"
	"github.com/ericogr/elemental-cards/internal/storage"
)

type testServer struct {
	router *gin.Engine
	repo   storage.Repository
	mg     *match.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cat := catalog.MustDefault()
	repo := storage.NewMemoryRepository()
	rec := service.NewResultRecorder(repo, repo)
	mg := match.NewManager(engine.New(cat), match.Config{}, rec)
	t.Cleanup(mg.Shutdown)
	h := NewGameHandler(cat, mg, repo, progression.NewBranchHooks(), rec, Options{Seed: 7})
	return &testServer{router: NewRouter(h), repo: repo, mg: mg}
}

func (s *testServer) do(t *testing.T, method, path, player string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	if player != "" {
		req.Header.Set(constants.HeaderPlayerID, player)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func twoHumans() service.StartMatchRequest {
	return service.StartMatchRequest{
		MatchID: "m1",
		Seed:    11,
		Seats: [2]service.SeatRequest{
			{ID: "ana", Element: game.Fire},
			{ID: "bo", Element: game.Water},
		},
	}
}

func TestVersionAndHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/version", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version"`)

	w = s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEffectiveness(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/effectiveness?attacker=fire&defender=water", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[engine.Matchup](t, w)
	assert.Equal(t, engine.Effectiveness(game.Fire, game.Water), got)

	w = s.do(t, http.MethodGet, "/api/effectiveness?attacker=fire&defender=plasma", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/effectiveness", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	table := decode[map[game.Element]map[game.Element]engine.Matchup](t, w)
	assert.Len(t, table, len(game.Elements))
	assert.Equal(t, engine.Effectiveness(game.Shadow, game.Light), table[game.Shadow][game.Light])
}

func TestListCards(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/cards", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cards := decode[[]game.Card](t, w)
	assert.Len(t, cards, len(catalog.MustDefault().Cards()))
}

func TestIdentityRequired(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/progressions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMatchFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/matches", "eve", twoHumans())
	assert.Equal(t, http.StatusForbidden, w.Code, "caller must take a seat")

	w = s.do(t, http.MethodPost, "/api/matches", "ana", twoHumans())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view := decode[MatchView](t, w)
	assert.Equal(t, "m1", view.MatchID)
	assert.NotEmpty(t, view.LegalActions, "ana moves first")
	assert.NotEmpty(t, view.State.Players[0].Hand)
	assert.Empty(t, view.State.Players[1].Hand)
	assert.Equal(t, 5, view.HandSizes["bo"])

	w = s.do(t, http.MethodGet, "/api/matches/m1", "bo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[MatchView](t, w)
	assert.Empty(t, view.State.Players[0].Hand, "bo cannot see ana's hand")
	assert.Empty(t, view.LegalActions)

	w = s.do(t, http.MethodPost, "/api/matches/m1/actions", "bo", game.GameAction{Type: game.ActionEndTurn})
	assert.Equal(t, http.StatusConflict, w.Code, "not bo's turn")

	w = s.do(t, http.MethodPost, "/api/matches/m1/actions", "eve", game.GameAction{Type: game.ActionEndTurn})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/matches/m1/actions", "ana", game.GameAction{Type: game.ActionEndTurn, Turn: 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view = decode[MatchView](t, w)
	assert.Equal(t, 2, view.State.Turn)

	w = s.do(t, http.MethodPost, "/api/matches/m1/actions", "bo", game.GameAction{Type: game.ActionEndTurn, Turn: 1})
	assert.Equal(t, http.StatusConflict, w.Code, "stale turn")

	w = s.do(t, http.MethodPost, "/api/matches/m1/forfeit", "bo", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view = decode[MatchView](t, w)
	assert.True(t, view.State.IsOver())
	assert.Equal(t, "ana", view.State.Winner)

	w = s.do(t, http.MethodPost, "/api/matches/m1/actions", "ana", game.GameAction{Type: game.ActionEndTurn})
	assert.Equal(t, http.StatusConflict, w.Code)

	results, err := s.repo.ListMatchResults("ana", 0)
	require.Eventually(t, func() bool {
		results, err = s.repo.ListMatchResults("ana", 0)
		return err == nil && len(results) == 1
	}, 2*time.Second, 10*time.Millisecond)
	w = s.do(t, http.MethodGet, "/api/results", "ana", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]storage.MatchResult](t, w)
	require.Len(t, listed, 1)
	assert.Equal(t, "ana", listed[0].WinnerID)
	assert.Equal(t, results[0].MatchID, listed[0].MatchID)

	w = s.do(t, http.MethodGet, "/api/matches/missing", "ana", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateMatchRejectsUnknownAIOption(t *testing.T) {
	s := newTestServer(t)
	req := twoHumans()
	req.Seats[1].AI = &service.AIRequest{Difficulty: "impossible"}
	w := s.do(t, http.MethodPost, "/api/matches", "ana", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProgressionEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/progressions", "ana", gin.H{"card_id": "fire_sprite"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	acquired := decode[service.AcquireResult](t, w)
	id := acquired.Progression.ID

	w = s.do(t, http.MethodPost, "/api/progressions", "ana", gin.H{"card_id": "unknown_card"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	for i := 0; i < 2; i++ {
		w = s.do(t, http.MethodPost, "/api/progressions", "ana", gin.H{"card_id": "ember_fox"})
		require.Contains(t, []int{http.StatusOK, http.StatusCreated}, w.Code)
	}
	w = s.do(t, http.MethodGet, "/api/inventory", "ana", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[map[string]int](t, w)["ember_fox"])

	w = s.do(t, http.MethodGet, "/api/progressions", "ana", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]progression.CardProgression](t, w), 2)

	w = s.do(t, http.MethodGet, "/api/progressions/"+id, "ana", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fire_sprite_evolved")

	w = s.do(t, http.MethodGet, "/api/progressions/"+id, "bo", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/progressions/"+id+"/battles", "ana", gin.H{"result": "win", "opponent_level": 1, "duration_seconds": 300})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p, err := s.repo.GetProgression(id)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Victories)
	assert.Equal(t, progression.ExperienceGain(progression.BattleOutcome{Result: progression.Win, OpponentLevel: 1, Duration: 5 * time.Minute}, 1), p.Experience)

	w = s.do(t, http.MethodPost, "/api/progressions/"+id+"/battles", "ana", gin.H{"result": "triumph"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/progressions/"+id+"/evolve", "ana", gin.H{"path_id": "fire_sprite_evolved"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPost, "/api/progressions/"+id+"/evolve", "ana", gin.H{"path_id": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/fusions", "ana", gin.H{"progression_id": id, "recipe_id": "phoenix_fusion", "materials": []string{"ember_fox", "ember_fox"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "one spare ember_fox and a level 1 primary")

	w = s.do(t, http.MethodPost, "/api/fusions", "bo", gin.H{"progression_id": id, "recipe_id": "phoenix_fusion"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStreamPushesUpdates(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/matches", "ana", twoHumans())
	require.Equal(t, http.StatusCreated, w.Code)

	srv := httptest.NewServer(s.router)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/matches/m1/stream?player_id=bo"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var ev StreamEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "snapshot", ev.Type)
	assert.Equal(t, 1, ev.View.State.Turn)

	w = s.do(t, http.MethodPost, "/api/matches/m1/actions", "ana", game.GameAction{Type: game.ActionEndTurn})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "update", ev.Type)
	require.NotNil(t, ev.Record)
	assert.Equal(t, game.ActionEndTurn, ev.Record.Action.Type)
	assert.Equal(t, 2, ev.View.State.Turn)
	assert.NotEmpty(t, ev.View.LegalActions, "bo is now active")
}

func TestLegalActionsSharedPerSnapshot(t *testing.T) {
	cat := catalog.MustDefault()
	repo := storage.NewMemoryRepository()
	mg := match.NewManager(engine.New(cat), match.Config{})
	t.Cleanup(mg.Shutdown)
	h := NewGameHandler(cat, mg, repo, progression.NewBranchHooks(), nil, Options{Seed: 7})

	var calls int32
	release := make(chan struct{})
	h.legal = func(*game.GameState) []game.GameAction {
		atomic.AddInt32(&calls, 1)
		<-release
		return []game.GameAction{{Type: game.ActionEndTurn, PlayerID: "ana"}}
	}

	s := &game.GameState{MatchID: "m1", Turn: 3, History: make([]game.ActionRecord, 4)}
	var wg sync.WaitGroup
	got := make([][]game.GameAction, 6)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = h.legalActions(context.Background(), "m1", s)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("legal actions computed %d times, want 1", n)
	}
	for i, actions := range got {
		require.Len(t, actions, 1, "caller %d", i)
	}

	s.History = append(s.History, game.ActionRecord{})
	h.legalActions(context.Background(), "m1", s)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "a new commit is a new snapshot")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	block := make(chan struct{})
	defer close(block)
	h.legal = func(*game.GameState) []game.GameAction { <-block; return nil }
	s.History = append(s.History, game.ActionRecord{})
	assert.Nil(t, h.legalActions(ctx, "m1", s))
}
