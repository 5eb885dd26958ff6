package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ericogr/elemental-cards/internal/ai"
	"github.com/ericogr/elemental-cards/internal/catalog"
	"github.com/ericogr/elemental-cards/internal/constants"
	"github.com/ericogr/elemental-cards/internal/engine"
	"github.com/ericogr/elemental-cards/internal/game"
	"github.com/ericogr/elemental-cards/internal/logging"
	"github.com/ericogr/elemental-cards/internal/match"
	"github.com/ericogr/elemental-cards/internal/progression"
	"github.com/ericogr/elemental-cards/internal/storage"
)

var (
	ErrInvalidSeat      = errors.New("invalid seat")
	ErrCardNotAvailable = errors.New("card cannot be brought into a match")
)

// SeatRequest describes one side of a new match. The deck comes from, in
// order of preference: owned progressions (topped up with the starter deck
// of Element), explicit card ids, or the starter deck of Element.
type SeatRequest struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Element        game.Element `json:"element,omitempty"`
	DeckIDs        []string     `json:"deck_ids,omitempty"`
	ProgressionIDs []string     `json:"progression_ids,omitempty"`
	AI             *AIRequest   `json:"ai,omitempty"`
}

// AIRequest makes the seat computer controlled.
type AIRequest struct {
	Difficulty  string   `json:"difficulty"`
	Personality string   `json:"personality"`
	MistakeRate *float64 `json:"mistake_rate,omitempty"`
}

// StartMatchRequest creates a match between two seats.
type StartMatchRequest struct {
	MatchID string         `json:"match_id,omitempty"`
	Seats   [2]SeatRequest `json:"seats"`
	Seed    int64          `json:"seed,omitempty"`
}

// StartMatch builds both decks, creates the match in mg and registers the
// progressions in play with rec so the finished battle is credited.
// ThinkScale is applied to every AI seat.
func StartMatch(mg *match.Manager, cat *catalog.Catalog, repo progression.Repository, rec *ResultRecorder, req StartMatchRequest, thinkScale float64) (*match.Match, error) {
	setup := match.Setup{MatchID: req.MatchID, Seed: req.Seed, AI: map[string]ai.Options{}}
	inPlay := map[string][]string{}
	for i, seat := range req.Seats {
		if seat.ID == "" {
			return nil, fmt.Errorf("%w: seat %d has no id", ErrInvalidSeat, i+1)
		}
		name := seat.Name
		if name == "" {
			name = seat.ID
		}
		deck, err := buildDeck(cat, repo, seat)
		if err != nil {
			return nil, err
		}
		setup.Players[i] = engine.PlayerSetup{ID: seat.ID, Name: name, Deck: deck}
		inPlay[seat.ID] = seat.ProgressionIDs
		if seat.AI == nil {
			continue
		}
		opts := ai.Options{MistakeRate: seat.AI.MistakeRate, ThinkScale: thinkScale}
		if seat.AI.Difficulty != "" {
			if opts.Difficulty, err = ai.ParseDifficulty(seat.AI.Difficulty); err != nil {
				return nil, err
			}
		}
		if seat.AI.Personality != "" {
			if opts.Personality, err = ai.ParsePersonality(seat.AI.Personality); err != nil {
				return nil, err
			}
		}
		setup.AI[seat.ID] = opts
	}

	m, err := mg.Create(setup)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		rec.Track(m.ID(), inPlay)
	}
	return m, nil
}

func buildDeck(cat *catalog.Catalog, repo progression.Repository, seat SeatRequest) ([]game.Card, error) {
	if len(seat.ProgressionIDs) == 0 {
		ids := seat.DeckIDs
		if len(ids) == 0 {
			ids = cat.StarterDeckIDs(seat.Element)
		}
		return cat.BuildDeck(ids)
	}
	if repo == nil {
		return nil, fmt.Errorf("%w: no collection storage", ErrCardNotAvailable)
	}
	deck := make([]game.Card, 0, catalog.DeckSize)
	for _, id := range seat.ProgressionIDs {
		p, err := ownedProgression(repo, id, seat.ID)
		if err != nil {
			return nil, err
		}
		if !p.Active() {
			return nil, fmt.Errorf("%w: %s was superseded", ErrCardNotAvailable, id)
		}
		tpl, err := cat.Card(p.CardID)
		if err != nil {
			return nil, err
		}
		deck = append(deck, p.Materialize(tpl))
	}
	filler, err := cat.BuildDeck(cat.StarterDeckIDs(seat.Element))
	if err != nil {
		return nil, err
	}
	for i := 0; len(deck) < catalog.DeckSize && i < len(filler); i++ {
		deck = append(deck, filler[i])
	}
	return deck, nil
}

// SubmitAction forwards a player action to a running match.
func SubmitAction(ctx context.Context, mg *match.Manager, matchID string, a game.GameAction) (*game.GameState, error) {
	m, err := mg.Get(matchID)
	if err != nil {
		return nil, err
	}
	return m.Submit(ctx, a)
}

// ForfeitMatch concedes a running match for playerID.
func ForfeitMatch(ctx context.Context, mg *match.Manager, matchID, playerID string) (*game.GameState, error) {
	m, err := mg.Get(matchID)
	if err != nil {
		return nil, err
	}
	return m.Forfeit(ctx, playerID)
}

// ResultRepo persists match summaries.
type ResultRepo interface {
	SaveMatchResult(r *storage.MatchResult) error
}

// ResultRecorder is a match observer that stores the summary of finished
// matches and credits the progressions each seat brought.
type ResultRecorder struct {
	results ResultRepo
	cards   progression.Repository
	now     func() time.Time

	mu    sync.Mutex
	seats map[string]map[string][]string
}

// NewResultRecorder creates a recorder. cards may be nil when no
// progression is credited.
func NewResultRecorder(results ResultRepo, cards progression.Repository) *ResultRecorder {
	return &ResultRecorder{results: results, cards: cards, now: time.Now, seats: map[string]map[string][]string{}}
}

// Track remembers which progressions each player brought into matchID.
func (r *ResultRecorder) Track(matchID string, seats map[string][]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seats[matchID] = seats
}

func (r *ResultRecorder) Observe(u match.Update) {
	if u.Lifecycle != match.StateFinished || u.State == nil {
		return
	}
	s := u.State
	ended := r.now()
	started := ended
	if len(s.History) > 0 {
		started = s.History[0].Timestamp
	}
	res := &storage.MatchResult{
		MatchID:   u.MatchID,
		PlayerIDs: []string{s.Players[0].ID, s.Players[1].ID},
		WinnerID:  s.Winner,
		Reason:    s.EndReason,
		Turns:     s.Turn,
		Actions:   len(s.History),
		StartedAt: started,
		EndedAt:   ended,
	}
	fields := logging.Fields{constants.LogFieldMatchID: u.MatchID}
	if err := r.results.SaveMatchResult(res); err != nil {
		logging.Error("failed to save match result", err, fields)
	}

	r.mu.Lock()
	seats := r.seats[u.MatchID]
	delete(r.seats, u.MatchID)
	r.mu.Unlock()
	if r.cards == nil || len(seats) == 0 {
		return
	}
	levels := map[string]int{}
	for pid, ids := range seats {
		levels[pid] = r.averageLevel(ids)
	}
	for pid, ids := range seats {
		opp := s.Players[0].ID
		if opp == pid {
			opp = s.Players[1].ID
		}
		o := progression.BattleOutcome{Result: resultFor(s, pid), OpponentLevel: levels[opp], Duration: ended.Sub(started)}
		for _, id := range ids {
			if _, _, err := RecordBattle(r.cards, id, o, ended); err != nil {
				logging.Error("failed to record battle", err, logging.Fields{constants.LogFieldMatchID: u.MatchID, constants.LogFieldProgressionID: id})
			}
		}
	}
}

// averageLevel is the mean level of ids, or 1 when none can be loaded.
func (r *ResultRecorder) averageLevel(ids []string) int {
	sum, n := 0, 0
	for _, id := range ids {
		p, err := r.cards.GetProgression(id)
		if err != nil {
			continue
		}
		sum += p.Level
		n++
	}
	if n == 0 {
		return 1
	}
	return sum / n
}

func resultFor(s *game.GameState, playerID string) progression.BattleResult {
	switch s.Winner {
	case "":
		return progression.Draw
	case playerID:
		return progression.Win
	}
	return progression.Loss
}
