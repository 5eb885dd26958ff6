package game

import "time"

// Zone sizes and player defaults.
const (
	StartingHealth   = 30
	ManaCap          = 10
	StartingMana     = 3
	StartingHandSize = 5
	HandSoftCap      = 10
	MaxFieldSize     = 6
)

// Phase is the coarse step of the active player's turn.
type Phase string

const (
	PhaseDraw   Phase = "draw"
	PhaseMain   Phase = "main"
	PhaseCombat Phase = "combat"
	PhaseEnd    Phase = "end"
)

// Match status values.
const (
	StatusActive   = "active"
	StatusFinished = "finished"
)

// Player holds one side of the duel. Zones are disjoint: every card instance
// lives in exactly one of Deck, Hand, Field or Graveyard.
type Player struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	IsAI          bool           `json:"is_ai"`
	Health        int            `json:"health"`
	MaxHealth     int            `json:"max_health"`
	Mana          int            `json:"mana"`
	MaxMana       int            `json:"max_mana"`
	ManaCrystals  int            `json:"mana_crystals"`
	Deck          []Card         `json:"-"`
	DeckCount     int            `json:"deck_count"`
	Hand          []Card         `json:"hand"`
	Field         []Card         `json:"field"`
	Graveyard     []Card         `json:"graveyard"`
	StatusEffects []StatusEffect `json:"status_effects,omitempty"`
}

// NewPlayer returns a player with default health and mana and the given deck.
func NewPlayer(id, name string, deck []Card) Player {
	return Player{
		ID:           id,
		Name:         name,
		Health:       StartingHealth,
		MaxHealth:    StartingHealth,
		Mana:         StartingMana,
		MaxMana:      ManaCap,
		ManaCrystals: StartingMana,
		Deck:         deck,
		DeckCount:    len(deck),
		Hand:         []Card{},
		Field:        []Card{},
		Graveyard:    []Card{},
	}
}

// HandIndex returns the index of the instance in hand or -1.
func (p *Player) HandIndex(instanceID string) int { return indexOf(p.Hand, instanceID) }

// FieldIndex returns the index of the instance on the field or -1.
func (p *Player) FieldIndex(instanceID string) int { return indexOf(p.Field, instanceID) }

// FieldCard returns a pointer into the field slice, or nil.
func (p *Player) FieldCard(instanceID string) *Card {
	if i := p.FieldIndex(instanceID); i >= 0 {
		return &p.Field[i]
	}
	return nil
}

// StatusPower sums the power of active player-level effects of type t.
func (p *Player) StatusPower(t StatusType) int { return sumStatus(p.StatusEffects, t) }

// Clone returns a deep copy of the player.
func (p Player) Clone() Player {
	out := p
	out.Deck = cloneCards(p.Deck)
	out.Hand = cloneCards(p.Hand)
	out.Field = cloneCards(p.Field)
	out.Graveyard = cloneCards(p.Graveyard)
	out.StatusEffects = append([]StatusEffect(nil), p.StatusEffects...)
	return out
}

func indexOf(cards []Card, instanceID string) int {
	for i := range cards {
		if cards[i].InstanceID == instanceID {
			return i
		}
	}
	return -1
}

func cloneCards(in []Card) []Card {
	if in == nil {
		return nil
	}
	out := make([]Card, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// GlobalEffect is an arena-wide timed modifier (weather, terrain, auras).
// Multiplier scales attack damage dealt by cards of Element.
type GlobalEffect struct {
	Name       string  `json:"name"`
	Element    Element `json:"element"`
	Multiplier float64 `json:"multiplier"`
	TurnsLeft  int     `json:"turns_left"`
}

// ActionType names the supported game actions.
type ActionType string

const (
	ActionPlayCard   ActionType = "play_card"
	ActionAttack     ActionType = "attack"
	ActionUseAbility ActionType = "use_ability"
	ActionEndTurn    ActionType = "end_turn"
)

// GameAction is an untrusted request to change the game state.
type GameAction struct {
	Type         ActionType `json:"type"`
	PlayerID     string     `json:"player_id"`
	CardID       string     `json:"card_id,omitempty"`
	AbilityID    string     `json:"ability_id,omitempty"`
	TargetID     string     `json:"target_id,omitempty"`
	TargetPlayer bool       `json:"target_player,omitempty"`
	// Turn, when non-zero, makes the action valid only on that turn. Timers
	// and the AI use it so a late submission cannot act on a newer turn.
	Turn int `json:"turn,omitempty"`
}

// ActionRecord is one entry of the append-only history.
type ActionRecord struct {
	ID        string     `json:"id"`
	Action    GameAction `json:"action"`
	Turn      int        `json:"turn"`
	Timestamp time.Time  `json:"timestamp"`
	Message   string     `json:"message"`
}

// GameState is the single source of truth for one match.
type GameState struct {
	MatchID       string         `json:"match_id"`
	Turn          int            `json:"turn"`
	Phase         Phase          `json:"phase"`
	CurrentPlayer int            `json:"current_player"`
	Players       [2]Player      `json:"players"`
	Weather       string         `json:"weather,omitempty"`
	Terrain       string         `json:"terrain,omitempty"`
	GlobalEffects []GlobalEffect `json:"global_effects,omitempty"`
	History       []ActionRecord `json:"history"`
	Status        string         `json:"status"`
	Winner        string         `json:"winner,omitempty"`
	EndReason     string         `json:"end_reason,omitempty"`
}

// Clone returns a deep copy; handlers mutate the copy, never the original.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Players[0] = s.Players[0].Clone()
	out.Players[1] = s.Players[1].Clone()
	out.GlobalEffects = append([]GlobalEffect(nil), s.GlobalEffects...)
	out.History = append([]ActionRecord(nil), s.History...)
	return &out
}

// PlayerIndex maps a player id to 0/1, or -1 when unknown.
func (s *GameState) PlayerIndex(id string) int {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// Active returns the player whose turn it is.
func (s *GameState) Active() *Player { return &s.Players[s.CurrentPlayer] }

// Opponent returns the player waiting for their turn.
func (s *GameState) Opponent() *Player { return &s.Players[1-s.CurrentPlayer] }

// IsOver reports whether a terminal condition was reached.
func (s *GameState) IsOver() bool { return s.Status == StatusFinished }
