package ai

import (
	"github.com/ericogr/elemental-cards/internal/ability"
	"github.com/ericogr/elemental-cards/internal/engine"
	"github.com/ericogr/elemental-cards/internal/game"
)

// GamePhase is a coarse label derived from the turn number.
type GamePhase string

const (
	PhaseEarly GamePhase = "early"
	PhaseMid   GamePhase = "mid"
	PhaseLate  GamePhase = "late"
)

// OpportunityKind classifies an Opportunity.
type OpportunityKind string

const (
	OpportunityCombo     OpportunityKind = "combo"
	OpportunityAdvantage OpportunityKind = "advantage"
	OpportunityLethal    OpportunityKind = "lethal"
)

// LethalRange is the opponent health at or below which the AI pushes damage.
const LethalRange = 20

// Opportunity is something worth exploiting on the current board.
type Opportunity struct {
	Kind       OpportunityKind `json:"kind"`
	CardID     string          `json:"card_id,omitempty"`
	PartnerID  string          `json:"partner_id,omitempty"`
	Multiplier float64         `json:"multiplier,omitempty"`
	Detail     string          `json:"detail,omitempty"`
}

// GameAnalysis is a snapshot of the board from one player's point of view.
// Deltas are own value minus opponent value.
type GameAnalysis struct {
	HealthDelta   int           `json:"health_delta"`
	ManaDelta     int           `json:"mana_delta"`
	FieldDelta    int           `json:"field_delta"`
	HandDelta     int           `json:"hand_delta"`
	ThreatLevel   int           `json:"threat_level"`
	Opportunities []Opportunity `json:"opportunities"`
	Phase         GamePhase     `json:"phase"`
}

// Has reports whether an opportunity of kind k was found.
func (g GameAnalysis) Has(k OpportunityKind) bool {
	for _, o := range g.Opportunities {
		if o.Kind == k {
			return true
		}
	}
	return false
}

// PhaseForTurn maps a turn number to a game phase.
func PhaseForTurn(turn int) GamePhase {
	switch {
	case turn <= 4:
		return PhaseEarly
	case turn <= 10:
		return PhaseMid
	}
	return PhaseLate
}

// Analyze inspects state for playerID. Unknown players get a zero value.
func Analyze(state *game.GameState, playerID string) GameAnalysis {
	idx := state.PlayerIndex(playerID)
	if idx < 0 {
		return GameAnalysis{Phase: PhaseForTurn(state.Turn)}
	}
	me := &state.Players[idx]
	opp := &state.Players[1-idx]

	ga := GameAnalysis{
		HealthDelta: me.Health - opp.Health,
		ManaDelta:   me.Mana - opp.Mana,
		FieldDelta:  len(me.Field) - len(opp.Field),
		HandDelta:   len(me.Hand) - len(opp.Hand),
		ThreatLevel: threatLevel(opp),
		Phase:       PhaseForTurn(state.Turn),
	}

	for i := range me.Hand {
		h := &me.Hand[i]
		if h.Type == game.Spell || h.ManaCost > me.Mana {
			continue
		}
		for j := range me.Field {
			if name := ability.ComboName(h.Element, me.Field[j].Element); name != "" {
				ga.Opportunities = append(ga.Opportunities, Opportunity{
					Kind: OpportunityCombo, CardID: h.InstanceID, PartnerID: me.Field[j].InstanceID, Detail: name,
				})
			}
		}
	}
	for i := range me.Field {
		c := &me.Field[i]
		if c.Type != game.Creature {
			continue
		}
		for j := range opp.Field {
			mu := engine.Effectiveness(c.Element, opp.Field[j].Element)
			if mu.Multiplier > 1 {
				ga.Opportunities = append(ga.Opportunities, Opportunity{
					Kind: OpportunityAdvantage, CardID: c.InstanceID, PartnerID: opp.Field[j].InstanceID,
					Multiplier: mu.Multiplier, Detail: mu.Message,
				})
			}
		}
	}
	if opp.Health <= LethalRange {
		ga.Opportunities = append(ga.Opportunities, Opportunity{Kind: OpportunityLethal, Detail: opp.Name})
	}
	return ga
}

// threatLevel rates the opponent's potential from field power, mana and
// hand size on a 0..100 scale.
func threatLevel(opp *game.Player) int {
	power := 0
	for i := range opp.Field {
		power += engine.AttackPower(&opp.Field[i])
	}
	t := power*4 + opp.Mana*2 + len(opp.Hand)*2
	if t > 100 {
		t = 100
	}
	if t < 0 {
		t = 0
	}
	return t
}

// Analyze is the package function from this session's seat.
func (s *Session) Analyze(state *game.GameState) GameAnalysis {
	return Analyze(state, s.playerID)
}
