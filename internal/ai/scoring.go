package ai

import (
	"sort"

	"github.com/ericogr/elemental-cards/internal/ability"
	"github.com/ericogr/elemental-cards/internal/engine"
	"github.com/ericogr/elemental-cards/internal/game"
)

const (
	winScore   = 1000.0
	learnEvery = 10
	learnStep  = 0.05
	minWeight  = 0.5
	maxWeight  = 2.0
	noiseScale = 5.0
)

// Candidate is a legal action with its score.
type Candidate struct {
	Action game.GameAction `json:"action"`
	Score  float64         `json:"score"`
}

// Rank scores every legal action for the session's player, best first.
// Actions the engine would reject are left out.
func (s *Session) Rank(state *game.GameState) []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rank(state)
}

func (s *Session) rank(state *game.GameState) []Candidate {
	if state == nil || state.IsOver() || state.Active().ID != s.playerID {
		return nil
	}
	analysis := Analyze(state, s.playerID)
	actions := s.rules.LegalActions(state)
	out := make([]Candidate, 0, len(actions))
	for _, a := range actions {
		after, err := s.rules.Simulate(state, a)
		if err != nil {
			continue
		}
		out = append(out, Candidate{Action: a, Score: s.score(state, after, a, analysis)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// boardValue is the combat value of a player's field.
func boardValue(p *game.Player) float64 {
	v := 0.0
	for i := range p.Field {
		c := &p.Field[i]
		v += float64(engine.AttackPower(c)) + float64(c.Health)*0.75 +
			float64(engine.DefensePower(c)+c.StatusPower(game.StatusShield))*0.5
	}
	return v
}

// score compares the state before and after a, then weights the offensive
// and defensive parts by personality.
func (s *Session) score(before, after *game.GameState, a game.GameAction, ga GameAnalysis) float64 {
	mi := before.PlayerIndex(s.playerID)
	meB, oppB := &before.Players[mi], &before.Players[1-mi]
	meA, oppA := &after.Players[mi], &after.Players[1-mi]

	if after.IsOver() {
		switch after.Winner {
		case s.playerID:
			return winScore
		case "":
			return -winScore / 2
		default:
			return -winScore
		}
	}

	damage := float64(oppB.Health - oppA.Health)
	enemyLoss := boardValue(oppB) - boardValue(oppA)
	healing := float64(meA.Health - meB.Health)
	ownGain := boardValue(meA) - boardValue(meB)
	spent := meB.Mana - meA.Mana

	if ga.Has(OpportunityLethal) {
		damage *= 1.5
	}
	offense := damage*2 + enemyLoss*1.5
	defense := healing*1.5 + ownGain
	if ga.ThreatLevel > 60 {
		defense *= 1.5
		offense += enemyLoss * 0.5
	}

	misc := 0.0
	combo := 0.0
	switch a.Type {
	case game.ActionPlayCard:
		if spent > 0 {
			misc += (ownGain + enemyLoss + damage) / float64(spent) * 0.5
		}
		if ga.Phase == PhaseEarly {
			misc += 1
		}
		if card := findHand(meB, a.CardID); card != nil {
			for j := range meB.Field {
				if ability.ComboName(card.Element, meB.Field[j].Element) != "" {
					combo += 3
					break
				}
			}
		}
	case game.ActionAttack:
		attacker := meB.FieldCard(a.CardID)
		if a.TargetID != "" && attacker != nil {
			if target := oppB.FieldCard(a.TargetID); target != nil {
				misc += (engine.Effectiveness(attacker.Element, target.Element).Multiplier - 1) * 2
			}
		}
		if a.TargetPlayer && ga.Phase == PhaseLate {
			misc += 1
		}
	case game.ActionUseAbility:
		if spent > 0 {
			misc -= float64(spent) * 0.25
		}
	case game.ActionEndTurn:
		// Leaving mana unused is a small waste.
		misc -= float64(meB.Mana) * 0.1
	}

	w := s.weights
	total := offense*w.Aggression + defense*w.Defense + combo*w.Combo + misc
	if w.Noise > 0 {
		total += (s.rng.Float64()*2 - 1) * w.Noise * noiseScale
	}
	return total
}

func findHand(p *game.Player, id string) *game.Card {
	if i := p.HandIndex(id); i >= 0 {
		return &p.Hand[i]
	}
	return nil
}

// learn nudges aggression toward the side holding the health lead: ahead
// means press, behind means protect.
func (s *Session) learn(state *game.GameState) {
	lead := Analyze(state, s.playerID).HealthDelta
	switch {
	case lead > 0:
		s.weights.Aggression += learnStep
		s.weights.Defense -= learnStep
	case lead < 0:
		s.weights.Aggression -= learnStep
		s.weights.Defense += learnStep
	default:
		return
	}
	s.weights.Aggression = clamp(s.weights.Aggression, minWeight, maxWeight)
	s.weights.Defense = clamp(s.weights.Defense, minWeight, maxWeight)
}
