package engine

import "github.com/ericogr/elemental-cards/internal/game"

// End reasons stored in GameState.EndReason.
const (
	EndHealthDepleted = "health_depleted"
	EndOutOfCards     = "out_of_cards"
	EndDraw           = "draw"
	EndForfeit        = "forfeit"
)

// CheckGameEnd marks s finished when a player is out of health or out of
// both deck and hand. Both players losing at once is a draw. It reports
// whether the game is over.
func CheckGameEnd(s *game.GameState) bool {
	if s.IsOver() {
		return true
	}
	var lost [2]bool
	var reason [2]string
	for i := range s.Players {
		p := &s.Players[i]
		switch {
		case p.Health <= 0:
			lost[i], reason[i] = true, EndHealthDepleted
		case len(p.Deck) == 0 && len(p.Hand) == 0:
			lost[i], reason[i] = true, EndOutOfCards
		}
	}
	switch {
	case lost[0] && lost[1]:
		s.Winner = ""
		s.EndReason = EndDraw
	case lost[0]:
		s.Winner = s.Players[1].ID
		s.EndReason = reason[0]
	case lost[1]:
		s.Winner = s.Players[0].ID
		s.EndReason = reason[1]
	default:
		return false
	}
	s.Status = game.StatusFinished
	s.Phase = game.PhaseEnd
	return true
}

func endMessage(s *game.GameState) string {
	if s.Winner == "" {
		return "the match ends in a draw"
	}
	for _, p := range s.Players {
		if p.ID == s.Winner {
			return "victory for " + p.Name
		}
	}
	return "the match is over"
}
