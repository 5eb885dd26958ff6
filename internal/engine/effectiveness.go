package engine

import (
	"fmt"

	"github.com/ericogr/elemental-cards/internal/game"
)

// Matchup is the outcome of an elemental lookup.
type Matchup struct {
	Multiplier float64 `json:"multiplier"`
	Message    string  `json:"message"`
}

// effectiveness[attacker][defender]. Pairs that are not listed are 1.0.
var effectiveness = map[game.Element]map[game.Element]float64{
	game.Fire:   {game.Water: 0.5, game.Earth: 1.5, game.Air: 1.25},
	game.Water:  {game.Fire: 1.5, game.Earth: 0.75},
	game.Earth:  {game.Fire: 0.75, game.Water: 1.25, game.Air: 0.5},
	game.Air:    {game.Fire: 0.75, game.Earth: 1.5},
	game.Light:  {game.Light: 0.5, game.Shadow: 2.0},
	game.Shadow: {game.Light: 2.0, game.Shadow: 0.5},
}

// Effectiveness returns the damage multiplier of attacker against defender.
func Effectiveness(attacker, defender game.Element) Matchup {
	m := 1.0
	if row, ok := effectiveness[attacker]; ok {
		if v, ok := row[defender]; ok {
			m = v
		}
	}
	return Matchup{Multiplier: m, Message: matchupMessage(attacker, defender, m)}
}

func matchupMessage(attacker, defender game.Element, m float64) string {
	switch {
	case m >= 2.0:
		return fmt.Sprintf("%s devastates %s", attacker, defender)
	case m > 1.0:
		return fmt.Sprintf("%s is super effective against %s", attacker, defender)
	case m < 1.0:
		return fmt.Sprintf("%s is not very effective against %s", attacker, defender)
	}
	return "normal effectiveness"
}
