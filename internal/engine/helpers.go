package engine

import (
	"fmt"

	"github.com/ericogr/elemental-cards/internal/game"
)

// drawCards moves up to n cards from the front of the deck. Cards drawn
// while the hand is at the soft cap are burned to the graveyard.
func drawCards(p *game.Player, n int) (drawn, burned int) {
	for i := 0; i < n && len(p.Deck) > 0; i++ {
		c := p.Deck[0]
		p.Deck = p.Deck[1:]
		if len(p.Hand) >= game.HandSoftCap {
			p.Graveyard = append(p.Graveyard, c)
			burned++
			continue
		}
		p.Hand = append(p.Hand, c)
		drawn++
	}
	p.DeckCount = len(p.Deck)
	return drawn, burned
}

// sweepDead moves every field card at or below zero health to the
// graveyard. A card leaves the field once, so it is only buried once.
func (ac *actionContext) sweepDead() {
	for i := range ac.s.Players {
		p := &ac.s.Players[i]
		alive := p.Field[:0]
		for _, c := range p.Field {
			if c.IsAlive() {
				alive = append(alive, c)
				continue
			}
			c.CanAttack = false
			c.CanUseAbilities = false
			p.Graveyard = append(p.Graveyard, c)
			ac.add(fmt.Sprintf("%s's %s is destroyed", p.Name, c.Name))
		}
		p.Field = alive
	}
}

// findFieldCard looks a card instance up on either side of the field.
func findFieldCard(s *game.GameState, instanceID string) (owner int, card *game.Card) {
	for i := range s.Players {
		if c := s.Players[i].FieldCard(instanceID); c != nil {
			return i, c
		}
	}
	return -1, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
