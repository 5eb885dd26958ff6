package storage

import (
	"errors"
	"time"

	"github.com/ericogr/elemental-cards/internal/progression"
)

var (
	ErrInsufficientInventory = errors.New("not enough copies in inventory")
	ErrInvalidQuantity       = errors.New("quantity must not be zero")
)

// InventoryItem counts the spare copies of a card template an owner holds.
// Spare copies are what evolution and fusion consume as materials.
type InventoryItem struct {
	OwnerID  string `json:"owner_id" gorm:"primaryKey"`
	CardID   string `json:"card_id" gorm:"primaryKey"`
	Quantity int    `json:"quantity"`
}

// MatchResult is the persisted summary of a finished match.
type MatchResult struct {
	MatchID   string    `json:"match_id" gorm:"primaryKey"`
	PlayerIDs []string  `json:"player_ids" gorm:"serializer:json"`
	WinnerID  string    `json:"winner_id,omitempty" gorm:"index"`
	Reason    string    `json:"reason"`
	Turns     int       `json:"turns"`
	Actions   int       `json:"actions"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at" gorm:"index"`
}

// Involves reports whether playerID took part in the match.
func (m MatchResult) Involves(playerID string) bool {
	for _, id := range m.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// Repository is everything the services persist.
type Repository interface {
	progression.Repository

	GetInventory(ownerID string) (progression.Inventory, error)
	// AdjustInventory adds delta copies of cardID; negative deltas fail with
	// ErrInsufficientInventory rather than going below zero.
	AdjustInventory(ownerID, cardID string, delta int) error

	SaveMatchResult(r *MatchResult) error
	// ListMatchResults returns the most recent results involving playerID,
	// newest first. limit <= 0 means no limit.
	ListMatchResults(playerID string, limit int) ([]MatchResult, error)
}
