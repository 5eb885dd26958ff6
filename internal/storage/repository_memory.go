package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ericogr/elemental-cards/internal/progression"
)

type memoryRepository struct {
	mu           sync.RWMutex
	progressions map[string]progression.CardProgression
	inventory    map[string]progression.Inventory
	results      map[string]MatchResult
}

// NewMemoryRepository returns a process-local Repository. Records are copied
// in and out so callers never share slices with the store.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		progressions: map[string]progression.CardProgression{},
		inventory:    map[string]progression.Inventory{},
		results:      map[string]MatchResult{},
	}
}

func copyProgression(p progression.CardProgression) progression.CardProgression {
	p.UnlockedAbilities = append([]string{}, p.UnlockedAbilities...)
	hist := make([]progression.EvolutionRecord, len(p.EvolutionHistory))
	for i, h := range p.EvolutionHistory {
		h.NewAbilities = append([]string(nil), h.NewAbilities...)
		h.Consumed = append([]string(nil), h.Consumed...)
		hist[i] = h
	}
	p.EvolutionHistory = hist
	return p
}

func (r *memoryRepository) CreateProgression(p *progression.CardProgression) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.progressions[p.ID]; ok {
		return fmt.Errorf("progression %s already exists", p.ID)
	}
	r.progressions[p.ID] = copyProgression(*p)
	return nil
}

func (r *memoryRepository) GetProgression(id string) (*progression.CardProgression, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.progressions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", progression.ErrNotFound, id)
	}
	c := copyProgression(p)
	return &c, nil
}

func (r *memoryRepository) UpdateProgression(p *progression.CardProgression) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.progressions[p.ID]; !ok {
		return fmt.Errorf("%w: %s", progression.ErrNotFound, p.ID)
	}
	r.progressions[p.ID] = copyProgression(*p)
	return nil
}

func (r *memoryRepository) ListProgressions(ownerID string) ([]progression.CardProgression, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []progression.CardProgression{}
	for _, p := range r.progressions {
		if p.OwnerID == ownerID {
			out = append(out, copyProgression(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memoryRepository) GetInventory(ownerID string) (progression.Inventory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv := progression.Inventory{}
	for id, n := range r.inventory[ownerID] {
		if n > 0 {
			inv[id] = n
		}
	}
	return inv, nil
}

func (r *memoryRepository) AdjustInventory(ownerID, cardID string, delta int) error {
	if delta == 0 {
		return ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	inv := r.inventory[ownerID]
	if inv == nil {
		inv = progression.Inventory{}
		r.inventory[ownerID] = inv
	}
	if inv[cardID]+delta < 0 {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientInventory, cardID, inv[cardID], -delta)
	}
	inv[cardID] += delta
	return nil
}

func (r *memoryRepository) SaveMatchResult(m *MatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *m
	c.PlayerIDs = append([]string(nil), m.PlayerIDs...)
	r.results[m.MatchID] = c
	return nil
}

func (r *memoryRepository) ListMatchResults(playerID string, limit int) ([]MatchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []MatchResult{}
	for _, m := range r.results {
		if m.Involves(playerID) {
			m.PlayerIDs = append([]string(nil), m.PlayerIDs...)
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
