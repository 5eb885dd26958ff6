package storage

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ericogr/elemental-cards/internal/progression"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func notFound(err error, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", progression.ErrNotFound, id)
	}
	return err
}

func (r *sqliteRepository) CreateProgression(p *progression.CardProgression) error {
	return r.db.Create(p).Error
}

func (r *sqliteRepository) GetProgression(id string) (*progression.CardProgression, error) {
	var p progression.CardProgression
	if err := r.db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err, id)
	}
	return &p, nil
}

func (r *sqliteRepository) UpdateProgression(p *progression.CardProgression) error {
	res := r.db.Model(&progression.CardProgression{}).Where("id = ?", p.ID).Select("*").Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", progression.ErrNotFound, p.ID)
	}
	return nil
}

func (r *sqliteRepository) ListProgressions(ownerID string) ([]progression.CardProgression, error) {
	var out []progression.CardProgression
	if err := r.db.Where("owner_id = ?", ownerID).Order("created_at asc, id asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sqliteRepository) GetInventory(ownerID string) (progression.Inventory, error) {
	var items []InventoryItem
	if err := r.db.Where("owner_id = ? AND quantity > 0", ownerID).Find(&items).Error; err != nil {
		return nil, err
	}
	inv := progression.Inventory{}
	for _, it := range items {
		inv[it.CardID] = it.Quantity
	}
	return inv, nil
}

func (r *sqliteRepository) AdjustInventory(ownerID, cardID string, delta int) error {
	if delta == 0 {
		return ErrInvalidQuantity
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		item := InventoryItem{OwnerID: ownerID, CardID: cardID}
		err := tx.Where("owner_id = ? AND card_id = ?", ownerID, cardID).First(&item).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if item.Quantity+delta < 0 {
			return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientInventory, cardID, item.Quantity, -delta)
		}
		item.Quantity += delta
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "card_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
		}).Create(&item).Error
	})
}

func (r *sqliteRepository) SaveMatchResult(m *MatchResult) error {
	return r.db.Save(m).Error
}

func (r *sqliteRepository) ListMatchResults(playerID string, limit int) ([]MatchResult, error) {
	var all []MatchResult
	// player ids live in a JSON column; filter in Go after a LIKE prefilter
	q := r.db.Where("player_ids LIKE ?", "%\""+playerID+"\"%").Order("ended_at desc")
	if err := q.Find(&all).Error; err != nil {
		return nil, err
	}
	out := make([]MatchResult, 0, len(all))
	for _, m := range all {
		if !m.Involves(playerID) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
