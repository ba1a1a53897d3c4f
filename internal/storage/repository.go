package storage

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/camuig/stock-quest/internal/snapshot"
)

// Repository stores one portfolio snapshot across three tables. Every Save
// replaces the previous contents.
type Repository struct {
	db   *gorm.DB
	path string

	// recovered is the open error of a file OpenRepository replaced.
	recovered error
}

func NewRepository(db *gorm.DB, path string) *Repository {
	return &Repository{db: db, path: path}
}

func (r *Repository) Close() error {
	return Close(r.db)
}

func (r *Repository) Save(s *snapshot.Snapshot) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		rec := PortfolioRecord{
			ID:              portfolioRowID,
			Version:         s.Version,
			Name:            s.Name,
			Level:           s.Level,
			Experience:      s.Experience,
			DailyProfitLoss: s.DailyProfitLoss,
			TotalTrades:     s.Stats.TotalTrades,
			WinningTrades:   s.Stats.WinningTrades,
			LosingTrades:    s.Stats.LosingTrades,
			DaysActive:      s.Stats.DaysActive,
			LastActiveDay:   s.LastActiveDay,
		}
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("save portfolio: %w", err)
		}

		if err := tx.Where("1 = 1").Delete(&HoldingRecord{}).Error; err != nil {
			return fmt.Errorf("clear holdings: %w", err)
		}
		if len(s.Holdings) > 0 {
			rows := make([]HoldingRecord, 0, len(s.Holdings))
			for i, h := range s.Holdings {
				rows = append(rows, HoldingRecord{
					Position:     i,
					Name:         h.Name,
					Symbol:       h.Symbol,
					Quantity:     h.Quantity,
					BuyPrice:     h.BuyPrice,
					CurrentPrice: h.CurrentPrice,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("save holdings: %w", err)
			}
		}

		if err := tx.Where("1 = 1").Delete(&AchievementRecord{}).Error; err != nil {
			return fmt.Errorf("clear achievements: %w", err)
		}
		if len(s.Achievements) > 0 {
			rows := make([]AchievementRecord, 0, len(s.Achievements))
			for i, name := range s.Achievements {
				rows = append(rows, AchievementRecord{Position: i, Name: name})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("save achievements: %w", err)
			}
		}
		return nil
	})
}

func (r *Repository) Load() (*snapshot.Snapshot, error) {
	var rec PortfolioRecord
	err := r.db.First(&rec, portfolioRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if r.recovered != nil {
			return nil, r.loadError(fmt.Errorf("%w: %v", snapshot.ErrCorrupt, r.recovered))
		}
		return nil, r.loadError(snapshot.ErrNotFound)
	}
	if err != nil {
		return nil, r.loadError(fmt.Errorf("%w: %v", snapshot.ErrCorrupt, err))
	}
	if rec.Version != snapshot.Version {
		return nil, r.loadError(fmt.Errorf("%w: got %d, want %d", snapshot.ErrIncompatible, rec.Version, snapshot.Version))
	}

	var holdings []HoldingRecord
	if err := r.db.Order("position ASC").Find(&holdings).Error; err != nil {
		return nil, r.loadError(fmt.Errorf("%w: %v", snapshot.ErrCorrupt, err))
	}
	var achievements []AchievementRecord
	if err := r.db.Order("position ASC").Find(&achievements).Error; err != nil {
		return nil, r.loadError(fmt.Errorf("%w: %v", snapshot.ErrCorrupt, err))
	}

	s := &snapshot.Snapshot{
		Version:         rec.Version,
		Name:            rec.Name,
		Holdings:        make([]snapshot.Holding, 0, len(holdings)),
		Level:           rec.Level,
		Experience:      rec.Experience,
		DailyProfitLoss: rec.DailyProfitLoss,
		Achievements:    make([]string, 0, len(achievements)),
		Stats: snapshot.Stats{
			TotalTrades:   rec.TotalTrades,
			WinningTrades: rec.WinningTrades,
			LosingTrades:  rec.LosingTrades,
			DaysActive:    rec.DaysActive,
		},
		LastActiveDay: rec.LastActiveDay,
	}
	for _, h := range holdings {
		s.Holdings = append(s.Holdings, snapshot.Holding{
			Name:         h.Name,
			Symbol:       h.Symbol,
			Quantity:     h.Quantity,
			BuyPrice:     h.BuyPrice,
			CurrentPrice: h.CurrentPrice,
		})
	}
	for _, a := range achievements {
		s.Achievements = append(s.Achievements, a.Name)
	}
	return s, nil
}

func (r *Repository) loadError(err error) error {
	return &snapshot.LoadError{Path: r.path, Err: err}
}

var _ snapshot.Store = (*Repository)(nil)
