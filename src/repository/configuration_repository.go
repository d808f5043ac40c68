package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"webhookrelay/src/errs"
	"webhookrelay/src/model"
)

// ConfigurationStore holds the configuration singleton and the trading pair overrides.
type ConfigurationStore interface {
	Get(ctx context.Context) (*model.Configuration, error)
	Update(ctx context.Context, patch model.ConfigurationPatch) (*model.Configuration, error)

	ListTradingPairs(ctx context.Context) ([]model.TradingPair, error)
	GetTradingPair(ctx context.Context, symbol string) (*model.TradingPair, error)
	CreateTradingPair(ctx context.Context, in model.TradingPairInput) (*model.TradingPair, error)
	UpdateTradingPair(ctx context.Context, symbol string, patch model.TradingPairPatch) (*model.TradingPair, error)
	DeleteTradingPair(ctx context.Context, symbol string) error
}

func pairNotFound(symbol string) error {
	return fmt.Errorf("trading pair %s: %w", symbol, errs.ErrNotFound)
}

func pairConflict(symbol string) error {
	return fmt.Errorf("trading pair %s already exists: %w", symbol, errs.ErrConflict)
}

// ---------------------------------------------------
// In-memory store
// ---------------------------------------------------

// MemoryConfigurationRepository keeps everything in process memory.
// Concurrent updates are last-write-wins.
type MemoryConfigurationRepository struct {
	mu     sync.RWMutex
	config model.Configuration
	pairs  map[string]model.TradingPair
	nextID uint
	now    func() time.Time
}

// NewMemoryConfigurationRepository starts from the default configuration and the given pairs.
func NewMemoryConfigurationRepository(seed []model.TradingPair) *MemoryConfigurationRepository {
	r := &MemoryConfigurationRepository{
		pairs: make(map[string]model.TradingPair, len(seed)),
		now:   time.Now,
	}
	r.config = model.DefaultConfiguration(r.now().UTC())

	for _, p := range seed {
		r.nextID++
		p.ID = r.nextID
		if p.CreatedAt.IsZero() {
			p.CreatedAt = r.config.UpdatedAt
		}
		r.pairs[p.Symbol] = p
	}
	return r
}

func (r *MemoryConfigurationRepository) Get(_ context.Context) (*model.Configuration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg := r.config
	return &cfg, nil
}

func (r *MemoryConfigurationRepository) Update(_ context.Context, patch model.ConfigurationPatch) (*model.Configuration, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	patch.Apply(&r.config, r.now().UTC())
	cfg := r.config
	return &cfg, nil
}

func (r *MemoryConfigurationRepository) ListTradingPairs(_ context.Context) ([]model.TradingPair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.TradingPair, 0, len(r.pairs))
	for _, p := range r.pairs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryConfigurationRepository) GetTradingPair(_ context.Context, symbol string) (*model.TradingPair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pairs[symbol]
	if !ok {
		return nil, pairNotFound(symbol)
	}
	return &p, nil
}

func (r *MemoryConfigurationRepository) CreateTradingPair(_ context.Context, in model.TradingPairInput) (*model.TradingPair, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pairs[in.Symbol]; exists {
		return nil, pairConflict(in.Symbol)
	}

	r.nextID++
	p := in.ToTradingPair(r.now().UTC())
	p.ID = r.nextID
	r.pairs[p.Symbol] = p
	return &p, nil
}

func (r *MemoryConfigurationRepository) UpdateTradingPair(_ context.Context, symbol string, patch model.TradingPairPatch) (*model.TradingPair, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pairs[symbol]
	if !ok {
		return nil, pairNotFound(symbol)
	}
	patch.Apply(&p)
	r.pairs[symbol] = p
	return &p, nil
}

func (r *MemoryConfigurationRepository) DeleteTradingPair(_ context.Context, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pairs[symbol]; !ok {
		return pairNotFound(symbol)
	}
	delete(r.pairs, symbol)
	return nil
}

// ---------------------------------------------------
// Gorm store
// ---------------------------------------------------

// GormConfigurationRepository keeps the configuration as row 1 of the
// configurations table and pairs in trading_pairs.
type GormConfigurationRepository struct {
	db *gorm.DB
}

func NewGormConfigurationRepository(db *gorm.DB) *GormConfigurationRepository {
	logger.WithField("component", "GormConfigurationRepository").Debug("Creating configuration repository")
	return &GormConfigurationRepository{db: db}
}

func (r *GormConfigurationRepository) Get(ctx context.Context) (*model.Configuration, error) {
	cfg, err := loadConfiguration(r.db.WithContext(ctx))
	if err != nil {
		return nil, &errs.PersistenceError{Op: "load configuration", Err: err}
	}
	return cfg, nil
}

// loadConfiguration returns the stored singleton, inserting the defaults on first use.
func loadConfiguration(tx *gorm.DB) (*model.Configuration, error) {
	var cfg model.Configuration
	err := tx.First(&cfg, model.ConfigurationID).Error
	if err == nil {
		return &cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cfg = model.DefaultConfiguration(time.Now().UTC())
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *GormConfigurationRepository) Update(ctx context.Context, patch model.ConfigurationPatch) (*model.Configuration, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var out *model.Configuration
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cfg, err := loadConfiguration(tx)
		if err != nil {
			return err
		}
		patch.Apply(cfg, time.Now().UTC())
		if err := tx.Save(cfg).Error; err != nil {
			return err
		}
		out = cfg
		return nil
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "GormConfigurationRepository",
			"op":   "Update",
		}).WithError(err).Error("Failed to update configuration")

		return nil, &errs.PersistenceError{Op: "update configuration", Err: err}
	}
	return out, nil
}

func (r *GormConfigurationRepository) ListTradingPairs(ctx context.Context) ([]model.TradingPair, error) {
	var out []model.TradingPair
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, &errs.PersistenceError{Op: "list trading pairs", Err: err}
	}
	return out, nil
}

func (r *GormConfigurationRepository) GetTradingPair(ctx context.Context, symbol string) (*model.TradingPair, error) {
	var p model.TradingPair
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pairNotFound(symbol)
	}
	if err != nil {
		return nil, &errs.PersistenceError{Op: "get trading pair", Err: err}
	}
	return &p, nil
}

func (r *GormConfigurationRepository) CreateTradingPair(ctx context.Context, in model.TradingPairInput) (*model.TradingPair, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p := in.ToTradingPair(time.Now().UTC())
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.TradingPair{}).Where("symbol = ?", p.Symbol).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return pairConflict(p.Symbol)
		}
		return tx.Create(&p).Error
	})

	switch {
	case err == nil:
		return &p, nil
	case errors.Is(err, errs.ErrConflict):
		return nil, err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, pairConflict(p.Symbol)
	default:
		return nil, &errs.PersistenceError{Op: "create trading pair", Err: err}
	}
}

func (r *GormConfigurationRepository) UpdateTradingPair(ctx context.Context, symbol string, patch model.TradingPairPatch) (*model.TradingPair, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var p model.TradingPair
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("symbol = ?", symbol).First(&p).Error; err != nil {
			return err
		}
		patch.Apply(&p)
		return tx.Save(&p).Error
	})

	switch {
	case err == nil:
		return &p, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pairNotFound(symbol)
	default:
		return nil, &errs.PersistenceError{Op: "update trading pair", Err: err}
	}
}

func (r *GormConfigurationRepository) DeleteTradingPair(ctx context.Context, symbol string) error {
	res := r.db.WithContext(ctx).Where("symbol = ?", symbol).Delete(&model.TradingPair{})
	if res.Error != nil {
		return &errs.PersistenceError{Op: "delete trading pair", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return pairNotFound(symbol)
	}
	return nil
}
