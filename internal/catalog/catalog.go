package catalog

import (
	"errors"
	"fmt"

	"papertrade-go/internal/ledger"
	"papertrade-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Catalog serves the static instrument list seeded at startup. Lookups are
// read-only from the trading side; only the quote refresher writes prices.
type Catalog struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates a catalog over the given database.
func New(db *gorm.DB, logger *zap.Logger) *Catalog {
	return &Catalog{db: db, logger: logger}
}

// Lookup returns the instrument with the given symbol.
func (c *Catalog) Lookup(symbol string) (*models.Instrument, error) {
	var inst models.Instrument
	err := c.db.First(&inst, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("instrument '%s': %w", symbol, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("instrument lookup for '%s' failed: %w", symbol, err)
	}
	return &inst, nil
}

// List returns every catalog instrument ordered by symbol.
func (c *Catalog) List() ([]models.Instrument, error) {
	var instruments []models.Instrument
	if err := c.db.Order("symbol").Find(&instruments).Error; err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	return instruments, nil
}

// UpdatePrices overwrites catalog prices from a quote snapshot. Symbols
// missing from the snapshot keep their current price. Returns the number of
// instruments updated.
func (c *Catalog) UpdatePrices(prices map[string]float64) (int, error) {
	instruments, err := c.List()
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, inst := range instruments {
		price, ok := prices[inst.Symbol]
		if !ok || price <= 0 || price == inst.Price {
			continue
		}
		if err := c.db.Model(&inst).Update("price", price).Error; err != nil {
			c.logger.Error("Failed to update instrument price",
				zap.String("symbol", inst.Symbol), zap.Error(err))
			continue
		}
		updated++
	}

	if updated > 0 {
		c.logger.Info("Refreshed catalog prices", zap.Int("updated", updated))
	}
	return updated, nil
}
