package catalog

import (
	"testing"
	"time"

	"papertrade-go/internal/ledger"
	"papertrade-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalog(t *testing.T) *Catalog {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Instrument{}))

	require.NoError(t, db.Create(&models.Instrument{Symbol: "AAPL", Name: "Apple Inc.", Price: 182.50}).Error)
	require.NoError(t, db.Create(&models.Instrument{Symbol: "TSLA", Name: "Tesla, Inc.", Price: 244.10}).Error)

	return New(db, zap.NewNop())
}

func TestLookup(t *testing.T) {
	c := setupCatalog(t)

	inst, err := c.Lookup("AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", inst.Name)
	assert.Equal(t, 182.50, inst.Price)

	_, err = c.Lookup("NOPE")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestList_OrderedBySymbol(t *testing.T) {
	c := setupCatalog(t)

	instruments, err := c.List()
	require.NoError(t, err)
	require.Len(t, instruments, 2)
	assert.Equal(t, "AAPL", instruments[0].Symbol)
	assert.Equal(t, "TSLA", instruments[1].Symbol)
}

func TestUpdatePrices(t *testing.T) {
	c := setupCatalog(t)

	updated, err := c.UpdatePrices(map[string]float64{
		"AAPL": 190.00,
		"TSLA": -1,     // invalid, skipped
		"MSFT": 400.00, // not in catalog, skipped
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	inst, err := c.Lookup("AAPL")
	require.NoError(t, err)
	assert.Equal(t, 190.00, inst.Price)

	inst, err = c.Lookup("TSLA")
	require.NoError(t, err)
	assert.Equal(t, 244.10, inst.Price)
}

func TestChartSeries(t *testing.T) {
	c := setupCatalog(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Deterministic", func(t *testing.T) {
		first, err := c.ChartSeries("AAPL", "1D", now)
		require.NoError(t, err)
		second, err := c.ChartSeries("AAPL", "1D", now)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("AnchoredAtCurrentPrice", func(t *testing.T) {
		series, err := c.ChartSeries("AAPL", "1W", now)
		require.NoError(t, err)
		require.NotEmpty(t, series)
		assert.Equal(t, 182.50, series[len(series)-1].Price)
	})

	t.Run("PositivePricesThroughout", func(t *testing.T) {
		series, err := c.ChartSeries("TSLA", "3Y", now)
		require.NoError(t, err)
		for _, p := range series {
			assert.Greater(t, p.Price, 0.0)
		}
	})

	t.Run("UnknownRange", func(t *testing.T) {
		_, err := c.ChartSeries("AAPL", "5Y", now)
		assert.ErrorIs(t, err, ledger.ErrValidation)
	})

	t.Run("UnknownSymbol", func(t *testing.T) {
		_, err := c.ChartSeries("NOPE", "1D", now)
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})
}
