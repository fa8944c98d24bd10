package catalog

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"papertrade-go/internal/ledger"
)

// ChartPoint is one sample of a fabricated price series.
type ChartPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// chartRange describes the span and resolution of one chart timeframe.
type chartRange struct {
	span time.Duration
	step time.Duration
}

var chartRanges = map[string]chartRange{
	"1D": {span: 24 * time.Hour, step: 15 * time.Minute},
	"1W": {span: 7 * 24 * time.Hour, step: 2 * time.Hour},
	"1M": {span: 30 * 24 * time.Hour, step: 8 * time.Hour},
	"3M": {span: 90 * 24 * time.Hour, step: 24 * time.Hour},
	"1Y": {span: 365 * 24 * time.Hour, step: 4 * 24 * time.Hour},
	"3Y": {span: 3 * 365 * 24 * time.Hour, step: 12 * 24 * time.Hour},
}

// ChartSeries fabricates a deterministic price series for a symbol and
// timeframe. The walk is seeded by (symbol, range) so repeated requests
// render the same chart, and it is anchored to end at the instrument's
// current price.
func (c *Catalog) ChartSeries(symbol, rng string, now time.Time) ([]ChartPoint, error) {
	cr, ok := chartRanges[rng]
	if !ok {
		return nil, fmt.Errorf("unknown chart range '%s': %w", rng, ledger.ErrValidation)
	}

	inst, err := c.Lookup(symbol)
	if err != nil {
		return nil, err
	}

	h := fnv.New64a()
	h.Write([]byte(symbol + ":" + rng))
	walk := rand.New(rand.NewSource(int64(h.Sum64())))

	points := int(cr.span/cr.step) + 1
	series := make([]ChartPoint, points)

	// Walk backward from the anchor price so the series always lands on the
	// live catalog value.
	price := inst.Price
	end := now.Truncate(cr.step)
	for i := points - 1; i >= 0; i-- {
		series[i] = ChartPoint{
			Timestamp: end.Add(-time.Duration(points-1-i) * cr.step),
			Price:     round2(price),
		}
		drift := (walk.Float64() - 0.5) * 0.04 // ±2% per step
		price = price / (1 + drift)
		if price <= 0 {
			price = inst.Price * 0.01
		}
	}

	return series, nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
