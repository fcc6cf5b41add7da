package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateParameters_InsufficientHistory(t *testing.T) {
	prices := map[string][]float64{"AAPL": {100, 101, 102}}
	allocations := map[string]float64{"AAPL": 100}

	params := EstimateParameters(prices, allocations, 252, 100000)

	require.Contains(t, params, "AAPL")
	p := params["AAPL"]
	assert.Zero(t, p.Drift)
	assert.Zero(t, p.Volatility)
	assert.Zero(t, p.LastPrice)
	assert.Zero(t, p.Shares)
}

func TestEstimateParameters_ConstantPrices(t *testing.T) {
	series := make([]float64, 260)
	for i := range series {
		series[i] = 100.0
	}
	prices := map[string][]float64{"SPY": series}
	allocations := map[string]float64{"SPY": 100}

	params := EstimateParameters(prices, allocations, 252, 100000)

	p := params["SPY"]
	assert.Zero(t, p.Drift, "constant prices have zero log returns")
	assert.Zero(t, p.Volatility)
	assert.Equal(t, 100.0, p.LastPrice)
	assert.Equal(t, 1000.0, p.Shares, "100% of $100k at $100")
}

func TestEstimateParameters_AnnualizedMoments(t *testing.T) {
	// Two known log returns: 0.02 and 0.04.
	prices := map[string][]float64{
		"X": {100, 100 * math.Exp(0.02), 100 * math.Exp(0.02) * math.Exp(0.04)},
	}
	allocations := map[string]float64{"X": 50}

	params := EstimateParameters(prices, allocations, 3, 10000)

	p := params["X"]
	wantDrift := 0.03 * 252
	wantVol := math.Sqrt(0.0002/1) * math.Sqrt(252) // sample stddev with n-1
	assert.InDelta(t, wantDrift, p.Drift, 1e-9)
	assert.InDelta(t, wantVol, p.Volatility, 1e-9)
	assert.InDelta(t, (10000*50/100)/p.LastPrice, p.Shares, 1e-9)
	assert.GreaterOrEqual(t, p.Volatility, 0.0)
}

func TestEstimateParameters_SkipsNonPositivePrices(t *testing.T) {
	prices := map[string][]float64{"Y": {100, -1, 100}}
	allocations := map[string]float64{"Y": 100}

	params := EstimateParameters(prices, allocations, 3, 100000)

	p := params["Y"]
	assert.Zero(t, p.Drift, "both adjacent pairs touch the bad print and are skipped")
	assert.Zero(t, p.Volatility)
	assert.Equal(t, 100.0, p.LastPrice)
}

func TestEstimateParameters_NonPositiveLastPrice(t *testing.T) {
	prices := map[string][]float64{"Z": {100, 100, -5}}
	allocations := map[string]float64{"Z": 100}

	params := EstimateParameters(prices, allocations, 3, 100000)

	assert.Zero(t, params["Z"].Shares, "cannot size a position at a non-positive price")
}

func TestSampleStdDev_TooFewReturns(t *testing.T) {
	assert.Zero(t, sampleStdDev(nil, 0))
	assert.Zero(t, sampleStdDev([]float64{0.05}, 0.05))
}
