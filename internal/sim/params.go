package sim

import (
	"log"
	"math"
	"sort"

	"github.com/zanngujjar/Big-Bird-Portfolio/internal/models"
)

// tradingDays is the number of trading days in a year, used both for
// annualizing daily statistics and as the simulation step size.
const tradingDays = 252

const dt = 1.0 / tradingDays

// EstimateParameters turns each symbol's historical closing prices into
// annualized GBM parameters and an initial position. A symbol with fewer
// prices than the lookback window degrades to a zero-contribution asset
// instead of failing the run.
func EstimateParameters(samplePrices map[string][]float64, allocations map[string]float64, lookback int, totalAmount float64) map[string]models.AssetParameters {
	params := make(map[string]models.AssetParameters, len(samplePrices))

	for _, symbol := range sortedKeys(samplePrices) {
		series := samplePrices[symbol]
		if len(series) < lookback {
			log.Printf("estimator: %s has %d prices, lookback needs %d; treating as zero contribution", symbol, len(series), lookback)
			params[symbol] = models.AssetParameters{Symbol: symbol}
			continue
		}

		window := series[len(series)-lookback:]
		returns := logReturns(window)
		mean := meanOf(returns)
		stddev := sampleStdDev(returns, mean)

		lastPrice := window[len(window)-1]
		shares := 0.0
		if lastPrice > 0 {
			shares = (totalAmount * allocations[symbol] / 100) / lastPrice
		}

		params[symbol] = models.AssetParameters{
			Symbol:     symbol,
			Drift:      mean * tradingDays,
			Volatility: stddev * math.Sqrt(tradingDays),
			LastPrice:  lastPrice,
			Shares:     shares,
		}
	}

	return params
}

// logReturns computes ln(p_i / p_{i-1}) over adjacent pairs, skipping any
// pair with a non-positive price rather than zero-filling it.
func logReturns(prices []float64) []float64 {
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i] <= 0 || prices[i-1] <= 0 {
			continue
		}
		returns = append(returns, math.Log(prices[i]/prices[i-1]))
	}
	return returns
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total / float64(len(xs))
}

// sampleStdDev uses the n-1 denominator, returning zero when there are not
// enough returns to measure spread.
func sampleStdDev(xs []float64, mean float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	total := 0.0
	for _, x := range xs {
		d := x - mean
		total += d * d
	}
	return math.Sqrt(total / float64(len(xs)-1))
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
