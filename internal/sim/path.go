package sim

import (
	"math"

	"github.com/zanngujjar/Big-Bird-Portfolio/internal/models"
)

// assetState is the running per-asset price for one trajectory, owned
// exclusively by that trajectory. The drift and diffusion terms are
// constant across the run so they are precomputed once.
type assetState struct {
	shares    float64
	price     float64
	driftTerm float64
	volTerm   float64
}

// Trajectory simulates one portfolio path across steps daily increments.
// Day 0 carries the initial portfolio value with no stochastic update; each
// later day advances every positive-volatility asset by one GBM step.
// Assets with zero volatility keep their price frozen, which is how
// zero-history assets stay at a constant zero contribution.
func Trajectory(symbols []string, params map[string]models.AssetParameters, steps int, src Uniform) models.Path {
	assets := make([]assetState, len(symbols))
	initial := 0.0
	for i, symbol := range symbols {
		p := params[symbol]
		assets[i] = assetState{
			shares:    p.Shares,
			price:     p.LastPrice,
			driftTerm: (p.Drift - 0.5*p.Volatility*p.Volatility) * dt,
			volTerm:   p.Volatility * math.Sqrt(dt),
		}
		initial += p.Shares * p.LastPrice
	}

	path := make(models.Path, 0, steps+1)
	path = append(path, models.PathPoint{Day: 0, Value: initial})

	for day := 1; day <= steps; day++ {
		value := 0.0
		for i := range assets {
			a := &assets[i]
			if a.volTerm > 0 {
				z := NormFloat64(src)
				a.price *= math.Exp(a.driftTerm + a.volTerm*z)
			}
			value += a.shares * a.price
		}
		path = append(path, models.PathPoint{Day: day, Value: value})
	}

	return path
}
