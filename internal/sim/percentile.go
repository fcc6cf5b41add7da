package sim

import (
	"sort"

	"github.com/zanngujjar/Big-Bird-Portfolio/internal/models"
)

// Aggregate collapses the complete set of trajectories into per-day
// percentile bands. It must only be called once every configured simulation
// has finished; it never summarizes a partial set.
func Aggregate(paths []models.Path, steps int) []models.Band {
	bands := make([]models.Band, 0, steps+1)
	cross := make([]float64, len(paths))

	for day := 0; day <= steps; day++ {
		for i, path := range paths {
			cross[i] = path[day].Value
		}
		sort.Float64s(cross)
		bands = append(bands, models.Band{
			Day: day,
			P5:  percentile(cross, 0.05),
			P50: percentile(cross, 0.50),
			P95: percentile(cross, 0.95),
		})
	}

	return bands
}

// percentile reads the floor(n*p) order statistic from an ascending slice.
// The floor convention is what downstream consumers were validated against;
// do not replace it with an interpolated form.
func percentile(sorted []float64, p float64) float64 {
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
