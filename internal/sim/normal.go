package sim

import "math"

// Uniform is a source of uniformly distributed values in [0,1).
// *math/rand.Rand satisfies it.
type Uniform interface {
	Float64() float64
}

// NormFloat64 draws one standard normal value from src using the Box-Muller
// transform. Uniforms that come back exactly zero are re-drawn so the
// logarithm stays finite. The paired sine value is discarded, so each call
// consumes two fresh draws and keeps no state between calls.
func NormFloat64(src Uniform) float64 {
	u := src.Float64()
	for u == 0 {
		u = src.Float64()
	}
	v := src.Float64()
	for v == 0 {
		v = src.Float64()
	}
	return math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
}
