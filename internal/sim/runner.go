package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/zanngujjar/Big-Bird-Portfolio/internal/models"
)

const (
	DefaultTotalSimulations = 1000
	DefaultTimeSteps        = 1260
	DefaultLookbackPeriod   = 252
	DefaultPortfolioAmount  = 100000
)

// Normalize fills the documented defaults into zero-valued request fields.
func Normalize(req models.SimulationRequest) models.SimulationRequest {
	if req.TotalSimulations <= 0 {
		req.TotalSimulations = DefaultTotalSimulations
	}
	if req.TimeSteps <= 0 {
		req.TimeSteps = DefaultTimeSteps
	}
	if req.LookbackPeriod <= 0 {
		req.LookbackPeriod = DefaultLookbackPeriod
	}
	if req.PortfolioAmount <= 0 {
		req.PortfolioAmount = DefaultPortfolioAmount
	}
	return req
}

// Runner drives one full Monte Carlo run: the configured number of
// trajectories followed by a single aggregation pass. The estimated
// parameters and symbol order are fixed at construction and read-only for
// the rest of the run.
type Runner struct {
	params  map[string]models.AssetParameters
	symbols []string
	total   int
	steps   int
	src     Uniform
}

func NewRunner(req models.SimulationRequest) *Runner {
	return NewRunnerWithSource(req, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewRunnerWithSource is NewRunner with an injectable uniform source so
// tests can run deterministically.
func NewRunnerWithSource(req models.SimulationRequest, src Uniform) *Runner {
	req = Normalize(req)
	params := EstimateParameters(req.SamplePrices, req.Allocations, req.LookbackPeriod, req.PortfolioAmount)

	// Symbol order is fixed once per run so floating-point summation order
	// is reproducible across trajectories.
	symbols := make([]string, 0, len(params))
	for symbol := range params {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	return &Runner{
		params:  params,
		symbols: symbols,
		total:   req.TotalSimulations,
		steps:   req.TimeSteps,
		src:     src,
	}
}

// Parameters exposes the estimated per-asset parameters.
func (r *Runner) Parameters() map[string]models.AssetParameters {
	return r.params
}

// Run starts the simulation in its own goroutine and returns the channel
// it reports on. One progress update is sent per completed trajectory,
// carrying that trajectory as a batch of one; the unbuffered send doubles
// as the yield point, so cancellation is observed between simulations and
// never mid-trajectory. The final message carries the aggregated bands with
// Done set. A panic inside a trajectory produces a single terminal failure
// message instead, with no partial aggregation. The channel is closed after
// the terminal message.
func (r *Runner) Run(ctx context.Context) <-chan models.SimulationUpdate {
	out := make(chan models.SimulationUpdate)

	go func() {
		defer close(out)
		defer func() {
			if rec := recover(); rec != nil {
				select {
				case out <- models.SimulationUpdate{Error: fmt.Sprintf("simulation failed: %v", rec)}:
				case <-ctx.Done():
				}
			}
		}()

		paths := make([]models.Path, 0, r.total)
		for completed := 1; completed <= r.total; completed++ {
			select {
			case <-ctx.Done():
				return
			default:
			}

			path := Trajectory(r.symbols, r.params, r.steps, r.src)
			paths = append(paths, path)

			update := models.SimulationUpdate{
				Progress: completed * 100 / r.total,
				Batch:    []models.Path{path},
			}
			select {
			case out <- update:
			case <-ctx.Done():
				return
			}
		}

		final := models.SimulationUpdate{
			Progress:  100,
			FinalData: Aggregate(paths, r.steps),
			Done:      true,
		}
		select {
		case out <- final:
		case <-ctx.Done():
		}
	}()

	return out
}
