package models

// Ticker is one tradeable symbol known to the price database.
type Ticker struct {
	ID     int64  `json:"ticker_id"`
	Symbol string `json:"ticker_symbol"`
}

// PricePoint is one daily close for a ticker. Date is YYYY-MM-DD.
type PricePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close_price"`
}

// PriceStats summarizes the stored history for one ticker.
type PriceStats struct {
	Symbol      string  `json:"ticker_symbol"`
	RecordCount int     `json:"record_count"`
	MinPrice    float64 `json:"min_price"`
	MaxPrice    float64 `json:"max_price"`
	AvgPrice    float64 `json:"avg_price"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
}

// DatabaseStats summarizes the whole price database.
type DatabaseStats struct {
	TickerCount      int       `json:"ticker_count"`
	PriceRecordCount int       `json:"price_record_count"`
	DateRange        DateRange `json:"date_range"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AssetParameters holds the annualized GBM parameters estimated for one
// symbol, plus the position sized at the start of a simulation run.
// Immutable once a run begins.
type AssetParameters struct {
	Symbol     string  `json:"symbol"`
	Drift      float64 `json:"drift"`
	Volatility float64 `json:"volatility"`
	LastPrice  float64 `json:"lastPrice"`
	Shares     float64 `json:"shares"`
}

// PathPoint is one day's portfolio value on a single simulated trajectory.
type PathPoint struct {
	Day   int     `json:"day"`
	Value float64 `json:"value"`
}

// Path is one full trajectory, days 0..timeSteps inclusive.
type Path []PathPoint

// Band holds the cross-sectional percentiles of all trajectories at one day.
type Band struct {
	Day int     `json:"day"`
	P5  float64 `json:"p5"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
}

// SimulationRequest is the message that starts a run. Zero values for the
// numeric fields mean "use the default".
type SimulationRequest struct {
	TotalSimulations int                  `json:"totalSimulations"`
	TimeSteps        int                  `json:"timeSteps"`
	SamplePrices     map[string][]float64 `json:"samplePrices"`
	Allocations      map[string]float64   `json:"allocations"`
	LookbackPeriod   int                  `json:"lookbackPeriod"`
	PortfolioAmount  float64              `json:"portfolioAmount"`
}

// SimulationUpdate is one message from a running simulation. Progress
// messages carry a batch of newly completed paths; the terminal message
// carries FinalData with Done set, or Error when the run aborted.
type SimulationUpdate struct {
	Progress  int    `json:"progress"`
	Batch     []Path `json:"batch,omitempty"`
	FinalData []Band `json:"finalData,omitempty"`
	Done      bool   `json:"done,omitempty"`
	Error     string `json:"error,omitempty"`
}
