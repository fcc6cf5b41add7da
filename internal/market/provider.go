package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zanngujjar/Big-Bird-Portfolio/internal/models"
)

// Provider fetches daily closing-price history from the Yahoo chart API.
type Provider struct {
	httpClient *http.Client
	baseURL    string
}

func NewProvider() *Provider {
	return &Provider{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://query2.finance.yahoo.com",
	}
}

// NewProviderWithBase points the provider at a different chart endpoint,
// used by tests to serve canned payloads.
func NewProviderWithBase(baseURL string) *Provider {
	p := NewProvider()
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

// FetchHistory returns the ordered daily closes for one symbol over the
// given range (e.g. "1y", "2y"). Days with a missing close are skipped.
func (p *Provider) FetchHistory(ctx context.Context, symbol, rng string) ([]models.PricePoint, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		p.baseURL, url.PathEscape(symbol), url.QueryEscape(rng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create chart request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch chart for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chart status %d for %s: %s", resp.StatusCode, symbol, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Close []*float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode chart for %s: %w", symbol, err)
	}

	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data for %s", symbol)
	}

	result := payload.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	points := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, models.PricePoint{
			Date:  time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Close: *closes[i],
		})
	}
	return points, nil
}
