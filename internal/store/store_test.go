package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/zanngujjar/Big-Bird-Portfolio/internal/db"
	"github.com/zanngujjar/Big-Bird-Portfolio/internal/models"
)

func setupStore(t *testing.T) (*SQLiteStore, *sql.DB) {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "test.db")
	sqlDB, err := db.Open(dbFile)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return NewSQLiteStore(sqlDB), sqlDB
}

func TestSavePricesAndList(t *testing.T) {
	s, sqlDB := setupStore(t)
	defer sqlDB.Close()

	ctx := context.Background()
	points := []models.PricePoint{
		{Date: "2024-01-02", Close: 101},
		{Date: "2024-01-03", Close: 102.5},
		{Date: "2024-01-04", Close: 100.75},
	}
	if err := s.SavePrices(ctx, "aapl", points); err != nil {
		t.Fatalf("save prices: %v", err)
	}

	got, err := s.ListPrices(ctx, "AAPL", "", "", 0)
	if err != nil {
		t.Fatalf("list prices: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 prices, got %d", len(got))
	}
	if got[0].Date != "2024-01-02" || got[2].Date != "2024-01-04" {
		t.Fatalf("prices not in date order: %+v", got)
	}

	// Re-saving a day replaces it rather than duplicating.
	if err := s.SavePrices(ctx, "AAPL", []models.PricePoint{{Date: "2024-01-03", Close: 99}}); err != nil {
		t.Fatalf("re-save price: %v", err)
	}
	got, err = s.ListPrices(ctx, "AAPL", "", "", 0)
	if err != nil {
		t.Fatalf("list prices after replace: %v", err)
	}
	if len(got) != 3 || got[1].Close != 99 {
		t.Fatalf("expected replaced close 99, got %+v", got)
	}

	ranged, err := s.ListPrices(ctx, "AAPL", "2024-01-03", "2024-01-03", 0)
	if err != nil {
		t.Fatalf("list ranged prices: %v", err)
	}
	if len(ranged) != 1 || ranged[0].Date != "2024-01-03" {
		t.Fatalf("unexpected ranged result: %+v", ranged)
	}

	limited, err := s.ListPrices(ctx, "AAPL", "", "", 2)
	if err != nil {
		t.Fatalf("list limited prices: %v", err)
	}
	if len(limited) != 2 || limited[0].Date != "2024-01-03" {
		t.Fatalf("limit should keep the most recent rows: %+v", limited)
	}
}

func TestTickerLookupAndSearch(t *testing.T) {
	s, sqlDB := setupStore(t)
	defer sqlDB.Close()

	ctx := context.Background()
	for _, symbol := range []string{"AAPL", "MSFT", "GOOG"} {
		if err := s.SavePrices(ctx, symbol, []models.PricePoint{{Date: "2024-01-02", Close: 100}}); err != nil {
			t.Fatalf("save %s: %v", symbol, err)
		}
	}

	tickers, err := s.ListTickers(ctx)
	if err != nil {
		t.Fatalf("list tickers: %v", err)
	}
	if len(tickers) != 3 || tickers[0].Symbol != "AAPL" {
		t.Fatalf("unexpected tickers: %+v", tickers)
	}

	ticker, err := s.GetTicker(ctx, "msft")
	if err != nil {
		t.Fatalf("get ticker: %v", err)
	}
	if ticker.Symbol != "MSFT" || ticker.ID == 0 {
		t.Fatalf("unexpected ticker: %+v", ticker)
	}

	if _, err := s.GetTicker(ctx, "TSLA"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows for unknown ticker, got %v", err)
	}

	matches, err := s.SearchTickers(ctx, "oo")
	if err != nil {
		t.Fatalf("search tickers: %v", err)
	}
	if len(matches) != 1 || matches[0].Symbol != "GOOG" {
		t.Fatalf("unexpected search result: %+v", matches)
	}
}

func TestStats(t *testing.T) {
	s, sqlDB := setupStore(t)
	defer sqlDB.Close()

	ctx := context.Background()
	if _, err := s.PriceStats(ctx, "AAPL"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows for empty history, got %v", err)
	}

	points := []models.PricePoint{
		{Date: "2024-01-02", Close: 90},
		{Date: "2024-01-03", Close: 110},
	}
	if err := s.SavePrices(ctx, "AAPL", points); err != nil {
		t.Fatalf("save prices: %v", err)
	}

	stats, err := s.PriceStats(ctx, "aapl")
	if err != nil {
		t.Fatalf("price stats: %v", err)
	}
	if stats.RecordCount != 2 || stats.MinPrice != 90 || stats.MaxPrice != 110 || stats.AvgPrice != 100 {
		t.Fatalf("unexpected price stats: %+v", stats)
	}
	if stats.StartDate != "2024-01-02" || stats.EndDate != "2024-01-03" {
		t.Fatalf("unexpected date range: %+v", stats)
	}

	dbStats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("db stats: %v", err)
	}
	if dbStats.TickerCount != 1 || dbStats.PriceRecordCount != 2 {
		t.Fatalf("unexpected db stats: %+v", dbStats)
	}
	if dbStats.DateRange.Start != "2024-01-02" || dbStats.DateRange.End != "2024-01-03" {
		t.Fatalf("unexpected db date range: %+v", dbStats)
	}
}
