package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/zanngujjar/Big-Bird-Portfolio/internal/models"
)

type Store interface {
	ListTickers(ctx context.Context) ([]models.Ticker, error)
	GetTicker(ctx context.Context, symbol string) (models.Ticker, error)
	SearchTickers(ctx context.Context, query string) ([]models.Ticker, error)
	SavePrices(ctx context.Context, symbol string, points []models.PricePoint) error
	ListPrices(ctx context.Context, symbol, startDate, endDate string, limit int) ([]models.PricePoint, error)
	PriceStats(ctx context.Context, symbol string) (models.PriceStats, error)
	Stats(ctx context.Context) (models.DatabaseStats, error)
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func (s *SQLiteStore) ListTickers(ctx context.Context) ([]models.Ticker, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker_id, ticker_symbol
		FROM tickers ORDER BY ticker_symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("query tickers: %w", err)
	}
	defer rows.Close()

	tickers := make([]models.Ticker, 0)
	for rows.Next() {
		var t models.Ticker
		if err := rows.Scan(&t.ID, &t.Symbol); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickers: %w", err)
	}
	return tickers, nil
}

func (s *SQLiteStore) GetTicker(ctx context.Context, symbol string) (models.Ticker, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT ticker_id, ticker_symbol
		FROM tickers WHERE ticker_symbol = ?`, normalizeSymbol(symbol))

	var t models.Ticker
	if err := row.Scan(&t.ID, &t.Symbol); err != nil {
		if err == sql.ErrNoRows {
			return models.Ticker{}, err
		}
		return models.Ticker{}, fmt.Errorf("fetch ticker: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) SearchTickers(ctx context.Context, query string) ([]models.Ticker, error) {
	pattern := "%" + normalizeSymbol(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker_id, ticker_symbol
		FROM tickers WHERE ticker_symbol LIKE ?
		ORDER BY ticker_symbol ASC`, pattern)
	if err != nil {
		return nil, fmt.Errorf("search tickers: %w", err)
	}
	defer rows.Close()

	tickers := make([]models.Ticker, 0)
	for rows.Next() {
		var t models.Ticker
		if err := rows.Scan(&t.ID, &t.Symbol); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickers: %w", err)
	}
	return tickers, nil
}

func (s *SQLiteStore) SavePrices(ctx context.Context, symbol string, points []models.PricePoint) error {
	symbol = normalizeSymbol(symbol)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save prices: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO tickers(ticker_symbol) VALUES (?)`, symbol); err != nil {
		return fmt.Errorf("upsert ticker: %w", err)
	}

	for _, p := range points {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO ticker_prices(ticker_symbol, date, close_price)
			VALUES (?, ?, ?)`, symbol, p.Date, p.Close); err != nil {
			return fmt.Errorf("insert price %s %s: %w", symbol, p.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save prices: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListPrices(ctx context.Context, symbol, startDate, endDate string, limit int) ([]models.PricePoint, error) {
	query := `
		SELECT date, close_price
		FROM ticker_prices
		WHERE ticker_symbol = ?`
	args := []any{normalizeSymbol(symbol)}

	if startDate != "" {
		query += ` AND date >= ?`
		args = append(args, startDate)
	}
	if endDate != "" {
		query += ` AND date <= ?`
		args = append(args, endDate)
	}
	query += ` ORDER BY date ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	points := make([]models.PricePoint, 0)
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prices: %w", err)
	}

	// A limit keeps the most recent rows, preserving chronological order.
	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	return points, nil
}

func (s *SQLiteStore) PriceStats(ctx context.Context, symbol string) (models.PriceStats, error) {
	symbol = normalizeSymbol(symbol)
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MIN(close_price), 0), COALESCE(MAX(close_price), 0),
			COALESCE(AVG(close_price), 0), COALESCE(MIN(date), ''), COALESCE(MAX(date), '')
		FROM ticker_prices WHERE ticker_symbol = ?`, symbol)

	out := models.PriceStats{Symbol: symbol}
	if err := row.Scan(&out.RecordCount, &out.MinPrice, &out.MaxPrice, &out.AvgPrice, &out.StartDate, &out.EndDate); err != nil {
		return models.PriceStats{}, fmt.Errorf("fetch price stats: %w", err)
	}
	if out.RecordCount == 0 {
		return models.PriceStats{}, sql.ErrNoRows
	}
	return out, nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (models.DatabaseStats, error) {
	var out models.DatabaseStats

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickers`).Scan(&out.TickerCount); err != nil {
		return models.DatabaseStats{}, fmt.Errorf("count tickers: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ticker_prices`).Scan(&out.PriceRecordCount); err != nil {
		return models.DatabaseStats{}, fmt.Errorf("count prices: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MIN(date), ''), COALESCE(MAX(date), '') FROM ticker_prices`)
	if err := row.Scan(&out.DateRange.Start, &out.DateRange.End); err != nil {
		return models.DatabaseStats{}, fmt.Errorf("fetch date range: %w", err)
	}

	return out, nil
}
