package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS tickers (
		ticker_id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker_symbol TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS ticker_prices (
		ticker_symbol TEXT NOT NULL,
		date TEXT NOT NULL,
		close_price REAL NOT NULL,
		UNIQUE(ticker_symbol, date)
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}
