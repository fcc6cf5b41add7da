package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zanngujjar/Big-Bird-Portfolio/internal/api"
	"github.com/zanngujjar/Big-Bird-Portfolio/internal/db"
	"github.com/zanngujjar/Big-Bird-Portfolio/internal/market"
	"github.com/zanngujjar/Big-Bird-Portfolio/internal/realtime"
	"github.com/zanngujjar/Big-Bird-Portfolio/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	var (
		addr     = flag.String("addr", ":8080", "server listen address")
		dbPath   = flag.String("db", envOr("DB_PATH", "./bigbird.db"), "sqlite database file")
		syncFreq = flag.Duration("sync", 24*time.Hour, "ticker history refresh interval")
	)
	flag.Parse()

	sqlDB, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	defer sqlDB.Close()

	st := store.NewSQLiteStore(sqlDB)
	provider := market.NewProvider()
	hub := realtime.NewHub()
	apiServer := api.NewServer(st, provider, hub)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go apiServer.StartHistorySync(ctx, *syncFreq)

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("Ticker Database API listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}
