package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/zanngujjar/Big-Bird-Portfolio/internal/models"
	"github.com/zanngujjar/Big-Bird-Portfolio/internal/realtime"
	"github.com/zanngujjar/Big-Bird-Portfolio/internal/sim"
	"github.com/zanngujjar/Big-Bird-Portfolio/internal/store"
)

type Server struct {
	store    store.Store
	market   HistoryProvider
	hub      *realtime.Hub
	router   *mux.Router
	upgrader websocket.Upgrader

	// historyRange is the chart range requested when syncing a ticker,
	// long enough to cover the default lookback window with slack.
	historyRange string
}

type HistoryProvider interface {
	FetchHistory(ctx context.Context, symbol, rng string) ([]models.PricePoint, error)
}

func NewServer(s store.Store, p HistoryProvider, hub *realtime.Hub) *Server {
	server := &Server{
		store:        s,
		market:       p,
		hub:          hub,
		historyRange: "2y",
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/api/health", server.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", server.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/tickers", server.handleListTickers).Methods(http.MethodGet)
	r.HandleFunc("/api/search/tickers", server.handleSearchTickers).Methods(http.MethodGet)
	r.HandleFunc("/api/ticker/{symbol}", server.handleGetTicker).Methods(http.MethodGet)
	r.HandleFunc("/api/ticker/{symbol}/prices", server.handleTickerPrices).Methods(http.MethodGet)
	r.HandleFunc("/api/ticker/{symbol}/stats", server.handleTickerStats).Methods(http.MethodGet)
	r.HandleFunc("/api/ticker/{symbol}/sync", server.handleSyncTicker).Methods(http.MethodPost)
	r.HandleFunc("/api/simulate", server.handleSimulate).Methods(http.MethodPost)
	r.HandleFunc("/ws", server.handleWebSocket).Methods(http.MethodGet)

	// Serve React SPA (catch-all, must be last)
	spa := spaHandler{staticPath: "web/dist", indexPath: "index.html"}
	r.PathPrefix("/").Handler(spa)

	server.router = r
	return server
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.staticPath, r.URL.Path)
	fi, err := os.Stat(path)
	if os.IsNotExist(err) || fi.IsDir() {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// StartHistorySync periodically re-fetches history for every stored ticker
// so estimates stay current between restarts.
func (s *Server) StartHistorySync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SyncAllTickers(ctx); err != nil {
				log.Printf("history sync failed: %v", err)
			}
		}
	}
}

func (s *Server) SyncAllTickers(ctx context.Context) error {
	tickers, err := s.store.ListTickers(ctx)
	if err != nil {
		return err
	}
	for _, t := range tickers {
		points, err := s.market.FetchHistory(ctx, t.Symbol, s.historyRange)
		if err != nil {
			log.Printf("history sync: %s: %v", t.Symbol, err)
			continue
		}
		if err := s.store.SavePrices(ctx, t.Symbol, points); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"message":     "Ticker Database API is running",
		"subscribers": s.hub.ClientCount(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeData(w, http.StatusOK, stats, -1)
}

func (s *Server) handleListTickers(w http.ResponseWriter, r *http.Request) {
	tickers, err := s.store.ListTickers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeData(w, http.StatusOK, tickers, len(tickers))
}

func (s *Server) handleGetTicker(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	ticker, err := s.store.GetTicker(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, fmt.Errorf("ticker %s not found", symbol))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeData(w, http.StatusOK, ticker, -1)
}

func (s *Server) handleTickerPrices(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, errors.New("invalid limit"))
			return
		}
		limit = parsed
	}

	points, err := s.store.ListPrices(r.Context(), symbol, q.Get("start_date"), q.Get("end_date"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeData(w, http.StatusOK, points, len(points))
}

func (s *Server) handleTickerStats(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	stats, err := s.store.PriceStats(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, fmt.Errorf("no price data found for ticker %s", symbol))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeData(w, http.StatusOK, stats, -1)
}

func (s *Server) handleSearchTickers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, errors.New(`query parameter "q" is required`))
		return
	}

	tickers, err := s.store.SearchTickers(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeData(w, http.StatusOK, tickers, len(tickers))
}

func (s *Server) handleSyncTicker(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	points, err := s.market.FetchHistory(r.Context(), symbol, s.historyRange)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	if err := s.store.SavePrices(r.Context(), symbol, points); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeData(w, http.StatusOK, points, len(points))
}

// handleSimulate runs a full Monte Carlo projection. Progress messages are
// broadcast to websocket subscribers while the run is in flight; the
// response body carries the terminal message with the percentile bands.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req models.SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Allocations) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("allocations must not be empty"))
		return
	}

	if len(req.SamplePrices) == 0 {
		prices, err := s.loadSamplePrices(r.Context(), req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		req.SamplePrices = prices
	}

	runner := sim.NewRunner(req)
	var terminal models.SimulationUpdate
	for update := range runner.Run(r.Context()) {
		s.hub.BroadcastJSON(update)
		terminal = update
	}

	if terminal.Error != "" {
		writeError(w, http.StatusInternalServerError, errors.New(terminal.Error))
		return
	}
	if !terminal.Done {
		// Cancelled between simulations; the client went away.
		return
	}
	writeData(w, http.StatusOK, terminal, -1)
}

// loadSamplePrices pulls stored history for every allocated symbol when the
// request did not carry its own samplePrices.
func (s *Server) loadSamplePrices(ctx context.Context, req models.SimulationRequest) (map[string][]float64, error) {
	out := make(map[string][]float64, len(req.Allocations))
	for symbol := range req.Allocations {
		points, err := s.store.ListPrices(ctx, symbol, "", "", 0)
		if err != nil {
			return nil, err
		}
		series := make([]float64, len(points))
		for i, p := range points {
			series[i] = p.Close
		}
		out[symbol] = series
	}
	return out, nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.hub.AddClient(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.RemoveClient(conn)
			return
		}
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"success": false, "error": err.Error()})
}

// writeData wraps payloads in the success envelope the frontend expects.
// A non-negative count is included for list responses.
func writeData(w http.ResponseWriter, status int, data any, count int) {
	body := map[string]any{"success": true, "data": data}
	if count >= 0 {
		body["count"] = count
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
