/*

This file serves the JSON API. Every data endpoint reads through the
opportunity cache; no handler talks to the upstream aggregator directly.
Stale cache hits are served with an X-Data-Stale header rather than failing
the request.

*/

package web

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/solyield/ysa/internal/analyzer"
	"github.com/solyield/ysa/internal/cache"
	"github.com/solyield/ysa/internal/config"
	"github.com/solyield/ysa/internal/logger"
	"github.com/solyield/ysa/internal/planner"
	"github.com/solyield/ysa/internal/state"
	"github.com/solyield/ysa/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

const (
	defaultYieldLimit = 100
	maxYieldLimit     = 500
)

// WebServer handles HTTP requests for yield data and portfolio optimization.
type WebServer struct {
	router *mux.Router
	port   string
	cache  *cache.Cache
	params types.PipelineParameters
}

// NewWebServer creates a new web server instance.
func NewWebServer(port string, dataCache *cache.Cache, params types.PipelineParameters) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
		cache:  dataCache,
		params: params,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes.
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/", ws.handleRoot).Methods("GET")

	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/yields", ws.handleGetYields).Methods("GET")
	api.HandleFunc("/analytics", ws.handleGetAnalytics).Methods("GET")
	api.HandleFunc("/optimize", ws.handleOptimize).Methods("POST")
	api.HandleFunc("/parameters", ws.handleGetParameters).Methods("GET")
	api.HandleFunc("/snapshots", ws.handleGetSnapshots).Methods("GET")
	api.HandleFunc("/snapshots/latest", ws.handleGetLatestSnapshot).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server.
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleRoot returns the service descriptor and endpoint listing.
func (ws *WebServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"service": "ysa-yield-scout-api",
		"version": "1.0.0",
		"chain":   config.SourceChain,
		"endpoints": map[string]string{
			"health":     "/api/health",
			"yields":     "/api/yields",
			"analytics":  "/api/analytics",
			"optimize":   "/api/optimize",
			"parameters": "/api/parameters",
			"snapshots":  "/api/snapshots",
		},
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleHealth returns server health including cache and database status.
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hasErrors := false

	cacheInfo := map[string]interface{}{
		"last_refreshed": nil,
		"populated":      false,
	}
	if last := ws.cache.LastRefreshed(); !last.IsZero() {
		cacheInfo["last_refreshed"] = last.UTC().Format(time.RFC3339Nano)
		cacheInfo["populated"] = true
	}

	dbInfo := map[string]interface{}{
		"enabled": state.Enabled(),
		"healthy": true,
	}
	if state.Enabled() {
		if err := state.TestDBConnection(); err != nil {
			dbInfo["healthy"] = false
			hasErrors = true
		}
	}

	overallStatus := "OK"
	if hasErrors {
		overallStatus = "DEGRADED"
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "ysa-yield-scout-api",
			"version": "1.0.0",
		},
		"cache":    cacheInfo,
		"database": dbInfo,
	}

	statusCode := http.StatusOK
	if hasErrors {
		statusCode = http.StatusServiceUnavailable
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// yieldRow is one /api/yields response row: the opportunity plus its risk
// assessment computed at request time.
type yieldRow struct {
	types.Opportunity
	Risk types.RiskAssessment `json:"risk"`
}

// handleGetYields returns the filtered, risk-scored opportunity listing.
func (ws *WebServer) handleGetYields(w http.ResponseWriter, r *http.Request) {
	result, stale, err := ws.cache.Get(r.Context())
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get opportunity data")
		ws.writeErrorResponse(w, http.StatusBadGateway, "Yield data unavailable")
		return
	}

	query := r.URL.Query()

	// max_apy tightens the outlier policy for this request only. Widening
	// past the configured ceiling is not allowed.
	params := ws.params
	if maxAPY, ok, err := parseFloatParam(query.Get("max_apy")); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid max_apy parameter")
		return
	} else if ok {
		if maxAPY < params.MinAPY {
			ws.writeErrorResponse(w, http.StatusBadRequest, "max_apy is below the minimum APY threshold")
			return
		}
		if maxAPY < params.MaxAPY {
			params.MaxAPY = maxAPY
		}
	}

	minAPY, hasMinAPY, err := parseFloatParam(query.Get("min_apy"))
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid min_apy parameter")
		return
	}
	minTVL, hasMinTVL, err := parseFloatParam(query.Get("min_tvl"))
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid min_tvl parameter")
		return
	}
	categories := parseCategoriesParam(query.Get("categories"))

	limit := defaultYieldLimit
	if limitStr := query.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > maxYieldLimit {
			ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	filtered, err := analyzer.FilterOutliers(result.Opportunities, params)
	if err != nil {
		webLogger.Error().Err(err).Msg("Outlier filter rejected parameters")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to filter yield data")
		return
	}

	selected := make([]types.Opportunity, 0, len(filtered))
	for _, opp := range filtered {
		if hasMinAPY && opp.APY < minAPY {
			continue
		}
		if hasMinTVL && opp.TVL < minTVL {
			continue
		}
		if categories != nil && !categories[string(opp.Category)] {
			continue
		}
		selected = append(selected, opp)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].APY > selected[j].APY
	})
	if len(selected) > limit {
		selected = selected[:limit]
	}

	rows := make([]yieldRow, 0, len(selected))
	for _, opp := range selected {
		row := yieldRow{Opportunity: opp}
		assessment, err := analyzer.CalculateRiskScore(opp.Protocol, opp.TVL, opp.APY, opp.APYMean30d, ws.params)
		if err != nil {
			webLogger.Warn().
				Err(err).
				Str("protocol", opp.Protocol).
				Str("pair", opp.Pair).
				Msg("Failed to score opportunity, serving without assessment")
		} else {
			row.Risk = assessment
		}
		rows = append(rows, row)
	}

	if stale {
		w.Header().Set("X-Data-Stale", "true")
	}
	response := map[string]interface{}{
		"yields":       rows,
		"count":        len(rows),
		"collected_at": result.CollectedAt.UTC().Format(time.RFC3339),
		"stale":        stale,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetAnalytics returns aggregate market statistics over the filtered
// opportunity set.
func (ws *WebServer) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	result, stale, err := ws.cache.Get(r.Context())
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get opportunity data")
		ws.writeErrorResponse(w, http.StatusBadGateway, "Yield data unavailable")
		return
	}

	filtered, err := analyzer.FilterOutliers(result.Opportunities, ws.params)
	if err != nil {
		webLogger.Error().Err(err).Msg("Outlier filter rejected parameters")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to filter yield data")
		return
	}
	if len(filtered) == 0 {
		ws.writeErrorResponse(w, http.StatusNotFound, "No yield data available")
		return
	}

	summary := analyzer.Summarize(filtered)

	if stale {
		w.Header().Set("X-Data-Stale", "true")
	}
	response := map[string]interface{}{
		"summary":      summary,
		"collected_at": result.CollectedAt.UTC().Format(time.RFC3339),
		"stale":        stale,
	}

	if state.Enabled() {
		stats, err := state.GetCollectionStats()
		if err != nil {
			webLogger.Warn().Err(err).Msg("Failed to load collection history stats")
		} else {
			response["collection_history"] = stats
		}
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// optimizeRequest is the /api/optimize request body.
type optimizeRequest struct {
	InvestmentAmount float64 `json:"investment_amount"`
	RiskTolerance    string  `json:"risk_tolerance"`
	TimeHorizon      string  `json:"time_horizon"`
}

// handleOptimize builds a portfolio allocation plan for the requested
// investment under the requested risk tolerance.
func (ws *WebServer) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if math.IsNaN(req.InvestmentAmount) || math.IsInf(req.InvestmentAmount, 0) || req.InvestmentAmount <= 0 {
		ws.writeErrorResponse(w, http.StatusBadRequest, "investment_amount must be positive")
		return
	}
	tolerance, err := types.ParseRiskTolerance(req.RiskTolerance)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Unknown risk_tolerance, expected Conservative, Moderate or Aggressive")
		return
	}
	timeHorizon := req.TimeHorizon
	if timeHorizon == "" {
		timeHorizon = "1 year"
	}

	result, stale, err := ws.cache.Get(r.Context())
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get opportunity data")
		ws.writeErrorResponse(w, http.StatusBadGateway, "Yield data unavailable")
		return
	}

	plan, err := planner.BuildPlan(result.Opportunities, req.InvestmentAmount, tolerance, timeHorizon, ws.params, time.Now())
	if err != nil {
		if errors.Is(err, planner.ErrNoOpportunities) {
			ws.writeErrorResponse(w, http.StatusNotFound, "No yield data available")
			return
		}
		webLogger.Error().Err(err).Msg("Failed to build optimization plan")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to build optimization plan")
		return
	}

	if stale {
		w.Header().Set("X-Data-Stale", "true")
	}
	ws.writeJSONResponse(w, http.StatusOK, plan)
}

// handleGetParameters returns the active pipeline parameters.
func (ws *WebServer) handleGetParameters(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"parameters": ws.params,
		"timestamp":  time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetSnapshots returns recent collection snapshots.
func (ws *WebServer) handleGetSnapshots(w http.ResponseWriter, r *http.Request) {
	if !state.Enabled() {
		ws.writeErrorResponse(w, http.StatusNotFound, "Collection history is not enabled")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	snapshots, err := state.GetRecentSnapshots(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent snapshots")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve snapshots")
		return
	}

	response := map[string]interface{}{
		"snapshots": snapshots,
		"count":     len(snapshots),
		"limit":     limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetLatestSnapshot returns the most recent collection snapshot.
func (ws *WebServer) handleGetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	if !state.Enabled() {
		ws.writeErrorResponse(w, http.StatusNotFound, "Collection history is not enabled")
		return
	}

	snapshots, err := state.GetRecentSnapshots(1)
	if err != nil || len(snapshots) == 0 {
		webLogger.Error().Err(err).Msg("Failed to get latest snapshot")
		ws.writeErrorResponse(w, http.StatusNotFound, "No snapshots found")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, snapshots[0])
}

// parseFloatParam parses an optional float query parameter. ok is false when
// the parameter is absent.
func parseFloatParam(raw string) (value float64, ok bool, err error) {
	if raw == "" {
		return 0, false, nil
	}
	value, err = strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false, errors.New("invalid float parameter")
	}
	return value, true, nil
}

// parseCategoriesParam parses the comma-separated categories filter. Returns
// nil when the filter is absent, meaning all categories pass.
func parseCategoriesParam(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	categories := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		category := strings.ToLower(strings.TrimSpace(part))
		if category != "" {
			categories[category] = true
		}
	}
	if len(categories) == 0 {
		return nil
	}
	return categories
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
