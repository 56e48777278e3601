// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/agentchat/internal/agent"
	"github.com/jeranaias/agentchat/internal/config"
	"github.com/jeranaias/agentchat/internal/util"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultListen is the default bind address.
	DefaultListen = "127.0.0.1:8420"

	// DefaultUpstreamTimeout is the timeout for forwarded requests.
	DefaultUpstreamTimeout = 60 * time.Second

	// MaxMessageLength is the maximum length for a message to prevent DoS.
	MaxMessageLength = 100000

	// DefaultMaxBodyBytes caps the request body size (1MB).
	DefaultMaxBodyBytes = 1 * 1024 * 1024

	// Version is the server version.
	Version = "0.1.0"
)

// ============================================================================
// SERVER STATS
// ============================================================================

// ServerStats tracks server usage statistics.
type ServerStats struct {
	TotalRequests     int64     `json:"total_requests"`
	ForwardedRequests int64     `json:"forwarded_requests"`
	EchoRequests      int64     `json:"echo_requests"`
	FailedRequests    int64     `json:"failed_requests"`
	StartTime         time.Time `json:"start_time"`
}

// NewServerStats creates a new ServerStats instance.
func NewServerStats() *ServerStats {
	return &ServerStats{
		StartTime: time.Now(),
	}
}

// RecordRequest records a handled request in the stats.
func (s *ServerStats) RecordRequest(forwarded bool, failed bool) {
	atomic.AddInt64(&s.TotalRequests, 1)
	if failed {
		atomic.AddInt64(&s.FailedRequests, 1)
		return
	}
	if forwarded {
		atomic.AddInt64(&s.ForwardedRequests, 1)
	} else {
		atomic.AddInt64(&s.EchoRequests, 1)
	}
}

// GetStats returns a copy of the current stats.
func (s *ServerStats) GetStats() ServerStats {
	return ServerStats{
		TotalRequests:     atomic.LoadInt64(&s.TotalRequests),
		ForwardedRequests: atomic.LoadInt64(&s.ForwardedRequests),
		EchoRequests:      atomic.LoadInt64(&s.EchoRequests),
		FailedRequests:    atomic.LoadInt64(&s.FailedRequests),
		StartTime:         s.StartTime,
	}
}

// Uptime returns the server uptime duration.
func (s *ServerStats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the reference agent proxy HTTP server.
type Server struct {
	cfg     config.ServerConfig
	router  *http.ServeMux
	server  *http.Server
	handler http.Handler
	limiter *RateLimiter

	upstream *http.Client
	stats    *ServerStats

	mu sync.RWMutex
}

// NewServer creates a Server from the given configuration. Zero-value
// fields fall back to defaults.
func NewServer(cfg config.ServerConfig) *Server {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		cfg:     cfg,
		router:  http.NewServeMux(),
		limiter: NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		upstream: &http.Client{
			Timeout: DefaultUpstreamTimeout,
		},
		stats: NewServerStats(),
	}

	s.setupRoutes()
	s.handler = Chain(
		RecoveryMiddleware(),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(log.Default()),
		RateLimitMiddleware(s.limiter),
	)(s.router)
	return s
}

// WithUpstreamClient sets a custom HTTP client for forwarded requests.
func (s *Server) WithUpstreamClient(client *http.Client) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upstream = client
	return s
}

// Addr returns the configured bind address.
func (s *Server) Addr() string {
	return s.cfg.Listen
}

// Handler returns the fully wrapped HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// UpdateConfig applies a new configuration to the running server: the
// upstream, body cap, and rate limit parameters take effect immediately.
// The listen address cannot change without a restart and is ignored.
func (s *Server) UpdateConfig(cfg config.ServerConfig) {
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s.mu.Lock()
	s.cfg.Upstream = cfg.Upstream
	s.cfg.MaxBodyBytes = cfg.MaxBodyBytes
	s.cfg.RateLimit = cfg.RateLimit
	s.cfg.RateBurst = cfg.RateBurst
	s.mu.Unlock()

	s.limiter.SetLimit(cfg.RateLimit, cfg.RateBurst)

	mode := "echo"
	if cfg.Upstream != "" {
		mode = "forward"
	}
	log.Printf("CONFIG_RELOAD | mode=%s rate_limit=%.1f burst=%d max_body=%d",
		mode, cfg.RateLimit, cfg.RateBurst, cfg.MaxBodyBytes)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST /api/agent", s.handleAgent)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /stats", s.handleStats)
}

// ============================================================================
// AGENT HANDLER
// ============================================================================

// handleAgent handles POST /api/agent.
func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	maxBody := s.cfg.MaxBodyBytes
	upstream := s.cfg.Upstream
	s.mu.RUnlock()

	// Limit request body size to prevent DoS
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if err.Error() == "http: request body too large" {
			s.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBody))
			return
		}
		s.writeError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	var req agent.Request
	if err := json.Unmarshal(body, &req); err != nil {
		// Log full details internally, return generic message to client
		log.Printf("INVALID_REQUEST | error=%v", err)
		s.writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := validateRequest(&req); err != nil {
		log.Printf("REQUEST_VALIDATION_FAILED | error=%v", err)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if upstream != "" {
		s.forwardRequest(w, r, body)
		return
	}

	s.echoRequest(w, req)
}

// validateRequest checks the envelope fields the proxy relies on.
func validateRequest(req *agent.Request) error {
	if strings.TrimSpace(req.Data.Message.Content) == "" {
		return fmt.Errorf("message content must not be empty")
	}
	if req.Data.Message.Role != "user" {
		return fmt.Errorf("invalid role '%s': must be user", req.Data.Message.Role)
	}
	if len(req.Data.Message.Content) > MaxMessageLength {
		return fmt.Errorf("message exceeds maximum length of %d", MaxMessageLength)
	}
	return nil
}

// forwardRequest relays the raw envelope to the upstream and relays the
// reply back, preserving the upstream status code.
func (s *Server) forwardRequest(w http.ResponseWriter, r *http.Request, body []byte) {
	start := time.Now()

	s.mu.RLock()
	client := s.upstream
	upstream := s.cfg.Upstream
	s.mu.RUnlock()

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, upstream, bytes.NewReader(body))
	if err != nil {
		s.stats.RecordRequest(true, true)
		s.writeError(w, http.StatusBadGateway, "Upstream request failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("UPSTREAM_ERROR | error=%v", err)
		s.stats.RecordRequest(true, true)
		s.writeError(w, http.StatusBadGateway, "Upstream request failed")
		return
	}
	defer resp.Body.Close()

	s.stats.RecordRequest(true, resp.StatusCode < 200 || resp.StatusCode > 299)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)

	log.Printf("FORWARD_COMPLETE | status=%d latency=%dms",
		resp.StatusCode, time.Since(start).Milliseconds())
}

// echoRequest answers from the envelope itself (no upstream configured).
func (s *Server) echoRequest(w http.ResponseWriter, req agent.Request) {
	s.stats.RecordRequest(false, false)

	content := fmt.Sprintf("You said: %s", util.CollapseSpace(req.Data.Message.Content))
	s.writeJSON(w, http.StatusOK, agent.Response{
		OutputData: &agent.OutputData{Content: content},
	})
}

// ============================================================================
// HEALTH HANDLER
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Mode     string `json:"mode"`
	Upstream string `json:"upstream,omitempty"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	upstream := s.cfg.Upstream
	s.mu.RUnlock()

	health := HealthResponse{
		Status:  "ok",
		Version: Version,
		Mode:    "echo",
	}
	if upstream != "" {
		health.Mode = "forward"
		health.Upstream = upstream
	}

	s.writeJSON(w, http.StatusOK, health)
}

// ============================================================================
// STATS HANDLER
// ============================================================================

// StatsResponse represents the usage statistics response.
type StatsResponse struct {
	TotalRequests     int64 `json:"total_requests"`
	ForwardedRequests int64 `json:"forwarded_requests"`
	EchoRequests      int64 `json:"echo_requests"`
	FailedRequests    int64 `json:"failed_requests"`
	UptimeSeconds     int64 `json:"uptime_seconds"`
}

// handleStats handles GET /stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.stats.GetStats()

	s.writeJSON(w, http.StatusOK, StatsResponse{
		TotalRequests:     stats.TotalRequests,
		ForwardedRequests: stats.ForwardedRequests,
		EchoRequests:      stats.EchoRequests,
		FailedRequests:    stats.FailedRequests,
		UptimeSeconds:     int64(s.stats.Uptime().Seconds()),
	})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("SERVER_START | addr=%s version=%s", s.cfg.Listen, Version)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and stops the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	if s.server == nil {
		return nil
	}

	log.Printf("SERVER_SHUTDOWN | starting graceful shutdown")
	return s.server.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"code":    status,
		},
	})
}
