package videosummary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"summary-stack/services/video-summary/youtube"
	"summary-stack/shared/config"
	"summary-stack/shared/monitoring"
	"summary-stack/shared/summarizer"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

const (
	apiVersion     = "1.0.0"
	requestIDKey   = "X-Request-ID"
	maxRequestBody = 1 << 20
)

// Server exposes the Service over a JSON HTTP API.
type Server struct {
	service *Service
	monitor *monitoring.Monitor
	config  *config.ServerConfig
	limits  *clientLimiter
	now     func() time.Time
}

func NewServer(service *Service, monitor *monitoring.Monitor, cfg *config.ServerConfig) *Server {
	if monitor == nil {
		monitor = monitoring.NewMonitor()
	}
	return &Server{
		service: service,
		monitor: monitor,
		config:  cfg,
		limits:  newClientLimiter(cfg.RateLimitPerMinute),
		now:     time.Now,
	}
}

// Handler returns the routed API wrapped in request ID, CORS and rate limit middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	monitoring.NewHealthServer(s.monitor).Register(mux)

	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/info", s.handleInfo)
	mux.HandleFunc("POST /api/v1/summarize", s.handleSummarize)
	mux.HandleFunc("GET /api/v1/video/{id}", s.handleVideoInfo)
	mux.HandleFunc("GET /api/v1/cache/stats", s.handleCacheStats)
	mux.HandleFunc("POST /api/v1/cache/clear", s.handleCacheClear)
	mux.HandleFunc("POST /api/v1/batch/summarize", s.handleBatch)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDKey},
		ExposedHeaders: []string{requestIDKey},
	})

	return s.requestID(corsHandler.Handler(s.rateLimit(mux)))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDKey, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.monitor.RecordRequest(rec.status)
		log.Printf("%s %s %d %v [%s]", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond), id)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") && !s.limits.allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientLimiter keeps one token bucket per client address.
type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newClientLimiter(perMinute int) *clientLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
	}
}

func (c *clientLimiter) allow(client string) bool {
	if c == nil {
		return true
	}
	c.mu.Lock()
	limiter, ok := c.limiters[client]
	if !ok {
		limiter = rate.NewLimiter(c.limit, c.burst)
		c.limiters[client] = limiter
	}
	c.mu.Unlock()
	return limiter.Allow()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"version":   apiVersion,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"service":   "YouTube Summarizer API v1",
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "YouTube Summarizer API",
		"version":     apiVersion,
		"description": "YouTube video summarization service",
		"endpoints": map[string]string{
			"health":      "/api/v1/health",
			"info":        "/api/v1/info",
			"summarize":   "/api/v1/summarize",
			"video_info":  "/api/v1/video/{video_id}",
			"cache_stats": "/api/v1/cache/stats",
			"cache_clear": "/api/v1/cache/clear",
		},
	})
}

type summarizeRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "url is required")
		return
	}

	resp, err := s.service.Summarize(r.Context(), req.URL)
	if err != nil {
		s.writeServiceError(w, "Failed to summarize video", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVideoInfo(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.VideoInfo(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, "Failed to get video information", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.CacheStats()
	if errors.Is(err, ErrCacheDisabled) {
		writeJSON(w, http.StatusOK, map[string]any{
			"cache_enabled": false,
			"message":       "Caching is disabled",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cache_enabled": true,
		"stats":         stats,
		"total_size_mb": stats.TotalSizeMB(),
	})
}

type clearRequest struct {
	ClearAll bool `json:"clear_all"`
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	removed, err := s.service.ClearCache(req.ClearAll)
	if errors.Is(err, ErrCacheDisabled) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"cache_enabled": false,
			"message":       "Caching is disabled",
		})
		return
	}

	message := fmt.Sprintf("Cleared expired cache entries (%d removed)", removed)
	if req.ClearAll {
		message = fmt.Sprintf("Cleared all cache entries (%d removed)", removed)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       message,
		"removed_count": removed,
	})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotImplemented, map[string]any{
		"error":   "Batch summarization is not yet implemented",
		"message": "This feature is planned for a future release",
		"status":  "not_implemented",
	})
}

// writeServiceError maps service errors to status codes. Unexpected causes
// are logged and replaced with a generic message.
func (s *Server) writeServiceError(w http.ResponseWriter, fallback string, err error) {
	switch {
	case errors.Is(err, youtube.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, "invalid_url", "Invalid YouTube URL or video ID")
	case errors.Is(err, youtube.ErrVideoNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Video not found")
	case errors.Is(err, youtube.ErrNoCaptions), errors.Is(err, summarizer.ErrEmptyInput):
		writeError(w, http.StatusUnprocessableEntity, "no_transcript", "No transcript or description available for this video")
	case errors.Is(err, ErrUpstream):
		log.Printf("Error: %s: %v", fallback, err)
		writeError(w, http.StatusBadGateway, "upstream_error", fallback)
	default:
		log.Printf("Error: %s: %v", fallback, err)
		writeError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is required: %w", err)
		}
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error":       code,
		"message":     message,
		"status_code": status,
	})
}
