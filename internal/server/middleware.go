package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware adds CORS headers and records request metrics.
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()
		next(rw, r)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	}
}

// rateLimitMiddleware enforces per-client limits when configured.
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter == nil {
			next(w, r)
			return
		}

		var dataSize int64
		if r.ContentLength > 0 {
			dataSize = r.ContentLength
		}
		if err := s.rateLimiter.Allow(clientIP(r), dataSize); err != nil {
			s.writeRateLimitError(w, err)
			return
		}
		next(w, r)
	}
}

func (s *Server) writeRateLimitError(w http.ResponseWriter, err error) {
	var rl *RateLimitError
	var qe *QuotaExceededError
	switch {
	case errors.As(err, &rl):
		rateLimitHits.WithLabelValues(rl.Window).Inc()
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.Limit))
		w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.RetryAfter.Seconds()))
		s.writeError(w, rl.Error(), http.StatusTooManyRequests)
	case errors.As(err, &qe):
		rateLimitHits.WithLabelValues("quota_" + qe.Kind).Inc()
		w.Header().Set("X-Quota-Limit", strconv.FormatInt(qe.Limit, 10))
		w.Header().Set("X-Quota-Resets", qe.Resets.Format(http.TimeFormat))
		s.writeError(w, qe.Error(), http.StatusTooManyRequests)
	default:
		slog.Error("Rate limit check failed", "error", err)
		s.writeError(w, "Rate limiting check failed", http.StatusInternalServerError)
	}
}

// authMiddleware requires a valid bearer token when auth is configured.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			next(w, r)
			return
		}
		token, ok := bearerToken(r)
		if !ok {
			s.writeError(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		if _, err := s.auth.verify(token); err != nil {
			slog.Debug("Rejected token", "error", err)
			s.writeError(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// bearerToken reads the Authorization header, falling back to the
// access_token query parameter for browser websocket clients.
func bearerToken(r *http.Request) (string, bool) {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer "), true
	}
	if t := r.URL.Query().Get("access_token"); t != "" {
		return t, true
	}
	return "", false
}

// clientIP extracts the client address, honouring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
