// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api exposes the scanner over HTTP.
//
//	POST /scan             scan the JSON array of messages in the body
//	POST /scan/mailbox     run a mailbox scan now
//	GET  /results          recent stored results (?limit=N)
//	GET  /results/{id}     one stored result
//	GET  /health           dependency checks
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jobsignal/scanner/internal/mailbox"
	"github.com/jobsignal/scanner/internal/models"
	"github.com/jobsignal/scanner/internal/scan"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	// maxRequestBytes caps POST /scan bodies.
	maxRequestBytes = 16 << 20
)

// Scanner turns messages into results.
type Scanner interface {
	Scan(msgs []models.RawMessage) []models.ExtractionResult
}

// MailboxRunner triggers a mailbox scan.
type MailboxRunner interface {
	RunOnce(ctx context.Context) (*scan.Summary, error)
}

// ResultReader reads stored results.
type ResultReader interface {
	Get(ctx context.Context, messageID string) (*models.ExtractionResult, error)
	ListRecent(ctx context.Context, limit int) ([]models.ExtractionResult, error)
}

// HealthCheck is a named dependency probe.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Handler serves the scanner API. Runner and Results are optional; their
// endpoints answer 503 when unset.
type Handler struct {
	scanner Scanner
	runner  MailboxRunner
	results ResultReader
	checks  []HealthCheck
}

// NewHandler creates an API handler.
func NewHandler(scanner Scanner, runner MailboxRunner, results ResultReader, checks ...HealthCheck) *Handler {
	return &Handler{
		scanner: scanner,
		runner:  runner,
		results: results,
		checks:  checks,
	}
}

// Routes returns the API mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /scan", h.ServeScan)
	mux.HandleFunc("POST /scan/mailbox", h.ServeMailboxScan)
	mux.HandleFunc("GET /results", h.ServeResults)
	mux.HandleFunc("GET /results/{id}", h.ServeResult)
	mux.HandleFunc("GET /health", h.ServeHealth)
	return mux
}

// ServeScan scans the posted messages. An empty body or empty array scans
// the synthetic fallback batch.
func (h *Handler) ServeScan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	msgs, err := mailbox.DecodeMessages(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid message array: %v", err))
		return
	}

	results := h.scanner.Scan(msgs)
	slog.Info("scan request served", "messages", len(msgs), "results", len(results))
	writeJSON(w, http.StatusOK, results)
}

// ServeMailboxScan runs one mailbox scan synchronously.
func (h *Handler) ServeMailboxScan(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "mailbox scanning not configured")
		return
	}
	sum, err := h.runner.RunOnce(r.Context())
	if err != nil {
		slog.Error("mailbox scan failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// ServeResults lists recently stored results.
func (h *Handler) ServeResults(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		writeError(w, http.StatusServiceUnavailable, "result store not configured")
		return
	}

	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	results, err := h.results.ListRecent(r.Context(), limit)
	if err != nil {
		slog.Error("list results failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	if results == nil {
		results = []models.ExtractionResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// ServeResult returns the stored result for one message.
func (h *Handler) ServeResult(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		writeError(w, http.StatusServiceUnavailable, "result store not configured")
		return
	}

	id := r.PathValue("id")
	res, err := h.results.Get(r.Context(), id)
	if err != nil {
		slog.Error("get result failed", "message_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get result")
		return
	}
	if res == nil {
		writeError(w, http.StatusNotFound, "result not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ServeHealth runs every health check and reports the first failure.
func (h *Handler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	for _, c := range h.checks {
		if err := c.Ping(r.Context()); err != nil {
			slog.Warn("health check failed", "check", c.Name, "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"check":  c.Name,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Serve starts the API server on the given port. It binds the port
// immediately and signals readiness via the returned channel before
// accepting connections. The server stops when ctx is cancelled.
func Serve(ctx context.Context, port int, handler *Handler) (<-chan struct{}, error) {
	server := &http.Server{
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind api port %d: %w", port, err)
	}

	ready := make(chan struct{})

	go func() {
		<-ctx.Done()
		slog.Info("api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("api server shutdown error", "error", err)
		}
	}()

	go func() {
		slog.Info("api server listening", "port", port)
		close(ready)
		if err := server.Serve(ln); err != http.ErrServerClosed {
			slog.Error("api server error", "error", err)
		}
	}()

	return ready, nil
}
