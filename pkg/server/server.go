package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/mkoval/monoynab/pkg/models"
)

// Server handles Monobank webhook deliveries.
type Server struct {
	logger *log.Logger
	mux    *http.ServeMux
	engine StatementHandler
}

// StatementHandler processes a single pushed statement event.
type StatementHandler interface {
	HandleStatementEvent(ctx context.Context, accountID string, item models.StatementItem) error
}

// New creates a webhook server.
func New(engine StatementHandler, logger *log.Logger) *Server {
	return &Server{
		logger: logger,
		mux:    http.NewServeMux(),
		engine: engine,
	}
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	s.setupRoutes()
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/webhook", s.withLogging(s.handleWebhook))
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		// Monobank probes the callback URL with a GET before accepting it.
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	var event models.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to decode webhook payload", err)
		return
	}

	if event.Type != models.WebhookTypeStatementItem {
		s.logger.Debug("ignoring webhook event", "type", event.Type)
		if err := s.writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"}); err != nil {
			s.logger.Warn("failed to write json response", "err", err)
		}
		return
	}

	// Ack regardless of the processing outcome: the next scheduled pass
	// re-covers the window idempotently, and a 5xx would only make the
	// provider redeliver into the same failure.
	if err := s.engine.HandleStatementEvent(r.Context(), event.Data.Account, event.Data.StatementItem); err != nil {
		s.logger.Error("failed to process webhook transaction",
			"account", event.Data.Account, "id", event.Data.StatementItem.ID, "error", err)
	}

	if err := s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// --- helpers ---

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// withLogging wraps a handler to log requests and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
