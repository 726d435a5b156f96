// Package api exposes the HTTP surface consumed by the chat frontend, plus
// an MCP stdio server offering the same operations as tools.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/boardbi/internal/agent"
)

const maxRequestBodySize = 1 << 20 // 1MB

// ChatAgent is the agent surface the handlers need.
type ChatAgent interface {
	Chat(ctx context.Context, message string) string
	Report(ctx context.Context) string
	Refresh() string
	Health(ctx context.Context) agent.HealthStatus
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// NewHandler builds the chi router for the chat API.
func NewHandler(a ChatAgent) http.Handler {
	r := chi.NewRouter()

	r.Post("/chat", handleChat(a))
	r.Post("/report", handleReport(a))
	r.Post("/refresh", handleRefresh(a))
	r.Get("/health", handleHealth(a))

	return r
}

func handleChat(a ChatAgent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		message := strings.TrimSpace(req.Message)
		if message == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message cannot be empty")
			return
		}

		writeJSON(w, map[string]string{
			"response": a.Chat(r.Context(), message),
			"status":   "ok",
		})
	}
}

func handleReport(a ChatAgent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{
			"report": a.Report(r.Context()),
			"status": "ok",
		})
	}
}

func handleRefresh(a ChatAgent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{
			"message": a.Refresh(),
			"status":  "ok",
		})
	}
}

func handleHealth(a ChatAgent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, a.Health(r.Context()))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
