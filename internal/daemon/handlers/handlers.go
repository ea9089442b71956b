// Package handlers contains HTTP handlers for the daemon API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"stockplane/internal/engine"
	"stockplane/pkg/api"
)

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	engine *engine.Engine
	ready  func(context.Context) error
}

// New creates a Handlers instance. ready is the readiness probe for the
// backing store; nil means always ready.
func New(e *engine.Engine, ready func(context.Context) error) *Handlers {
	return &Handlers{engine: e, ready: ready}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}
