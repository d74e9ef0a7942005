// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hearthealth/hearthealth/internal/handler/dto"
	"github.com/hearthealth/hearthealth/internal/middleware"
)

// Version is reported by the root info endpoint.
const Version = "1.0.0"

// errBodyTooLarge is returned by the decode helpers when MaxBodySize trips.
var errBodyTooLarge = errors.New("request body too large")

// Handler serves the root info endpoint and the router fallbacks.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello reports the service name and version.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "HeartHealth API",
		"version": Version,
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Debug("write response failed", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeLenient decodes a JSON body the way the web client expects: the
// Content-Type header is not checked, and a missing or malformed body leaves
// v at its zero value instead of failing. Numbers decode as json.Number.
// Only an oversized body is an error.
func decodeLenient(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if middleware.IsBodyTooLarge(err) {
			return errBodyTooLarge
		}
		if !errors.Is(err, io.EOF) {
			slog.Default().Debug("ignoring malformed request body", "path", r.URL.Path, "error", err)
		}
	}
	return nil
}
