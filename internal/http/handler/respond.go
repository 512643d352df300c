package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"secondbrain/internal/apperr"
	"secondbrain/internal/content"
)

// Every response uses the same envelope: {success, data} on the happy path,
// {success:false, message} on failure. List endpoints add pagination.

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}

func respondList(w http.ResponseWriter, status int, data any, p content.Pagination) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":    true,
		"data":       data,
		"pagination": p,
	})
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": msg,
	})
}

// respondError maps the error kind to an HTTP status and never leaks
// internal causes to the caller.
func respondError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		slog.Error("request failed", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": apperr.PublicMessage(err),
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	respondError(w, apperr.Validation(msg))
}
