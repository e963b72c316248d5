package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kdrivas1989/video-trimmer/internal/asset"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			requestID, _ := r.Context().Value(RequestIDKey).(string)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", requestID,
			)
		})
	}
}

func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestID, _ := r.Context().Value(RequestIDKey).(string)
					logger.Error("panic recovered", "error", err, "request_id", requestID)
					WriteError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()[:8]
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func WriteError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteAssetError maps the core error taxonomy onto HTTP status codes.
func WriteAssetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, asset.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Video not found", "NOT_FOUND")
	case errors.Is(err, asset.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
	case errors.Is(err, asset.ErrInvalidTimestamp):
		WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_TIMESTAMP")
	case errors.Is(err, asset.ErrInvalidRange):
		WriteError(w, http.StatusBadRequest, "Start time must be before end time", "INVALID_RANGE")
	case errors.Is(err, asset.ErrSourceMissing):
		WriteError(w, http.StatusBadRequest, err.Error(), "SOURCE_MISSING")
	case errors.Is(err, asset.ErrNotTrimmed):
		WriteError(w, http.StatusBadRequest, "Video not yet trimmed", "NOT_TRIMMED")
	case errors.Is(err, asset.ErrResourceExhausted):
		WriteError(w, http.StatusInsufficientStorage, err.Error(), "RESOURCE_EXHAUSTED")
	case errors.Is(err, asset.ErrEngineFailure):
		WriteError(w, http.StatusInternalServerError, err.Error(), "ENGINE_FAILURE")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}
