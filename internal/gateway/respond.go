package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/docgate/docgate/internal/logger"
	"github.com/docgate/docgate/pkg/provider"
)

// writeJSON renders v as a JSON response body with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.Err(err))
	}
}

// writeText renders a plain-text body with the given status.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// statusFor maps a provider error to an HTTP status. Errors without a
// provider code are treated as internal.
func statusFor(err error) int {
	code, ok := provider.CodeOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch code {
	case provider.ErrInvalidHandle:
		return http.StatusBadRequest
	case provider.ErrNotFound:
		return http.StatusNotFound
	case provider.ErrUnsupported:
		return http.StatusUnsupportedMediaType
	case provider.ErrDecode:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeProviderError logs the failure and renders its HTTP translation.
func writeProviderError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	logger.Warn("request failed",
		logger.String("op", op),
		logger.Int("status", status),
		logger.Err(err))
	writeText(w, status, http.StatusText(status))
}
