package reekwest

import (
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"
)

// Fixed-format bodies, independent of the document version served.
const (
	notFoundMessage   = "No route found on this path. Have you used the correct HTTP verb?"
	badRequestMessage = "Missing/invalid parameters"
)

// notFoundBody is the fixed 404 envelope.
type notFoundBody struct {
	Message string `json:"message"`
}

// badRequestBody is the fixed 400 envelope listing every failing parameter.
type badRequestBody struct {
	Message string         `json:"message"`
	Params  []ParamFailure `json:"params"`
}

// errorBody is the envelope for service errors.
type errorBody struct {
	Error *Error `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent, nothing we can do. Log for debugging.
		logger.Error("failed to encode response",
			slog.Int("status", status),
			slog.Any("error", err))
	}
}

func writeNotFound(w http.ResponseWriter, logger *slog.Logger) {
	writeJSON(w, http.StatusNotFound, notFoundBody{Message: notFoundMessage}, logger)
}

func writeBadRequest(w http.ResponseWriter, failures []ParamFailure, logger *slog.Logger) {
	writeJSON(w, http.StatusBadRequest, badRequestBody{
		Message: badRequestMessage,
		Params:  failures,
	}, logger)
}

func writeError(w http.ResponseWriter, svcErr *Error, logger *slog.Logger) {
	writeJSON(w, svcErr.Code.HTTPStatus(), errorBody{Error: svcErr}, logger)
}
