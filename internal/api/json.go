package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/bantay/internal/apperr"
)

// writeJSON encodes v with status. Responses are marked no-store.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
	Code  string `json:"code,omitempty" example:"unknown_dimension"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// domainErrorBody tags err with a stable machine-readable code.
func domainErrorBody(err error) errResponse {
	body := errorBody(err.Error())
	switch {
	case errors.Is(err, apperr.ErrUnknownKind):
		body.Code = "unknown_kind"
	case errors.Is(err, apperr.ErrUnknownDimension):
		body.Code = "unknown_dimension"
	case errors.Is(err, apperr.ErrInvalidArgument):
		body.Code = "invalid_argument"
	case errors.Is(err, apperr.ErrNotFound):
		body.Code = "not_found"
	}
	return body
}
