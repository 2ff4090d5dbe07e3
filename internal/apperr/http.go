package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Write maps an application error to its HTTP status and writes a JSON body.
// Unknown errors become a generic 500 so that transaction failures never leak
// internals; the caller is expected to have logged the cause.
func Write(w http.ResponseWriter, err error) {
	var (
		vErr *ValidationError
		aErr *AuthorizationError
		cErr *ConflictError
	)

	status := http.StatusInternalServerError
	body := errorBody{Error: "operation failed"}

	switch {
	case errors.As(err, &vErr):
		status = http.StatusBadRequest
		body = errorBody{Error: vErr.Message, Field: vErr.Field}
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
		body = errorBody{Error: "not found"}
	case errors.As(err, &aErr):
		status = http.StatusForbidden
		body = errorBody{Error: aErr.Message}
	case errors.As(err, &cErr):
		status = http.StatusConflict
		body = errorBody{Error: cErr.Message}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
