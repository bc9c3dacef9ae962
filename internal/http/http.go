// Package http holds the JSON request and response helpers shared by the handlers.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
)

// MaxBodyBytes bounds request bodies
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error   string           `json:"error"`
	Reason  string           `json:"reason,omitempty"`
	Field   string           `json:"field,omitempty"`
	Minimum *decimal.Decimal `json:"minimum,omitempty"`
}

// JSON writes v with the given status
func JSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// Error writes an error body with the given status
func Error(w http.ResponseWriter, status int, body ErrorBody) {
	_ = JSON(w, status, body)
}

// ErrorMessage writes a plain error message with the given status
func ErrorMessage(w http.ResponseWriter, status int, format string, args ...any) {
	Error(w, status, ErrorBody{Error: fmt.Sprintf(format, args...)})
}

// ErrMalformedBody wraps every decoding failure of DecodeJSON
var ErrMalformedBody = errors.New("malformed JSON body")

// DecodeJSON reads a single JSON document from the request body into v
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after the document", ErrMalformedBody)
	}
	return nil
}
