package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// MaxBodyBytes caps JSON request bodies. Summary requests carry a week of
// entries, so this is larger than a single mood entry needs.
const MaxBodyBytes int64 = 1 << 20

// ListResponse wraps a collection with its size
type ListResponse struct {
	Items interface{} `json:"items"`
	Count int         `json:"count"`
}

// NewListResponse builds a ListResponse
func NewListResponse(items interface{}, count int) ListResponse {
	return ListResponse{Items: items, Count: count}
}

// WriteJSON sends data as a JSON body with the given status
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil && status == http.StatusNoContent {
		return nil
	}
	return json.NewEncoder(w).Encode(data)
}

// DecodeJSON parses a JSON request body with a size limit. Unknown fields
// are rejected and a trailing second document is an error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return fmt.Errorf("request body is empty")
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		default:
			return fmt.Errorf("invalid request body: %w", err)
		}
	}

	if decoder.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

// ExtractRequestID returns the id assigned by chi's RequestID middleware,
// falling back to an inbound header
func ExtractRequestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}
