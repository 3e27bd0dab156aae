// Package httpx contains the HTTP API surface: routes, handlers,
// middleware and JSON helpers.
package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// maxRequestBody bounds how much of a request body is read. Task
// parameters are small strings and numbers; anything larger is not a
// legitimate submission.
const maxRequestBody = 1 << 20

// errorResponse is the envelope for every non-2xx response.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ReadBody reads the request body, bounded by maxRequestBody. Returns
// false with an error response already written when reading fails.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_body", Err: err})
		return nil, false
	}
	return body, true
}

// decodeStrict unmarshals data into dst, rejecting fields dst does not
// declare. Task requests are discriminated by task_name, so a field the
// chosen request type does not know about is a client mistake, not noise.
func decodeStrict(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, errorResponse{Error: p.ErrCode, Message: p.Err.Error()})
}
