package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// Envelope is the standard JSON shape for API responses. Exactly one of
// Data or Error is populated depending on Success.
type Envelope struct {
	Success        bool        `json:"success"`
	Data           interface{} `json:"data,omitempty"`
	Error          string      `json:"error,omitempty"`
	ProcessingTime float64     `json:"processing_time"`
}

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteResult writes a success envelope carrying data.
func WriteResult(w http.ResponseWriter, statusCode int, data interface{}, started time.Time) error {
	return WriteJSON(w, statusCode, Envelope{
		Success:        true,
		Data:           data,
		ProcessingTime: time.Since(started).Seconds(),
	})
}

// WriteFailure writes an error envelope. Data may carry partial results
// such as a run summary for a failed analysis.
func WriteFailure(w http.ResponseWriter, statusCode int, message string, data interface{}, started time.Time) error {
	return WriteJSON(w, statusCode, Envelope{
		Success:        false,
		Data:           data,
		Error:          message,
		ProcessingTime: time.Since(started).Seconds(),
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// GetPaginationParams extracts limit/offset parameters from the query string.
// Limit defaults to 50 and is capped at 200; offset defaults to 0.
func GetPaginationParams(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}
