package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON error response structure
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string, details map[string]interface{}) {
	writeJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// decodeBody reads a JSON request body into v and replies 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", map[string]interface{}{
			"internal": err.Error(),
		})
		return false
	}
	return true
}
