package httpserver

import (
	"encoding/json"
	"log"
	"net/http"
)

// writeJSON renders v as a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeMessage renders the {message} envelope every non-list response uses.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeInternalError logs the storage/server fault and hides details from the caller.
func writeInternalError(w http.ResponseWriter, op string, err error) {
	log.Printf("%s: %v", op, err)
	writeMessage(w, http.StatusInternalServerError, "internal server error")
}
