// Package respond writes the JSON envelope shared by every API endpoint:
// {code, message, data}. Code mirrors the HTTP status, message is a short
// outcome line ("Registered", "insufficient funds"), and data carries the
// user, transaction, or list payload when the operation produced one.
package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the response wrapper shared by every endpoint.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success envelope carrying the payload.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, Envelope{Code: status, Message: message, Data: data})
}

// Error writes a failure envelope. Data stays empty: error responses never
// carry partial domain objects.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, Envelope{Code: status, Message: message})
}

func write(w http.ResponseWriter, payload Envelope) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("respond: marshal envelope: %v", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(payload.Code)
	if _, err := w.Write(body); err != nil {
		log.Printf("respond: write envelope: %v", err)
	}
}
