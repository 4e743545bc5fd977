package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the fixed response wrapper every endpoint returns. All three
// fields are always serialized; data is never omitted.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
	Meta    any    `json:"meta"`
}

// JSON writes a success response using the shared envelope. A nil data is
// normalized to an empty list so the field always carries a value.
func JSON(w http.ResponseWriter, status int, message string, data, meta any) {
	if data == nil {
		data = []any{}
	}
	write(w, status, Envelope{Message: message, Data: data, Meta: meta})
}

// Error writes an error response: explanatory message, empty data list,
// null meta. Internal error detail never reaches the payload.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Message: message, Data: []any{}})
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}
