package handler

import (
	"encoding/json"
	"net/http"

	"github.com/foodshare/foodshare-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps register/login responses.
type AuthEnvelope struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// UserEnvelope wraps single-user responses.
type UserEnvelope struct {
	User *domain.User `json:"user"`
}

// CountEnvelope wraps the unread counter.
type CountEnvelope struct {
	Count int `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
