// Package middleware provides HTTP middleware for the linkpage API.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/linkpage/linkpage/internal/handler/dto"
)

// writeError writes a failure envelope. Middleware never exposes causes.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.Fail(message, ""))
}
