package middlewares

import (
	"encoding/json"
	"net/http"
)

// DefaultMaxRequestSize bounds JSON request bodies
const DefaultMaxRequestSize int64 = 1 << 20

// RequestSizeLimitMiddleware rejects bodies declared larger than maxRequestSize
// and caps the reader for bodies of unknown length.
func RequestSizeLimitMiddleware(maxRequestSize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxRequestSize {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				json.NewEncoder(w).Encode(map[string]string{"error": "request body too large"})
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
			next.ServeHTTP(w, r)
		})
	}
}
