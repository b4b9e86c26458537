package middlewares

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		incoming   string
		keepsValue bool
	}{
		{name: "generated when absent", incoming: "", keepsValue: false},
		{name: "client value kept", incoming: "abc-123", keepsValue: true},
		{name: "control characters replaced", incoming: "abc\n123", keepsValue: false},
		{name: "oversized replaced", incoming: strings.Repeat("a", 200), keepsValue: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.NotEmpty(t, seen)
			assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
			if tt.keepsValue {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.NotEqual(t, tt.incoming, seen)
				assert.Len(t, seen, 36)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name                string
		allowed             []string
		origin              string
		method              string
		preflight           bool
		expectedStatus      int
		expectedOrigin      string
		expectedCredentials string
	}{
		{name: "wildcard", allowed: []string{"*"}, origin: "https://x.example", method: http.MethodGet, expectedStatus: http.StatusOK, expectedOrigin: "*"},
		{name: "listed origin", allowed: []string{"https://app.example"}, origin: "https://APP.example", method: http.MethodGet, expectedStatus: http.StatusOK, expectedOrigin: "https://APP.example", expectedCredentials: "true"},
		{name: "unlisted origin", allowed: []string{"https://app.example"}, origin: "https://evil.example", method: http.MethodGet, expectedStatus: http.StatusOK, expectedOrigin: ""},
		{name: "no origin", allowed: []string{"*"}, origin: "", method: http.MethodGet, expectedStatus: http.StatusOK, expectedOrigin: ""},
		{name: "preflight", allowed: []string{"*"}, origin: "https://x.example", method: http.MethodOptions, preflight: true, expectedStatus: http.StatusNoContent, expectedOrigin: "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CORSMiddleware(tt.allowed)(http.HandlerFunc(okHandler))

			req := httptest.NewRequest(tt.method, "/api/portfolio", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.expectedCredentials, w.Header().Get("Access-Control-Allow-Credentials"))
			if tt.preflight {
				assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
			}
		})
	}
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	handler := RequestSizeLimitMiddleware(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("small body", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 50))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "request body too large")
	})

	t.Run("unknown length too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 50)))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/portfolio/{id}", okHandler)
	r.Get("/metrics", m.Handler().ServeHTTP)

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/portfolio/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, float64(3), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/portfolio/{id}", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")))

	m.RecordLoginAttempt(LoginOutcomeSuccess)
	m.RecordLoginAttempt(LoginOutcomeInvalidCredentials)
	m.RecordLoginAttempt(LoginOutcomeInvalidCredentials)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.LoginAttemptsTotal.WithLabelValues(LoginOutcomeInvalidCredentials)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "auth_login_attempts_total")
	assert.Contains(t, w.Body.String(), `route="/api/portfolio/{id}"`)
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewStatusRecorder(rec)

	rw.Write([]byte("ok"))
	rw.WriteHeader(http.StatusTeapot)

	// header already sent with the first write
	assert.Equal(t, http.StatusOK, rw.Status)
	assert.Equal(t, rec, rw.Unwrap())
}
