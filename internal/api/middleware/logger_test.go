package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/middleware"
	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/logger"
)

func TestLogger(t *testing.T) {
	t.Run("logs status and attaches request logger", func(t *testing.T) {
		var buf bytes.Buffer
		base := logger.NewWithWriter(&buf, "debug")

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromContext(r.Context())
			log.Debug().Msg("inside handler")
			w.WriteHeader(http.StatusTeapot)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
		w := httptest.NewRecorder()
		middleware.Logger(base)(next).ServeHTTP(w, req)

		if w.Code != http.StatusTeapot {
			t.Errorf("Expected 418, got %d", w.Code)
		}

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		if len(lines) != 2 {
			t.Fatalf("Expected 2 log lines, got %d: %s", len(lines), buf.String())
		}

		var inner, done map[string]any
		if err := json.Unmarshal(lines[0], &inner); err != nil {
			t.Fatalf("Failed to decode log line: %v", err)
		}
		if err := json.Unmarshal(lines[1], &done); err != nil {
			t.Fatalf("Failed to decode log line: %v", err)
		}

		if inner["path"] != "/api/metrics" {
			t.Errorf("Expected handler log to carry the path, got %v", inner)
		}
		if done["status"] != float64(http.StatusTeapot) || done["level"] != "info" {
			t.Errorf("Unexpected completion log %v", done)
		}
	})

	t.Run("server errors are logged at error level", func(t *testing.T) {
		var buf bytes.Buffer
		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
		middleware.Logger(logger.NewWithWriter(&buf, "info"))(next).ServeHTTP(httptest.NewRecorder(), req)

		var entry map[string]any
		if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
			t.Fatalf("Failed to decode log line: %v", err)
		}
		if entry["level"] != "error" {
			t.Errorf("Expected error level, got %v", entry["level"])
		}
	})
}
