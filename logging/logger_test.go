package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []Entry {
	t.Helper()
	var entries []Entry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("decode entry %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestLoggerRespectsMinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("console", WARN, &buf)

	logger.Info("api", "dropped", nil)
	logger.Warn("api", "kept", map[string]any{"id": "e1"})
	logger.Error("api", "failed", errors.New("boom"), nil)

	entries := decodeEntries(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries got %d", len(entries))
	}
	if entries[0].Message != "kept" || entries[0].Component != "console" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Error != "boom" || entries[1].Level != "ERROR" {
		t.Fatalf("unexpected error entry: %+v", entries[1])
	}
}

func TestLogContextCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New("console", INFO, &buf)

	logger.WithRequestID("req-7").WithCategory("api").WithField("operation", "getUser").Debug("dropped")
	logger.WithRequestID("req-7").WithCategory("api").WithField("operation", "getUser").Error("getUser failed", errors.New("boom"))

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry got %d", len(entries))
	}
	got := entries[0]
	if got.RequestID != "req-7" || got.Category != "api" || got.Error != "boom" {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.Fields["operation"] != "getUser" {
		t.Fatalf("expected operation field, got %+v", got.Fields)
	}
}

func TestLogContextOnNilLogger(t *testing.T) {
	var logger *Logger
	logger.WithRequestID("req-1").WithCategory("api").Error("ignored", errors.New("boom"))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": DEBUG, "WARN": WARN, " error ": ERROR, "nope": INFO}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v want %v", in, got, want)
		}
	}
}

func TestHTTPLoggerStampsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New("console", INFO, &buf)

	var seen string
	handler := NewHTTPLogger(logger).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))

	header := rec.Header().Get(RequestIDHeader)
	if header == "" || header != seen {
		t.Fatalf("expected request id in header and context, got %q / %q", header, seen)
	}
	entries := decodeEntries(t, &buf)
	if len(entries) != 1 || entries[0].Level != "WARN" || entries[0].RequestID != header {
		t.Fatalf("unexpected http entries: %+v", entries)
	}
}
