package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequestCountsByStatus(t *testing.T) {
	r := New()
	r.ObserveRequest("getUsers", http.MethodGet, http.StatusOK, 10*time.Millisecond)
	r.ObserveRequest("getUsers", http.MethodGet, 0, time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(r.requests.WithLabelValues("getUsers", "GET", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.requests.WithLabelValues("getUsers", "GET", "error")))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.ObserveRequest("x", "GET", 200, 0)
	r.ObserveGuard("home", "allow")
}

func TestHandlerServesText(t *testing.T) {
	r := New()
	r.ObserveGuard("events", "redirect")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "armada_console_guard_decisions_total"))
}
