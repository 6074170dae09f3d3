package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector_CountersAreIsolatedPerCollector(t *testing.T) {
	a := NewCollector("bot")
	b := NewCollector("bot")

	a.EventsReceived.WithLabelValues("text").Inc()
	a.EventsReceived.WithLabelValues("text").Inc()
	a.EventFailures.Inc()

	require.Equal(t, float64(2), testutil.ToFloat64(a.EventsReceived.WithLabelValues("text")))
	require.Equal(t, float64(1), testutil.ToFloat64(a.EventFailures))
	require.Zero(t, testutil.ToFloat64(b.EventFailures))
}

func TestCollector_HandlerExposesMetrics(t *testing.T) {
	c := NewCollector("bot")
	c.RepliesSent.Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "bot_replies_sent_total 1")
}
