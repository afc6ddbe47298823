package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNotifications_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	n, err := NewNotifications(reg)
	require.NoError(t, err)

	n.Observe("AUTHORISATION", OutcomeHandled, 12*time.Millisecond)
	n.Observe("AUTHORISATION", OutcomeHandled, 3*time.Millisecond)
	n.Observe("REPORT_AVAILABLE", OutcomeSkipped, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(n.total.WithLabelValues("AUTHORISATION", OutcomeHandled)))
	require.Equal(t, 1.0, testutil.ToFloat64(n.total.WithLabelValues("REPORT_AVAILABLE", OutcomeSkipped)))

	again, err := NewNotifications(reg)
	require.NoError(t, err)
	require.Same(t, n.total, again.total)

	var nilMetrics *Notifications
	nilMetrics.Observe("X", OutcomeFailed, time.Second)
}

func TestPrometheus_HandlerFunc(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(NewPrometheusOptions{Registerer: reg, Gatherer: reg})
	require.NoError(t, err)

	r := gin.New()
	r.Use(p.HandlerFunc())
	r.GET("/orders/:orderNo", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET(p.MetricsPath, p.Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/ORD1", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, 1.0, testutil.ToFloat64(p.reqCnt.WithLabelValues("204", http.MethodGet, "/orders/:orderNo", "")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "req_total")
}
