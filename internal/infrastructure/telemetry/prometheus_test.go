package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()

	m.ObserveHTTP("GET", "/api/v1/companies/:companyId/invoices", 200, 20*time.Millisecond)
	m.ObserveHTTP("GET", "/api/v1/companies/:companyId/invoices", 200, 30*time.Millisecond)
	m.ObserveUpload("success", time.Second)
	m.ObserveUpload("skipped", 0)
	m.ObserveSubmissionStatus("accepted")
	m.ObserveJob("efactura_sync", nil)
	m.ObserveJob("efactura_sync", errors.New("anaf down"))
	m.SetQueueDepth(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/companies/:companyId/invoices", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusChanges.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues("efactura_sync", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.queueDepth))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
		m.ObserveUpload("error", time.Second)
		m.ObserveSubmissionStatus("rejected")
		m.ObserveJob("export", nil)
		m.SetQueueDepth(1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveUpload("success", time.Second)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "documentiulia_efactura_uploads_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
