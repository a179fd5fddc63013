package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserverRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := NewObserver("test", reg)
	require.NoError(t, err)

	o.RecordRequest(http.MethodGet, "/api/videos/{key}", http.StatusPartialContent, 10*time.Millisecond, 300)
	o.RecordRequest(http.MethodGet, "/api/videos/{key}", http.StatusPartialContent, 10*time.Millisecond, 200)
	o.RecordUpload(1024, nil)
	o.RecordUpload(0, errors.New("boom"))
	o.RecordSweep(3)

	require.Equal(t, float64(500), testutil.ToFloat64(o.responseBytes.WithLabelValues("/api/videos/{key}", "206")))
	require.Equal(t, float64(1024), testutil.ToFloat64(o.uploadBytes))
	require.Equal(t, float64(1), testutil.ToFloat64(o.uploadErrors))
	require.Equal(t, float64(3), testutil.ToFloat64(o.sweptUploads))

	rec := httptest.NewRecorder()
	o.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "test_uploaded_bytes_total 1024"))
}

func TestObserverReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewObserver("test", reg)
	require.NoError(t, err)
	second, err := NewObserver("test", reg)
	require.NoError(t, err)

	first.RecordUpload(10, nil)
	require.Equal(t, float64(10), testutil.ToFloat64(second.uploadBytes))
}

func TestNilObserverIsSafe(t *testing.T) {
	var o *Observer
	o.RecordRequest(http.MethodGet, "/", http.StatusOK, time.Second, 1)
	o.RecordUpload(1, nil)
	o.RecordSweep(1)

	rec := httptest.NewRecorder()
	o.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
