// Package metrics экспортирует метрики сервиса стриминга в Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "vidstream"

// Observer собирает метрики запросов, отданных байт, загрузок и GC.
type Observer struct {
	requestDuration *prometheus.HistogramVec
	responseBytes   *prometheus.CounterVec
	uploadBytes     prometheus.Counter
	uploadErrors    prometheus.Counter
	sweptUploads    prometheus.Counter
	gatherer        prometheus.Gatherer
}

// NewObserver регистрирует метрики в reg. Повторная регистрация переиспользует уже существующие коллекторы.
func NewObserver(namespace string, reg *prometheus.Registry) (*Observer, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	o := &Observer{gatherer: reg}
	var err error

	o.requestDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of HTTP requests including the body transfer.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "code"}))
	if err != nil {
		return nil, err
	}

	o.responseBytes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_response_bytes_total",
		Help:      "Body bytes written to clients.",
	}, []string{"route", "code"}))
	if err != nil {
		return nil, err
	}

	o.uploadBytes, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploaded_bytes_total",
		Help:      "Cumulative size of successfully stored uploads.",
	}))
	if err != nil {
		return nil, err
	}

	o.uploadErrors, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_errors_total",
		Help:      "Count of rejected or failed uploads.",
	}))
	if err != nil {
		return nil, err
	}

	o.sweptUploads, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gc_removed_uploads_total",
		Help:      "Stale in-progress uploads removed by GC.",
	}))
	if err != nil {
		return nil, err
	}

	return o, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

// RecordRequest учитывает завершённый HTTP-запрос.
func (o *Observer) RecordRequest(method, route string, status int, duration time.Duration, bytes int64) {
	if o == nil {
		return
	}
	code := strconv.Itoa(status)
	o.requestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	if bytes > 0 {
		o.responseBytes.WithLabelValues(route, code).Add(float64(bytes))
	}
}

// RecordUpload учитывает размер успешной загрузки или факт ошибки.
func (o *Observer) RecordUpload(size int64, err error) {
	if o == nil {
		return
	}
	if err != nil {
		o.uploadErrors.Inc()
		return
	}
	o.uploadBytes.Add(float64(size))
}

// RecordSweep учитывает число удалённых незавершённых загрузок.
func (o *Observer) RecordSweep(removed int) {
	if o == nil || removed <= 0 {
		return
	}
	o.sweptUploads.Add(float64(removed))
}

// Handler отдаёт метрики в формате Prometheus.
func (o *Observer) Handler() http.Handler {
	if o == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{})
}
