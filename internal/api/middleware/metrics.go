// metrics.go: Prometheus HTTP метрики.
// Регистрирует метрики: im_http_requests_total, im_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "im_http_requests_total",
			Help: "Общее количество HTTP-запросов",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "im_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			normalizedPath := normalizePath(r.URL.Path)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			status := strconv.Itoa(rec.statusCode)
			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath сводит пути к шаблонам маршрутов, чтобы кардинальность
// лейблов не росла с числом форм, заявок и файлов.
// /api/forms/6a1f.../submissions → /api/forms/{id}/submissions
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/api/forms", "/api/submissions", "/api/stats":
		return path
	}

	if strings.HasPrefix(path, "/uploads/") {
		return "/uploads/{file}"
	}

	prefixes := []string{"/api/forms/", "/api/submissions/"}
	for _, prefix := range prefixes {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		base := prefix + "{id}"
		_, suffix, found := strings.Cut(rest, "/")
		if !found {
			return base
		}
		switch suffix {
		case "submissions", "notes":
			return base + "/" + suffix
		default:
			return base + "/other"
		}
	}

	if strings.HasPrefix(path, "/api/") {
		return "/api/other"
	}
	return "/spa"
}
