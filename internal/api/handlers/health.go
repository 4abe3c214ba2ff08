// health.go: обработчики health endpoints.
// /health/live: liveness probe (процесс жив)
// /health/ready: readiness probe (PostgreSQL и каталог загрузок доступны)
// /metrics: Prometheus метрики
package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/vehicle-intake/internal/config"
)

const serviceName = "vehicle-intake"

// Статусы health check.
const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusFail     = "fail"
)

// ReadinessChecker: проверка готовности зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "degraded", "fail") и сообщение.
	CheckReady() (status, message string)
}

// HealthHandler: обработчик health endpoints.
type HealthHandler struct {
	pgChecker   ReadinessChecker
	uploadDir   string
	promHandler http.Handler
	now         func() time.Time
}

// NewHealthHandler создаёт обработчик health endpoints.
// pgChecker может быть nil, тогда readiness вернёт "fail".
func NewHealthHandler(pgChecker ReadinessChecker, uploadDir string) *HealthHandler {
	return &HealthHandler{
		pgChecker:   pgChecker,
		uploadDir:   uploadDir,
		promHandler: promhttp.Handler(),
		now:         time.Now,
	}
}

type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

type healthReadyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Checks    struct {
		PostgreSQL healthCheckResult `json:"postgresql"`
		Uploads    healthCheckResult `json:"uploads"`
	} `json:"checks"`
}

// HealthLive: liveness probe. Возвращает 200, если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthLiveResponse{
		Status:    statusOK,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	})
}

// HealthReady: readiness probe.
// Возвращает 200 (ok/degraded) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := healthReadyResponse{
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}

	if h.pgChecker != nil {
		pgStatus, pgMsg := h.pgChecker.CheckReady()
		resp.Checks.PostgreSQL = healthCheckResult{Status: pgStatus, Message: pgMsg}
	} else {
		resp.Checks.PostgreSQL = healthCheckResult{Status: statusFail, Message: "не инициализирован"}
	}

	resp.Checks.Uploads = h.checkUploads()
	resp.Status = overallStatus(resp.Checks.PostgreSQL.Status, resp.Checks.Uploads.Status)

	status := http.StatusOK
	if resp.Status == statusFail {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// GetMetrics: Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// checkUploads: каталог загрузок должен существовать.
// Его отсутствие не мешает работе с формами, поэтому статус degraded.
func (h *HealthHandler) checkUploads() healthCheckResult {
	info, err := os.Stat(h.uploadDir)
	if err != nil {
		return healthCheckResult{Status: statusDegraded, Message: "каталог загрузок недоступен"}
	}
	if !info.IsDir() {
		return healthCheckResult{Status: statusDegraded, Message: "путь загрузок не является каталогом"}
	}
	return healthCheckResult{Status: statusOK}
}

// overallStatus определяет итоговый статус из статусов зависимостей.
// Любой fail даёт fail, иначе любой degraded даёт degraded.
func overallStatus(statuses ...string) string {
	hasDegraded := false
	for _, s := range statuses {
		if s == statusFail {
			return statusFail
		}
		if s == statusDegraded {
			hasDegraded = true
		}
	}
	if hasDegraded {
		return statusDegraded
	}
	return statusOK
}
