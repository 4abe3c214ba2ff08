package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// DepMonitorConfig: параметры мониторинга PostgreSQL через topologymetrics.
type DepMonitorConfig struct {
	// ServiceID: вершина графа, от которой идёт ребро к postgresql
	ServiceID string
	// Group: IM_DEPHEALTH_GROUP
	Group string
	// DB: адаптер рабочего пула (stdlib.OpenDBFromPool)
	DB *sql.DB
	// DSN: только для лейблов host/port, соединение не открывается
	DSN string
	// Interval: IM_DEPHEALTH_CHECK_INTERVAL
	Interval time.Duration
	// Registerer: nil означает глобальный registry Prometheus
	Registerer prometheus.Registerer
}

// DepMonitor публикует app_dependency_health и app_dependency_latency_seconds
// для PostgreSQL. Проверка идёт через рабочий пул, поэтому исчерпанный пул
// выглядит в метриках так же, как упавшая база.
type DepMonitor struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

func NewDepMonitor(cfg DepMonitorConfig, logger *slog.Logger) (*DepMonitor, error) {
	opts := []dephealth.Option{
		dephealth.WithLogger(logger),
		dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(cfg.DB)),
			dephealth.FromURL(cfg.DSN),
			dephealth.CheckInterval(cfg.Interval),
			dephealth.Critical(true),
		),
	}
	if cfg.Registerer != nil {
		opts = append(opts, dephealth.WithRegisterer(cfg.Registerer))
	}

	dh, err := dephealth.New(cfg.ServiceID, cfg.Group, opts...)
	if err != nil {
		return nil, fmt.Errorf("topologymetrics: %w", err)
	}
	return &DepMonitor{
		dh:     dh,
		logger: logger.With(slog.String("component", "depmonitor")),
	}, nil
}

func (m *DepMonitor) Start(ctx context.Context) error {
	m.logger.Info("Мониторинг PostgreSQL запущен")
	return m.dh.Start(ctx)
}

func (m *DepMonitor) Stop() {
	m.dh.Stop()
	m.logger.Info("Мониторинг PostgreSQL остановлен")
}
