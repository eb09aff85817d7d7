// Package metrics содержит метрики Prometheus сервиса контроля доступа.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal считает обработанные сканирования по итоговому статусу:
	// allowed, warning, denied, unknown.
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gym_access",
		Name:      "scans_total",
		Help:      "Number of processed RFID scans by resulting status.",
	}, []string{"status"})
)
