// Package metrics exposes the prometheus counters served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsCreated counts attendance records accepted through the API.
	RecordsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "asistencia_records_created_total",
		Help: "Attendance records created.",
	})

	// RequestsSubmitted counts accepted request submissions.
	RequestsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "asistencia_requests_submitted_total",
		Help: "Requests submitted.",
	})

	// ValidationFailures counts rejected write attempts per entity.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asistencia_validation_failures_total",
		Help: "Write attempts rejected by validation.",
	}, []string{"entity"})

	// CSVExports counts admin CSV downloads.
	CSVExports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "asistencia_csv_exports_total",
		Help: "CSV exports served.",
	})
)
