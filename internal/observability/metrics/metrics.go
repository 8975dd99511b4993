package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "billing_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	billCreateTotal   *prometheus.CounterVec
	billCreateLatency *prometheus.HistogramVec
	billAmendTotal    *prometheus.CounterVec
	billAmendLatency  *prometheus.HistogramVec

	previewRejections *prometheus.CounterVec

	invoiceExportTotal   *prometheus.CounterVec
	invoiceExportLatency *prometheus.HistogramVec

	customerEventsTotal *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		billCreateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "record_create_total",
				Help: "Total bill record create operations by result",
			},
			[]string{"result"},
		)
		billCreateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "record_create_latency_seconds",
				Help:    "Bill record create latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		billAmendTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "record_amend_total",
				Help: "Total bill record amend operations by result",
			},
			[]string{"result"},
		)
		billAmendLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "record_amend_latency_seconds",
				Help:    "Bill record amend latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		previewRejections = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "preview_rejections_total",
				Help: "Total index previews rejected by reason",
			},
			[]string{"reason"},
		)

		invoiceExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_export_total",
				Help: "Total invoice export operations by format and result",
			},
			[]string{"format", "result"},
		)
		invoiceExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "invoice_export_latency_seconds",
				Help:    "Invoice export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		customerEventsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "customer_events_total",
				Help: "Total customer lifecycle events by type",
			},
			[]string{"event"},
		)

		prometheus.MustRegister(
			billCreateTotal,
			billCreateLatency,
			billAmendTotal,
			billAmendLatency,
			previewRejections,
			invoiceExportTotal,
			invoiceExportLatency,
			customerEventsTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveBillCreate records create latency and result.
func ObserveBillCreate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if billCreateTotal != nil {
		billCreateTotal.WithLabelValues(result).Inc()
	}
	if billCreateLatency != nil {
		billCreateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveBillAmend records amend latency and result.
func ObserveBillAmend(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if billAmendTotal != nil {
		billAmendTotal.WithLabelValues(result).Inc()
	}
	if billAmendLatency != nil {
		billAmendLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncPreviewRejection increments the preview rejection counter.
func IncPreviewRejection(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if previewRejections != nil {
		previewRejections.WithLabelValues(reason).Inc()
	}
}

// ObserveInvoiceExport records export latency and result.
func ObserveInvoiceExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if invoiceExportTotal != nil {
		invoiceExportTotal.WithLabelValues(format, result).Inc()
	}
	if invoiceExportLatency != nil {
		invoiceExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncCustomerEvent increments customer lifecycle counters.
func IncCustomerEvent(event string) {
	if event == "" {
		event = "unknown"
	}
	if customerEventsTotal != nil {
		customerEventsTotal.WithLabelValues(event).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
