// Package metrics exposes the Prometheus counters shared by the services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics groups the application counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	StockAdjustments *prometheus.CounterVec
	SMSMessages      *prometheus.CounterVec
	OCRScans         *prometheus.CounterVec
	QueueJobs        *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		StockAdjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bogarovo",
			Name:      "stock_adjustments_total",
			Help:      "Applied stock amount changes by reason.",
		}, []string{"reason"}),
		SMSMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bogarovo",
			Name:      "sms_messages_total",
			Help:      "Broadcast SMS send attempts by result.",
		}, []string{"result"}),
		OCRScans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bogarovo",
			Name:      "ocr_scans_total",
			Help:      "Delivery slip text recognition attempts by result.",
		}, []string{"result"}),
		QueueJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bogarovo",
			Name:      "queue_jobs_total",
			Help:      "Background write jobs by name and result.",
		}, []string{"job", "result"}),
	}

	for _, c := range []prometheus.Collector{m.StockAdjustments, m.SMSMessages, m.OCRScans, m.QueueJobs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// StockAdjusted counts one applied stock change.
func (m *Metrics) StockAdjusted(reason string) {
	if m == nil {
		return
	}
	m.StockAdjustments.WithLabelValues(reason).Inc()
}

// SMSSent counts one send attempt.
func (m *Metrics) SMSSent(err error) {
	if m == nil {
		return
	}
	m.SMSMessages.WithLabelValues(result(err)).Inc()
}

// OCRScanned counts one recognition attempt.
func (m *Metrics) OCRScanned(err error) {
	if m == nil {
		return
	}
	m.OCRScans.WithLabelValues(result(err)).Inc()
}

// JobDone counts one finished background job.
func (m *Metrics) JobDone(job string, err error) {
	if m == nil {
		return
	}
	m.QueueJobs.WithLabelValues(job, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
