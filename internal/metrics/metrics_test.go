package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.StockAdjusted("bulk")
	m.StockAdjusted("bulk")
	m.SMSSent(nil)
	m.SMSSent(errors.New("gateway down"))
	m.OCRScanned(nil)
	m.JobDone("stock.create", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StockAdjustments.WithLabelValues("bulk")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SMSMessages.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SMSMessages.WithLabelValues(ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OCRScans.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueueJobs.WithLabelValues("stock.create", ResultOK)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.StockAdjusted("manual")
		m.SMSSent(nil)
		m.OCRScanned(nil)
		m.JobDone("x", nil)
	})
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}
