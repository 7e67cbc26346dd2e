package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/mmynk/tabsplit/internal/models"
)

func TestObserveReceipt(t *testing.T) {
	m := New(prometheus.NewRegistry())

	total := 12.5
	m.ObserveReceipt(models.ParsedReceipt{
		Items: []models.LineItem{{Name: "Burger", Quantity: 1, Price: 10}},
		Total: &total,
	})
	m.ObserveReceipt(models.ParsedReceipt{})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.receiptsParsed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.missingFields.WithLabelValues(FieldServiceCharge)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.missingFields.WithLabelValues(FieldTotal)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.itemsExtracted))
}

func TestObserveValidation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveValidation(models.Validation{Valid: true})
	m.ObserveValidation(models.Validation{Valid: true})
	m.ObserveValidation(models.Validation{Valid: false, Difference: 1})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.validations.WithLabelValues(ResultValid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues(ResultInvalid)))
}

func TestSessionCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SessionCreated()
	m.SessionsPurged(3)
	m.SessionsPurged(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsCreated))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessionsPurged))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveReceipt(models.ParsedReceipt{})
		m.ObserveValidation(models.Validation{})
		m.SessionCreated()
		m.SessionsPurged(1)
	})
}
