// Package metrics exposes Prometheus collectors for receipt parsing, bill
// validation and session lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/tabsplit/internal/models"
)

const (
	FieldServiceCharge = "service_charge"
	FieldTotal         = "total"

	ResultValid   = "valid"
	ResultInvalid = "invalid"
)

// Metrics holds the tabsplit collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	receiptsParsed  prometheus.Counter
	itemsExtracted  prometheus.Histogram
	missingFields   *prometheus.CounterVec
	validations     *prometheus.CounterVec
	sessionsCreated prometheus.Counter
	sessionsPurged  prometheus.Counter
}

// New creates the collectors and registers them on registerer.
// A nil registerer uses prometheus.DefaultRegisterer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		receiptsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tabsplit_receipts_parsed_total",
			Help: "Receipts run through the parser.",
		}),
		itemsExtracted: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tabsplit_receipt_items_extracted",
			Help:    "Line items extracted per parsed receipt.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		missingFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabsplit_receipt_missing_fields_total",
			Help: "Parsed receipts lacking a summary field, by field.",
		}, []string{"field"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabsplit_bill_validations_total",
			Help: "Bill validations against the expected total, by result.",
		}, []string{"result"}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tabsplit_sessions_created_total",
			Help: "Splitting sessions created.",
		}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tabsplit_sessions_purged_total",
			Help: "Expired splitting sessions removed by the purge loop.",
		}),
	}

	registerer.MustRegister(
		m.receiptsParsed,
		m.itemsExtracted,
		m.missingFields,
		m.validations,
		m.sessionsCreated,
		m.sessionsPurged,
	)
	return m
}

// ObserveReceipt records one parse result.
func (m *Metrics) ObserveReceipt(receipt models.ParsedReceipt) {
	if m == nil {
		return
	}
	m.receiptsParsed.Inc()
	m.itemsExtracted.Observe(float64(len(receipt.Items)))
	if !receipt.HasServiceCharge() {
		m.missingFields.WithLabelValues(FieldServiceCharge).Inc()
	}
	if !receipt.HasTotal() {
		m.missingFields.WithLabelValues(FieldTotal).Inc()
	}
}

// ObserveValidation records whether computed bills matched the expected total.
func (m *Metrics) ObserveValidation(v models.Validation) {
	if m == nil {
		return
	}
	result := ResultInvalid
	if v.Valid {
		result = ResultValid
	}
	m.validations.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionCreated() {
	if m == nil {
		return
	}
	m.sessionsCreated.Inc()
}

func (m *Metrics) SessionsPurged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsPurged.Add(float64(n))
}
