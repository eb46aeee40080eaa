package obs

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Quote outcomes recorded by ObserveQuote.
const (
	ResultOK                = "ok"
	ResultInvalidDeductible = "invalid_deductible"
	ResultInvalidInput      = "invalid_input"
)

// Metrics groups the Prometheus collectors of the quoting service.
type Metrics struct {
	registry *prometheus.Registry

	QuotesTotal *prometheus.CounterVec
	QuoteAmount *prometheus.HistogramVec
	ReqTotal    *prometheus.CounterVec
}

// NewMetrics registers the collectors on a private registry.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		QuotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_calculated_total",
			Help:      "Premium calculations by input channel and outcome.",
		}, []string{"channel", "result"}),
		QuoteAmount: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_total_amount",
			Help:      "Distribution of quoted tax-inclusive premiums.",
			Buckets:   []float64{5000, 7500, 10000, 12500, 15000, 20000, 30000, 50000},
		}, []string{"channel"}),
		ReqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.QuotesTotal,
		m.QuoteAmount,
		m.ReqTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveQuote records a calculation outcome. amount is only observed for
// successful quotes.
func (m *Metrics) ObserveQuote(channel, result string, amount float64) {
	m.QuotesTotal.WithLabelValues(channel, result).Inc()
	if result == ResultOK {
		m.QuoteAmount.WithLabelValues(channel).Observe(amount)
	}
}

// ObserveRequest counts a served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int) {
	m.ReqTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
