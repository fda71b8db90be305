package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shanehull/tdnetviewer/internal/tdnet"
	"github.com/shanehull/tdnetviewer/internal/types"
)

type Metrics struct {
	listingPages  *prometheus.CounterVec
	summaries     *prometheus.CounterVec
	summaryErrors *prometheus.CounterVec
	requests      *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		listingPages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tdnet_listing_pages_total",
			Help: "Listing pages requested from TDnet, by outcome.",
		}, []string{"outcome"}),
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tdnet_summaries_total",
			Help: "Summaries returned, by method.",
		}, []string{"method"}),
		summaryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tdnet_summary_errors_total",
			Help: "Summary requests that failed, by reason.",
		}, []string{"reason"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tdnet_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"route", "status"}),
	}
	reg.MustRegister(m.listingPages, m.summaries, m.summaryErrors, m.requests)
	return m
}

// ObservePage is handed to the listing fetcher as its page observer.
func (m *Metrics) ObservePage(outcome tdnet.PageOutcome) {
	m.listingPages.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) observeSummary(method types.Method) {
	if method == "" {
		method = "none"
	}
	m.summaries.WithLabelValues(string(method)).Inc()
}

func (m *Metrics) observeSummaryError(reason string) {
	m.summaryErrors.WithLabelValues(reason).Inc()
}
