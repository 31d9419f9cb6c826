package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

func PrometheusMetrics() map[MetricTag]prometheus.Collector {
	metrics := make(map[MetricTag]prometheus.Collector)

	for tag, summaryVec := range SummaryVecMetrics {
		metrics[tag] = summaryVec
	}

	for tag, counter := range CounterMetrics {
		metrics[tag] = counter
	}

	for tag, counterVec := range CounterVecMetrics {
		metrics[tag] = counterVec
	}

	for tag, histogramVec := range HistogramVecMetrics {
		metrics[tag] = histogramVec
	}

	return metrics
}

// HistogramVecMetrics is kept for parity with the other collector maps. No
// histogram-backed tag is registered at the moment.
var HistogramVecMetrics = map[MetricTag]*prometheus.HistogramVec{}

var SummaryVecMetrics = map[MetricTag]*prometheus.SummaryVec{
	HttpRequestDurationTag: prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "onramp", Subsystem: "http", Name: string(HttpRequestDurationTag),
		Help: "HTTP requests durations, sliding window = 10m",
	},
		[]string{"status", "route", "method"},
	),
	DrainReconciliationDurationTag: prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "onramp", Subsystem: "reconciler", Name: string(DrainReconciliationDurationTag),
		Help: "Drain reconciliation tick durations",
	},
		[]string{},
	),
}

var CounterMetrics = map[MetricTag]prometheus.Counter{
	CustomersCreatedCounterTag: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "onramp", Subsystem: "business", Name: string(CustomersCreatedCounterTag),
		Help: "A counter of provisioned customers",
	}),
	LiquidationAddressesCreatedCounterTag: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "onramp", Subsystem: "business", Name: string(LiquidationAddressesCreatedCounterTag),
		Help: "A counter of registered liquidation addresses",
	}),
}

var CounterVecMetrics = map[MetricTag]*prometheus.CounterVec{
	DrainsDetectedCounterTag: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "onramp", Subsystem: "reconciler", Name: string(DrainsDetectedCounterTag),
		Help: "A counter of drains recorded by the reconciler",
	},
		DrainLabelNames,
	),
}
