package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PaymentMetrics struct {
	Payments         *prometheus.CounterVec
	GatewayLatencyMS prometheus.Histogram
}

func NewPaymentMetrics() *PaymentMetrics {
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payflow",
		Name:      "payments_total",
		Help:      "Payment attempts by outcome.",
	}, []string{"outcome"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "payflow",
		Name:      "gateway_charge_duration_ms",
		Help:      "Wall-clock time of one gateway charge, polling included.",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 15000},
	})

	prometheus.MustRegister(payments, latency)
	return &PaymentMetrics{Payments: payments, GatewayLatencyMS: latency}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
