package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_checkouts_total",
		Help: "Total number of invoices persisted through checkout",
	}, []string{"payment_method"})

	CheckoutFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_checkout_failures_total",
		Help: "Total number of rejected or failed checkouts",
	}, []string{"reason"})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_checkout_latency_seconds",
		Help:    "Latency of invoice persistence during checkout",
		Buckets: prometheus.DefBuckets,
	})

	CartOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_cart_operations_total",
		Help: "Total number of cart register operations",
	}, []string{"operation"})

	OpenCarts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pos_open_carts",
		Help: "Number of carts currently open in the register",
	})

	QRRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_qr_requests_total",
		Help: "Total number of bank transfer QR generation requests",
	}, []string{"result"})

	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_backend_request_duration_seconds",
		Help:    "Latency of calls to the storefront backend API",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	InvoiceEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_invoice_events_total",
		Help: "Total number of invoice events published or applied",
	}, []string{"event_type", "direction"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
