// Package metrics exposes the Prometheus instrumentation: an HTTP middleware
// for gin plus the domain counters the service layer increments.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// SalesSettled counts successfully settled sales.
	SalesSettled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_sales_settled_total",
		Help: "Sales settled.",
	})

	// SalesCancelled counts cancelled sales.
	SalesCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_sales_cancelled_total",
		Help: "Sales cancelled.",
	})

	// MovementsApplied counts committed stock movements by kind.
	MovementsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_stock_movements_total",
			Help: "Stock movements applied, by kind.",
		},
		[]string{"kind"},
	)

	// SequenceFallbacks counts degraded (timestamp-suffixed) sale numbers.
	// Any increment here means the counter table was under heavy contention.
	SequenceFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_sequence_fallbacks_total",
		Help: "Sequence numbers minted via the degraded timestamp fallback.",
	})

	// VouchersIssued counts store-credit vouchers issued (returns + counter sales).
	VouchersIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_vouchers_issued_total",
		Help: "Vouchers issued.",
	})

	// VouchersRedeemed counts voucher redemptions.
	VouchersRedeemed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_vouchers_redeemed_total",
		Help: "Voucher redemptions.",
	})
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		SalesSettled,
		SalesCancelled,
		MovementsApplied,
		SequenceFallbacks,
		VouchersIssued,
		VouchersRedeemed,
	)
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
