// Package metrics holds the Prometheus collectors for the purchase flow and
// the HTTP layer. The registry is served at /metrics by cmd/api.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inventory"

var (
	// PurchasesTotal counts purchase attempts by result code ("ok" on success)
	PurchasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purchase",
			Name:      "attempts_total",
			Help:      "Purchase attempts by result.",
		},
		[]string{"result"},
	)

	// UnitsSold counts product units decremented by committed purchases
	UnitsSold = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "purchase",
		Name:      "units_sold_total",
		Help:      "Units removed from stock by committed purchases.",
	})

	// Revenue is the running sum of committed purchase totals
	Revenue = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "purchase",
		Name:      "revenue_total",
		Help:      "Sum of committed purchase totals.",
	})

	InvoiceCollisions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "purchase",
		Name:      "invoice_collisions_total",
		Help:      "Invoice numbers regenerated after a unique violation.",
	})

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Registry is the registry every collector above is attached to.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Registry.MustRegister(
		PurchasesTotal,
		UnitsSold,
		Revenue,
		InvoiceCollisions,
		RequestTotal,
		RequestDuration,
	)
}

// Handler exposes Registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
