// Package metrics exposes HTTP and order counters on a private Prometheus
// registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeMC777/construmarket/internal/order"
)

type Registry struct {
	reg *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	OrdersPlaced    prometheus.Counter
	OrderItems      prometheus.Counter
	OrdersRejected  *prometheus.CounterVec
	Transitions     *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_http_requests_total",
	}, []string{"method", "route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketplace_http_request_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	placed := prometheus.NewCounter(prometheus.CounterOpts{Name: "marketplace_orders_placed_total"})
	items := prometheus.NewCounter(prometheus.CounterOpts{Name: "marketplace_order_units_total"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_orders_rejected_total",
	}, []string{"reason"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_order_transitions_total",
	}, []string{"from", "to"})

	r.MustRegister(requests, duration, placed, items, rejected, transitions,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return &Registry{
		reg:             r,
		Requests:        requests,
		RequestDuration: duration,
		OrdersPlaced:    placed,
		OrderItems:      items,
		OrdersRejected:  rejected,
		Transitions:     transitions,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// Middleware records one sample per request, labelled by route template so
// ids do not explode cardinality.
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (r *Registry) OrderPlaced(itemCount int) {
	r.OrdersPlaced.Inc()
	r.OrderItems.Add(float64(itemCount))
}

func (r *Registry) OrderRejected(reason string) { r.OrdersRejected.WithLabelValues(reason).Inc() }

func (r *Registry) OrderTransition(from, to order.Status) {
	r.Transitions.WithLabelValues(string(from), string(to)).Inc()
}

var _ order.Metrics = (*Registry)(nil)
