package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/construmarket/internal/order"
)

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := NewRegistry()
	r := gin.New()
	r.Use(reg.Middleware())
	r.GET("/api/orders/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", gin.WrapH(reg.Handler()))

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/"+id, nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.Requests.WithLabelValues("GET", "/api/orders/:id", "404")))

	reg.OrderPlaced(7)
	reg.OrderRejected("insufficient_stock")
	reg.OrderTransition(order.StatusPending, order.StatusCancelled)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.OrdersPlaced))
	assert.Equal(t, 7.0, testutil.ToFloat64(reg.OrderItems))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `marketplace_orders_rejected_total{reason="insufficient_stock"} 1`)
	assert.Contains(t, body, `marketplace_order_transitions_total{from="pending",to="cancelled"} 1`)
}
