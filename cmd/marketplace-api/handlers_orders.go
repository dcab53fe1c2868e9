package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/construmarket/internal/apperr"
	"github.com/MikeMC777/construmarket/internal/auth"
	"github.com/MikeMC777/construmarket/internal/httpx"
	"github.com/MikeMC777/construmarket/internal/order"
)

const idempotencyHeader = "Idempotency-Key"

func createOrderHandler(orders *order.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in order.CreateOrderRequest
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		key := strings.TrimSpace(c.GetHeader(idempotencyHeader))
		if len(key) > 128 {
			httpx.Fail(c, log, apperr.Validation("Validation failed", idempotencyHeader+" must be at most 128 characters"))
			return
		}
		o, created, err := orders.Create(c.Request.Context(), auth.MustIdentity(c), in, key)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		if !created {
			httpx.OK(c, http.StatusOK, "Order already created", gin.H{"order": o})
			return
		}
		httpx.OK(c, http.StatusCreated, "Order created successfully", gin.H{"order": o})
	}
}

func myOrdersHandler(orders *order.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := httpx.ParsePage(c)
		list, total, err := orders.ListMine(c.Request.Context(), auth.MustIdentity(c), page.Limit, page.Offset())
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.Paged(c, gin.H{"orders": list}, len(list), page, total)
	}
}

func allOrdersHandler(orders *order.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := httpx.ParsePage(c)
		list, total, err := orders.ListAll(c.Request.Context(), auth.MustIdentity(c), order.Filter{
			Status:        order.Status(c.Query("status")),
			PaymentStatus: order.PaymentStatus(c.Query("paymentStatus")),
			Limit:         page.Limit,
			Offset:        page.Offset(),
		})
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.Paged(c, gin.H{"orders": list}, len(list), page, total)
	}
}

func getOrderHandler(orders *order.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.Get(c.Request.Context(), auth.MustIdentity(c), c.Param("id"))
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.OK(c, http.StatusOK, "", gin.H{"order": o})
	}
}

func updateOrderStatusHandler(orders *order.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in order.UpdateStatusRequest
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Fail(c, log, err)
			return
		}
		o, err := orders.UpdateStatus(c.Request.Context(), auth.MustIdentity(c), c.Param("id"), in)
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.OK(c, http.StatusOK, "Order status updated successfully", gin.H{"order": o})
	}
}

func cancelOrderHandler(orders *order.Service, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.Cancel(c.Request.Context(), auth.MustIdentity(c), c.Param("id"))
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		httpx.OK(c, http.StatusOK, "Order cancelled successfully", gin.H{"order": o})
	}
}
