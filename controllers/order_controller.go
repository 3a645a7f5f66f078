package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundry-shop-api/services"
)

// OrderController serves the /orders endpoints
type OrderController struct {
	orders   *services.OrderService
	receipts *services.ReceiptService
}

// NewOrderController creates an order controller
func NewOrderController(orders *services.OrderService, receipts *services.ReceiptService) *OrderController {
	return &OrderController{orders: orders, receipts: receipts}
}

// RegisterRoutes mounts the order routes. guard runs before destructive ones.
func (oc *OrderController) RegisterRoutes(rg *gin.RouterGroup, guard ...gin.HandlerFunc) {
	orders := rg.Group("/orders")
	orders.POST("", oc.CreateOrder)
	orders.GET("", oc.ListOrders)
	orders.GET("/:id", oc.GetOrder)
	orders.PUT("/:id", oc.UpdateOrder)
	orders.PATCH("/:id", oc.UpdateOrder)
	orders.PUT("/:id/status", oc.UpdateOrderStatus)
	orders.PATCH("/:id/status", oc.UpdateOrderStatus)
	orders.PUT("/:id/payment", oc.UpdateOrderPayment)
	orders.PATCH("/:id/payment", oc.UpdateOrderPayment)
	orders.POST("/:id/receipt", oc.IssueReceipt)
	orders.DELETE("/:id", guarded(guard, oc.DeleteOrder)...)
}

// UpdateStatusRequest is the body of the status endpoint
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateOrder handles POST /api/v1/orders
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.OrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	order, err := oc.orders.Create(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, order)
}

// ListOrders handles GET /api/v1/orders with optional status, payment_status,
// customer_id, start_date and end_date filters
func (oc *OrderController) ListOrders(c *gin.Context) {
	orders, err := oc.orders.List(c.Request.Context(), services.OrderFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		CustomerID:    c.Query("customer_id"),
		From:          c.Query("start_date"),
		To:            c.Query("end_date"),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id
func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

// UpdateOrder handles PUT and PATCH /api/v1/orders/:id. Both are partial.
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	var req services.OrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	order, err := oc.orders.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

// UpdateOrderStatus handles /api/v1/orders/:id/status
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	order, err := oc.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

// UpdateOrderPayment handles /api/v1/orders/:id/payment
func (oc *OrderController) UpdateOrderPayment(c *gin.Context) {
	var req services.PaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	order, err := oc.orders.UpdatePayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/orders/:id
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id := c.Param("id")
	if err := oc.orders.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// IssueReceipt handles POST /api/v1/orders/:id/receipt
func (oc *OrderController) IssueReceipt(c *gin.Context) {
	receipt, err := oc.receipts.Issue(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, receipt)
}
