package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundry-shop-api/services"
)

// NotificationController serves the simulated notification endpoints
type NotificationController struct {
	notifications *services.NotificationService
}

// NewNotificationController creates a notification controller
func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// RegisterRoutes mounts the notification routes
func (nc *NotificationController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/notifications", nc.SendNotification)
	rg.GET("/notifications", nc.ListNotifications)
}

// SendNotification handles POST /api/v1/notifications
func (nc *NotificationController) SendNotification(c *gin.Context) {
	var req services.NotificationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	notification, err := nc.notifications.Send(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, notification)
}

// ListNotifications handles GET /api/v1/notifications?order_id=
func (nc *NotificationController) ListNotifications(c *gin.Context) {
	notifications, err := nc.notifications.List(c.Request.Context(), c.Query("order_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, notifications)
}
