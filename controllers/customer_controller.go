package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundry-shop-api/services"
)

// CustomerController serves the /customers endpoints. :key is a customer id
// or name.
type CustomerController struct {
	customers *services.CustomerService
}

// NewCustomerController creates a customer controller
func NewCustomerController(customers *services.CustomerService) *CustomerController {
	return &CustomerController{customers: customers}
}

// RegisterRoutes mounts the customer routes. guard runs before destructive ones.
func (cc *CustomerController) RegisterRoutes(rg *gin.RouterGroup, guard ...gin.HandlerFunc) {
	customers := rg.Group("/customers")
	customers.POST("", cc.CreateCustomer)
	customers.GET("", cc.ListCustomers)
	customers.GET("/:key", cc.GetCustomer)
	customers.GET("/:key/orders", cc.CustomerOrders)
	customers.PUT("/:key", cc.UpdateCustomer)
	customers.DELETE("/:key", guarded(guard, cc.DeleteCustomer)...)
}

// CreateCustomer handles POST /api/v1/customers. A known name is merged and
// answered with 200 instead of 201.
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var req services.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	customer, created, err := cc.customers.Create(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond(c, status, customer)
}

// ListCustomers handles GET /api/v1/customers?search=
func (cc *CustomerController) ListCustomers(c *gin.Context) {
	customers, err := cc.customers.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, customers)
}

// GetCustomer handles GET /api/v1/customers/:key
func (cc *CustomerController) GetCustomer(c *gin.Context) {
	customer, err := cc.customers.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, customer)
}

// CustomerOrders handles GET /api/v1/customers/:key/orders
func (cc *CustomerController) CustomerOrders(c *gin.Context) {
	orders, err := cc.customers.History(c.Request.Context(), c.Param("key"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, orders)
}

// UpdateCustomer handles PUT /api/v1/customers/:key
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	var req services.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, err)
		return
	}

	customer, err := cc.customers.Update(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /api/v1/customers/:key
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	key := c.Param("key")
	if err := cc.customers.Delete(c.Request.Context(), key); err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"key": key, "deleted": true})
}
