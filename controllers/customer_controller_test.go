package controllers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerEndpoints(t *testing.T) {
	api := setupTestAPI(t, false)

	status, response := api.do(t, http.MethodPost, "/api/v1/customers", map[string]any{"name": "Maria Santos", "contact": "0917"})
	require.Equal(t, http.StatusCreated, status)
	maria := data(t, response)

	status, response = api.do(t, http.MethodPost, "/api/v1/customers", map[string]any{"name": "Maria Santos", "email": "maria@example.com"})
	require.Equal(t, http.StatusOK, status)
	merged := data(t, response)
	assert.Equal(t, maria["id"], merged["id"])
	assert.Equal(t, "0917", merged["contact"])
	assert.Equal(t, "maria@example.com", merged["email"])

	status, response = api.do(t, http.MethodPost, "/api/v1/customers", map[string]any{"contact": "0917"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(response))

	api.createOrder(t, map[string]any{"customer_name": "Maria Santos", "weight": 6, "service_type": "wash"})
	api.createOrder(t, map[string]any{"customer_name": "Ana Cruz", "contact": "0999", "weight": 6, "service_type": "wash"})

	status, response = api.do(t, http.MethodGet, "/api/v1/customers", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list(t, response), 2)

	status, response = api.do(t, http.MethodGet, "/api/v1/customers?search=0999", nil)
	require.Equal(t, http.StatusOK, status)
	found := list(t, response)
	require.Len(t, found, 1)
	assert.Equal(t, "Ana Cruz", found[0].(map[string]any)["name"])

	byName := "/api/v1/customers/" + url.PathEscape("Maria Santos")
	status, response = api.do(t, http.MethodGet, byName, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, maria["id"], data(t, response)["id"])

	status, response = api.do(t, http.MethodGet, byName+"/orders", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list(t, response), 1)

	status, response = api.do(t, http.MethodPut, "/api/v1/customers/"+maria["id"].(string), map[string]any{"contact": ""})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "", data(t, response)["contact"])

	status, response = api.do(t, http.MethodDelete, byName, nil)
	require.Equal(t, http.StatusOK, status)

	status, response = api.do(t, http.MethodGet, byName, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "CUSTOMER_NOT_FOUND", errorCode(response))

	status, response = api.do(t, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list(t, response), 2, "orders outlive their customer")
}
