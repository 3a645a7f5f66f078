package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationEndpoints(t *testing.T) {
	api := setupTestAPI(t, false)
	order := api.createOrder(t, map[string]any{"customer_name": "Maria", "contact": "0917", "weight": 6, "service_type": "wash"})
	id := order["id"].(string)

	status, response := api.do(t, http.MethodPost, "/api/v1/notifications", map[string]any{"order_id": id, "type": "payment"})
	require.Equal(t, http.StatusCreated, status)
	sent := data(t, response)
	assert.Equal(t, "Hi Maria, pending balance: ₱160.00.", sent["message"])
	assert.Equal(t, "sms", sent["channel"])
	assert.Equal(t, "0917", sent["recipient"])

	status, response = api.do(t, http.MethodPost, "/api/v1/notifications", map[string]any{"order_id": id, "type": "status", "channel": "email"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(response))

	status, response = api.do(t, http.MethodPost, "/api/v1/notifications", map[string]any{"order_id": "nope", "type": "status"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "ORDER_NOT_FOUND", errorCode(response))

	status, response = api.do(t, http.MethodGet, "/api/v1/notifications?order_id="+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list(t, response), 1)
}
