package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kendall-kelly/laundry-shop-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func call(t *testing.T, client *http.Client, method, url string, body any) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// TestFrontCounterDay plays a day at the counter over real HTTP against the
// flat-file store: drop-offs, a correction, payment and the closing summary.
func TestFrontCounterDay(t *testing.T) {
	testutil.RequireTestEnvironment(t)

	server := httptest.NewServer(newTestRouter(t, testConfig(), testutil.NewFileStore(t), nil))
	defer server.Close()
	client := server.Client()
	base := server.URL + "/api/v1"

	type order struct {
		ID     string  `json:"id"`
		Price  float64 `json:"price"`
		Status string  `json:"status"`
	}

	status, resp := call(t, client, http.MethodPost, base+"/orders", map[string]any{
		"customer_name": "Maria", "contact": "0917", "weight": 6, "service_type": "wash", "add_ons": []string{"fabcon"},
	})
	require.Equal(t, http.StatusCreated, status)
	var first order
	require.NoError(t, json.Unmarshal(resp.Data, &first))
	assert.Equal(t, 170.0, first.Price)

	status, resp = call(t, client, http.MethodPost, base+"/orders", map[string]any{
		"customer_name": "Ana", "weight": 8, "service_type": "dry-clean",
	})
	require.Equal(t, http.StatusCreated, status)
	var second order
	require.NoError(t, json.Unmarshal(resp.Data, &second))
	assert.Equal(t, 290.0, second.Price)

	// the scale was off by half a kilo
	status, resp = call(t, client, http.MethodPatch, base+"/orders/"+first.ID, map[string]any{"weight": 6.5})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &first))
	assert.Equal(t, 180.0, first.Price)

	status, _ = call(t, client, http.MethodPatch, base+"/orders/"+first.ID+"/payment", map[string]any{"payment_status": "paid", "paid_amount": 180})
	require.Equal(t, http.StatusOK, status)
	status, _ = call(t, client, http.MethodPatch, base+"/orders/"+second.ID+"/status", map[string]any{"status": "cancelled"})
	require.Equal(t, http.StatusOK, status)

	status, resp = call(t, client, http.MethodGet, base+"/summary/today", nil)
	require.Equal(t, http.StatusOK, status)
	var summary struct {
		TotalSales   float64 `json:"total_sales"`
		TotalOrders  int     `json:"total_orders"`
		PaidOrders   int     `json:"paid_orders"`
		UnpaidOrders int     `json:"unpaid_orders"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.Equal(t, 180.0, summary.TotalSales)
	assert.Equal(t, 2, summary.TotalOrders)
	assert.Equal(t, 1, summary.PaidOrders)
	assert.Equal(t, 1, summary.UnpaidOrders)

	status, resp = call(t, client, http.MethodPost, base+"/orders/"+first.ID+"/receipt", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "RECEIPTS_DISABLED", resp.Error.Code)
}

// TestAuthEnabledAcceptance checks that operator tokens guard the business
// routes but not the health probe.
func TestAuthEnabledAcceptance(t *testing.T) {
	cfg := testConfig()
	cfg.Auth0Domain = "shop.auth0.com"
	cfg.Auth0Audience = "https://laundry.example.com"

	server := httptest.NewServer(newTestRouter(t, cfg, testutil.NewSQLiteStore(t), nil))
	defer server.Close()
	client := server.Client()

	status, _ := call(t, client, http.MethodGet, server.URL+"/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, status)

	status, resp := call(t, client, http.MethodGet, server.URL+"/api/v1/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_TOKEN", resp.Error.Code)
}

func TestCORSPreflight(t *testing.T) {
	server := httptest.NewServer(newTestRouter(t, testConfig(), testutil.NewFileStore(t), nil))
	defer server.Close()

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/v1/orders", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://counter.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
