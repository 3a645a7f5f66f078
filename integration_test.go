package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundry-shop-api/config"
	"github.com/kendall-kelly/laundry-shop-api/pricing"
	"github.com/kendall-kelly/laundry-shop-api/services"
	"github.com/kendall-kelly/laundry-shop-api/store"
	"github.com/kendall-kelly/laundry-shop-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func testConfig() *config.Config {
	return &config.Config{
		GoEnv:              "test",
		StoreDriver:        config.StoreDriverGorm,
		ReportTimezone:     "UTC",
		CORSAllowedOrigins: []string{"*"},
		Pricing:            pricing.DefaultRates(),
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, st store.Store, archive services.ReceiptArchive) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := setupRouter(cfg, st, archive, testutil.DiscardLogger())
	require.NoError(t, err)
	return router
}

// RouterIntegrationSuite drives the fully wired router against one backend
type RouterIntegrationSuite struct {
	suite.Suite
	newStore func(t *testing.T) store.Store
	router   *gin.Engine
}

func (s *RouterIntegrationSuite) SetupTest() {
	testutil.RequireTestEnvironment(s.T())
	s.router = newTestRouter(s.T(), testConfig(), s.newStore(s.T()), services.NewMockS3Service())
}

func TestRouterIntegrationGorm(t *testing.T) {
	suite.Run(t, &RouterIntegrationSuite{newStore: func(t *testing.T) store.Store { return testutil.NewSQLiteStore(t) }})
}

func TestRouterIntegrationFile(t *testing.T) {
	suite.Run(t, &RouterIntegrationSuite{newStore: func(t *testing.T) store.Store { return testutil.NewFileStore(t) }})
}

func (s *RouterIntegrationSuite) request(method, path string, body any) (int, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var response map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return w.Code, response
}

func (s *RouterIntegrationSuite) TestHealthAndPrefix() {
	status, response := s.request(http.MethodGet, "/api/v1/health", nil)
	s.Equal(http.StatusOK, status)
	s.Equal("Laundry Shop API is running", response["message"])

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusNotFound, w.Code, "Endpoint should require /api/v1 prefix")
}

func (s *RouterIntegrationSuite) TestPricingInfo() {
	status, response := s.request(http.MethodGet, "/api/v1/pricing", nil)
	s.Require().Equal(http.StatusOK, status)
	data := response["data"].(map[string]interface{})
	s.Equal(6.0, data["min_weight"])
	s.Equal(8.0, data["max_weight"])
	s.Equal("wash-only", data["addon_gate"])
	s.Contains(data["services"], "wash")
}

func (s *RouterIntegrationSuite) TestOrderWorkflow() {
	status, response := s.request(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"customer_name": "Maria Santos",
		"contact":       "09171234567",
		"weight":        "7.5",
		"service_type":  "wash",
		"add_ons":       []map[string]interface{}{{"name": "fabcon", "quantity": 1}, {"name": "powder", "quantity": 2}},
	})
	s.Require().Equal(http.StatusCreated, status, "response: %v", response)
	order := response["data"].(map[string]interface{})
	id := order["id"].(string)
	// 160 + 1.5*20 + 3*10
	s.Equal(220.0, order["price"])

	status, _ = s.request(http.MethodPatch, "/api/v1/orders/"+id+"/status", map[string]interface{}{"status": "ready"})
	s.Require().Equal(http.StatusOK, status)

	status, response = s.request(http.MethodPost, "/api/v1/notifications", map[string]interface{}{"order_id": id, "type": "ready"})
	s.Require().Equal(http.StatusCreated, status)
	s.Equal("Hi Maria Santos, laundry is ready! Total: ₱220.00.", response["data"].(map[string]interface{})["message"])

	status, response = s.request(http.MethodPost, "/api/v1/orders/"+id+"/receipt", nil)
	s.Require().Equal(http.StatusCreated, status)
	s.Contains(response["data"].(map[string]interface{})["key"], id)

	status, response = s.request(http.MethodGet, "/api/v1/dashboard", nil)
	s.Require().Equal(http.StatusOK, status)
	dashboard := response["data"].(map[string]interface{})
	s.Equal(1.0, dashboard["ready_orders"])

	status, response = s.request(http.MethodGet, "/api/v1/customers/Maria%20Santos/orders", nil)
	s.Require().Equal(http.StatusOK, status)
	s.Len(response["data"], 1)

	status, _ = s.request(http.MethodDelete, "/api/v1/orders/"+id, nil)
	s.Equal(http.StatusOK, status)
}

func TestSetupRouterRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.ReportTimezone = "Mars/Olympus"
	_, err := setupRouter(cfg, testutil.NewFileStore(t), nil, testutil.DiscardLogger())
	assert.Error(t, err)
}
