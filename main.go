package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundry-shop-api/config"
	"github.com/kendall-kelly/laundry-shop-api/controllers"
	"github.com/kendall-kelly/laundry-shop-api/middleware"
	"github.com/kendall-kelly/laundry-shop-api/pricing"
	"github.com/kendall-kelly/laundry-shop-api/services"
	"github.com/kendall-kelly/laundry-shop-api/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	config.SetConfig(cfg)

	logger.Info("starting Laundry Shop API server", slog.String("env", cfg.GoEnv), slog.String("store", cfg.StoreDriver))

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.Close()

	var archive services.ReceiptArchive
	if cfg.ReceiptsEnabled() {
		s3Service, err := services.NewS3Service(context.Background(), cfg)
		if err != nil {
			logger.Error("failed to initialise receipt archive", slog.Any("error", err))
			os.Exit(1)
		}
		archive = s3Service
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := setupRouter(cfg, st, archive, logger)
	if err != nil {
		logger.Error("failed to set up router", slog.Any("error", err))
		os.Exit(1)
	}

	addr := ":" + cfg.Port
	logger.Info("server is running", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// setupRouter wires the services and mounts every route under /api/v1
func setupRouter(cfg *config.Config, st store.Store, archive services.ReceiptArchive, logger *slog.Logger) (*gin.Engine, error) {
	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_TIMEZONE %q: %w", cfg.ReportTimezone, err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), cors.New(corsConfig(cfg)))

	engine := pricing.NewEngine(cfg.Pricing)
	opts := []services.Option{services.WithLogger(logger)}
	orders := services.NewOrderService(st, engine, loc, opts...)
	receipts := services.NewReceiptService(st.Orders(), engine, archive, opts...)
	customers := services.NewCustomerService(st, opts...)
	reports := services.NewReportService(st.Orders(), loc, opts...)
	notifications := services.NewNotificationService(st, opts...)

	v1 := router.Group("/api/v1")
	v1.GET("/health", healthCheck)
	v1.GET("/database/status", databaseStatus(st))
	v1.GET("/pricing", pricingInfo(engine))

	api := v1.Group("")
	var guard []gin.HandlerFunc
	if cfg.AuthEnabled() {
		ensureToken, err := middleware.EnsureValidToken(cfg)
		if err != nil {
			return nil, err
		}
		api.Use(ensureToken)
		guard = append(guard, middleware.RequireScope(middleware.ScopeDeleteRecords))
	}

	controllers.NewOrderController(orders, receipts).RegisterRoutes(api, guard...)
	controllers.NewCustomerController(customers).RegisterRoutes(api, guard...)
	controllers.NewReportController(reports).RegisterRoutes(api)
	controllers.NewNotificationController(notifications).RegisterRoutes(api)

	return router, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	if len(cfg.CORSAllowedOrigins) == 0 || slices.Contains(cfg.CORSAllowedOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return c
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Laundry Shop API is running",
	})
}

// databaseStatus checks store connectivity and lists the tables of a
// relational backend
func databaseStatus(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		gs, ok := st.(*store.GormStore)
		if !ok {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "File store ready",
				"driver":  config.StoreDriverFile,
			})
			return
		}

		sqlDB, err := gs.DB().DB()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to get database instance",
				},
			})
			return
		}

		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_CONNECTION_ERROR",
					"message": "Database connection failed",
				},
			})
			return
		}

		tables, err := gs.DB().Migrator().GetTables()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_QUERY_ERROR",
					"message": "Failed to query tables",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Database connected",
			"driver":  config.StoreDriverGorm,
			"tables":  tables,
		})
	}
}

// pricingInfo publishes the active rate table so clients can preview prices
func pricingInfo(engine *pricing.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		rates := engine.Rates()
		serviceRates := gin.H{}
		for _, name := range engine.ServiceTypes() {
			svc := rates.Services[name]
			serviceRates[name] = gin.H{
				"base_rate":       svc.BaseRate.InexactFloat64(),
				"addons_eligible": svc.AddOnsEligible,
			}
		}
		addOns := gin.H{}
		for name, price := range rates.AddOnPrices {
			addOns[name] = price.InexactFloat64()
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"min_weight":         rates.MinWeight.InexactFloat64(),
				"max_weight":         rates.MaxWeight.InexactFloat64(),
				"excess_rate_per_kg": rates.ExcessPerKg.InexactFloat64(),
				"addon_gate":         rates.Gate,
				"addon_mode":         rates.Mode,
				"services":           serviceRates,
				"add_ons":            addOns,
			},
		})
	}
}
