package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundry-shop-api/services"
)

// ReportController serves sales summaries and the dashboard
type ReportController struct {
	reports *services.ReportService
}

// NewReportController creates a report controller
func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{reports: reports}
}

// RegisterRoutes mounts the summary and dashboard routes
func (rc *ReportController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/summary/today", rc.Today)
	rg.GET("/summary/report", rc.Report)
	rg.GET("/orders/summary/today", rc.Today)
	rg.GET("/orders/summary/report", rc.Report)
	rg.GET("/reports", rc.Report)
	rg.GET("/dashboard", rc.Dashboard)
}

// Today handles GET /api/v1/summary/today
func (rc *ReportController) Today(c *gin.Context) {
	report, err := rc.reports.Today(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, report)
}

// Report handles GET /api/v1/summary/report?type=weekly|monthly|custom&start_date=&end_date=
// Without a type, the dates give a custom range, and no dates at all cover every order.
func (rc *ReportController) Report(c *gin.Context) {
	kind := c.Query("type")
	from := firstQuery(c, "start_date", "startDate")
	to := firstQuery(c, "end_date", "endDate")

	var (
		report *services.Report
		err    error
	)
	if kind == "" {
		report, err = rc.reports.Summary(c.Request.Context(), from, to)
	} else {
		report, err = rc.reports.Report(c.Request.Context(), kind, from, to)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, report)
}

// Dashboard handles GET /api/v1/dashboard
func (rc *ReportController) Dashboard(c *gin.Context) {
	dashboard, err := rc.reports.Dashboard(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, dashboard)
}

// firstQuery returns the first non-empty query parameter among keys.
func firstQuery(c *gin.Context, keys ...string) string {
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			return v
		}
	}
	return ""
}
