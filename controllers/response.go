package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundry-shop-api/services"
)

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// invalidBody reports a request body that is not valid JSON for the endpoint
func invalidBody(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", err.Error())
}

// handleServiceError maps service errors onto the API error envelope
func handleServiceError(c *gin.Context, err error) {
	var ve *services.ValidationError
	var nf *services.NotFoundError
	var se *services.StoreError

	switch {
	case errors.As(err, &ve):
		details := gin.H{"field": ve.Field}
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", ve.Error(), details)
	case errors.As(err, &nf):
		code := strings.ToUpper(nf.Resource) + "_NOT_FOUND"
		respondError(c, http.StatusNotFound, code, nf.Error(), nil)
	case errors.Is(err, services.ErrReceiptsDisabled):
		respondError(c, http.StatusServiceUnavailable, "RECEIPTS_DISABLED", "Receipt archiving is not configured", nil)
	case errors.As(err, &se):
		slog.Error("store failure", slog.String("op", se.Op), slog.Any("error", se.Err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to "+se.Op, nil)
	default:
		slog.Error("request failed", slog.String("path", c.FullPath()), slog.Any("error", err))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error", nil)
	}
}

func guarded(guard []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(guard)+1)
	chain = append(chain, guard...)
	return append(chain, h)
}
