package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundry-shop-api/middleware"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
		},
	}
}

// MockAuth returns a middleware that authenticates every request as
// operatorID with the given scopes, standing in for EnsureValidToken.
func MockAuth(operatorID string, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("operator_id", operatorID)
		c.Set("validated_claims", MockValidatedClaims(operatorID, "https://test.auth0.com/", scopes))
		c.Next()
	}
}
