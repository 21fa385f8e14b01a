package server

import (
	"github.com/gin-gonic/gin"

	"contract-backend/internal/analysis"
	"contract-backend/internal/shared/server/middleware"
	"contract-backend/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

// meHandler echoes the caller's identity and the analysis tier their token grants.
func meHandler(c *gin.Context) {
	premium := middleware.PremiumFromContext(c)
	response := gin.H{
		"userId":  middleware.UserIDFromContext(c),
		"premium": premium,
		"tier":    analysis.TierFor(premium),
	}
	if email := middleware.UserEmailFromContext(c); email != "" {
		response["email"] = email
	}
	if name := middleware.UserNameFromContext(c); name != "" {
		response["name"] = name
	}
	respond.OK(c, response)
}
