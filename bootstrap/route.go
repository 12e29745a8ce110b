package bootstrap

import (
	"net/http"

	"makao/app/http/controllers/api/v1/payments"
	"makao/app/http/middlewares"
	"makao/routes"

	"github.com/gin-gonic/gin"
)

// SetupRoute configures routing:
// 1. registers global middleware
// 2. registers API routes
// 3. configures the 404 handler
func SetupRoute(router *gin.Engine, pc *payments.PaymentsController, cc *payments.CallbacksController) {
	registerGlobalMiddleWare(router)

	routes.RegisterAPIRoutes(router, pc, cc)

	setup404Handler(router)
}

func registerGlobalMiddleWare(router *gin.Engine) {
	router.Use(
		middlewares.Logger(),
		middlewares.Recovery(),
	)
}

func setup404Handler(router *gin.Engine) {
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error_code":    404,
			"error_message": "route not defined, check the url and request method",
		})
	})
}
