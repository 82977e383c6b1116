package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipe-parser/app/controllers"
)

// SetupWebRoutes thiết lập web routes
func SetupWebRoutes(router *gin.Engine) {
	web := router.Group("/")
	{
		// Home page
		web.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message": "Recipe Ingredient Parser Service",
				"version": controllers.Version,
				"docs":    "/docs",
			})
		})

		// API documentation
		web.GET("/docs", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"api": "Recipe Ingredient Parser API v1",
				"endpoints": map[string]string{
					"parse":          "POST /v1/parser/ingredients",
					"parse_one":      "POST /v1/parser/ingredient",
					"foods":          "GET|POST /v1/foods",
					"units":          "GET|POST /v1/units",
					"search_foods":   "GET /v1/foods/search",
					"search_units":   "GET /v1/units/search",
					"compile_filter": "POST /v1/filters/compile",
					"health":         "GET /health",
				},
			})
		})
	}
}
