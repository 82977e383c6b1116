package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/recipe-parser/app/controllers"
)

// Controllers các controller được đăng ký route
type Controllers struct {
	Ingredient *controllers.IngredientController
	Vocabulary *controllers.VocabularyController
	Filter     *controllers.FilterController
	Admin      *controllers.AdminController
	Health     *controllers.HealthController
}

// SetupAPIRoutes thiết lập tất cả API routes
func SetupAPIRoutes(router *gin.Engine, ctrl Controllers) {
	// API v1 group
	v1 := router.Group("/v1")
	{
		// Ingredient parsing routes
		parser := v1.Group("/parser")
		{
			parser.POST("/ingredients", ctrl.Ingredient.ParseIngredients)
			parser.POST("/ingredient", ctrl.Ingredient.ParseIngredient)
		}

		foods := v1.Group("/foods")
		{
			foods.GET("", ctrl.Vocabulary.ListFoods)
			foods.POST("", ctrl.Vocabulary.CreateFood)
			foods.GET("/search", ctrl.Vocabulary.SearchFoods)
		}

		units := v1.Group("/units")
		{
			units.GET("", ctrl.Vocabulary.ListUnits)
			units.POST("", ctrl.Vocabulary.CreateUnit)
			units.GET("/search", ctrl.Vocabulary.SearchUnits)
		}

		v1.POST("/filters/compile", ctrl.Filter.Compile)

		// Admin routes
		admin := v1.Group("/admin")
		{
			admin.POST("/seed", ctrl.Admin.SeedVocabulary)
			admin.POST("/cache/invalidate", ctrl.Admin.InvalidateCache)
			admin.GET("/stats", ctrl.Admin.GetStats)
			admin.POST("/indexes/build", ctrl.Admin.BuildIndexes)
		}

		// Health check route
		v1.GET("/health", ctrl.Health.HealthCheck)
	}
}

// SetupHealthRoutes thiết lập health check routes
func SetupHealthRoutes(router *gin.Engine, health *controllers.HealthController) {
	// Root health check
	router.GET("/health", health.HealthCheck)

	// Readiness check
	router.GET("/ready", health.ReadinessCheck)

	// Liveness check
	router.GET("/live", health.LivenessCheck)
}
