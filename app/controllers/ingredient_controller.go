package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recipe-parser/app/requests"
	"github.com/recipe-parser/app/responses"
	"github.com/recipe-parser/app/services"
	"go.uber.org/zap"
)

// IngredientController controller xử lý các request parse nguyên liệu
type IngredientController struct {
	ingredientService *services.IngredientService
	logger            *zap.Logger
}

// NewIngredientController tạo mới IngredientController
func NewIngredientController(ingredientService *services.IngredientService, logger *zap.Logger) *IngredientController {
	return &IngredientController{
		ingredientService: ingredientService,
		logger:            logger,
	}
}

// ParseIngredients parse nhiều dòng nguyên liệu, giữ nguyên thứ tự input
func (ic *IngredientController) ParseIngredients(c *gin.Context) {
	var req requests.ParseIngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, ic.logger, err)
		return
	}

	startTime := time.Now()
	results, err := ic.ingredientService.ParseIngredients(c.Request.Context(), req.Ingredients, services.ParseOptions{
		GroupID:      req.GroupID,
		Parser:       req.Parser,
		PluralPolicy: resolvePluralPolicy(c, req.PluralPolicy),
	})
	if err != nil {
		abortWithError(c, ic.logger, err)
		return
	}

	c.JSON(http.StatusOK, responses.ParseIngredientsResponse{
		Parser:           ic.parserName(req.Parser),
		Results:          results,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// ParseIngredient parse một dòng nguyên liệu
func (ic *IngredientController) ParseIngredient(c *gin.Context) {
	var req requests.ParseIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, ic.logger, err)
		return
	}

	result, err := ic.ingredientService.ParseIngredient(c.Request.Context(), req.Ingredient, services.ParseOptions{
		GroupID:      req.GroupID,
		Parser:       req.Parser,
		PluralPolicy: resolvePluralPolicy(c, req.PluralPolicy),
	})
	if err != nil {
		abortWithError(c, ic.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (ic *IngredientController) parserName(requested string) string {
	key, _ := ic.ingredientService.ParserKey(requested)
	return string(key)
}
