package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/app/requests"
	"github.com/recipe-parser/app/responses"
	"github.com/recipe-parser/app/services"
	"go.uber.org/zap"
)

const defaultSearchLimit = 10

// VocabularyController controller quản lý foods/units của household
type VocabularyController struct {
	vocabularyService *services.VocabularyService
	logger            *zap.Logger
}

// NewVocabularyController tạo mới VocabularyController
func NewVocabularyController(vocabularyService *services.VocabularyService, logger *zap.Logger) *VocabularyController {
	return &VocabularyController{
		vocabularyService: vocabularyService,
		logger:            logger,
	}
}

// ListFoods GET /v1/foods?group_id=&filter=
func (vc *VocabularyController) ListFoods(c *gin.Context) {
	var q requests.ListVocabularyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, vc.logger, err)
		return
	}

	foods, err := vc.vocabularyService.ListFoods(c.Request.Context(), q.GroupID, q.Filter, int64(q.Limit))
	if err != nil {
		abortWithError(c, vc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.FoodListResponse{Foods: foods, Total: len(foods)})
}

// ListUnits GET /v1/units?group_id=&filter=
func (vc *VocabularyController) ListUnits(c *gin.Context) {
	var q requests.ListVocabularyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, vc.logger, err)
		return
	}

	units, err := vc.vocabularyService.ListUnits(c.Request.Context(), q.GroupID, q.Filter, int64(q.Limit))
	if err != nil {
		abortWithError(c, vc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.UnitListResponse{Units: units, Total: len(units)})
}

// SearchFoods GET /v1/foods/search?group_id=&q=&filter=
func (vc *VocabularyController) SearchFoods(c *gin.Context) {
	var q requests.ListVocabularyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, vc.logger, err)
		return
	}

	hits, err := vc.vocabularyService.SearchFoods(c.Request.Context(), q.GroupID, q.Query, q.Filter, searchLimit(q.Limit))
	if err != nil {
		abortWithError(c, vc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.FoodSearchResponse{Hits: hits, Total: len(hits)})
}

// SearchUnits GET /v1/units/search?group_id=&q=&filter=
func (vc *VocabularyController) SearchUnits(c *gin.Context) {
	var q requests.ListVocabularyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, vc.logger, err)
		return
	}

	hits, err := vc.vocabularyService.SearchUnits(c.Request.Context(), q.GroupID, q.Query, q.Filter, searchLimit(q.Limit))
	if err != nil {
		abortWithError(c, vc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.UnitSearchResponse{Hits: hits, Total: len(hits)})
}

// CreateFood POST /v1/foods
func (vc *VocabularyController) CreateFood(c *gin.Context) {
	var req requests.CreateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, vc.logger, err)
		return
	}

	food := &models.IngredientFood{
		GroupID:     req.GroupID,
		Name:        req.Name,
		PluralName:  req.PluralName,
		Description: req.Description,
		Aliases:     aliasesFromNames(req.Aliases),
	}
	if err := vc.vocabularyService.CreateFood(c.Request.Context(), food); err != nil {
		abortWithError(c, vc.logger, err)
		return
	}

	vc.logger.Info("Đã thêm food", zap.String("group_id", food.GroupID), zap.String("id", food.ID))
	c.JSON(http.StatusCreated, food)
}

// CreateUnit POST /v1/units
func (vc *VocabularyController) CreateUnit(c *gin.Context) {
	var req requests.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, vc.logger, err)
		return
	}

	unit := &models.IngredientUnit{
		GroupID:            req.GroupID,
		Name:               req.Name,
		PluralName:         req.PluralName,
		Description:        req.Description,
		Abbreviation:       req.Abbreviation,
		PluralAbbreviation: req.PluralAbbreviation,
		UseAbbreviation:    req.UseAbbreviation,
		Fraction:           req.Fraction,
		Aliases:            aliasesFromNames(req.Aliases),
	}
	if err := vc.vocabularyService.CreateUnit(c.Request.Context(), unit); err != nil {
		abortWithError(c, vc.logger, err)
		return
	}

	vc.logger.Info("Đã thêm unit", zap.String("group_id", unit.GroupID), zap.String("id", unit.ID))
	c.JSON(http.StatusCreated, unit)
}

func searchLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	return limit
}

func aliasesFromNames(names []string) []models.IngredientAlias {
	if len(names) == 0 {
		return nil
	}
	aliases := make([]models.IngredientAlias, 0, len(names))
	for _, n := range names {
		aliases = append(aliases, models.IngredientAlias{Name: n})
	}
	return aliases
}
