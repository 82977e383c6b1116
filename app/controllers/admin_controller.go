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

// AdminController controller xử lý các request admin
type AdminController struct {
	adminService *services.AdminService
	logger       *zap.Logger
}

// NewAdminController tạo mới AdminController
func NewAdminController(adminService *services.AdminService, logger *zap.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// SeedVocabulary seed foods/units của một household; ?dry_run=true chỉ validate
func (ac *AdminController) SeedVocabulary(c *gin.Context) {
	var req requests.SeedVocabularyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, ac.logger, err)
		return
	}

	// Kiểm tra dry run
	if c.Query("dry_run") == "true" {
		warnings := services.ValidateSeed(&req.VocabularySeed)
		c.JSON(http.StatusOK, responses.SeedVocabularyResponse{
			ValidationPassed: len(warnings) == 0,
			Warnings:         warnings,
			FoodsProcessed:   len(req.Foods),
			UnitsProcessed:   len(req.Units),
			DryRun:           true,
			Message:          "Validation hoàn thành",
		})
		return
	}

	if warnings := services.ValidateSeed(&req.VocabularySeed); len(warnings) > 0 {
		c.JSON(http.StatusBadRequest, responses.SeedVocabularyResponse{
			ValidationPassed: false,
			Warnings:         warnings,
			Message:          "Dữ liệu seed không hợp lệ",
		})
		return
	}

	result, err := ac.adminService.Seed(c.Request.Context(), &req.VocabularySeed, req.RebuildIndexes)
	if err != nil {
		abortWithError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, responses.SeedVocabularyResponse{
		ValidationPassed: true,
		FoodsProcessed:   result.FoodsProcessed,
		UnitsProcessed:   result.UnitsProcessed,
		Written:          result.Written,
		Indexed:          result.Indexed,
		ProcessingTimeMs: result.ProcessingTimeMs,
		Message:          "Seed vocabulary thành công",
	})
}

// InvalidateCache invalidate cache vocabulary; không có group_id thì xóa toàn bộ
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	var req requests.InvalidateCacheRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, ac.logger, err)
		return
	}

	startTime := time.Now()
	if err := ac.adminService.InvalidateCache(c.Request.Context(), req.GroupID); err != nil {
		abortWithError(c, ac.logger, err)
		return
	}

	processingTime := time.Since(startTime)
	ac.logger.Info("Invalidate cache thành công",
		zap.String("group_id", req.GroupID),
		zap.Duration("duration", processingTime))

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "Invalidate cache thành công",
		Data: map[string]interface{}{
			"group_id":           req.GroupID,
			"processing_time_ms": processingTime.Milliseconds(),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// GetStats lấy thống kê hệ thống
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.GetSystemStats(c.Request.Context(), c.Query("group_id"))
	if err != nil {
		abortWithError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// BuildIndexes build lại Meilisearch indexes
func (ac *AdminController) BuildIndexes(c *gin.Context) {
	startTime := time.Now()

	if err := ac.adminService.BuildIndexes(); err != nil {
		abortWithError(c, ac.logger, err)
		return
	}

	processingTime := time.Since(startTime)
	ac.logger.Info("Build indexes thành công", zap.Duration("duration", processingTime))

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "Build indexes thành công",
		Data: map[string]interface{}{
			"processing_time_ms": processingTime.Milliseconds(),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
