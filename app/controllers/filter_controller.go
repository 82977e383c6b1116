package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipe-parser/app/requests"
	"github.com/recipe-parser/app/responses"
	"github.com/recipe-parser/internal/queryfilter"
	"github.com/recipe-parser/internal/search"
	"go.uber.org/zap"
)

// FilterController biên dịch biểu thức filter, dùng để debug
type FilterController struct {
	compiler *queryfilter.Compiler
	logger   *zap.Logger
}

// NewFilterController tạo mới FilterController
func NewFilterController(compiler *queryfilter.Compiler, logger *zap.Logger) *FilterController {
	return &FilterController{
		compiler: compiler,
		logger:   logger,
	}
}

// Compile POST /v1/filters/compile
func (fc *FilterController) Compile(c *gin.Context) {
	var req requests.CompileFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fc.logger, err)
		return
	}

	tree, err := fc.compiler.Compile(req.Filter)
	if err != nil {
		abortWithError(c, fc.logger, err)
		return
	}
	mongoQuery, err := queryfilter.ToBSON(tree)
	if err != nil {
		abortWithError(c, fc.logger, err)
		return
	}

	resp := responses.CompileFilterResponse{Tree: tree, Mongo: mongoQuery}
	if tree != nil {
		resp.Canonical = tree.String()
	}
	// operator không có trong Meilisearch chỉ là cảnh báo
	if meili, err := search.ScopedFilter(req.GroupID, tree); err != nil {
		resp.Warnings = append(resp.Warnings, err.Error())
	} else {
		resp.Meilisearch = meili
	}

	c.JSON(http.StatusOK, resp)
}
