package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/app/responses"
	"github.com/recipe-parser/app/services"
	"github.com/recipe-parser/internal/parser"
	"github.com/recipe-parser/internal/queryfilter"
	"github.com/recipe-parser/internal/search"
	"go.uber.org/zap"
)

// Error codes không thuộc parser/queryfilter
const (
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeUnsupportedFilter = "UNSUPPORTED_FILTER"
	ErrCodeSearchDisabled    = "SEARCH_DISABLED"
	ErrCodeDuplicateName     = "DUPLICATE_NAME"
	ErrCodeAliasConflict     = "ALIAS_CONFLICT"
	ErrCodeTimeout           = "REQUEST_TIMEOUT"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// abortWithError trả ErrorResponse với status theo loại lỗi
func abortWithError(c *gin.Context, logger *zap.Logger, err error) {
	status, body := errorResponse(err)
	body.Timestamp = time.Now().Format(time.RFC3339)
	body.RequestID = requestid.Get(c)

	fields := []zap.Field{
		zap.String("path", c.FullPath()),
		zap.String("request_id", body.RequestID),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request thất bại", fields...)
	} else {
		logger.Warn("Request không hợp lệ", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// badRequest lỗi binding/validate input
func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	abortWithError(c, logger, &requestError{err: err})
}

type requestError struct{ err error }

func (e *requestError) Error() string { return "Request không hợp lệ: " + e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func errorResponse(err error) (int, responses.ErrorResponse) {
	var (
		reqErr    *requestError
		parseErr  *parser.ParseError
		filterErr *queryfilter.FilterError
	)
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, responses.ErrorResponse{Error: ErrCodeInvalidRequest, Message: err.Error()}
	case errors.As(err, &filterErr):
		return http.StatusUnprocessableEntity, responses.ErrorResponse{
			Error:   filterErr.Code,
			Message: filterErr.Message,
			Details: gin.H{"fragment": filterErr.Fragment},
		}
	case errors.As(err, &parseErr):
		return parseErrorStatus(parseErr), parseErrorResponse(parseErr)
	case errors.Is(err, search.ErrUnsupportedFilter):
		return http.StatusUnprocessableEntity, responses.ErrorResponse{Error: ErrCodeUnsupportedFilter, Message: err.Error()}
	case errors.Is(err, services.ErrSearchDisabled):
		return http.StatusServiceUnavailable, responses.ErrorResponse{Error: ErrCodeSearchDisabled, Message: err.Error()}
	case errors.Is(err, services.ErrDuplicateName):
		return http.StatusConflict, responses.ErrorResponse{Error: ErrCodeDuplicateName, Message: err.Error()}
	case errors.Is(err, models.ErrAliasConflict):
		return http.StatusConflict, responses.ErrorResponse{Error: ErrCodeAliasConflict, Message: err.Error()}
	case errors.Is(err, models.ErrEmptyName), errors.Is(err, models.ErrDuplicateAlias):
		return http.StatusBadRequest, responses.ErrorResponse{Error: ErrCodeInvalidRequest, Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, responses.ErrorResponse{Error: ErrCodeTimeout, Message: "Request timeout"}
	}
	return http.StatusInternalServerError, responses.ErrorResponse{Error: ErrCodeInternal, Message: err.Error()}
}

func parseErrorStatus(err *parser.ParseError) int {
	switch err.Code {
	case parser.ErrCodeUpstreamParseFailure:
		return http.StatusBadGateway
	case parser.ErrCodeUnknownParser:
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

func parseErrorResponse(err *parser.ParseError) responses.ErrorResponse {
	resp := responses.ErrorResponse{Error: err.Code, Message: err.Error()}
	if err.Code == parser.ErrCodeCountMismatch {
		resp.Details = gin.H{"expected": err.Expected, "got": err.Got}
	}
	return resp
}
