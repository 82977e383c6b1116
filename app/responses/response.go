package responses

import (
	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/internal/queryfilter"
	"github.com/recipe-parser/internal/search"
)

// ErrorResponse response lỗi
type ErrorResponse struct {
	Error     string      `json:"error"`                // Mã lỗi
	Message   string      `json:"message"`              // Thông báo lỗi
	Details   interface{} `json:"details,omitempty"`    // Chi tiết lỗi
	Timestamp string      `json:"timestamp"`            // Thời gian xảy ra lỗi
	RequestID string      `json:"request_id,omitempty"` // ID của request
}

// SuccessResponse response thành công
type SuccessResponse struct {
	Success   bool        `json:"success"`        // Có thành công không
	Message   string      `json:"message"`        // Thông báo
	Data      interface{} `json:"data,omitempty"` // Dữ liệu
	Timestamp string      `json:"timestamp"`      // Thời gian
}

// HealthCheckResponse response kiểm tra sức khỏe
type HealthCheckResponse struct {
	Status    string            `json:"status"`    // Trạng thái sức khỏe
	Timestamp string            `json:"timestamp"` // Thời gian kiểm tra
	Uptime    string            `json:"uptime"`    // Thời gian hoạt động
	Version   string            `json:"version"`   // Phiên bản
	Services  map[string]string `json:"services"`  // Trạng thái các service
}

// ParseIngredientsResponse response parse nhiều dòng
type ParseIngredientsResponse struct {
	Parser           string                    `json:"parser"`
	Results          []models.ParsedIngredient `json:"results"`
	ProcessingTimeMs int64                     `json:"processing_time_ms"`
}

// FoodListResponse danh sách foods
type FoodListResponse struct {
	Foods []models.IngredientFood `json:"foods"`
	Total int                     `json:"total"`
}

// UnitListResponse danh sách units
type UnitListResponse struct {
	Units []models.IngredientUnit `json:"units"`
	Total int                     `json:"total"`
}

// FoodSearchResponse kết quả search foods
type FoodSearchResponse struct {
	Hits  []search.FoodHit `json:"hits"`
	Total int              `json:"total"`
}

// UnitSearchResponse kết quả search units
type UnitSearchResponse struct {
	Hits  []search.UnitHit `json:"hits"`
	Total int              `json:"total"`
}

// CompileFilterResponse cây filter đã biên dịch cùng các dạng render
type CompileFilterResponse struct {
	Tree        queryfilter.Node `json:"tree"`
	Canonical   string           `json:"canonical"`
	Mongo       interface{}      `json:"mongo"`
	Meilisearch string           `json:"meilisearch,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
}

// SeedVocabularyResponse response seed vocabulary
type SeedVocabularyResponse struct {
	ValidationPassed bool     `json:"validation_passed"`            // Validation có pass không
	Warnings         []string `json:"warnings,omitempty"`           // Cảnh báo
	FoodsProcessed   int      `json:"foods_processed,omitempty"`    // Số foods đã xử lý
	UnitsProcessed   int      `json:"units_processed,omitempty"`    // Số units đã xử lý
	Written          int64    `json:"written,omitempty"`            // Số bản ghi đã ghi
	Indexed          bool     `json:"indexed"`                      // Đã index vào Meilisearch chưa
	ProcessingTimeMs int64    `json:"processing_time_ms,omitempty"` // Thời gian xử lý (ms)
	DryRun           bool     `json:"dry_run"`                      // Có phải dry run không
	Message          string   `json:"message"`                      // Thông báo
}
