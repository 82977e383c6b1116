package models

import (
	"time"
)

// RecipeIngredients input của batch reprocess: một recipe cùng các dòng nguyên liệu
type RecipeIngredients struct {
	RecipeID    string   `json:"id"`          // ID recipe
	GroupID     string   `json:"group_id"`    // ID household
	Ingredients []string `json:"ingredients"` // Các dòng nguyên liệu
}

// ReprocessResult kết quả reprocess một recipe
type ReprocessResult struct {
	RecipeID    string             `json:"id"`              // ID recipe
	GroupID     string             `json:"group_id"`        // ID household
	Parser      string             `json:"parser"`          // Parser đã dùng
	Ingredients []ParsedIngredient `json:"ingredients"`     // Kết quả parse
	Status      string             `json:"status"`          // Trạng thái xử lý
	Error       string             `json:"error,omitempty"` // Lỗi (nếu có)
	ProcessedAt time.Time          `json:"processed_at"`    // Thời gian xử lý
}

// Status constants
const (
	ReprocessStatusDone    = "done"
	ReprocessStatusSkipped = "skipped"
)

// NewReprocessResult tạo mới một ReprocessResult
func NewReprocessResult(recipe RecipeIngredients, parser string, parsed []ParsedIngredient) *ReprocessResult {
	return &ReprocessResult{
		RecipeID:    recipe.RecipeID,
		GroupID:     recipe.GroupID,
		Parser:      parser,
		Ingredients: parsed,
		Status:      ReprocessStatusDone,
		ProcessedAt: time.Now(),
	}
}

// NewSkippedResult recipe bị bỏ qua do lỗi
func NewSkippedResult(recipe RecipeIngredients, parser string, err error) *ReprocessResult {
	return &ReprocessResult{
		RecipeID:    recipe.RecipeID,
		GroupID:     recipe.GroupID,
		Parser:      parser,
		Status:      ReprocessStatusSkipped,
		Error:       err.Error(),
		ProcessedAt: time.Now(),
	}
}
