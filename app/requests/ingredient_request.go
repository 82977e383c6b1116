package requests

import "github.com/recipe-parser/app/models"

// ParseIngredientsRequest request parse nhiều dòng nguyên liệu
type ParseIngredientsRequest struct {
	Parser       string              `json:"parser,omitempty"`                             // brute | openai, rỗng dùng mặc định
	Ingredients  []string            `json:"ingredients" binding:"required,min=1,max=500"` // Các dòng nguyên liệu
	GroupID      string              `json:"group_id" binding:"required"`                  // ID household
	PluralPolicy models.PluralPolicy `json:"plural_policy,omitempty"`                      // Ghi đè Accept-Language
}

// ParseIngredientRequest request parse một dòng nguyên liệu
type ParseIngredientRequest struct {
	Parser       string              `json:"parser,omitempty"`
	Ingredient   string              `json:"ingredient" binding:"required"`
	GroupID      string              `json:"group_id" binding:"required"`
	PluralPolicy models.PluralPolicy `json:"plural_policy,omitempty"`
}

// CreateFoodRequest request thêm food
type CreateFoodRequest struct {
	GroupID     string   `json:"group_id" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	PluralName  string   `json:"plural_name,omitempty"`
	Description string   `json:"description,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}

// CreateUnitRequest request thêm unit
type CreateUnitRequest struct {
	GroupID            string   `json:"group_id" binding:"required"`
	Name               string   `json:"name" binding:"required"`
	PluralName         string   `json:"plural_name,omitempty"`
	Description        string   `json:"description,omitempty"`
	Abbreviation       string   `json:"abbreviation,omitempty"`
	PluralAbbreviation string   `json:"plural_abbreviation,omitempty"`
	UseAbbreviation    bool     `json:"use_abbreviation,omitempty"`
	Fraction           bool     `json:"fraction,omitempty"`
	Aliases            []string `json:"aliases,omitempty"`
}

// ListVocabularyQuery query params của GET /foods, /units và search
type ListVocabularyQuery struct {
	GroupID string `form:"group_id" binding:"required"`
	Filter  string `form:"filter"`
	Query   string `form:"q"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// CompileFilterRequest request biên dịch biểu thức filter
type CompileFilterRequest struct {
	Filter  string `json:"filter"`
	GroupID string `json:"group_id,omitempty"` // Có thì render thêm Meilisearch filter có scope
}
