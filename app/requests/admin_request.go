package requests

import "github.com/recipe-parser/app/services"

// SeedVocabularyRequest request seed vocabulary
type SeedVocabularyRequest struct {
	services.VocabularySeed
	RebuildIndexes bool `json:"rebuild_indexes,omitempty"` // Có rebuild indexes không
}

// InvalidateCacheRequest group_id rỗng xóa toàn bộ cache
type InvalidateCacheRequest struct {
	GroupID string `json:"group_id" form:"group_id"`
}
