package services

import (
	"context"

	"github.com/recipe-parser/app/models"
)

// CacheStats thống kê cache
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// IVocabularyCache cache snapshot vocabulary theo group
type IVocabularyCache interface {
	// Get lấy snapshot của group
	Get(ctx context.Context, groupID string) (*models.VocabularySnapshot, bool, error)

	// Set lưu snapshot
	Set(ctx context.Context, snapshot *models.VocabularySnapshot) error

	// Delete xóa snapshot của group
	Delete(ctx context.Context, groupID string) error

	// Clear xóa tất cả cache
	Clear(ctx context.Context) error

	// GetStats lấy thống kê cache
	GetStats(ctx context.Context) (*CacheStats, error)

	// Close đóng kết nối (nếu cần)
	Close() error
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
