package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/recipe-parser/app/models"
)

// CacheService cache snapshot in-memory, dùng khi không có Redis
type CacheService struct {
	mu         sync.RWMutex
	cache      map[string]*models.VocabularySnapshot
	timestamps map[string]time.Time
	ttl        time.Duration
	clock      clockwork.Clock

	hits   atomic.Int64
	misses atomic.Int64
}

var _ IVocabularyCache = (*CacheService)(nil)

// NewCacheService tạo mới CacheService; clock nil dùng đồng hồ thật
func NewCacheService(ttl time.Duration, clock clockwork.Clock) *CacheService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CacheService{
		cache:      make(map[string]*models.VocabularySnapshot),
		timestamps: make(map[string]time.Time),
		ttl:        ttl,
		clock:      clock,
	}
}

// Get lấy snapshot; item hết hạn được xóa luôn
func (cs *CacheService) Get(ctx context.Context, groupID string) (*models.VocabularySnapshot, bool, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	snapshot, exists := cs.cache[groupID]
	if exists && cs.isExpired(groupID) {
		delete(cs.cache, groupID)
		delete(cs.timestamps, groupID)
		exists = false
	}
	if !exists {
		cs.misses.Add(1)
		return nil, false, nil
	}
	cs.hits.Add(1)
	return snapshot, true, nil
}

// Set lưu snapshot
func (cs *CacheService) Set(ctx context.Context, snapshot *models.VocabularySnapshot) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache[snapshot.GroupID] = snapshot
	cs.timestamps[snapshot.GroupID] = cs.clock.Now()
	return nil
}

// Delete xóa snapshot
func (cs *CacheService) Delete(ctx context.Context, groupID string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.cache, groupID)
	delete(cs.timestamps, groupID)
	return nil
}

// Clear xóa toàn bộ cache
func (cs *CacheService) Clear(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache = make(map[string]*models.VocabularySnapshot)
	cs.timestamps = make(map[string]time.Time)
	return nil
}

// GetStats lấy thống kê cache
func (cs *CacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	cs.mu.RLock()
	items := int64(len(cs.cache))
	cs.mu.RUnlock()

	hits, misses := cs.hits.Load(), cs.misses.Load()
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: items,
	}, nil
}

// Close không làm gì
func (cs *CacheService) Close() error { return nil }

// isExpired ttl <= 0 nghĩa là không hết hạn
func (cs *CacheService) isExpired(groupID string) bool {
	if cs.ttl <= 0 {
		return false
	}
	timestamp, exists := cs.timestamps[groupID]
	if !exists {
		return true
	}
	return cs.clock.Since(timestamp) > cs.ttl
}
