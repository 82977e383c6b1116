package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/recipe-parser/app/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "recipe_parser:vocab:"

// RedisCacheService cache snapshot vocabulary trên Redis
type RedisCacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

var _ IVocabularyCache = (*RedisCacheService)(nil)

// NewRedisCacheService tạo mới Redis cache service
func NewRedisCacheService(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("lỗi parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("không thể kết nối Redis: %w", err)
	}

	return NewRedisCacheServiceFromClient(client, ttl, logger), nil
}

// NewRedisCacheServiceFromClient dùng client có sẵn
func NewRedisCacheServiceFromClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: redisKeyPrefix,
		ttl:    ttl,
	}
}

// Ping kiểm tra kết nối Redis
func (rcs *RedisCacheService) Ping(ctx context.Context) error {
	return rcs.client.Ping(ctx).Err()
}

// Get lấy snapshot từ Redis
func (rcs *RedisCacheService) Get(ctx context.Context, groupID string) (*models.VocabularySnapshot, bool, error) {
	cacheKey := rcs.prefix + groupID

	val, err := rcs.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		rcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		rcs.logger.Error("Lỗi get từ Redis", zap.Error(err), zap.String("key", cacheKey))
		return nil, false, err
	}

	var snapshot models.VocabularySnapshot
	if err := json.Unmarshal(val, &snapshot); err != nil {
		rcs.logger.Error("Lỗi unmarshal cache data", zap.Error(err), zap.String("key", cacheKey))
		return nil, false, err
	}

	rcs.hits.Add(1)
	rcs.logger.Debug("Redis cache hit", zap.String("group_id", groupID), zap.String("version", snapshot.Version))
	return &snapshot, true, nil
}

// Set lưu snapshot vào Redis
func (rcs *RedisCacheService) Set(ctx context.Context, snapshot *models.VocabularySnapshot) error {
	cacheKey := rcs.prefix + snapshot.GroupID

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("lỗi marshal cache data: %w", err)
	}

	if err := rcs.client.Set(ctx, cacheKey, data, rcs.ttl).Err(); err != nil {
		rcs.logger.Error("Lỗi set vào Redis", zap.Error(err), zap.String("key", cacheKey))
		return err
	}

	rcs.logger.Debug("Đã lưu vào Redis cache", zap.String("group_id", snapshot.GroupID))
	return nil
}

// Delete xóa snapshot của group
func (rcs *RedisCacheService) Delete(ctx context.Context, groupID string) error {
	cacheKey := rcs.prefix + groupID

	if err := rcs.client.Del(ctx, cacheKey).Err(); err != nil {
		rcs.logger.Error("Lỗi delete từ Redis", zap.Error(err), zap.String("key", cacheKey))
		return err
	}

	rcs.logger.Debug("Đã xóa khỏi Redis cache", zap.String("group_id", groupID))
	return nil
}

// Clear xóa toàn bộ snapshot
func (rcs *RedisCacheService) Clear(ctx context.Context) error {
	keys, err := rcs.client.Keys(ctx, rcs.prefix+"*").Result()
	if err != nil {
		return fmt.Errorf("lỗi lấy danh sách keys: %w", err)
	}

	if len(keys) > 0 {
		if err := rcs.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("lỗi xóa keys: %w", err)
		}
	}

	rcs.logger.Info("Đã clear Redis cache", zap.Int("keys_deleted", len(keys)))
	return nil
}

// GetStats lấy thống kê cache
func (rcs *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	totalItems := int64(0)
	if keys, err := rcs.client.Keys(ctx, rcs.prefix+"*").Result(); err == nil {
		totalItems = int64(len(keys))
	} else {
		rcs.logger.Warn("Không thể đếm keys Redis", zap.Error(err))
	}

	hits, misses := rcs.hits.Load(), rcs.misses.Load()
	return &CacheStats{
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: totalItems,
	}, nil
}

// Close đóng kết nối Redis
func (rcs *RedisCacheService) Close() error {
	return rcs.client.Close()
}
