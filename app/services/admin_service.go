package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/internal/search"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// VocabularyWriter ghi vocabulary theo lô
type VocabularyWriter interface {
	LoadSnapshot(ctx context.Context, groupID string) (*models.VocabularySnapshot, error)
	UpsertFoods(ctx context.Context, foods []models.IngredientFood) (int64, error)
	UpsertUnits(ctx context.Context, units []models.IngredientUnit) (int64, error)
	Count(ctx context.Context, groupID string) (foods, units int64, err error)
}

// IndexAdmin quản trị search index
type IndexAdmin interface {
	BuildIndexes() error
	SeedFoods(foods []models.IngredientFood) error
	SeedUnits(units []models.IngredientUnit) error
	Stats() (search.IndexStats, error)
}

// CacheInvalidator xóa cache vocabulary
type CacheInvalidator interface {
	Invalidate(ctx context.Context, groupID string) error
	InvalidateAll(ctx context.Context) error
	CacheStats(ctx context.Context) (*VocabularyCacheStats, error)
}

var (
	_ VocabularyWriter = (*VocabularyStore)(nil)
	_ IndexAdmin       = (*search.VocabularySearcher)(nil)
	_ CacheInvalidator = (*VocabularyService)(nil)
)

// SeedEntry một food trong file seed
type SeedEntry struct {
	Name        string   `yaml:"name" json:"name"`
	PluralName  string   `yaml:"plural_name" json:"plural_name,omitempty"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Aliases     []string `yaml:"aliases" json:"aliases,omitempty"`
}

// SeedUnit một unit trong file seed
type SeedUnit struct {
	SeedEntry          `yaml:",inline"`
	Abbreviation       string `yaml:"abbreviation" json:"abbreviation,omitempty"`
	PluralAbbreviation string `yaml:"plural_abbreviation" json:"plural_abbreviation,omitempty"`
	UseAbbreviation    bool   `yaml:"use_abbreviation" json:"use_abbreviation,omitempty"`
	Fraction           bool   `yaml:"fraction" json:"fraction,omitempty"`
}

// VocabularySeed nội dung file seed (YAML hoặc JSON)
type VocabularySeed struct {
	GroupID string      `yaml:"group_id" json:"group_id"`
	Units   []SeedUnit  `yaml:"units" json:"units"`
	Foods   []SeedEntry `yaml:"foods" json:"foods"`
}

// SeedResult kết quả seed vocabulary
type SeedResult struct {
	GroupID          string `json:"group_id"`
	FoodsProcessed   int    `json:"foods_processed"`
	UnitsProcessed   int    `json:"units_processed"`
	Written          int64  `json:"written"`
	Indexed          bool   `json:"indexed"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// SystemStats thống kê hệ thống
type SystemStats struct {
	Uptime        string                 `json:"uptime"`
	MemoryUsage   map[string]interface{} `json:"memory_usage"`
	DatabaseStats DatabaseStats          `json:"database_stats"`
	IndexStats    *search.IndexStats     `json:"index_stats,omitempty"`
	CacheStats    *VocabularyCacheStats  `json:"cache_stats,omitempty"`
}

// DatabaseStats thống kê database
type DatabaseStats struct {
	Foods int64 `json:"foods"`
	Units int64 `json:"units"`
}

// AdminService service quản lý admin functions
type AdminService struct {
	store     VocabularyWriter
	index     IndexAdmin
	cache     CacheInvalidator
	logger    *zap.Logger
	startTime time.Time
}

// NewAdminService tạo mới AdminService; index có thể nil
func NewAdminService(store VocabularyWriter, index IndexAdmin, cache CacheInvalidator, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		store:     store,
		index:     index,
		cache:     cache,
		logger:    logger,
		startTime: time.Now(),
	}
}

// ParseSeed đọc seed YAML (JSON cũng hợp lệ)
func ParseSeed(data []byte) (*VocabularySeed, error) {
	var seed VocabularySeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("lỗi đọc seed: %w", err)
	}
	return &seed, nil
}

// LoadSeedFile đọc file seed
func LoadSeedFile(path string) (*VocabularySeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data)
}

// ValidateSeed trả về danh sách cảnh báo, rỗng nghĩa là hợp lệ
func ValidateSeed(seed *VocabularySeed) []string {
	warnings := make([]string, 0)
	if strings.TrimSpace(seed.GroupID) == "" {
		warnings = append(warnings, "Missing group_id")
	}
	if len(seed.Foods) == 0 && len(seed.Units) == 0 {
		warnings = append(warnings, "Không có dữ liệu để seed")
	}

	check := func(kind string, i int, e SeedEntry, seen map[string]bool) {
		key := strings.ToLower(strings.TrimSpace(e.Name))
		if key == "" {
			warnings = append(warnings, fmt.Sprintf("Missing %s name at index %d", kind, i))
			return
		}
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("Duplicate %s name: %s", kind, e.Name))
		}
		seen[key] = true
		if err := validateAliasNames(e.Aliases); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s %s: %v", kind, e.Name, err))
		}
	}

	seenUnits := make(map[string]bool)
	for i, u := range seed.Units {
		check("unit", i, u.SeedEntry, seenUnits)
	}
	seenFoods := make(map[string]bool)
	for i, f := range seed.Foods {
		check("food", i, f, seenFoods)
	}

	units := make([]models.IngredientUnit, 0, len(seed.Units))
	for _, u := range seed.Units {
		units = append(units, models.IngredientUnit{Name: u.Name, Aliases: toModelAliases(u.Aliases)})
	}
	if err := models.CheckAliasConflicts(units); err != nil {
		warnings = append(warnings, fmt.Sprintf("unit: %v", err))
	}
	foods := make([]models.IngredientFood, 0, len(seed.Foods))
	for _, f := range seed.Foods {
		foods = append(foods, models.IngredientFood{Name: f.Name, Aliases: toModelAliases(f.Aliases)})
	}
	if err := models.CheckAliasConflicts(foods); err != nil {
		warnings = append(warnings, fmt.Sprintf("food: %v", err))
	}
	return warnings
}

func validateAliasNames(names []string) error {
	food := models.IngredientFood{Name: "-", Aliases: toModelAliases(names)}
	return food.Validate()
}

// Seed upsert vocabulary của group vào MongoDB rồi index vào Meilisearch
func (as *AdminService) Seed(ctx context.Context, seed *VocabularySeed, rebuildIndexes bool) (*SeedResult, error) {
	startTime := time.Now()

	// 1. Validate dữ liệu
	if warnings := ValidateSeed(seed); len(warnings) > 0 {
		return nil, fmt.Errorf("dữ liệu không hợp lệ: %s", strings.Join(warnings, "; "))
	}

	// 2. Lưu vào MongoDB
	units := make([]models.IngredientUnit, 0, len(seed.Units))
	for _, u := range seed.Units {
		units = append(units, models.IngredientUnit{
			GroupID:            seed.GroupID,
			Name:               u.Name,
			PluralName:         u.PluralName,
			Description:        u.Description,
			Abbreviation:       u.Abbreviation,
			PluralAbbreviation: u.PluralAbbreviation,
			UseAbbreviation:    u.UseAbbreviation,
			Fraction:           u.Fraction,
			Aliases:            toModelAliases(u.Aliases),
		})
	}
	foods := make([]models.IngredientFood, 0, len(seed.Foods))
	for _, f := range seed.Foods {
		foods = append(foods, models.IngredientFood{
			GroupID:     seed.GroupID,
			Name:        f.Name,
			PluralName:  f.PluralName,
			Description: f.Description,
			Aliases:     toModelAliases(f.Aliases),
		})
	}

	writtenUnits, err := as.store.UpsertUnits(ctx, units)
	if err != nil {
		return nil, err
	}
	writtenFoods, err := as.store.UpsertFoods(ctx, foods)
	if err != nil {
		return nil, err
	}

	// 3. Invalidate cache của group
	if err := as.cache.Invalidate(ctx, seed.GroupID); err != nil {
		as.logger.Warn("Lỗi invalidate cache", zap.String("group_id", seed.GroupID), zap.Error(err))
	}

	// 4. Index vào Meilisearch
	indexed := as.reindex(ctx, seed.GroupID, rebuildIndexes)

	processingTime := time.Since(startTime)
	as.logger.Info("Vocabulary seed completed",
		zap.String("group_id", seed.GroupID),
		zap.Int("foods", len(foods)),
		zap.Int("units", len(units)),
		zap.Bool("indexed", indexed),
		zap.Duration("processing_time", processingTime))

	return &SeedResult{
		GroupID:          seed.GroupID,
		FoodsProcessed:   len(foods),
		UnitsProcessed:   len(units),
		Written:          writtenFoods + writtenUnits,
		Indexed:          indexed,
		ProcessingTimeMs: processingTime.Milliseconds(),
	}, nil
}

// reindex index lại toàn bộ vocabulary của group, dùng ID đã lưu trong MongoDB
func (as *AdminService) reindex(ctx context.Context, groupID string, rebuildIndexes bool) bool {
	if as.index == nil {
		return false
	}
	if rebuildIndexes {
		if err := as.index.BuildIndexes(); err != nil {
			as.logger.Warn("Lỗi build Meilisearch indexes", zap.Error(err))
			return false
		}
	}

	snapshot, err := as.store.LoadSnapshot(ctx, groupID)
	if err != nil {
		as.logger.Warn("Lỗi load vocabulary để index", zap.String("group_id", groupID), zap.Error(err))
		return false
	}
	var errs []error
	if len(snapshot.Units) > 0 {
		errs = append(errs, as.index.SeedUnits(snapshot.Units))
	}
	if len(snapshot.Foods) > 0 {
		errs = append(errs, as.index.SeedFoods(snapshot.Foods))
	}
	if err := errors.Join(errs...); err != nil {
		as.logger.Warn("Lỗi seed data vào Meilisearch", zap.String("group_id", groupID), zap.Error(err))
		return false
	}
	return true
}

// BuildIndexes build tất cả indexes
func (as *AdminService) BuildIndexes() error {
	if as.index == nil {
		return ErrSearchDisabled
	}
	if err := as.index.BuildIndexes(); err != nil {
		return fmt.Errorf("lỗi build Meilisearch indexes: %w", err)
	}
	as.logger.Info("All indexes built successfully")
	return nil
}

// InvalidateCache groupID rỗng xóa toàn bộ
func (as *AdminService) InvalidateCache(ctx context.Context, groupID string) error {
	if groupID == "" {
		return as.cache.InvalidateAll(ctx)
	}
	return as.cache.Invalidate(ctx, groupID)
}

// GetSystemStats lấy thống kê hệ thống
func (as *AdminService) GetSystemStats(ctx context.Context, groupID string) (*SystemStats, error) {
	foods, units, err := as.store.Count(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("lỗi lấy database stats: %w", err)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := &SystemStats{
		Uptime: time.Since(as.startTime).Round(time.Second).String(),
		MemoryUsage: map[string]interface{}{
			"alloc_mb":       bToMb(m.Alloc),
			"total_alloc_mb": bToMb(m.TotalAlloc),
			"sys_mb":         bToMb(m.Sys),
			"num_gc":         m.NumGC,
		},
		DatabaseStats: DatabaseStats{Foods: foods, Units: units},
	}

	if as.index != nil {
		if indexStats, err := as.index.Stats(); err != nil {
			as.logger.Warn("Không thể lấy Meilisearch stats", zap.Error(err))
		} else {
			stats.IndexStats = &indexStats
		}
	}
	if cacheStats, err := as.cache.CacheStats(ctx); err != nil {
		as.logger.Warn("Không thể lấy cache stats", zap.Error(err))
	} else {
		stats.CacheStats = cacheStats
	}
	return stats, nil
}

func toModelAliases(names []string) []models.IngredientAlias {
	if len(names) == 0 {
		return nil
	}
	aliases := make([]models.IngredientAlias, 0, len(names))
	for _, n := range names {
		aliases = append(aliases, models.IngredientAlias{Name: strings.TrimSpace(n)})
	}
	return aliases
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
