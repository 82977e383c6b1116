package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/internal/parser"
	"github.com/recipe-parser/internal/queryfilter"
	"github.com/recipe-parser/internal/search"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrSearchDisabled Meilisearch không được cấu hình
var ErrSearchDisabled = errors.New("search index is not configured")

// VocabularyRepository nguồn dữ liệu foods/units
type VocabularyRepository interface {
	LoadSnapshot(ctx context.Context, groupID string) (*models.VocabularySnapshot, error)
	ListFoods(ctx context.Context, groupID string, filter queryfilter.Node, limit int64) ([]models.IngredientFood, error)
	ListUnits(ctx context.Context, groupID string, filter queryfilter.Node, limit int64) ([]models.IngredientUnit, error)
	CreateFood(ctx context.Context, food *models.IngredientFood) error
	CreateUnit(ctx context.Context, unit *models.IngredientUnit) error
}

// VocabularyIndex search index foods/units
type VocabularyIndex interface {
	SeedFoods(foods []models.IngredientFood) error
	SeedUnits(units []models.IngredientUnit) error
	SearchFoods(ctx context.Context, groupID, query string, filter queryfilter.Node, limit int) ([]search.FoodHit, error)
	SearchUnits(ctx context.Context, groupID, query string, filter queryfilter.Node, limit int) ([]search.UnitHit, error)
}

var (
	_ VocabularyRepository = (*VocabularyStore)(nil)
	_ VocabularyIndex      = (*search.VocabularySearcher)(nil)
)

// VocabularyCacheStats thống kê cache hai tầng
type VocabularyCacheStats struct {
	L1 CacheStats  `json:"l1"`
	L2 *CacheStats `json:"l2,omitempty"`
}

// snapshotLoadTimeout giới hạn một lần load dùng chung, độc lập với request
const snapshotLoadTimeout = 30 * time.Second

// generations đếm số lần invalidate theo group; chỉ tăng
type generations struct {
	mu     sync.Mutex
	epoch  uint64
	groups map[string]uint64
}

func (g *generations) current(groupID string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.epoch + g.groups[groupID]
}

func (g *generations) bump(groupID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.groups == nil {
		g.groups = map[string]uint64{}
	}
	g.groups[groupID]++
}

func (g *generations) bumpAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.epoch++
}

// VocabularyService vocabulary theo group: LRU các *parser.Vocabulary đã build (L1),
// snapshot cache (L2), rồi MongoDB
type VocabularyService struct {
	repo     VocabularyRepository
	cache    IVocabularyCache
	index    VocabularyIndex
	compiler *queryfilter.Compiler
	l1       *lru.Cache[string, *parser.Vocabulary]
	loads    singleflight.Group
	gens     generations
	logger   *zap.Logger

	l1Hits atomic.Int64
	l1Miss atomic.Int64
}

// NewVocabularyService tạo mới VocabularyService; cache và index có thể nil
func NewVocabularyService(repo VocabularyRepository, cache IVocabularyCache, index VocabularyIndex, compiler *queryfilter.Compiler, l1Size int, logger *zap.Logger) (*VocabularyService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if compiler == nil {
		compiler = queryfilter.NewCompiler(nil)
	}
	l1, err := lru.New[string, *parser.Vocabulary](l1Size)
	if err != nil {
		return nil, fmt.Errorf("không thể tạo LRU cache: %w", err)
	}
	return &VocabularyService{
		repo:     repo,
		cache:    cache,
		index:    index,
		compiler: compiler,
		l1:       l1,
		logger:   logger,
	}, nil
}

// Vocabulary lấy vocabulary đã build của group (L1 → L2 → MongoDB).
// Một load bắt đầu trước Invalidate không được ghi lại vào cache.
func (vs *VocabularyService) Vocabulary(ctx context.Context, groupID string) (*parser.Vocabulary, error) {
	if vocab, ok := vs.l1.Get(groupID); ok {
		vs.l1Hits.Add(1)
		return vocab, nil
	}
	vs.l1Miss.Add(1)

	gen := vs.gens.current(groupID)
	key := fmt.Sprintf("%s#%d", groupID, gen)
	ch := vs.loads.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotLoadTimeout)
		defer cancel()

		snapshot, err := vs.loadSnapshot(loadCtx, groupID, gen)
		if err != nil {
			return nil, err
		}
		vocab := parser.NewVocabularyFromSnapshot(snapshot)
		vs.storeL1(groupID, gen, vocab)
		return vocab, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*parser.Vocabulary), nil
	}
}

// storeL1 check và add cùng khóa với bump nên Invalidate không bị ghi đè
func (vs *VocabularyService) storeL1(groupID string, gen uint64, vocab *parser.Vocabulary) {
	vs.gens.mu.Lock()
	defer vs.gens.mu.Unlock()
	if vs.gens.epoch+vs.gens.groups[groupID] != gen {
		vs.logger.Debug("Bỏ qua vocabulary cũ", zap.String("group_id", groupID))
		return
	}
	vs.l1.Add(groupID, vocab)
}

func (vs *VocabularyService) loadSnapshot(ctx context.Context, groupID string, gen uint64) (*models.VocabularySnapshot, error) {
	if vs.cache != nil {
		snapshot, found, err := vs.cache.Get(ctx, groupID)
		switch {
		case err != nil:
			vs.logger.Warn("Lỗi L2 cache, fallback MongoDB", zap.String("group_id", groupID), zap.Error(err))
		case found:
			vs.logger.Debug("L2 cache hit", zap.String("group_id", groupID))
			return snapshot, nil
		}
	}

	snapshot, err := vs.repo.LoadSnapshot(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("lỗi load vocabulary: %w", err)
	}

	if vs.cache != nil && vs.gens.current(groupID) == gen {
		if err := vs.cache.Set(ctx, snapshot); err != nil {
			vs.logger.Warn("Lỗi lưu L2 cache", zap.String("group_id", groupID), zap.Error(err))
		}
		// Invalidate chạy xen giữa check và Set
		if vs.gens.current(groupID) != gen {
			if err := vs.cache.Delete(ctx, groupID); err != nil {
				vs.logger.Warn("Lỗi xóa L2 cache", zap.String("group_id", groupID), zap.Error(err))
			}
		}
	}
	vs.logger.Debug("Cache miss, đã load từ MongoDB",
		zap.String("group_id", groupID),
		zap.String("version", snapshot.Version))
	return snapshot, nil
}

// Invalidate xóa vocabulary của group khỏi cả hai tầng cache
func (vs *VocabularyService) Invalidate(ctx context.Context, groupID string) error {
	vs.gens.bump(groupID)
	vs.l1.Remove(groupID)
	if vs.cache == nil {
		return nil
	}
	return vs.cache.Delete(ctx, groupID)
}

// InvalidateAll xóa toàn bộ cache
func (vs *VocabularyService) InvalidateAll(ctx context.Context) error {
	vs.gens.bumpAll()
	vs.l1.Purge()
	if vs.cache == nil {
		return nil
	}
	return vs.cache.Clear(ctx)
}

// CacheStats thống kê L1/L2
func (vs *VocabularyService) CacheStats(ctx context.Context) (*VocabularyCacheStats, error) {
	hits, misses := vs.l1Hits.Load(), vs.l1Miss.Load()
	stats := &VocabularyCacheStats{
		L1: CacheStats{
			HitRate:    hitRate(hits, misses),
			TotalHits:  hits,
			TotalMiss:  misses,
			TotalItems: int64(vs.l1.Len()),
		},
	}
	if vs.cache != nil {
		l2, err := vs.cache.GetStats(ctx)
		if err != nil {
			return nil, err
		}
		stats.L2 = l2
	}
	return stats, nil
}

// CompileFilter biên dịch biểu thức filter
func (vs *VocabularyService) CompileFilter(expr string) (queryfilter.Node, error) {
	return vs.compiler.Compile(expr)
}

// ListFoods foods của group, lọc bằng biểu thức filter
func (vs *VocabularyService) ListFoods(ctx context.Context, groupID, filterExpr string, limit int64) ([]models.IngredientFood, error) {
	filter, err := vs.compiler.Compile(filterExpr)
	if err != nil {
		return nil, err
	}
	return vs.repo.ListFoods(ctx, groupID, filter, limit)
}

// ListUnits units của group, lọc bằng biểu thức filter
func (vs *VocabularyService) ListUnits(ctx context.Context, groupID, filterExpr string, limit int64) ([]models.IngredientUnit, error) {
	filter, err := vs.compiler.Compile(filterExpr)
	if err != nil {
		return nil, err
	}
	return vs.repo.ListUnits(ctx, groupID, filter, limit)
}

// SearchFoods full-text search foods trên Meilisearch
func (vs *VocabularyService) SearchFoods(ctx context.Context, groupID, query, filterExpr string, limit int) ([]search.FoodHit, error) {
	if vs.index == nil {
		return nil, ErrSearchDisabled
	}
	filter, err := vs.compiler.Compile(filterExpr)
	if err != nil {
		return nil, err
	}
	return vs.index.SearchFoods(ctx, groupID, query, filter, limit)
}

// SearchUnits full-text search units trên Meilisearch
func (vs *VocabularyService) SearchUnits(ctx context.Context, groupID, query, filterExpr string, limit int) ([]search.UnitHit, error) {
	if vs.index == nil {
		return nil, ErrSearchDisabled
	}
	filter, err := vs.compiler.Compile(filterExpr)
	if err != nil {
		return nil, err
	}
	return vs.index.SearchUnits(ctx, groupID, query, filter, limit)
}

// CreateFood lưu food, invalidate cache của group rồi index vào Meilisearch
func (vs *VocabularyService) CreateFood(ctx context.Context, food *models.IngredientFood) error {
	if err := vs.repo.CreateFood(ctx, food); err != nil {
		return err
	}
	vs.afterWrite(ctx, food.GroupID, func() error {
		return vs.index.SeedFoods([]models.IngredientFood{*food})
	})
	return nil
}

// CreateUnit lưu unit, invalidate cache của group rồi index vào Meilisearch
func (vs *VocabularyService) CreateUnit(ctx context.Context, unit *models.IngredientUnit) error {
	if err := vs.repo.CreateUnit(ctx, unit); err != nil {
		return err
	}
	vs.afterWrite(ctx, unit.GroupID, func() error {
		return vs.index.SeedUnits([]models.IngredientUnit{*unit})
	})
	return nil
}

// afterWrite lỗi cache/index chỉ log, dữ liệu đã nằm trong MongoDB
func (vs *VocabularyService) afterWrite(ctx context.Context, groupID string, indexFn func() error) {
	if err := vs.Invalidate(ctx, groupID); err != nil {
		vs.logger.Warn("Lỗi invalidate cache", zap.String("group_id", groupID), zap.Error(err))
	}
	if vs.index == nil {
		return
	}
	if err := indexFn(); err != nil {
		vs.logger.Warn("Lỗi index vào Meilisearch", zap.String("group_id", groupID), zap.Error(err))
	}
}
