package services

import (
	"context"
	"sync"

	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/internal/queryfilter"
	"github.com/recipe-parser/internal/search"
)

func testFoods() []models.IngredientFood {
	return []models.IngredientFood{
		{ID: "f-flour", GroupID: "g1", Name: "flour"},
		{ID: "f-onion", GroupID: "g1", Name: "onion", PluralName: "onions"},
	}
}

func testUnits() []models.IngredientUnit {
	return []models.IngredientUnit{
		{ID: "u-cups", GroupID: "g1", Name: "Cups", Abbreviation: "c"},
	}
}

// fakeRepository vocabulary trong bộ nhớ, đếm số lần load
type fakeRepository struct {
	mu         sync.Mutex
	loads      int
	lastFilter queryfilter.Node
	foods      []models.IngredientFood
	units      []models.IngredientUnit
	createErr  error

	upsertedFoods []models.IngredientFood
	upsertedUnits []models.IngredientUnit

	// gate != nil: lần load kế tiếp báo started rồi chờ gate đóng
	gate    chan struct{}
	started chan struct{}
}

// blockNextLoad lần LoadSnapshot kế tiếp dừng giữa chừng cho tới khi release
func (r *fakeRepository) blockNextLoad() (started <-chan struct{}, release func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = make(chan struct{})
	r.started = make(chan struct{})
	gate := r.gate
	return r.started, func() { close(gate) }
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{foods: testFoods(), units: testUnits()}
}

func (r *fakeRepository) LoadSnapshot(ctx context.Context, groupID string) (*models.VocabularySnapshot, error) {
	r.mu.Lock()
	r.loads++
	foods := append([]models.IngredientFood(nil), r.foods...)
	units := append([]models.IngredientUnit(nil), r.units...)
	gate, started := r.gate, r.started
	r.gate, r.started = nil, nil
	r.mu.Unlock()

	if gate != nil {
		close(started)
		<-gate
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return models.NewVocabularySnapshot(groupID, foods, units), nil
}

func (r *fakeRepository) loadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loads
}

func (r *fakeRepository) ListFoods(ctx context.Context, groupID string, filter queryfilter.Node, limit int64) ([]models.IngredientFood, error) {
	r.lastFilter = filter
	return r.foods, nil
}

func (r *fakeRepository) ListUnits(ctx context.Context, groupID string, filter queryfilter.Node, limit int64) ([]models.IngredientUnit, error) {
	r.lastFilter = filter
	return r.units, nil
}

func (r *fakeRepository) CreateFood(ctx context.Context, food *models.IngredientFood) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	food.ID = "f-new"
	r.foods = append(r.foods, *food)
	return nil
}

func (r *fakeRepository) CreateUnit(ctx context.Context, unit *models.IngredientUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	unit.ID = "u-new"
	r.units = append(r.units, *unit)
	return nil
}

func (r *fakeRepository) UpsertFoods(ctx context.Context, foods []models.IngredientFood) (int64, error) {
	r.upsertedFoods = append(r.upsertedFoods, foods...)
	return int64(len(foods)), nil
}

func (r *fakeRepository) UpsertUnits(ctx context.Context, units []models.IngredientUnit) (int64, error) {
	r.upsertedUnits = append(r.upsertedUnits, units...)
	return int64(len(units)), nil
}

func (r *fakeRepository) Count(ctx context.Context, groupID string) (int64, int64, error) {
	return int64(len(r.foods)), int64(len(r.units)), nil
}

// fakeIndex ghi lại các lần seed/search
type fakeIndex struct {
	seededFoods []models.IngredientFood
	seededUnits []models.IngredientUnit
	builds      int
	lastFilter  queryfilter.Node
}

func (i *fakeIndex) BuildIndexes() error {
	i.builds++
	return nil
}

func (i *fakeIndex) SeedFoods(foods []models.IngredientFood) error {
	i.seededFoods = append(i.seededFoods, foods...)
	return nil
}

func (i *fakeIndex) SeedUnits(units []models.IngredientUnit) error {
	i.seededUnits = append(i.seededUnits, units...)
	return nil
}

func (i *fakeIndex) SearchFoods(ctx context.Context, groupID, query string, filter queryfilter.Node, limit int) ([]search.FoodHit, error) {
	i.lastFilter = filter
	return []search.FoodHit{{Food: testFoods()[1], Score: 0.9}}, nil
}

func (i *fakeIndex) SearchUnits(ctx context.Context, groupID, query string, filter queryfilter.Node, limit int) ([]search.UnitHit, error) {
	i.lastFilter = filter
	return []search.UnitHit{{Unit: testUnits()[0], Score: 0.8}}, nil
}

func (i *fakeIndex) Stats() (search.IndexStats, error) {
	return search.IndexStats{Foods: int64(len(i.seededFoods)), Units: int64(len(i.seededUnits))}, nil
}
