package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/helpers/utils"
	"github.com/recipe-parser/internal/queryfilter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names
const (
	FoodsCollection = "ingredient_foods"
	UnitsCollection = "ingredient_units"
)

const defaultListLimit = 100

// ErrDuplicateName tên đã tồn tại trong group
var ErrDuplicateName = errors.New("name already exists in this group")

// VocabularyStore lưu foods/units của mọi household trên MongoDB
type VocabularyStore struct {
	foods  *mongo.Collection
	units  *mongo.Collection
	logger *zap.Logger
}

// NewVocabularyStore tạo mới VocabularyStore, chưa tạo index
func NewVocabularyStore(db *mongo.Database, logger *zap.Logger) *VocabularyStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VocabularyStore{
		foods:  db.Collection(FoodsCollection),
		units:  db.Collection(UnitsCollection),
		logger: logger,
	}
}

// EnsureIndexes tên unique trong group
func (s *VocabularyStore) EnsureIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "updated_at", Value: 1}},
		},
	}
	for _, coll := range []*mongo.Collection{s.foods, s.units} {
		if _, err := coll.Indexes().CreateMany(ctx, indexModels); err != nil {
			return fmt.Errorf("không thể tạo indexes cho %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// LoadSnapshot toàn bộ vocabulary của group
func (s *VocabularyStore) LoadSnapshot(ctx context.Context, groupID string) (*models.VocabularySnapshot, error) {
	foods, err := findAll[models.IngredientFood](ctx, s.foods, bson.M{"group_id": groupID}, 0)
	if err != nil {
		return nil, err
	}
	units, err := findAll[models.IngredientUnit](ctx, s.units, bson.M{"group_id": groupID}, 0)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Đã load vocabulary từ MongoDB",
		zap.String("group_id", groupID),
		zap.Int("foods", len(foods)),
		zap.Int("units", len(units)))
	return models.NewVocabularySnapshot(groupID, foods, units), nil
}

// ListFoods foods của group khớp filter
func (s *VocabularyStore) ListFoods(ctx context.Context, groupID string, filter queryfilter.Node, limit int64) ([]models.IngredientFood, error) {
	query, err := scopedQuery(groupID, filter)
	if err != nil {
		return nil, err
	}
	return findAll[models.IngredientFood](ctx, s.foods, query, limitOrDefault(limit))
}

// ListUnits units của group khớp filter
func (s *VocabularyStore) ListUnits(ctx context.Context, groupID string, filter queryfilter.Node, limit int64) ([]models.IngredientUnit, error) {
	query, err := scopedQuery(groupID, filter)
	if err != nil {
		return nil, err
	}
	return findAll[models.IngredientUnit](ctx, s.units, query, limitOrDefault(limit))
}

// CreateFood thêm food mới, sinh ID nếu chưa có
func (s *VocabularyStore) CreateFood(ctx context.Context, food *models.IngredientFood) error {
	if err := food.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	food.ID = utils.IDOrNew(food.ID)
	food.Name = strings.TrimSpace(food.Name)
	if err := s.checkAliasConflicts(ctx, s.foods, food.GroupID, []models.VocabularyEntry{*food}); err != nil {
		return err
	}
	food.CreatedAt, food.UpdatedAt = now, now

	return s.insert(ctx, s.foods, food)
}

// CreateUnit thêm unit mới, sinh ID nếu chưa có
func (s *VocabularyStore) CreateUnit(ctx context.Context, unit *models.IngredientUnit) error {
	if err := unit.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	unit.ID = utils.IDOrNew(unit.ID)
	unit.Name = strings.TrimSpace(unit.Name)
	if err := s.checkAliasConflicts(ctx, s.units, unit.GroupID, []models.VocabularyEntry{*unit}); err != nil {
		return err
	}
	unit.CreatedAt, unit.UpdatedAt = now, now

	return s.insert(ctx, s.units, unit)
}

func (s *VocabularyStore) insert(ctx context.Context, coll *mongo.Collection, doc any) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("lỗi insert %s: %w", coll.Name(), err)
	}
	return nil
}

// UpsertFoods ghi đè theo (group_id, name), giữ ID cũ nếu đã có
func (s *VocabularyStore) UpsertFoods(ctx context.Context, foods []models.IngredientFood) (int64, error) {
	writes := make([]mongo.WriteModel, 0, len(foods))
	now := time.Now().UTC()
	for _, f := range foods {
		if err := f.Validate(); err != nil {
			return 0, fmt.Errorf("food %q: %w", f.Name, err)
		}
		writes = append(writes, upsertModel(f.GroupID, f.Name, f.ID, now, bson.M{
			"plural_name": f.PluralName,
			"description": f.Description,
			"aliases":     f.Aliases,
		}))
	}
	if err := s.checkBatch(ctx, s.foods, entriesByGroup(foods, func(f models.IngredientFood) string { return f.GroupID })); err != nil {
		return 0, err
	}
	return s.bulkUpsert(ctx, s.foods, writes)
}

// UpsertUnits ghi đè theo (group_id, name), giữ ID cũ nếu đã có
func (s *VocabularyStore) UpsertUnits(ctx context.Context, units []models.IngredientUnit) (int64, error) {
	writes := make([]mongo.WriteModel, 0, len(units))
	now := time.Now().UTC()
	for _, u := range units {
		if err := u.Validate(); err != nil {
			return 0, fmt.Errorf("unit %q: %w", u.Name, err)
		}
		writes = append(writes, upsertModel(u.GroupID, u.Name, u.ID, now, bson.M{
			"plural_name":         u.PluralName,
			"description":         u.Description,
			"abbreviation":        u.Abbreviation,
			"plural_abbreviation": u.PluralAbbreviation,
			"use_abbreviation":    u.UseAbbreviation,
			"fraction":            u.Fraction,
			"aliases":             u.Aliases,
		}))
	}
	if err := s.checkBatch(ctx, s.units, entriesByGroup(units, func(u models.IngredientUnit) string { return u.GroupID })); err != nil {
		return 0, err
	}
	return s.bulkUpsert(ctx, s.units, writes)
}

// groupEntries entries của một group, theo thứ tự xuất hiện
type groupEntries struct {
	groupID string
	entries []models.VocabularyEntry
}

func entriesByGroup[T models.VocabularyEntry](items []T, groupOf func(T) string) []groupEntries {
	var groups []groupEntries
	index := map[string]int{}
	for _, item := range items {
		g := groupOf(item)
		i, ok := index[g]
		if !ok {
			i = len(groups)
			index[g] = i
			groups = append(groups, groupEntries{groupID: g})
		}
		groups[i].entries = append(groups[i].entries, item)
	}
	return groups
}

func (s *VocabularyStore) checkBatch(ctx context.Context, coll *mongo.Collection, groups []groupEntries) error {
	for _, g := range groups {
		if err := models.CheckAliasConflicts(g.entries); err != nil {
			return err
		}
		if err := s.checkAliasConflicts(ctx, coll, g.groupID, g.entries); err != nil {
			return err
		}
	}
	return nil
}

// checkAliasConflicts: no stored entry outside the batch may own one of the
// batch aliases as name or alias, nor an alias equal to a batch name.
// Comparison is case-insensitive through a strength-2 collation.
func (s *VocabularyStore) checkAliasConflicts(ctx context.Context, coll *mongo.Collection, groupID string, entries []models.VocabularyEntry) error {
	names := make(bson.A, 0, len(entries))
	aliases := make(bson.A, 0)
	for _, e := range entries {
		names = append(names, strings.TrimSpace(e.EntryName()))
		for _, a := range e.AliasNames() {
			aliases = append(aliases, a)
		}
	}
	keys := append(append(bson.A{}, names...), aliases...)

	filter := bson.M{
		"group_id": groupID,
		"name":     bson.M{"$nin": names},
		"$or": bson.A{
			bson.M{"aliases.name": bson.M{"$in": keys}},
			bson.M{"name": bson.M{"$in": aliases}},
		},
	}
	opts := options.Count().
		SetCollation(&options.Collation{Locale: "en", Strength: 2}).
		SetLimit(1)
	n, err := coll.CountDocuments(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("lỗi kiểm tra alias %s: %w", coll.Name(), err)
	}
	if n > 0 {
		return fmt.Errorf("%w (group %s)", models.ErrAliasConflict, groupID)
	}
	return nil
}

func upsertModel(groupID, name, id string, now time.Time, fields bson.M) mongo.WriteModel {
	id = utils.IDOrNew(id)
	name = strings.TrimSpace(name)
	fields["updated_at"] = now
	return mongo.NewUpdateOneModel().
		SetFilter(bson.M{"group_id": groupID, "name": name}).
		SetUpdate(bson.M{
			"$set":         fields,
			"$setOnInsert": bson.M{"_id": id, "group_id": groupID, "name": name, "created_at": now},
		}).
		SetUpsert(true)
}

func (s *VocabularyStore) bulkUpsert(ctx context.Context, coll *mongo.Collection, writes []mongo.WriteModel) (int64, error) {
	if len(writes) == 0 {
		return 0, nil
	}
	res, err := coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("lỗi bulk upsert %s: %w", coll.Name(), err)
	}
	s.logger.Info("Đã upsert vocabulary",
		zap.String("collection", coll.Name()),
		zap.Int64("upserted", res.UpsertedCount),
		zap.Int64("modified", res.ModifiedCount))
	return res.UpsertedCount + res.ModifiedCount, nil
}

// Count số foods và units, groupID rỗng đếm toàn bộ
func (s *VocabularyStore) Count(ctx context.Context, groupID string) (foods, units int64, err error) {
	filter := bson.M{}
	if groupID != "" {
		filter["group_id"] = groupID
	}
	if foods, err = s.foods.CountDocuments(ctx, filter); err != nil {
		return 0, 0, fmt.Errorf("lỗi đếm foods: %w", err)
	}
	if units, err = s.units.CountDocuments(ctx, filter); err != nil {
		return 0, 0, fmt.Errorf("lỗi đếm units: %w", err)
	}
	return foods, units, nil
}

// scopedQuery {group_id} AND filter
func scopedQuery(groupID string, filter queryfilter.Node) (bson.M, error) {
	scope := bson.M{"group_id": groupID}
	if filter == nil {
		return scope, nil
	}
	query, err := queryfilter.ToBSON(filter)
	if err != nil {
		return nil, err
	}
	return bson.M{"$and": bson.A{scope, query}}, nil
}

func limitOrDefault(limit int64) int64 {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, limit int64) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("lỗi query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("lỗi decode %s: %w", coll.Name(), err)
	}
	return out, nil
}
