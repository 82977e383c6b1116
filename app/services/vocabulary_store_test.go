package services

import (
	"context"
	"testing"

	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/internal/queryfilter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestScopedQuery(t *testing.T) {
	q, err := scopedQuery("g1", nil)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"group_id": "g1"}, q)

	node, err := queryfilter.Compile(`name = "onion"`)
	require.NoError(t, err)
	q, err = scopedQuery("g1", node)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$and": bson.A{bson.M{"group_id": "g1"}, bson.M{"name": "onion"}}}, q)
}

// noConflicts CountDocuments trả về 0
func noConflicts(mt *mtest.T, collection string) bson.D {
	return mtest.CreateCursorResponse(0, mt.DB.Name()+"."+collection, mtest.FirstBatch)
}

func TestVocabularyStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("load snapshot", func(mt *mtest.T) {
		store := NewVocabularyStore(mt.DB, nil)
		foodsNS := mt.DB.Name() + "." + FoodsCollection
		unitsNS := mt.DB.Name() + "." + UnitsCollection
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, foodsNS, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "f-1"}, {Key: "group_id", Value: "g1"}, {Key: "name", Value: "onion"}, {Key: "plural_name", Value: "onions"}},
				bson.D{{Key: "_id", Value: "f-2"}, {Key: "group_id", Value: "g1"}, {Key: "name", Value: "salt"}},
			),
			mtest.CreateCursorResponse(0, unitsNS, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "u-1"}, {Key: "group_id", Value: "g1"}, {Key: "name", Value: "Cups"}, {Key: "abbreviation", Value: "c"}},
			),
		)

		snapshot, err := store.LoadSnapshot(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, "g1", snapshot.GroupID)
		require.Len(t, snapshot.Foods, 2)
		assert.Equal(t, "onions", snapshot.Foods[0].PluralName)
		require.Len(t, snapshot.Units, 1)
		assert.Equal(t, "c", snapshot.Units[0].Abbreviation)
		assert.NotEmpty(t, snapshot.Version)
	})

	mt.Run("list foods with filter", func(mt *mtest.T) {
		store := NewVocabularyStore(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+FoodsCollection, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "f-1"}, {Key: "group_id", Value: "g1"}, {Key: "name", Value: "onion"}},
		))

		node, err := queryfilter.Compile(`name LIKE "on%"`)
		require.NoError(t, err)
		foods, err := store.ListFoods(ctx, "g1", node, 10)
		require.NoError(t, err)
		require.Len(t, foods, 1)
		assert.Equal(t, "f-1", foods[0].ID)
	})

	mt.Run("create food", func(mt *mtest.T) {
		store := NewVocabularyStore(mt.DB, nil)
		mt.AddMockResponses(noConflicts(mt, FoodsCollection), mtest.CreateSuccessResponse())

		food := &models.IngredientFood{GroupID: "g1", Name: " garlic "}
		require.NoError(t, store.CreateFood(ctx, food))
		assert.NotEmpty(t, food.ID)
		assert.Equal(t, "garlic", food.Name)
		assert.False(t, food.CreatedAt.IsZero())
	})

	mt.Run("create duplicate unit", func(mt *mtest.T) {
		store := NewVocabularyStore(mt.DB, nil)
		mt.AddMockResponses(noConflicts(mt, UnitsCollection), mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := store.CreateUnit(ctx, &models.IngredientUnit{GroupID: "g1", Name: "Cups"})
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	mt.Run("create invalid food", func(mt *mtest.T) {
		store := NewVocabularyStore(mt.DB, nil)
		err := store.CreateFood(ctx, &models.IngredientFood{GroupID: "g1", Name: "  "})
		assert.ErrorIs(t, err, models.ErrEmptyName)
	})

	mt.Run("upsert foods", func(mt *mtest.T) {
		store := NewVocabularyStore(mt.DB, nil)
		mt.AddMockResponses(noConflicts(mt, FoodsCollection), mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 2},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{
				bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "f-1"}},
				bson.D{{Key: "index", Value: 1}, {Key: "_id", Value: "f-2"}},
			}},
		))

		written, err := store.UpsertFoods(ctx, []models.IngredientFood{
			{GroupID: "g1", Name: "onion"},
			{GroupID: "g1", Name: "salt"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), written)
	})

	mt.Run("create food with alias owned by another food", func(mt *mtest.T) {
		store := NewVocabularyStore(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+FoodsCollection, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: int32(1)}}))

		err := store.CreateFood(ctx, &models.IngredientFood{
			GroupID: "g1",
			Name:    "scallion",
			Aliases: []models.IngredientAlias{{Name: "Spring Onion"}},
		})
		assert.ErrorIs(t, err, models.ErrAliasConflict)
	})

	mt.Run("create food with blank plural name", func(mt *mtest.T) {
		store := NewVocabularyStore(mt.DB, nil)
		err := store.CreateFood(ctx, &models.IngredientFood{GroupID: "g1", Name: "onion", PluralName: "   "})
		assert.ErrorIs(t, err, models.ErrEmptyName)
	})

	mt.Run("upsert batch with conflicting aliases", func(mt *mtest.T) {
		store := NewVocabularyStore(mt.DB, nil)
		written, err := store.UpsertFoods(ctx, []models.IngredientFood{
			{GroupID: "g1", Name: "green onion", Aliases: []models.IngredientAlias{{Name: "scallion"}}},
			{GroupID: "g1", Name: "spring onion", Aliases: []models.IngredientAlias{{Name: "Scallion"}}},
		})
		assert.ErrorIs(t, err, models.ErrAliasConflict)
		assert.Zero(t, written)
	})

	mt.Run("upsert nothing", func(mt *mtest.T) {
		store := NewVocabularyStore(mt.DB, nil)
		written, err := store.UpsertUnits(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, written)
	})

	mt.Run("count", func(mt *mtest.T) {
		store := NewVocabularyStore(mt.DB, nil)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, mt.DB.Name()+"."+FoodsCollection, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: int32(3)}}),
			mtest.CreateCursorResponse(0, mt.DB.Name()+"."+UnitsCollection, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: int32(2)}}),
		)

		foods, units, err := store.Count(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), foods)
		assert.Equal(t, int64(2), units)
	})
}
