package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/recipe-parser/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeMeili ghi lại request, trả về response cố định
type fakeMeili struct {
	mu          sync.Mutex
	searchBody  map[string]any
	batchSizes  []int
	settingsFor []string
}

const taskJSON = `{"taskUid":1,"indexUid":"idx","status":"enqueued","type":"documentAdditionOrUpdate","enqueuedAt":"2024-01-01T00:00:00Z"}`

func (f *fakeMeili) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"available"}`))
	})
	mux.HandleFunc("/indexes/ingredient_foods/search", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.searchBody))
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"hits": [{"id":"f-onion","group_id":"g1","name":"onion","normalized_name":"onion","plural_name":"onions","aliases":["scallion"],"updated_at":1700000000,"_rankingScore":0.91}],
			"query":"oni","processingTimeMs":1,"limit":5,"offset":0,"estimatedTotalHits":1
		}`))
	})
	for _, index := range []string{"ingredient_foods", "ingredient_units"} {
		index := index
		mux.HandleFunc("/indexes/"+index+"/documents", func(w http.ResponseWriter, r *http.Request) {
			var docs []map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&docs))
			f.mu.Lock()
			f.batchSizes = append(f.batchSizes, len(docs))
			f.mu.Unlock()
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(taskJSON))
		})
		mux.HandleFunc("/indexes/"+index+"/settings", func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			f.settingsFor = append(f.settingsFor, index)
			f.mu.Unlock()
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(taskJSON))
		})
	}
	return mux
}

func newTestSearcher(t *testing.T) (*VocabularySearcher, *fakeMeili) {
	t.Helper()
	fake := &fakeMeili{}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	vs, err := NewVocabularySearcher(SearchConfig{Host: server.URL, APIKey: "key", Timeout: time.Second}, zap.NewNop())
	require.NoError(t, err)
	return vs, fake
}

func TestVocabularySearcher_SearchFoods(t *testing.T) {
	vs, fake := newTestSearcher(t)

	hits, err := vs.SearchFoods(context.Background(), "g1", "oni", compile(t, `name <> "leek"`), 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	assert.Equal(t, "f-onion", hits[0].Food.ID)
	assert.Equal(t, "onion", hits[0].Food.Name)
	assert.Equal(t, "onions", hits[0].Food.PluralName)
	assert.Equal(t, []models.IngredientAlias{{Name: "scallion"}}, hits[0].Food.Aliases)
	assert.InDelta(t, 0.91, hits[0].Score, 1e-9)

	assert.Equal(t, "oni", fake.searchBody["q"])
	assert.Equal(t, `group_id = "g1" AND name != "leek"`, fake.searchBody["filter"])
	assert.EqualValues(t, 5, fake.searchBody["limit"])
}

func TestVocabularySearcher_SearchLimitCapped(t *testing.T) {
	vs, fake := newTestSearcher(t)

	_, err := vs.SearchFoods(context.Background(), "g1", "oni", nil, 500)
	require.NoError(t, err)
	assert.EqualValues(t, 20, fake.searchBody["limit"])
	assert.Equal(t, `group_id = "g1"`, fake.searchBody["filter"])
}

func TestVocabularySearcher_SearchUnsupportedFilter(t *testing.T) {
	vs, fake := newTestSearcher(t)

	_, err := vs.SearchFoods(context.Background(), "g1", "oni", compile(t, `name LIKE "on%"`), 5)
	assert.ErrorIs(t, err, ErrUnsupportedFilter)
	assert.Nil(t, fake.searchBody)
}

func TestVocabularySearcher_SeedBatches(t *testing.T) {
	vs, fake := newTestSearcher(t)

	units := make([]models.IngredientUnit, 2500)
	for i := range units {
		units[i] = models.IngredientUnit{ID: "u", GroupID: "g1", Name: "cup"}
	}
	require.NoError(t, vs.SeedUnits(units))
	assert.Equal(t, []int{1000, 1000, 500}, fake.batchSizes)

	assert.Error(t, vs.SeedFoods(nil))
}

func TestVocabularySearcher_BuildIndexes(t *testing.T) {
	vs, fake := newTestSearcher(t)

	require.NoError(t, vs.BuildIndexes())
	assert.Equal(t, []string{"ingredient_foods", "ingredient_units"}, fake.settingsFor)
}

func TestNewVocabularySearcher_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, err := NewVocabularySearcher(SearchConfig{Host: server.URL}, nil)
	assert.Error(t, err)
}

func TestVocabularySearcher_Ping(t *testing.T) {
	vs, _ := newTestSearcher(t)
	require.NoError(t, vs.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, vs.Ping(ctx))
}
