package reprocess

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"testing/iotest"

	"github.com/recipe-parser/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeReprocessor skip recipe có ID bắt đầu bằng "bad"
type fakeReprocessor struct {
	calls atomic.Int32
}

func (f *fakeReprocessor) Reprocess(ctx context.Context, recipe models.RecipeIngredients, parserName string) *models.ReprocessResult {
	f.calls.Add(1)
	if strings.HasPrefix(recipe.RecipeID, "bad") {
		return models.NewSkippedResult(recipe, parserName, errors.New("upstream failure"))
	}
	parsed := make([]models.ParsedIngredient, len(recipe.Ingredients))
	for i, line := range recipe.Ingredients {
		parsed[i] = models.ParsedIngredient{Input: line}
	}
	return models.NewReprocessResult(recipe, parserName, parsed)
}

func readResults(t *testing.T, out string) []models.ReprocessResult {
	t.Helper()
	var results []models.ReprocessResult
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var res models.ReprocessResult
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &res))
		results = append(results, res)
	}
	return results
}

func TestRun_PreservesOrderAndSkips(t *testing.T) {
	var in strings.Builder
	ids := []string{"r1", "bad-2", "r3", "r4", "bad-5", "r6", "r7"}
	for _, id := range ids {
		line, err := json.Marshal(models.RecipeIngredients{RecipeID: id, GroupID: "g1", Ingredients: []string{"salt", "2 cups flour"}})
		require.NoError(t, err)
		in.Write(line)
		in.WriteString("\n")
	}
	in.WriteString("\n{not json}\n")

	var out strings.Builder
	rp := &fakeReprocessor{}
	summary, err := Run(context.Background(), strings.NewReader(in.String()), &out, rp, Options{Parser: "brute", Workers: 3, BatchSize: 2})
	require.NoError(t, err)

	assert.Equal(t, 8, summary.Total)
	assert.Equal(t, 5, summary.Done)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 1, summary.Invalid)
	assert.Equal(t, int32(7), rp.calls.Load())

	results := readResults(t, out.String())
	require.Len(t, results, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, results[i].RecipeID)
		assert.Equal(t, "brute", results[i].Parser)
		if strings.HasPrefix(id, "bad") {
			assert.Equal(t, models.ReprocessStatusSkipped, results[i].Status)
			assert.Equal(t, "upstream failure", results[i].Error)
		} else {
			assert.Equal(t, models.ReprocessStatusDone, results[i].Status)
			assert.Len(t, results[i].Ingredients, 2)
		}
	}
}

func TestRun_Empty(t *testing.T) {
	var out strings.Builder
	summary, err := Run(context.Background(), strings.NewReader(""), &out, &fakeReprocessor{}, Options{})
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Empty(t, out.String())
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out strings.Builder
	rp := &fakeReprocessor{}
	_, err := Run(ctx, strings.NewReader(`{"id":"r1","group_id":"g1","ingredients":["salt"]}`+"\n"), &out, rp, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
	assert.Zero(t, rp.calls.Load())
}

func recipeLine(t *testing.T, id string) string {
	t.Helper()
	line, err := json.Marshal(models.RecipeIngredients{RecipeID: id, GroupID: "g1", Ingredients: []string{"salt"}})
	require.NoError(t, err)
	return string(line) + "\n"
}

func TestRun_OversizedLineSkipped(t *testing.T) {
	huge := `{"id":"huge","group_id":"g1","ingredients":["` + strings.Repeat("x", maxLineSize+1024) + `"]}` + "\n"
	in := recipeLine(t, "r1") + huge + recipeLine(t, "r2")

	var out strings.Builder
	rp := &fakeReprocessor{}
	summary, err := Run(context.Background(), strings.NewReader(in), &out, rp, Options{Parser: "brute"})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Done)
	assert.Equal(t, 1, summary.Invalid)

	results := readResults(t, out.String())
	require.Len(t, results, 2)
	assert.Equal(t, "r1", results[0].RecipeID)
	assert.Equal(t, "r2", results[1].RecipeID)
}

func TestRun_ReadErrorFlushesPending(t *testing.T) {
	in := io.MultiReader(
		strings.NewReader(recipeLine(t, "r1")+recipeLine(t, "r2")),
		iotest.ErrReader(errors.New("disk failure")),
	)

	var out strings.Builder
	summary, err := Run(context.Background(), in, &out, &fakeReprocessor{}, Options{Parser: "brute", BatchSize: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk failure")
	assert.Equal(t, 2, summary.Done)

	results := readResults(t, out.String())
	require.Len(t, results, 2)
	assert.Equal(t, "r1", results[0].RecipeID)
}

func TestRun_LastLineWithoutNewline(t *testing.T) {
	in := recipeLine(t, "r1") + strings.TrimSuffix(recipeLine(t, "r2"), "\n")

	var out strings.Builder
	summary, err := Run(context.Background(), strings.NewReader(in), &out, &fakeReprocessor{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Done)
}
