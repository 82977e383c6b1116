package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/recipe-parser/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goldenCase một file trong testdata/golden
type goldenCase struct {
	Raw    string `json:"raw"`
	Expect struct {
		Quantity float64 `json:"quantity"`
		UnitID   string  `json:"unit_id,omitempty"`
		FoodID   string  `json:"food_id,omitempty"`
		FoodName string  `json:"food_name,omitempty"`
		Note     string  `json:"note,omitempty"`
		Average  float64 `json:"average"`
	} `json:"expect"`
}

// TestGolden chạy brute parser trên tất cả golden cases
func TestGolden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "golden", "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "không có golden case nào")

	p := NewBruteParser(testMatcher(), models.PluralAlways, nil)
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			data, err := os.ReadFile(file)
			require.NoError(t, err)
			var gc goldenCase
			require.NoError(t, json.Unmarshal(data, &gc))

			res := p.parse(gc.Raw)
			ing := res.Ingredient

			assert.InDelta(t, gc.Expect.Quantity, ing.Quantity, 1e-9)
			if gc.Expect.UnitID == "" {
				assert.False(t, ing.Unit.IsResolved())
			} else {
				require.NotNil(t, ing.Unit)
				assert.Equal(t, gc.Expect.UnitID, ing.Unit.ID)
			}
			if gc.Expect.FoodID != "" {
				require.NotNil(t, ing.Food)
				assert.Equal(t, gc.Expect.FoodID, ing.Food.ID)
			}
			if gc.Expect.FoodName != "" {
				require.NotNil(t, ing.Food)
				assert.Equal(t, gc.Expect.FoodName, ing.Food.Name)
			}
			assert.Equal(t, gc.Expect.Note, ing.Note)
			assert.InDelta(t, gc.Expect.Average, res.Confidence.Average, 1e-9)
		})
	}
}
