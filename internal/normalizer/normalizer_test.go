package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercase", input: "Green Onion", expected: "green onion"},
		{name: "punctuation", input: "mango chunks, (2 large)", expected: "mango chunks 2 large"},
		{name: "precomposed diacritics", input: "ñör̃m̈ãl̈ĩz̈ẽm̈ẽ", expected: "normalizeme"},
		{name: "combining overline", input: "n̅ōr̅m̄a̅l̄i̅z̄e̅m̄e̅", expected: "normalizeme"},
		{name: "accents", input: "Crème Brûlée", expected: "creme brulee"},
		{name: "spaces", input: "  red   pepper\tflakes ", expected: "red pepper flakes"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestAlnumWords(t *testing.T) {
	assert.Equal(t, []string{"sifted", "fresh"}, AlnumWords("Sifted, FRESH!"))
	assert.Equal(t, []string{"2", "cups"}, AlnumWords(" 2  cups -- "))
	assert.Empty(t, AlnumWords(""))
}

func TestExtractQuantity(t *testing.T) {
	testCases := []struct {
		input string
		value float64
		found bool
		rest  string
	}{
		{input: "2 cups flour", value: 2, found: true, rest: "cups flour"},
		{input: "1.5 tsp salt kosher", value: 1.5, found: true, rest: "tsp salt kosher"},
		{input: "1,5 kg potatoes", value: 1.5, found: true, rest: "kg potatoes"},
		{input: "1/2 cup milk", value: 0.5, found: true, rest: "cup milk"},
		{input: "1 1/2 tsp garam masala", value: 1.5, found: true, rest: "tsp garam masala"},
		{input: "½ cup sugar", value: 0.5, found: true, rest: "cup sugar"},
		{input: "1½ cups water", value: 1.5, found: true, rest: "cups water"},
		{input: "1-2 cloves garlic", value: 1, found: true, rest: "cloves garlic"},
		{input: "2 to 3 apples", value: 2, found: true, rest: "apples"},
		{input: "250g flour", value: 250, found: true, rest: "g flour"},
		{input: "1 tomato", value: 1, found: true, rest: "tomato"},
		{input: "stalk onion", value: 0, found: false, rest: "stalk onion"},
		{input: "1/0 cup", value: 0, found: false, rest: "1/0 cup"},
		{input: "", value: 0, found: false, rest: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			res := SplitQuantity(tc.input)
			assert.Equal(t, tc.found, res.Found)
			assert.InDelta(t, tc.value, res.Value, 1e-9)
			assert.Equal(t, tc.rest, res.Rest)
			assert.InDelta(t, tc.value, ExtractQuantity(tc.input), 1e-9)
		})
	}
}

func TestRules(t *testing.T) {
	require.NoError(t, DefaultRulesErr())
	r := DefaultRules()

	assert.True(t, r.IsArticle("A"))
	assert.True(t, r.IsDescriptor("big"))
	assert.True(t, r.IsConnector("of"))
	assert.False(t, r.IsDescriptor("stalk"))
	assert.Equal(t, "1 1/2 ", r.ExpandFractions("1½"))
}
