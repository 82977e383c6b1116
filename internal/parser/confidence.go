package parser

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/internal/normalizer"
)

// ScoreMode how unresolved unit/food references are scored
type ScoreMode int

const (
	// ScoreModeFuzzy: resolved = 1, otherwise token-sort similarity of
	// the original line against the ingredient display.
	ScoreModeFuzzy ScoreMode = iota
	// ScoreModeStrict: resolved or absent = 1, unresolved = 0.
	ScoreModeStrict
)

// Scorer tính confidence cho một ingredient đã parse. Pure, không có state.
type Scorer struct {
	mode   ScoreMode
	policy models.PluralPolicy
}

// NewScorer tạo mới Scorer
func NewScorer(mode ScoreMode, policy models.PluralPolicy) *Scorer {
	if !policy.IsValid() {
		policy = models.PluralAlways
	}
	return &Scorer{mode: mode, policy: policy}
}

// Score every component lies in [0,1]; Average is their mean.
func (s *Scorer) Score(original string, ing *models.RecipeIngredient) models.IngredientConfidence {
	conf := models.IngredientConfidence{
		Quantity: quantityConfidence(original, ing.Quantity),
		Comment:  noteConfidence(original, ing.Note),
	}

	switch s.mode {
	case ScoreModeStrict:
		conf.Unit = strictConfidence(ing.Unit == nil, ing.Unit.IsResolved())
		conf.Food = strictConfidence(ing.Food == nil, ing.Food.IsResolved())
	default:
		overall := -1.0
		fuzzy := func() float64 {
			if overall < 0 {
				overall = TokenSortRatio(original, ing.Display(s.policy))
			}
			return overall
		}
		if ing.Unit.IsResolved() {
			conf.Unit = 1
		} else {
			conf.Unit = fuzzy()
		}
		if ing.Food.IsResolved() {
			conf.Food = 1
		} else {
			conf.Food = fuzzy()
		}
	}

	conf.Quantity = clamp01(conf.Quantity)
	conf.Unit = clamp01(conf.Unit)
	conf.Food = clamp01(conf.Food)
	conf.Comment = clamp01(conf.Comment)
	conf.Average = (conf.Quantity + conf.Unit + conf.Food + conf.Comment) / 4
	return conf
}

func strictConfidence(absent, resolved bool) float64 {
	if absent || resolved {
		return 1
	}
	return 0
}

// quantityConfidence is 1 only when the quantity equals the one re-extracted
// from the original line.
func quantityConfidence(original string, qty float64) float64 {
	if math.Abs(normalizer.ExtractQuantity(original)-qty) < 1e-9 {
		return 1
	}
	return 0
}

// noteConfidence fraction of note words present in the original; 1 for an empty note.
func noteConfidence(original, note string) float64 {
	noteWords := normalizer.AlnumWords(note)
	if len(noteWords) == 0 {
		return 1
	}
	originalWords := map[string]struct{}{}
	for _, w := range normalizer.AlnumWords(original) {
		originalWords[w] = struct{}{}
	}
	found := 0
	for _, w := range noteWords {
		if _, ok := originalWords[w]; ok {
			found++
		}
	}
	return float64(found) / float64(len(noteWords))
}

// TokenSortRatio compares two strings independent of word order: tokens are
// lowercased, sorted and rejoined, then scored as 2*LCS/(len(a)+len(b)).
// Returns 0 when either side is empty.
func TokenSortRatio(a, b string) float64 {
	sa, sb := sortedTokens(a), sortedTokens(b)
	la, lb := utf8.RuneCountInString(sa), utf8.RuneCountInString(sb)
	if la == 0 || lb == 0 {
		return 0
	}
	if sa == sb {
		return 1
	}
	return 2 * float64(edlib.LCS(sa, sb)) / float64(la+lb)
}

func sortedTokens(s string) string {
	tokens := strings.Fields(strings.ToLower(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
