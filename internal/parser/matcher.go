package parser

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/internal/normalizer"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"
)

// MatchStrategy enum cho các chiến lược matching
type MatchStrategy string

const (
	MatchStrategyNone               MatchStrategy = ""
	MatchStrategyExact              MatchStrategy = "exact"
	MatchStrategyAlias              MatchStrategy = "alias"
	MatchStrategyPlural             MatchStrategy = "plural"
	MatchStrategyAbbreviation       MatchStrategy = "abbreviation"
	MatchStrategyPluralAbbreviation MatchStrategy = "plural_abbreviation"
	MatchStrategyContainment        MatchStrategy = "containment"
	MatchStrategySimilarity         MatchStrategy = "similarity"
	MatchStrategyUnresolved         MatchStrategy = "unresolved"
)

// MatcherOptions cấu hình fuzzy matching
type MatcherOptions struct {
	FoodSimilarityThreshold float64 `mapstructure:"food_similarity_threshold"`
	UnitSimilarityThreshold float64 `mapstructure:"unit_similarity_threshold"`
	MinContainmentLength    int     `mapstructure:"min_containment_length"`
}

// DefaultMatcherOptions 0.85 similarity, containment from 3 characters
func DefaultMatcherOptions() MatcherOptions {
	return MatcherOptions{
		FoodSimilarityThreshold: 0.85,
		UnitSimilarityThreshold: 0.85,
		MinContainmentLength:    3,
	}
}

// Matcher resolves free-text unit and food names against a Vocabulary.
// It never mutates the vocabulary and never fails: unknown names come back
// as unresolved drafts (Name only, empty ID).
type Matcher struct {
	vocab  *Vocabulary
	opts   MatcherOptions
	logger *zap.Logger
}

// MatchResult chi tiết một lần match
type MatchResult[T any] struct {
	Value    *T
	Strategy MatchStrategy
	Score    float64
}

// NewMatcher tạo mới Matcher
func NewMatcher(vocab *Vocabulary, opts MatcherOptions, logger *zap.Logger) *Matcher {
	if vocab == nil {
		vocab = NewVocabulary("", nil, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultMatcherOptions()
	if opts.FoodSimilarityThreshold <= 0 {
		opts.FoodSimilarityThreshold = def.FoodSimilarityThreshold
	}
	if opts.UnitSimilarityThreshold <= 0 {
		opts.UnitSimilarityThreshold = def.UnitSimilarityThreshold
	}
	if opts.MinContainmentLength <= 0 {
		opts.MinContainmentLength = def.MinContainmentLength
	}
	return &Matcher{vocab: vocab, opts: opts, logger: logger}
}

// Vocabulary trả về vocabulary đang dùng
func (m *Matcher) Vocabulary() *Vocabulary { return m.vocab }

// MatchFood resolves a food name; nil for empty input.
func (m *Matcher) MatchFood(name string) *models.IngredientFood {
	res := m.MatchFoodDetail(name)
	return res.Value
}

// MatchUnit resolves a unit name; nil for empty input.
func (m *Matcher) MatchUnit(name string) *models.IngredientUnit {
	res := m.MatchUnitDetail(name)
	return res.Value
}

// MatchFoodDetail như MatchFood, kèm strategy và score
func (m *Matcher) MatchFoodDetail(name string) MatchResult[models.IngredientFood] {
	start := time.Now()
	res := match(m.vocab.foods, name, m.opts.MinContainmentLength, m.opts.FoodSimilarityThreshold)
	if res.Strategy == MatchStrategyUnresolved {
		res.Value = &models.IngredientFood{Name: name}
	}
	m.logMatch("food", name, res.Strategy, res.Score, time.Since(start))
	return res
}

// MatchUnitDetail như MatchUnit, kèm strategy và score
func (m *Matcher) MatchUnitDetail(name string) MatchResult[models.IngredientUnit] {
	start := time.Now()
	res := match(m.vocab.units, name, m.opts.MinContainmentLength, m.opts.UnitSimilarityThreshold)
	if res.Strategy == MatchStrategyUnresolved {
		res.Value = &models.IngredientUnit{Name: name}
	}
	m.logMatch("unit", name, res.Strategy, res.Score, time.Since(start))
	return res
}

// LookupUnit exact tiers only (name, alias, plural, abbreviations); nil on miss.
func (m *Matcher) LookupUnit(name string) *models.IngredientUnit {
	if e, _ := m.vocab.units.lookup(name); e != nil {
		return clone(e.value)
	}
	return nil
}

// LookupFood exact tiers only (name, alias, plural); nil on miss.
func (m *Matcher) LookupFood(name string) *models.IngredientFood {
	if e, _ := m.vocab.foods.lookup(name); e != nil {
		return clone(e.value)
	}
	return nil
}

func (m *Matcher) logMatch(kind, name string, strategy MatchStrategy, score float64, took time.Duration) {
	if ce := m.logger.Check(zap.DebugLevel, "vocabulary match"); ce != nil {
		ce.Write(
			zap.String("kind", kind),
			zap.String("candidate", name),
			zap.String("strategy", string(strategy)),
			zap.Float64("score", score),
			zap.Duration("took", took))
	}
}

func match[T any](idx *vocabIndex[T], name string, minContain int, threshold float64) MatchResult[T] {
	if strings.TrimSpace(name) == "" {
		return MatchResult[T]{Strategy: MatchStrategyNone}
	}

	// 1-3. exact tiers
	if e, strategy := idx.lookup(name); e != nil {
		return MatchResult[T]{Value: clone(e.value), Strategy: strategy, Score: 1}
	}

	norm := normalizer.Normalize(name)
	if norm == "" {
		return MatchResult[T]{Strategy: MatchStrategyUnresolved}
	}

	// 4. containment
	if e, score := tryContainment(idx, norm, minContain); e != nil {
		return MatchResult[T]{Value: clone(e.value), Strategy: MatchStrategyContainment, Score: score}
	}

	// 5. similarity
	if e, score := trySimilarity(idx, norm, threshold); e != nil {
		return MatchResult[T]{Value: clone(e.value), Strategy: MatchStrategySimilarity, Score: score}
	}

	return MatchResult[T]{Strategy: MatchStrategyUnresolved}
}

func tryContainment[T any](idx *vocabIndex[T], norm string, minLen int) (*indexed[T], float64) {
	candLen := utf8.RuneCountInString(norm)
	if candLen < minLen {
		return nil, 0
	}
	singleToken := !strings.Contains(norm, " ")

	var best *indexed[T]
	bestScore := 0.0
	for _, e := range idx.entries {
		if e.normName == "" {
			continue
		}
		storedLen := utf8.RuneCountInString(e.normName)
		score := 0.0
		switch {
		case containsAtWordStart(e.normName, norm):
			score = float64(candLen) / float64(storedLen)
		case singleToken && storedLen >= minLen && inflectionOf(norm, e.normName):
			score = float64(storedLen) / float64(candLen)
		default:
			continue
		}
		if best == nil || better(score, e, bestScore, best) {
			best, bestScore = e, score
		}
	}
	return best, bestScore
}

// minReverseCoverage share of the candidate a stored name must cover when the
// candidate is longer than the stored name.
const minReverseCoverage = 0.8

// containsAtWordStart: sub occurs in s starting at a word boundary.
func containsAtWordStart(s, sub string) bool {
	for offset := 0; offset <= len(s)-len(sub); {
		i := strings.Index(s[offset:], sub)
		if i < 0 {
			return false
		}
		i += offset
		if i == 0 || s[i-1] == ' ' {
			return true
		}
		offset = i + 1
	}
	return false
}

// inflectionOf: candidate is stored plus a plural suffix, or stored is a
// prefix covering most of the candidate ("onions" -> "onion"; never
// "eggplant" -> "egg" or "pineapple" -> "apple").
func inflectionOf(candidate, stored string) bool {
	if !strings.HasPrefix(candidate, stored) {
		return false
	}
	switch candidate[len(stored):] {
	case "s", "es":
		return true
	}
	coverage := float64(utf8.RuneCountInString(stored)) / float64(utf8.RuneCountInString(candidate))
	return coverage >= minReverseCoverage
}

func trySimilarity[T any](idx *vocabIndex[T], norm string, threshold float64) (*indexed[T], float64) {
	var best *indexed[T]
	bestScore := 0.0
	for _, e := range idx.entries {
		for _, form := range e.forms {
			score := similarity(norm, form)
			if score < threshold {
				continue
			}
			if best == nil || better(score, e, bestScore, best) {
				best, bestScore = e, score
			}
		}
	}
	return best, bestScore
}

// better: higher score, then longer original name, then lexically smaller name.
func better[T any](score float64, e *indexed[T], bestScore float64, best *indexed[T]) bool {
	if math.Abs(score-bestScore) > 1e-9 {
		return score > bestScore
	}
	el, bl := utf8.RuneCountInString(e.name), utf8.RuneCountInString(best.name)
	if el != bl {
		return el > bl
	}
	return e.name < best.name
}

// similarity blends Jaro-Winkler with a normalized Levenshtein ratio.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	jw := smetrics.JaroWinkler(a, b, 0.7, 4)

	dist := levenshtein.ComputeDistance(a, b)
	maxLen := math.Max(float64(utf8.RuneCountInString(a)), float64(utf8.RuneCountInString(b)))
	lev := 0.0
	if maxLen > 0 {
		lev = 1.0 - float64(dist)/maxLen
	}
	return (jw + lev) / 2
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
