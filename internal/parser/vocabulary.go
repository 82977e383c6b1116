package parser

import (
	"sort"
	"strings"

	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/internal/normalizer"
)

// indexed is one vocabulary entry with its precomputed comparison forms.
type indexed[T any] struct {
	value    *T
	name     string
	normName string
	// normalized name, plural and alias forms for similarity scoring
	forms []string
}

type tier[T any] struct {
	strategy MatchStrategy
	keys     map[string]*indexed[T]
}

// vocabIndex holds exact-lookup tiers in match order plus the entry list.
type vocabIndex[T any] struct {
	tiers   []tier[T]
	entries []*indexed[T]
}

func newVocabIndex[T any](strategies ...MatchStrategy) *vocabIndex[T] {
	idx := &vocabIndex[T]{tiers: make([]tier[T], len(strategies))}
	for i, s := range strategies {
		idx.tiers[i] = tier[T]{strategy: s, keys: make(map[string]*indexed[T])}
	}
	return idx
}

func (idx *vocabIndex[T]) add(e *indexed[T], keys map[MatchStrategy][]string) {
	idx.entries = append(idx.entries, e)
	seen := map[string]struct{}{}
	for i := range idx.tiers {
		t := &idx.tiers[i]
		for _, k := range keys[t.strategy] {
			key := lookupKey(k)
			if key == "" {
				continue
			}
			// first entry wins on collisions
			if _, ok := t.keys[key]; !ok {
				t.keys[key] = e
			}
			if !similarityForm(t.strategy) {
				continue
			}
			if norm := normalizer.Normalize(k); norm != "" {
				if _, ok := seen[norm]; !ok {
					seen[norm] = struct{}{}
					e.forms = append(e.forms, norm)
				}
			}
		}
	}
}

// abbreviations are too short to score by edit distance
func similarityForm(s MatchStrategy) bool {
	return s == MatchStrategyExact || s == MatchStrategyAlias || s == MatchStrategyPlural
}

func (idx *vocabIndex[T]) lookup(name string) (*indexed[T], MatchStrategy) {
	key := lookupKey(name)
	if key == "" {
		return nil, MatchStrategyNone
	}
	for _, t := range idx.tiers {
		if e, ok := t.keys[key]; ok {
			return e, t.strategy
		}
	}
	return nil, MatchStrategyNone
}

func lookupKey(s string) string {
	return strings.ToLower(normalizer.CollapseSpaces(s))
}

// Vocabulary is an immutable index over a household's foods and units.
// It is safe for concurrent use once built.
type Vocabulary struct {
	groupID string
	version string
	foods   *vocabIndex[models.IngredientFood]
	units   *vocabIndex[models.IngredientUnit]

	maxUnitTokens int
}

// NewVocabulary builds the lookup index. Inputs are copied.
func NewVocabulary(groupID string, foods []models.IngredientFood, units []models.IngredientUnit) *Vocabulary {
	v := &Vocabulary{
		groupID: groupID,
		foods:   newVocabIndex[models.IngredientFood](MatchStrategyExact, MatchStrategyAlias, MatchStrategyPlural),
		units: newVocabIndex[models.IngredientUnit](MatchStrategyExact, MatchStrategyAlias, MatchStrategyPlural,
			MatchStrategyAbbreviation, MatchStrategyPluralAbbreviation),
	}

	for i := range foods {
		f := foods[i]
		v.foods.add(&indexed[models.IngredientFood]{
			value:    &f,
			name:     f.Name,
			normName: normalizer.Normalize(f.Name),
		}, map[MatchStrategy][]string{
			MatchStrategyExact:  {f.Name},
			MatchStrategyAlias:  aliasNames(f.Aliases),
			MatchStrategyPlural: {f.PluralName},
		})
	}

	for i := range units {
		u := units[i]
		v.units.add(&indexed[models.IngredientUnit]{
			value:    &u,
			name:     u.Name,
			normName: normalizer.Normalize(u.Name),
		}, map[MatchStrategy][]string{
			MatchStrategyExact:              {u.Name},
			MatchStrategyAlias:              aliasNames(u.Aliases),
			MatchStrategyPlural:             {u.PluralName},
			MatchStrategyAbbreviation:       {u.Abbreviation},
			MatchStrategyPluralAbbreviation: {u.PluralAbbreviation},
		})
	}

	for _, t := range v.units.tiers {
		for k := range t.keys {
			if n := len(strings.Fields(k)); n > v.maxUnitTokens {
				v.maxUnitTokens = n
			}
		}
	}
	return v
}

// NewVocabularyFromSnapshot builds a Vocabulary from a loaded snapshot.
func NewVocabularyFromSnapshot(s *models.VocabularySnapshot) *Vocabulary {
	if s == nil {
		return NewVocabulary("", nil, nil)
	}
	v := NewVocabulary(s.GroupID, s.Foods, s.Units)
	v.version = s.Version
	return v
}

func aliasNames(aliases []models.IngredientAlias) []string {
	names := make([]string, 0, len(aliases))
	for _, a := range aliases {
		names = append(names, a.Name)
	}
	return names
}

// GroupID household của vocabulary
func (v *Vocabulary) GroupID() string { return v.groupID }

// Version fingerprint của snapshot nguồn, rỗng nếu build trực tiếp
func (v *Vocabulary) Version() string { return v.version }

// FoodCount số food
func (v *Vocabulary) FoodCount() int { return len(v.foods.entries) }

// UnitCount số unit
func (v *Vocabulary) UnitCount() int { return len(v.units.entries) }

// MaxUnitTokens số token của unit key dài nhất
func (v *Vocabulary) MaxUnitTokens() int { return v.maxUnitTokens }

// UnitKeys returns every lowercase unit name, plural, abbreviation and alias,
// sorted and without duplicates.
func (v *Vocabulary) UnitKeys() []string {
	set := map[string]struct{}{}
	for _, t := range v.units.tiers {
		for k := range t.keys {
			set[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
