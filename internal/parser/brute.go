package parser

import (
	"context"
	"strings"
	"time"

	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/internal/normalizer"
	"go.uber.org/zap"
)

// maxPreUnitTokens how far a unit may sit behind articles/descriptors when no quantity is given
const maxPreUnitTokens = 3

// BruteParser tokenizer tất định, không gọi dịch vụ ngoài
type BruteParser struct {
	matcher   *Matcher
	rules     *normalizer.Rules
	extractor *normalizer.QuantityExtractor
	scorer    *Scorer
	logger    *zap.Logger
}

// NewBruteParser tạo mới BruteParser
func NewBruteParser(matcher *Matcher, policy models.PluralPolicy, logger *zap.Logger) *BruteParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := normalizer.DefaultRules()
	return &BruteParser{
		matcher:   matcher,
		rules:     rules,
		extractor: normalizer.NewQuantityExtractor(rules),
		scorer:    NewScorer(ScoreModeStrict, policy),
		logger:    logger,
	}
}

// Parse parse từng dòng theo thứ tự; output[i] tương ứng lines[i]
func (p *BruteParser) Parse(ctx context.Context, lines []string) ([]models.ParsedIngredient, error) {
	start := time.Now()
	results := make([]models.ParsedIngredient, 0, len(lines))
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, p.parse(line))
	}

	p.logger.Debug("Đã parse nguyên liệu (brute)",
		zap.Int("lines", len(lines)),
		zap.Duration("took", time.Since(start)))
	return results, nil
}

// ParseOne parse một dòng
func (p *BruteParser) ParseOne(ctx context.Context, line string) (models.ParsedIngredient, error) {
	if err := ctx.Err(); err != nil {
		return models.ParsedIngredient{}, err
	}
	return p.parse(line), nil
}

func (p *BruteParser) parse(line string) models.ParsedIngredient {
	ing := p.ParseIngredient(line)
	return models.ParsedIngredient{
		Input:      line,
		Ingredient: ing,
		Confidence: p.scorer.Score(line, &ing),
	}
}

// ParseIngredient splits a line into quantity, unit, food and note and
// resolves unit and food against the vocabulary.
func (p *BruteParser) ParseIngredient(line string) models.RecipeIngredient {
	qty := p.extractor.Extract(line)
	body, note := splitNote(qty.Rest)
	tokens := normalizer.Tokenize(body)

	var unitText string
	rest := tokens
	if qty.Found {
		unitText, rest = p.alignUnitAfterQuantity(body, tokens)
	} else {
		unitText, rest = p.alignUnitWithoutQuantity(tokens)
	}

	if len(rest) > 0 && p.rules.IsConnector(rest[0]) {
		rest = rest[1:]
	}
	foodText := strings.Join(rest, " ")

	ing := models.RecipeIngredient{
		Quantity:     qty.Value,
		Note:         note,
		OriginalText: line,
	}

	// không tìm được gì: cả dòng là food
	if !qty.Found && unitText == "" && foodText == "" {
		if whole := normalizer.CleanLine(line); whole != "" {
			ing.Food = p.matcher.MatchFood(whole)
		}
		ing.Note = ""
		return ing
	}

	if unitText != "" {
		ing.Unit = p.matcher.MatchUnit(unitText)
	}
	if foodText != "" {
		ing.Food = p.matcher.MatchFood(foodText)
	}
	return ing
}

func (p *BruteParser) alignUnitAfterQuantity(body string, tokens []string) (string, []string) {
	if n := p.longestUnit(tokens, 0); n > 0 {
		return strings.Join(tokens[:n], " "), tokens[n:]
	}
	if len(tokens) < 2 || p.rules.IsDescriptor(tokens[0]) {
		return "", tokens
	}
	// "1 bell peppers": the whole remainder is a known food
	if p.matcher.LookupFood(body) != nil {
		return "", tokens
	}
	return tokens[0], tokens[1:]
}

func (p *BruteParser) alignUnitWithoutQuantity(tokens []string) (string, []string) {
	for i := 0; i < len(tokens) && i < maxPreUnitTokens; i++ {
		if n := p.longestUnit(tokens, i); n > 0 {
			return strings.Join(tokens[i:i+n], " "), tokens[i+n:]
		}
		if !p.rules.IsArticle(tokens[i]) && !p.rules.IsDescriptor(tokens[i]) {
			break
		}
	}
	return "", tokens
}

// longestUnit number of tokens from start forming the longest known unit, 0 if none.
func (p *BruteParser) longestUnit(tokens []string, start int) int {
	maxN := p.matcher.Vocabulary().MaxUnitTokens()
	if remaining := len(tokens) - start; remaining < maxN {
		maxN = remaining
	}
	for n := maxN; n >= 1; n-- {
		candidate := strings.Join(tokens[start:start+n], " ")
		if p.matcher.LookupUnit(candidate) != nil {
			return n
		}
		if trimmed := strings.TrimRight(candidate, ".,"); trimmed != candidate && p.matcher.LookupUnit(trimmed) != nil {
			return n
		}
	}
	return 0
}

// splitNote: a trailing parenthetical is the note; otherwise everything after
// the first comma.
func splitNote(s string) (body, note string) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, ")") {
		if open := matchingOpenParen(s); open > 0 {
			note = strings.TrimSpace(s[open+1 : len(s)-1])
			body = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s[:open]), ","))
			return body, note
		}
	}
	if idx := strings.Index(s, ","); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:])
	}
	return s, ""
}

// matchingOpenParen index of the "(" closing at the last byte, -1 if unbalanced.
func matchingOpenParen(s string) int {
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
