package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/internal/openai"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const unitsInjectionDescription = "Below is a list of units found in the units database. " +
	"While parsing, you should reference this list when determining which part of the input is the unit. " +
	"You may find a unit in the input that does not exist in this list. " +
	"This should not prevent you from parsing that text as a unit, however it may lower your confidence level."

// Completer text-completion capability used by the LLM parser
type Completer interface {
	GetPrompt(name string, injections ...openai.DataInjection) (string, error)
	GetResponse(ctx context.Context, prompt, message string) (string, error)
}

// LLMConfig cấu hình LLM parser, truyền tường minh
type LLMConfig struct {
	Enabled          bool
	Workers          int
	SendDatabaseData bool
}

// llmIngredient one structured candidate returned by the model
type llmIngredient struct {
	Input    string   `json:"input"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
	Food     *string  `json:"food"`
	Note     *string  `json:"note"`
}

type llmResponse struct {
	Ingredients []llmIngredient `json:"ingredients"`
}

// LLMParser parse nguyên liệu bằng text-completion, chia chunk chạy song song
type LLMParser struct {
	completer Completer
	matcher   *Matcher
	cfg       LLMConfig
	scorer    *Scorer
	logger    *zap.Logger
}

// NewLLMParser tạo mới LLMParser
func NewLLMParser(completer Completer, matcher *Matcher, cfg LLMConfig, policy models.PluralPolicy, logger *zap.Logger) *LLMParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &LLMParser{
		completer: completer,
		matcher:   matcher,
		cfg:       cfg,
		scorer:    NewScorer(ScoreModeFuzzy, policy),
		logger:    logger,
	}
}

// ParseOne parse một dòng
func (p *LLMParser) ParseOne(ctx context.Context, line string) (models.ParsedIngredient, error) {
	results, err := p.Parse(ctx, []string{line})
	if err != nil {
		return models.ParsedIngredient{}, err
	}
	return results[0], nil
}

// Parse is all-or-nothing: any chunk failure, an empty aggregate or a count
// mismatch fails the whole call. output[i] always belongs to lines[i].
func (p *LLMParser) Parse(ctx context.Context, lines []string) ([]models.ParsedIngredient, error) {
	if len(lines) == 0 {
		return []models.ParsedIngredient{}, nil
	}
	start := time.Now()

	prompt, err := p.completer.GetPrompt(openai.PromptParseIngredients, p.injections()...)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	chunks := chunkLines(lines, p.cfg.Workers)
	responses := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i := i
		payload, err := json.Marshal(chunk)
		if err != nil {
			return nil, fmt.Errorf("marshal chunk: %w", err)
		}
		g.Go(func() error {
			resp, err := p.completer.GetResponse(gctx, prompt, string(payload))
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Error("Lỗi gọi completion service", zap.Int("chunks", len(chunks)), zap.Error(err))
		return nil, newUpstreamError("failed to call the completion service", err)
	}

	candidates, err := p.collect(responses)
	if err != nil {
		return nil, err
	}
	if len(candidates) != len(lines) {
		return nil, newCountMismatchError(len(lines), len(candidates))
	}

	results := make([]models.ParsedIngredient, len(lines))
	for i, line := range lines {
		ing := p.toIngredient(line, candidates[i])
		results[i] = models.ParsedIngredient{
			Input:      line,
			Ingredient: ing,
			Confidence: p.scorer.Score(line, &ing),
		}
	}

	p.logger.Debug("Đã parse nguyên liệu (llm)",
		zap.Int("lines", len(lines)),
		zap.Int("chunks", len(chunks)),
		zap.Duration("took", time.Since(start)))
	return results, nil
}

func (p *LLMParser) injections() []openai.DataInjection {
	if !p.cfg.SendDatabaseData {
		return nil
	}
	keys := p.matcher.Vocabulary().UnitKeys()
	if len(keys) == 0 {
		return nil
	}
	return []openai.DataInjection{{
		Description: unitsInjectionDescription,
		Value:       strings.Join(keys, "\n"),
	}}
}

// collect decodes chunk responses in chunk order; empty responses are skipped.
func (p *LLMParser) collect(responses []string) ([]llmIngredient, error) {
	var (
		all    []llmIngredient
		usable int
	)
	for i, raw := range responses {
		cleaned := sanitizeResponse(raw)
		if cleaned == "" {
			p.logger.Warn("Completion chunk không có response", zap.Int("chunk", i))
			continue
		}
		var resp llmResponse
		if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
			return nil, newUpstreamError("invalid completion response", err)
		}
		usable++
		all = append(all, resp.Ingredients...)
	}
	if usable == 0 {
		return nil, newUpstreamError("no response from the completion service", nil)
	}
	return all, nil
}

func (p *LLMParser) toIngredient(line string, c llmIngredient) models.RecipeIngredient {
	ing := models.RecipeIngredient{OriginalText: line}
	if c.Quantity != nil && *c.Quantity > 0 {
		ing.Quantity = *c.Quantity
	}
	if c.Unit != nil {
		if unit := stripNUL(*c.Unit); strings.TrimSpace(unit) != "" {
			ing.Unit = p.matcher.MatchUnit(unit)
		}
	}
	if c.Food != nil {
		if food := stripNUL(*c.Food); strings.TrimSpace(food) != "" {
			ing.Food = p.matcher.MatchFood(food)
		}
	}
	if c.Note != nil {
		ing.Note = stripNUL(*c.Note)
	}
	return ing
}

// chunkLines splits lines into at most n contiguous, near-equal chunks.
func chunkLines(lines []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	if n > len(lines) {
		n = len(lines)
	}
	chunks := make([][]string, 0, n)
	size, extra := len(lines)/n, len(lines)%n
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < extra {
			end++
		}
		chunks = append(chunks, lines[start:end])
		start = end
	}
	return chunks
}

// sanitizeResponse drops raw NUL characters and markdown code fences. Escaped
// NULs are decoded by encoding/json and stripped per field.
func sanitizeResponse(raw string) string {
	s := strings.TrimSpace(stripNUL(raw))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			// ```json
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func stripNUL(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
