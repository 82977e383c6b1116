package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/recipe-parser/app/models"
	"go.uber.org/zap"
)

// RegisteredParser closed set of ingredient parsers
type RegisteredParser string

const (
	ParserBrute  RegisteredParser = "brute"
	ParserOpenAI RegisteredParser = "openai"
)

// IngredientParser contract chung của mọi parser
type IngredientParser interface {
	Parse(ctx context.Context, lines []string) ([]models.ParsedIngredient, error)
	ParseOne(ctx context.Context, line string) (models.ParsedIngredient, error)
}

var (
	_ IngredientParser = (*BruteParser)(nil)
	_ IngredientParser = (*LLMParser)(nil)
)

// ParseRegisteredParser case-insensitive; empty selects brute.
func ParseRegisteredParser(s string) (RegisteredParser, error) {
	switch RegisteredParser(strings.ToLower(strings.TrimSpace(s))) {
	case "", ParserBrute:
		return ParserBrute, nil
	case ParserOpenAI:
		return ParserOpenAI, nil
	}
	return "", &ParseError{Code: ErrCodeUnknownParser, Message: fmt.Sprintf("unknown parser %q", s)}
}

// Dependencies mọi thứ parser cần, truyền tường minh
type Dependencies struct {
	Vocabulary     *Vocabulary
	Completer      Completer
	LLM            LLMConfig
	PluralPolicy   models.PluralPolicy
	MatcherOptions MatcherOptions
	Logger         *zap.Logger
}

// GetParser resolves a registered parser against explicit dependencies.
func GetParser(key RegisteredParser, deps Dependencies) (IngredientParser, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	matcher := NewMatcher(deps.Vocabulary, deps.MatcherOptions, logger)

	switch key {
	case ParserBrute:
		return NewBruteParser(matcher, deps.PluralPolicy, logger), nil
	case ParserOpenAI:
		if !deps.LLM.Enabled || deps.Completer == nil {
			return nil, &ParseError{Code: ErrCodeParserDisabled, Message: "openai parser is not enabled"}
		}
		return NewLLMParser(deps.Completer, matcher, deps.LLM, deps.PluralPolicy, logger), nil
	}
	return nil, &ParseError{Code: ErrCodeUnknownParser, Message: fmt.Sprintf("unknown parser %q", key)}
}
