package services

import (
	"context"
	"time"

	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/internal/parser"
	"go.uber.org/zap"
)

// VocabularyProvider cung cấp vocabulary đã build theo group
type VocabularyProvider interface {
	Vocabulary(ctx context.Context, groupID string) (*parser.Vocabulary, error)
}

var _ VocabularyProvider = (*VocabularyService)(nil)

// IngredientServiceConfig giá trị mặc định của service
type IngredientServiceConfig struct {
	DefaultParser parser.RegisteredParser
	DefaultPolicy models.PluralPolicy
	Matcher       parser.MatcherOptions
	LLM           parser.LLMConfig
}

// ParseOptions tùy chọn của một request parse
type ParseOptions struct {
	GroupID      string
	Parser       string
	PluralPolicy models.PluralPolicy
}

// IngredientService service xử lý logic parse nguyên liệu
type IngredientService struct {
	vocab     VocabularyProvider
	completer parser.Completer
	cfg       IngredientServiceConfig
	logger    *zap.Logger
}

// NewIngredientService tạo mới IngredientService; completer nil thì tắt parser openai
func NewIngredientService(vocab VocabularyProvider, completer parser.Completer, cfg IngredientServiceConfig, logger *zap.Logger) *IngredientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultParser == "" {
		cfg.DefaultParser = parser.ParserBrute
	}
	if !cfg.DefaultPolicy.IsValid() {
		cfg.DefaultPolicy = models.PluralAlways
	}
	return &IngredientService{
		vocab:     vocab,
		completer: completer,
		cfg:       cfg,
		logger:    logger,
	}
}

// ParseIngredients parse nhiều dòng; output[i] tương ứng lines[i]
func (is *IngredientService) ParseIngredients(ctx context.Context, lines []string, opts ParseOptions) ([]models.ParsedIngredient, error) {
	p, key, err := is.resolve(ctx, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := p.Parse(ctx, lines)
	if err != nil {
		is.logger.Error("Lỗi parse nguyên liệu",
			zap.String("group_id", opts.GroupID),
			zap.String("parser", string(key)),
			zap.Int("lines", len(lines)),
			zap.Error(err))
		return nil, err
	}

	is.logger.Info("Đã parse nguyên liệu",
		zap.String("group_id", opts.GroupID),
		zap.String("parser", string(key)),
		zap.Int("lines", len(lines)),
		zap.Duration("took", time.Since(start)))
	return results, nil
}

// ParseIngredient parse một dòng
func (is *IngredientService) ParseIngredient(ctx context.Context, line string, opts ParseOptions) (models.ParsedIngredient, error) {
	p, _, err := is.resolve(ctx, opts)
	if err != nil {
		return models.ParsedIngredient{}, err
	}
	return p.ParseOne(ctx, line)
}

// Reprocess parse lại một recipe; lỗi được ghi vào kết quả thay vì trả về
func (is *IngredientService) Reprocess(ctx context.Context, recipe models.RecipeIngredients, parserName string) *models.ReprocessResult {
	opts := ParseOptions{GroupID: recipe.GroupID, Parser: parserName}
	parsed, err := is.ParseIngredients(ctx, recipe.Ingredients, opts)
	if err != nil {
		return models.NewSkippedResult(recipe, parserName, err)
	}
	return models.NewReprocessResult(recipe, parserName, parsed)
}

// ParserKey parser được dùng cho tên trong request; rỗng là parser mặc định
func (is *IngredientService) ParserKey(name string) (parser.RegisteredParser, error) {
	if name == "" {
		return is.cfg.DefaultParser, nil
	}
	return parser.ParseRegisteredParser(name)
}

func (is *IngredientService) resolve(ctx context.Context, opts ParseOptions) (parser.IngredientParser, parser.RegisteredParser, error) {
	key, err := is.ParserKey(opts.Parser)
	if err != nil {
		return nil, "", err
	}

	policy := opts.PluralPolicy
	if !policy.IsValid() {
		policy = is.cfg.DefaultPolicy
	}

	vocab, err := is.vocab.Vocabulary(ctx, opts.GroupID)
	if err != nil {
		return nil, "", err
	}

	p, err := parser.GetParser(key, parser.Dependencies{
		Vocabulary:     vocab,
		Completer:      is.completer,
		LLM:            is.cfg.LLM,
		PluralPolicy:   policy,
		MatcherOptions: is.cfg.Matcher,
		Logger:         is.logger,
	})
	if err != nil {
		return nil, "", err
	}
	return p, key, nil
}
