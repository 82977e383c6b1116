// Package search đánh index foods/units của vocabulary vào Meilisearch
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/internal/normalizer"
	"github.com/recipe-parser/internal/queryfilter"
	"go.uber.org/zap"
)

const seedBatchSize = 1000

// SearchConfig cấu hình cho Meilisearch
type SearchConfig struct {
	Host          string
	APIKey        string
	FoodIndex     string
	UnitIndex     string
	Timeout       time.Duration
	MaxCandidates int
}

// FoodHit một kết quả tìm kiếm food
type FoodHit struct {
	Food  models.IngredientFood `json:"food"`
	Score float64               `json:"score"`
}

// UnitHit một kết quả tìm kiếm unit
type UnitHit struct {
	Unit  models.IngredientUnit `json:"unit"`
	Score float64               `json:"score"`
}

// IndexStats số document trong mỗi index
type IndexStats struct {
	Foods int64 `json:"foods"`
	Units int64 `json:"units"`
}

// VocabularySearcher searcher tìm kiếm foods/units sử dụng Meilisearch
type VocabularySearcher struct {
	client  meilisearch.ServiceManager
	logger  *zap.Logger
	config  SearchConfig
	timeout time.Duration
}

type foodDocument struct {
	ID             string   `json:"id"`
	GroupID        string   `json:"group_id"`
	Name           string   `json:"name"`
	NormalizedName string   `json:"normalized_name"`
	PluralName     string   `json:"plural_name,omitempty"`
	Description    string   `json:"description,omitempty"`
	Aliases        []string `json:"aliases"`
	UpdatedAt      int64    `json:"updated_at"`
	RankingScore   float64  `json:"_rankingScore,omitempty"`
}

type unitDocument struct {
	foodDocument
	Abbreviation       string `json:"abbreviation,omitempty"`
	PluralAbbreviation string `json:"plural_abbreviation,omitempty"`
	UseAbbreviation    bool   `json:"use_abbreviation"`
	Fraction           bool   `json:"fraction"`
}

// NewVocabularySearcher tạo mới VocabularySearcher, kiểm tra kết nối trước
func NewVocabularySearcher(config SearchConfig, logger *zap.Logger) (*VocabularySearcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.FoodIndex == "" {
		config.FoodIndex = "ingredient_foods"
	}
	if config.UnitIndex == "" {
		config.UnitIndex = "ingredient_units"
	}
	if config.MaxCandidates <= 0 {
		config.MaxCandidates = 20
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	client := meilisearch.New(config.Host, meilisearch.WithAPIKey(config.APIKey))
	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("không thể kết nối Meilisearch: %w", err)
	}

	return &VocabularySearcher{
		client:  client,
		logger:  logger,
		config:  config,
		timeout: config.Timeout,
	}, nil
}

// Ping kiểm tra Meilisearch còn sống
func (vs *VocabularySearcher) Ping(ctx context.Context) error {
	_, err := vs.client.HealthWithContext(ctx)
	return err
}

// BuildIndexes cấu hình searchable/filterable attributes cho cả hai index
func (vs *VocabularySearcher) BuildIndexes() error {
	base := meilisearch.Settings{
		SearchableAttributes: []string{"name", "normalized_name", "plural_name", "aliases"},
		FilterableAttributes: []string{"id", "group_id", "name", "updated_at"},
		SortableAttributes:   []string{"name", "updated_at"},
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: true,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  4,
				TwoTypos: 8,
			},
		},
	}

	foods := base
	task, err := vs.client.Index(vs.config.FoodIndex).UpdateSettings(&foods)
	if err != nil {
		return fmt.Errorf("lỗi cấu hình index %s: %w", vs.config.FoodIndex, err)
	}
	vs.logger.Info("Đã cấu hình index Meilisearch", zap.String("index", vs.config.FoodIndex), zap.Int64("task_uid", task.TaskUID))

	units := base
	units.SearchableAttributes = append([]string{"abbreviation", "plural_abbreviation"}, base.SearchableAttributes...)
	units.FilterableAttributes = append([]string{"fraction", "use_abbreviation"}, base.FilterableAttributes...)
	task, err = vs.client.Index(vs.config.UnitIndex).UpdateSettings(&units)
	if err != nil {
		return fmt.Errorf("lỗi cấu hình index %s: %w", vs.config.UnitIndex, err)
	}
	vs.logger.Info("Đã cấu hình index Meilisearch", zap.String("index", vs.config.UnitIndex), zap.Int64("task_uid", task.TaskUID))
	return nil
}

// SeedFoods nạp foods vào Meilisearch theo batch
func (vs *VocabularySearcher) SeedFoods(foods []models.IngredientFood) error {
	docs := make([]foodDocument, 0, len(foods))
	for _, f := range foods {
		docs = append(docs, newFoodDocument(f))
	}
	return seedDocuments(vs, vs.config.FoodIndex, docs)
}

// SeedUnits nạp units vào Meilisearch theo batch
func (vs *VocabularySearcher) SeedUnits(units []models.IngredientUnit) error {
	docs := make([]unitDocument, 0, len(units))
	for _, u := range units {
		docs = append(docs, newUnitDocument(u))
	}
	return seedDocuments(vs, vs.config.UnitIndex, docs)
}

func seedDocuments[T any](vs *VocabularySearcher, indexName string, documents []T) error {
	if len(documents) == 0 {
		return errors.New("không có dữ liệu để seed")
	}
	index := vs.client.Index(indexName)

	for i := 0; i < len(documents); i += seedBatchSize {
		end := i + seedBatchSize
		if end > len(documents) {
			end = len(documents)
		}

		task, err := index.AddDocuments(documents[i:end], "id")
		if err != nil {
			return fmt.Errorf("lỗi thêm documents batch %d-%d: %w", i, end, err)
		}

		vs.logger.Info("Đã thêm batch documents",
			zap.String("index", indexName),
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}

	vs.logger.Info("Đã seed data thành công", zap.String("index", indexName), zap.Int("total_documents", len(documents)))
	return nil
}

// SearchFoods tìm food trong group, filter có thể nil
func (vs *VocabularySearcher) SearchFoods(ctx context.Context, groupID, query string, filter queryfilter.Node, limit int) ([]FoodHit, error) {
	var docs []foodDocument
	if err := vs.search(ctx, vs.config.FoodIndex, groupID, query, filter, limit, &docs); err != nil {
		return nil, err
	}
	hits := make([]FoodHit, 0, len(docs))
	for _, d := range docs {
		hits = append(hits, FoodHit{Food: d.toFood(), Score: d.RankingScore})
	}
	return hits, nil
}

// SearchUnits tìm unit trong group, filter có thể nil
func (vs *VocabularySearcher) SearchUnits(ctx context.Context, groupID, query string, filter queryfilter.Node, limit int) ([]UnitHit, error) {
	var docs []unitDocument
	if err := vs.search(ctx, vs.config.UnitIndex, groupID, query, filter, limit, &docs); err != nil {
		return nil, err
	}
	hits := make([]UnitHit, 0, len(docs))
	for _, d := range docs {
		hits = append(hits, UnitHit{Unit: d.toUnit(), Score: d.RankingScore})
	}
	return hits, nil
}

func (vs *VocabularySearcher) search(ctx context.Context, indexName, groupID, query string, filter queryfilter.Node, limit int, out any) error {
	expr, err := ScopedFilter(groupID, filter)
	if err != nil {
		return err
	}
	if limit <= 0 || limit > vs.config.MaxCandidates {
		limit = vs.config.MaxCandidates
	}

	ctx, cancel := context.WithTimeout(ctx, vs.timeout)
	defer cancel()

	req := &meilisearch.SearchRequest{
		Limit:            int64(limit),
		ShowRankingScore: true,
	}
	if expr != "" {
		req.Filter = expr
	}

	start := time.Now()
	result, err := vs.client.Index(indexName).SearchWithContext(ctx, query, req)
	if err != nil {
		return fmt.Errorf("lỗi tìm kiếm Meilisearch: %w", err)
	}

	// hits là JSON object tự do, decode lại qua encoding/json
	raw, err := json.Marshal(result.Hits)
	if err != nil {
		return fmt.Errorf("lỗi đọc kết quả Meilisearch: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("lỗi đọc kết quả Meilisearch: %w", err)
	}

	vs.logger.Debug("Meilisearch search",
		zap.String("index", indexName),
		zap.String("query", query),
		zap.String("filter", expr),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Stats số document hiện có trong mỗi index
func (vs *VocabularySearcher) Stats() (IndexStats, error) {
	var stats IndexStats
	foods, err := vs.client.Index(vs.config.FoodIndex).GetStats()
	if err != nil {
		return stats, fmt.Errorf("lỗi lấy stats %s: %w", vs.config.FoodIndex, err)
	}
	units, err := vs.client.Index(vs.config.UnitIndex).GetStats()
	if err != nil {
		return stats, fmt.Errorf("lỗi lấy stats %s: %w", vs.config.UnitIndex, err)
	}
	stats.Foods = foods.NumberOfDocuments
	stats.Units = units.NumberOfDocuments
	return stats, nil
}

func newFoodDocument(f models.IngredientFood) foodDocument {
	return foodDocument{
		ID:             f.ID,
		GroupID:        f.GroupID,
		Name:           f.Name,
		NormalizedName: normalizer.Normalize(f.Name),
		PluralName:     f.PluralName,
		Description:    f.Description,
		Aliases:        aliasNames(f.Aliases),
		UpdatedAt:      f.UpdatedAt.Unix(),
	}
}

func newUnitDocument(u models.IngredientUnit) unitDocument {
	return unitDocument{
		foodDocument: foodDocument{
			ID:             u.ID,
			GroupID:        u.GroupID,
			Name:           u.Name,
			NormalizedName: normalizer.Normalize(u.Name),
			PluralName:     u.PluralName,
			Description:    u.Description,
			Aliases:        aliasNames(u.Aliases),
			UpdatedAt:      u.UpdatedAt.Unix(),
		},
		Abbreviation:       u.Abbreviation,
		PluralAbbreviation: u.PluralAbbreviation,
		UseAbbreviation:    u.UseAbbreviation,
		Fraction:           u.Fraction,
	}
}

func (d foodDocument) toFood() models.IngredientFood {
	return models.IngredientFood{
		ID:          d.ID,
		GroupID:     d.GroupID,
		Name:        d.Name,
		PluralName:  d.PluralName,
		Description: d.Description,
		Aliases:     toAliases(d.Aliases),
		UpdatedAt:   time.Unix(d.UpdatedAt, 0).UTC(),
	}
}

func (d unitDocument) toUnit() models.IngredientUnit {
	return models.IngredientUnit{
		ID:                 d.ID,
		GroupID:            d.GroupID,
		Name:               d.Name,
		PluralName:         d.PluralName,
		Description:        d.Description,
		Abbreviation:       d.Abbreviation,
		PluralAbbreviation: d.PluralAbbreviation,
		UseAbbreviation:    d.UseAbbreviation,
		Fraction:           d.Fraction,
		Aliases:            toAliases(d.Aliases),
		UpdatedAt:          time.Unix(d.UpdatedAt, 0).UTC(),
	}
}

func aliasNames(aliases []models.IngredientAlias) []string {
	names := make([]string, 0, len(aliases))
	for _, a := range aliases {
		names = append(names, a.Name)
	}
	return names
}

func toAliases(names []string) []models.IngredientAlias {
	if len(names) == 0 {
		return nil
	}
	aliases := make([]models.IngredientAlias, 0, len(names))
	for _, n := range names {
		aliases = append(aliases, models.IngredientAlias{Name: n})
	}
	return aliases
}
