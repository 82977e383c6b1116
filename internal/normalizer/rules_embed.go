package normalizer

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/ingredient_rules.yaml
var rulesYAML []byte

// RulesConfig chứa cấu hình rules được load từ YAML
type RulesConfig struct {
	VulgarFractions map[string]string `yaml:"vulgar_fractions"`
	Articles        []string          `yaml:"articles"`
	Descriptors     []string          `yaml:"descriptors"`
	Connectors      []string          `yaml:"connectors"`
}

// Rules is the lookup form of RulesConfig.
type Rules struct {
	fractions   *strings.Replacer
	articles    map[string]struct{}
	descriptors map[string]struct{}
	connectors  map[string]struct{}
}

var (
	defaultRules     *Rules
	defaultRulesErr  error
	defaultRulesOnce sync.Once
)

// LoadRulesConfig load cấu hình rules từ embedded YAML
func LoadRulesConfig() (*RulesConfig, error) {
	config := &RulesConfig{}
	if err := yaml.Unmarshal(rulesYAML, config); err != nil {
		return nil, fmt.Errorf("parse ingredient rules: %w", err)
	}
	return config, nil
}

// NewRules builds lookup sets from a config.
func NewRules(cfg *RulesConfig) *Rules {
	pairs := make([]string, 0, len(cfg.VulgarFractions)*2)
	for glyph, ascii := range cfg.VulgarFractions {
		// "1½" -> "1 1/2"
		pairs = append(pairs, glyph, " "+ascii+" ")
	}
	return &Rules{
		fractions:   strings.NewReplacer(pairs...),
		articles:    toSet(cfg.Articles),
		descriptors: toSet(cfg.Descriptors),
		connectors:  toSet(cfg.Connectors),
	}
}

// DefaultRules returns the embedded rules, loaded once.
func DefaultRules() *Rules {
	defaultRulesOnce.Do(func() {
		cfg, err := LoadRulesConfig()
		if err != nil {
			defaultRulesErr = err
			defaultRules = NewRules(&RulesConfig{})
			return
		}
		defaultRules = NewRules(cfg)
	})
	return defaultRules
}

// DefaultRulesErr reports whether the embedded rules failed to load.
func DefaultRulesErr() error {
	DefaultRules()
	return defaultRulesErr
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// ExpandFractions replaces vulgar fraction glyphs with ascii fractions.
func (r *Rules) ExpandFractions(s string) string {
	return r.fractions.Replace(s)
}

// IsArticle a/an/the
func (r *Rules) IsArticle(token string) bool {
	_, ok := r.articles[strings.ToLower(token)]
	return ok
}

// IsDescriptor size or measure modifier (large, heaping...)
func (r *Rules) IsDescriptor(token string) bool {
	_, ok := r.descriptors[strings.ToLower(token)]
	return ok
}

// IsConnector "of"
func (r *Rules) IsConnector(token string) bool {
	_, ok := r.connectors[strings.ToLower(token)]
	return ok
}
