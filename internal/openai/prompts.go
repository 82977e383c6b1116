package openai

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

//go:embed prompts
var defaultPrompts embed.FS

// PromptParseIngredients prompt dùng cho LLM ingredient parser
const PromptParseIngredients = "recipes.parse-recipe-ingredients"

// ErrPromptNotFound không tìm thấy prompt trong custom dir lẫn embedded
var ErrPromptNotFound = errors.New("unable to load prompt")

// DataInjection extra context appended to a prompt
type DataInjection struct {
	Description string
	Value       string
}

// NewDataInjection marshals non-string values to JSON.
func NewDataInjection(description string, value any) (DataInjection, error) {
	if s, ok := value.(string); ok {
		return DataInjection{Description: description, Value: s}, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return DataInjection{}, fmt.Errorf("marshal data injection: %w", err)
	}
	return DataInjection{Description: description, Value: string(data)}, nil
}

// promptPath "recipes.parse-recipe-ingredients" -> "recipes/parse-recipe-ingredients.txt"
func promptPath(name string) string {
	return path.Join(strings.Split(name, ".")...) + ".txt"
}

// GetPrompt loads a prompt by dotted name. A non-empty file under the custom
// prompt dir overrides the embedded default. Injections are appended in order.
func (s *Service) GetPrompt(name string, injections ...DataInjection) (string, error) {
	content, err := s.loadPrompt(name)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(content)
	for _, inj := range injections {
		b.WriteString("\n###\n")
		b.WriteString(inj.Description)
		b.WriteString("\n---\n\n")
		b.WriteString(inj.Value)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (s *Service) loadPrompt(name string) (string, error) {
	rel := promptPath(name)

	if s.customPromptDir != "" {
		data, err := os.ReadFile(filepath.Join(s.customPromptDir, filepath.FromSlash(rel)))
		if err == nil && strings.TrimSpace(string(data)) != "" {
			return string(data), nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Không đọc được custom prompt, dùng mặc định",
				zap.String("prompt", name), zap.Error(err))
		}
	}

	data, err := defaultPrompts.ReadFile(path.Join("prompts", rel))
	if err != nil {
		return "", fmt.Errorf("%w %q", ErrPromptNotFound, name)
	}
	return string(data), nil
}
