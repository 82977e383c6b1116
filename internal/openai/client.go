// Package openai is a small client for OpenAI-compatible chat-completions
// endpoints, used by the LLM ingredient parser.
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"
	defaultTimeout = 60 * time.Second
)

// Role constants.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Option configures the Service.
type Option func(*Service)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.baseURL = url
		}
	}
}

// WithModel overrides the default model name.
func WithModel(model string) Option {
	return func(s *Service) {
		if model != "" {
			s.model = model
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(s *Service) { s.headers = headers }
}

// WithQueryParams adds query params to every request.
func WithQueryParams(params map[string]string) Option {
	return func(s *Service) { s.params = params }
}

// WithCustomPromptDir prompts in this dir override the embedded ones.
func WithCustomPromptDir(dir string) Option {
	return func(s *Service) { s.customPromptDir = dir }
}

// Service talks to an OpenAI-compatible chat-completions endpoint.
type Service struct {
	client          *resty.Client
	baseURL         string
	model           string
	timeout         time.Duration
	headers         map[string]string
	params          map[string]string
	customPromptDir string
	logger          *zap.Logger
}

// NewService tạo mới OpenAI service
func NewService(apiKey string, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		baseURL: defaultBaseURL,
		model:   defaultModel,
		timeout: defaultTimeout,
		logger:  logger,
	}
	for _, o := range opts {
		o(s)
	}

	s.client = resty.New().
		SetBaseURL(s.baseURL).
		SetTimeout(s.timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", apiKey)).
		SetHeaders(s.headers).
		SetQueryParams(s.params)
	return s
}

// Model trả về model đang dùng
func (s *Service) Model() string { return s.model }

// GetResponse sends the system prompt and user message and returns the first
// choice. An empty choice list yields "" with no error.
func (s *Service) GetResponse(ctx context.Context, prompt, userMessage string) (string, error) {
	body := chatRequest{
		Model: s.model,
		Messages: []message{
			{Role: RoleSystem, Content: prompt},
			{Role: RoleUser, Content: userMessage},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	start := time.Now()
	var result chatResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("openai: API %s: %s", resp.Status(), truncate(resp.String(), 200))
	}

	s.logger.Debug("openai: chat completion",
		zap.String("model", s.model),
		zap.Int("choices", len(result.Choices)),
		zap.Duration("took", time.Since(start)))

	if len(result.Choices) == 0 {
		return "", nil
	}
	return result.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
