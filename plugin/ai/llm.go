package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	aierrors "github.com/hrygo/planwise/internal/errors"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// ChatOptions tunes a single completion request.
type ChatOptions struct {
	// JSON asks the provider for a single JSON object reply.
	JSON bool
	// MaxTokens overrides the service default when positive.
	MaxTokens int
}

// ChatOption mutates ChatOptions.
type ChatOption func(*ChatOptions)

// WithJSONResponse constrains the reply to a JSON object.
func WithJSONResponse() ChatOption {
	return func(o *ChatOptions) { o.JSON = true }
}

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int) ChatOption {
	return func(o *ChatOptions) { o.MaxTokens = n }
}

// ResolveChatOptions applies opts over the zero value.
func ResolveChatOptions(opts ...ChatOption) ChatOptions {
	var o ChatOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// LLMService is the text-generation completion service.
type LLMService interface {
	// Chat performs synchronous chat and returns the reply content.
	Chat(ctx context.Context, messages []Message, opts ...ChatOption) (string, error)
}

type llmService struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewLLMService creates a new LLMService.
// Every supported provider speaks the OpenAI chat completion protocol.
func NewLLMService(cfg *LLMConfig) (LLMService, error) {
	if cfg == nil || cfg.Provider == "" {
		return Unavailable("LLM provider not configured"), nil
	}

	var clientConfig openai.ClientConfig
	switch cfg.Provider {
	case "deepseek", "siliconflow", "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("API key is required for provider %s", cfg.Provider)
		}
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}

	case "ollama":
		// Ollama exposes the OpenAI protocol under /v1 and ignores the token.
		clientConfig = openai.DefaultConfig("ollama")
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/v1"

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &llmService{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (s *llmService) Chat(ctx context.Context, messages []Message, opts ...ChatOption) (string, error) {
	o := ResolveChatOptions(opts...)

	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    convertMessages(messages),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}
	if o.MaxTokens > 0 {
		req.MaxTokens = o.MaxTokens
	}
	if o.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", aierrors.LLMUnavailable("chat completion failed", err)
	}

	if len(resp.Choices) == 0 {
		return "", aierrors.LLMUnavailable("empty response", nil)
	}

	return resp.Choices[0].Message.Content, nil
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case "system":
			role = openai.ChatMessageRoleSystem
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		}
		out[i] = openai.ChatCompletionMessage{Role: role, Content: m.Content}
	}
	return out
}

// unavailableLLM answers every call with ErrCodeServiceUnavailable.
type unavailableLLM struct {
	reason string
}

// Unavailable returns an LLMService that is not configured.
func Unavailable(reason string) LLMService {
	return &unavailableLLM{reason: reason}
}

func (u *unavailableLLM) Chat(context.Context, []Message, ...ChatOption) (string, error) {
	return "", aierrors.ServiceUnavailable(u.reason)
}

type rateLimitedLLM struct {
	next    LLMService
	limiter *rate.Limiter
}

// NewRateLimitedLLM wraps next so that at most limit requests per second reach the provider.
// A non-positive limit returns next unchanged.
func NewRateLimitedLLM(next LLMService, limit float64, burst int) LLMService {
	if limit <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &rateLimitedLLM{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
	}
}

func (r *rateLimitedLLM) Chat(ctx context.Context, messages []Message, opts ...ChatOption) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", aierrors.Wrap(err, aierrors.ErrCodeTimeout, "rate limiter wait")
	}
	return r.next.Chat(ctx, messages, opts...)
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// FormatMessages builds the message list for a single-turn prompt.
func FormatMessages(systemPrompt string, userContent string) []Message {
	messages := []Message{}
	if systemPrompt != "" {
		messages = append(messages, SystemPrompt(systemPrompt))
	}
	return append(messages, UserMessage(userContent))
}
