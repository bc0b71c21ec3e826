// generator.go - Language model backends for the AI conversion pass
package convert

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// Generator produces a completion for a prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorConfig selects and configures a chat model.
type GeneratorConfig struct {
	Provider    string
	Model       string
	BaseURL     string
	APIKey      string
	MaxTokens   int
	Temperature float32
}

// ChatGenerator adapts an eino chat model to Generator.
type ChatGenerator struct {
	name        string
	chat        model.BaseChatModel
	maxTokens   int
	temperature float32
}

// NewChatGenerator wraps an existing chat model.
func NewChatGenerator(name string, chat model.BaseChatModel, maxTokens int, temperature float32) *ChatGenerator {
	maxTokens = maxTokensOrDefault(maxTokens)
	return &ChatGenerator{
		name:        name,
		chat:        chat,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// NewGenerator builds a Generator from configuration. It returns nil, nil
// when no provider is configured so callers fall back to the rule-based path.
func NewGenerator(ctx context.Context, cfg GeneratorConfig) (Generator, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "openai", "claude", "gemini":
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s provider requires an api key", cfg.Provider)
	}

	var (
		chat model.BaseChatModel
		err  error
	)
	switch cfg.Provider {
	case "openai":
		chat, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		})
	case "claude":
		var baseURL *string
		if cfg.BaseURL != "" {
			baseURL = &cfg.BaseURL
		}
		chat, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BaseURL:   baseURL,
			MaxTokens: maxTokensOrDefault(cfg.MaxTokens),
		})
	case "gemini":
		var client *genai.Client
		client, err = genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
		if err != nil {
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}
		chat, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  cfg.Model,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s chat model: %w", cfg.Provider, err)
	}
	return NewChatGenerator(cfg.Model, chat, cfg.MaxTokens, cfg.Temperature), nil
}

// Name returns the model name used in conversion logs.
func (g *ChatGenerator) Name() string { return g.name }

// Generate sends prompt as a single user message.
func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := g.chat.Generate(ctx,
		[]*schema.Message{schema.UserMessage(prompt)},
		model.WithMaxTokens(g.maxTokens),
		model.WithTemperature(g.temperature),
	)
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", errors.New("empty model response")
	}
	return msg.Content, nil
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return 600
	}
	return n
}
