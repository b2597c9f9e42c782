package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type generatorResponse struct {
	Quotes []string `json:"quotes"`
}

// Generator asks a chat model for quotes about discipline.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	count       int
	logger      *zap.Logger
}

func NewGenerator(apiKey, model string, maxTokens int, temperature float64, count int, logger *zap.Logger) *Generator {
	return NewGeneratorWithConfig(openai.DefaultConfig(apiKey), model, maxTokens, temperature, count, logger)
}

func NewGeneratorWithConfig(cfg openai.ClientConfig, model string, maxTokens int, temperature float64, count int, logger *zap.Logger) *Generator {
	if count <= 0 {
		count = 10
	}
	return &Generator{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		count:       count,
		logger:      logger,
	}
}

func (g *Generator) Fetch(ctx context.Context) ([]string, error) {
	prompt := fmt.Sprintf(`Write %d short motivational quotes about discipline.

Return the response as a JSON object with this structure:
{
    "quotes": ["quote1", "quote2", ...]
}`, g.count)

	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   g.maxTokens,
			Temperature: float32(g.temperature),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: chat completion: %w", ErrFetchFailed, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrFetchFailed)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	var parsed generatorResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		g.logger.Error("Failed to parse GPT response",
			zap.Error(err),
			zap.String("response", content))
		return nil, fmt.Errorf("%w: parse completion: %w", ErrFetchFailed, err)
	}

	quotes := make([]string, 0, len(parsed.Quotes))
	for _, q := range parsed.Quotes {
		if q = strings.TrimSpace(q); q != "" {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}
