package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/adapters/narrative"
	"github.com/hollis/phishguard/internal/core"
)

// Client is a NarrativeGenerator backed by the OpenAI chat API
type Client struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewClient creates an OpenAI narrative client
func NewClient(apiKey, modelName string, maxTokens int, temperature, topP float32, logger *zap.Logger) *Client {
	return &Client{
		client:      openai.NewClient(apiKey),
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}
}

// Explain sends the analysis prompt as a chat completion and parses the
// sectioned reply
func (c *Client) Explain(ctx context.Context, email *core.EmailInput, results core.FrameworkResultSet) (*core.Narrative, error) {
	prompt := narrative.BuildPrompt(email, results)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a cybersecurity expert. Answer in the exact SUMMARY/REASONING/RECOMMENDATIONS format requested.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	parsed, err := narrative.ParseReply(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.Warn("OpenAI reply did not follow the section format",
			zap.String("model", c.modelName),
			zap.Error(err))
		return nil, fmt.Errorf("failed to parse OpenAI reply: %w", err)
	}

	return parsed, nil
}
