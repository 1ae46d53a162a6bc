package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/hollis/phishguard/internal/adapters/narrative"
	"github.com/hollis/phishguard/internal/core"
)

// Client is a NarrativeGenerator backed by Google Gemini
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	logger    *zap.Logger
}

// NewClient creates a Gemini narrative client
func NewClient(ctx context.Context, apiKey, modelName string, maxTokens int, temperature, topP float32, logger *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &Client{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
	}, nil
}

// Close closes the underlying Gemini client
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Explain sends the analysis prompt to Gemini and parses the sectioned
// reply
func (c *Client) Explain(ctx context.Context, email *core.EmailInput, results core.FrameworkResultSet) (*core.Narrative, error) {
	prompt := narrative.BuildPrompt(email, results)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			reply.WriteString(string(text))
		}
	}

	parsed, err := narrative.ParseReply(reply.String())
	if err != nil {
		c.logger.Warn("Gemini reply did not follow the section format",
			zap.String("model", c.modelName),
			zap.Error(err))
		return nil, fmt.Errorf("failed to parse Gemini reply: %w", err)
	}

	return parsed, nil
}
