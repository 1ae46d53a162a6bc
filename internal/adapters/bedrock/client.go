package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/adapters/narrative"
	"github.com/hollis/phishguard/internal/core"
)

// Client is a NarrativeGenerator backed by Amazon Bedrock
type Client struct {
	client      *bedrockruntime.Client
	modelID     string
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewClient creates a Bedrock narrative client
func NewClient(client *bedrockruntime.Client, modelID string, maxTokens int, temperature, topP float32, logger *zap.Logger) *Client {
	return &Client{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}
}

func (c *Client) isAnthropicModel() bool {
	return strings.Contains(c.modelID, "anthropic")
}

func (c *Client) isAmazonTitanModel() bool {
	return strings.Contains(c.modelID, "amazon.titan")
}

// Explain invokes the configured Bedrock model with the analysis prompt
// and parses the sectioned reply. Request and response shapes differ by
// model family.
func (c *Client) Explain(ctx context.Context, email *core.EmailInput, results core.FrameworkResultSet) (*core.Narrative, error) {
	prompt := narrative.BuildPrompt(email, results)

	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	responseText, err := c.extractText(resp.Body)
	if err != nil {
		return nil, err
	}

	parsed, err := narrative.ParseReply(responseText)
	if err != nil {
		c.logger.Warn("Bedrock reply did not follow the section format",
			zap.String("model", c.modelID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to parse Bedrock reply: %w", err)
	}

	return parsed, nil
}

// extractText pulls the generated text out of the model-family-specific
// response body
func (c *Client) extractText(body []byte) (string, error) {
	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Text       string `json:"text"`
		Completion string `json:"completion"`
		Output     string `json:"output"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal model response: %w", err)
	}
	for _, text := range []string{genericResp.Text, genericResp.Completion, genericResp.Output} {
		if text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("no generated text in model response")
}
