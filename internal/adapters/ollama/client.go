package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/adapters/narrative"
	"github.com/hollis/phishguard/internal/core"
)

// Client is a NarrativeGenerator backed by a local Ollama instance
type Client struct {
	baseURL     string
	model       string
	httpClient  *http.Client
	temperature float64
	topP        float64
	topK        int
	logger      *zap.Logger
}

// generateRequest is the Ollama /api/generate request body
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	TopK        int     `json:"top_k"`
}

// generateResponse is the subset of the Ollama reply we consume
type generateResponse struct {
	Response string `json:"response"`
}

// NewClient creates an Ollama narrative client. The timeout should be
// generous: generation takes far longer than an ordinary HTTP call. Low
// temperature keeps phrasing consistent across runs.
func NewClient(baseURL, model string, timeout time.Duration, temperature, topP float64, topK int, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:     baseURL,
		model:       model,
		httpClient:  &http.Client{Timeout: timeout},
		temperature: temperature,
		topP:        topP,
		topK:        topK,
		logger:      logger,
	}
}

// Explain sends the analysis prompt to Ollama and parses the reply
func (c *Client) Explain(ctx context.Context, email *core.EmailInput, results core.FrameworkResultSet) (*core.Narrative, error) {
	prompt := narrative.BuildPrompt(email, results)

	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: c.temperature,
			TopP:        c.topP,
			TopK:        c.topK,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}

	parsed, err := narrative.ParseReply(genResp.Response)
	if err != nil {
		c.logger.Warn("Ollama reply did not follow the section format",
			zap.String("model", c.model),
			zap.Error(err))
		return nil, fmt.Errorf("failed to parse ollama reply: %w", err)
	}

	return parsed, nil
}

// Healthy reports whether the Ollama endpoint is reachable
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
