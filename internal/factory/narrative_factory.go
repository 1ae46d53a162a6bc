package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/adapters/bedrock"
	"github.com/hollis/phishguard/internal/adapters/gemini"
	"github.com/hollis/phishguard/internal/adapters/ollama"
	"github.com/hollis/phishguard/internal/adapters/openai"
	"github.com/hollis/phishguard/internal/config"
	"github.com/hollis/phishguard/internal/core"
)

// NarrativeFactory creates narrative generators
type NarrativeFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNarrativeFactory creates a new narrative factory
func NewNarrativeFactory(cfg *config.Config, logger *zap.Logger) *NarrativeFactory {
	return &NarrativeFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateGenerator creates a narrative generator based on the configuration.
// The "none" provider returns nil, which makes every analysis carry the
// deterministic fallback narrative.
func (f *NarrativeFactory) CreateGenerator() (core.NarrativeGenerator, error) {
	narrativeCfg := f.cfg.GetNarrative()

	switch narrativeCfg.Provider {
	case "ollama":
		ollamaCfg := f.cfg.GetOllama()
		return ollama.NewClient(
			ollamaCfg.BaseURL,
			ollamaCfg.Model,
			narrativeCfg.Timeout,
			ollamaCfg.Temperature,
			ollamaCfg.TopP,
			ollamaCfg.TopK,
			f.logger,
		), nil
	case "openai":
		openaiCfg := f.cfg.GetOpenAI()
		return openai.NewClient(
			openaiCfg.APIKey,
			openaiCfg.ModelName,
			openaiCfg.MaxTokens,
			openaiCfg.Temperature,
			openaiCfg.TopP,
			f.logger,
		), nil
	case "bedrock":
		bedrockCfg := f.cfg.GetBedrock()
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(bedrockCfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		return bedrock.NewClient(
			client,
			bedrockCfg.ModelID,
			bedrockCfg.MaxTokens,
			bedrockCfg.Temperature,
			bedrockCfg.TopP,
			f.logger,
		), nil
	case "gemini":
		geminiCfg := f.cfg.GetGemini()
		return gemini.NewClient(
			context.Background(),
			geminiCfg.APIKey,
			geminiCfg.ModelName,
			geminiCfg.MaxTokens,
			geminiCfg.Temperature,
			geminiCfg.TopP,
			f.logger,
		)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported narrative provider: %s", narrativeCfg.Provider)
	}
}
