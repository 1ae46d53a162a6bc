package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/config"
	"github.com/hollis/phishguard/internal/engine"
	"github.com/hollis/phishguard/internal/factory"
	"github.com/hollis/phishguard/internal/logging"
	"github.com/hollis/phishguard/internal/mailparse"
	"github.com/hollis/phishguard/internal/risk"
	"github.com/hollis/phishguard/internal/whitelist"
)

var (
	// Narrative provider flags
	provider    = flag.String("provider", "none", "Narrative provider (ollama, openai, bedrock, gemini, none)")
	maxTokens   = flag.Int("max-tokens", 1000, "Maximum tokens for narrative response")
	temperature = flag.Float64("temperature", 0.3, "Temperature for narrative generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for narrative generation")
	timeout     = flag.Duration("timeout", 60*time.Second, "Narrative generation timeout")

	// Ollama flags
	ollamaURL   = flag.String("ollama-url", "http://localhost:11434", "Base URL of the Ollama server")
	ollamaModel = flag.String("ollama-model", "llama3.2:3b", "Ollama model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// Analysis flags
	trustedDomains = flag.String("trusted", "", "Comma-separated list of trusted sender domains")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	// Initialize narrative generator
	narrativeFactory := factory.NewNarrativeFactory(cfg, logger)
	generator, err := narrativeFactory.CreateGenerator()
	if err != nil {
		logger.Fatal("Failed to create narrative generator", zap.Error(err))
	}

	// Parse trusted domains
	var domains []string
	if *trustedDomains != "" {
		domains = strings.Split(*trustedDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
	} else {
		domains = cfg.GetEngine().TrustedDomains
	}

	if len(domains) > 0 {
		logger.Info("Using trusted domains", zap.Strings("domains", domains))
	}

	trusted := whitelist.NewChecker(domains, logger)

	// Read email from file or stdin
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	// Parse email
	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	email, err := mailparse.FromMessage(msg)
	if err != nil {
		logger.Fatal("Failed to extract email content", zap.Error(err))
	}

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From.Address)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body.Text))
	fmt.Printf("Attachments: %d\n", len(email.Attachments))
	fmt.Printf("\n")

	// Analyze email
	fmt.Printf("=== Analysis ===\n")
	fmt.Printf("Narrative provider: %s\n", cfg.GetNarrative().Provider)

	svc := engine.NewService(
		generator,
		risk.NewAggregator(nil),
		trusted,
		logger,
		cfg.GetNarrative().Timeout,
		cfg.GetEngine().BatchWorkers,
	)

	startTime := time.Now()
	record, err := svc.Analyze(context.Background(), email)
	if err != nil {
		logger.Fatal("Failed to analyze email", zap.Error(err))
	}
	duration := time.Since(startTime)

	// Print results
	fmt.Printf("\n=== Framework Scores ===\n")
	fmt.Printf("ML Classifier: %d\n", record.Frameworks.MLClassifier.Score)
	fmt.Printf("OWASP:         %d\n", record.Frameworks.OWASP.Score)
	fmt.Printf("NIST:          %d\n", record.Frameworks.NIST.Score)
	fmt.Printf("ISO 27001:     %d\n", record.Frameworks.ISO27001.Score)
	fmt.Printf("Nessus:        %d\n", record.Frameworks.Nessus.Score)
	fmt.Printf("OpenVAS:       %d\n", record.Frameworks.OpenVAS.Score)
	fmt.Printf("Average:       %.1f\n", record.Frameworks.AverageScore())

	fmt.Printf("\n=== Risk Assessment ===\n")
	fmt.Printf("Risk level:     %s\n", record.Risk.RiskLevel)
	fmt.Printf("Classification: %s\n", record.Risk.Classification)
	fmt.Printf("Is phishing:    %t\n", record.Risk.IsPhishing)
	fmt.Printf("Confidence:     %.2f\n", record.Risk.Confidence)

	if len(record.Indicators) > 0 {
		fmt.Printf("\n=== Indicators ===\n")
		for _, ind := range record.Indicators {
			fmt.Printf("[%s/%s] %s\n", ind.Type, ind.Severity, ind.Description)
		}
	}

	fmt.Printf("\n=== Narrative ===\n")
	if record.Narrative.Fallback {
		fmt.Printf("(fallback narrative)\n")
	}
	fmt.Printf("Summary: %s\n", record.Narrative.Summary)
	fmt.Printf("Reasoning: %s\n", record.Narrative.Reasoning)
	fmt.Printf("Recommendations:\n")
	for i, rec := range record.Narrative.Recommendations {
		fmt.Printf("  %d. %s\n", i+1, rec)
	}

	fmt.Printf("\nProcessing time: %v\n", duration)

	// Close any resources that need closing
	if closer, ok := generator.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close narrative client", zap.Error(err))
		}
	}
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	// Set narrative provider
	v.Set("narrative.provider", *provider)
	v.Set("narrative.timeout", timeout.String())

	// Set provider-specific configuration
	switch *provider {
	case "ollama":
		v.Set("ollama.base_url", *ollamaURL)
		v.Set("ollama.model", *ollamaModel)
		v.Set("ollama.temperature", *temperature)
		v.Set("ollama.top_p", *topP)
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
	}

	// Set trusted domains
	if *trustedDomains != "" {
		domains := strings.Split(*trustedDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("engine.trusted_domains", domains)
	} else {
		v.Set("engine.trusted_domains", []string{})
	}

	return config.NewFromViper(v)
}
