package config

import "time"

// NarrativeConfig represents the configuration for narrative generation
type NarrativeConfig struct {
	Provider string
	Timeout  time.Duration
}

// OllamaConfig represents the configuration for a local Ollama server
type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
	TopP        float64
	TopK        int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// MailpitConfig represents the configuration for the Mailpit capture service
type MailpitConfig struct {
	BaseURL    string
	FetchLimit int
}

// StorageConfig represents the configuration for the storage backend
type StorageConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// ServerConfig represents the configuration for the HTTP and SMTP servers
type ServerConfig struct {
	ListenAddress     string
	CORSOrigins       []string
	SMTPEnabled       bool
	SMTPListenAddress string
}

// EngineConfig represents the configuration for the analysis engine
type EngineConfig struct {
	TrustedDomains        []string
	BatchWorkers          int
	ReclassifyEnabled     bool
	ReclassifySeed        int64
	ReclassifyProbability float64
}

// GetNarrative returns the narrative configuration
func (c *Config) GetNarrative() NarrativeConfig {
	timeout, err := c.GetDuration("narrative.timeout")
	if err != nil {
		timeout = 60 * time.Second
	}
	return NarrativeConfig{
		Provider: c.GetString("narrative.provider"),
		Timeout:  timeout,
	}
}

// GetOllama returns the Ollama configuration
func (c *Config) GetOllama() OllamaConfig {
	return OllamaConfig{
		BaseURL:     c.GetString("ollama.base_url"),
		Model:       c.GetString("ollama.model"),
		Temperature: c.GetFloat64("ollama.temperature"),
		TopP:        c.GetFloat64("ollama.top_p"),
		TopK:        c.GetInt("ollama.top_k"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetMailpit returns the Mailpit configuration
func (c *Config) GetMailpit() MailpitConfig {
	return MailpitConfig{
		BaseURL:    c.GetString("mailpit.base_url"),
		FetchLimit: c.GetInt("mailpit.fetch_limit"),
	}
}

// GetStorage returns the storage configuration
func (c *Config) GetStorage() StorageConfig {
	return StorageConfig{
		Type:       c.GetString("storage.type"),
		SQLitePath: c.GetString("storage.sqlite_path"),
		MySQLDSN:   c.GetString("storage.mysql_dsn"),
	}
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress:     c.GetString("server.listen_address"),
		CORSOrigins:       c.GetStringSlice("server.cors_origins"),
		SMTPEnabled:       c.GetBool("server.smtp_enabled"),
		SMTPListenAddress: c.GetString("server.smtp_listen_address"),
	}
}

// GetEngine returns the engine configuration
func (c *Config) GetEngine() EngineConfig {
	return EngineConfig{
		TrustedDomains:        c.GetStringSlice("engine.trusted_domains"),
		BatchWorkers:          c.GetInt("engine.batch_workers"),
		ReclassifyEnabled:     c.GetBool("engine.reclassify_enabled"),
		ReclassifySeed:        c.GetInt64("engine.reclassify_seed"),
		ReclassifyProbability: c.GetFloat64("engine.reclassify_probability"),
	}
}
