// Package config loads configuration from an optional YAML file and
// environment variables. Env vars always win over file values.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LLM provider identifiers.
const (
	ProviderGoogleAI = "googleai"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
)

// Config holds all configuration values. Everything is optional with
// degradation: missing Reddit credentials disable the API adapter, a
// missing LLM key downgrades narrative generation to the deterministic
// fallback and disables extraction and Q&A.
type Config struct {
	// Reddit API
	RedditClientID     string `yaml:"reddit_client_id"`
	RedditClientSecret string `yaml:"reddit_client_secret"`
	RedditUserAgent    string `yaml:"reddit_user_agent"`

	// Generative backend
	LLMProvider  string `yaml:"llm_provider"`
	LLMModel     string `yaml:"llm_model"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
	OpenAIAPIKey string `yaml:"openai_api_key"`
	OllamaHost   string `yaml:"ollama_host"`

	// Neo4j graph store
	Neo4jURI      string `yaml:"neo4j_uri"`
	Neo4jUser     string `yaml:"neo4j_user"`
	Neo4jPassword string `yaml:"neo4j_password"`

	// Output
	OutputDir string `yaml:"output_dir"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration from the given YAML file (skipped when path is
// empty or the file does not exist), then applies environment variables on
// top. Defaults match the original service's environment contract.
func Load(path string) (Config, error) {
	cfg := Config{
		RedditUserAgent: "PersonaBot/1.0",
		LLMProvider:     ProviderGoogleAI,
		LLMModel:        "gemini-2.5-flash",
		OllamaHost:      "http://localhost:11434",
		Neo4jURI:        "bolt://localhost:7687",
		Neo4jUser:       "neo4j",
		Neo4jPassword:   "password",
		OutputDir:       "output",
		LogFile:         "/tmp/personagraph.log",
		LogLevel:        slog.LevelInfo,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	overlay(&cfg.RedditClientID, "REDDIT_CLIENT_ID")
	overlay(&cfg.RedditClientSecret, "REDDIT_CLIENT_SECRET")
	overlay(&cfg.RedditUserAgent, "REDDIT_USER_AGENT")
	overlay(&cfg.LLMProvider, "PERSONAGRAPH_LLM_PROVIDER")
	overlay(&cfg.LLMModel, "PERSONAGRAPH_LLM_MODEL")
	overlay(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	overlay(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	overlay(&cfg.OllamaHost, "OLLAMA_HOST")
	overlay(&cfg.Neo4jURI, "NEO4J_URI")
	overlay(&cfg.Neo4jUser, "NEO4J_USER")
	overlay(&cfg.Neo4jPassword, "NEO4J_PASSWORD")
	overlay(&cfg.OutputDir, "PERSONAGRAPH_OUTPUT_DIR")
	overlay(&cfg.LogFile, "PERSONAGRAPH_LOG_FILE")

	if lvl := os.Getenv("PERSONAGRAPH_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = parseLogLevel(lvl)
	}

	return cfg, nil
}

// HasRedditCredentials reports whether the API adapter can be constructed.
func (c Config) HasRedditCredentials() bool {
	return c.RedditClientID != "" && c.RedditClientSecret != ""
}

// HasLLM reports whether the configured provider has what it needs.
// Ollama needs no key.
func (c Config) HasLLM() bool {
	switch c.LLMProvider {
	case ProviderGoogleAI:
		return c.GeminiAPIKey != ""
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	case ProviderOllama:
		return true
	default:
		return false
	}
}

func overlay(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
