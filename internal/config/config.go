package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	BackendGemini = "gemini"
	BackendClaude = "claude"
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
)

type Config struct {
	ListenAddr string
	DBDriver   string
	DBDSN      string

	CompletionBackend string
	GeminiAPIKey      string
	GeminiModel       string
	ClaudeAPIKey      string
	ClaudeModel       string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	OllamaHost        string
	OllamaModel       string

	CompletionAttempts    int
	CompletionTimeout     time.Duration
	CompletionRPS         float64
	CompletionMaxInFlight int

	PhotoPath     string
	SessionSecret string
	SessionTTL    time.Duration
	PromptsFile   string
	LogLevel      string
	LogFile       string
}

// Load reads configuration from the environment. Malformed numbers and
// durations fall back to their defaults.
func Load() *Config {
	dsn := getEnv("DB_DSN", "")
	if dsn == "" {
		dsn = getEnv("DATABASE_URL", "/data/ecosnap.db")
	}
	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBDSN:      dsn,

		CompletionBackend: getEnv("COMPLETION_BACKEND", BackendGemini),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ClaudeAPIKey:      getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:       getEnv("CLAUDE_MODEL", "claude-opus-4-6"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		OllamaHost:        getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "llava"),

		CompletionAttempts:    getInt("COMPLETION_ATTEMPTS", 3),
		CompletionTimeout:     getDuration("COMPLETION_TIMEOUT", 60*time.Second),
		CompletionRPS:         getFloat("COMPLETION_RPS", 2),
		CompletionMaxInFlight: getInt("COMPLETION_MAX_IN_FLIGHT", 4),

		PhotoPath:     getEnv("PHOTO_LOCAL_PATH", "/data/photos"),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getDuration("SESSION_TTL", 720*time.Hour),
		PromptsFile:   getEnv("PROMPTS_FILE", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
	}
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case "sqlite", "pgx":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported (sqlite, pgx)", c.DBDriver))
	}

	switch c.CompletionBackend {
	case BackendGemini:
		errs = append(errs, requireKey("GEMINI_API_KEY", c.GeminiAPIKey))
	case BackendClaude:
		errs = append(errs, requireKey("CLAUDE_API_KEY", c.ClaudeAPIKey))
	case BackendOpenAI:
		// OpenAI-compatible local servers often run without a key.
		if c.OpenAIBaseURL == "" {
			errs = append(errs, requireKey("OPENAI_API_KEY", c.OpenAIAPIKey))
		}
	case BackendOllama:
		if c.OllamaHost == "" {
			errs = append(errs, errors.New("OLLAMA_HOST is required when COMPLETION_BACKEND=ollama"))
		}
	default:
		errs = append(errs, fmt.Errorf("COMPLETION_BACKEND %q is not supported (gemini, claude, openai, ollama)", c.CompletionBackend))
	}

	if c.CompletionAttempts < 1 {
		errs = append(errs, errors.New("COMPLETION_ATTEMPTS must be at least 1"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func requireKey(name, val string) error {
	if val == "" {
		return fmt.Errorf("%s is required for the selected completion backend", name)
	}
	return nil
}

// PromptOverrides are read from the [prompts] table of PROMPTS_FILE. Empty
// fields keep the built-in prompt.
type PromptOverrides struct {
	Classify     string `toml:"classify"`
	Instructions string `toml:"instructions"`
}

// LoadPrompts reads prompt overrides from a TOML file. An empty path yields
// no overrides.
func LoadPrompts(path string) (PromptOverrides, error) {
	if path == "" {
		return PromptOverrides{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return PromptOverrides{}, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var doc struct {
		Prompts PromptOverrides `toml:"prompts"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return PromptOverrides{}, fmt.Errorf("failed to parse prompts file %s: %w", path, err)
	}
	return doc.Prompts, nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if f, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return f
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return defaultVal
}
