package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort        string        `env:"APP_PORT" envDefault:"8000"`
	AppBaseURL     string        `env:"APP_BASE_URL" envDefault:"http://localhost:8000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"6m"`

	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required,notEmpty"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required,notEmpty"`
	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	OAuthFailureURL    string `env:"OAUTH_FAILURE_URL" envDefault:"/login"`

	// Extra origins allowed to open the follow-up websocket; same-origin is always allowed.
	WSOriginPatterns []string `env:"WS_ORIGIN_PATTERNS" envSeparator:","`

	LLMProvider       string        `env:"LLM_PROVIDER" envDefault:"gemini"`
	LLMModel          string        `env:"LLM_MODEL" envDefault:"gemini-2.5-pro"`
	LLMBaseURL        string        `env:"LLM_BASE_URL"`
	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	OpenAIAPIKey      string        `env:"OPENAI_API_KEY"`
	GroqAPIKey        string        `env:"GROQ_API_KEY"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"5m"`

	LogDir     string `env:"LOG_DIR" envDefault:"./logs"`
	LogConsole bool   `env:"LOG_CONSOLE" envDefault:"true"`

	MinIOEndpoint  string `env:"MINIO_ENDPOINT"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY"`
	MinIOBucket    string `env:"MINIO_BUCKET" envDefault:"manim-scripts"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

// LoadConfig reads an optional .env file, then the process environment.
// Missing required values are returned as an error.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LLMProvider) {
	case "gemini":
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for provider gemini"))
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for provider openai"))
		}
	case "groq":
		if c.GroqAPIKey == "" {
			errs = append(errs, errors.New("GROQ_API_KEY is required for provider groq"))
		}
	case "ollama":
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider))
	}

	if (c.GitHubClientID == "") != (c.GitHubClientSecret == "") {
		errs = append(errs, errors.New("GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET must be set together"))
	}
	if c.MinIOEndpoint != "" && (c.MinIOAccessKey == "" || c.MinIOSecretKey == "") {
		errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set"))
	}
	if c.GenerationTimeout <= 0 {
		errs = append(errs, errors.New("GENERATION_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func (c Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

func (c Config) ArchiveEnabled() bool {
	return c.MinIOEndpoint != ""
}

// OAuthCallbackURL is the redirect registered with the given provider.
func (c Config) OAuthCallbackURL(provider string) string {
	return strings.TrimRight(c.AppBaseURL, "/") + "/auth/" + provider + "/callback"
}
