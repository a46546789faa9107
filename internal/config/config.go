package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`
	AppEnv  string `mapstructure:"APP_ENV"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`

	ClerkIssuer        string `mapstructure:"CLERK_ISSUER"`
	ClerkJWKSURL       string `mapstructure:"CLERK_JWKS_URL"`
	ClerkWebhookSecret string `mapstructure:"CLERK_WEBHOOK_SECRET"`
	AdminEmails        string `mapstructure:"ADMIN_EMAILS"` // comma separated

	TrialMaxCreations int `mapstructure:"TRIAL_MAX_CREATIONS"`

	OpenAIAPIKey      string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL     string `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel       string `mapstructure:"OPENAI_MODEL"`
	AnthropicAPIKey   string `mapstructure:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL  string `mapstructure:"ANTHROPIC_BASE_URL"`
	AnthropicModel    string `mapstructure:"ANTHROPIC_MODEL"`
	AgentAPIURL       string `mapstructure:"AGENT_API_URL"`
	AgentAPIKey       string `mapstructure:"AGENT_API_KEY"`
	AgentID           string `mapstructure:"AGENT_ID"`
	AgentUserID       string `mapstructure:"AGENT_USER_ID"`
	LLMTimeoutSeconds int    `mapstructure:"LLM_TIMEOUT_SECONDS"`

	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisDB              int    `mapstructure:"REDIS_DB"`
	StatsCacheTTLSeconds int    `mapstructure:"STATS_CACHE_TTL_SECONDS"`
	RabbitMQURL          string `mapstructure:"RABBITMQ_URL"`
	EventsQueue          string `mapstructure:"EVENTS_QUEUE"`
	SMTPHost             string `mapstructure:"SMTP_HOST"`
	SMTPPort             int    `mapstructure:"SMTP_PORT"`
	SMTPUser             string `mapstructure:"SMTP_USER"`
	SMTPPass             string `mapstructure:"SMTP_PASS"`
	MailFrom             string `mapstructure:"MAIL_FROM"`
}

var boundKeys = []string{
	"PORT", "GIN_MODE", "APP_ENV",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "CLIENT_URL",
	"CLERK_ISSUER", "CLERK_JWKS_URL", "CLERK_WEBHOOK_SECRET", "ADMIN_EMAILS",
	"TRIAL_MAX_CREATIONS",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
	"ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL", "ANTHROPIC_MODEL",
	"AGENT_API_URL", "AGENT_API_KEY", "AGENT_ID", "AGENT_USER_ID",
	"LLM_TIMEOUT_SECONDS",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "STATS_CACHE_TTL_SECONDS",
	"RABBITMQ_URL", "EVENTS_QUEUE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "MAIL_FROM",
}

// LoadConfig loads configuration from the environment (and a local .env file outside
// release mode) using Viper.
func LoadConfig() (*Config, error) {
	cfg, err := load(viper.New())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if !strings.EqualFold(v.GetString("GIN_MODE"), "release") {
		// Missing .env is fine; real environments set variables directly.
		_ = godotenv.Load()
	}

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CLIENT_URL", "http://localhost:3000")
	v.SetDefault("TRIAL_MAX_CREATIONS", 3)
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com")
	v.SetDefault("OPENAI_MODEL", "gpt-4o")
	v.SetDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com")
	v.SetDefault("ANTHROPIC_MODEL", "claude-sonnet-4-20250514")
	v.SetDefault("AGENT_API_URL", "https://agent-prod.studio.lyzr.ai/v3/inference/chat/")
	v.SetDefault("AGENT_USER_ID", "launchkit")
	v.SetDefault("LLM_TIMEOUT_SECONDS", 120)
	v.SetDefault("STATS_CACHE_TTL_SECONDS", 60)
	v.SetDefault("EVENTS_QUEUE", "launchkit.events")
	v.SetDefault("SMTP_PORT", 587)

	for _, key := range boundKeys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	return &cfg, nil
}

// Validate checks the keys the server cannot start without. LLM credentials are not
// checked here; a missing key is reported per request.
func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.ClerkIssuer == "" {
		return errors.New("CLERK_ISSUER is required")
	}
	if c.ClerkWebhookSecret == "" {
		return errors.New("CLERK_WEBHOOK_SECRET is required")
	}
	if c.TrialMaxCreations < 0 {
		return errors.New("TRIAL_MAX_CREATIONS must not be negative")
	}
	return nil
}

// ValidateWorker checks the keys the mail worker cannot start without.
func (c *Config) ValidateWorker() error {
	if c.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required")
	}
	if c.SMTPHost == "" {
		return errors.New("SMTP_HOST is required")
	}
	if c.MailFrom == "" {
		return errors.New("MAIL_FROM is required")
	}
	return nil
}

// IsDevelopment reports whether verbose diagnostics (stack traces) may be logged.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development") || strings.EqualFold(c.AppEnv, "dev")
}

// IsProduction selects the JSON production logger.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production") || strings.EqualFold(c.AppEnv, "prod")
}

// ClientOrigins returns the web app origins from CLIENT_URL without trailing slashes.
func (c *Config) ClientOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.ClientURL, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// AdminEmailList returns the normalized admin allow-list.
func (c *Config) AdminEmailList() []string {
	var out []string
	for _, e := range strings.Split(c.AdminEmails, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func (c *Config) LLMTimeout() time.Duration {
	if c.LLMTimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

func (c *Config) StatsCacheTTL() time.Duration {
	if c.StatsCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.StatsCacheTTLSeconds) * time.Second
}

// LoadWorkerConfig loads configuration for cmd/worker, which needs the broker and SMTP keys
// instead of the server's.
func LoadWorkerConfig() (*Config, error) {
	cfg, err := load(viper.New())
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateWorker(); err != nil {
		return nil, err
	}
	return cfg, nil
}
