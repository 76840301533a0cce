package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/tucalendariobot/tucalendariobot/internal/timeutil"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"production"`
	LogLevel string `envconfig:"LOG_LEVEL"`
	Port     int    `envconfig:"PORT" default:"3000"`

	// Telegram
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	BotName          string `envconfig:"BOT_NAME" default:"TuCalendarioBot"`

	// wit.ai
	WitAIToken    string        `envconfig:"WIT_AI_TOKEN"`
	WitAPIURL     string        `envconfig:"WIT_API_URL" default:"https://api.wit.ai"`
	WitAPIVersion string        `envconfig:"WIT_API_VERSION" default:"20230514"`
	HTTPTimeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`

	// Google Calendar
	GoogleCredentials     string `envconfig:"GOOGLE_CREDENTIALS"`
	GoogleCredentialsFile string `envconfig:"GOOGLE_CREDENTIALS_FILE" default:"./credenciales.json"`
	CalendarID            string `envconfig:"CALENDAR_ID" default:"primary"`
	DefaultTimezone       string `envconfig:"DEFAULT_TIMEZONE" default:"America/Argentina/Buenos_Aires"`
	UserEmail             string `envconfig:"USER_EMAIL"`
	AttachICS             bool   `envconfig:"ATTACH_ICS" default:"false"`

	// Keepalive
	ExternalURL       string        `envconfig:"RENDER_EXTERNAL_URL"`
	KeepaliveInterval time.Duration `envconfig:"KEEPALIVE_INTERVAL" default:"14m"`

	// TimezoneFallback is set when DEFAULT_TIMEZONE was not a valid IANA name.
	TimezoneFallback bool `ignored:"true"`
}

func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.DefaultTimezone, cfg.TimezoneFallback = timeutil.ResolveLocation(cfg.DefaultTimezone)
	return &cfg, nil
}

// Validate checks what the bot cannot run without.
func (c *Config) Validate() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development"
}
