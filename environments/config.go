package environments

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	SMS       SMSConfig
	Scheduler SchedulerConfig
	Alert     AlertConfig
	Auth      AuthConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Driver     string // sqlite3, mysql or postgres
	SQLitePath string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type SMSConfig struct {
	DefaultProvider  string
	RatePerMinute    int
	MaxContentLength int
	Timeout          time.Duration
	Twilio           TwilioConfig
	TextBelt         TextBeltConfig
	Webhook          WebhookConfig
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
}

type TextBeltConfig struct {
	APIKey  string
	BaseURL string
}

type WebhookConfig struct {
	URL     string
	AuthKey string
}

type SchedulerConfig struct {
	PollInterval time.Duration
	StopTimeout  time.Duration
	Timezone     string
	AutoStart    bool
}

type AlertConfig struct {
	WebhookURL     string
	IterationCount int
}

type AuthConfig struct {
	MessagesAPIKey  string
	SchedulerAPIKey string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads the configuration from the environment. A .env file in the
// working directory, when present, is loaded first without overriding
// variables that are already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: GetEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(GetEnv("DB_DRIVER", "sqlite3")),
			SQLitePath: GetEnv("DB_SQLITE_PATH", "sms_scheduler.db"),
			Host:       GetEnv("DB_HOST", "localhost"),
			Port:       GetEnv("DB_PORT", "3306"),
			User:       GetEnv("DB_USER", "sms"),
			Password:   GetEnv("DB_PASSWORD", ""),
			DBName:     GetEnv("DB_NAME", "sms_scheduler"),
		},
		Redis: RedisConfig{
			Enabled:  GetEnvAsBool("REDIS_ENABLED", false),
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		SMS: SMSConfig{
			DefaultProvider:  GetEnv("SMS_DEFAULT_PROVIDER", ""),
			RatePerMinute:    GetEnvAsInt("SMS_RATE_PER_MINUTE", 30),
			MaxContentLength: GetEnvAsInt("SMS_MAX_CONTENT_LENGTH", 1600),
			Timeout:          time.Duration(GetEnvAsInt("SMS_TIMEOUT_SECONDS", 10)) * time.Second,
			Twilio: TwilioConfig{
				AccountSID: GetEnv("TWILIO_ACCOUNT_SID", ""),
				AuthToken:  GetEnv("TWILIO_AUTH_TOKEN", ""),
				FromNumber: GetEnv("TWILIO_FROM_NUMBER", ""),
				BaseURL:    GetEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
			},
			TextBelt: TextBeltConfig{
				APIKey:  GetEnv("TEXTBELT_API_KEY", ""),
				BaseURL: GetEnv("TEXTBELT_BASE_URL", "https://textbelt.com"),
			},
			Webhook: WebhookConfig{
				URL:     GetEnv("WEBHOOK_URL", ""),
				AuthKey: GetEnv("WEBHOOK_AUTH_KEY", ""),
			},
		},
		Scheduler: SchedulerConfig{
			PollInterval: GetEnvAsDuration("SCHEDULER_POLL_INTERVAL", time.Minute),
			StopTimeout:  GetEnvAsDuration("SCHEDULER_STOP_TIMEOUT", time.Second),
			Timezone:     GetEnv("SCHEDULER_TIMEZONE", "Local"),
			AutoStart:    GetEnvAsBool("AUTO_START_SCHEDULER", true),
		},
		Alert: AlertConfig{
			WebhookURL:     GetEnv("ALERT_WEBHOOK_URL", ""),
			IterationCount: GetEnvAsInt("ALERT_ITERATION_COUNT", 0),
		},
		Auth: AuthConfig{
			MessagesAPIKey:  GetEnv("MESSAGES_API_KEY", ""),
			SchedulerAPIKey: GetEnv("SCHEDULER_API_KEY", ""),
		},
		Log: LogConfig{
			Level:  GetEnv("LOG_LEVEL", "info"),
			Format: GetEnv("LOG_FORMAT", "text"),
		},
	}
}

// Location resolves the configured scheduler timezone, falling back to time.Local.
func (c SchedulerConfig) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
