package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"campuspulse/internal/domain"
)

const defaultExternalHTTPTimeout = 30 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

const (
	defaultOracleTimeoutSeconds = 8
	defaultRecordTimeoutSeconds = 5
	defaultClickHousePort       = 9000
)

type Config struct {
	CampusName string `yaml:"campus_name"`

	LLMProvider          string `yaml:"llm_provider"`
	LLMModel             string `yaml:"llm_model"`
	AnthropicAPIKey      string `yaml:"anthropic_api_key"`
	OpenAIAPIKey         string `yaml:"openai_api_key"`
	OpenAIBaseURL        string `yaml:"openai_base_url"`
	OracleTimeoutSeconds int    `yaml:"oracle_timeout_seconds"`

	ExternalHTTPTimeoutSeconds int `yaml:"external_http_timeout_seconds"`

	DBPath               string `yaml:"db_path"`
	PostgresDSN          string `yaml:"postgres_dsn"`
	ClickHouseHost       string `yaml:"clickhouse_host"`
	ClickHousePort       int    `yaml:"clickhouse_port"`
	ClickHouseDatabase   string `yaml:"clickhouse_database"`
	ClickHouseUsername   string `yaml:"clickhouse_username"`
	ClickHousePassword   string `yaml:"clickhouse_password"`
	RecordTimeoutSeconds int    `yaml:"record_timeout_seconds"`

	MenuPath string `yaml:"menu_path"`

	SlackBotToken     string   `yaml:"slack_bot_token"`
	SlackAppToken     string   `yaml:"slack_app_token"`
	DigestChannelID   string   `yaml:"digest_channel_id"`
	DigestSchedule    string   `yaml:"digest_schedule"`
	DigestTimes       []string `yaml:"digest_times"`
	DigestSubscribers []string `yaml:"digest_subscribers"`

	Timezone string         `yaml:"timezone"`
	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.CampusName, "CAMPUS_NAME")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.OpenAIBaseURL, "OPENAI_BASE_URL")
	envOverrideInt(&cfg.OracleTimeoutSeconds, "ORACLE_TIMEOUT_SECONDS")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverrideAllowEmpty(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.PostgresDSN, "POSTGRES_DSN")
	envOverride(&cfg.ClickHouseHost, "CLICKHOUSE_HOST")
	envOverrideInt(&cfg.ClickHousePort, "CLICKHOUSE_PORT")
	envOverride(&cfg.ClickHouseDatabase, "CLICKHOUSE_DATABASE")
	envOverride(&cfg.ClickHouseUsername, "CLICKHOUSE_USERNAME")
	envOverride(&cfg.ClickHousePassword, "CLICKHOUSE_PASSWORD")
	envOverrideInt(&cfg.RecordTimeoutSeconds, "RECORD_TIMEOUT_SECONDS")
	envOverride(&cfg.MenuPath, "MENU_PATH")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackAppToken, "SLACK_APP_TOKEN")
	envOverride(&cfg.DigestChannelID, "DIGEST_CHANNEL_ID")
	envOverride(&cfg.DigestSchedule, "DIGEST_SCHEDULE")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverrideList(&cfg.DigestTimes, "DIGEST_TIMES")
	envOverrideList(&cfg.DigestSubscribers, "DIGEST_SUBSCRIBERS")

	if cfg.CampusName == "" {
		cfg.CampusName = "CMRIT"
	}
	if cfg.OracleTimeoutSeconds == 0 {
		cfg.OracleTimeoutSeconds = defaultOracleTimeoutSeconds
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if cfg.RecordTimeoutSeconds == 0 {
		cfg.RecordTimeoutSeconds = defaultRecordTimeoutSeconds
	}
	if cfg.ClickHousePort == 0 {
		cfg.ClickHousePort = defaultClickHousePort
	}
	if cfg.ClickHouseDatabase == "" {
		cfg.ClickHouseDatabase = "campuspulse"
	}
	if cfg.ClickHouseUsername == "" {
		cfg.ClickHouseUsername = "default"
	}
	if len(cfg.DigestTimes) == 0 {
		cfg.DigestTimes = []string{"09:00 AM", "12:30 PM", "04:30 PM"}
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	switch cfg.LLMProvider {
	case "":
		// Auto-select from whichever credential is present.
		switch {
		case cfg.AnthropicAPIKey != "":
			cfg.LLMProvider = "anthropic"
		case cfg.OpenAIAPIKey != "":
			cfg.LLMProvider = "openai"
		}
	case "anthropic", "openai":
	default:
		log.Fatalf("llm_provider must be 'anthropic' or 'openai', got '%s'", cfg.LLMProvider)
	}
	if !cfg.OracleConfigured() {
		log.Printf("Oracle disabled: no credential for llm_provider=%q, predictions are rule-based only", cfg.LLMProvider)
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if cfg.OracleTimeoutSeconds < 1 || cfg.OracleTimeoutSeconds > 60 {
		log.Fatalf("invalid oracle_timeout_seconds '%d': must be between 1 and 60", cfg.OracleTimeoutSeconds)
	}
	if cfg.ExternalHTTPTimeoutSeconds < 5 {
		log.Fatalf("invalid external_http_timeout_seconds '%d': must be >= 5", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.RecordTimeoutSeconds < 1 {
		log.Fatalf("invalid record_timeout_seconds '%d': must be >= 1", cfg.RecordTimeoutSeconds)
	}
	if s := strings.TrimSpace(cfg.DigestSchedule); s != "" {
		if err := validateSchedule(s); err != nil {
			log.Fatalf("invalid digest_schedule '%s': %v", s, err)
		}
	}
	for _, t := range cfg.DigestTimes {
		if _, err := domain.ParseClock(t); err != nil {
			log.Fatalf("invalid digest_times entry '%s': %v", t, err)
		}
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideList(field *[]string, envKey string) {
	val := os.Getenv(envKey)
	if val == "" {
		return
	}
	*field = nil
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			*field = append(*field, part)
		}
	}
}

// OracleConfigured reports whether the selected provider has a credential.
func (c Config) OracleConfigured() bool {
	switch c.LLMProvider {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	default:
		return false
	}
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackAppToken != ""
}

func (c Config) ClickHouseConfigured() bool {
	return c.ClickHouseHost != ""
}

func (c Config) OracleTimeout() time.Duration {
	return time.Duration(c.OracleTimeoutSeconds) * time.Second
}

func (c Config) RecordTimeout() time.Duration {
	return time.Duration(c.RecordTimeoutSeconds) * time.Second
}

func validateSchedule(s string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(s)
	return err
}
