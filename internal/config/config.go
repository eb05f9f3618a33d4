package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `json:"server"`
	Logging    LoggingConfig    `json:"logging"`
	Database   DatabaseConfig   `json:"database"`
	Redis      RedisConfig      `json:"redis"`
	Autotask   AutotaskConfig   `json:"autotask"`
	StatusCake StatusCakeConfig `json:"statuscake"`
	Email      EmailConfig      `json:"email"`
	Ticket     TicketConfig     `json:"ticket"`
	Webhook    WebhookConfig    `json:"webhook"`
}

type ServerConfig struct {
	BindAddr string `json:"bindAddr"`
}

type LoggingConfig struct {
	Level string `json:"level"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

// DSN renders the lib/pq connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type AutotaskConfig struct {
	BaseURL         string `json:"baseURL"`
	User            string `json:"user"`
	Secret          string `json:"secret"`
	IntegrationCode string `json:"integrationCode"`
}

type StatusCakeConfig struct {
	BaseURL string `json:"baseURL"`
	APIKey  string `json:"apiKey"`
}

type EmailConfig struct {
	Endpoint  string `json:"endpoint"`
	APIKey    string `json:"apiKey"`
	FromEmail string `json:"fromEmail"`
	FromName  string `json:"fromName"`
	ToEmail   string `json:"toEmail"`
	ToName    string `json:"toName"`
}

// TicketConfig carries the fixed Autotask field defaults stamped onto every
// created ticket, plus the location id used when enrichment finds none.
type TicketConfig struct {
	QueueID                 int    `json:"queueID" yaml:"queue_id"`
	IssueType               int    `json:"issueType" yaml:"issue_type"`
	SubIssueType            int    `json:"subIssueType" yaml:"sub_issue_type"`
	ServiceLevelAgreementID int    `json:"serviceLevelAgreementID" yaml:"service_level_agreement_id"`
	FallbackLocationID      int    `json:"fallbackLocationID" yaml:"fallback_location_id"`
	DefaultsFile            string `json:"defaultsFile" yaml:"-"`
}

type WebhookConfig struct {
	Token string `json:"token"`
}

func Load() (*Config, error) {
	configFile := flag.String("f", "", "Path to configuration file")
	flag.Parse()

	// .env is optional; a missing file is not an error
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	cfg := fromEnv()

	if *configFile != "" {
		if err := loadFromFile(cfg, *configFile); err != nil {
			log.Err(err)
			return nil, err
		}
	}

	if cfg.Ticket.DefaultsFile != "" {
		if err := loadTicketDefaults(&cfg.Ticket, cfg.Ticket.DefaultsFile); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func fromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddr: getEnv("SERVER_BIND_ADDR", "0.0.0.0:8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "debug"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "statuscake_autotask"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Autotask: AutotaskConfig{
			BaseURL:         getEnv("AUTOTASK_BASE_URL", ""),
			User:            getEnv("AUTOTASK_USER", ""),
			Secret:          getEnv("AUTOTASK_SECRET", ""),
			IntegrationCode: getEnv("AUTOTASK_INTEGRATION_CODE", ""),
		},
		StatusCake: StatusCakeConfig{
			BaseURL: getEnv("STATUSCAKE_API_URL", ""),
			APIKey:  getEnv("STATUSCAKE_API_KEY", ""),
		},
		Email: EmailConfig{
			Endpoint:  getEnv("EMAIL_API_ENDPOINT", ""),
			APIKey:    getEnv("EMAIL_API_KEY", ""),
			FromEmail: getEnv("EMAIL_FROM_EMAIL", ""),
			FromName:  getEnv("EMAIL_FROM_NAME", ""),
			ToEmail:   getEnv("EMAIL_TO_EMAIL", ""),
			ToName:    getEnv("EMAIL_TO_NAME", ""),
		},
		Ticket: TicketConfig{
			QueueID:                 getEnvInt("TICKET_QUEUE_ID", 0),
			IssueType:               getEnvInt("TICKET_ISSUE_TYPE", 0),
			SubIssueType:            getEnvInt("TICKET_SUB_ISSUE_TYPE", 0),
			ServiceLevelAgreementID: getEnvInt("TICKET_SERVICE_LEVEL_AGREEMENT_ID", 0),
			FallbackLocationID:      getEnvInt("TICKET_FALLBACK_LOCATION_ID", 10),
			DefaultsFile:            getEnv("TICKET_DEFAULTS_FILE", ""),
		},
		Webhook: WebhookConfig{
			Token: getEnv("WEBHOOK_TOKEN", ""),
		},
	}
}

// applyDefaults fills reasonable values when fields were omitted in the file.
func applyDefaults(cfg *Config) {
	if cfg.Server.BindAddr == "" {
		cfg.Server.BindAddr = "0.0.0.0:8080"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}
	if cfg.Ticket.FallbackLocationID == 0 {
		cfg.Ticket.FallbackLocationID = 10
	}
}

func loadFromFile(cfg *Config, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}

	return nil
}

// loadTicketDefaults overlays queue/issue/SLA ids from a YAML file so the
// ticket field mapping can be managed alongside other deploy assets.
func loadTicketDefaults(cfg *TicketConfig, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read ticket defaults file %s: %w", filePath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse ticket defaults file %s: %w", filePath, err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
