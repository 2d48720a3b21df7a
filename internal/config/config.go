package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Claims        ClaimsConfig        `mapstructure:"claims"`
	Eligibility   EligibilityConfig   `mapstructure:"eligibility"`
	Clearinghouse ClearinghouseConfig `mapstructure:"clearinghouse"`
	SMTP          SMTPConfig          `mapstructure:"smtp"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type ClaimsConfig struct {
	// SequenceVersion keys the shared counter record and the template set.
	SequenceVersion string `mapstructure:"sequence_version" validate:"required"`
	TemplateVersion string `mapstructure:"template_version" validate:"required"`
	// AllowedState is the only practice jurisdiction billable through the
	// clearinghouse (lowercase, e.g. "pa").
	AllowedState string `mapstructure:"allowed_state" validate:"required"`
}

type EligibilityConfig struct {
	BaseURL          string        `mapstructure:"base_url" validate:"required"`
	ClientID         string        `mapstructure:"client_id"`
	ClientSecret     string        `mapstructure:"client_secret"`
	ProviderLastName string        `mapstructure:"provider_last_name" validate:"required"`
	ProviderNPI      string        `mapstructure:"provider_npi" validate:"required"`
	PracticeTypeCode string        `mapstructure:"practice_type_code"`
	Location         string        `mapstructure:"location"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

type ClearinghouseConfig struct {
	TokenURL     string        `mapstructure:"token_url" validate:"required"`
	UploadURL    string        `mapstructure:"upload_url" validate:"required"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	From        string `mapstructure:"from"`
	BillingTeam string `mapstructure:"billing_team"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Secrets are credentials supplied through the environment rather than the
// config file. Non-empty values override the file.
type Secrets struct {
	DatabasePassword        string `envconfig:"DATABASE_PASSWORD"`
	JWTSecret               string `envconfig:"JWT_SECRET"`
	EligibilityClientID     string `envconfig:"ELIGIBILITY_CLIENT_ID"`
	EligibilityClientSecret string `envconfig:"ELIGIBILITY_CLIENT_SECRET"`
	ClearinghouseClientID   string `envconfig:"CLEARINGHOUSE_CLIENT_ID"`
	ClearinghouseSecret     string `envconfig:"CLEARINGHOUSE_CLIENT_SECRET"`
	ClearinghouseUsername   string `envconfig:"CLEARINGHOUSE_USERNAME"`
	ClearinghousePassword   string `envconfig:"CLEARINGHOUSE_PASSWORD"`
	SMTPPassword            string `envconfig:"SMTP_PASSWORD"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var secrets Secrets
	if err := envconfig.Process("claims", &secrets); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}
	applySecrets(&config, secrets)

	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 5 * time.Second
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applySecrets(cfg *Config, s Secrets) {
	override(&cfg.Database.Password, s.DatabasePassword)
	override(&cfg.JWT.Secret, s.JWTSecret)
	override(&cfg.Eligibility.ClientID, s.EligibilityClientID)
	override(&cfg.Eligibility.ClientSecret, s.EligibilityClientSecret)
	override(&cfg.Clearinghouse.ClientID, s.ClearinghouseClientID)
	override(&cfg.Clearinghouse.ClientSecret, s.ClearinghouseSecret)
	override(&cfg.Clearinghouse.Username, s.ClearinghouseUsername)
	override(&cfg.Clearinghouse.Password, s.ClearinghousePassword)
	override(&cfg.SMTP.Password, s.SMTPPassword)
}

func override(target *string, value string) {
	if value != "" {
		*target = value
	}
}
