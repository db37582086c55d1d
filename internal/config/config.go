// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file,
// a .env file and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// JWTSecret is the initial token signing secret.
	JWTSecret string `json:"-"`
	// JWTSecretFile, when set, is re-read on every secret reload.
	JWTSecretFile string `json:"jwt_secret_file"`
	// TokenTTL is how long an issued session token stays valid.
	TokenTTL time.Duration `json:"-"`

	GeminiAPIKey     string        `json:"-"`
	GeminiModel      string        `json:"gemini_model"`
	AssistantTimeout time.Duration `json:"-"`
	// AssistantRPS is the per-user request rate allowed on /assistant.
	AssistantRPS float64 `json:"assistant_rps"`

	LogLevel string `json:"log_level"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`
}

// fileDurations carries the duration settings of the JSON file as strings
// ("24h", "30s").
type fileDurations struct {
	TokenTTL         string `json:"token_ttl"`
	AssistantTimeout string `json:"assistant_timeout"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	flag.DurationVar(&options.TokenTTL, "ttl", 24*time.Hour, "session token lifetime")
	flag.StringVar(&options.GeminiModel, "model", "gemini-2.5-flash", "assistant model name")
	flag.DurationVar(&options.AssistantTimeout, "assistant-timeout", 30*time.Second, "upstream assistant call timeout")
	flag.Float64Var(&options.AssistantRPS, "assistant-rps", 0.5, "per-user assistant requests per second")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	flag.StringVar(&options.TLSKey, "tls-key", "", "path to TLS private key")
}

// Parse parses the command-line flags, the config file, the .env file and
// environment variables to set configuration values. It returns a pointer to
// the Options struct containing the parsed configuration values.
func Parse() (*Options, error) {
	flag.Parse()

	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if err := loadFile(options); err != nil {
		return nil, err
	}
	if err := applyEnv(options); err != nil {
		return nil, err
	}
	if err := validate(options); err != nil {
		return nil, err
	}
	return options, nil
}

// validate rejects settings the server cannot run with.
func validate(o *Options) error {
	if o.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", o.TokenTTL)
	}
	if o.AssistantTimeout <= 0 {
		return fmt.Errorf("assistant timeout must be positive, got %s", o.AssistantTimeout)
	}
	return nil
}

func loadFile(o *Options) error {
	if o.Config == "" {
		return nil
	}
	if _, err := os.Stat(o.Config); err != nil {
		return nil
	}
	data, err := os.ReadFile(o.Config)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, o); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}

	var d fileDurations
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	if err := setDuration(&o.TokenTTL, "token_ttl", d.TokenTTL); err != nil {
		return err
	}
	return setDuration(&o.AssistantTimeout, "assistant_timeout", d.AssistantTimeout)
}

func applyEnv(o *Options) error {
	setString(&o.Port, "SERVER_ADDRESS")
	setString(&o.DatabaseDSN, "DATABASE_URL")
	setString(&o.DatabaseDSN, "DATABASE_DSN")
	setString(&o.JWTSecret, "JWT_SECRET")
	setString(&o.JWTSecretFile, "JWT_SECRET_FILE")
	setString(&o.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&o.GeminiModel, "GEMINI_MODEL")
	setString(&o.LogLevel, "LOG_LEVEL")
	setString(&o.TLSCert, "TLS_CERT")
	setString(&o.TLSKey, "TLS_KEY")

	if err := setDuration(&o.TokenTTL, "TOKEN_TTL", os.Getenv("TOKEN_TTL")); err != nil {
		return err
	}
	if err := setDuration(&o.AssistantTimeout, "ASSISTANT_TIMEOUT", os.Getenv("ASSISTANT_TIMEOUT")); err != nil {
		return err
	}
	if v := os.Getenv("ASSISTANT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ASSISTANT_RPS: %w", err)
		}
		o.AssistantRPS = rps
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}
