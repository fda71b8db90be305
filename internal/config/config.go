// Package config assembles process configuration from .env, an optional config file,
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shanehull/tdnetviewer/internal/tdnet"
)

var (
	ErrInvalidPort      = errors.New("port must be between 1 and 65535")
	ErrInvalidMaxPages  = errors.New("tdnet.max_pages must be at least 1")
	ErrInvalidTimeout   = errors.New("tdnet.request_timeout must be positive")
	ErrInvalidLogLevel  = errors.New("log_level must be one of: debug, info, warn, error")
	ErrInvalidSMTPPort  = errors.New("smtp.port must be between 1 and 65535")
	ErrInvalidFallback  = errors.New("summary.fallback_lines must be at least 1")
	ErrInvalidWorkers   = errors.New("digest.workers must be at least 1")
	ErrMissingStaticDir = errors.New("static_dir does not exist")
)

type Config struct {
	Port      int    `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	StaticDir string `mapstructure:"static_dir"`

	Gemini  GeminiConfig  `mapstructure:"gemini"`
	TDnet   TDnetConfig   `mapstructure:"tdnet"`
	Summary SummaryConfig `mapstructure:"summary"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	Digest  DigestConfig  `mapstructure:"digest"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type TDnetConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	MaxPages        int           `mapstructure:"max_pages"`
	PageErrorPolicy string        `mapstructure:"page_error_policy"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

type SummaryConfig struct {
	PromptsPath   string `mapstructure:"prompts_path"`
	FallbackLines int    `mapstructure:"fallback_lines"`
	PDFToText     string `mapstructure:"pdftotext"`
}

type SMTPConfig struct {
	Server    string `mapstructure:"server"`
	Port      int    `mapstructure:"port"`
	User      string `mapstructure:"user"`
	Pass      string `mapstructure:"pass"`
	FromEmail string `mapstructure:"from_email"`
	ToEmail   string `mapstructure:"to_email"`
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (s SMTPConfig) Enabled() bool {
	return s.Server != "" && s.User != "" && s.Pass != "" && s.ToEmail != ""
}

type DigestConfig struct {
	Keywords []string `mapstructure:"keywords"`
	Workers  int      `mapstructure:"workers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 3000)
	v.SetDefault("log_level", "info")
	v.SetDefault("static_dir", "")

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash-001")

	v.SetDefault("tdnet.base_url", tdnet.DefaultBaseURL)
	v.SetDefault("tdnet.max_pages", tdnet.DefaultMaxPages)
	v.SetDefault("tdnet.page_error_policy", string(tdnet.PolicyTruncate))
	v.SetDefault("tdnet.request_timeout", 30*time.Second)

	v.SetDefault("summary.prompts_path", "prompts.json")
	v.SetDefault("summary.fallback_lines", 5)
	v.SetDefault("summary.pdftotext", "pdftotext")

	v.SetDefault("smtp.server", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.pass", "")
	v.SetDefault("smtp.from_email", "")
	v.SetDefault("smtp.to_email", "")

	v.SetDefault("digest.keywords", []string{})
	v.SetDefault("digest.workers", 4)
}

// bindLegacyEnv keeps the variable names of earlier deployments working.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("port", "PORT")
}

// Load reads .env (if present), then cfgFile (if non-empty), then the environment, then
// any flags in fs that were explicitly set. Flags are bound by their config key name.
func Load(cfgFile string, fs *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	if fs != nil {
		fs.VisitAll(func(f *pflag.Flag) {
			if key, ok := f.Annotations[flagKeyAnnotation]; ok && len(key) == 1 {
				_ = v.BindPFlag(key[0], f)
			}
		})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Digest.Keywords = normalizeKeywords(cfg.Digest.Keywords)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

const flagKeyAnnotation = "config_key"

// BindFlag marks flag name in fs as the command-line source of config key.
func BindFlag(fs *pflag.FlagSet, name, key string) {
	_ = fs.SetAnnotation(name, flagKeyAnnotation, []string{key})
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.TDnet.MaxPages < 1 {
		return ErrInvalidMaxPages
	}
	if c.TDnet.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if _, err := tdnet.ParseErrorPolicy(c.TDnet.PageErrorPolicy); err != nil {
		return err
	}
	if c.Summary.FallbackLines < 1 {
		return ErrInvalidFallback
	}
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		return ErrInvalidSMTPPort
	}
	if c.Digest.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.StaticDir != "" {
		if _, err := os.Stat(c.StaticDir); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingStaticDir, c.StaticDir)
		}
	}
	return nil
}

// ErrorPolicy returns the validated pagination error policy.
func (c *Config) ErrorPolicy() tdnet.ErrorPolicy {
	p, _ := tdnet.ParseErrorPolicy(c.TDnet.PageErrorPolicy)
	return p
}

func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, ErrInvalidLogLevel
}

// NewLogger builds the process logger at the configured level.
func (c *Config) NewLogger() *slog.Logger {
	level, _ := c.SlogLevel()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// normalizeKeywords splits comma-separated entries (as they arrive from the environment)
// and lowercases them for case-insensitive matching.
func normalizeKeywords(raw []string) []string {
	var keywords []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			if trimmed := strings.ToLower(strings.TrimSpace(part)); trimmed != "" {
				keywords = append(keywords, trimmed)
			}
		}
	}
	return keywords
}
