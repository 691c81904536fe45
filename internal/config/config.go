package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Server     ServerConfig     `yaml:"server"`

	StateFile      string   `yaml:"state_file"`
	DefaultDomains []string `yaml:"default_domains,omitempty"`
	LogLevel       string   `yaml:"log_level"`
}

type TelegramConfig struct {
	Token        string `yaml:"token"`
	AlertChatID  string `yaml:"alert_chat_id"`
	ReportChatID string `yaml:"report_chat_id"`
	SendTimeout  string `yaml:"send_timeout"` // e.g. "15s"

	SendTimeoutDur time.Duration `yaml:"-"`
}

type MonitoringConfig struct {
	CheckInterval string `yaml:"check_interval"` // e.g. "60s"
	ReportEvery   int    `yaml:"report_every"`   // cycles between status reports
	MaxConcurrent int    `yaml:"max_concurrent"` // parallel probes per cycle
	RDAPTimeout   string `yaml:"rdap_timeout"`
	WhoisTimeout  string `yaml:"whois_timeout"`

	CheckIntervalDur time.Duration `yaml:"-"`
	RDAPTimeoutDur   time.Duration `yaml:"-"`
	WhoisTimeoutDur  time.Duration `yaml:"-"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // empty disables the status API
}

// Load reads, defaults, and validates a YAML config file. The Telegram token
// may also come from the TELEGRAM_BOT_TOKEN environment variable, which takes
// precedence over the file so the secret can stay out of it.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if env := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); env != "" {
		cfg.Telegram.Token = env
	}

	applyDefaults(&cfg)

	if err := validateAndNormalize(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.StateFile) == "" {
		cfg.StateFile = "domain_state.json"
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}

	if strings.TrimSpace(cfg.Telegram.SendTimeout) == "" {
		cfg.Telegram.SendTimeout = "15s"
	}

	if strings.TrimSpace(cfg.Monitoring.CheckInterval) == "" {
		cfg.Monitoring.CheckInterval = "60s"
	}
	if cfg.Monitoring.ReportEvery <= 0 {
		cfg.Monitoring.ReportEvery = 120
	}
	if cfg.Monitoring.MaxConcurrent <= 0 {
		cfg.Monitoring.MaxConcurrent = 5
	}
	if strings.TrimSpace(cfg.Monitoring.RDAPTimeout) == "" {
		cfg.Monitoring.RDAPTimeout = "10s"
	}
	if strings.TrimSpace(cfg.Monitoring.WhoisTimeout) == "" {
		cfg.Monitoring.WhoisTimeout = "20s"
	}
}

func validateAndNormalize(cfg *Config) error {
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return errors.New("config: telegram token missing (set telegram.token or TELEGRAM_BOT_TOKEN)")
	}
	if strings.TrimSpace(cfg.Telegram.AlertChatID) == "" {
		return errors.New("config: telegram.alert_chat_id missing")
	}
	if strings.TrimSpace(cfg.Telegram.ReportChatID) == "" {
		return errors.New("config: telegram.report_chat_id missing")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "debug", "info", "warn", "error":
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	default:
		return fmt.Errorf("config: invalid log_level %q (use debug, info, warn or error)", cfg.LogLevel)
	}

	durations := []struct {
		name string
		raw  string
		out  *time.Duration
	}{
		{"telegram.send_timeout", cfg.Telegram.SendTimeout, &cfg.Telegram.SendTimeoutDur},
		{"monitoring.check_interval", cfg.Monitoring.CheckInterval, &cfg.Monitoring.CheckIntervalDur},
		{"monitoring.rdap_timeout", cfg.Monitoring.RDAPTimeout, &cfg.Monitoring.RDAPTimeoutDur},
		{"monitoring.whois_timeout", cfg.Monitoring.WhoisTimeout, &cfg.Monitoring.WhoisTimeoutDur},
	}
	for _, d := range durations {
		dur, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config: invalid %s %q: %w", d.name, d.raw, err)
		}
		if dur <= 0 {
			return fmt.Errorf("config: %s must be > 0", d.name)
		}
		*d.out = dur
	}

	for i, domain := range cfg.DefaultDomains {
		cfg.DefaultDomains[i] = strings.ToLower(strings.TrimSpace(domain))
		if cfg.DefaultDomains[i] == "" || !strings.Contains(cfg.DefaultDomains[i], ".") {
			return fmt.Errorf("config: default_domains[%d] %q is not a valid domain", i, domain)
		}
	}

	return nil
}
