package config

import (
	"bank_system/internal/domain"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	defaultHTTPAddr    = ":8080"
	defaultMetricsAddr = ":9090"
	defaultLogLevel    = "info"
)

type Config struct {
	HTTPAddr    string
	MetricsAddr string
	LogLevel    slog.Level
	Limits      Limits
}

// Limits are applied to every newly opened account unless the request
// overrides them.
type Limits struct {
	PerWithdrawal         domain.Money
	DailyWithdrawalCount  int
	DailyWithdrawalAmount domain.Money
}

type fileConfig struct {
	HTTPAddr    string     `yaml:"http_addr"`
	MetricsAddr string     `yaml:"metrics_addr"`
	LogLevel    string     `yaml:"log_level"`
	Limits      fileLimits `yaml:"limits"`
}

type fileLimits struct {
	PerWithdrawal         string `yaml:"per_withdrawal"`
	DailyWithdrawalCount  int    `yaml:"daily_withdrawal_count"`
	DailyWithdrawalAmount string `yaml:"daily_withdrawal_amount"`
}

func defaults() fileConfig {
	return fileConfig{
		HTTPAddr:    defaultHTTPAddr,
		MetricsAddr: defaultMetricsAddr,
		LogLevel:    defaultLogLevel,
		Limits: fileLimits{
			PerWithdrawal:         domain.DefaultPerWithdrawalLimit.String(),
			DailyWithdrawalCount:  domain.DefaultDailyWithdrawalCountLimit,
			DailyWithdrawalAmount: "0",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then BANK_* environment variables.
func Load(path string) (Config, error) {
	raw := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
		}
		if err := yaml.Unmarshal(b, &raw); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
	}

	if err := applyEnv(&raw); err != nil {
		return Config{}, err
	}

	return raw.resolve()
}

func applyEnv(raw *fileConfig) error {
	if v := env("BANK_HTTP_ADDR"); v != "" {
		raw.HTTPAddr = v
	}
	if v := env("BANK_METRICS_ADDR"); v != "" {
		raw.MetricsAddr = v
	}
	if v := env("BANK_LOG_LEVEL"); v != "" {
		raw.LogLevel = v
	}
	if v := env("BANK_PER_WITHDRAWAL_LIMIT"); v != "" {
		raw.Limits.PerWithdrawal = v
	}
	if v := env("BANK_DAILY_WITHDRAWAL_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: BANK_DAILY_WITHDRAWAL_COUNT=%q", ErrInvalidConfig, v)
		}
		raw.Limits.DailyWithdrawalCount = n
	}
	if v := env("BANK_DAILY_WITHDRAWAL_AMOUNT"); v != "" {
		raw.Limits.DailyWithdrawalAmount = v
	}
	return nil
}

func (raw fileConfig) resolve() (Config, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw.LogLevel)); err != nil {
		return Config{}, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, raw.LogLevel)
	}

	perWithdrawal, err := domain.ParseMoney(raw.Limits.PerWithdrawal)
	if err != nil || !perWithdrawal.IsPositive() {
		return Config{}, fmt.Errorf("%w: per_withdrawal %q must be a positive amount", ErrInvalidConfig, raw.Limits.PerWithdrawal)
	}

	dailyAmount, err := domain.ParseMoney(raw.Limits.DailyWithdrawalAmount)
	if err != nil || dailyAmount.IsNegative() {
		return Config{}, fmt.Errorf("%w: daily_withdrawal_amount %q must be zero or positive", ErrInvalidConfig, raw.Limits.DailyWithdrawalAmount)
	}

	if raw.Limits.DailyWithdrawalCount < 0 {
		return Config{}, fmt.Errorf("%w: daily_withdrawal_count must not be negative", ErrInvalidConfig)
	}

	if raw.HTTPAddr == "" || raw.MetricsAddr == "" {
		return Config{}, fmt.Errorf("%w: listen addresses must be set", ErrInvalidConfig)
	}

	return Config{
		HTTPAddr:    raw.HTTPAddr,
		MetricsAddr: raw.MetricsAddr,
		LogLevel:    level,
		Limits: Limits{
			PerWithdrawal:         perWithdrawal,
			DailyWithdrawalCount:  raw.Limits.DailyWithdrawalCount,
			DailyWithdrawalAmount: dailyAmount,
		},
	}, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
