package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds settings for the run command.
type Config struct {
	RPCURL        string `validate:"required,url"`
	Contract      string `validate:"required,eth_addr"`
	FromBlock     uint64
	ToBlock       uint64 `validate:"omitempty,gtefield=FromBlock"`
	BatchSize     uint64 `validate:"gt=0"`
	Confirmations uint64
	Follow        bool
	PollInterval  time.Duration `validate:"gte=0"`
	Store         string        `validate:"oneof=memory postgres"`
	PGDSN         string        `validate:"required_if=Store postgres"`
	Archive       string
	Errors        string
	MaxRetries    int           `validate:"gte=0"`
	RetryBackoff  time.Duration `validate:"gte=0"`
	LogLevel      string        `validate:"oneof=debug info warn error"`
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"batch-size":    uint64(2000),
		"confirmations": uint64(0),
		"poll-interval": 12 * time.Second,
		"store":         StorePostgres,
		"errors":        "./data/decode_errors.jsonl",
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RPCURL:        v.GetString("rpc"),
		Contract:      v.GetString("contract"),
		FromBlock:     v.GetUint64("from"),
		ToBlock:       v.GetUint64("to"),
		BatchSize:     v.GetUint64("batch-size"),
		Confirmations: v.GetUint64("confirmations"),
		Follow:        v.GetBool("follow"),
		PollInterval:  v.GetDuration("poll-interval"),
		Store:         strings.ToLower(v.GetString("store")),
		PGDSN:         v.GetString("pg-dsn"),
		Archive:       v.GetString("archive"),
		Errors:        v.GetString("errors"),
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		LogLevel:      strings.ToLower(v.GetString("log-level")),
	}
	return cfg, validate(cfg)
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

var structValidator = validator.New()

func validate(cfg interface{}) error {
	if err := structValidator.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
