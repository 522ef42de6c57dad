package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// FetchConfig holds settings for the fetch command, which archives raw
// contract logs without reconciling them.
type FetchConfig struct {
	RPCURL        string `validate:"required,url"`
	Contract      string `validate:"required,eth_addr"`
	FromBlock     uint64
	ToBlock       uint64 `validate:"omitempty,gtefield=FromBlock"`
	BatchSize     uint64 `validate:"gt=0"`
	Confirmations uint64
	Out           string        `validate:"required"`
	Checkpoint    string        `validate:"required"`
	MaxRetries    int           `validate:"gte=0"`
	RetryBackoff  time.Duration `validate:"gte=0"`
	LogLevel      string        `validate:"oneof=debug info warn error"`
}

// LoadFetch merges config file, environment variables, and flags into FetchConfig.
func LoadFetch(cfgFile string, flags *pflag.FlagSet) (FetchConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"batch-size":    uint64(2000),
		"out":           "./data/logs.jsonl",
		"checkpoint":    "./data/checkpoint.json",
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return FetchConfig{}, err
	}

	cfg := FetchConfig{
		RPCURL:        v.GetString("rpc"),
		Contract:      v.GetString("contract"),
		FromBlock:     v.GetUint64("from"),
		ToBlock:       v.GetUint64("to"),
		BatchSize:     v.GetUint64("batch-size"),
		Confirmations: v.GetUint64("confirmations"),
		Out:           v.GetString("out"),
		Checkpoint:    v.GetString("checkpoint"),
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		LogLevel:      strings.ToLower(v.GetString("log-level")),
	}
	return cfg, validate(cfg)
}

// ReplayConfig holds settings for the replay command, which feeds a raw log
// archive through the dispatcher. Contract reads still go to RPCURL.
type ReplayConfig struct {
	RPCURL       string        `validate:"required,url"`
	In           string        `validate:"required"`
	Errors       string        `validate:"required"`
	Store        string        `validate:"oneof=memory postgres"`
	PGDSN        string        `validate:"required_if=Store postgres"`
	BatchSize    int           `validate:"gt=0"`
	MaxRetries   int           `validate:"gte=0"`
	RetryBackoff time.Duration `validate:"gte=0"`
	LogLevel     string        `validate:"oneof=debug info warn error"`
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"errors":        "./data/decode_errors.jsonl",
		"store":         StorePostgres,
		"batch-size":    500,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return ReplayConfig{}, err
	}

	cfg := ReplayConfig{
		RPCURL:       v.GetString("rpc"),
		In:           v.GetString("in"),
		Errors:       v.GetString("errors"),
		Store:        strings.ToLower(v.GetString("store")),
		PGDSN:        v.GetString("pg-dsn"),
		BatchSize:    v.GetInt("batch-size"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     strings.ToLower(v.GetString("log-level")),
	}
	return cfg, validate(cfg)
}

// MigrateConfig holds settings for the migrate command.
type MigrateConfig struct {
	PGDSN    string `validate:"required"`
	LogLevel string `validate:"oneof=debug info warn error"`
}

// LoadMigrate merges config file, environment variables, and flags into MigrateConfig.
func LoadMigrate(cfgFile string, flags *pflag.FlagSet) (MigrateConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{"log-level": "info"})
	if err != nil {
		return MigrateConfig{}, err
	}
	cfg := MigrateConfig{
		PGDSN:    v.GetString("pg-dsn"),
		LogLevel: strings.ToLower(v.GetString("log-level")),
	}
	return cfg, validate(cfg)
}
