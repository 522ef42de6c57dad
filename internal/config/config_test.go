package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

const testContract = "0x1111111111111111111111111111111111111111"

func runFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.String("contract", "", "")
	flags.Uint64("from", 0, "")
	flags.Uint64("to", 0, "")
	flags.Uint64("batch-size", 2000, "")
	flags.String("store", "postgres", "")
	flags.String("pg-dsn", "", "")
	flags.String("log-level", "info", "")
	if err := flags.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return flags
}

func TestLoadFromFlags(t *testing.T) {
	flags := runFlags(t,
		"--rpc", "https://rpc.example.org",
		"--contract", testContract,
		"--from", "100",
		"--to", "200",
		"--store", "memory",
		"--log-level", "DEBUG",
	)
	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FromBlock != 100 || cfg.ToBlock != 200 || cfg.Store != StoreMemory || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.BatchSize != 2000 || cfg.MaxRetries != 5 || cfg.RetryBackoff != 500*time.Millisecond {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFromEnvAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indexer.yaml")
	content := "rpc: https://rpc.example.org\ncontract: " + testContract + "\nbatch-size: 50\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("INDEXER_PG_DSN", "postgres://localhost/market")

	cfg, err := Load(path, runFlags(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BatchSize != 50 || cfg.PGDSN != "postgres://localhost/market" || cfg.Store != StorePostgres {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string][]string{
		"missing rpc":      {"--contract", testContract, "--store", "memory"},
		"bad contract":     {"--rpc", "https://rpc.example.org", "--contract", "0x123", "--store", "memory"},
		"postgres no dsn":  {"--rpc", "https://rpc.example.org", "--contract", testContract},
		"to before from":   {"--rpc", "https://rpc.example.org", "--contract", testContract, "--store", "memory", "--from", "10", "--to", "5"},
		"zero batch size":  {"--rpc", "https://rpc.example.org", "--contract", testContract, "--store", "memory", "--batch-size", "0"},
		"unknown store":    {"--rpc", "https://rpc.example.org", "--contract", testContract, "--store", "mongo"},
		"unknown loglevel": {"--rpc", "https://rpc.example.org", "--contract", testContract, "--store", "memory", "--log-level", "trace"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load("", runFlags(t, args...)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadReplayDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("replay", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.String("in", "", "")
	flags.String("store", "postgres", "")
	if err := flags.Parse([]string{"--rpc", "ws://localhost:8546", "--in", "logs.jsonl", "--store", "memory"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := LoadReplay("", flags)
	if err != nil {
		t.Fatalf("load replay: %v", err)
	}
	if cfg.Errors != "./data/decode_errors.jsonl" || cfg.BatchSize != 500 {
		t.Fatalf("unexpected replay config: %+v", cfg)
	}
}
