package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Fractional NFT marketplace indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Index marketplace events into the store",
		RunE:  runIndexer,
	}
	addChainFlags(runCmd)
	runCmd.Flags().Bool("follow", false, "keep polling for new blocks once caught up (requires --to 0)")
	runCmd.Flags().Duration("poll-interval", 12*time.Second, "head polling interval in follow mode")
	runCmd.Flags().String("store", "postgres", "record store (postgres, memory)")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	runCmd.Flags().String("archive", "", "optional raw logs JSONL archive written alongside the store")
	runCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	root.AddCommand(runCmd)

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Archive raw marketplace logs to JSONL",
		RunE:  runFetch,
	}
	addChainFlags(fetchCmd)
	fetchCmd.Flags().String("out", "./data/logs.jsonl", "output JSONL path")
	fetchCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	root.AddCommand(fetchCmd)

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply an archived JSONL log file to the store",
		RunE:  runReplay,
	}
	replayCmd.Flags().String("rpc", "", "RPC URL used for contract reads")
	replayCmd.Flags().String("in", "", "input raw logs JSONL")
	replayCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	replayCmd.Flags().String("store", "postgres", "record store (postgres, memory)")
	replayCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	replayCmd.Flags().Int("batch-size", 500, "logs dispatched per batch")
	replayCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	replayCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(replayCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres schema",
		RunE:  runMigrate,
	}
	migrateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	migrateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(migrateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "RPC URL")
	cmd.Flags().String("contract", "", "marketplace contract address")
	cmd.Flags().Uint64("from", 0, "start block (inclusive)")
	cmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	cmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	cmd.Flags().Uint64("confirmations", 0, "blocks to stay behind the head")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
