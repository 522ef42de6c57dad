package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bluechipScope/internal/chain"
	"bluechipScope/internal/config"
	"bluechipScope/internal/contract"
	"bluechipScope/internal/indexer"
	"bluechipScope/internal/storage"
)

func runFetch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFetch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	decoder, err := contract.NewEventDecoder()
	if err != nil {
		return err
	}
	addresses, err := indexer.ParseAddresses(cfg.Contract)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:     cfg.FromBlock,
		ToBlock:       cfg.ToBlock,
		Addresses:     addresses,
		Topic0:        decoder.Topics(),
		BatchSize:     cfg.BatchSize,
		Confirmations: cfg.Confirmations,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  cfg.RetryBackoff,
	}, chainClient, storage.NewJsonlStorage(cfg.Out), indexer.NewFileCheckpoint(cfg.Checkpoint), logger)

	logger.Info("fetch start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("contract", cfg.Contract),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.String("out", cfg.Out),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	return runner.Run(ctx)
}
