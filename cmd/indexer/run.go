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

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	store, closeStore, err := openStore(ctx, cfg.Store, cfg.PGDSN, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	dispatcher, err := newDispatcher(store, chainClient, logger)
	if err != nil {
		return err
	}
	decoder, err := contract.NewEventDecoder()
	if err != nil {
		return err
	}
	addresses, err := indexer.ParseAddresses(cfg.Contract)
	if err != nil {
		return err
	}

	var sink storage.LogSink = indexer.NewDispatchSink(
		decoder,
		dispatcher,
		storage.NewJsonlDecodeErrors(cfg.Errors),
		cfg.MaxRetries,
		cfg.RetryBackoff,
		logger.Named("sink"),
	)
	if cfg.Archive != "" {
		sink = storage.MultiSink{storage.NewJsonlStorage(cfg.Archive), sink}
	}

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:     cfg.FromBlock,
		ToBlock:       cfg.ToBlock,
		Addresses:     addresses,
		Topic0:        decoder.Topics(),
		BatchSize:     cfg.BatchSize,
		Confirmations: cfg.Confirmations,
		Follow:        cfg.Follow,
		PollInterval:  cfg.PollInterval,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  cfg.RetryBackoff,
	}, chainClient, sink, indexer.NewCounterCheckpoint(store), logger)

	logger.Info("indexer start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("contract", cfg.Contract),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("store", cfg.Store),
		zap.Bool("follow", cfg.Follow),
		zap.String("archive", cfg.Archive),
	)

	return runner.Run(ctx)
}
