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
	"bluechipScope/internal/model"
	"bluechipScope/internal/storage"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
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
	sink := indexer.NewDispatchSink(
		decoder,
		dispatcher,
		storage.NewJsonlDecodeErrors(cfg.Errors),
		cfg.MaxRetries,
		cfg.RetryBackoff,
		logger.Named("sink"),
	)

	var (
		batch = make([]model.LogRecord, 0, cfg.BatchSize)
		total int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink.PutLogBatch(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
		logger.Info("replay progress", zap.Int("logs", total))
		batch = batch[:0]
		return nil
	}

	err = storage.ReadLogRecords(cfg.In, func(record model.LogRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch = append(batch, record)
		if len(batch) >= cfg.BatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	logger.Info("replay complete", zap.String("in", cfg.In), zap.Int("logs", total))
	return nil
}
