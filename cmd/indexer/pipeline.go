package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bluechipScope/internal/config"
	"bluechipScope/internal/contract"
	"bluechipScope/internal/dispatch"
	"bluechipScope/internal/reconcile"
	"bluechipScope/internal/registry"
	"bluechipScope/internal/storage"
	"bluechipScope/internal/storage/memory"
	"bluechipScope/internal/storage/postgres"
)

func openStore(ctx context.Context, kind, dsn string, logger *zap.Logger) (storage.Store, func(), error) {
	switch kind {
	case config.StorePostgres:
		store, err := postgres.NewStore(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return store, store.Close, nil
	case config.StoreMemory:
		logger.Warn("using in-memory store; records are discarded on exit")
		return memory.NewStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store %q", kind)
	}
}

// newDispatcher wires the registry, reconciler and dispatcher over store,
// reading contract state through client.
func newDispatcher(store storage.Store, client contract.CallClient, logger *zap.Logger) (*dispatch.Dispatcher, error) {
	caller, err := contract.NewCaller(client)
	if err != nil {
		return nil, err
	}
	reg := registry.New(store, caller, logger.Named("registry"))
	rec := reconcile.New(store, caller, reg, logger.Named("reconcile"))
	return dispatch.New(store, rec, logger.Named("dispatch")), nil
}
