package app

import (
	"context"
	"time"

	"github.com/adanyl0v/go-tms/internal/config"
	"github.com/adanyl0v/go-tms/internal/storage"
	"github.com/adanyl0v/go-tms/internal/storage/memory"
)

const (
	migrateTimeout    = 30 * time.Second
	disconnectTimeout = 10 * time.Second
)

var globalStore storage.Store

// MustConnectStorage opens the backend selected by STORAGE_DRIVER and
// applies its schema or indexes.
func MustConnectStorage() {
	driver := config.Global().Storage.Driver
	switch driver {
	case config.StorageMongo:
		globalStore = mustConnectMongo()
	case config.StoragePostgres:
		globalStore = mustConnectPostgres()
	case config.StorageMemory:
		globalStore = memory.New()
		globalLogger.Warn().Msg("using in-memory storage, data will not survive a restart")
	default:
		globalLogger.Error().
			Str("driver", driver).
			Msg("unknown storage driver")
		panic("unknown storage driver: " + driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	err := globalStore.Migrate(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("driver", driver).
			Msg("failed to migrate storage")
		panic(err)
	}
	globalLogger.Info().
		Str("driver", driver).
		Msg("storage is ready")
}

func DisconnectStorage() {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()

	err := globalStore.Close(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to disconnect storage")
		return
	}
	globalLogger.Info().Msg("disconnected storage")
}
