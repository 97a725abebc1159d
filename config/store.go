package config

import (
	"context"

	"github.com/yeremiapane/restaurant-seating/storage"
	"github.com/yeremiapane/restaurant-seating/utils"
)

// InitStore opens the snapshot store selected by STORE_DRIVER. The returned
// func releases its connections.
func InitStore(ctx context.Context, cfg *Config) (storage.Store, func(), error) {
	switch cfg.StoreDriver {
	case StoreRedis:
		client, err := InitRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store := storage.NewKVSnapshotStore(storage.NewRedisKVStore(client), cfg.RedisKeyPrefix)
		return store, func() { client.Close() }, nil

	case StoreMemory:
		utils.InfoLogger.Warn("Using in-memory store, floor state is lost on restart")
		return storage.NewMemoryStore(), func() {}, nil

	default:
		db, err := InitDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return storage.NewGormStore(db), closeFn, nil
	}
}
