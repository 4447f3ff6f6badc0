package storage

import (
	"fmt"

	"eduguide/config"
)

// Open builds the store selected by cfg.StorageDriver. The returned close
// function releases the underlying connection.
func Open(cfg *config.Config) (LocalStorage, func() error, error) {
	switch cfg.StorageDriver {
	case "memory":
		return NewMemoryStore(), func() error { return nil }, nil
	case "redis":
		client := config.InitRedis(cfg)
		s, err := NewRedisStore(client, cfg.RedisPrefix)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return s, client.Close, nil
	case "sqlite":
		db, err := config.InitDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		s, err := NewSQLiteStore(db)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
