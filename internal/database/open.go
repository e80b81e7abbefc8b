package database

import (
	"fmt"

	"github.com/AnshRaj112/nits-community-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// Open builds the document store selected by cfg.StoreDriver. The redis
// driver reuses redisClient, which must be non-nil for that driver.
func Open(cfg *config.Config, redisClient *redis.Client) (DocumentStore, error) {
	switch cfg.StoreDriver {
	case "", "file":
		return NewFileStore(cfg.DataDir)
	case "memory":
		return NewMemoryStore(), nil
	case "mongo", "mongodb":
		return ConnectMongo(cfg.MongoURI, cfg.MongoDatabase)
	case "postgres":
		return ConnectPostgres(cfg.PostgresURI)
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("STORE_DRIVER=redis requires REDIS_URI")
		}
		return NewRedisStore(redisClient), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
