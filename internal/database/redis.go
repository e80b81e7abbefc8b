package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AnshRaj112/nits-community-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const redisDocumentPrefix = "docstore:"

// ConnectRedis parses redisURI, applies pool settings and pings the server.
func ConnectRedis(redisURI string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URI: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	slog.Info("connected to Redis", "addr", opt.Addr, "db", opt.DB)
	return client, nil
}

// RedisStore keeps each collection as one string key.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client. The store does not close it.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) load(ctx context.Context, name string) ([]byte, error) {
	raw, err := s.client.Get(ctx, redisDocumentPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s document: %w", name, err)
	}
	return raw, nil
}

func (s *RedisStore) save(ctx context.Context, name string, body []byte) error {
	if err := s.client.Set(ctx, redisDocumentPrefix+name, body, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s document: %w", name, err)
	}
	return nil
}

func (s *RedisStore) LoadPosts(ctx context.Context) ([]models.Post, error) {
	raw, err := s.load(ctx, PostsDocument)
	if err != nil {
		return nil, err
	}
	return decodePosts(raw, "redis:"+PostsDocument), nil
}

func (s *RedisStore) SavePosts(ctx context.Context, posts []models.Post) error {
	data, err := encodePosts(posts)
	if err != nil {
		return err
	}
	return s.save(ctx, PostsDocument, data)
}

func (s *RedisStore) LoadProfiles(ctx context.Context) (map[string]models.Profile, error) {
	raw, err := s.load(ctx, ProfilesDocument)
	if err != nil {
		return nil, err
	}
	return decodeProfiles(raw, "redis:"+ProfilesDocument), nil
}

func (s *RedisStore) SaveProfiles(ctx context.Context, profiles map[string]models.Profile) error {
	data, err := encodeProfiles(profiles)
	if err != nil {
		return err
	}
	return s.save(ctx, ProfilesDocument, data)
}

func (s *RedisStore) Close() error {
	return nil
}
