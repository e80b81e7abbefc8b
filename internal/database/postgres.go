package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AnshRaj112/nits-community-backend/internal/models"
	_ "github.com/lib/pq"
)

// PostgresStore keeps each collection as one row of the documents table.
type PostgresStore struct {
	db *sql.DB
}

// ConnectPostgres opens the pool, pings it and creates the documents table.
func ConnectPostgres(postgresURI string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	slog.Info("connected to PostgreSQL", "uri", maskURI(postgresURI))

	s := &PostgresStore{db: db}
	if err := s.initTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS documents (
		name VARCHAR(64) PRIMARY KEY,
		body JSONB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	slog.Info("PostgreSQL documents table ready")
	return nil
}

func (s *PostgresStore) load(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = $1`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s document: %w", name, err)
	}
	return body, nil
}

func (s *PostgresStore) save(ctx context.Context, name string, body []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()
	`, name, string(body))
	if err != nil {
		return fmt.Errorf("failed to save %s document: %w", name, err)
	}
	return nil
}

func (s *PostgresStore) LoadPosts(ctx context.Context) ([]models.Post, error) {
	raw, err := s.load(ctx, PostsDocument)
	if err != nil {
		return nil, err
	}
	return decodePosts(raw, "postgres:"+PostsDocument), nil
}

func (s *PostgresStore) SavePosts(ctx context.Context, posts []models.Post) error {
	data, err := encodePosts(posts)
	if err != nil {
		return err
	}
	return s.save(ctx, PostsDocument, data)
}

func (s *PostgresStore) LoadProfiles(ctx context.Context) (map[string]models.Profile, error) {
	raw, err := s.load(ctx, ProfilesDocument)
	if err != nil {
		return nil, err
	}
	return decodeProfiles(raw, "postgres:"+ProfilesDocument), nil
}

func (s *PostgresStore) SaveProfiles(ctx context.Context, profiles map[string]models.Profile) error {
	data, err := encodeProfiles(profiles)
	if err != nil {
		return err
	}
	return s.save(ctx, ProfilesDocument, data)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
