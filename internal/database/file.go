package database

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AnshRaj112/nits-community-backend/internal/models"
	"github.com/natefinch/atomic"
)

// FileStore keeps each collection in one JSON file under a data directory.
type FileStore struct {
	postsPath    string
	profilesPath string
}

// NewFileStore creates dir if needed and seeds empty collections on first run.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	s := &FileStore{
		postsPath:    filepath.Join(dir, "posts.json"),
		profilesPath: filepath.Join(dir, "profiles.json"),
	}

	seeds := map[string]string{
		s.postsPath:    "[]",
		s.profilesPath: "{}",
	}
	for path, empty := range seeds {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(empty), 0o644); err != nil {
				return nil, fmt.Errorf("failed to initialize %s: %w", path, err)
			}
		}
	}

	slog.Info("using file document store", "dir", dir)
	return s, nil
}

func (s *FileStore) read(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read document, treating as empty", "path", path, "error", err)
		}
		return nil
	}
	return data
}

func (s *FileStore) write(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *FileStore) LoadPosts(ctx context.Context) ([]models.Post, error) {
	return decodePosts(s.read(s.postsPath), s.postsPath), nil
}

func (s *FileStore) SavePosts(ctx context.Context, posts []models.Post) error {
	data, err := encodePosts(posts)
	if err != nil {
		return err
	}
	return s.write(s.postsPath, data)
}

func (s *FileStore) LoadProfiles(ctx context.Context) (map[string]models.Profile, error) {
	return decodeProfiles(s.read(s.profilesPath), s.profilesPath), nil
}

func (s *FileStore) SaveProfiles(ctx context.Context, profiles map[string]models.Profile) error {
	data, err := encodeProfiles(profiles)
	if err != nil {
		return err
	}
	return s.write(s.profilesPath, data)
}

func (s *FileStore) Close() error {
	return nil
}
