package database

import (
	"context"
	"sync"

	"github.com/AnshRaj112/nits-community-backend/internal/models"
)

// MemoryStore holds the serialized documents in process memory. Documents are
// kept encoded so callers never share slices or maps with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	posts    []byte
	profiles []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadPosts(ctx context.Context) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decodePosts(s.posts, "memory"), nil
}

func (s *MemoryStore) SavePosts(ctx context.Context, posts []models.Post) error {
	data, err := encodePosts(posts)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.posts = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LoadProfiles(ctx context.Context) (map[string]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decodeProfiles(s.profiles, "memory"), nil
}

func (s *MemoryStore) SaveProfiles(ctx context.Context, profiles map[string]models.Profile) error {
	data, err := encodeProfiles(profiles)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.profiles = data
	s.mu.Unlock()
	return nil
}

// SetRaw replaces a document with arbitrary bytes. Used to simulate corruption.
func (s *MemoryStore) SetRaw(name string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch name {
	case PostsDocument:
		s.posts = raw
	case ProfilesDocument:
		s.profiles = raw
	}
}

func (s *MemoryStore) Close() error {
	return nil
}
