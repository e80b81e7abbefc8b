package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/AnshRaj112/nits-community-backend/internal/models"
)

const (
	PostsDocument    = "posts"
	ProfilesDocument = "profiles"
)

// DocumentStore persists the two collections as whole documents. Every load
// reads the full collection and every save replaces it; there are no partial
// writes and no indexes.
//
// Concurrent load/save pairs are not coordinated here. Callers that need
// read-modify-write semantics must serialize them (see services).
type DocumentStore interface {
	LoadPosts(ctx context.Context) ([]models.Post, error)
	SavePosts(ctx context.Context, posts []models.Post) error
	LoadProfiles(ctx context.Context) (map[string]models.Profile, error)
	SaveProfiles(ctx context.Context, profiles map[string]models.Profile) error
	Close() error
}

// decodePosts turns a raw document into posts. Missing or corrupt documents
// decode to an empty collection; corruption is logged and then dropped.
func decodePosts(raw []byte, source string) []models.Post {
	posts := []models.Post{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return posts
	}
	if err := json.Unmarshal(raw, &posts); err != nil {
		slog.Warn("discarding corrupt posts document", "source", source, "error", err)
		return []models.Post{}
	}
	for i := range posts {
		if posts[i].LikedBy == nil {
			posts[i].LikedBy = []string{}
		}
		if posts[i].Media == nil {
			posts[i].Media = []models.Media{}
		}
	}
	return posts
}

func decodeProfiles(raw []byte, source string) map[string]models.Profile {
	profiles := map[string]models.Profile{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return profiles
	}
	if err := json.Unmarshal(raw, &profiles); err != nil || profiles == nil {
		slog.Warn("discarding corrupt profiles document", "source", source, "error", err)
		return map[string]models.Profile{}
	}
	return profiles
}

func encodeDocument(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

func encodePosts(posts []models.Post) ([]byte, error) {
	if posts == nil {
		posts = []models.Post{}
	}
	return encodeDocument(posts)
}

func encodeProfiles(profiles map[string]models.Profile) ([]byte, error) {
	if profiles == nil {
		profiles = map[string]models.Profile{}
	}
	return encodeDocument(profiles)
}
