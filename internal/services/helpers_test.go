package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/nits-community-backend/internal/database"
	"github.com/AnshRaj112/nits-community-backend/internal/models"
)

// fakeObjectStore records transfers and deletions in memory.
type fakeObjectStore struct {
	mu         sync.Mutex
	failOn     map[string]bool
	destroyErr error
	uploaded   []string
	destroyed  []string
}

func (f *fakeObjectStore) Upload(ctx context.Context, filename string, data []byte) (models.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[filename] {
		return models.Media{}, errors.New("media host rejected file")
	}
	f.uploaded = append(f.uploaded, filename)
	return models.Media{
		Filename: filename,
		URL:      "https://cdn.example/" + filename,
		PublicID: "nits_community/" + filename,
	}, nil
}

func (f *fakeObjectStore) Destroy(ctx context.Context, ref models.Media) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = append(f.destroyed, ref.PublicID)
	return f.destroyErr
}

// blockingObjectStore holds every Destroy until release is closed or the
// call's context ends, and reports the context state it saw.
type blockingObjectStore struct {
	started chan string
	release chan struct{}
	ctxErr  chan error
}

func newBlockingObjectStore() *blockingObjectStore {
	return &blockingObjectStore{
		started: make(chan string, 8),
		release: make(chan struct{}),
		ctxErr:  make(chan error, 8),
	}
}

func (b *blockingObjectStore) Upload(ctx context.Context, filename string, data []byte) (models.Media, error) {
	return models.Media{}, errors.New("uploads not supported")
}

func (b *blockingObjectStore) Destroy(ctx context.Context, ref models.Media) error {
	b.started <- ref.PublicID
	select {
	case <-b.release:
		b.ctxErr <- ctx.Err()
		return nil
	case <-ctx.Done():
		b.ctxErr <- ctx.Err()
		return ctx.Err()
	}
}

// ctxStore fails loads and saves once the caller's context is done, the way
// the network-backed drivers do.
type ctxStore struct {
	*database.MemoryStore
}

func (s ctxStore) LoadPosts(ctx context.Context) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.MemoryStore.LoadPosts(ctx)
}

func (s ctxStore) SavePosts(ctx context.Context, posts []models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.SavePosts(ctx, posts)
}

type testEnv struct {
	store    *database.MemoryStore
	objects  *fakeObjectStore
	hub      *FeedHub
	posts    *PostService
	profiles *ProfileService
	clock    time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:   database.NewMemoryStore(),
		objects: &fakeObjectStore{},
		hub:     NewFeedHub(),
		clock:   time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC),
	}
	gate := NewIdentityGate("admin", "NITS2025")
	env.posts = NewPostService(env.store, gate, env.objects, env.hub)
	env.posts.SetClock(func() time.Time { return env.clock })
	env.profiles = NewProfileService(env.store)
	return env
}

// advance moves the fake clock forward.
func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func (e *testEnv) create(t *testing.T, identity string, in CreatePostInput) models.Post {
	t.Helper()
	post, err := e.posts.Create(context.Background(), identity, in)
	if err != nil {
		t.Fatalf("Create(%s): %v", identity, err)
	}
	return post
}
