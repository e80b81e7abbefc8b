package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/nits-community-backend/internal/database"
	"github.com/AnshRaj112/nits-community-backend/internal/models"
)

const mediaDestroyTimeout = 10 * time.Second

type CreatePostInput struct {
	Type      string
	Title     string
	Body      string
	Media     []models.Media
	Anonymous bool
}

type ListFilter struct {
	Type  string
	Query string
}

// PostService implements the post operations over the posts collection.
// Every read-modify-write runs under postsMu so two requests in this process
// cannot interleave a load and a save. Separate processes sharing one store
// can still lose updates (last save wins).
type PostService struct {
	store database.DocumentStore
	gate  *IdentityGate
	media ObjectStore
	feed  FeedPublisher

	postsMu sync.Mutex
	lastID  int64
	now     func() time.Time

	cleanup sync.WaitGroup
}

// NewPostService wires the service. media and feed may be nil.
func NewPostService(store database.DocumentStore, gate *IdentityGate, media ObjectStore, feed FeedPublisher) *PostService {
	return &PostService{
		store: store,
		gate:  gate,
		media: media,
		feed:  feed,
		now:   time.Now,
	}
}

// SetClock overrides the time source.
func (s *PostService) SetClock(now func() time.Time) {
	s.now = now
}

// nextID derives the id from the creation time in milliseconds, bumping it
// past the last issued id and every stored id so ids never repeat.
func (s *PostService) nextID(posts []models.Post, now time.Time) string {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	for _, p := range posts {
		if n, err := strconv.ParseInt(p.ID, 10, 64); err == nil && n >= id {
			id = n + 1
		}
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *PostService) Create(ctx context.Context, identity string, in CreatePostInput) (models.Post, error) {
	if identity == "" {
		return models.Post{}, ErrUnauthorized
	}

	profiles, err := s.store.LoadProfiles(ctx)
	if err != nil {
		return models.Post{}, err
	}

	s.postsMu.Lock()
	defer s.postsMu.Unlock()

	posts, err := s.store.LoadPosts(ctx)
	if err != nil {
		return models.Post{}, err
	}

	now := s.now().UTC()
	post := models.Post{
		ID:        s.nextID(posts, now),
		Type:      in.Type,
		Body:      in.Body,
		Media:     in.Media,
		Anonymous: in.Anonymous,
		Author:    identity,
		Likes:     0,
		LikedBy:   []string{},
		CreatedAt: now,
	}
	if in.Title != "" {
		title := in.Title
		post.Title = &title
	}
	if post.Media == nil {
		post.Media = []models.Media{}
	}
	if p, ok := profiles[identity]; ok && p.Avatar != "" {
		avatar := p.Avatar
		post.AuthorAvatar = &avatar
	}

	// Newest first, so the stored order is already reverse-chronological.
	posts = append([]models.Post{post}, posts...)
	if err := s.store.SavePosts(ctx, posts); err != nil {
		return models.Post{}, fmt.Errorf("failed to save post: %w", err)
	}

	slog.Info("post created", "id", post.ID, "type", post.Type, "author", identity, "media", len(post.Media))
	s.publish(ctx, models.FeedEvent{Type: models.FeedEventPostCreated, PostID: post.ID, Post: &post})
	return post, nil
}

// List returns posts newest first. Missing author avatars are filled from the
// current profiles for the response only; nothing is written back.
func (s *PostService) List(ctx context.Context, filter ListFilter) ([]models.Post, error) {
	posts, err := s.store.LoadPosts(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.store.LoadProfiles(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(filter.Query)
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.AuthorAvatar == nil || *p.AuthorAvatar == "" {
			if prof, ok := profiles[p.Author]; ok && prof.Avatar != "" {
				avatar := prof.Avatar
				p.AuthorAvatar = &avatar
			}
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if q != "" && !p.Matches(q) {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Like records identity's like once. A repeat returns ErrAlreadyLiked and
// changes nothing.
func (s *PostService) Like(ctx context.Context, identity, postID string) (int, error) {
	if identity == "" {
		return 0, ErrUnauthorized
	}

	s.postsMu.Lock()
	defer s.postsMu.Unlock()

	posts, err := s.store.LoadPosts(ctx)
	if err != nil {
		return 0, err
	}

	idx := findPost(posts, postID)
	if idx == -1 {
		return 0, ErrPostNotFound
	}
	post := &posts[idx]
	if post.HasLiked(identity) {
		return post.Likes, ErrAlreadyLiked
	}

	post.LikedBy = append(post.LikedBy, identity)
	post.Likes = len(post.LikedBy)
	if err := s.store.SavePosts(ctx, posts); err != nil {
		return 0, fmt.Errorf("failed to save like: %w", err)
	}

	likes := post.Likes
	s.publish(ctx, models.FeedEvent{Type: models.FeedEventPostLiked, PostID: postID, Likes: &likes})
	return likes, nil
}

// Delete removes a post when identity is its author or the administrator.
// The record is saved first; remote media is then destroyed in the
// background, and failures there are logged and ignored.
func (s *PostService) Delete(ctx context.Context, identity, postID string) error {
	if identity == "" {
		return ErrUnauthorized
	}

	post, err := s.removePost(ctx, identity, postID)
	if err != nil {
		return err
	}

	slog.Info("post deleted", "id", postID, "by", identity)
	s.publish(ctx, models.FeedEvent{Type: models.FeedEventPostDeleted, PostID: postID})

	s.cleanup.Add(1)
	go func() {
		defer s.cleanup.Done()
		s.destroyMedia(context.WithoutCancel(ctx), post)
	}()
	return nil
}

func (s *PostService) removePost(ctx context.Context, identity, postID string) (models.Post, error) {
	s.postsMu.Lock()
	defer s.postsMu.Unlock()

	posts, err := s.store.LoadPosts(ctx)
	if err != nil {
		return models.Post{}, err
	}

	idx := findPost(posts, postID)
	if idx == -1 {
		return models.Post{}, ErrPostNotFound
	}
	post := posts[idx]
	if post.Author != identity && !s.gate.IsAdmin(identity) {
		slog.Warn("delete refused", "id", postID, "requester", identity, "author", post.Author)
		return models.Post{}, ErrForbidden
	}

	remaining := make([]models.Post, 0, len(posts)-1)
	remaining = append(remaining, posts[:idx]...)
	remaining = append(remaining, posts[idx+1:]...)
	if err := s.store.SavePosts(ctx, remaining); err != nil {
		return models.Post{}, fmt.Errorf("failed to save after delete: %w", err)
	}
	return post, nil
}

// WaitMediaCleanup blocks until background media destroys have finished.
func (s *PostService) WaitMediaCleanup() {
	s.cleanup.Wait()
}

func (s *PostService) destroyMedia(ctx context.Context, post models.Post) {
	if s.media == nil {
		return
	}
	for _, m := range post.Media {
		if m.PublicID == "" {
			continue
		}
		dctx, cancel := context.WithTimeout(ctx, mediaDestroyTimeout)
		if err := s.media.Destroy(dctx, m); err != nil {
			slog.Warn("media destroy failed, continuing", "post_id", post.ID, "public_id", m.PublicID, "error", err)
		}
		cancel()
	}
}

func (s *PostService) publish(ctx context.Context, event models.FeedEvent) {
	if s.feed != nil {
		s.feed.Publish(ctx, event)
	}
}

func findPost(posts []models.Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}
