package services

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/AnshRaj112/nits-community-backend/internal/database"
	"github.com/AnshRaj112/nits-community-backend/internal/models"
)

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.profiles.SetAvatar(ctx, "alice", "https://cdn.example/alice.png"); err != nil {
		t.Fatalf("SetAvatar: %v", err)
	}

	post := env.create(t, "alice", CreatePostInput{Type: "general", Body: "hello", Anonymous: true})

	if post.Author != "alice" {
		t.Errorf("Author = %q, want alice", post.Author)
	}
	if post.AuthorAvatar == nil || *post.AuthorAvatar != "https://cdn.example/alice.png" {
		t.Errorf("AuthorAvatar = %v, want profile avatar", post.AuthorAvatar)
	}
	if post.Title != nil {
		t.Errorf("Title = %q, want nil for empty title", *post.Title)
	}
	if post.Media == nil || len(post.Media) != 0 {
		t.Errorf("Media = %v, want empty slice", post.Media)
	}
	if post.Likes != 0 || post.LikedBy == nil || len(post.LikedBy) != 0 {
		t.Errorf("new post has likes %d %v", post.Likes, post.LikedBy)
	}
	if !post.Anonymous {
		t.Error("Anonymous flag dropped")
	}
	if !post.CreatedAt.Equal(env.clock) {
		t.Errorf("CreatedAt = %v, want %v", post.CreatedAt, env.clock)
	}
	if post.ID != strconv.FormatInt(env.clock.UnixMilli(), 10) {
		t.Errorf("ID = %s, want creation millis", post.ID)
	}

	stored, _ := env.store.LoadPosts(ctx)
	if len(stored) != 1 || stored[0].ID != post.ID {
		t.Fatalf("stored posts = %+v", stored)
	}
}

func TestCreatePostKeepsTitleAndMedia(t *testing.T) {
	env := newTestEnv(t)

	media := []models.Media{
		models.MediaURL("https://cdn.example/plain.png"),
		{Filename: "x.png", URL: "https://cdn.example/x.png", PublicID: "nits_community/x"},
	}
	post := env.create(t, "bob", CreatePostInput{Type: "event", Title: "Fest", Body: "tonight", Media: media})

	if post.Title == nil || *post.Title != "Fest" {
		t.Errorf("Title = %v, want Fest", post.Title)
	}
	if post.AuthorAvatar != nil {
		t.Errorf("AuthorAvatar = %q, want nil without profile", *post.AuthorAvatar)
	}

	list, err := env.posts.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := list[0].Media
	if len(got) != 2 || !got[0].IsBare() || got[1].PublicID != "nits_community/x" {
		t.Errorf("media not kept as received: %+v", got)
	}
}

func TestCreatePostRequiresIdentity(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.posts.Create(context.Background(), "", CreatePostInput{Body: "x"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestPostIDsAreUnique(t *testing.T) {
	env := newTestEnv(t)

	seen := map[string]bool{}
	var last int64
	for i := 0; i < 5; i++ {
		post := env.create(t, "alice", CreatePostInput{Body: "same millisecond"})
		if seen[post.ID] {
			t.Fatalf("duplicate id %s", post.ID)
		}
		seen[post.ID] = true

		n, err := strconv.ParseInt(post.ID, 10, 64)
		if err != nil {
			t.Fatalf("id %q is not numeric", post.ID)
		}
		if n <= last {
			t.Fatalf("id %d not greater than previous %d", n, last)
		}
		last = n
	}
}

func TestPostIDsSkipStoredIDs(t *testing.T) {
	env := newTestEnv(t)
	future := strconv.FormatInt(env.clock.UnixMilli()+1000, 10)
	if err := env.store.SavePosts(context.Background(), []models.Post{{ID: future, LikedBy: []string{}}}); err != nil {
		t.Fatal(err)
	}

	post := env.create(t, "alice", CreatePostInput{Body: "x"})
	if post.ID == future {
		t.Fatalf("reused stored id %s", future)
	}
}

func TestListFilters(t *testing.T) {
	env := newTestEnv(t)
	env.create(t, "alice", CreatePostInput{Type: "lost-found", Body: "Lost a blue bottle in the library"})
	env.advance(time.Minute)
	env.create(t, "bob", CreatePostInput{Type: "general", Body: "Library closes early today"})
	env.advance(time.Minute)
	env.create(t, "Carol", CreatePostInput{Type: "general", Body: "Anyone up for football?"})

	ctx := context.Background()
	cases := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"all", ListFilter{}, []string{"Carol", "bob", "alice"}},
		{"by type", ListFilter{Type: "general"}, []string{"Carol", "bob"}},
		{"body query ignores case", ListFilter{Query: "LIBRARY"}, []string{"bob", "alice"}},
		{"author query", ListFilter{Query: "carol"}, []string{"Carol"}},
		{"type and query", ListFilter{Type: "general", Query: "library"}, []string{"bob"}},
		{"no match", ListFilter{Type: "events"}, []string{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			posts, err := env.posts.List(ctx, c.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if posts == nil {
				t.Fatal("List returned nil slice")
			}
			if len(posts) != len(c.want) {
				t.Fatalf("got %d posts, want %d", len(posts), len(c.want))
			}
			for i, author := range c.want {
				if posts[i].Author != author {
					t.Errorf("posts[%d].Author = %q, want %q", i, posts[i].Author, author)
				}
			}
		})
	}
}

func TestListSortsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stored := []models.Post{
		{ID: "1", Body: "middle", CreatedAt: base.Add(time.Hour), LikedBy: []string{}},
		{ID: "2", Body: "oldest", CreatedAt: base, LikedBy: []string{}},
		{ID: "3", Body: "newest", CreatedAt: base.Add(2 * time.Hour), LikedBy: []string{}},
	}
	if err := env.store.SavePosts(context.Background(), stored); err != nil {
		t.Fatal(err)
	}

	posts, err := env.posts.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"newest", "middle", "oldest"}
	for i, body := range want {
		if posts[i].Body != body {
			t.Errorf("posts[%d] = %q, want %q", i, posts[i].Body, body)
		}
	}
}

func TestListBackfillsAvatarWithoutWriting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.create(t, "alice", CreatePostInput{Body: "before avatar"})

	if _, err := env.profiles.SetAvatar(ctx, "alice", "https://cdn.example/a.png"); err != nil {
		t.Fatal(err)
	}

	posts, err := env.posts.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if posts[0].AuthorAvatar == nil || *posts[0].AuthorAvatar != "https://cdn.example/a.png" {
		t.Errorf("avatar not backfilled: %v", posts[0].AuthorAvatar)
	}

	stored, _ := env.store.LoadPosts(ctx)
	if stored[0].ID != post.ID || stored[0].AuthorAvatar != nil {
		t.Errorf("List wrote back the avatar: %v", stored[0].AuthorAvatar)
	}
}

func TestLikeOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.create(t, "alice", CreatePostInput{Body: "like me"})

	likes, err := env.posts.Like(ctx, "bob", post.ID)
	if err != nil || likes != 1 {
		t.Fatalf("first like = %d, %v; want 1, nil", likes, err)
	}

	likes, err = env.posts.Like(ctx, "bob", post.ID)
	if !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("repeat like err = %v, want ErrAlreadyLiked", err)
	}
	if likes != 1 {
		t.Errorf("repeat like reported %d likes, want 1", likes)
	}

	likes, err = env.posts.Like(ctx, "carol", post.ID)
	if err != nil || likes != 2 {
		t.Fatalf("carol like = %d, %v; want 2, nil", likes, err)
	}

	stored, _ := env.store.LoadPosts(ctx)
	p := stored[0]
	if p.Likes != len(p.LikedBy) {
		t.Errorf("Likes = %d but LikedBy has %d entries", p.Likes, len(p.LikedBy))
	}
	if len(p.LikedBy) != 2 || p.LikedBy[0] != "bob" || p.LikedBy[1] != "carol" {
		t.Errorf("LikedBy = %v", p.LikedBy)
	}
}

func TestLikeUnknownPost(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.posts.Like(context.Background(), "bob", "404"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("err = %v, want ErrPostNotFound", err)
	}
}

func TestDeletePermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.create(t, "alice", CreatePostInput{Body: "one"})
	env.advance(time.Second)
	second := env.create(t, "alice", CreatePostInput{Body: "two"})

	if err := env.posts.Delete(ctx, "carol", first.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger delete err = %v, want ErrForbidden", err)
	}
	if err := env.posts.Delete(ctx, "alice", first.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if err := env.posts.Delete(ctx, "admin", second.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := env.posts.Delete(ctx, "alice", first.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("second delete err = %v, want ErrPostNotFound", err)
	}

	stored, _ := env.store.LoadPosts(ctx)
	if len(stored) != 0 {
		t.Errorf("posts left after deletes: %+v", stored)
	}
}

func TestDeleteDestroysMediaBestEffort(t *testing.T) {
	env := newTestEnv(t)
	env.objects.destroyErr = errors.New("media host down")
	ctx := context.Background()

	post := env.create(t, "alice", CreatePostInput{Body: "pics", Media: []models.Media{
		models.MediaURL("https://elsewhere.example/x.png"),
		{URL: "https://cdn.example/a.png", PublicID: "nits_community/a"},
		{URL: "https://cdn.example/b.png"},
		{URL: "https://cdn.example/c.png", PublicID: "nits_community/c"},
	}})

	if err := env.posts.Delete(ctx, "alice", post.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	env.posts.WaitMediaCleanup()

	want := []string{"nits_community/a", "nits_community/c"}
	if len(env.objects.destroyed) != len(want) {
		t.Fatalf("destroyed %v, want %v", env.objects.destroyed, want)
	}
	for i := range want {
		if env.objects.destroyed[i] != want[i] {
			t.Errorf("destroyed[%d] = %q, want %q", i, env.objects.destroyed[i], want[i])
		}
	}

	stored, _ := env.store.LoadPosts(ctx)
	if len(stored) != 0 {
		t.Error("post survived failed media cleanup")
	}
}

func TestDeleteWithoutObjectStore(t *testing.T) {
	env := newTestEnv(t)
	env.posts = NewPostService(env.store, NewIdentityGate("admin", ""), nil, nil)
	ctx := context.Background()

	post, err := env.posts.Create(ctx, "alice", CreatePostInput{Media: []models.Media{{URL: "u", PublicID: "p"}}})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.posts.Delete(ctx, "alice", post.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestPostEventsReachFeed(t *testing.T) {
	env := newTestEnv(t)
	events, unsubscribe := env.hub.Subscribe()
	defer unsubscribe()
	ctx := context.Background()

	post := env.create(t, "alice", CreatePostInput{Body: "live"})
	if _, err := env.posts.Like(ctx, "bob", post.ID); err != nil {
		t.Fatal(err)
	}
	if err := env.posts.Delete(ctx, "alice", post.ID); err != nil {
		t.Fatal(err)
	}

	want := []string{models.FeedEventPostCreated, models.FeedEventPostLiked, models.FeedEventPostDeleted}
	for _, typ := range want {
		select {
		case evt := <-events:
			if evt.Type != typ || evt.PostID != post.ID {
				t.Errorf("event = %s/%s, want %s/%s", evt.Type, evt.PostID, typ, post.ID)
			}
			if typ == models.FeedEventPostLiked && (evt.Likes == nil || *evt.Likes != 1) {
				t.Errorf("like event carries likes %v, want 1", evt.Likes)
			}
		case <-time.After(time.Second):
			t.Fatalf("no %s event", typ)
		}
	}
}

func TestDeleteLeavesOtherPostsUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.create(t, "alice", CreatePostInput{Type: "advice", Title: "Hostel tips", Body: "carry a lock"})
	env.advance(time.Second)
	target := env.create(t, "alice", CreatePostInput{Type: "gossip", Body: "to be removed", Media: []models.Media{
		{URL: "https://cdn.example/t.png", PublicID: "nits_community/t"},
	}})
	env.advance(time.Second)
	last := env.create(t, "bob", CreatePostInput{Type: "creative", Body: "a poem", Anonymous: true, Media: []models.Media{
		models.MediaURL("https://cdn.example/poem.png"),
	}})
	for _, id := range []string{first.ID, target.ID, last.ID} {
		if _, err := env.posts.Like(ctx, "carol", id); err != nil {
			t.Fatal(err)
		}
	}

	before, err := env.store.LoadPosts(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if err := env.posts.Delete(ctx, "carol", target.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger delete err = %v, want ErrForbidden", err)
	}
	unchanged, _ := env.store.LoadPosts(ctx)
	if !reflect.DeepEqual(unchanged, before) {
		t.Fatalf("refused delete changed the collection:\n got %+v\nwant %+v", unchanged, before)
	}

	if err := env.posts.Delete(ctx, "alice", target.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	env.posts.WaitMediaCleanup()

	var want []models.Post
	for _, p := range before {
		if p.ID != target.ID {
			want = append(want, p)
		}
	}
	after, _ := env.store.LoadPosts(ctx)
	if !reflect.DeepEqual(after, want) {
		t.Fatalf("author delete touched other posts:\n got %+v\nwant %+v", after, want)
	}
}

func TestDeleteDoesNotWaitForMediaHost(t *testing.T) {
	objects := newBlockingObjectStore()
	store := ctxStore{database.NewMemoryStore()}
	svc := NewPostService(store, NewIdentityGate("admin", "NITS2025"), objects, nil)

	bg := context.Background()
	withMedia, err := svc.Create(bg, "alice", CreatePostInput{Body: "video", Media: []models.Media{
		{URL: "https://cdn.example/v.mp4", PublicID: "nits_community/v"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	other, err := svc.Create(bg, "bob", CreatePostInput{Body: "text only"})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(bg, 2*time.Second)
	if err := svc.Delete(ctx, "alice", withMedia.ID); err != nil {
		t.Fatalf("Delete with a hanging media host: %v", err)
	}

	select {
	case id := <-objects.started:
		if id != "nits_community/v" {
			t.Errorf("destroyed %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("media destroy never started")
	}

	// The media host is still hanging; the collection must stay usable.
	if _, err := svc.Like(bg, "carol", other.ID); err != nil {
		t.Fatalf("Like while media destroy pending: %v", err)
	}
	posts, _ := store.LoadPosts(bg)
	if len(posts) != 1 || posts[0].ID != other.ID {
		t.Fatalf("posts after delete = %+v, want only %s", posts, other.ID)
	}

	// Request cancellation does not abort the cleanup.
	cancel()
	close(objects.release)
	if err := <-objects.ctxErr; err != nil {
		t.Errorf("destroy context ended with the request: %v", err)
	}
	svc.WaitMediaCleanup()
}
