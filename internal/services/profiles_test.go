package services

import (
	"context"
	"errors"
	"testing"
)

func TestSetAvatar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	profile, err := env.profiles.SetAvatar(ctx, "alice", "https://cdn.example/a.png")
	if err != nil {
		t.Fatalf("SetAvatar: %v", err)
	}
	if profile.Avatar != "https://cdn.example/a.png" {
		t.Errorf("Avatar = %q", profile.Avatar)
	}

	// An empty avatar keeps what is stored.
	profile, err = env.profiles.SetAvatar(ctx, "alice", "")
	if err != nil {
		t.Fatalf("SetAvatar(empty): %v", err)
	}
	if profile.Avatar != "https://cdn.example/a.png" {
		t.Errorf("empty avatar replaced stored value: %q", profile.Avatar)
	}

	got, err := env.profiles.GetProfile(ctx, "alice")
	if err != nil || got == nil || got.Avatar != "https://cdn.example/a.png" {
		t.Fatalf("GetProfile = %+v, %v", got, err)
	}
}

func TestSetEmptyAvatarCreatesProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.profiles.SetAvatar(ctx, "bob", ""); err != nil {
		t.Fatalf("SetAvatar: %v", err)
	}
	got, err := env.profiles.GetProfile(ctx, "bob")
	if err != nil || got == nil {
		t.Fatalf("GetProfile = %v, %v; want empty profile", got, err)
	}
	if got.Avatar != "" {
		t.Errorf("Avatar = %q, want empty", got.Avatar)
	}
}

func TestGetProfileAbsent(t *testing.T) {
	env := newTestEnv(t)
	got, err := env.profiles.GetProfile(context.Background(), "nobody")
	if err != nil || got != nil {
		t.Fatalf("GetProfile = %v, %v; want nil, nil", got, err)
	}
}

func TestSetAvatarRequiresIdentity(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.profiles.SetAvatar(context.Background(), "", "x"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
